package search

import (
	"math"

	"upside-down-research.com/oss/rtsearch/internal/domain"
)

// DuplicateFunc resolves a freshly generated candidate against the closed
// set; true means the candidate was absorbed (or dominated) and must not be
// inserted by the caller.
type DuplicateFunc func(candidate *Node, closed map[uint64]*Node, open *OpenList) bool

// Expansion grows the frontier best-first, bounded per call by the
// lookahead budget.
type Expansion struct {
	domain    domain.Domain
	lookahead uint
	sortKey   string
}

// NewExpansion creates an expansion module sorting OPEN by sortKey
// ("f" or "fhat").
func NewExpansion(d domain.Domain, lookahead uint, sortKey string) *Expansion {
	return &Expansion{domain: d, lookahead: lookahead, sortKey: sortKey}
}

// Lookahead returns the current per-call expansion budget.
func (e *Expansion) Lookahead() uint { return e.lookahead }

// IncreaseLookahead grows the budget for the rest of the run. Steps the
// agent commits without re-planning are thinking time it can reinvest.
func (e *Expansion) IncreaseLookahead(k uint) { e.lookahead += k }

// Expand pops up to lookahead-1 nodes from open in comparator order,
// generating successors into open/closed through dup. A goal on top of
// open stops the call with the goal left in place for the caller to see.
// Returns the expanded states in order.
func (e *Expansion) Expand(open *OpenList, closed map[uint64]*Node, dup DuplicateFunc, res *Result) []string {
	e.sortOpen(open)

	var visited []string

	// Start at 1: the root was expanded to get the top-level actions.
	expansions := uint(1)

	for !open.Empty() && expansions < e.lookahead {
		cur := open.Top()
		e.domain.PushDelayWindow(cur.delay)

		if e.domain.IsGoal(cur.state) {
			return visited
		}

		open.Pop()
		cur.close()
		visited = append(visited, cur.state.String())
		res.NodesExpanded++
		res.GATNodesExpanded++
		expansions++

		// Every node still waiting on the frontier has now sat through
		// one more expansion.
		open.Each(func(n *Node) { n.delay++ })

		children := e.domain.Successors(cur.state)
		res.NodesGenerated += uint(len(children))

		var (
			best  domain.State
			bestF = math.Inf(1)
			added []*Node
		)
		for _, child := range children {
			node := NewNode(
				cur.g+e.domain.EdgeCost(child),
				e.domain.Heuristic(child),
				e.domain.Distance(child),
				e.domain.DistanceErr(child),
				cur.epsH, cur.epsD, cur.expansions,
				child, cur)

			if dup(node, closed, open) {
				continue
			}

			open.Push(node)
			closed[child.Key()] = node
			added = append(added, node)

			if node.F() < bestF {
				bestF = node.F()
				best = child
			}
		}

		if best != nil {
			epsD := (1 + e.domain.Distance(best)) - e.domain.Distance(cur.state)
			epsH := (e.domain.EdgeCost(best) + e.domain.Heuristic(best)) - e.domain.Heuristic(cur.state)

			e.domain.PushEpsilonHGlobal(epsH)
			e.domain.PushEpsilonDGlobal(epsD)
			for _, n := range added {
				n.PushPathEpsilons(epsH, epsD)
			}
		}
	}

	return visited
}

func (e *Expansion) sortOpen(open *OpenList) {
	switch e.sortKey {
	case "fhat":
		open.SwapComparator(compareFHat)
	default:
		open.SwapComparator(compareF)
	}
}

// duplicateDetect implements the closed-set policy: relax an OPEN entry on
// a better g, reopen a closed entry on a better f, discard otherwise.
func duplicateDetect(candidate *Node, closed map[uint64]*Node, open *OpenList) bool {
	existing, ok := closed[candidate.state.Key()]
	if !ok {
		return false
	}

	if existing.open {
		if candidate.g < existing.g {
			existing.takeFrom(candidate)
			open.Update(existing)
		}
	} else if candidate.F() < existing.F() {
		existing.takeFrom(candidate)
		existing.reopen()
		open.Push(existing)
	}

	return true
}
