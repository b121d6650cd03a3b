// Package search implements a real-time heuristic search engine: each
// decision iteration runs a lookahead-bounded best-first expansion, decides
// how many actions along the best discovered prefix to commit, executes
// them, and learns updated heuristic values over the expanded region.
package search

import (
	"fmt"

	"github.com/charmbracelet/log"

	"upside-down-research.com/oss/rtsearch/internal/domain"
)

// Expansion module knobs.
const (
	ExpandAStar = "astar"
	ExpandFHat  = "fhat"
)

// Decision module knobs.
const (
	DecideOne              = "one"
	DecideAllTheWay        = "alltheway"
	DecideDynamicLookahead = "dynamicLookahead"
	DecideDTRTS            = "dtrts"
	DecideDyDTRTS          = "dydtrts"
)

// decisionAlgorithm picks the prefix of the expanded region to commit.
// The returned sequence is ordered nearest-to-start first; empty means
// keep thinking.
type decisionAlgorithm interface {
	Backup(open *OpenList, start *Node, closed map[uint64]*Node, forceCommit bool) []*Node
}

// Solver is the real-time search driver. It owns OPEN, CLOSED and the
// action queue and lends them to the expansion, decision and learning
// modules each iteration. The search root is always the deepest committed
// node; the queue front is the agent position trailing behind it.
type Solver struct {
	domain    domain.Domain
	expansion *Expansion
	decision  decisionAlgorithm
	learning  *DijkstraLearning

	// allTheWay is the fallback decision once a goal reaches the top of
	// OPEN: from then on everything up to the goal is committed.
	allTheWay *ScalarBackup

	open   *OpenList
	closed map[uint64]*Node

	lookahead uint
	// multiStep modules drain the whole committed prefix at the top of an
	// iteration; one-step modules execute a single queued action per
	// think cycle.
	multiStep bool
	// dynamic modules grow the expansion budget by lookahead per
	// committed step.
	dynamic bool

	// goalSeen flips the driver to all-the-way commits and multi-step
	// draining for the rest of the run.
	goalSeen bool

	// pending buffers states executed during think cycles in multi-step
	// mode until the next drained path picks them up.
	pending []string
}

// New constructs a solver. expansionModule is "astar" or "fhat";
// decisionModule is one of "one", "alltheway", "dynamicLookahead",
// "dtrts", "dydtrts"; lookahead must be at least 2.
func New(d domain.Domain, expansionModule, decisionModule string, lookahead uint) (*Solver, error) {
	if lookahead < 2 {
		return nil, fmt.Errorf("search: lookahead must be at least 2, got %d", lookahead)
	}

	var sortKey string
	switch expansionModule {
	case ExpandAStar:
		sortKey = "f"
	case ExpandFHat:
		sortKey = "fhat"
	default:
		return nil, fmt.Errorf("search: unknown expansion module %q", expansionModule)
	}

	s := &Solver{
		domain:    d,
		learning:  NewDijkstraLearning(d),
		allTheWay: NewScalarBackup(true),
		open:      NewOpenList(compareF),
		closed:    make(map[uint64]*Node),
		lookahead: lookahead,
	}

	switch decisionModule {
	case DecideOne:
		s.decision = NewScalarBackup(false)
	case DecideAllTheWay:
		s.decision = NewScalarBackup(true)
		s.multiStep = true
	case DecideDynamicLookahead:
		s.decision = NewScalarBackup(true)
		s.multiStep = true
		s.dynamic = true
	case DecideDTRTS:
		s.decision = NewNancyBackup(d, lookahead)
	case DecideDyDTRTS:
		s.decision = NewNancyBackup(d, lookahead)
		s.multiStep = true
		s.dynamic = true
	default:
		return nil, fmt.Errorf("search: unknown decision module %q", decisionModule)
	}

	s.expansion = NewExpansion(d, lookahead, sortKey)
	return s, nil
}

// Search runs decision iterations until the committed front reaches a goal
// or the frontier empties (deadend).
func (s *Solver) Search() *Result {
	res := NewResult()

	startState := s.domain.Start()
	root := NewNode(0,
		s.domain.Heuristic(startState),
		s.domain.Distance(startState),
		s.domain.DistanceErr(startState),
		s.domain.EpsilonHGlobal(),
		s.domain.EpsilonDGlobal(),
		0, startState, nil)

	// start tracks the deepest committed node; queue holds the committed
	// actions the agent has not executed yet, front first.
	start := root
	queue := []*Node{root}
	iteration := 0

	for {
		if s.drainsQueue() {
			var done bool
			start, queue, done = s.drain(queue, res)
			if done {
				return s.finish(res)
			}
		}

		if s.domain.IsGoal(start.state) {
			s.flushToGoal(start, queue, res)
			return s.finish(res)
		}

		s.restartLists(start)
		s.domain.UpdateEpsilons()

		var commit []*Node
		for len(commit) == 0 && len(queue) > 0 {
			visited := s.expansion.Expand(s.open, s.closed, duplicateDetect, res)
			res.Visited = append(res.Visited, visited)

			if s.open.Empty() {
				break
			}
			if s.domain.IsGoal(s.open.Top().state) {
				s.goalSeen = true
			}

			commit = s.backup(start, false)

			// The think cycle consumed one decision's worth of time:
			// the queue front executes whether or not we committed.
			n := queue[0]
			queue = queue[1:]
			if s.drainsQueue() {
				s.pending = append(s.pending, n.state.String())
			} else {
				res.Paths = append(res.Paths, []string{n.state.String()})
				res.IsKeepThinkingFlags = append(res.IsKeepThinkingFlags, len(commit) == 0)
			}
			res.SolutionCost += s.domain.EdgeCost(n.state)
			res.SolutionLength++
		}

		if s.open.Empty() {
			log.Debug("deadend", "iteration", iteration, "state", start.state)
			res.SolutionFound = false
			res.SolutionCost = -1
			return s.finish(res)
		}

		if len(commit) == 0 {
			commit = s.backup(start, true)
		}
		if len(commit) == 0 {
			panic("search: forced commit returned no nodes")
		}

		if s.dynamic {
			s.expansion.IncreaseLookahead(s.lookahead * uint(len(commit)))
		}

		committed := make([]string, 0, len(commit))
		for _, n := range commit {
			queue = append(queue, n)
			committed = append(committed, n.state.String())
		}
		res.Committed = append(res.Committed, committed)
		start = commit[len(commit)-1]

		s.learning.Learn(s.open, s.closed)

		iteration++
		log.Debug("iteration done",
			"iteration", iteration,
			"committed", len(commit),
			"expanded", res.NodesExpanded,
			"queue", len(queue))
	}
}

// drainsQueue reports whether the driver executes the whole committed
// prefix at the top of an iteration.
func (s *Solver) drainsQueue() bool { return s.multiStep || s.goalSeen }

// drain executes all but the last queued action, charging cost, length and
// the lookahead's worth of GAT ticks per step. Returns the new agent node
// and true when a drained action reached the goal.
func (s *Solver) drain(queue []*Node, res *Result) (*Node, []*Node, bool) {
	path := s.pending
	s.pending = nil

	for len(queue) > 1 {
		n := queue[0]
		queue = queue[1:]

		path = append(path, n.state.String())
		res.SolutionCost += s.domain.EdgeCost(n.state)
		res.SolutionLength++
		res.GATNodesExpanded += s.lookahead

		if s.domain.IsGoal(n.state) {
			res.SolutionFound = true
			res.Paths = append(res.Paths, path)
			res.IsKeepThinkingFlags = append(res.IsKeepThinkingFlags, false)
			return n, queue, true
		}
	}

	if s.domain.IsGoal(queue[0].state) {
		// The flush will finish this path with the goal state.
		s.pending = path
	} else if len(path) > 0 {
		path = append(path, queue[0].state.String())
		res.Paths = append(res.Paths, path)
		res.IsKeepThinkingFlags = append(res.IsKeepThinkingFlags, false)
	}
	return queue[0], queue, false
}

// flushToGoal executes everything still queued up to the goal node with
// drain accounting and records the terminal path.
func (s *Solver) flushToGoal(goal *Node, queue []*Node, res *Result) {
	path := s.pending
	s.pending = nil

	for len(queue) > 1 {
		n := queue[0]
		queue = queue[1:]
		path = append(path, n.state.String())
		res.SolutionCost += s.domain.EdgeCost(n.state)
		res.SolutionLength++
		res.GATNodesExpanded += s.lookahead
	}

	path = append(path, goal.state.String())
	res.Paths = append(res.Paths, path)
	res.IsKeepThinkingFlags = append(res.IsKeepThinkingFlags, false)
	res.SolutionFound = true
}

func (s *Solver) backup(start *Node, force bool) []*Node {
	if s.goalSeen {
		return s.allTheWay.Backup(s.open, start, s.closed, force)
	}
	return s.decision.Backup(s.open, start, s.closed, force)
}

// restartLists resets OPEN and CLOSED to just the new search root.
func (s *Solver) restartLists(start *Node) {
	s.open.Clear()
	s.closed = make(map[uint64]*Node)

	start.g = 0
	start.parent = nil
	start.reopen()
	start.delay = 0
	start.ResetStartEpsilons()

	s.open.Push(start)
	s.closed[start.state.Key()] = start
}

func (s *Solver) finish(res *Result) *Result {
	res.EpsilonHGlobal = s.domain.EpsilonHGlobal()
	res.EpsilonDGlobal = s.domain.EpsilonDGlobal()
	log.Debug("search finished",
		"found", res.SolutionFound,
		"cost", res.SolutionCost,
		"length", res.SolutionLength,
		"expanded", res.NodesExpanded,
		"generated", res.NodesGenerated)
	return res
}
