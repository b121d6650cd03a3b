package search

import (
	"math"

	"upside-down-research.com/oss/rtsearch/internal/domain"
)

// DijkstraLearning raises the domain's cached heuristic over the explored
// region: interior states start at infinity and relax backward from the
// frontier in hhat order, so the next iteration's estimates are no longer
// optimistic over terrain this iteration proved expensive.
type DijkstraLearning struct {
	domain domain.Domain
}

// NewDijkstraLearning creates the learning module.
func NewDijkstraLearning(d domain.Domain) *DijkstraLearning {
	return &DijkstraLearning{domain: d}
}

// Learn runs the reverse Dijkstra over throwaway copies of OPEN and CLOSED,
// writing updated h/d/derr values through to the domain and to the touched
// nodes.
func (l *DijkstraLearning) Learn(open *OpenList, closed map[uint64]*Node) {
	open = open.Copy()
	closed = copyClosed(closed)

	for _, n := range closed {
		if !n.open {
			l.domain.UpdateHeuristic(n.state, math.Inf(1))
		}
	}

	open.SwapComparator(compareHHat)

	for !open.Empty() && len(closed) > 0 {
		cur := open.Pop()
		delete(closed, cur.state.Key())

		edge := l.domain.EdgeCost(cur.state)
		backed := edge + l.domain.Heuristic(cur.state)

		for _, s := range l.domain.Predecessors(cur.state) {
			p, ok := closed[s.Key()]
			if !ok || cur.parent != p {
				continue
			}
			if l.domain.Heuristic(s) <= backed {
				continue
			}

			l.domain.UpdateHeuristic(s, backed)
			l.domain.UpdateDistance(s, l.domain.Distance(cur.state)+1)
			l.domain.UpdateDistanceErr(s, l.domain.DistanceErr(cur.state))

			p.h = l.domain.Heuristic(s)
			p.d = l.domain.Distance(s)
			p.derr = l.domain.DistanceErr(s)
			p.epsH = cur.epsH
			p.epsD = cur.epsD

			if open.Contains(p) {
				open.Update(p)
			} else {
				open.Push(p)
			}
		}
	}
}
