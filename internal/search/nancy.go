package search

import (
	"math"

	"upside-down-research.com/oss/rtsearch/internal/domain"
)

// NancyBackup decides how much of the best prefix to commit by propagating
// a belief over achievable solution cost from the frontier back to the
// agent node, then weighing, one step at a time, the expected cost of
// committing now against searching more.
type NancyBackup struct {
	domain    domain.Domain
	lookahead uint

	// closed is the live closed set of the current backup, consulted by
	// the alpha/beta child queries. Read-only here.
	closed map[uint64]*Node
}

// NewNancyBackup creates a Nancy decision module. lookahead is the
// expansion budget a unit of thinking time buys.
func NewNancyBackup(d domain.Domain, lookahead uint) *NancyBackup {
	return &NancyBackup{domain: d, lookahead: lookahead}
}

// Backup propagates frontier beliefs through the generated tree, walks the
// commitment prefix, and returns the nodes to commit ordered
// nearest-to-start first. With forceCommit it falls back to the single
// best child of start when deliberation preferred to keep thinking.
func (nb *NancyBackup) Backup(open *OpenList, start *Node, closed map[uint64]*Node, forceCommit bool) []*Node {
	nb.propagate(open.Copy(), copyClosed(closed))
	nb.closed = closed

	committed := nb.prefixDeepThinking(start)

	if len(committed) == 0 && forceCommit {
		if alpha, _ := nb.alphaBeta(start); alpha != nil {
			committed = append(committed, alpha)
		}
	}
	return committed
}

// propagate runs the reverse Dijkstra over throwaway copies of OPEN and
// CLOSED: frontier nodes seed their own hhat, interior nodes relax toward
// the cheapest frontier reachable through the generated tree. Interior
// nodes never reached are deadends.
func (nb *NancyBackup) propagate(open *OpenList, closed map[uint64]*Node) {
	for _, n := range closed {
		n.backupHHat = math.Inf(1)
	}
	open.Each(func(n *Node) {
		n.backupHHat = n.HHat()
		n.nancyFrontier = n
	})
	open.SwapComparator(compareBackupHHat)

	for !open.Empty() && len(closed) > 0 {
		cur := open.Pop()
		delete(closed, cur.state.Key())

		// The belief travels along the generated tree only, so the sole
		// predecessor that matters is cur's own parent - and only while
		// it still owns its slot in the working closed set.
		p := cur.parent
		if p == nil {
			continue
		}
		if owner, ok := closed[p.state.Key()]; !ok || owner != p {
			continue
		}

		candidate := nb.domain.EdgeCost(cur.state) + cur.backupHHat
		if p.backupHHat <= candidate {
			continue
		}
		p.backupHHat = candidate
		p.nancyFrontier = cur.nancyFrontier

		if open.Contains(p) {
			open.Update(p)
		} else {
			open.Push(p)
		}
	}

	for _, n := range closed {
		n.h = math.Inf(1)
		n.d = math.Inf(1)
		n.derr = math.Inf(1)
		n.epsH = 0
		n.epsD = 0
		n.nancyFrontier = n
	}
}

// prefixDeepThinking walks from start toward the frontier, committing the
// best child for as long as committing beats further deliberation.
func (nb *NancyBackup) prefixDeepThinking(start *Node) []*Node {
	var committed []*Node

	cur := start
	t := 1
	for {
		alpha, beta := nb.alphaBeta(cur)
		if alpha == nil {
			// Unexpanded frontier: nothing to commit to.
			break
		}
		if beta != nil && !nb.isCommit(alpha, beta, t) {
			break
		}
		committed = append(committed, alpha)
		cur = alpha
		t++
	}
	return committed
}

// isCommit compares the expected solution cost of committing alpha now
// against deliberating one more cycle. Ties defer.
func (nb *NancyBackup) isCommit(alpha, beta *Node, t int) bool {
	ts := float64(t)

	pAlpha := probFirstLower(nb.afterSearch(alpha, ts/2), nb.afterSearch(beta, ts/2))
	if pAlpha >= 1 {
		return true
	}

	commit := nb.commitUtility(alpha, ts)
	think := nb.notCommitUtility(alpha, beta, pAlpha, ts)
	return think < commit
}

// commitUtility is the expected minimum over alpha's two best subtrees
// after (t+1)/2 units of additional search.
func (nb *NancyBackup) commitUtility(alpha *Node, t float64) float64 {
	return nb.expectedSubtreeMin(alpha, (t+1)/2)
}

// notCommitUtility mixes the subtree utilities of alpha and beta at the
// deferred time fraction by the probability that alpha still wins.
func (nb *NancyBackup) notCommitUtility(alpha, beta *Node, pAlpha, t float64) float64 {
	tau := (t/2 + 1) / 2
	uAlpha := nb.expectedSubtreeMin(alpha, tau)
	uBeta := nb.expectedSubtreeMin(beta, tau)
	return pAlpha*uAlpha + (1-pAlpha)*uBeta
}

// expectedSubtreeMin is the expected minimum over n's two best children's
// beliefs at time fraction tau, degrading to n's own frontier mean when the
// subtree is shallow.
func (nb *NancyBackup) expectedSubtreeMin(n *Node, tau float64) float64 {
	a, b := nb.alphaBeta(n)
	if a == nil {
		return n.nancyFrontier.FHat()
	}
	da := nb.afterSearch(a, tau)
	if b == nil {
		return da.mean
	}
	return expectedMinimum(da, nb.afterSearch(b, tau))
}

// afterSearch is the belief over n's subtree cost after tau units of
// additional search: mean is the backed-up frontier fhat; the variance
// grows with the search share ds and reaches the full (epsH*d)^2 once ds
// covers the frontier's distance-to-go.
func (nb *NancyBackup) afterSearch(n *Node, tau float64) belief {
	f := n.nancyFrontier
	mean := f.FHat()
	if math.IsInf(mean, 1) {
		return belief{mean: mean}
	}

	ds := tau * float64(nb.lookahead) / nb.domain.AverageDelayWindow()
	d := f.d
	if d < 1 {
		d = 1
	}
	spread := f.epsH * f.d
	variance := spread * spread * math.Min(1, ds/d)
	if variance < 0 || math.IsNaN(variance) {
		variance = 0
	}
	return belief{mean: mean, variance: variance}
}

// alphaBeta returns the best and second-best children of n by their backed
// frontier fhat, tie-breaking on higher g. Only children generated from n
// in the current tree count.
func (nb *NancyBackup) alphaBeta(n *Node) (alpha, beta *Node) {
	better := func(a, b *Node) bool {
		if b == nil {
			return true
		}
		fa, fb := a.nancyFrontier.FHat(), b.nancyFrontier.FHat()
		if fa == fb {
			return a.g > b.g
		}
		return fa < fb
	}

	for _, s := range nb.domain.Successors(n.state) {
		child, ok := nb.closed[s.Key()]
		if !ok || child.parent != n || child.nancyFrontier == nil {
			continue
		}
		switch {
		case better(child, alpha):
			alpha, beta = child, alpha
		case better(child, beta):
			beta = child
		}
	}
	return alpha, beta
}

func copyClosed(closed map[uint64]*Node) map[uint64]*Node {
	c := make(map[uint64]*Node, len(closed))
	for k, v := range closed {
		c[k] = v
	}
	return c
}
