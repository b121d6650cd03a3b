package search

import (
	"math"
	"testing"

	"upside-down-research.com/oss/rtsearch/internal/domain"
)

// stubDomain wires hand-built state graphs into the Domain surface for
// white-box decision and learning tests.
type stubDomain struct {
	*domain.Cache
	startState domain.State
	goalKey    uint64
	succs      map[uint64][]domain.State
	preds      map[uint64][]domain.State
	edge       float64
}

func newStubDomain() *stubDomain {
	return &stubDomain{
		Cache: domain.NewCache(),
		succs: make(map[uint64][]domain.State),
		preds: make(map[uint64][]domain.State),
		edge:  1,
	}
}

func (d *stubDomain) Start() domain.State          { return d.startState }
func (d *stubDomain) IsGoal(s domain.State) bool   { return s.Key() == d.goalKey }
func (d *stubDomain) EdgeCost(domain.State) float64 { return d.edge }

func (d *stubDomain) Successors(s domain.State) []domain.State { return d.succs[s.Key()] }
func (d *stubDomain) Predecessors(s domain.State) []domain.State { return d.preds[s.Key()] }

func (d *stubDomain) Heuristic(s domain.State) float64 {
	if v, ok := d.Cache.H(s); ok {
		return v
	}
	return 0
}

func (d *stubDomain) Distance(s domain.State) float64 {
	if v, ok := d.Cache.D(s); ok {
		return v
	}
	return 0
}

func (d *stubDomain) DistanceErr(s domain.State) float64 {
	if v, ok := d.Cache.DErr(s); ok {
		return v
	}
	return 0
}

func link(d *stubDomain, parent, child domain.State) {
	d.succs[parent.Key()] = append(d.succs[parent.Key()], child)
	d.preds[child.Key()] = append(d.preds[child.Key()], parent)
}

func TestNancyPropagate(t *testing.T) {
	d := newStubDomain()

	// root -> c1 -> c2 (frontier); c3 is an expanded sibling of c2 with no
	// frontier below it.
	root := testNode(0, 0, 0)
	c1 := NewNode(1, 3, 3, 3, 0, 0, 0, testState(11), root)
	c2 := NewNode(2, 2, 2, 2, 0, 0, 0, testState(12), c1)
	c3 := NewNode(2, 9, 9, 9, 0, 0, 0, testState(13), c1)
	c3.close()
	root.close()
	c1.close()

	open := NewOpenList(compareF)
	open.Push(c2)
	closed := map[uint64]*Node{
		root.state.Key(): root,
		c1.state.Key():   c1,
		c2.state.Key():   c2,
		c3.state.Key():   c3,
	}

	nb := NewNancyBackup(d, 4)
	nb.propagate(open.Copy(), copyClosed(closed))

	t.Run("InteriorBacksUpCheapestFrontier", func(t *testing.T) {
		if c1.backupHHat != 3 { // edge + c2 hhat = 1 + 2
			t.Errorf("c1 backupHHat = %v, want 3", c1.backupHHat)
		}
		if root.backupHHat != 4 {
			t.Errorf("root backupHHat = %v, want 4", root.backupHHat)
		}
		if root.nancyFrontier != c2 || c1.nancyFrontier != c2 {
			t.Error("interior nodes should point at the frontier that backed them")
		}
	})

	t.Run("MonotoneAlongTreeEdges", func(t *testing.T) {
		if c1.backupHHat > d.edge+c2.backupHHat {
			t.Error("parent backup exceeds child backup plus edge")
		}
		if root.backupHHat > d.edge+c1.backupHHat {
			t.Error("root backup exceeds child backup plus edge")
		}
	})

	t.Run("UnreachedInteriorIsDeadend", func(t *testing.T) {
		if !math.IsInf(c3.h, 1) || !math.IsInf(c3.d, 1) || !math.IsInf(c3.derr, 1) {
			t.Errorf("deadend estimates should be infinite: h=%v d=%v derr=%v", c3.h, c3.d, c3.derr)
		}
		if c3.epsH != 0 || c3.epsD != 0 {
			t.Error("deadend epsilons should be zeroed")
		}
		if c3.nancyFrontier != c3 {
			t.Error("deadend frontier should point at itself")
		}
	})

	t.Run("DriverListsUntouched", func(t *testing.T) {
		if open.Len() != 1 || open.Top() != c2 {
			t.Error("propagation must consume only its copies")
		}
		if len(closed) != 4 {
			t.Errorf("closed shrank to %d entries", len(closed))
		}
	})
}

func TestNancyAlphaBeta(t *testing.T) {
	d := newStubDomain()

	root := testNode(0, 0, 0)
	good := NewNode(1, 1, 1, 1, 0, 0, 0, testState(21), root)
	bad := NewNode(1, 5, 5, 5, 0, 0, 0, testState(22), root)
	stray := NewNode(1, 0, 0, 0, 0, 0, 0, testState(23), nil) // not root's child
	for _, n := range []*Node{good, bad, stray} {
		n.nancyFrontier = n
	}

	link(d, root.state, good.state)
	link(d, root.state, bad.state)
	link(d, root.state, stray.state)

	nb := NewNancyBackup(d, 4)
	nb.closed = map[uint64]*Node{
		good.state.Key():  good,
		bad.state.Key():   bad,
		stray.state.Key(): stray,
	}

	alpha, beta := nb.alphaBeta(root)
	if alpha != good {
		t.Errorf("alpha = %v, want the low-fhat child", alpha)
	}
	if beta != bad {
		t.Errorf("beta = %v, want the second-best child", beta)
	}
}

func TestNancySymmetricTieDefers(t *testing.T) {
	d := newStubDomain()

	// Two identical subtrees under start: alpha/beta and their children
	// carry the same beliefs, so alpha and beta tie (pAlpha = 0.5). The
	// think utility (about 9.02, at the shorter deferred time fraction) is
	// not below the commit utility (about 8.87), so the decision must defer.
	start := testNode(0, 0, 0)
	frontier := func(key uint64, parent *Node) *Node {
		n := NewNode(2, 6, 4, 4, 0.5, 0, 0, testState(key), parent)
		n.nancyFrontier = n
		return n
	}

	alpha := NewNode(1, 7, 5, 5, 0.5, 0, 0, testState(31), start)
	beta := NewNode(1, 7, 5, 5, 0.5, 0, 0, testState(32), start)
	aa := frontier(33, alpha)
	ab := frontier(34, alpha)
	ba := frontier(35, beta)
	bb := frontier(36, beta)
	alpha.nancyFrontier = aa
	beta.nancyFrontier = ba

	link(d, start.state, alpha.state)
	link(d, start.state, beta.state)
	link(d, alpha.state, aa.state)
	link(d, alpha.state, ab.state)
	link(d, beta.state, ba.state)
	link(d, beta.state, bb.state)

	nb := NewNancyBackup(d, 4)
	nb.closed = map[uint64]*Node{
		alpha.state.Key(): alpha,
		beta.state.Key():  beta,
		aa.state.Key():    aa,
		ab.state.Key():    ab,
		ba.state.Key():    ba,
		bb.state.Key():    bb,
	}

	if nb.isCommit(alpha, beta, 1) {
		t.Error("symmetric beliefs should defer the commit")
	}
	if got := nb.prefixDeepThinking(start); len(got) != 0 {
		t.Errorf("deep thinking committed %d nodes on a tie, want none", len(got))
	}
}

func TestNancySoleChildCommits(t *testing.T) {
	d := newStubDomain()

	start := testNode(0, 0, 0)
	only := NewNode(1, 2, 2, 2, 0, 0, 0, testState(41), start)
	only.nancyFrontier = only
	link(d, start.state, only.state)

	nb := NewNancyBackup(d, 4)
	nb.closed = map[uint64]*Node{only.state.Key(): only}

	got := nb.prefixDeepThinking(start)
	if len(got) != 1 || got[0] != only {
		t.Errorf("sole generated child should be committed, got %v", got)
	}
}

func TestNancyForceCommit(t *testing.T) {
	d := newStubDomain()
	d.goalKey = 99

	// Same symmetric tie as above, driven through Backup with forceCommit:
	// deliberation defers, the forced path must still emit alpha.
	start := testNode(0, 0, 0)
	alpha := NewNode(1, 7, 5, 5, 0.5, 0, 0, testState(51), start)
	beta := NewNode(1, 7, 5, 5, 0.5, 0, 0, testState(52), start)
	alpha.close()
	beta.close()
	aa := NewNode(2, 6, 4, 4, 0.5, 0, 0, testState(53), alpha)
	ab := NewNode(2, 6, 4, 4, 0.5, 0, 0, testState(54), alpha)
	ba := NewNode(2, 6, 4, 4, 0.5, 0, 0, testState(55), beta)
	bb := NewNode(2, 6, 4, 4, 0.5, 0, 0, testState(56), beta)
	start.close()

	link(d, start.state, alpha.state)
	link(d, start.state, beta.state)
	link(d, alpha.state, aa.state)
	link(d, alpha.state, ab.state)
	link(d, beta.state, ba.state)
	link(d, beta.state, bb.state)

	open := NewOpenList(compareF)
	for _, n := range []*Node{aa, ab, ba, bb} {
		open.Push(n)
	}
	closed := map[uint64]*Node{
		start.state.Key(): start,
		alpha.state.Key(): alpha,
		beta.state.Key():  beta,
		aa.state.Key():    aa,
		ab.state.Key():    ab,
		ba.state.Key():    ba,
		bb.state.Key():    bb,
	}

	nb := NewNancyBackup(d, 4)
	got := nb.Backup(open, start, closed, true)

	if len(got) != 1 {
		t.Fatalf("forced backup returned %d nodes, want 1", len(got))
	}
	if got[0] != alpha && got[0] != beta {
		t.Errorf("forced commit should be a child of start, got %v", got[0])
	}
}
