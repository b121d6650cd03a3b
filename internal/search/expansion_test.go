package search

import (
	"testing"

	"upside-down-research.com/oss/rtsearch/internal/domain/grid"
)

func seedRoot(t *testing.T, w *grid.World) (*OpenList, map[uint64]*Node, *Node) {
	t.Helper()
	st := w.Start()
	root := NewNode(0, w.Heuristic(st), w.Distance(st), w.DistanceErr(st), 0, 0, 0, st, nil)
	open := NewOpenList(compareF)
	open.Push(root)
	closed := map[uint64]*Node{st.Key(): root}
	return open, closed, root
}

func TestExpandRespectsBudget(t *testing.T) {
	w := corridor(t, 30)
	open, closed, _ := seedRoot(t, w)

	res := NewResult()
	exp := NewExpansion(w, 5, "f")
	visited := exp.Expand(open, closed, duplicateDetect, res)

	// Budget counts the root as already expanded: lookahead-1 pops.
	if res.NodesExpanded != 4 {
		t.Errorf("NodesExpanded = %d, want 4", res.NodesExpanded)
	}
	if len(visited) != 4 {
		t.Errorf("visited %d states, want 4", len(visited))
	}
	if visited[0] != "0 0" {
		t.Errorf("first expansion should be the root, got %q", visited[0])
	}
}

func TestExpandStopsAtGoal(t *testing.T) {
	w := corridor(t, 5)
	open, closed, _ := seedRoot(t, w)

	res := NewResult()
	exp := NewExpansion(w, 10, "f")
	exp.Expand(open, closed, duplicateDetect, res)

	top := open.Top()
	if top == nil || !w.IsGoal(top.State()) {
		t.Fatal("goal should be left on top of OPEN")
	}
	if !top.OnOpen() {
		t.Error("goal node must stay marked open")
	}
	if res.NodesExpanded != 4 {
		t.Errorf("NodesExpanded = %d, want the 4 non-goal cells", res.NodesExpanded)
	}
}

func TestExpandClosedBookkeeping(t *testing.T) {
	w := corridor(t, 8)
	open, closed, _ := seedRoot(t, w)

	res := NewResult()
	exp := NewExpansion(w, 4, "f")
	exp.Expand(open, closed, duplicateDetect, res)

	// Every OPEN node is in CLOSED with its flag set; every other CLOSED
	// node has been expanded.
	onOpen := make(map[*Node]bool)
	open.Each(func(n *Node) { onOpen[n] = true })

	for key, n := range closed {
		if n.State().Key() != key {
			t.Errorf("closed entry keyed %d holds state %d", key, n.State().Key())
		}
		if onOpen[n] != n.OnOpen() {
			t.Errorf("open flag of %v disagrees with OPEN membership", n)
		}
	}
	open.Each(func(n *Node) {
		if closed[n.State().Key()] != n {
			t.Errorf("OPEN node %v missing from CLOSED", n)
		}
	})
}

func TestExpandEdgeCostConservation(t *testing.T) {
	w := corridor(t, 10)
	open, closed, _ := seedRoot(t, w)

	res := NewResult()
	exp := NewExpansion(w, 6, "f")
	exp.Expand(open, closed, duplicateDetect, res)

	for _, n := range closed {
		if n.Parent() == nil {
			continue
		}
		want := n.Parent().G() + w.EdgeCost(n.State())
		if n.G() != want {
			t.Errorf("g(%v) = %v, want parent g + edge = %v", n, n.G(), want)
		}
	}
}

func TestDuplicateDetection(t *testing.T) {
	t.Run("RelaxesOpenEntryOnBetterG", func(t *testing.T) {
		w := corridor(t, 6)
		open := NewOpenList(compareF)
		closed := make(map[uint64]*Node)

		st := grid.Pos{X: 2, Y: 0}
		old := NewNode(5, w.Heuristic(st), w.Distance(st), w.DistanceErr(st), 0, 0, 0, st, nil)
		open.Push(old)
		closed[st.Key()] = old

		better := NewNode(2, w.Heuristic(st), w.Distance(st), w.DistanceErr(st), 0, 0, 0, st, nil)
		if !duplicateDetect(better, closed, open) {
			t.Fatal("duplicate should be absorbed")
		}
		if old.G() != 2 {
			t.Errorf("existing entry g = %v, want relaxed to 2", old.G())
		}
		if closed[st.Key()] != old {
			t.Error("closed must keep the original node object")
		}
	})

	t.Run("ReopensClosedEntryOnBetterF", func(t *testing.T) {
		w := corridor(t, 6)
		open := NewOpenList(compareF)
		closed := make(map[uint64]*Node)

		st := grid.Pos{X: 2, Y: 0}
		old := NewNode(5, w.Heuristic(st), w.Distance(st), w.DistanceErr(st), 0, 0, 0, st, nil)
		old.close()
		closed[st.Key()] = old

		better := NewNode(1, w.Heuristic(st), w.Distance(st), w.DistanceErr(st), 0, 0, 0, st, nil)
		if !duplicateDetect(better, closed, open) {
			t.Fatal("duplicate should be absorbed")
		}
		if !old.OnOpen() {
			t.Error("entry should have been reopened")
		}
		if !open.Contains(old) {
			t.Error("reopened entry should be back on OPEN")
		}
	})

	t.Run("DiscardsDominatedCandidate", func(t *testing.T) {
		w := corridor(t, 6)
		open := NewOpenList(compareF)
		closed := make(map[uint64]*Node)

		st := grid.Pos{X: 2, Y: 0}
		old := NewNode(1, w.Heuristic(st), w.Distance(st), w.DistanceErr(st), 0, 0, 0, st, nil)
		open.Push(old)
		closed[st.Key()] = old

		worse := NewNode(4, w.Heuristic(st), w.Distance(st), w.DistanceErr(st), 0, 0, 0, st, nil)
		if !duplicateDetect(worse, closed, open) {
			t.Fatal("dominated duplicate still reports absorbed")
		}
		if old.G() != 1 {
			t.Errorf("dominated candidate mutated the entry: g = %v", old.G())
		}
	})

	t.Run("NewStateIsNotADuplicate", func(t *testing.T) {
		w := corridor(t, 6)
		open := NewOpenList(compareF)
		closed := make(map[uint64]*Node)

		st := grid.Pos{X: 3, Y: 0}
		cand := NewNode(3, w.Heuristic(st), w.Distance(st), w.DistanceErr(st), 0, 0, 0, st, nil)
		if duplicateDetect(cand, closed, open) {
			t.Error("unknown state flagged as duplicate")
		}
	})
}
