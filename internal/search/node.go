package search

import (
	"fmt"
	"math"

	"upside-down-research.com/oss/rtsearch/internal/domain"
)

// minEpsilonSamples is how many path residuals a node must have seen before
// its stream means replace the inherited anchors.
const minEpsilonSamples = 5

// Node is a search-tree record for a domain state. g accumulates path cost
// from the current search root; h, d and derr carry the domain's estimates
// at generation time; epsH/epsD are path-based one-step error means.
// backupHHat and nancyFrontier are transient, rewritten by every belief
// backup.
type Node struct {
	g    float64
	h    float64
	d    float64
	derr float64

	open  bool
	delay uint

	startEpsH float64
	startEpsD float64
	epsH      float64
	epsD      float64
	// expansions counts how many one-step residuals have fed epsH/epsD
	// along the path that produced this node.
	expansions uint

	parent *Node
	state  domain.State

	nancyFrontier *Node
	backupHHat    float64
}

// NewNode creates a node. epsH/epsD seed both the live means and the
// anchors used while the sample count stays below minEpsilonSamples.
func NewNode(g, h, d, derr, epsH, epsD float64, expansions uint, state domain.State, parent *Node) *Node {
	return &Node{
		g:          g,
		h:          h,
		d:          d,
		derr:       derr,
		open:       true,
		startEpsH:  epsH,
		startEpsD:  epsD,
		epsH:       epsH,
		epsD:       epsD,
		expansions: expansions,
		parent:     parent,
		state:      state,
	}
}

// G returns the accumulated path cost from the search root.
func (n *Node) G() float64 { return n.g }

// H returns the heuristic cost-to-go estimate.
func (n *Node) H() float64 { return n.h }

// D returns the steps-to-go estimate.
func (n *Node) D() float64 { return n.d }

// F returns g + h.
func (n *Node) F() float64 { return n.g + n.h }

// DHat returns the error-corrected steps-to-go estimate derr/(1-epsD),
// +Inf once the distance error mean reaches 1.
func (n *Node) DHat() float64 {
	if n.epsD >= 1 {
		return math.Inf(1)
	}
	return n.derr / (1 - n.epsD)
}

// HHat returns the error-corrected cost-to-go estimate h + dhat*epsH.
func (n *Node) HHat() float64 { return n.h + n.DHat()*n.epsH }

// FHat returns g + hhat.
func (n *Node) FHat() float64 { return n.g + n.HHat() }

// State returns the associated domain state.
func (n *Node) State() domain.State { return n.state }

// Parent returns the node that generated this one, nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// OnOpen reports whether the node currently resides on OPEN.
func (n *Node) OnOpen() bool { return n.open }

func (n *Node) close()  { n.open = false }
func (n *Node) reopen() { n.open = true }

// PushPathEpsilons folds a one-step residual pair into the node's stream
// means. Below minEpsilonSamples the means stay pinned at the inherited
// anchors.
func (n *Node) PushPathEpsilons(epsH, epsD float64) {
	n.expansions++
	if n.expansions < minEpsilonSamples {
		n.epsH = n.startEpsH
		n.epsD = n.startEpsD
		return
	}
	c := float64(n.expansions)
	n.epsH += (epsH - n.epsH) / c
	n.epsD += (epsD - n.epsD) / c
}

// ResetStartEpsilons re-anchors the below-threshold epsilon values at the
// current means. Called when the node becomes a search root.
func (n *Node) ResetStartEpsilons() {
	n.startEpsH = n.epsH
	n.startEpsD = n.epsD
}

func (n *Node) String() string {
	return fmt.Sprintf("{state: %s, f: %g, g: %g, h: %g, d: %g, derr: %g, eps-h: %g, eps-d: %g, f-hat: %g}",
		n.state, n.F(), n.g, n.h, n.d, n.derr, n.epsH, n.epsD, n.FHat())
}

// takeFrom copies the path-dependent fields of a better duplicate into n.
func (n *Node) takeFrom(other *Node) {
	n.g = other.g
	n.parent = other.parent
	n.h = other.h
	n.d = other.d
	n.derr = other.derr
	n.epsH = other.epsH
	n.epsD = other.epsD
	n.state = other.state
}

// compareF orders by f, breaking ties on higher g, then on state key.
func compareF(a, b *Node) bool {
	if a.F() == b.F() {
		if a.g == b.g {
			return a.state.Key() > b.state.Key()
		}
		return a.g > b.g
	}
	return a.F() < b.F()
}

// compareFHat orders by fhat with the f, higher-g, state-key tie chain.
func compareFHat(a, b *Node) bool {
	if a.FHat() == b.FHat() {
		if a.F() == b.F() {
			if a.g == b.g {
				return a.state.Key() > b.state.Key()
			}
			return a.g > b.g
		}
		return a.F() < b.F()
	}
	return a.FHat() < b.FHat()
}

// compareH orders by h, breaking ties on higher g.
func compareH(a, b *Node) bool {
	if a.h == b.h {
		return a.g > b.g
	}
	return a.h < b.h
}

// compareHHat orders by hhat, breaking ties on higher g.
func compareHHat(a, b *Node) bool {
	if a.HHat() == b.HHat() {
		return a.g > b.g
	}
	return a.HHat() < b.HHat()
}

// compareBackupHHat orders by the backed-up hhat from the last belief
// propagation.
func compareBackupHHat(a, b *Node) bool {
	return a.backupHHat < b.backupHHat
}
