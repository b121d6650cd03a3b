package domain

// Cache holds the per-state bookkeeping every concrete domain embeds: the
// corrected heuristic/distance/distance-error tables the learning pass
// writes into, the recorded predecessor edges, the global one-step error
// accumulators and the expansion-delay window.
//
// The tables are authoritative once written: a domain's Heuristic should
// consult H before falling back to its base estimate.
type Cache struct {
	h    map[uint64]float64
	d    map[uint64]float64
	derr map[uint64]float64

	preds    map[uint64][]State
	predSeen map[uint64]map[uint64]struct{}

	window *Window

	epsHSum    float64
	epsDSum    float64
	epsH       float64
	epsD       float64
	expansions float64
}

// NewCache creates an empty cache with a default-sized delay window.
func NewCache() *Cache {
	return &Cache{
		h:        make(map[uint64]float64),
		d:        make(map[uint64]float64),
		derr:     make(map[uint64]float64),
		preds:    make(map[uint64][]State),
		predSeen: make(map[uint64]map[uint64]struct{}),
		window:   NewWindow(DelayWindowSize),
	}
}

// H returns the corrected heuristic for s, if one has been recorded.
func (c *Cache) H(s State) (float64, bool) {
	v, ok := c.h[s.Key()]
	return v, ok
}

// D returns the corrected distance for s, if one has been recorded.
func (c *Cache) D(s State) (float64, bool) {
	v, ok := c.d[s.Key()]
	return v, ok
}

// DErr returns the corrected distance-error for s, if one has been recorded.
func (c *Cache) DErr(s State) (float64, bool) {
	v, ok := c.derr[s.Key()]
	return v, ok
}

// UpdateHeuristic records a corrected heuristic value for s.
func (c *Cache) UpdateHeuristic(s State, v float64) { c.h[s.Key()] = v }

// UpdateDistance records a corrected distance value for s.
func (c *Cache) UpdateDistance(s State, v float64) { c.d[s.Key()] = v }

// UpdateDistanceErr records a corrected distance-error value for s.
func (c *Cache) UpdateDistanceErr(s State, v float64) { c.derr[s.Key()] = v }

// RecordEdge notes from as a predecessor of to. Repeated recordings of the
// same edge are deduplicated so Predecessors stays proportional to the
// in-degree.
func (c *Cache) RecordEdge(from, to State) {
	k := to.Key()
	seen, ok := c.predSeen[k]
	if !ok {
		seen = make(map[uint64]struct{})
		c.predSeen[k] = seen
	}
	if _, dup := seen[from.Key()]; dup {
		return
	}
	seen[from.Key()] = struct{}{}
	c.preds[k] = append(c.preds[k], from)
}

// Predecessors returns the recorded predecessors of s; empty until a
// neighbor's Successors call recorded the edge.
func (c *Cache) Predecessors(s State) []State {
	return c.preds[s.Key()]
}

// PushDelayWindow records one expansion-delay sample.
func (c *Cache) PushDelayWindow(v uint) { c.window.Push(v) }

// AverageDelayWindow returns the mean recorded delay, 1.0 when empty.
func (c *Cache) AverageDelayWindow() float64 { return c.window.Average() }

// EpsilonHGlobal returns the current global one-step heuristic error mean.
func (c *Cache) EpsilonHGlobal() float64 { return c.epsH }

// EpsilonDGlobal returns the current global one-step distance error mean.
func (c *Cache) EpsilonDGlobal() float64 { return c.epsD }

// PushEpsilonHGlobal accumulates a heuristic one-step error residual.
func (c *Cache) PushEpsilonHGlobal(eps float64) {
	c.epsHSum += eps
	c.expansions++
}

// PushEpsilonDGlobal accumulates a distance one-step error residual.
func (c *Cache) PushEpsilonDGlobal(eps float64) {
	c.epsDSum += eps
	c.expansions++
}

// UpdateEpsilons refreshes the global error means from the accumulated
// residuals. A no-op before the first residual arrives.
func (c *Cache) UpdateEpsilons() {
	if c.expansions == 0 {
		return
	}
	c.epsH = c.epsHSum / c.expansions
	c.epsD = c.epsDSum / c.expansions
}

// Reset clears the tables, accumulators and delay window.
func (c *Cache) Reset() {
	c.h = make(map[uint64]float64)
	c.d = make(map[uint64]float64)
	c.derr = make(map[uint64]float64)
	c.preds = make(map[uint64][]State)
	c.predSeen = make(map[uint64]map[uint64]struct{})
	c.window.Clear()
	c.epsHSum, c.epsDSum = 0, 0
	c.epsH, c.epsD = 0, 0
	c.expansions = 0
}
