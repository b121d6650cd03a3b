package search

import "container/heap"

// lessFunc orders two nodes; true means a sorts before b.
type lessFunc func(a, b *Node) bool

// OpenList is the search frontier: a min-heap whose ordering can be swapped
// in place. Heap positions are tracked per node so external mutations can
// re-sift a single entry, and so the same nodes can sit on several lists
// (the belief and learning passes work on copies).
type OpenList struct {
	h openHeap
}

type openHeap struct {
	items []*Node
	index map[*Node]int
	less  lessFunc
}

func (h *openHeap) Len() int           { return len(h.items) }
func (h *openHeap) Less(i, j int) bool { return h.less(h.items[i], h.items[j]) }

func (h *openHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.index[h.items[i]] = i
	h.index[h.items[j]] = j
}

func (h *openHeap) Push(x any) {
	n := x.(*Node)
	h.index[n] = len(h.items)
	h.items = append(h.items, n)
}

func (h *openHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.items = old[:n-1]
	delete(h.index, item)
	return item
}

// NewOpenList creates an empty list with the given ordering.
func NewOpenList(less lessFunc) *OpenList {
	return &OpenList{h: openHeap{index: make(map[*Node]int), less: less}}
}

// Len returns the number of nodes on the list.
func (o *OpenList) Len() int { return o.h.Len() }

// Empty reports whether the list holds no nodes.
func (o *OpenList) Empty() bool { return o.h.Len() == 0 }

// Top returns the minimal node without removing it, nil when empty.
func (o *OpenList) Top() *Node {
	if o.h.Len() == 0 {
		return nil
	}
	return o.h.items[0]
}

// Push adds a node.
func (o *OpenList) Push(n *Node) { heap.Push(&o.h, n) }

// Pop removes and returns the minimal node, nil when empty.
func (o *OpenList) Pop() *Node {
	if o.h.Len() == 0 {
		return nil
	}
	return heap.Pop(&o.h).(*Node)
}

// Update re-sifts a node after an external mutation changed its key.
func (o *OpenList) Update(n *Node) {
	if i, ok := o.h.index[n]; ok {
		heap.Fix(&o.h, i)
	}
}

// Contains reports whether n is on the list.
func (o *OpenList) Contains(n *Node) bool {
	_, ok := o.h.index[n]
	return ok
}

// SwapComparator replaces the ordering and re-heapifies in place.
func (o *OpenList) SwapComparator(less lessFunc) {
	o.h.less = less
	heap.Init(&o.h)
}

// Clear drops every node.
func (o *OpenList) Clear() {
	o.h.items = o.h.items[:0]
	o.h.index = make(map[*Node]int)
}

// Copy returns a new list over the same nodes with the same ordering.
// Mutating the copy's membership leaves the original untouched.
func (o *OpenList) Copy() *OpenList {
	c := NewOpenList(o.h.less)
	c.h.items = append(c.h.items, o.h.items...)
	for n, i := range o.h.index {
		c.h.index[n] = i
	}
	return c
}

// Each visits every node on the list in arbitrary order.
func (o *OpenList) Each(fn func(*Node)) {
	for _, n := range o.h.items {
		fn(n)
	}
}
