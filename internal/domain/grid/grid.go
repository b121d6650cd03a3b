// Package grid implements 4-connected grid pathfinding over maps with
// blocked cells: unit edge costs and a Euclidean distance-to-goal estimate
// for the heuristic, distance and distance-error seeds.
//
// Map format: a width line, a height line, then height rows of width
// characters where '#' blocks a cell, '@' marks the start, '*' marks the
// goal and anything else is free.
package grid

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"upside-down-research.com/oss/rtsearch/internal/domain"
)

// Sentinel errors for map construction.
var (
	// ErrEmptyMap indicates the map has no rows or no columns.
	ErrEmptyMap = errors.New("grid: map must have at least one row and one column")
	// ErrNoStart indicates the map defines no '@' cell.
	ErrNoStart = errors.New("grid: map has no start cell")
	// ErrNoGoal indicates the map defines no '*' cell.
	ErrNoGoal = errors.New("grid: map has no goal cell")
)

// Pos is a cell location. It is the grid's State.
type Pos struct {
	X, Y int
}

// Key packs the coordinates into a single map key.
func (p Pos) Key() uint64 {
	return uint64(uint32(p.Y))<<32 | uint64(uint32(p.X))
}

func (p Pos) String() string {
	return fmt.Sprintf("%d %d", p.X, p.Y)
}

// World is a 4-connected grid pathfinding instance.
type World struct {
	width, height int
	blocked       map[Pos]struct{}
	start, goal   Pos

	*domain.Cache
}

var moves = [4]Pos{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// New builds a grid world from explicit dimensions and blocked cells.
func New(width, height int, blocked []Pos, start, goal Pos) (*World, error) {
	if width < 1 || height < 1 {
		return nil, ErrEmptyMap
	}
	w := &World{
		width:   width,
		height:  height,
		blocked: make(map[Pos]struct{}, len(blocked)),
		start:   start,
		goal:    goal,
		Cache:   domain.NewCache(),
	}
	for _, b := range blocked {
		w.blocked[b] = struct{}{}
	}
	return w, nil
}

// Parse reads a map in the width/height/rows format.
func Parse(r io.Reader) (*World, error) {
	sc := bufio.NewScanner(r)

	readInt := func(what string) (int, error) {
		if !sc.Scan() {
			return 0, fmt.Errorf("grid: missing %s line", what)
		}
		v, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
		if err != nil {
			return 0, fmt.Errorf("grid: bad %s line: %w", what, err)
		}
		return v, nil
	}

	width, err := readInt("width")
	if err != nil {
		return nil, err
	}
	height, err := readInt("height")
	if err != nil {
		return nil, err
	}
	if width < 1 || height < 1 {
		return nil, ErrEmptyMap
	}

	var (
		blocked     []Pos
		start, goal Pos
		haveStart   bool
		haveGoal    bool
	)
	for y := 0; y < height; y++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("grid: map ends at row %d of %d", y, height)
		}
		row := sc.Text()
		for x := 0; x < width && x < len(row); x++ {
			switch row[x] {
			case '#':
				blocked = append(blocked, Pos{x, y})
			case '@':
				start = Pos{x, y}
				haveStart = true
			case '*':
				goal = Pos{x, y}
				haveGoal = true
			}
		}
	}
	if !haveStart {
		return nil, ErrNoStart
	}
	if !haveGoal {
		return nil, ErrNoGoal
	}
	return New(width, height, blocked, start, goal)
}

// Start returns the '@' cell.
func (w *World) Start() domain.State { return w.start }

// Goal returns the '*' cell.
func (w *World) Goal() Pos { return w.goal }

// IsGoal reports whether s is the goal cell.
func (w *World) IsGoal(s domain.State) bool {
	return s.(Pos) == w.goal
}

// Heuristic returns the corrected cost-to-go estimate for s, seeding it
// with the Euclidean distance on first query.
func (w *World) Heuristic(s domain.State) float64 {
	if v, ok := w.Cache.H(s); ok {
		return v
	}
	v := w.euclidean(s.(Pos))
	w.Cache.UpdateHeuristic(s, v)
	return v
}

// Distance returns the corrected steps-to-go estimate for s.
func (w *World) Distance(s domain.State) float64 {
	if v, ok := w.Cache.D(s); ok {
		return v
	}
	v := w.euclidean(s.(Pos))
	w.Cache.UpdateDistance(s, v)
	return v
}

// DistanceErr returns the corrected secondary steps-to-go estimate for s.
func (w *World) DistanceErr(s domain.State) float64 {
	if v, ok := w.Cache.DErr(s); ok {
		return v
	}
	v := w.euclidean(s.(Pos))
	w.Cache.UpdateDistanceErr(s, v)
	return v
}

// Successors returns the in-bounds unblocked neighbors of s and records
// the reverse edges for Predecessors.
func (w *World) Successors(s domain.State) []domain.State {
	p := s.(Pos)
	succs := make([]domain.State, 0, 4)
	for _, m := range moves {
		n := Pos{p.X + m.X, p.Y + m.Y}
		if !w.legal(n) {
			continue
		}
		succs = append(succs, n)
		w.Cache.RecordEdge(p, n)
	}
	return succs
}

// EdgeCost is 1 for every move.
func (w *World) EdgeCost(domain.State) float64 { return 1 }

func (w *World) legal(p Pos) bool {
	if p.X < 0 || p.Y < 0 || p.X >= w.width || p.Y >= w.height {
		return false
	}
	_, b := w.blocked[p]
	return !b
}

func (w *World) euclidean(p Pos) float64 {
	dx := float64(p.X - w.goal.X)
	dy := float64(p.Y - w.goal.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
