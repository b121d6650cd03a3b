// Package tiles implements the sliding-tile puzzle domain (3x3 and 4x4)
// with unit move costs and a Manhattan-distance heuristic.
//
// Instance format: a size line, then size*size tile numbers in row-major
// order with 0 as the blank.
package tiles

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"upside-down-research.com/oss/rtsearch/internal/domain"
)

// Sentinel errors for instance construction.
var (
	// ErrBadSize indicates an unsupported board size.
	ErrBadSize = errors.New("tiles: board size must be 3 or 4")
	// ErrBadBoard indicates the tile listing is not a permutation of 0..n-1.
	ErrBadBoard = errors.New("tiles: tiles must be a permutation of 0..size*size-1")
)

// Board is a puzzle configuration. Tiles are stored row-major; the blank is
// tile 0. It is the puzzle's State.
type Board struct {
	size  int
	tiles []uint8
	blank int
}

// NewBoard builds a board from a row-major tile listing.
func NewBoard(size int, tiles []uint8) (Board, error) {
	if size < 3 || size > 4 {
		return Board{}, ErrBadSize
	}
	n := size * size
	if len(tiles) != n {
		return Board{}, ErrBadBoard
	}
	seen := make([]bool, n)
	blank := -1
	for i, t := range tiles {
		if int(t) >= n || seen[t] {
			return Board{}, ErrBadBoard
		}
		seen[t] = true
		if t == 0 {
			blank = i
		}
	}
	b := Board{size: size, tiles: append([]uint8(nil), tiles...), blank: blank}
	return b, nil
}

// Key packs the board into nibbles; unique for sizes up to 4x4.
func (b Board) Key() uint64 {
	var k uint64
	for _, t := range b.tiles {
		k = k<<4 | uint64(t)
	}
	return k
}

func (b Board) String() string {
	parts := make([]string, len(b.tiles))
	for i, t := range b.tiles {
		parts[i] = strconv.Itoa(int(t))
	}
	return strings.Join(parts, " ")
}

func (b Board) move(from int) Board {
	tiles := append([]uint8(nil), b.tiles...)
	tiles[b.blank] = tiles[from]
	tiles[from] = 0
	return Board{size: b.size, tiles: tiles, blank: from}
}

// Puzzle is a sliding-tile instance.
type Puzzle struct {
	size  int
	start Board

	*domain.Cache
}

// New builds a puzzle from a start board.
func New(start Board) *Puzzle {
	return &Puzzle{size: start.size, start: start, Cache: domain.NewCache()}
}

// Parse reads an instance in the size/tiles format.
func Parse(r io.Reader) (*Puzzle, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	readInt := func() (int, error) {
		if !sc.Scan() {
			return 0, fmt.Errorf("tiles: truncated instance")
		}
		return strconv.Atoi(sc.Text())
	}

	size, err := readInt()
	if err != nil {
		return nil, fmt.Errorf("tiles: bad size: %w", err)
	}
	if size < 3 || size > 4 {
		return nil, ErrBadSize
	}
	tiles := make([]uint8, size*size)
	for i := range tiles {
		v, err := readInt()
		if err != nil {
			return nil, fmt.Errorf("tiles: bad tile %d: %w", i, err)
		}
		tiles[i] = uint8(v)
	}
	board, err := NewBoard(size, tiles)
	if err != nil {
		return nil, err
	}
	return New(board), nil
}

// Start returns the initial configuration.
func (p *Puzzle) Start() domain.State { return p.start }

// IsGoal reports whether tiles 1..n-1 fill the board in row-major order
// with the blank last.
func (p *Puzzle) IsGoal(s domain.State) bool {
	b := s.(Board)
	n := len(b.tiles)
	for i, t := range b.tiles {
		want := uint8(i + 1)
		if i == n-1 {
			want = 0
		}
		if t != want {
			return false
		}
	}
	return true
}

// Heuristic returns the corrected cost-to-go estimate, seeded with the
// Manhattan distance sum on first query.
func (p *Puzzle) Heuristic(s domain.State) float64 {
	if v, ok := p.Cache.H(s); ok {
		return v
	}
	v := p.manhattan(s.(Board))
	p.Cache.UpdateHeuristic(s, v)
	return v
}

// Distance returns the corrected steps-to-go estimate.
func (p *Puzzle) Distance(s domain.State) float64 {
	if v, ok := p.Cache.D(s); ok {
		return v
	}
	v := p.manhattan(s.(Board))
	p.Cache.UpdateDistance(s, v)
	return v
}

// DistanceErr returns the corrected secondary steps-to-go estimate.
func (p *Puzzle) DistanceErr(s domain.State) float64 {
	if v, ok := p.Cache.DErr(s); ok {
		return v
	}
	v := p.manhattan(s.(Board))
	p.Cache.UpdateDistanceErr(s, v)
	return v
}

// Successors returns the boards reachable by sliding a tile into the blank
// and records the reverse edges for Predecessors.
func (p *Puzzle) Successors(s domain.State) []domain.State {
	b := s.(Board)
	x, y := b.blank%b.size, b.blank/b.size
	succs := make([]domain.State, 0, 4)
	for _, m := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		nx, ny := x+m[0], y+m[1]
		if nx < 0 || ny < 0 || nx >= b.size || ny >= b.size {
			continue
		}
		succ := b.move(ny*b.size + nx)
		succs = append(succs, succ)
		p.Cache.RecordEdge(b, succ)
	}
	return succs
}

// EdgeCost is 1 for every move.
func (p *Puzzle) EdgeCost(domain.State) float64 { return 1 }

func (p *Puzzle) manhattan(b Board) float64 {
	var sum int
	for i, t := range b.tiles {
		if t == 0 {
			continue
		}
		goal := int(t) - 1
		gx, gy := goal%b.size, goal/b.size
		x, y := i%b.size, i/b.size
		sum += abs(x-gx) + abs(y-gy)
	}
	return float64(sum)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
