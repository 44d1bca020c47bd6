package physics

import "math"

// SpatialGrid is a uniform hash grid for neighbourhood queries in an unbounded
// world. Items are inserted by position and index, then nearby items can be
// queried through a 3x3 cell neighbourhood lookup.
//
// Cell size must be >= the largest query distance so that every item within
// that distance of the query point lies in the 3x3 neighbourhood.
type SpatialGrid struct {
	cellSize    float64
	invCellSize float64 // 1 / cellSize (precomputed to avoid division)
	cells       map[cellKey]*gridCell
	used        []*gridCell
}

type cellKey struct {
	col, row int
}

// gridCell stores the indices of items that fall within a grid cell.
// The slice is reused between frames (reset to [:0]) to avoid allocations.
type gridCell struct {
	items []int
}

// NewSpatialGrid creates an empty grid with the given cell size.
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &SpatialGrid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cells:       make(map[cellKey]*gridCell),
	}
}

// CellSize returns the edge length of one cell.
func (g *SpatialGrid) CellSize() float64 {
	return g.cellSize
}

// Clear removes all items from the grid without deallocating cell memory.
func (g *SpatialGrid) Clear() {
	for _, c := range g.used {
		c.items = c.items[:0]
	}
	g.used = g.used[:0]
}

// Insert adds an item (identified by index) at the given world position.
func (g *SpatialGrid) Insert(p Vec2, index int) {
	key := g.keyOf(p)
	c, ok := g.cells[key]
	if !ok {
		c = &gridCell{}
		g.cells[key] = c
	}
	if len(c.items) == 0 {
		g.used = append(g.used, c)
	}
	c.items = append(c.items, index)
}

// QueryAround calls fn for each item index in the 3x3 cell neighbourhood
// around the given world position. If fn returns true, iteration stops early.
func (g *SpatialGrid) QueryAround(p Vec2, fn func(index int) bool) {
	center := g.keyOf(p)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			c, ok := g.cells[cellKey{col: center.col + dc, row: center.row + dr}]
			if !ok {
				continue
			}
			for _, idx := range c.items {
				if fn(idx) {
					return
				}
			}
		}
	}
}

func (g *SpatialGrid) keyOf(p Vec2) cellKey {
	return cellKey{
		col: int(math.Floor(p.X * g.invCellSize)),
		row: int(math.Floor(p.Y * g.invCellSize)),
	}
}
