package saw

import "fmt"

// Direction is one of the four lattice headings. The integer encoding and
// its delta table are shared by turn selection and by the delta-to-heading
// reverse lookup, so the mapping must never diverge between the two.
type Direction int

// Directions in row/column terms: Down increases the row index, Right
// increases the column index.
const (
	Down Direction = iota
	Left
	Up
	Right
)

// deltas maps a Direction to its (row, col) offset.
var deltas = [4][2]int{
	Down:  {1, 0},
	Left:  {0, -1},
	Up:    {-1, 0},
	Right: {0, 1},
}

// Delta returns the (row, col) offset for the direction.
func (d Direction) Delta() (dr, dc int) {
	return deltas[d][0], deltas[d][1]
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	return (d + 2) % 4
}

func (d Direction) String() string {
	switch d {
	case Down:
		return "down"
	case Left:
		return "left"
	case Up:
		return "up"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// directionFromDelta is the inverse of Delta. The weighted step uses it to
// recompute the heading after choosing a neighbour by position.
func directionFromDelta(dr, dc int) (Direction, bool) {
	for d, delta := range deltas {
		if delta[0] == dr && delta[1] == dc {
			return Direction(d), true
		}
	}
	return 0, false
}

// Position is a (row, col) lattice coordinate.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Grid is a dense square occupancy buffer. Each cell holds zero when
// unvisited, or the 1-based order in which the cell was marked. The order is
// provenance for visualisation only; the walk logic treats any nonzero cell
// as occupied.
type Grid struct {
	size   int
	cells  []int
	visits int
}

// NewGrid creates an all-unvisited grid with the given side length.
func NewGrid(size int) *Grid {
	return &Grid{
		size:  size,
		cells: make([]int, size*size),
	}
}

// Size returns the side length.
func (g *Grid) Size() int { return g.size }

// At returns the visit mark at (row, col), zero for unvisited cells.
func (g *Grid) At(row, col int) int {
	return g.cells[row*g.size+col]
}

// Visited reports whether (row, col) has been marked.
func (g *Grid) Visited(row, col int) bool {
	return g.cells[row*g.size+col] != 0
}

// InBounds reports whether (row, col) lies on the grid.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.size && col >= 0 && col < g.size
}

// mark records a visit at (row, col), stamping it with the next 1-based
// visit index. Marking an already-visited cell would corrupt the
// self-avoidance invariant, so callers check Visited first.
func (g *Grid) mark(row, col int) {
	g.visits++
	g.cells[row*g.size+col] = g.visits
}

// VisitedCount returns the number of marked cells.
func (g *Grid) VisitedCount() int { return g.visits }

// Reset clears all visit marks.
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i] = 0
	}
	g.visits = 0
}

// Cells returns a copy of the visit buffer in row-major order. The copy is
// safe to hand to rendering code while the walk continues.
func (g *Grid) Cells() []int {
	out := make([]int, len(g.cells))
	copy(out, g.cells)
	return out
}
