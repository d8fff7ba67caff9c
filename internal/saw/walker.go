package saw

import (
	"fmt"
	"math/rand"
)

// Method selects the stepping algorithm a Walker uses.
type Method int

const (
	// Unweighted is direct simulation: a non-reversing turn chosen
	// uniformly from {left, straight, right}, rejecting the walk when it
	// steps into an occupied cell. Weights stay at 1, so the aggregate
	// success rate estimates the true SAW survival probability.
	Unweighted Method = iota
	// Weighted is Rosenbluth-Rosenbluth sampling: the walk always moves to
	// an unoccupied neighbour when one exists and compensates for the bias
	// with a multiplicative importance weight.
	Weighted
)

func (m Method) String() string {
	switch m {
	case Unweighted:
		return "unweighted"
	case Weighted:
		return "weighted"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod converts a method name ("unweighted" or "weighted") to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "unweighted":
		return Unweighted, nil
	case "weighted":
		return Weighted, nil
	}
	return 0, fmt.Errorf("unknown step method %q: use 'unweighted' or 'weighted'", s)
}

// StepResult is the outcome of a single step attempt.
type StepResult int

const (
	// Advanced means the walker moved to a fresh cell.
	Advanced StepResult = iota
	// Blocked means the walk is trapped and terminated early.
	Blocked
)

// rrBranchMax is the weight denominator for Rosenbluth-Rosenbluth steps.
// One of the four lattice neighbours is always the cell just vacated, so
// the branching factor excluding backtrack never exceeds 3. This constant
// is not the per-step open-site count Sn.
const rrBranchMax = 3

// GridSizeError reports a grid too small to guarantee the walk stays off
// the boundary. It is detected at construction, never mid-walk.
type GridSizeError struct {
	Size   int
	Target int
	Min    int
}

func (e *GridSizeError) Error() string {
	return fmt.Sprintf("grid size %d cannot contain a %d-step walk: need at least %d", e.Size, e.Target, e.Min)
}

// MinGridSize returns the smallest side length that keeps an n-step walk
// strictly inside the grid: the walk reaches at most n cells from the
// centre, plus one cell of margin for the neighbour scan.
func MinGridSize(n int) int {
	return 2*n + 3
}

// DefaultGridSize returns the generous side length used when the caller
// does not configure one.
func DefaultGridSize(n int) int {
	return 3*n + 3
}

// GridSize returns the side length for an n-step walk with the given margin
// multiplier: margin*n + 3. A non-positive margin selects the default.
// Margins below 2 produce a grid NewWalker rejects.
func GridSize(margin, n int) int {
	if margin <= 0 {
		return DefaultGridSize(n)
	}
	return margin*n + 3
}

// Walker is the SAW state machine. It owns its Grid and is mutated only by
// its own step methods; one Walker serves one trial at a time.
type Walker struct {
	target  int
	grid    *Grid
	row     int
	col     int
	heading Direction
	steps   int
	weight  float64
	alive   bool
	path    []Position
	rng     *rand.Rand
}

// NewWalker constructs a walker for an n-step walk on a fresh grid of the
// given side length, seeded and ready to step. The grid size is validated
// up front so a walk can never reach the boundary.
func NewWalker(n, gridSize int, rng *rand.Rand) (*Walker, error) {
	if n < 1 {
		return nil, fmt.Errorf("target length must be positive, got %d", n)
	}
	if min := MinGridSize(n); gridSize < min {
		return nil, &GridSizeError{Size: gridSize, Target: n, Min: min}
	}
	w := &Walker{
		target: n,
		grid:   NewGrid(gridSize),
		rng:    rng,
	}
	w.seed()
	return w, nil
}

// seed places the walker at the grid centre heading Right and pre-marks two
// cells: the cell directly behind the start, then the start itself. The
// seed cell fixes the initial heading and rules out a degenerate
// single-point walk; it sits behind the walker, so it is never a forward
// candidate for the first unweighted turn.
func (w *Walker) seed() {
	c := w.grid.Size() / 2
	w.row, w.col = c, c
	w.heading = Right
	w.steps = 0
	w.weight = 1.0
	w.alive = true

	dr, dc := w.heading.Reverse().Delta()
	w.grid.mark(c+dr, c+dc)
	w.grid.mark(c, c)

	w.path = w.path[:0]
	w.path = append(w.path, Position{Row: c, Col: c})
}

// Reset returns the walker to its freshly seeded state for another trial.
func (w *Walker) Reset() {
	w.grid.Reset()
	w.seed()
}

// Target returns the configured walk length N.
func (w *Walker) Target() int { return w.target }

// Steps returns the current step count k.
func (w *Walker) Steps() int { return w.steps }

// Weight returns the cumulative importance weight.
func (w *Walker) Weight() float64 { return w.weight }

// Alive reports whether the walk can still advance.
func (w *Walker) Alive() bool { return w.alive }

// Position returns the walker's current lattice coordinate.
func (w *Walker) Position() Position {
	return Position{Row: w.row, Col: w.col}
}

// SquaredDisplacement returns the squared end-to-end distance from the
// starting centre cell.
func (w *Walker) SquaredDisplacement() float64 {
	c := w.grid.Size() / 2
	dr := float64(w.row - c)
	dc := float64(w.col - c)
	return dr*dr + dc*dc
}

// Step advances the walk one cell using the chosen method. Stepping a
// blocked walker without a Reset stays Blocked.
func (w *Walker) Step(m Method) StepResult {
	if !w.alive || w.steps >= w.target {
		return Blocked
	}
	if m == Weighted {
		return w.weightedStep()
	}
	return w.unweightedStep()
}

// unweightedStep picks a turn uniformly from {left, straight, right}
// relative to the current heading. Backward moves are excluded, so this is
// a non-reversing walk, not a plain nearest-neighbour walk. Stepping into a
// visited cell traps the walk; the weight is untouched in this mode.
func (w *Walker) unweightedStep() StepResult {
	turn := w.rng.Intn(3) - 1 // -1 left, 0 straight, +1 right
	heading := Direction((int(w.heading) + turn + 4) % 4)
	dr, dc := heading.Delta()
	row, col := w.row+dr, w.col+dc

	if w.grid.Visited(row, col) {
		w.alive = false
		return Blocked
	}

	w.advance(row, col, heading)
	return Advanced
}

// weightedStep is the Rosenbluth-Rosenbluth move. All four neighbours are
// examined; with Sn open sites the running weight picks up a factor Sn/3
// and the next cell is chosen uniformly among the open sites. The weight
// correction already accounts for the reduced branching, so the choice
// itself is unbiased among survivors. Sn = 0 traps the walk with weight
// exactly 0, which keeps it out of every weighted statistic.
func (w *Walker) weightedStep() StepResult {
	var open [4]Position
	n := 0
	for d := 0; d < 4; d++ {
		dr, dc := Direction(d).Delta()
		row, col := w.row+dr, w.col+dc
		if !w.grid.Visited(row, col) {
			open[n] = Position{Row: row, Col: col}
			n++
		}
	}

	if n == 0 {
		w.weight = 0
		w.alive = false
		return Blocked
	}

	w.weight *= float64(n) / rrBranchMax

	next := open[w.rng.Intn(n)]
	heading, ok := directionFromDelta(next.Row-w.row, next.Col-w.col)
	if !ok {
		// Unreachable: open sites are lattice neighbours by construction.
		panic("saw: open site is not a lattice neighbour")
	}

	w.advance(next.Row, next.Col, heading)
	return Advanced
}

// advance commits a successful step: mark, move, record, count.
func (w *Walker) advance(row, col int, heading Direction) {
	w.grid.mark(row, col)
	w.row, w.col = row, col
	w.heading = heading
	w.steps++
	w.path = append(w.path, Position{Row: row, Col: col})
}

// Snapshot is an immutable copy of a walker's observable state, safe to
// hand to rendering code running concurrently with further simulation.
type Snapshot struct {
	Size   int        `json:"size"`
	Target int        `json:"target"`
	Steps  int        `json:"steps"`
	Weight float64    `json:"weight"`
	Alive  bool       `json:"alive"`
	Cells  []int      `json:"cells"`
	Path   []Position `json:"path"`
}

// Snapshot copies the grid and position history.
func (w *Walker) Snapshot() Snapshot {
	path := make([]Position, len(w.path))
	copy(path, w.path)
	return Snapshot{
		Size:   w.grid.Size(),
		Target: w.target,
		Steps:  w.steps,
		Weight: w.weight,
		Alive:  w.alive,
		Cells:  w.grid.Cells(),
		Path:   path,
	}
}
