package saw

import "testing"

func TestDirectionDelta(t *testing.T) {
	tests := []struct {
		d      Direction
		dr, dc int
	}{
		{Down, 1, 0},
		{Left, 0, -1},
		{Up, -1, 0},
		{Right, 0, 1},
	}
	for _, tt := range tests {
		dr, dc := tt.d.Delta()
		if dr != tt.dr || dc != tt.dc {
			t.Errorf("%s.Delta() = (%d,%d), want (%d,%d)", tt.d, dr, dc, tt.dr, tt.dc)
		}
	}
}

func TestDirectionReverse(t *testing.T) {
	pairs := map[Direction]Direction{
		Down:  Up,
		Up:    Down,
		Left:  Right,
		Right: Left,
	}
	for d, want := range pairs {
		if got := d.Reverse(); got != want {
			t.Errorf("%s.Reverse() = %s, want %s", d, got, want)
		}
	}
}

func TestDirectionFromDelta(t *testing.T) {
	// Every direction's delta must map back to itself.
	for d := Direction(0); d < 4; d++ {
		dr, dc := d.Delta()
		got, ok := directionFromDelta(dr, dc)
		if !ok || got != d {
			t.Errorf("directionFromDelta(%d,%d) = %s,%v, want %s", dr, dc, got, ok, d)
		}
	}

	for _, bad := range [][2]int{{0, 0}, {1, 1}, {-1, 1}, {2, 0}} {
		if _, ok := directionFromDelta(bad[0], bad[1]); ok {
			t.Errorf("directionFromDelta(%d,%d) accepted a non-neighbour delta", bad[0], bad[1])
		}
	}
}

func TestGridMarkOrder(t *testing.T) {
	g := NewGrid(5)

	if g.VisitedCount() != 0 {
		t.Fatalf("fresh grid VisitedCount = %d, want 0", g.VisitedCount())
	}
	if g.Visited(2, 2) {
		t.Fatal("fresh grid reports (2,2) visited")
	}

	g.mark(2, 2)
	g.mark(2, 3)
	g.mark(1, 3)

	if got := g.At(2, 2); got != 1 {
		t.Errorf("first mark At(2,2) = %d, want 1", got)
	}
	if got := g.At(2, 3); got != 2 {
		t.Errorf("second mark At(2,3) = %d, want 2", got)
	}
	if got := g.At(1, 3); got != 3 {
		t.Errorf("third mark At(1,3) = %d, want 3", got)
	}
	if g.VisitedCount() != 3 {
		t.Errorf("VisitedCount = %d, want 3", g.VisitedCount())
	}
	if g.At(0, 0) != 0 {
		t.Errorf("unmarked cell At(0,0) = %d, want 0", g.At(0, 0))
	}
}

func TestGridReset(t *testing.T) {
	g := NewGrid(4)
	g.mark(1, 1)
	g.mark(1, 2)

	g.Reset()

	if g.VisitedCount() != 0 {
		t.Errorf("VisitedCount after Reset = %d, want 0", g.VisitedCount())
	}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if g.Visited(row, col) {
				t.Errorf("(%d,%d) still visited after Reset", row, col)
			}
		}
	}

	// Numbering restarts from 1 after a reset.
	g.mark(3, 3)
	if got := g.At(3, 3); got != 1 {
		t.Errorf("first mark after Reset = %d, want 1", got)
	}
}

func TestGridInBounds(t *testing.T) {
	g := NewGrid(3)
	tests := []struct {
		row, col int
		want     bool
	}{
		{0, 0, true},
		{2, 2, true},
		{-1, 0, false},
		{0, -1, false},
		{3, 0, false},
		{0, 3, false},
	}
	for _, tt := range tests {
		if got := g.InBounds(tt.row, tt.col); got != tt.want {
			t.Errorf("InBounds(%d,%d) = %v, want %v", tt.row, tt.col, got, tt.want)
		}
	}
}

func TestGridCellsIsACopy(t *testing.T) {
	g := NewGrid(3)
	g.mark(1, 1)

	cells := g.Cells()
	cells[0] = 99

	if g.At(0, 0) != 0 {
		t.Error("mutating the Cells copy leaked into the grid")
	}
	if cells[1*3+1] != 1 {
		t.Errorf("Cells copy missing mark: got %d, want 1", cells[1*3+1])
	}
}
