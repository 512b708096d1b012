package gridutil

import "testing"

func TestPathCellsSamePoint(t *testing.T) {
	got := PathCells(Cell{2, 2}, Cell{2, 2})
	want := []Cell{{2, 2}}
	if !equalCells(got, want) {
		t.Errorf("PathCells same point = %v, want %v", got, want)
	}
}

func TestPathCellsHorizontal(t *testing.T) {
	got := PathCells(Cell{0, 0}, Cell{0, 3})
	want := []Cell{{0, 0}, {0, 1}, {0, 2}, {0, 3}}
	if !equalCells(got, want) {
		t.Errorf("PathCells horizontal = %v, want %v", got, want)
	}
}

func TestPathCellsVertical(t *testing.T) {
	got := PathCells(Cell{0, 0}, Cell{3, 0})
	want := []Cell{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	if !equalCells(got, want) {
		t.Errorf("PathCells vertical = %v, want %v", got, want)
	}
}

func TestPathCellsDiagonal(t *testing.T) {
	got := PathCells(Cell{0, 0}, Cell{3, 3})
	want := []Cell{{0, 0}, {1, 1}, {2, 2}, {3, 3}}
	if !equalCells(got, want) {
		t.Errorf("PathCells diagonal = %v, want %v", got, want)
	}
}

func TestPathCellsEndpointsMatch(t *testing.T) {
	cases := []struct{ start, end Cell }{
		{Cell{4, 4}, Cell{4, 6}},
		{Cell{8, 4}, Cell{40, 40}},
		{Cell{10, 2}, Cell{1, 9}},
		{Cell{0, 0}, Cell{0, 0}},
	}
	for _, c := range cases {
		path := PathCells(c.start, c.end)
		if path[0] != c.start {
			t.Errorf("PathCells(%v,%v) first = %v, want start %v", c.start, c.end, path[0], c.start)
		}
		if path[len(path)-1] != c.end {
			t.Errorf("PathCells(%v,%v) last = %v, want end %v", c.start, c.end, path[len(path)-1], c.end)
		}
	}
}

// TestPathCellsCrossesInterveningCell checks the scenario from the spec's
// tag-with-i-frames example: a hunter moving from (4,4) to (4,6) must cross
// the survivor's cell at (4,5).
func TestPathCellsCrossesInterveningCell(t *testing.T) {
	path := PathCells(Cell{4, 4}, Cell{4, 6})
	found := false
	for _, c := range path {
		if c == (Cell{4, 5}) {
			found = true
		}
	}
	if !found {
		t.Errorf("PathCells(4,4 -> 4,6) = %v, expected to cross (4,5)", path)
	}
}

func equalCells(a, b []Cell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
