package gridutil

// PathCells returns the ordered set of grid cells visited moving from start
// to end using a standard Bresenham line-stepping algorithm. The result
// always includes both endpoints. start == end yields a single-cell path.
//
// This generalizes the axis-aligned, closure-based path scanning used for
// sliding-puzzle movement (walk one axis at a time, test each intervening
// cell) to full 2D movement: a hunter may cross a survivor's cell along any
// of the eight octants between two position samples, not just along a row
// or column.
func PathCells(start, end Cell) []Cell {
	dr := end.Row - start.Row
	dc := end.Col - start.Col

	absDr, absDc := abs(dr), abs(dc)
	steps := absDr
	if absDc > steps {
		steps = absDc
	}
	if steps == 0 {
		return []Cell{start}
	}

	path := make([]Cell, 0, steps+1)
	// Bresenham via fixed-point error accumulation along the dominant axis.
	if absDc >= absDr {
		sx := sign(dc)
		sy := sign(dr)
		errAcc := absDc / 2
		row, col := start.Row, start.Col
		for i := 0; i <= absDc; i++ {
			path = append(path, Cell{Row: row, Col: col})
			errAcc -= absDr
			if errAcc < 0 {
				row += sy
				errAcc += absDc
			}
			col += sx
		}
	} else {
		sx := sign(dc)
		sy := sign(dr)
		errAcc := absDr / 2
		row, col := start.Row, start.Col
		for i := 0; i <= absDr; i++ {
			path = append(path, Cell{Row: row, Col: col})
			errAcc -= absDc
			if errAcc < 0 {
				col += sx
				errAcc += absDr
			}
			row += sy
		}
	}
	return path
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
