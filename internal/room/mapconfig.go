package room

import "github.com/maz/hunter/internal/gridutil"

// defaultRoadBlock is the road-intersection spacing used when no map data
// is otherwise available: a cell is a road intersection when row or column
// is a multiple of this block size.
const defaultRoadBlock = 4

// MapConfig describes the static, given maze a room is played on. The wall
// layout itself is out of scope (spec.md non-goals); MapConfig only carries
// what the managers need: grid bounds, configured spawn/coin/sinkhole slot
// lists, and the road-intersection block size used as a spawn fallback.
type MapConfig struct {
	Grid            gridutil.Grid
	SpawnCells      []gridutil.Cell
	CoinSlots       []gridutil.Cell
	SinkholeSlots   []gridutil.Cell
	TrapSlots       []gridutil.Cell
	RoadBlock       int
	WrapRows        []int // reserved: non-wrapping unless explicitly marked, per spec.md 9
}

// DefaultMapConfig builds a generic maze-free grid: wall layout is out of
// scope (spec.md non-goals), so spawn/coin/sinkhole/trap slots are simply
// every road intersection on a rows x cols grid, in scan order.
func DefaultMapConfig(rows, cols int, cellSize float64) (MapConfig, error) {
	grid, err := gridutil.NewGrid(rows, cols, cellSize)
	if err != nil {
		return MapConfig{}, err
	}

	var intersections []gridutil.Cell
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			c := gridutil.Cell{Row: row, Col: col}
			if gridutil.IsRoadIntersection(c, defaultRoadBlock) {
				intersections = append(intersections, c)
			}
		}
	}

	return MapConfig{
		Grid:          grid,
		SpawnCells:    intersections,
		CoinSlots:     intersections,
		SinkholeSlots: intersections,
		TrapSlots:     intersections,
		RoadBlock:     defaultRoadBlock,
	}, nil
}
