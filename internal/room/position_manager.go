package room

import (
	"sync"
	"time"

	"github.com/maz/hunter/internal/gridutil"
)

// respawnGracePeriod is the post-respawn window during which position
// updates are throttled away, per spec.md 4.3.
const respawnGracePeriod = 100 * time.Millisecond

// PositionMgr holds per-player position and a lightweight update throttle.
// Grounded in style on model/position.go's coordinate types and
// game/validate.go's axis-aware movement checking, generalized to full 2D
// continuous movement plus a Bresenham path (internal/gridutil.PathCells)
// rather than the teacher's pure sliding-puzzle moves.
type PositionMgr struct {
	throttle time.Duration

	mu           sync.Mutex
	lastUpdate   map[string]time.Time // playerId -> last accepted update
	respawnedAt  map[string]time.Time // playerId -> last respawn/teleport stamp
}

// NewPositionMgr constructs a PositionMgr with the configured throttle
// interval (≈30ms per spec.md 6).
func NewPositionMgr(throttle time.Duration) *PositionMgr {
	return &PositionMgr{
		throttle:    throttle,
		lastUpdate:  make(map[string]time.Time),
		respawnedAt: make(map[string]time.Time),
	}
}

// AssignSpawnPositions gives each player a unique cell: first drawing from
// mapConfig's configured spawn list, then falling back to road
// intersections (cells where row%block==0 or col%block==0) once the
// configured list is exhausted or already taken.
func (m *PositionMgr) AssignSpawnPositions(room *Room, players []*Player, cfg MapConfig) map[string]gridutil.Cell {
	taken := make(map[gridutil.Cell]struct{}, len(players))
	assigned := make(map[string]gridutil.Cell, len(players))

	nextFromList := func() (gridutil.Cell, bool) {
		for _, c := range cfg.SpawnCells {
			if _, used := taken[c]; !used {
				return c, true
			}
		}
		return gridutil.Cell{}, false
	}

	nextFromRoad := func() gridutil.Cell {
		for row := 0; row < cfg.Grid.Rows; row++ {
			for col := 0; col < cfg.Grid.Cols; col++ {
				c := gridutil.Cell{Row: row, Col: col}
				if _, used := taken[c]; used {
					continue
				}
				if gridutil.IsRoadIntersection(c, cfg.RoadBlock) {
					return c
				}
			}
		}
		return gridutil.Cell{} // degenerate: no room left at all
	}

	for _, p := range players {
		cell, ok := nextFromList()
		if !ok {
			cell = nextFromRoad()
		}
		taken[cell] = struct{}{}
		assigned[p.PlayerID] = cell

		pixel := cfg.Grid.ToPixel(cell)
		room.Positions[p.PlayerID] = &Position{Cell: cell, Point: pixel, UpdatedAt: time.Now()}
	}
	return assigned
}

// IsThrottled reports whether playerId's next update should be rejected:
// either the minimum update interval hasn't elapsed, or the player is still
// within the post-respawn grace window.
func (m *PositionMgr) IsThrottled(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if last, ok := m.lastUpdate[playerID]; ok && now.Sub(last) < m.throttle {
		return true
	}
	if respawned, ok := m.respawnedAt[playerID]; ok && now.Sub(respawned) < respawnGracePeriod {
		return true
	}
	return false
}

// UpdatePosition validates bounds, clamps the vertical axis, preserves the
// horizontal axis (clients may legitimately report out-of-range values
// during transitions, per spec.md 4.3), stamps the update, and returns the
// stored value. Returns (nil, false) on throttle — this is a hot path and
// must never error.
func (m *PositionMgr) UpdatePosition(room *Room, playerID string, proposed Position, grid gridutil.Grid) (*Position, bool) {
	if m.IsThrottled(playerID) {
		return nil, false
	}

	clamped := proposed
	if clamped.Cell.Row < 0 {
		clamped.Cell.Row = 0
	} else if clamped.Cell.Row >= grid.Rows {
		clamped.Cell.Row = grid.Rows - 1
	}
	// Horizontal axis is intentionally not clamped here; see doc comment.
	clamped.UpdatedAt = time.Now()

	room.Positions[playerID] = &clamped

	m.mu.Lock()
	m.lastUpdate[playerID] = clamped.UpdatedAt
	m.mu.Unlock()

	return &clamped, true
}

// PathCells delegates to gridutil.PathCells, short-circuiting to the
// destination cell alone when the move was a teleport (spec.md 4.3, 4.6).
func (m *PositionMgr) PathCells(old, new Position) []gridutil.Cell {
	if new.WasTeleport {
		return []gridutil.Cell{new.Cell}
	}
	return gridutil.PathCells(old.Cell, new.Cell)
}

// SetPlayerPosition is used for respawns and teleports: atomically sets
// grid and pixel, stamps the respawn clock, and sets or clears the
// teleport flag.
func (m *PositionMgr) SetPlayerPosition(room *Room, playerID string, cell gridutil.Cell, grid gridutil.Grid, wasTeleport bool) *Position {
	now := time.Now()
	pos := &Position{Cell: cell, Point: grid.ToPixel(cell), UpdatedAt: now, WasTeleport: wasTeleport}
	room.Positions[playerID] = pos

	m.mu.Lock()
	m.respawnedAt[playerID] = now
	m.mu.Unlock()

	return pos
}

// Forget drops all throttle/respawn bookkeeping for a player, called when
// the player leaves the room.
func (m *PositionMgr) Forget(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lastUpdate, playerID)
	delete(m.respawnedAt, playerID)
}
