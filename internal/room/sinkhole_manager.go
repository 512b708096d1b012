package room

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/maz/hunter/internal/gridutil"
)

// SinkholeConfig carries SinkholeMgr's tuning constants.
type SinkholeConfig struct {
	InitialCount     int
	MaxCount         int
	MinInterval      time.Duration
	MaxInterval      time.Duration
	TeleportCooldown time.Duration
	CollectionRadius float64
}

// SinkholeMgr manages paired teleport portals and per-player teleport
// cooldowns. Grounded on the upstream timer manager's discipline for its
// scheduled spawner; teleport itself has no direct teacher analog and is
// built straight from spec.md 4.6.
type SinkholeMgr struct {
	cfg SinkholeConfig

	mu       sync.Mutex
	lastHop  map[string]time.Time // playerId -> last teleport time
}

// NewSinkholeMgr constructs a SinkholeMgr with the given tuning config.
func NewSinkholeMgr(cfg SinkholeConfig) *SinkholeMgr {
	return &SinkholeMgr{cfg: cfg, lastHop: make(map[string]time.Time)}
}

// InitialSpawn places InitialCount sinkholes from cfg.SinkholeSlots,
// filtered to in-bounds and non-occupied.
func (m *SinkholeMgr) InitialSpawn(room *Room, cfg MapConfig, occupied OccupiedSet) []Signal {
	var signals []Signal
	placed := 0
	for _, cell := range cfg.SinkholeSlots {
		if placed >= m.cfg.InitialCount {
			break
		}
		if !cfg.Grid.InBounds(cell) || occupied.Occupied(cell) {
			continue
		}
		s := &Sinkhole{ID: generateSinkholeID(room.NextSinkID), Cell: cell, ColorTag: colorTagFor(room.NextSinkID)}
		room.NextSinkID++
		room.Sinkholes[s.ID] = s
		placed++
		signals = append(signals, broadcast(OutEvent{Type: EvtSinkholeSpawned, Payload: sinkholeSpawnedPayload{SinkholeID: s.ID, Row: cell.Row, Col: cell.Col, ColorTag: s.ColorTag}}))
	}
	return signals
}

var colorPalette = []string{"red", "blue", "green", "yellow", "purple", "orange", "cyan", "magenta"}

func colorTagFor(seq int) string {
	return colorPalette[seq%len(colorPalette)]
}

// MaybeSpawnOne adds one more sinkhole if below MaxCount, called by the
// scheduled spawner while Hunt is active.
func (m *SinkholeMgr) MaybeSpawnOne(room *Room, cfg MapConfig, occupied OccupiedSet) []Signal {
	if len(room.Sinkholes) >= m.cfg.MaxCount {
		return nil
	}
	for _, cell := range cfg.SinkholeSlots {
		if !cfg.Grid.InBounds(cell) || occupied.Occupied(cell) {
			continue
		}
		s := &Sinkhole{ID: generateSinkholeID(room.NextSinkID), Cell: cell, ColorTag: colorTagFor(room.NextSinkID)}
		room.NextSinkID++
		room.Sinkholes[s.ID] = s
		return []Signal{broadcast(OutEvent{Type: EvtSinkholeSpawned, Payload: sinkholeSpawnedPayload{SinkholeID: s.ID, Row: cell.Row, Col: cell.Col, ColorTag: s.ColorTag}})}
	}
	return nil
}

// NextSpawnDelay returns a random interval within [MinInterval, MaxInterval]
// for the scheduled spawner.
func (m *SinkholeMgr) NextSpawnDelay() time.Duration {
	span := m.cfg.MaxInterval - m.cfg.MinInterval
	if span <= 0 {
		return m.cfg.MinInterval
	}
	return m.cfg.MinInterval + time.Duration(rand.Int64N(int64(span)))
}

// Teleport handles a player entering a sinkhole cell: checks the per-player
// cooldown, checks the player's authoritative position is actually within
// CollectionRadius of the sinkhole (spec.md 4.6 — "when a player enters a
// sinkhole cell (within COLLECTION_RADIUS)"), picks a uniformly random other
// live sinkhole, sets the new position with the teleport flag (so CombatMgr
// skips path collisions for this move), and resets the cooldown.
func (m *SinkholeMgr) Teleport(room *Room, pos *PositionMgr, grid gridutil.Grid, playerID, sinkholeID string) []Signal {
	m.mu.Lock()
	if last, ok := m.lastHop[playerID]; ok && time.Since(last) < m.cfg.TeleportCooldown {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	from, ok := room.Sinkholes[sinkholeID]
	if !ok {
		return nil
	}
	player := room.PlayerByID(playerID)
	if player == nil || player.State == PlayerFrozen {
		return nil
	}

	playerPos, ok := room.Positions[playerID]
	if !ok || float64(gridutil.ChebyshevDistance(playerPos.Cell, from.Cell)) > m.cfg.CollectionRadius {
		return nil
	}

	others := make([]*Sinkhole, 0, len(room.Sinkholes)-1)
	for id, s := range room.Sinkholes {
		if id != sinkholeID {
			others = append(others, s)
		}
	}
	if len(others) == 0 {
		return nil
	}
	dest := others[rand.IntN(len(others))]

	pos.SetPlayerPosition(room, playerID, dest.Cell, grid, true)

	m.mu.Lock()
	m.lastHop[playerID] = time.Now()
	m.mu.Unlock()

	return []Signal{broadcast(OutEvent{Type: EvtPlayerTeleported, Payload: playerTeleportedPayload{
		PlayerID: playerID,
		FromRow:  from.Cell.Row, FromCol: from.Cell.Col,
		ToRow: dest.Cell.Row, ToCol: dest.Cell.Col,
	}})}
}

// Forget drops per-player teleport cooldown bookkeeping, called when a
// player leaves.
func (m *SinkholeMgr) Forget(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lastHop, playerID)
}
