package room

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/maz/hunter/internal/gridutil"
)

// CoinConfig carries CoinMgr's tuning constants.
type CoinConfig struct {
	InitialCount int
	MinDistance  int
	RespawnTime  time.Duration
}

type coinKey struct {
	roomCode string
	coinID   string
}

// CoinMgr manages grid-bound coins with a per-coin single-flight pickup
// lock. Grounded on the upstream SolutionManager's check-under-lock-then-
// commit pattern (first valid submission wins), generalized from
// room-granularity locking to per-coin granularity so concurrent pickups of
// different coins in the same room never serialize on each other.
type CoinMgr struct {
	cfg CoinConfig

	mu    sync.Mutex
	locks map[coinKey]*sync.Mutex
}

// NewCoinMgr constructs a CoinMgr with the given tuning config.
func NewCoinMgr(cfg CoinConfig) *CoinMgr {
	return &CoinMgr{cfg: cfg, locks: make(map[coinKey]*sync.Mutex)}
}

func (m *CoinMgr) lockFor(key coinKey) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

// InitialSpawn places InitialCount coins drawn from cfg.CoinSlots, filtered
// to in-bounds, non-occupied, and spaced ≥ MinDistance (Chebyshev) from
// every other chosen coin.
func (m *CoinMgr) InitialSpawn(room *Room, cfg MapConfig, occupied OccupiedSet) []Signal {
	var signals []Signal
	chosen := make([]gridutil.Cell, 0, m.cfg.InitialCount)

	for _, cell := range cfg.CoinSlots {
		if len(chosen) >= m.cfg.InitialCount {
			break
		}
		if !cfg.Grid.InBounds(cell) || occupied.Occupied(cell) {
			continue
		}
		if !farEnough(cell, chosen, m.cfg.MinDistance) {
			continue
		}
		chosen = append(chosen, cell)
		coin := &Coin{ID: generateCoinID(room.NextCoinID), Cell: cell}
		room.NextCoinID++
		room.Coins[coin.ID] = coin
		signals = append(signals, broadcast(OutEvent{Type: EvtCoinSpawned, Payload: coinSpawnedPayload{CoinID: coin.ID, Row: cell.Row, Col: cell.Col}}))
	}
	return signals
}

func farEnough(candidate gridutil.Cell, chosen []gridutil.Cell, minDist int) bool {
	for _, c := range chosen {
		if gridutil.ChebyshevDistance(candidate, c) < minDist {
			return false
		}
	}
	return true
}

// Collect implements the single-flight pickup protocol from spec.md 4.5:
// acquire the per-coin lock, re-check collected, set+credit+broadcast,
// release, and ask the Service to schedule a respawn timer. Losing callers
// get no signals and no error — a race rejection is silent, per spec.md 7.
func (m *CoinMgr) Collect(room *Room, coinID, playerID string, respawnDelay time.Duration) []Signal {
	key := coinKey{roomCode: room.Code, coinID: coinID}
	lock := m.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	coin, ok := room.Coins[coinID]
	if !ok || coin.Collected {
		return nil
	}
	player := room.PlayerByID(playerID)
	if player == nil || player.State == PlayerFrozen {
		return nil
	}

	coin.Collected = true
	player.Coins++

	return []Signal{
		broadcast(OutEvent{Type: EvtCoinCollected, Payload: coinCollectedPayload{CoinID: coinID, PlayerID: playerID}}),
		StartTimerSignal{Purpose: purposeCoinRespawn(coinID), Delay: respawnDelay},
	}
}

// Respawn chooses a new cell for coinID from the union of slots that are
// in-bounds, not occupied, and ≥ MinDistance from every live coin; if no
// slot satisfies the distance constraint, it relaxes to the non-occupied
// constraint only, per spec.md 4.5.
func (m *CoinMgr) Respawn(room *Room, coinID string, cfg MapConfig, occupied OccupiedSet) []Signal {
	coin, ok := room.Coins[coinID]
	if !ok {
		return nil
	}

	live := make([]gridutil.Cell, 0, len(room.Coins))
	for _, c := range room.Coins {
		if !c.Collected && c.ID != coinID {
			live = append(live, c.Cell)
		}
	}

	candidates := make([]gridutil.Cell, 0, len(cfg.CoinSlots))
	for _, cell := range cfg.CoinSlots {
		if cfg.Grid.InBounds(cell) && !occupied.Occupied(cell) {
			candidates = append(candidates, cell)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	strict := make([]gridutil.Cell, 0, len(candidates))
	for _, c := range candidates {
		if farEnough(c, live, m.cfg.MinDistance) {
			strict = append(strict, c)
		}
	}
	pool := strict
	if len(pool) == 0 {
		pool = candidates
	}

	chosen := pool[rand.IntN(len(pool))]
	coin.Cell = chosen
	coin.Collected = false

	return []Signal{broadcast(OutEvent{Type: EvtCoinSpawned, Payload: coinSpawnedPayload{CoinID: coin.ID, Row: chosen.Row, Col: chosen.Col}})}
}

// Forget drops every per-coin lock belonging to roomCode, called on room
// destruction.
func (m *CoinMgr) Forget(roomCode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.locks {
		if key.roomCode == roomCode {
			delete(m.locks, key)
		}
	}
}
