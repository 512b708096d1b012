package room

import (
	"sync"
	"time"

	"github.com/maz/hunter/internal/gridutil"
)

// CombatConfig carries the tuning constants CombatMgr needs, lifted out of
// internal/config so this package does not depend on it directly.
type CombatConfig struct {
	TagDamage         int
	TagScoreSteal     int
	IFrameDuration    time.Duration
	KnockbackDistance int
	KnockbackDuration time.Duration
	CollisionCooldown time.Duration
}

type cooldownKey struct {
	attacker string
	victim   string
}

// CombatMgr adjudicates tags along a moving player's path. Grounded in
// style on game/validate.go's path-obstacle scanning (iterate candidate
// cells, test against other entities) and on the signal-returning manager
// shape used throughout this package.
type CombatMgr struct {
	cfg CombatConfig

	mu        sync.Mutex
	cooldowns map[string]map[cooldownKey]time.Time // roomCode -> pair -> last tag time
	iframes   map[string]map[string]time.Time      // roomCode -> playerId -> iframe expiry
}

// NewCombatMgr constructs a CombatMgr with the given tuning config.
func NewCombatMgr(cfg CombatConfig) *CombatMgr {
	return &CombatMgr{
		cfg:       cfg,
		cooldowns: make(map[string]map[cooldownKey]time.Time),
		iframes:   make(map[string]map[string]time.Time),
	}
}

func (m *CombatMgr) roomCooldowns(roomCode string) map[cooldownKey]time.Time {
	tbl, ok := m.cooldowns[roomCode]
	if !ok {
		tbl = make(map[cooldownKey]time.Time)
		m.cooldowns[roomCode] = tbl
	}
	return tbl
}

func (m *CombatMgr) onCooldown(roomCode, attacker, victim string, now time.Time) bool {
	tbl := m.roomCooldowns(roomCode)
	last, ok := tbl[cooldownKey{attacker, victim}]
	return ok && now.Sub(last) < m.cfg.CollisionCooldown
}

func (m *CombatMgr) recordCooldown(roomCode, attacker, victim string, now time.Time) {
	tbl := m.roomCooldowns(roomCode)
	tbl[cooldownKey{attacker, victim}] = now
	if len(tbl) > collisionCooldownGCThreshold {
		m.gcCooldowns(tbl, now)
	}
}

// gcCooldowns periodically clears cooldown entries older than 5s once the
// table grows past a size threshold, per spec.md 4.4.
func (m *CombatMgr) gcCooldowns(tbl map[cooldownKey]time.Time, now time.Time) {
	const maxAge = 5 * time.Second
	for k, t := range tbl {
		if now.Sub(t) > maxAge {
			delete(tbl, k)
		}
	}
}

func (m *CombatMgr) canHitPlayer(room *Room, roomCode string, victim *Player, now time.Time) bool {
	if victim.State == PlayerFrozen {
		return false
	}
	if expiry, ok := m.iframes[roomCode][victim.PlayerID]; ok && now.Before(expiry) {
		return false
	}
	return true
}

func (m *CombatMgr) grantIFrames(roomCode, playerID string, now time.Time) {
	tbl, ok := m.iframes[roomCode]
	if !ok {
		tbl = make(map[string]time.Time)
		m.iframes[roomCode] = tbl
	}
	tbl[playerID] = now.Add(m.cfg.IFrameDuration)
}

// Forget drops all cooldown/iframe bookkeeping for a room, called on room
// destruction.
func (m *CombatMgr) Forget(roomCode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cooldowns, roomCode)
	delete(m.iframes, roomCode)
}

// ResolveMovement is the core combat operation: given a player's old and
// new positions, test each path cell (delegated to PositionMgr.PathCells,
// already teleport-aware) against every other eligible player's current
// cell, applying the seven-step pipeline from spec.md 4.4 to every valid hit
// on the path. Hits are processed in path order, then room player order.
func (m *CombatMgr) ResolveMovement(room *Room, pos *PositionMgr, grid gridutil.Grid, moverID string, old, new Position) []Signal {
	m.mu.Lock()
	defer m.mu.Unlock()

	mover := room.PlayerByID(moverID)
	if mover == nil || mover.State == PlayerFrozen {
		return nil
	}

	path := pos.PathCells(old, new)
	now := time.Now()
	var signals []Signal

	for _, cell := range path {
		for _, victim := range room.Players {
			if victim.PlayerID == moverID {
				continue
			}
			if !isHunterVsSurvivor(room, moverID, victim.PlayerID) {
				continue
			}
			victimPos, ok := room.Positions[victim.PlayerID]
			if !ok || victimPos.Cell != cell {
				continue
			}
			if m.onCooldown(room.Code, moverID, victim.PlayerID, now) {
				continue
			}
			if !m.canHitPlayer(room, room.Code, victim, now) {
				continue
			}

			signals = append(signals, m.applyTag(room, pos, grid, moverID, victim, now)...)
			m.recordCooldown(room.Code, moverID, victim.PlayerID, now)
		}
	}
	return signals
}

// isHunterVsSurvivor reports whether the attacker is a current hunter and
// the victim is not; a survivor moving onto a hunter never tags.
func isHunterVsSurvivor(room *Room, attackerID, victimID string) bool {
	return room.IsHunter(attackerID) != room.IsHunter(victimID) && room.IsHunter(attackerID)
}

func (m *CombatMgr) applyTag(room *Room, posMgr *PositionMgr, grid gridutil.Grid, attackerID string, victim *Player, now time.Time) []Signal {
	attacker := room.PlayerByID(attackerID)

	steal := m.cfg.TagScoreSteal
	if victim.Coins < steal {
		steal = victim.Coins
	}
	victim.Health -= m.cfg.TagDamage
	if victim.Health < 0 {
		victim.Health = 0
	}
	victim.Coins -= steal
	if attacker != nil {
		attacker.Coins += steal
	}

	signals := []Signal{
		broadcast(OutEvent{Type: EvtPlayerTagged, Payload: playerTaggedPayload{AttackerID: attackerID, VictimID: victim.PlayerID}}),
	}

	knockbackApplied := false
	if m.cfg.KnockbackDistance > 0 {
		if victimPos, ok := room.Positions[victim.PlayerID]; ok {
			attackerPos := room.Positions[attackerID]
			dest := knockbackCell(attackerPos, victimPos, m.cfg.KnockbackDistance, grid)
			posMgr.SetPlayerPosition(room, victim.PlayerID, dest, grid, false)
			knockbackApplied = true
		}
	}

	signals = append(signals, broadcast(OutEvent{Type: EvtPlayerHit, Payload: playerHitPayload{PlayerID: victim.PlayerID, Health: victim.Health, Knockback: knockbackApplied}}))
	signals = append(signals, broadcast(OutEvent{Type: EvtHealthUpdate, Payload: healthUpdatePayload{PlayerID: victim.PlayerID, Health: victim.Health}}))

	if victim.Health == 0 {
		victim.State = PlayerFrozen
		delete(m.iframes[room.Code], victim.PlayerID)
		signals = append(signals, broadcast(OutEvent{Type: EvtPlayerStateChange, Payload: playerStateChangePayload{PlayerID: victim.PlayerID, State: string(PlayerFrozen)}}))
		signals = append(signals, PlayerFrozenSignal{PlayerID: victim.PlayerID})
		return signals
	}

	victim.State = PlayerInIFrames
	m.grantIFrames(room.Code, victim.PlayerID, now)
	signals = append(signals,
		broadcast(OutEvent{Type: EvtPlayerStateChange, Payload: playerStateChangePayload{PlayerID: victim.PlayerID, State: string(PlayerInIFrames)}}),
		StartTimerSignal{Purpose: purposeIFrameClear(victim.PlayerID), Delay: m.cfg.IFrameDuration},
	)
	return signals
}

// knockbackCell computes a unit direction pointing away from the attacker
// (defaulting to +col when both occupy the same cell) and steps the victim
// that many cells away, clamped to grid bounds.
func knockbackCell(attackerPos, victimPos *Position, distance int, grid gridutil.Grid) gridutil.Cell {
	dr, dc := 0, 1 // default: +col
	if attackerPos != nil {
		rawDr := victimPos.Cell.Row - attackerPos.Cell.Row
		rawDc := victimPos.Cell.Col - attackerPos.Cell.Col
		if rawDr != 0 || rawDc != 0 {
			dr, dc = sign(rawDr), sign(rawDc)
		}
	}

	cell := gridutil.Cell{
		Row: victimPos.Cell.Row + dr*distance,
		Col: victimPos.Cell.Col + dc*distance,
	}
	if cell.Row < 0 {
		cell.Row = 0
	} else if cell.Row >= grid.Rows {
		cell.Row = grid.Rows - 1
	}
	if cell.Col < 0 {
		cell.Col = 0
	} else if cell.Col >= grid.Cols {
		cell.Col = grid.Cols - 1
	}
	return cell
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
