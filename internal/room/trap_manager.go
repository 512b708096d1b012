package room

import "github.com/maz/hunter/internal/gridutil"

// TrapConfig carries TrapMgr's tuning constants.
type TrapConfig struct {
	InitialCount int
}

// TrapMgr mirrors CoinMgr for ground collectibles and adds deployed traps.
// Both kinds live in room.Traps keyed by trap id; there is no per-cell
// index, so CheckTriggers scans every trap for each cell of the path.
// Grounded on the same signal-returning manager shape as CoinMgr/
// SinkholeMgr.
type TrapMgr struct{}

// NewTrapMgr constructs a TrapMgr. It holds no bookkeeping of its own —
// all state lives on the Room (room.Traps) since traps have no single-flight
// pickup race as delicate as coins (a survivor deploying and a hunter
// triggering are different operations, not concurrent claims on the same
// state transition).
func NewTrapMgr() *TrapMgr { return &TrapMgr{} }

// InitialSpawn places collectible traps from cfg.TrapSlots, filtered to
// in-bounds and non-occupied.
func (m *TrapMgr) InitialSpawn(room *Room, count int, cfg MapConfig, occupied OccupiedSet) []Signal {
	var signals []Signal
	placed := 0
	for _, cell := range cfg.TrapSlots {
		if placed >= count {
			break
		}
		if !cfg.Grid.InBounds(cell) || occupied.Occupied(cell) {
			continue
		}
		t := &Trap{ID: generateTrapID(room.NextTrapID), Kind: TrapCollectible, Cell: cell}
		room.NextTrapID++
		room.Traps[t.ID] = t
		placed++
	}
	return signals
}

// Collect picks up a collectible trap for a survivor.
func (m *TrapMgr) Collect(room *Room, trapID, playerID string) []Signal {
	trap, ok := room.Traps[trapID]
	if !ok || trap.Kind != TrapCollectible {
		return nil
	}
	player := room.PlayerByID(playerID)
	if player == nil || player.State == PlayerFrozen || room.IsHunter(playerID) {
		return nil
	}
	delete(room.Traps, trapID)
	player.HeldTraps++
	return []Signal{broadcast(OutEvent{Type: EvtSinkTrapCollected, Payload: sinkTrapPayload{TrapID: trapID, PlayerID: playerID, Row: trap.Cell.Row, Col: trap.Cell.Col}})}
}

// Deploy places a deployed trap at cell, consuming one
// held collectible trap. Rejects silently if the player holds none, is a
// hunter, or the cell is already occupied by another spawnable.
func (m *TrapMgr) Deploy(room *Room, playerID string, cell gridutil.Cell, occupied OccupiedSet) []Signal {
	player := room.PlayerByID(playerID)
	if player == nil || player.HeldTraps <= 0 || room.IsHunter(playerID) {
		return nil
	}
	if occupied.Occupied(cell) {
		return nil
	}
	player.HeldTraps--
	t := &Trap{ID: generateTrapID(room.NextTrapID), Kind: TrapDeployed, Cell: cell, DeployedBy: playerID}
	room.NextTrapID++
	room.Traps[t.ID] = t
	return []Signal{broadcast(OutEvent{Type: EvtSinkTrapDeployed, Payload: sinkTrapPayload{TrapID: t.ID, PlayerID: playerID, Row: cell.Row, Col: cell.Col}})}
}

// CheckTriggers scans a hunter's path for deployed traps; each trap crossed
// fires once, freezing the hunter and removing the trap.
func (m *TrapMgr) CheckTriggers(room *Room, hunterID string, path []gridutil.Cell) []Signal {
	hunter := room.PlayerByID(hunterID)
	if hunter == nil || hunter.State == PlayerFrozen || !room.IsHunter(hunterID) {
		return nil
	}

	var signals []Signal
	for _, cell := range path {
		for id, t := range room.Traps {
			if t.Kind != TrapDeployed || t.Cell != cell {
				continue
			}
			delete(room.Traps, id)
			hunter.State = PlayerFrozen
			signals = append(signals,
				broadcast(OutEvent{Type: EvtSinkTrapTriggered, Payload: sinkTrapPayload{TrapID: id, PlayerID: hunterID, Row: cell.Row, Col: cell.Col}}),
				broadcast(OutEvent{Type: EvtPlayerStateChange, Payload: playerStateChangePayload{PlayerID: hunterID, State: string(PlayerFrozen)}}),
				PlayerFrozenSignal{PlayerID: hunterID},
			)
			return signals // one fire is enough; hunter is frozen now
		}
	}
	return signals
}
