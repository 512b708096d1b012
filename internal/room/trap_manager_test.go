package room

import (
	"testing"

	"github.com/maz/hunter/internal/gridutil"
)

func TestTrapMgr_CollectIncrementsHeldTraps(t *testing.T) {
	mgr := NewTrapMgr()
	r := NewRoom("MAZAAAA", 4)
	survivor := newPlayer(generatePlayerID(), "sock1", "Survivor", 0, 100)
	r.Players = append(r.Players, survivor)
	trap := &Trap{ID: "trap_1", Kind: TrapCollectible, Cell: gridutil.Cell{Row: 2, Col: 2}}
	r.Traps[trap.ID] = trap

	signals := mgr.Collect(r, trap.ID, survivor.PlayerID)

	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	if survivor.HeldTraps != 1 {
		t.Errorf("expected HeldTraps incremented to 1, got %d", survivor.HeldTraps)
	}
	if _, ok := r.Traps[trap.ID]; ok {
		t.Error("expected the collectible trap removed from the room")
	}
}

func TestTrapMgr_HunterCannotCollect(t *testing.T) {
	mgr := NewTrapMgr()
	r := NewRoom("MAZAAAA", 4)
	hunter := newPlayer(generatePlayerID(), "sock1", "Hunter", 0, 100)
	r.Players = append(r.Players, hunter)
	r.UnicornIDs[hunter.PlayerID] = struct{}{}
	trap := &Trap{ID: "trap_1", Kind: TrapCollectible, Cell: gridutil.Cell{Row: 2, Col: 2}}
	r.Traps[trap.ID] = trap

	signals := mgr.Collect(r, trap.ID, hunter.PlayerID)
	if signals != nil {
		t.Error("expected no signals when a hunter attempts to collect a trap")
	}
	if hunter.HeldTraps != 0 {
		t.Error("expected hunter HeldTraps unchanged")
	}
}

func TestTrapMgr_DeployGatedOnHeldTraps(t *testing.T) {
	mgr := NewTrapMgr()
	r := NewRoom("MAZAAAA", 4)
	survivor := newPlayer(generatePlayerID(), "sock1", "Survivor", 0, 100)
	r.Players = append(r.Players, survivor)

	signals := mgr.Deploy(r, survivor.PlayerID, gridutil.Cell{Row: 3, Col: 3}, OccupiedSet{})
	if signals != nil {
		t.Error("expected no signals deploying with zero held traps")
	}

	survivor.HeldTraps = 1
	signals = mgr.Deploy(r, survivor.PlayerID, gridutil.Cell{Row: 3, Col: 3}, OccupiedSet{})
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal deploying a held trap, got %d", len(signals))
	}
	if survivor.HeldTraps != 0 {
		t.Error("expected HeldTraps consumed")
	}
}

func TestTrapMgr_DeployRejectsOccupiedCell(t *testing.T) {
	mgr := NewTrapMgr()
	r := NewRoom("MAZAAAA", 4)
	survivor := newPlayer(generatePlayerID(), "sock1", "Survivor", 0, 100)
	survivor.HeldTraps = 1
	r.Players = append(r.Players, survivor)
	cell := gridutil.Cell{Row: 3, Col: 3}
	r.Coins["coin_1"] = &Coin{ID: "coin_1", Cell: cell}

	signals := mgr.Deploy(r, survivor.PlayerID, cell, BuildOccupiedSet(r))
	if signals != nil {
		t.Error("expected deploy rejected on an occupied cell")
	}
	if survivor.HeldTraps != 1 {
		t.Error("expected HeldTraps untouched on a rejected deploy")
	}
}

func TestTrapMgr_CheckTriggersFiresOnceAndFreezes(t *testing.T) {
	mgr := NewTrapMgr()
	r := NewRoom("MAZAAAA", 4)
	hunter := newPlayer(generatePlayerID(), "sock1", "Hunter", 0, 100)
	r.Players = append(r.Players, hunter)
	r.UnicornIDs[hunter.PlayerID] = struct{}{}

	trap := &Trap{ID: "trap_1", Kind: TrapDeployed, Cell: gridutil.Cell{Row: 5, Col: 5}, DeployedBy: "someone"}
	r.Traps[trap.ID] = trap
	path := []gridutil.Cell{{Row: 4, Col: 5}, {Row: 5, Col: 5}, {Row: 6, Col: 5}}

	signals := mgr.CheckTriggers(r, hunter.PlayerID, path)

	if hunter.State != PlayerFrozen {
		t.Errorf("expected hunter frozen, got %q", hunter.State)
	}
	if _, ok := r.Traps[trap.ID]; ok {
		t.Error("expected the triggered trap removed")
	}
	var sawFrozenSignal bool
	for _, s := range signals {
		if fs, ok := s.(PlayerFrozenSignal); ok && fs.PlayerID == hunter.PlayerID {
			sawFrozenSignal = true
		}
	}
	if !sawFrozenSignal {
		t.Error("expected a PlayerFrozenSignal")
	}

	// A second call against the already-frozen hunter must be a no-op.
	more := mgr.CheckTriggers(r, hunter.PlayerID, path)
	if more != nil {
		t.Error("expected no further signals once the hunter is frozen")
	}
}

func TestTrapMgr_CheckTriggersIgnoresNonHunter(t *testing.T) {
	mgr := NewTrapMgr()
	r := NewRoom("MAZAAAA", 4)
	survivor := newPlayer(generatePlayerID(), "sock1", "Survivor", 0, 100)
	r.Players = append(r.Players, survivor)

	trap := &Trap{ID: "trap_1", Kind: TrapDeployed, Cell: gridutil.Cell{Row: 5, Col: 5}}
	r.Traps[trap.ID] = trap
	path := []gridutil.Cell{{Row: 5, Col: 5}}

	signals := mgr.CheckTriggers(r, survivor.PlayerID, path)
	if signals != nil {
		t.Error("expected no signals for a non-hunter crossing a trap cell")
	}
	if _, ok := r.Traps[trap.ID]; !ok {
		t.Error("expected the trap to remain armed")
	}
}
