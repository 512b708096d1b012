package room

import (
	"testing"
	"time"

	"github.com/maz/hunter/internal/gridutil"
)

func TestSinkholeMgr_InitialSpawnRespectsCount(t *testing.T) {
	mgr := NewSinkholeMgr(SinkholeConfig{InitialCount: 3, MaxCount: 5})
	r := NewRoom("MAZAAAA", 4)
	cfg := newTestMapConfig(t)

	mgr.InitialSpawn(r, cfg, OccupiedSet{})

	if len(r.Sinkholes) != 3 {
		t.Errorf("expected 3 sinkholes spawned, got %d", len(r.Sinkholes))
	}
}

func TestSinkholeMgr_MaybeSpawnOneRespectsMaxCount(t *testing.T) {
	mgr := NewSinkholeMgr(SinkholeConfig{MaxCount: 1})
	r := NewRoom("MAZAAAA", 4)
	cfg := newTestMapConfig(t)
	r.Sinkholes["sink_1"] = &Sinkhole{ID: "sink_1", Cell: gridutil.Cell{Row: 0, Col: 0}}

	signals := mgr.MaybeSpawnOne(r, cfg, OccupiedSet{})
	if signals != nil {
		t.Error("expected no spawn once MaxCount is reached")
	}
	if len(r.Sinkholes) != 1 {
		t.Errorf("expected sinkhole count unchanged at 1, got %d", len(r.Sinkholes))
	}
}

func TestSinkholeMgr_TeleportRespectsCooldown(t *testing.T) {
	mgr := NewSinkholeMgr(SinkholeConfig{TeleportCooldown: time.Minute, CollectionRadius: 1})
	r := NewRoom("MAZAAAA", 4)
	grid, err := gridutil.NewGrid(20, 20, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos := NewPositionMgr(10 * time.Millisecond)

	p := newPlayer(generatePlayerID(), "sock1", "Alice", 0, 100)
	r.Players = append(r.Players, p)
	a := &Sinkhole{ID: "sink_a", Cell: gridutil.Cell{Row: 1, Col: 1}}
	b := &Sinkhole{ID: "sink_b", Cell: gridutil.Cell{Row: 10, Col: 10}}
	r.Sinkholes[a.ID] = a
	r.Sinkholes[b.ID] = b
	r.Positions[p.PlayerID] = &Position{Cell: a.Cell}

	signals := mgr.Teleport(r, pos, grid, p.PlayerID, a.ID)
	if len(signals) != 1 {
		t.Fatalf("expected 1 teleport signal, got %d", len(signals))
	}
	teleportedTo := r.Positions[p.PlayerID].Cell
	if teleportedTo != b.Cell {
		t.Errorf("expected teleport to the other sinkhole %v, got %v", b.Cell, teleportedTo)
	}
	if !r.Positions[p.PlayerID].WasTeleport {
		t.Error("expected WasTeleport flag set")
	}

	again := mgr.Teleport(r, pos, grid, p.PlayerID, b.ID)
	if again != nil {
		t.Error("expected the second teleport attempt to be rejected by cooldown")
	}
}

func TestSinkholeMgr_TeleportRejectsWithNoOtherSinkhole(t *testing.T) {
	mgr := NewSinkholeMgr(SinkholeConfig{TeleportCooldown: time.Minute, CollectionRadius: 1})
	r := NewRoom("MAZAAAA", 4)
	grid, err := gridutil.NewGrid(20, 20, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos := NewPositionMgr(10 * time.Millisecond)

	p := newPlayer(generatePlayerID(), "sock1", "Alice", 0, 100)
	r.Players = append(r.Players, p)
	only := &Sinkhole{ID: "sink_a", Cell: gridutil.Cell{Row: 1, Col: 1}}
	r.Sinkholes[only.ID] = only
	r.Positions[p.PlayerID] = &Position{Cell: only.Cell}

	signals := mgr.Teleport(r, pos, grid, p.PlayerID, only.ID)
	if signals != nil {
		t.Error("expected no teleport when no other sinkhole exists")
	}
}

// TestSinkholeMgr_TeleportRejectsWhenFarAway guards spec.md 4.6's
// CollectionRadius gate: a player cannot trigger a sinkhole they haven't
// actually walked into, even if they name a live sinkhole ID in the room.
func TestSinkholeMgr_TeleportRejectsWhenFarAway(t *testing.T) {
	mgr := NewSinkholeMgr(SinkholeConfig{TeleportCooldown: time.Minute, CollectionRadius: 1})
	r := NewRoom("MAZAAAA", 4)
	grid, err := gridutil.NewGrid(20, 20, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos := NewPositionMgr(10 * time.Millisecond)

	p := newPlayer(generatePlayerID(), "sock1", "Alice", 0, 100)
	r.Players = append(r.Players, p)
	a := &Sinkhole{ID: "sink_a", Cell: gridutil.Cell{Row: 1, Col: 1}}
	b := &Sinkhole{ID: "sink_b", Cell: gridutil.Cell{Row: 10, Col: 10}}
	r.Sinkholes[a.ID] = a
	r.Sinkholes[b.ID] = b
	r.Positions[p.PlayerID] = &Position{Cell: gridutil.Cell{Row: 9, Col: 9}}

	signals := mgr.Teleport(r, pos, grid, p.PlayerID, a.ID)
	if signals != nil {
		t.Error("expected no teleport when the player's tracked position is outside CollectionRadius of the sinkhole")
	}
	if r.Positions[p.PlayerID].Cell != (gridutil.Cell{Row: 9, Col: 9}) {
		t.Error("expected the player's position to be unchanged after a rejected teleport")
	}
}

// TestSinkholeMgr_TeleportRejectsWithNoTrackedPosition guards against a
// player entering a sinkhole before their authoritative position is known
// at all (e.g. immediately after spawn, before the first update_position).
func TestSinkholeMgr_TeleportRejectsWithNoTrackedPosition(t *testing.T) {
	mgr := NewSinkholeMgr(SinkholeConfig{TeleportCooldown: time.Minute, CollectionRadius: 1})
	r := NewRoom("MAZAAAA", 4)
	grid, err := gridutil.NewGrid(20, 20, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos := NewPositionMgr(10 * time.Millisecond)

	p := newPlayer(generatePlayerID(), "sock1", "Alice", 0, 100)
	r.Players = append(r.Players, p)
	a := &Sinkhole{ID: "sink_a", Cell: gridutil.Cell{Row: 1, Col: 1}}
	b := &Sinkhole{ID: "sink_b", Cell: gridutil.Cell{Row: 10, Col: 10}}
	r.Sinkholes[a.ID] = a
	r.Sinkholes[b.ID] = b

	signals := mgr.Teleport(r, pos, grid, p.PlayerID, a.ID)
	if signals != nil {
		t.Error("expected no teleport when the player has no tracked position yet")
	}
}
