package room

import (
	"testing"
	"time"

	"github.com/maz/hunter/internal/gridutil"
)

func newCombatTestRoom(t *testing.T) (*Room, gridutil.Grid) {
	t.Helper()
	grid, err := gridutil.NewGrid(20, 20, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := NewRoom("MAZAAAA", 4)
	return r, grid
}

func TestCombatMgr_ResolveMovementTagsHunterIntoSurvivor(t *testing.T) {
	r, grid := newCombatTestRoom(t)
	mgr := NewCombatMgr(CombatConfig{TagDamage: 25, TagScoreSteal: 1, KnockbackDistance: 0, CollisionCooldown: time.Second})
	pos := NewPositionMgr(10 * time.Millisecond)

	hunter := newPlayer(generatePlayerID(), "sock1", "Hunter", 0, 100)
	survivor := newPlayer(generatePlayerID(), "sock2", "Survivor", 1, 100)
	r.Players = append(r.Players, hunter, survivor)
	r.UnicornIDs[hunter.PlayerID] = struct{}{}
	survivor.Coins = 3

	r.Positions[survivor.PlayerID] = &Position{Cell: gridutil.Cell{Row: 5, Col: 5}}
	old := Position{Cell: gridutil.Cell{Row: 4, Col: 5}}
	new := Position{Cell: gridutil.Cell{Row: 6, Col: 5}}

	signals := mgr.ResolveMovement(r, pos, grid, hunter.PlayerID, old, new)
	if len(signals) == 0 {
		t.Fatal("expected tag signals when the hunter's path crosses the survivor's cell")
	}
	if survivor.Health != 75 {
		t.Errorf("expected survivor health reduced to 75, got %d", survivor.Health)
	}
	if survivor.Coins != 2 || hunter.Coins != 1 {
		t.Errorf("expected 1 coin stolen, got survivor=%d hunter=%d", survivor.Coins, hunter.Coins)
	}
}

func TestCombatMgr_ResolveMovementIgnoresSurvivorVsSurvivor(t *testing.T) {
	r, grid := newCombatTestRoom(t)
	mgr := NewCombatMgr(CombatConfig{TagDamage: 25, CollisionCooldown: time.Second})
	pos := NewPositionMgr(10 * time.Millisecond)

	a := newPlayer(generatePlayerID(), "sock1", "A", 0, 100)
	b := newPlayer(generatePlayerID(), "sock2", "B", 1, 100)
	r.Players = append(r.Players, a, b)
	r.Positions[b.PlayerID] = &Position{Cell: gridutil.Cell{Row: 5, Col: 5}}

	old := Position{Cell: gridutil.Cell{Row: 4, Col: 5}}
	new := Position{Cell: gridutil.Cell{Row: 6, Col: 5}}

	signals := mgr.ResolveMovement(r, pos, grid, a.PlayerID, old, new)
	if len(signals) != 0 {
		t.Error("expected no tags between two non-hunters")
	}
}

func TestCombatMgr_CooldownSuppressesRepeatedTags(t *testing.T) {
	r, grid := newCombatTestRoom(t)
	mgr := NewCombatMgr(CombatConfig{TagDamage: 10, CollisionCooldown: time.Minute})
	pos := NewPositionMgr(10 * time.Millisecond)

	hunter := newPlayer(generatePlayerID(), "sock1", "Hunter", 0, 100)
	survivor := newPlayer(generatePlayerID(), "sock2", "Survivor", 1, 100)
	r.Players = append(r.Players, hunter, survivor)
	r.UnicornIDs[hunter.PlayerID] = struct{}{}
	r.Positions[survivor.PlayerID] = &Position{Cell: gridutil.Cell{Row: 5, Col: 5}}

	old := Position{Cell: gridutil.Cell{Row: 4, Col: 5}}
	new := Position{Cell: gridutil.Cell{Row: 6, Col: 5}}

	mgr.ResolveMovement(r, pos, grid, hunter.PlayerID, old, new)
	healthAfterFirst := survivor.Health

	mgr.ResolveMovement(r, pos, grid, hunter.PlayerID, old, new)
	if survivor.Health != healthAfterFirst {
		t.Errorf("expected cooldown to suppress a second immediate tag, health changed from %d to %d", healthAfterFirst, survivor.Health)
	}
}

func TestCombatMgr_ZeroHealthFreezesAndEmitsSignal(t *testing.T) {
	r, grid := newCombatTestRoom(t)
	mgr := NewCombatMgr(CombatConfig{TagDamage: 1000, CollisionCooldown: time.Second})
	pos := NewPositionMgr(10 * time.Millisecond)

	hunter := newPlayer(generatePlayerID(), "sock1", "Hunter", 0, 100)
	survivor := newPlayer(generatePlayerID(), "sock2", "Survivor", 1, 50)
	r.Players = append(r.Players, hunter, survivor)
	r.UnicornIDs[hunter.PlayerID] = struct{}{}
	r.Positions[survivor.PlayerID] = &Position{Cell: gridutil.Cell{Row: 5, Col: 5}}

	old := Position{Cell: gridutil.Cell{Row: 4, Col: 5}}
	new := Position{Cell: gridutil.Cell{Row: 6, Col: 5}}

	signals := mgr.ResolveMovement(r, pos, grid, hunter.PlayerID, old, new)

	if survivor.State != PlayerFrozen {
		t.Errorf("expected survivor to be frozen, got state %q", survivor.State)
	}
	var sawFrozenSignal bool
	for _, s := range signals {
		if fs, ok := s.(PlayerFrozenSignal); ok && fs.PlayerID == survivor.PlayerID {
			sawFrozenSignal = true
		}
	}
	if !sawFrozenSignal {
		t.Error("expected a PlayerFrozenSignal once health hits zero")
	}
}

func TestCombatMgr_IFramesBlockFollowUpTag(t *testing.T) {
	r, grid := newCombatTestRoom(t)
	mgr := NewCombatMgr(CombatConfig{TagDamage: 10, IFrameDuration: time.Minute, CollisionCooldown: 0})
	pos := NewPositionMgr(10 * time.Millisecond)

	hunter := newPlayer(generatePlayerID(), "sock1", "Hunter", 0, 100)
	survivor := newPlayer(generatePlayerID(), "sock2", "Survivor", 1, 100)
	r.Players = append(r.Players, hunter, survivor)
	r.UnicornIDs[hunter.PlayerID] = struct{}{}
	r.Positions[survivor.PlayerID] = &Position{Cell: gridutil.Cell{Row: 5, Col: 5}}

	old := Position{Cell: gridutil.Cell{Row: 4, Col: 5}}
	new := Position{Cell: gridutil.Cell{Row: 6, Col: 5}}

	mgr.ResolveMovement(r, pos, grid, hunter.PlayerID, old, new)
	if survivor.State != PlayerInIFrames {
		t.Fatalf("expected survivor to enter iframes, got %q", survivor.State)
	}
	healthAfterFirst := survivor.Health

	mgr.ResolveMovement(r, pos, grid, hunter.PlayerID, old, new)
	if survivor.Health != healthAfterFirst {
		t.Error("expected iframes to block a second tag")
	}
}
