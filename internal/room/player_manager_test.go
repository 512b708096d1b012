package room

import (
	"testing"
	"time"
)

func TestPlayerManager_AddPlayer(t *testing.T) {
	mgr := NewPlayerManager(100)
	r := NewRoom("MAZAAAA", 4)

	host, signals, err := mgr.AddPlayer(r, "sock1", "Alice", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !host.IsHost {
		t.Error("expected first player to be host")
	}
	if host.Health != 100 {
		t.Errorf("expected starting health 100, got %d", host.Health)
	}
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}

	bob, _, err := mgr.AddPlayer(r, "sock2", "Bob", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bob.IsHost {
		t.Error("expected second player not to be host")
	}
	if bob.CharacterID == host.CharacterID {
		t.Error("expected distinct character ids")
	}
}

func TestPlayerManager_AddPlayer_RoomFull(t *testing.T) {
	mgr := NewPlayerManager(100)
	r := NewRoom("MAZAAAA", 1)

	if _, _, err := mgr.AddPlayer(r, "sock1", "Alice", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := mgr.AddPlayer(r, "sock2", "Bob", false); err != errRoomFull {
		t.Errorf("expected errRoomFull, got %v", err)
	}
}

func TestPlayerManager_AddPlayer_NotWaiting(t *testing.T) {
	mgr := NewPlayerManager(100)
	r := NewRoom("MAZAAAA", 4)
	r.Status = StatusPlaying

	if _, _, err := mgr.AddPlayer(r, "sock1", "Alice", true); err != errNotWaiting {
		t.Errorf("expected errNotWaiting, got %v", err)
	}
}

func TestPlayerManager_DisconnectDuringWaitingIsImmediate(t *testing.T) {
	mgr := NewPlayerManager(100)
	r := NewRoom("MAZAAAA", 4)
	p, _, _ := mgr.AddPlayer(r, "sock1", "Alice", true)

	signals, err := mgr.DisconnectPlayer(r, p.PlayerID, 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Players) != 0 {
		t.Error("expected player removed immediately outside Playing")
	}
	foundEndRoom := false
	for _, s := range signals {
		if _, ok := s.(EndRoomSignal); ok {
			foundEndRoom = true
		}
	}
	if !foundEndRoom {
		t.Error("expected EndRoomSignal once the room became empty")
	}
}

func TestPlayerManager_DisconnectDuringPlayingStartsGrace(t *testing.T) {
	mgr := NewPlayerManager(100)
	r := NewRoom("MAZAAAA", 4)
	p, _, _ := mgr.AddPlayer(r, "sock1", "Alice", true)
	r.Status = StatusPlaying

	signals, err := mgr.DisconnectPlayer(r, p.PlayerID, 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.DisconnectedAt == nil {
		t.Error("expected disconnect timestamp to be stamped")
	}
	if len(r.Players) != 1 {
		t.Error("expected player to remain in the roster during grace")
	}

	var sawTimer bool
	for _, s := range signals {
		if ts, ok := s.(StartTimerSignal); ok && ts.Purpose == purposeReconnectGrace(p.PlayerID) {
			sawTimer = true
		}
	}
	if !sawTimer {
		t.Error("expected a reconnect-grace timer to be armed")
	}
}

func TestPlayerManager_ReconnectRebindsSocket(t *testing.T) {
	mgr := NewPlayerManager(100)
	r := NewRoom("MAZAAAA", 4)
	p, _, _ := mgr.AddPlayer(r, "sock1", "Alice", true)
	r.Status = StatusPlaying
	mgr.DisconnectPlayer(r, p.PlayerID, 10*time.Second)

	_, err := mgr.ReconnectPlayer(r, p.PlayerID, "sock2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SocketID != "sock2" {
		t.Errorf("expected socket id rebound to sock2, got %s", p.SocketID)
	}
	if p.DisconnectedAt != nil {
		t.Error("expected disconnect timestamp cleared on reconnect")
	}
}

func TestPlayerManager_ReconnectRejectsNotDisconnected(t *testing.T) {
	mgr := NewPlayerManager(100)
	r := NewRoom("MAZAAAA", 4)
	p, _, _ := mgr.AddPlayer(r, "sock1", "Alice", true)

	if _, err := mgr.ReconnectPlayer(r, p.PlayerID, "sock2"); err == nil {
		t.Error("expected error reconnecting a player who never disconnected")
	}
}

func TestPlayerManager_RemovePlayerTransfersHost(t *testing.T) {
	mgr := NewPlayerManager(100)
	r := NewRoom("MAZAAAA", 4)
	host, _, _ := mgr.AddPlayer(r, "sock1", "Alice", true)
	bob, _, _ := mgr.AddPlayer(r, "sock2", "Bob", false)

	mgr.RemovePlayer(r, host.PlayerID)

	if !bob.IsHost {
		t.Error("expected Bob to become host after Alice left")
	}
}

func TestPlayerManager_RemoveLastHunterAdvancesPhase(t *testing.T) {
	mgr := NewPlayerManager(100)
	r := NewRoom("MAZAAAA", 4)
	hunter, _, _ := mgr.AddPlayer(r, "sock1", "Alice", true)
	mgr.AddPlayer(r, "sock2", "Bob", false)
	r.Status = StatusPlaying
	r.Phase = PhaseHunt
	r.UnicornIDs[hunter.PlayerID] = struct{}{}

	signals := mgr.RemovePlayer(r, hunter.PlayerID)

	var sawAdvance bool
	for _, s := range signals {
		if adv, ok := s.(AdvanceRoomPhaseSignal); ok && adv.Phase == PhaseBlitzQuiz {
			sawAdvance = true
		}
	}
	if !sawAdvance {
		t.Error("expected AdvanceRoomPhaseSignal to BlitzQuiz once the last hunter left")
	}
}
