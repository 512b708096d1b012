package room

import (
	"fmt"
	"time"
)

// PlayerManager mutates room membership. Every method is a pure function of
// (*Room, ...) to []Signal — it never talks to timers or sockets directly;
// the Service interprets the returned signals. Grounded on the upstream
// playerManager's AddPlayer/DisconnectPlayer/ReconnectPlayer/RemovePlayer
// shape.
type PlayerManager interface {
	AddPlayer(room *Room, socketID, name string, asHost bool) (*Player, []Signal, error)
	DisconnectPlayer(room *Room, playerID string, grace time.Duration) ([]Signal, error)
	ReconnectPlayer(room *Room, playerID, newSocketID string) ([]Signal, error)
	RemovePlayer(room *Room, playerID string) []Signal
}

type playerManager struct {
	startingHealth int
}

// NewPlayerManager constructs a PlayerManager seeded with the configured
// starting health for newly joined players.
func NewPlayerManager(startingHealth int) PlayerManager {
	return &playerManager{startingHealth: startingHealth}
}

func (m *playerManager) assignCharacterID(room *Room) int {
	used := make(map[int]struct{}, len(room.Players))
	for _, p := range room.Players {
		used[p.CharacterID] = struct{}{}
	}
	for id := 0; id < characterPaletteSize; id++ {
		if _, taken := used[id]; !taken {
			return id
		}
	}
	return len(room.Players) % characterPaletteSize
}

func (m *playerManager) AddPlayer(room *Room, socketID, name string, asHost bool) (*Player, []Signal, error) {
	if room.Status != StatusWaiting {
		return nil, nil, errNotWaiting
	}
	if len(room.Players) >= room.MaxPlayers {
		return nil, nil, errRoomFull
	}

	player := newPlayer(generatePlayerID(), socketID, name, m.assignCharacterID(room), m.startingHealth)
	player.IsHost = asHost
	room.Players = append(room.Players, player)
	room.touch()

	signals := []Signal{broadcast(OutEvent{Type: EvtPlayerJoined, Payload: playerJoinedPayload{Player: newPlayerView(room, player)}})}
	return player, signals, nil
}

func (m *playerManager) DisconnectPlayer(room *Room, playerID string, grace time.Duration) ([]Signal, error) {
	player := room.PlayerByID(playerID)
	if player == nil {
		return nil, fmt.Errorf("room: player %s not in room %s", playerID, room.Code)
	}
	if player.DisconnectedAt != nil {
		return nil, nil // already disconnected, nothing to do
	}

	if room.Status != StatusPlaying {
		// Outside Playing, disconnect is immediate (spec.md 4.10).
		return m.RemovePlayer(room, playerID), nil
	}

	now := time.Now()
	player.DisconnectedAt = &now
	room.touch()

	signals := []Signal{
		broadcast(OutEvent{Type: EvtPlayerDisconnected, Payload: playerDisconnectedPayload{PlayerID: playerID}}),
		StartTimerSignal{Purpose: purposeReconnectGrace(playerID), Delay: grace},
	}
	return signals, nil
}

func (m *playerManager) ReconnectPlayer(room *Room, playerID, newSocketID string) ([]Signal, error) {
	player := room.PlayerByID(playerID)
	if player == nil {
		return nil, fmt.Errorf("room: player %s not in room %s", playerID, room.Code)
	}
	if player.DisconnectedAt == nil {
		return nil, fmt.Errorf("room: player %s is not disconnected", playerID)
	}

	player.SocketID = newSocketID
	player.DisconnectedAt = nil
	room.touch()

	signals := []Signal{
		CancelTimerSignal{Purpose: purposeReconnectGrace(playerID)},
		broadcast(OutEvent{Type: EvtPlayerReconnected, Payload: playerReconnectedPayload{PlayerID: playerID}}),
		unicast(newSocketID, OutEvent{Type: EvtRoomUpdate, Payload: newRoomView(room)}),
	}
	return signals, nil
}

// RemovePlayer permanently removes playerID from the room: membership,
// host succession, hunter-set pruning, and (if the room becomes empty or
// loses all hunters mid-Hunt) the follow-on signals that ask the Service to
// re-enter the lifecycle manager or destroy the room.
func (m *playerManager) RemovePlayer(room *Room, playerID string) []Signal {
	idx := room.PlayerIndex(playerID)
	if idx == -1 {
		return nil
	}
	player := room.Players[idx]
	wasHost := player.IsHost
	wasHunter := room.IsHunter(playerID)

	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)
	room.PruneUnicorn(playerID)
	delete(room.Positions, playerID)
	room.touch()

	signals := []Signal{
		CancelTimerSignal{Purpose: purposeReconnectGrace(playerID)},
		CancelTimerSignal{Purpose: purposePlayerHunt(playerID)},
		broadcast(OutEvent{Type: EvtPlayerLeft, Payload: playerLeftPayload{PlayerID: playerID}}),
	}

	if room.IsEmpty() {
		return append(signals, EndRoomSignal{})
	}

	if wasHost {
		newHost := room.Players[0]
		newHost.IsHost = true
		signals = append(signals, broadcast(OutEvent{Type: EvtHostTransferred, Payload: hostTransferredPayload{NewHostID: newHost.PlayerID}}))
	}

	if wasHunter && room.Status == StatusPlaying {
		signals = append(signals, broadcast(OutEvent{Type: EvtUnicornTransferred, Payload: unicornTransferredPayload{UnicornIDs: unicornList(room)}}))
		if len(room.UnicornIDs) == 0 && room.Phase == PhaseHunt {
			signals = append(signals, AdvanceRoomPhaseSignal{Phase: PhaseBlitzQuiz})
		}
	}

	return signals
}

func unicornList(room *Room) []string {
	ids := make([]string, 0, len(room.UnicornIDs))
	for id := range room.UnicornIDs {
		ids = append(ids, id)
	}
	return ids
}
