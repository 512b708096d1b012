// Package room implements the room runtime: room and player state, the
// position/combat/item managers, the game phase machine, and the
// signal-based orchestration that serializes every mutation to a room.
package room

import (
	"time"

	"github.com/maz/hunter/internal/gridutil"
	"github.com/maz/hunter/internal/quiz"
)

// RoomStatus is the coarse lifecycle state of a room.
type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
)

// RoomPhase drives the room-level phase machine (the classic/room flow).
type RoomPhase string

const (
	PhaseWaiting   RoomPhase = "waiting"
	PhaseBlitzQuiz RoomPhase = "blitz_quiz"
	PhaseHunt      RoomPhase = "hunt"
	PhaseRoundEnd  RoomPhase = "round_end"
	PhaseGameEnd   RoomPhase = "game_end"
)

// PlayerPhase drives the per-player phase machine (the per-player flow,
// chosen as primary — see DESIGN.md).
type PlayerPhase string

const (
	PlayerPhaseBlitz PlayerPhase = "blitz"
	PlayerPhaseHunt  PlayerPhase = "hunt"
)

// PlayerState is the combat-relevant state of a player.
type PlayerState string

const (
	PlayerActive    PlayerState = "active"
	PlayerFrozen    PlayerState = "frozen"
	PlayerInIFrames PlayerState = "in_iframes"
)

// Position is a player's authoritative location, grid and pixel kept
// consistent up to cell size. WasTeleport suppresses path-based combat
// scanning for the move that produced it.
type Position struct {
	Cell        gridutil.Cell
	Point       gridutil.Point
	UpdatedAt   time.Time
	WasTeleport bool
}

// Player is a room member. PlayerID is persistent across reconnects;
// SocketID is the current ephemeral transport connection and changes on
// every reconnect.
type Player struct {
	PlayerID             string
	SocketID             string
	Name                 string
	IsHost               bool
	CharacterID          int
	Coins                int
	Health               int
	State                PlayerState
	Phase                PlayerPhase
	EverHunter           bool
	QuestionsAttempted   int
	QuestionsCorrect     int
	AttemptedQuestionIDs map[string]struct{}
	DisconnectedAt       *time.Time
	JoinedAt             time.Time
	HeldTraps            int

	CurrentQuiz   []quiz.Question
	AnsweredCount int

	FrozenQuiz []quiz.Question
}

func newPlayer(playerID, socketID, name string, characterID int, startingHealth int) *Player {
	return &Player{
		PlayerID:             playerID,
		SocketID:             socketID,
		Name:                 name,
		CharacterID:          characterID,
		Health:               startingHealth,
		State:                PlayerActive,
		Phase:                PlayerPhaseBlitz,
		AttemptedQuestionIDs: make(map[string]struct{}),
		JoinedAt:             time.Now(),
	}
}

// Room is a single game session, keyed by its room code. It is created on
// first-player request, mutated only through the Service/manager pipeline,
// and destroyed when empty or when the game ends.
type Room struct {
	Code           string
	MaxPlayers     int
	Status         RoomStatus
	Phase          RoomPhase
	Players        []*Player
	UnicornIDs     map[string]struct{}
	QuizSourceID   string
	QuizPool       []quiz.Question
	QuizFetching   bool
	HuntDuration   time.Duration
	CreatedAt      time.Time
	LastActivityAt time.Time
	RoundHuntCount int // incremented on every hunt end and every hunter-rotation reset

	Positions  map[string]*Position // keyed by playerId
	Coins      map[string]*Coin
	Sinkholes  map[string]*Sinkhole
	Traps      map[string]*Trap
	NextCoinID int
	NextSinkID int
	NextTrapID int
}

// NewRoom constructs an empty room in Waiting status.
func NewRoom(code string, maxPlayers int) *Room {
	now := time.Now()
	return &Room{
		Code:           code,
		MaxPlayers:     maxPlayers,
		Status:         StatusWaiting,
		Phase:          PhaseWaiting,
		UnicornIDs:     make(map[string]struct{}),
		CreatedAt:      now,
		LastActivityAt: now,
		Positions:      make(map[string]*Position),
		Coins:          make(map[string]*Coin),
		Sinkholes:      make(map[string]*Sinkhole),
		Traps:          make(map[string]*Trap),
	}
}

// PlayerByID returns the player with the given persistent id, or nil.
func (r *Room) PlayerByID(playerID string) *Player {
	for _, p := range r.Players {
		if p.PlayerID == playerID {
			return p
		}
	}
	return nil
}

// PlayerBySocketID returns the player currently bound to socketID, or nil.
func (r *Room) PlayerBySocketID(socketID string) *Player {
	for _, p := range r.Players {
		if p.SocketID == socketID {
			return p
		}
	}
	return nil
}

// PlayerIndex returns the index of playerID within r.Players, or -1.
func (r *Room) PlayerIndex(playerID string) int {
	for i, p := range r.Players {
		if p.PlayerID == playerID {
			return i
		}
	}
	return -1
}

// IsHunter reports whether playerID is a current hunter.
func (r *Room) IsHunter(playerID string) bool {
	_, ok := r.UnicornIDs[playerID]
	return ok
}

// PruneUnicorn removes playerID from the hunter set, if present.
func (r *Room) PruneUnicorn(playerID string) {
	delete(r.UnicornIDs, playerID)
}

// IsEmpty reports whether the room has no players left (including
// disconnected ones still within grace).
func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

// touch updates LastActivityAt to now; called by every mutating operation.
func (r *Room) touch() {
	r.LastActivityAt = time.Now()
}
