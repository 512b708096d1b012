package room

import "github.com/maz/hunter/internal/quiz"

// OutEvent is the outbound wire event envelope: an event name and its JSON
// payload. internal/ws marshals this to the transport; room never touches
// JSON or sockets directly.
type OutEvent struct {
	Type    string
	Payload any
}

// Outbound event names, per spec.md section 6.
const (
	EvtRoomCreated          = "room_created"
	EvtRoomJoined           = "room_joined"
	EvtRoomUpdate           = "room_update"
	EvtPlayerJoined         = "player_joined"
	EvtPlayerLeft           = "player_left"
	EvtPlayerDisconnected   = "player_disconnected"
	EvtPlayerReconnected    = "player_reconnected"
	EvtHostTransferred      = "host_transferred"
	EvtUnicornTransferred   = "unicorn_transferred"
	EvtPhaseChange          = "phase_change"
	EvtBlitzStart           = "blitz_start"
	EvtBlitzAnswerResult    = "blitz_answer_result"
	EvtBlitzResult          = "blitz_result"
	EvtHuntStart            = "hunt_start"
	EvtHuntEnd              = "hunt_end"
	EvtPlayerPositionUpdate = "player_position_update"
	EvtPlayerTagged         = "player_tagged"
	EvtPlayerHit            = "player_hit"
	EvtPlayerStateChange    = "player_state_change"
	EvtPlayerRespawn        = "player_respawn"
	EvtHealthUpdate         = "health_update"
	EvtCoinSpawned          = "coin_spawned"
	EvtCoinCollected        = "coin_collected"
	EvtSinkholeSpawned      = "sinkhole_spawned"
	EvtPlayerTeleported     = "player_teleported"
	EvtSinkTrapDeployed     = "sink_trap_deployed"
	EvtSinkTrapCollected    = "sink_trap_collected"
	EvtSinkTrapTriggered    = "sink_trap_triggered"
	EvtGameEnd              = "game_end"
	EvtUnfreezeQuizStart    = "unfreeze_quiz_start"
	EvtUnfreezeQuizResult   = "unfreeze_quiz_result"
	EvtGameStarted          = "game_started"

	EvtJoinError   = "join_error"
	EvtLeaveError  = "leave_error"
	EvtStartError  = "start_error"
	EvtRejoinError = "rejoin_error"
)

// PlayerView is the wire-facing projection of a Player — never the full
// internal struct, so that per-player secrets (attempted question ids are
// fine to share back with their own owner, but we still shape it
// explicitly rather than exposing internal bookkeeping fields).
type PlayerView struct {
	PlayerID    string `json:"playerId"`
	Name        string `json:"name"`
	IsHost      bool   `json:"isHost"`
	IsHunter    bool   `json:"isHunter"`
	CharacterID int    `json:"characterId"`
	Coins       int    `json:"coins"`
	Health      int    `json:"health"`
	State       string `json:"state"`
	Connected   bool   `json:"connected"`
	Row         int    `json:"row"`
	Col         int    `json:"col"`
}

func newPlayerView(r *Room, p *Player) PlayerView {
	view := PlayerView{
		PlayerID:    p.PlayerID,
		Name:        p.Name,
		IsHost:      p.IsHost,
		IsHunter:    r.IsHunter(p.PlayerID),
		CharacterID: p.CharacterID,
		Coins:       p.Coins,
		Health:      p.Health,
		State:       string(p.State),
		Connected:   p.DisconnectedAt == nil,
	}
	if pos, ok := r.Positions[p.PlayerID]; ok {
		view.Row, view.Col = pos.Cell.Row, pos.Cell.Col
	}
	return view
}

// RoomView is the wire-facing projection of a Room's player roster, phase,
// and live spawnables — the full state a reconnecting client needs to
// restore itself without replaying every event it missed (spec.md 4.10).
type RoomView struct {
	Code      string                   `json:"roomCode"`
	Status    string                   `json:"status"`
	Phase     string                   `json:"phase"`
	Players   []PlayerView             `json:"players"`
	Coins     []coinSpawnedPayload     `json:"coins"`
	Sinkholes []sinkholeSpawnedPayload `json:"sinkholes"`
	Traps     []sinkTrapPayload        `json:"traps"`
}

func newRoomView(r *Room) RoomView {
	views := make([]PlayerView, len(r.Players))
	for i, p := range r.Players {
		views[i] = newPlayerView(r, p)
	}

	coins := make([]coinSpawnedPayload, 0, len(r.Coins))
	for _, c := range r.Coins {
		if !c.Collected {
			coins = append(coins, coinSpawnedPayload{CoinID: c.ID, Row: c.Cell.Row, Col: c.Cell.Col})
		}
	}
	sinks := make([]sinkholeSpawnedPayload, 0, len(r.Sinkholes))
	for _, s := range r.Sinkholes {
		sinks = append(sinks, sinkholeSpawnedPayload{SinkholeID: s.ID, Row: s.Cell.Row, Col: s.Cell.Col, ColorTag: s.ColorTag})
	}
	traps := make([]sinkTrapPayload, 0, len(r.Traps))
	for _, t := range r.Traps {
		traps = append(traps, sinkTrapPayload{TrapID: t.ID, PlayerID: t.DeployedBy, Row: t.Cell.Row, Col: t.Cell.Col})
	}

	return RoomView{
		Code:      r.Code,
		Status:    string(r.Status),
		Phase:     string(r.Phase),
		Players:   views,
		Coins:     coins,
		Sinkholes: sinks,
		Traps:     traps,
	}
}

type playerJoinedPayload struct {
	Player PlayerView `json:"player"`
}

type playerLeftPayload struct {
	PlayerID string `json:"playerId"`
}

type playerDisconnectedPayload struct {
	PlayerID string `json:"playerId"`
}

type playerReconnectedPayload struct {
	PlayerID string `json:"playerId"`
}

type hostTransferredPayload struct {
	NewHostID string `json:"newHostId"`
}

type unicornTransferredPayload struct {
	UnicornIDs []string `json:"unicornIds"`
}

type phaseChangePayload struct {
	Phase string `json:"phase"`
}

type huntEndPayload struct {
	Reason string `json:"reason"`
}

type playerPositionUpdatePayload struct {
	PlayerID string  `json:"playerId"`
	Row      int     `json:"row"`
	Col      int     `json:"col"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type playerTaggedPayload struct {
	AttackerID string `json:"attackerId"`
	VictimID   string `json:"victimId"`
}

type playerHitPayload struct {
	PlayerID  string `json:"playerId"`
	Health    int    `json:"health"`
	Knockback bool   `json:"knockback"`
}

type playerStateChangePayload struct {
	PlayerID string `json:"playerId"`
	State    string `json:"state"`
}

type playerRespawnPayload struct {
	PlayerID string `json:"playerId"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
}

type healthUpdatePayload struct {
	PlayerID string `json:"playerId"`
	Health   int    `json:"health"`
}

type coinSpawnedPayload struct {
	CoinID string `json:"coinId"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

type coinCollectedPayload struct {
	CoinID   string `json:"coinId"`
	PlayerID string `json:"playerId"`
}

type sinkholeSpawnedPayload struct {
	SinkholeID string `json:"sinkholeId"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	ColorTag   string `json:"colorTag"`
}

type playerTeleportedPayload struct {
	PlayerID string `json:"playerId"`
	FromRow  int    `json:"fromRow"`
	FromCol  int    `json:"fromCol"`
	ToRow    int    `json:"toRow"`
	ToCol    int    `json:"toCol"`
}

type sinkTrapPayload struct {
	TrapID   string `json:"trapId"`
	PlayerID string `json:"playerId,omitempty"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
}

type gameEndPayload struct {
	Leaderboard []PlayerView `json:"leaderboard"`
}

type errorPayload struct {
	Reason string `json:"reason"`
}

// QuestionView is the wire-facing projection of a quiz question — the
// correct index is never sent to the client.
type QuestionView struct {
	ID             string   `json:"id"`
	Text           string   `json:"text"`
	Options        []string `json:"options"`
	OptionalImages []string `json:"optionalImages,omitempty"`
}

func newQuestionViews(questions []quiz.Question) []QuestionView {
	views := make([]QuestionView, len(questions))
	for i, q := range questions {
		views[i] = QuestionView{ID: q.ID, Text: q.Text, Options: q.Options, OptionalImages: q.OptionalImages}
	}
	return views
}

type blitzStartPayload struct {
	Questions []QuestionView `json:"questions"`
}

type blitzAnswerResultPayload struct {
	QuestionIndex int  `json:"questionIndex"`
	Correct       bool `json:"correct"`
}

type unfreezeQuizStartPayload struct {
	Questions []QuestionView `json:"questions"`
}

type unfreezeQuizResultPayload struct {
	Correct bool `json:"correct"`
	Health  int  `json:"health"`
}
