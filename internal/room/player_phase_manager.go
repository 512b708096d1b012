package room

import (
	"math/rand/v2"
	"time"

	"github.com/maz/hunter/internal/gridutil"
	"github.com/maz/hunter/internal/quiz"
)

// PlayerPhaseConfig carries the per-player phase machine's tuning constants.
type PlayerPhaseConfig struct {
	HuntDuration       time.Duration
	EnforcerChance     float64
	BlitzQuestionCount int
	BlitzWinnerBonus   int
}

// PlayerPhaseMgr drives the per-player Blitz<->Hunt cycle chosen as this
// repository's primary flow (see DESIGN.md). Grounded in shape on the room
// phase machine above, applied at player granularity per spec.md 4.9's
// "per-player entry into Hunt" rule.
type PlayerPhaseMgr struct {
	cfg PlayerPhaseConfig
}

// NewPlayerPhaseMgr constructs a PlayerPhaseMgr with the given config.
func NewPlayerPhaseMgr(cfg PlayerPhaseConfig) *PlayerPhaseMgr {
	return &PlayerPhaseMgr{cfg: cfg}
}

// EntryQuestions selects BlitzQuestionCount questions for playerID's entry
// quiz, preferring ones the player hasn't attempted yet.
func (m *PlayerPhaseMgr) EntryQuestions(pool []quiz.Question, player *Player) []quiz.Question {
	return quiz.PickEntryQuestions(pool, player.AttemptedQuestionIDs, m.cfg.BlitzQuestionCount)
}

// FinishBlitz is called once a player has answered their entry quiz
// questions. It records attempt/correct counters, decides the per-player
// hunter roll, and either enters the player into Hunt as a hunter or a
// survivor, arming their personal hunt-duration timer.
func (m *PlayerPhaseMgr) FinishBlitz(room *Room, pos *PositionMgr, grid gridutil.Grid, playerID string, spawn gridutil.Cell) ([]Signal, error) {
	player := room.PlayerByID(playerID)
	if player == nil {
		return nil, errNotFound
	}
	if player.Phase != PlayerPhaseBlitz {
		return nil, errWrongPhase
	}

	player.Phase = PlayerPhaseHunt
	becomesHunter := m.rollHunter(room, player)
	if becomesHunter {
		room.UnicornIDs[playerID] = struct{}{}
		player.EverHunter = true
	} else {
		room.PruneUnicorn(playerID)
	}

	pos.SetPlayerPosition(room, playerID, spawn, grid, false)

	signals := []Signal{
		broadcast(OutEvent{Type: EvtPlayerRespawn, Payload: playerRespawnPayload{PlayerID: playerID, Row: spawn.Row, Col: spawn.Col}}),
		broadcast(OutEvent{Type: EvtPlayerStateChange, Payload: playerStateChangePayload{PlayerID: playerID, State: string(player.State)}}),
		StartTimerSignal{Purpose: purposePlayerHunt(playerID), Delay: m.cfg.HuntDuration},
	}
	if becomesHunter {
		signals = append(signals, broadcast(OutEvent{Type: EvtUnicornTransferred, Payload: unicornTransferredPayload{UnicornIDs: unicornList(room)}}))
	}
	return signals, nil
}

// rollHunter decides whether player becomes a hunter on this Hunt entry.
// It applies spec.md 4.9's role-selection fairness rule at player
// granularity: a player who has never been a hunter in the current
// rotation is forced into the role rather than left to EnforcerChance. A
// player who has already been a hunter in the rotation still rolls
// EnforcerChance, so can be picked again before every other player has had
// a turn. Once every player in the room has been a hunter, the rotation set
// resets. The
// result is then clamped so the roll can never leave the room with zero
// survivors (spec.md 3's "at least one survivor always exists").
func (m *PlayerPhaseMgr) rollHunter(room *Room, player *Player) bool {
	if allPlayersEverHunter(room) {
		resetHunterRotation(room)
	}

	becomesHunter := !player.EverHunter || rand.Float64() < m.cfg.EnforcerChance
	if becomesHunter && wouldLeaveNoSurvivors(room, player.PlayerID) {
		becomesHunter = false
	}
	return becomesHunter
}

// allPlayersEverHunter reports whether every player currently in the room
// has been a hunter at least once in the current rotation.
func allPlayersEverHunter(room *Room) bool {
	if len(room.Players) == 0 {
		return false
	}
	for _, p := range room.Players {
		if !p.EverHunter {
			return false
		}
	}
	return true
}

// resetHunterRotation clears the rotation-fairness bookkeeping once every
// player has taken a turn as hunter, starting a fresh cycle.
func resetHunterRotation(room *Room) {
	room.RoundHuntCount++
	for _, p := range room.Players {
		p.EverHunter = false
	}
}

// wouldLeaveNoSurvivors reports whether marking playerID a hunter would put
// every player in the room into UnicornIDs at once.
func wouldLeaveNoSurvivors(room *Room, playerID string) bool {
	total := len(room.Players)
	if total <= 1 {
		return false
	}
	hunters := len(room.UnicornIDs)
	if _, already := room.UnicornIDs[playerID]; !already {
		hunters++
	}
	return hunters >= total
}

// ExpireHunt sends a player back to Blitz once their personal
// HUNT_DURATION timer elapses.
func (m *PlayerPhaseMgr) ExpireHunt(room *Room, playerID string) ([]Signal, error) {
	player := room.PlayerByID(playerID)
	if player == nil {
		return nil, nil // player left before the timer fired; no-op, per spec.md 7
	}
	if player.Phase != PlayerPhaseHunt {
		return nil, nil
	}

	player.Phase = PlayerPhaseBlitz
	wasHunter := room.IsHunter(playerID)
	room.PruneUnicorn(playerID)

	player.CurrentQuiz = m.EntryQuestions(room.QuizPool, player)
	player.AnsweredCount = 0

	signals := []Signal{
		broadcast(OutEvent{Type: EvtPlayerStateChange, Payload: playerStateChangePayload{PlayerID: playerID, State: "blitz"}}),
		unicast(player.SocketID, OutEvent{Type: EvtBlitzStart, Payload: blitzStartPayload{Questions: newQuestionViews(player.CurrentQuiz)}}),
	}
	if wasHunter && len(room.UnicornIDs) == 0 && room.Phase == PhaseHunt {
		signals = append(signals, AdvanceRoomPhaseSignal{Phase: PhaseBlitzQuiz})
	}
	return signals, nil
}
