package room

import "time"

// GameLifecycleConfig carries GameLoop's tuning constants.
type GameLifecycleConfig struct {
	HuntDuration      time.Duration
	BlitzDuration     time.Duration
	RoundEndDuration  time.Duration
	GameTotalDuration time.Duration
}

// GameLifecycle drives the room-level phase machine (Waiting -> BlitzQuiz
// -> Hunt -> BlitzQuiz -> ... -> GameEnd; StartHunt also accepts RoundEnd,
// which no method of this type enters). Grounded directly on the upstream
// StartGame/EndGame/StartNextGame signal-returning shape, retargeted from a
// turn-based puzzle round to this phase machine. Hunter/survivor role
// selection is driven per-player instead of by a room-wide endBlitz pass
// (see PlayerPhaseMgr.FinishBlitz) so this type only arms room-level phase
// timers and transitions.
type GameLifecycle struct {
	cfg GameLifecycleConfig
}

// NewGameLifecycle constructs a GameLifecycle with the given tuning config.
func NewGameLifecycle(cfg GameLifecycleConfig) *GameLifecycle {
	return &GameLifecycle{cfg: cfg}
}

// StartGame transitions a Waiting room into BlitzQuiz, arms the global
// total-duration timer, and broadcasts game_started + phase_change.
func (g *GameLifecycle) StartGame(room *Room) ([]Signal, error) {
	if room.Status != StatusWaiting {
		return nil, errNotWaiting
	}
	room.Status = StatusPlaying
	room.Phase = PhaseBlitzQuiz
	room.touch()

	return []Signal{
		broadcast(OutEvent{Type: EvtGameStarted, Payload: struct{}{}}),
		broadcast(OutEvent{Type: EvtPhaseChange, Payload: phaseChangePayload{Phase: string(PhaseBlitzQuiz)}}),
		StartTimerSignal{Purpose: purposeGlobal, Delay: g.cfg.GameTotalDuration},
	}, nil
}

// StartHunt transitions BlitzQuiz or RoundEnd into Hunt and arms the hunt-duration timer.
func (g *GameLifecycle) StartHunt(room *Room) ([]Signal, error) {
	if room.Phase != PhaseRoundEnd && room.Phase != PhaseBlitzQuiz {
		return nil, errWrongPhase
	}
	room.Phase = PhaseHunt
	room.touch()
	return []Signal{
		broadcast(OutEvent{Type: EvtHuntStart, Payload: struct{}{}}),
		broadcast(OutEvent{Type: EvtPhaseChange, Payload: phaseChangePayload{Phase: string(PhaseHunt)}}),
		StartTimerSignal{Purpose: purposeHunt, Delay: g.cfg.HuntDuration},
	}, nil
}

// EndHunt transitions Hunt back into BlitzQuiz for the next round, either
// because the hunt timer elapsed or because every hunter disconnected.
func (g *GameLifecycle) EndHunt(room *Room, reason string) ([]Signal, error) {
	if room.Phase != PhaseHunt {
		return nil, errWrongPhase
	}
	room.RoundHuntCount++
	room.Phase = PhaseBlitzQuiz
	room.touch()
	return []Signal{
		CancelTimerSignal{Purpose: purposeHunt},
		broadcast(OutEvent{Type: EvtHuntEnd, Payload: huntEndPayload{Reason: reason}}),
		broadcast(OutEvent{Type: EvtPhaseChange, Payload: phaseChangePayload{Phase: string(PhaseBlitzQuiz)}}),
		broadcast(OutEvent{Type: EvtBlitzStart, Payload: struct{}{}}),
	}, nil
}

// EndGame transitions any in-progress room into GameEnd and broadcasts the
// final leaderboard, sorted by coins descending.
func (g *GameLifecycle) EndGame(room *Room) []Signal {
	room.Phase = PhaseGameEnd
	room.Status = StatusFinished
	room.touch()

	leaderboard := make([]PlayerView, len(room.Players))
	for i, p := range room.Players {
		leaderboard[i] = newPlayerView(room, p)
	}
	sortByCoinsDesc(leaderboard)

	return []Signal{
		CancelTimerSignal{Purpose: purposeGlobal},
		CancelTimerSignal{Purpose: purposeHunt},
		CancelTimerSignal{Purpose: purposeBlitz},
		broadcast(OutEvent{Type: EvtPhaseChange, Payload: phaseChangePayload{Phase: string(PhaseGameEnd)}}),
		broadcast(OutEvent{Type: EvtGameEnd, Payload: gameEndPayload{Leaderboard: leaderboard}}),
		EndRoomSignal{},
	}
}

func sortByCoinsDesc(views []PlayerView) {
	for i := 1; i < len(views); i++ {
		for j := i; j > 0 && views[j].Coins > views[j-1].Coins; j-- {
			views[j], views[j-1] = views[j-1], views[j]
		}
	}
}
