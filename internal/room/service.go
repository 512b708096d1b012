package room

import (
	"context"
	"strings"
	"time"

	"github.com/maz/hunter/internal/gridutil"
	"github.com/maz/hunter/internal/quiz"
)

// Broadcaster is the Hub-side collaborator the Service delivers outbound
// events through. Grounded on the upstream EventBroadcaster interface,
// generalized from one method per event type to a single
// Broadcast/Unicast pair carrying an OutEvent, since this domain's outbound
// event surface is far larger than the teacher's.
type Broadcaster interface {
	Broadcast(roomCode string, evt OutEvent)
	Unicast(socketID string, evt OutEvent)
}

// ServiceConfig bundles every tuning constant the Service's managers need.
type ServiceConfig struct {
	MaxPlayers          int
	RoomCodePrefix      string
	MaxRoomCodeAttempts int
	StartingHealth      int
	ReconnectGrace      time.Duration
	PositionThrottle    time.Duration
	Combat              CombatConfig
	Coin                CoinConfig
	Sinkhole            SinkholeConfig
	Trap                TrapConfig
	Lifecycle           GameLifecycleConfig
	PlayerPhase         PlayerPhaseConfig
	FetchTimeout        time.Duration
}

// Service is the RoomRuntime orchestration entrypoint (spec.md 4.1). Each
// public method takes the room's lock via Repository.GetWithLock,
// delegates to the owning manager, releases the lock, then interprets the
// returned []Signal — broadcasting events, arming/cancelling timers, or
// cascading into another manager call. Grounded directly on the upstream
// RoomService's processSignals loop.
type Service struct {
	cfg ServiceConfig

	repo        Repository
	playerMgr   PlayerManager
	positionMgr *PositionMgr
	combatMgr   *CombatMgr
	coinMgr     *CoinMgr
	sinkholeMgr *SinkholeMgr
	trapMgr     *TrapMgr
	lifecycle   *GameLifecycle
	playerPhase *PlayerPhaseMgr
	timers      TimerManager
	quizSvc     *quiz.Service

	broadcaster    Broadcaster
	mapCfg         MapConfig
	startingHealth int
}

// NewService wires every manager, the same explicit, no-DI-framework style
// as the upstream NewRoomService.
func NewService(cfg ServiceConfig, mapCfg MapConfig, quizSvc *quiz.Service) *Service {
	return &Service{
		cfg:            cfg,
		repo:           NewRepository(),
		playerMgr:      NewPlayerManager(cfg.StartingHealth),
		positionMgr:    NewPositionMgr(cfg.PositionThrottle),
		combatMgr:      NewCombatMgr(cfg.Combat),
		coinMgr:        NewCoinMgr(cfg.Coin),
		sinkholeMgr:    NewSinkholeMgr(cfg.Sinkhole),
		trapMgr:        NewTrapMgr(),
		lifecycle:      NewGameLifecycle(cfg.Lifecycle),
		playerPhase:    NewPlayerPhaseMgr(cfg.PlayerPhase),
		timers:         NewTimerManager(),
		quizSvc:        quizSvc,
		mapCfg:         mapCfg,
		startingHealth: cfg.StartingHealth,
	}
}

// SetBroadcaster wires the Hub after construction, the same two-step
// wiring the upstream Store uses (constructed first, broadcaster attached
// once the Hub exists) since Hub and Service each need a reference to the
// other.
func (s *Service) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// processSignals interprets every signal a manager call returned, in
// order, after the room's lock has already been released.
func (s *Service) processSignals(roomCode string, signals []Signal) {
	for _, sig := range signals {
		switch v := sig.(type) {
		case BroadcastSignal:
			if s.broadcaster == nil {
				continue
			}
			if v.Scope == ScopeSocket {
				s.broadcaster.Unicast(v.SocketID, v.Event)
			} else {
				s.broadcaster.Broadcast(roomCode, v.Event)
			}
		case StartTimerSignal:
			s.timers.StartTimer(roomCode, v.Purpose, v.Delay, s.onTimerFired)
		case CancelTimerSignal:
			s.timers.CancelTimer(roomCode, v.Purpose)
		case AdvanceRoomPhaseSignal:
			s.advanceRoomPhase(roomCode, v.Phase)
		case AdvancePlayerPhaseSignal:
			s.advancePlayerPhase(roomCode, v.PlayerID, v.Phase)
		case FetchQuizSignal:
			s.scheduleQuizFetch(roomCode, v.SourceID)
		case EndRoomSignal:
			s.timers.CancelAllForRoom(roomCode)
			s.combatMgr.Forget(roomCode)
			s.coinMgr.Forget(roomCode)
			s.repo.Delete(roomCode)
		case PlayerFrozenSignal:
			s.startUnfreezeQuiz(roomCode, v.PlayerID)
		}
	}
}

func (s *Service) advanceRoomPhase(roomCode string, phase RoomPhase) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return
	}
	var signals []Signal
	switch phase {
	case PhaseBlitzQuiz:
		signals, err = s.lifecycle.EndHunt(room, "unicorn_disconnected")
	case PhaseHunt:
		signals, err = s.lifecycle.StartHunt(room)
	}
	unlock()
	if err == nil {
		s.processSignals(roomCode, signals)
	}
}

func (s *Service) advancePlayerPhase(roomCode, playerID string, phase PlayerPhase) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return
	}
	var signals []Signal
	if phase == PlayerPhaseHunt {
		spawn := s.spawnCellFor(room, playerID)
		signals, err = s.playerPhase.FinishBlitz(room, s.positionMgr, s.mapCfg.Grid, playerID, spawn)
	}
	unlock()
	if err == nil {
		s.processSignals(roomCode, signals)
	}
}

// scheduleQuizFetch runs the external fetch off the runtime's critical
// path and posts the result back through onQuizFetched, per spec.md 5.
func (s *Service) scheduleQuizFetch(roomCode, sourceID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.FetchTimeout)
		defer cancel()
		questions := s.quizSvc.FetchQuestions(ctx, sourceID)
		s.onQuizFetched(roomCode, questions)
	}()
}

func (s *Service) onQuizFetched(roomCode string, questions []quiz.Question) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return // room destroyed before the fetch completed; nothing to do
	}
	room.QuizPool = questions
	room.QuizFetching = false
	unlock()
}

// onTimerFired dispatches a fired timer by purpose. Every handler re-checks
// the room (and, where relevant, the player) still exists and is in the
// expected state before mutating, per spec.md 7's stale-callback rule.
func (s *Service) onTimerFired(roomCode, purpose string) {
	switch {
	case purpose == purposeGlobal:
		s.handleGlobalTimeout(roomCode)
	case purpose == purposeHunt:
		s.handleHuntTimeout(roomCode)
	case purpose == purposeBlitz:
		s.handleRoundEndTimeout(roomCode)
	case purpose == purposeSinkholeSpawn:
		s.handleSinkholeSpawnTick(roomCode)
	case strings.HasPrefix(purpose, "per-player-hunt:"):
		playerID := strings.TrimPrefix(purpose, "per-player-hunt:")
		s.handlePlayerHuntExpiry(roomCode, playerID)
	case strings.HasPrefix(purpose, "reconnect-grace:"):
		playerID := strings.TrimPrefix(purpose, "reconnect-grace:")
		s.handleReconnectGraceExpiry(roomCode, playerID)
	case strings.HasPrefix(purpose, "coin-respawn:"):
		coinID := strings.TrimPrefix(purpose, "coin-respawn:")
		s.handleCoinRespawn(roomCode, coinID)
	case strings.HasPrefix(purpose, "iframe-clear:"):
		playerID := strings.TrimPrefix(purpose, "iframe-clear:")
		s.handleIFrameClear(roomCode, playerID)
	}
}

// handleIFrameClear restores a player's visible state to Active once their
// i-frame window elapses. A later tag may have already frozen them (or a
// fresh tag may have re-armed a new timer with the same purpose key, which
// CancelTimerSignal-free StartTimerSignal replaces) — either way this is a
// no-op unless the player is still exactly InIFrames.
func (s *Service) handleIFrameClear(roomCode, playerID string) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return
	}
	player := room.PlayerByID(playerID)
	if player == nil || player.State != PlayerInIFrames {
		unlock()
		return
	}
	player.State = PlayerActive
	signals := []Signal{broadcast(OutEvent{Type: EvtPlayerStateChange, Payload: playerStateChangePayload{PlayerID: playerID, State: string(PlayerActive)}})}
	unlock()
	s.processSignals(roomCode, signals)
}

func (s *Service) handleGlobalTimeout(roomCode string) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return
	}
	if room.Status != StatusPlaying {
		unlock()
		return
	}
	signals := s.lifecycle.EndGame(room)
	unlock()
	s.processSignals(roomCode, signals)
}

func (s *Service) handleHuntTimeout(roomCode string) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return
	}
	if room.Phase != PhaseHunt {
		unlock()
		return
	}
	signals, err := s.lifecycle.EndHunt(room, "timeout")
	unlock()
	if err == nil {
		s.processSignals(roomCode, signals)
	}
}

func (s *Service) handleRoundEndTimeout(roomCode string) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return
	}
	if room.Phase != PhaseRoundEnd {
		unlock()
		return
	}
	signals, err := s.lifecycle.StartHunt(room)
	unlock()
	if err == nil {
		s.processSignals(roomCode, signals)
	}
}

func (s *Service) handlePlayerHuntExpiry(roomCode, playerID string) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return
	}
	signals, err := s.playerPhase.ExpireHunt(room, playerID)
	unlock()
	if err == nil {
		s.processSignals(roomCode, signals)
	}
}

func (s *Service) handleReconnectGraceExpiry(roomCode, playerID string) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return
	}
	player := room.PlayerByID(playerID)
	if player == nil || player.DisconnectedAt == nil {
		unlock() // already reconnected or already removed; stale callback, no-op
		return
	}
	signals := s.playerMgr.RemovePlayer(room, playerID)
	unlock()
	s.forgetPlayer(playerID)
	s.processSignals(roomCode, signals)
}

func (s *Service) handleCoinRespawn(roomCode, coinID string) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return
	}
	occupied := BuildOccupiedSet(room)
	signals := s.coinMgr.Respawn(room, coinID, s.mapCfg, occupied)
	unlock()
	s.processSignals(roomCode, signals)
}

func (s *Service) handleSinkholeSpawnTick(roomCode string) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return
	}
	var signals []Signal
	if room.Phase == PhaseHunt {
		occupied := BuildOccupiedSet(room)
		signals = s.sinkholeMgr.MaybeSpawnOne(room, s.mapCfg, occupied)
	}
	signals = append(signals, StartTimerSignal{Purpose: purposeSinkholeSpawn, Delay: s.sinkholeMgr.NextSpawnDelay()})
	unlock()
	s.processSignals(roomCode, signals)
}

// forgetPlayer drops PositionMgr's and SinkholeMgr's per-player bookkeeping
// for a player who has left the room for good. Called after any RemovePlayer.
func (s *Service) forgetPlayer(playerID string) {
	s.positionMgr.Forget(playerID)
	s.sinkholeMgr.Forget(playerID)
}

func (s *Service) spawnCellFor(room *Room, playerID string) gridutil.Cell {
	assigned := s.positionMgr.AssignSpawnPositions(room, []*Player{room.PlayerByID(playerID)}, s.mapCfg)
	return assigned[playerID]
}
