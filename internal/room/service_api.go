package room

import (
	"fmt"

	"github.com/maz/hunter/internal/gridutil"
)

// defaultMaxPlayers is used when create_room's payload omits maxPlayers or
// sends a non-positive value.
const defaultMaxPlayers = 8

// CreateRoom creates a new room and joins socketID as its host, per
// spec.md 6's create_room. Grounded on the upstream RoomService.Create/Join
// pair, collapsed into one call since a host always joins the room it
// creates.
func (s *Service) CreateRoom(socketID, hostName string, maxPlayers int) (*Room, *Player, error) {
	if maxPlayers <= 0 {
		maxPlayers = defaultMaxPlayers
	}
	if maxPlayers > characterPaletteSize {
		maxPlayers = characterPaletteSize
	}
	room, err := s.repo.Create(s.cfg.RoomCodePrefix, s.cfg.MaxRoomCodeAttempts, maxPlayers)
	if err != nil {
		return nil, nil, err
	}

	_, unlock, err := s.repo.GetWithLock(room.Code)
	if err != nil {
		return nil, nil, err
	}
	player, signals, err := s.playerMgr.AddPlayer(room, socketID, hostName, true)
	unlock()
	if err != nil {
		s.repo.Delete(room.Code)
		return nil, nil, err
	}

	s.processSignals(room.Code, signals)
	return room, player, nil
}

// JoinRoom joins socketID into an existing Waiting room, per spec.md 6's
// join_room.
func (s *Service) JoinRoom(socketID, roomCode, playerName string) (*Room, *Player, error) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return nil, nil, err
	}
	player, signals, err := s.playerMgr.AddPlayer(room, socketID, playerName, false)
	unlock()
	if err != nil {
		return nil, nil, err
	}

	s.processSignals(roomCode, signals)
	return room, player, nil
}

// RejoinRoom reconnects playerID on a new socket within its grace period,
// per spec.md 6's rejoin_room and 4.10's reconnection protocol. Every
// per-player tracking key that the managers hold is keyed by the
// persistent playerId already (see DESIGN.md), so no cross-manager rebind
// is needed beyond the room's own SocketID field.
func (s *Service) RejoinRoom(socketID, roomCode, playerID string) (*Room, error) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return nil, err
	}
	signals, err := s.playerMgr.ReconnectPlayer(room, playerID, socketID)
	unlock()
	if err != nil {
		return nil, err
	}

	s.processSignals(roomCode, signals)
	return room, nil
}

// LeaveRoom permanently removes playerID from the room, per spec.md 6's
// leave_room.
func (s *Service) LeaveRoom(roomCode, playerID string) error {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return err
	}
	signals := s.playerMgr.RemovePlayer(room, playerID)
	unlock()

	s.forgetPlayer(playerID)
	s.processSignals(roomCode, signals)
	return nil
}

// DisconnectPlayer marks playerID disconnected (starting the reconnect
// grace timer during Playing, or removing them immediately otherwise), per
// spec.md 4.10. Called by the Hub when a socket's connection drops.
func (s *Service) DisconnectPlayer(roomCode, playerID string) error {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return err
	}
	signals, err := s.playerMgr.DisconnectPlayer(room, playerID, s.cfg.ReconnectGrace)
	removed := room.PlayerByID(playerID) == nil
	unlock()
	if err != nil {
		return err
	}
	if removed {
		s.forgetPlayer(playerID)
	}

	s.processSignals(roomCode, signals)
	return nil
}

// StartGame transitions a Waiting room into BlitzQuiz (host-only), seeds
// the grid with coins/sinkholes/traps, arms the sinkhole spawner, and sends
// every player their entry quiz. Per spec.md 6's start_game.
func (s *Service) StartGame(roomCode, playerID string) error {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return err
	}

	player := room.PlayerByID(playerID)
	if player == nil {
		unlock()
		return errNotFound
	}
	if !player.IsHost {
		unlock()
		return errNotHost
	}

	signals, err := s.lifecycle.StartGame(room)
	if err != nil {
		unlock()
		return err
	}

	if room.QuizSourceID == "" {
		room.QuizSourceID = room.Code
	}
	signals = append(signals, FetchQuizSignal{SourceID: room.QuizSourceID})

	signals = append(signals, s.coinMgr.InitialSpawn(room, s.mapCfg, BuildOccupiedSet(room))...)
	signals = append(signals, s.sinkholeMgr.InitialSpawn(room, s.mapCfg, BuildOccupiedSet(room))...)
	signals = append(signals, s.trapMgr.InitialSpawn(room, s.cfg.Trap.InitialCount, s.mapCfg, BuildOccupiedSet(room))...)
	signals = append(signals, StartTimerSignal{Purpose: purposeSinkholeSpawn, Delay: s.sinkholeMgr.NextSpawnDelay()})

	for _, p := range room.Players {
		signals = append(signals, s.assignEntryQuiz(room, p)...)
	}

	unlock()
	s.processSignals(roomCode, signals)
	return nil
}

// assignEntryQuiz picks BLITZ_QUESTION_COUNT unattempted questions for p
// from the room's cached pool (falling back gracefully per
// quiz.PickEntryQuestions if the pool is still empty) and unicasts
// blitz_start. Must be called with the room already locked.
func (s *Service) assignEntryQuiz(room *Room, p *Player) []Signal {
	questions := s.playerPhase.EntryQuestions(room.QuizPool, p)
	p.CurrentQuiz = questions
	p.AnsweredCount = 0
	return []Signal{unicast(p.SocketID, OutEvent{Type: EvtBlitzStart, Payload: blitzStartPayload{Questions: newQuestionViews(questions)}})}
}

// UpdatePosition validates and stores a reported position, scans the move
// path for tag collisions (CombatMgr) and deployed-trap triggers (TrapMgr),
// and broadcasts the accepted position. Fails silently on throttle or an
// unknown player — this is the 30Hz hot path, per spec.md 4.3 and 7.
func (s *Service) UpdatePosition(roomCode, playerID string, x, y float64, rowCol gridutil.Cell) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		unlock()
		return
	}
	player := room.PlayerByID(playerID)
	if player == nil || player.State == PlayerFrozen {
		unlock()
		return
	}

	old, hadOld := room.Positions[playerID]
	proposed := Position{Cell: rowCol, Point: gridutil.Point{X: x, Y: y}}
	stored, ok := s.positionMgr.UpdatePosition(room, playerID, proposed, s.mapCfg.Grid)
	if !ok {
		unlock()
		return
	}

	var signals []Signal
	signals = append(signals, broadcast(OutEvent{Type: EvtPlayerPositionUpdate, Payload: playerPositionUpdatePayload{
		PlayerID: playerID, Row: stored.Cell.Row, Col: stored.Cell.Col, X: stored.Point.X, Y: stored.Point.Y,
	}}))

	if hadOld {
		if room.IsHunter(playerID) {
			signals = append(signals, s.combatMgr.ResolveMovement(room, s.positionMgr, s.mapCfg.Grid, playerID, *old, *stored)...)
			path := s.positionMgr.PathCells(*old, *stored)
			signals = append(signals, s.trapMgr.CheckTriggers(room, playerID, path)...)
		}
	}

	unlock()
	s.processSignals(roomCode, signals)
}

// BlitzAnswer records a player's answer to one of their entry-quiz
// questions; once every question has been answered, the player enters
// Hunt per spec.md 4.9's "per-player entry into Hunt" rule.
func (s *Service) BlitzAnswer(roomCode, playerID string, questionIndex, answerIndex int) error {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return err
	}
	player := room.PlayerByID(playerID)
	if player == nil {
		unlock()
		return errNotFound
	}
	if player.Phase != PlayerPhaseBlitz {
		unlock()
		return errWrongPhase
	}
	if questionIndex < 0 || questionIndex >= len(player.CurrentQuiz) {
		unlock()
		return fmt.Errorf("room: question index %d out of range", questionIndex)
	}

	q := player.CurrentQuiz[questionIndex]
	correct := answerIndex == q.CorrectIndex
	player.QuestionsAttempted++
	player.AttemptedQuestionIDs[q.ID] = struct{}{}
	if correct {
		player.QuestionsCorrect++
		player.Coins += s.playerPhase.cfg.BlitzWinnerBonus
	}
	player.AnsweredCount++

	signals := []Signal{unicast(player.SocketID, OutEvent{Type: EvtBlitzAnswerResult, Payload: blitzAnswerResultPayload{QuestionIndex: questionIndex, Correct: correct}})}

	if player.AnsweredCount >= len(player.CurrentQuiz) {
		spawn := s.spawnCellFor(room, playerID)
		finishSignals, err := s.playerPhase.FinishBlitz(room, s.positionMgr, s.mapCfg.Grid, playerID, spawn)
		if err == nil {
			signals = append(signals, finishSignals...)
		}
	}

	unlock()
	s.processSignals(roomCode, signals)
	return nil
}

// SubmitUnfreezeQuizAnswer answers a Frozen player's unfreeze quiz. A
// correct answer restores full health and returns the player to Active; an
// incorrect one leaves them frozen to try again, per spec.md's Freeze
// glossary entry.
func (s *Service) SubmitUnfreezeQuizAnswer(roomCode, playerID string, questionIndex, answerIndex int) error {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return err
	}
	player := room.PlayerByID(playerID)
	if player == nil {
		unlock()
		return errNotFound
	}
	if player.State != PlayerFrozen {
		unlock()
		return errWrongPhase
	}
	if questionIndex < 0 || questionIndex >= len(player.FrozenQuiz) {
		unlock()
		return fmt.Errorf("room: question index %d out of range", questionIndex)
	}

	q := player.FrozenQuiz[questionIndex]
	correct := answerIndex == q.CorrectIndex
	player.AttemptedQuestionIDs[q.ID] = struct{}{}

	var signals []Signal
	if correct {
		player.FrozenQuiz = nil
		player.Health = s.startingHealth
		player.State = PlayerActive
		signals = append(signals,
			broadcast(OutEvent{Type: EvtUnfreezeQuizResult, Payload: unfreezeQuizResultPayload{Correct: true, Health: player.Health}}),
			broadcast(OutEvent{Type: EvtPlayerStateChange, Payload: playerStateChangePayload{PlayerID: playerID, State: string(PlayerActive)}}),
			broadcast(OutEvent{Type: EvtHealthUpdate, Payload: healthUpdatePayload{PlayerID: playerID, Health: player.Health}}),
		)
	} else {
		signals = append(signals, unicast(player.SocketID, OutEvent{Type: EvtUnfreezeQuizResult, Payload: unfreezeQuizResultPayload{Correct: false, Health: player.Health}}))
	}

	unlock()
	s.processSignals(roomCode, signals)
	return nil
}

// CollectCoin requests a coin pickup; see CoinMgr.Collect for the
// single-flight protocol.
func (s *Service) CollectCoin(roomCode, playerID, coinID string) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return
	}
	signals := s.coinMgr.Collect(room, coinID, playerID, s.cfg.Coin.RespawnTime)
	unlock()
	s.processSignals(roomCode, signals)
}

// EnterSinkhole requests a teleport through sinkholeID.
func (s *Service) EnterSinkhole(roomCode, playerID, sinkholeID string) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return
	}
	signals := s.sinkholeMgr.Teleport(room, s.positionMgr, s.mapCfg.Grid, playerID, sinkholeID)
	unlock()
	s.processSignals(roomCode, signals)
}

// CollectSinkTrap requests picking up a ground trap collectible.
func (s *Service) CollectSinkTrap(roomCode, playerID, trapID string) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return
	}
	signals := s.trapMgr.Collect(room, trapID, playerID)
	unlock()
	s.processSignals(roomCode, signals)
}

// DeploySinkTrap requests deploying one held trap at cell.
func (s *Service) DeploySinkTrap(roomCode, playerID string, cell gridutil.Cell) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return
	}
	signals := s.trapMgr.Deploy(room, playerID, cell, BuildOccupiedSet(room))
	unlock()
	s.processSignals(roomCode, signals)
}

// EndGame ends the game early (host-only), per spec.md 6's end_game.
func (s *Service) EndGame(roomCode, playerID string) error {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return err
	}
	player := room.PlayerByID(playerID)
	if player == nil {
		unlock()
		return errNotFound
	}
	if !player.IsHost {
		unlock()
		return errNotHost
	}
	signals := s.lifecycle.EndGame(room)
	unlock()
	s.processSignals(roomCode, signals)
	return nil
}

// RoomView returns the wire-facing view of roomCode, for the Hub's
// reconnect unicast.
func (s *Service) RoomView(roomCode string) (RoomView, error) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	defer unlock()
	if err != nil {
		return RoomView{}, err
	}
	return newRoomView(room), nil
}

// startUnfreezeQuiz assigns and sends a one-question unfreeze quiz to a
// newly Frozen player. Triggered by PlayerFrozenSignal after the room lock
// that produced it has already been released, so it re-acquires its own
// lock and re-checks the player is still Frozen (spec.md 7's stale-callback
// rule applies to any re-entrant signal, not just timers).
func (s *Service) startUnfreezeQuiz(roomCode, playerID string) {
	room, unlock, err := s.repo.GetWithLock(roomCode)
	if err != nil {
		return
	}
	player := room.PlayerByID(playerID)
	if player == nil || player.State != PlayerFrozen {
		unlock()
		return
	}
	questions := s.playerPhase.EntryQuestions(room.QuizPool, player)
	if len(questions) > 1 {
		questions = questions[:1]
	}
	player.FrozenQuiz = questions
	signals := []Signal{unicast(player.SocketID, OutEvent{Type: EvtUnfreezeQuizStart, Payload: unfreezeQuizStartPayload{Questions: newQuestionViews(questions)}})}
	unlock()
	s.processSignals(roomCode, signals)
}
