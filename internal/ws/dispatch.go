package ws

import (
	"encoding/json"
	"log"

	"github.com/maz/hunter/internal/gridutil"
	"github.com/maz/hunter/internal/room"
)

// inboundEvent mirrors Event but keeps Payload undecoded until the handler
// for its Type knows the concrete shape to decode into.
type inboundEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type createRoomPayload struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"maxPlayers"`
}

type joinRoomPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type rejoinRoomPayload struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type updatePositionPayload struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Row int     `json:"row"`
	Col int     `json:"col"`
}

type answerPayload struct {
	QuestionIndex int `json:"questionIndex"`
	AnswerIndex   int `json:"answerIndex"`
}

type coinIDPayload struct {
	CoinID string `json:"coinId"`
}

type sinkholeIDPayload struct {
	SinkholeID string `json:"sinkholeId"`
}

type trapIDPayload struct {
	TrapID string `json:"trapId"`
}

type cellPayload struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// roomCreatedPayload and roomJoinedPayload are the unicast acks for the two
// events that bind a fresh socket to a room (spec.md section 6's
// room_created/room_joined). Defined here rather than in room.OutEvent
// payloads since room.RoomView is already the full wire projection — this
// package just names which player within it belongs to the recipient.
type roomCreatedPayload struct {
	RoomCode string          `json:"roomCode"`
	Room     room.RoomView   `json:"room"`
	Player   room.PlayerView `json:"player"`
}

type roomJoinedPayload struct {
	Room   room.RoomView   `json:"room"`
	Player room.PlayerView `json:"player"`
}

func findPlayerView(view room.RoomView, playerID string) room.PlayerView {
	for _, p := range view.Players {
		if p.PlayerID == playerID {
			return p
		}
	}
	return room.PlayerView{}
}

// dispatch decodes evt.Payload according to evt.Type and routes it into the
// room Service. A socket that hasn't yet bound to a room may only send
// create_room/join_room/rejoin_room; anything else arriving first is
// dropped, per spec.md 6's dispatch rule ("unknown or out-of-context events
// are silently dropped").
func (h *Hub) dispatch(c *Client, evt inboundEvent) {
	roomCode, playerID := c.identity()

	switch evt.Type {
	case "create_room":
		var p createRoomPayload
		decode(evt.Payload, &p)
		rm, player, err := h.svc.CreateRoom(c.socketID, p.Name, p.MaxPlayers)
		if err != nil {
			h.Unicast(c.socketID, room.OutEvent{Type: "join_error", Payload: errPayload(err)})
			return
		}
		h.rebind(c, rm.Code)
		c.bind(rm.Code, player.PlayerID)
		view, _ := h.svc.RoomView(rm.Code)
		h.Unicast(c.socketID, room.OutEvent{Type: room.EvtRoomCreated, Payload: roomCreatedPayload{RoomCode: rm.Code, Room: view, Player: findPlayerView(view, player.PlayerID)}})

	case "join_room":
		var p joinRoomPayload
		decode(evt.Payload, &p)
		rm, player, err := h.svc.JoinRoom(c.socketID, p.RoomCode, p.PlayerName)
		if err != nil {
			h.Unicast(c.socketID, room.OutEvent{Type: "join_error", Payload: errPayload(err)})
			return
		}
		h.rebind(c, rm.Code)
		c.bind(rm.Code, player.PlayerID)
		view, _ := h.svc.RoomView(rm.Code)
		h.Unicast(c.socketID, room.OutEvent{Type: room.EvtRoomJoined, Payload: roomJoinedPayload{Room: view, Player: findPlayerView(view, player.PlayerID)}})

	case "rejoin_room":
		var p rejoinRoomPayload
		decode(evt.Payload, &p)
		rm, err := h.svc.RejoinRoom(c.socketID, p.RoomCode, p.PlayerID)
		if err != nil {
			h.Unicast(c.socketID, room.OutEvent{Type: "rejoin_error", Payload: errPayload(err)})
			return
		}
		h.rebind(c, rm.Code)
		c.bind(rm.Code, p.PlayerID)

	case "leave_room":
		if roomCode == "" {
			return
		}
		if err := h.svc.LeaveRoom(roomCode, playerID); err != nil {
			h.Unicast(c.socketID, room.OutEvent{Type: "leave_error", Payload: errPayload(err)})
			return
		}
		c.bind("", "")

	case "start_game":
		if roomCode == "" {
			return
		}
		if err := h.svc.StartGame(roomCode, playerID); err != nil {
			h.Unicast(c.socketID, room.OutEvent{Type: "start_error", Payload: errPayload(err)})
		}

	case "update_position":
		if roomCode == "" {
			return
		}
		var p updatePositionPayload
		decode(evt.Payload, &p)
		h.svc.UpdatePosition(roomCode, playerID, p.X, p.Y, gridutil.Cell{Row: p.Row, Col: p.Col})

	case "blitz_answer":
		if roomCode == "" {
			return
		}
		var p answerPayload
		decode(evt.Payload, &p)
		h.svc.BlitzAnswer(roomCode, playerID, p.QuestionIndex, p.AnswerIndex)

	case "submit_unfreeze_quiz_answer":
		if roomCode == "" {
			return
		}
		var p answerPayload
		decode(evt.Payload, &p)
		h.svc.SubmitUnfreezeQuizAnswer(roomCode, playerID, p.QuestionIndex, p.AnswerIndex)

	case "collect_coin":
		if roomCode == "" {
			return
		}
		var p coinIDPayload
		decode(evt.Payload, &p)
		h.svc.CollectCoin(roomCode, playerID, p.CoinID)

	case "enter_sinkhole":
		if roomCode == "" {
			return
		}
		var p sinkholeIDPayload
		decode(evt.Payload, &p)
		h.svc.EnterSinkhole(roomCode, playerID, p.SinkholeID)

	case "collect_sink_trap":
		if roomCode == "" {
			return
		}
		var p trapIDPayload
		decode(evt.Payload, &p)
		h.svc.CollectSinkTrap(roomCode, playerID, p.TrapID)

	case "deploy_sink_trap":
		if roomCode == "" {
			return
		}
		var p cellPayload
		decode(evt.Payload, &p)
		h.svc.DeploySinkTrap(roomCode, playerID, gridutil.Cell{Row: p.Row, Col: p.Col})

	case "end_game":
		if roomCode == "" {
			return
		}
		if err := h.svc.EndGame(roomCode, playerID); err != nil {
			h.Unicast(c.socketID, room.OutEvent{Type: "start_error", Payload: errPayload(err)})
		}

	default:
		// unknown event name; silently dropped per spec.md 6.
	}
}

func decode(raw json.RawMessage, dst any) {
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Printf("ws: failed to decode payload: %v", err)
	}
}

func errPayload(err error) map[string]string {
	return map[string]string{"reason": err.Error()}
}
