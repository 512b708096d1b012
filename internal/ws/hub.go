// Package ws provides the WebSocket transport: the Hub multiplexes sockets
// across rooms, decodes inbound events, dispatches them into the room
// Service, and fans outbound events back out (unicast or room-wide).
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/maz/hunter/internal/room"
)

// OriginChecker is the CORS collaborator the upgrader consults.
type OriginChecker interface {
	IsOriginAllowedForRequest(origin, requestHost string) bool
}

// Event is the wire envelope for both directions: an event name and its
// JSON payload.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Client represents one upgraded WebSocket connection. roomCode/playerID
// are unset until the socket successfully creates, joins, or rejoins a
// room; every inbound event before that point other than those three is
// silently dropped, per spec.md 6's dispatch rule.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	socketID string

	mu       sync.RWMutex
	roomCode string
	playerID string

	send chan []byte
}

func (c *Client) bind(roomCode, playerID string) {
	c.mu.Lock()
	c.roomCode, c.playerID = roomCode, playerID
	c.mu.Unlock()
}

func (c *Client) identity() (roomCode, playerID string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode, c.playerID
}

// Hub multiplexes sockets across rooms and dispatches inbound events into
// the room Service. Grounded on the upstream ws.Hub's register/unregister/
// broadcast shape, extended with a socketID -> Client routing table (the
// upstream hub only ever needed roomID -> clients, since its client always
// arrived pre-bound via query params) and a full inbound-event dispatch
// table, since this protocol's clients bind to a room only after the
// connection is already open.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Client]bool // roomCode -> clients
	sockets  map[string]*Client          // socketID -> client
	svc      *room.Service
	checker  OriginChecker
	upgrader websocket.Upgrader
}

// NewHub constructs a Hub wired to svc and registers itself as svc's
// Broadcaster.
func NewHub(svc *room.Service, checker OriginChecker) *Hub {
	h := &Hub{
		rooms:   make(map[string]map[*Client]bool),
		sockets: make(map[string]*Client),
		svc:     svc,
		checker: checker,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return checker.IsOriginAllowedForRequest(origin, r.Host)
		},
	}
	svc.SetBroadcaster(h)
	return h
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sockets[client.socketID] = client
}

// rebind moves client's room membership for broadcast purposes once it
// successfully creates/joins/rejoins roomCode.
func (h *Hub) rebind(client *Client, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, _ := client.identity(); old != "" && old != roomCode {
		if clients, ok := h.rooms[old]; ok {
			delete(clients, client)
		}
	}
	if h.rooms[roomCode] == nil {
		h.rooms[roomCode] = make(map[*Client]bool)
	}
	h.rooms[roomCode][client] = true
}

func (h *Hub) unregister(client *Client) {
	roomCode, playerID := client.identity()
	if roomCode != "" && playerID != "" {
		h.svc.DisconnectPlayer(roomCode, playerID)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sockets, client.socketID)
	if clients, ok := h.rooms[roomCode]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
			if len(clients) == 0 {
				delete(h.rooms, roomCode)
			}
		}
	}
}

// Broadcast implements room.Broadcaster: deliver evt to every socket
// currently joined to roomCode.
func (h *Hub) Broadcast(roomCode string, evt room.OutEvent) {
	data, err := json.Marshal(Event{Type: evt.Type, Payload: evt.Payload})
	if err != nil {
		log.Printf("ws: failed to marshal event %s: %v", evt.Type, err)
		return
	}

	h.mu.RLock()
	clients := h.rooms[roomCode]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.send <- data:
		default:
			h.unregister(client)
		}
	}
}

// Unicast implements room.Broadcaster: deliver evt to the single socket
// identified by socketID, if it is still connected.
func (h *Hub) Unicast(socketID string, evt room.OutEvent) {
	data, err := json.Marshal(Event{Type: evt.Type, Payload: evt.Payload})
	if err != nil {
		log.Printf("ws: failed to marshal event %s: %v", evt.Type, err)
		return
	}

	h.mu.RLock()
	client, ok := h.sockets[socketID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	select {
	case client.send <- data:
	default:
		h.unregister(client)
	}
}

// HandleWebSocket upgrades the connection and starts its read/write pumps.
// Unlike the upstream handler, no roomId/playerId query params are
// required: a fresh socket binds to a room only once it sends
// create_room/join_room/rejoin_room, per spec.md 6.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		socketID: generateSocketID(),
		send:     make(chan []byte, 256),
	}
	h.register(client)

	go client.writePump()
	go client.readPump()
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws: read error: %v", err)
			}
			return
		}

		var evt inboundEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			continue // malformed frame; drop silently per spec.md 6
		}
		c.hub.dispatch(c, evt)
	}
}
