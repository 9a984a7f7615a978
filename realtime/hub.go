// Package realtime delivers order lifecycle events to listening clients over
// websockets, partitioned into logical rooms. Delivery is at-most-once per
// connected listener: the hub never persists or replays events, and a slow
// client is dropped rather than allowed to block a broadcast. Clients must
// treat the feed as a side channel and re-fetch order state over HTTP to
// recover from missed events.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// PoolRoom is the shared room for every courier currently accepting work.
const PoolRoom = "delivery_persons"

func OrderRoom(orderID uuid.UUID) string {
	return "order_" + orderID.String()
}

func VendorRoom(vendorID uuid.UUID) string {
	return "vendor_" + vendorID.String()
}

func DeliveryRoom(courierID uuid.UUID) string {
	return "delivery_" + courierID.String()
}

// Event is the wire format of a server-emitted message.
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// joinRequest is the wire format of a client-announced subscription. The hub
// performs no authorization on joins.
type joinRequest struct {
	Action string `json:"action"`
	ID     string `json:"id"`
}

// Hub is the realtime channel registry. It is constructed once in main and
// handed to the handlers that emit events; there is no package-level
// singleton.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	rooms   map[string]map[*client]struct{}
	clients map[*client]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		rooms:   make(map[string]map[*client]struct{}),
		clients: make(map[*client]struct{}),
	}
}

// ServeWS upgrades the connection and starts the client's pumps. The client
// then announces its rooms with joinOrder/joinVendor/joinDelivery messages.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Error("websocket upgrade failed")
		return
	}

	c := newClient(h, conn)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()
}

// Emit broadcasts an event to every client currently in the room. It is
// fire-and-forget: an empty room is not an error, and a client whose send
// buffer is full simply misses the event.
func (h *Hub) Emit(room, event string, payload interface{}) {
	data, err := json.Marshal(Event{Event: event, Payload: payload})
	if err != nil {
		logrus.WithError(err).Errorf("failed to encode %s event", event)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[room] {
		select {
		case c.send <- data:
		default:
			// Slow consumer; at-most-once semantics allow the drop.
		}
	}
}

func (h *Hub) join(c *client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*client]struct{})
	}
	h.rooms[room][c] = struct{}{}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for room, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	close(c.send)
}

// Close tears down every connected client. Used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
}
