package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
	sendBufferSize = 16
)

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func newClient(h *Hub, conn *websocket.Conn) *client {
	return &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// readPump consumes join requests until the connection drops, then removes
// the client from every room.
func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Debug("websocket closed unexpectedly")
			}
			return
		}

		var req joinRequest
		if err := json.Unmarshal(message, &req); err != nil {
			logrus.WithError(err).Debug("ignoring malformed join request")
			continue
		}
		c.handleJoin(req)
	}
}

func (c *client) handleJoin(req joinRequest) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		logrus.Debugf("ignoring join with bad id %q", req.ID)
		return
	}

	switch req.Action {
	case "joinOrder":
		c.hub.join(c, OrderRoom(id))
	case "joinVendor":
		c.hub.join(c, VendorRoom(id))
	case "joinDelivery":
		c.hub.join(c, DeliveryRoom(id))
		// Couriers also join the shared pool so they hear about new orders.
		c.hub.join(c, PoolRoom)
	default:
		logrus.Debugf("ignoring unknown join action %q", req.Action)
	}
}

// writePump serializes all writes to the connection and keeps it alive with
// pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
