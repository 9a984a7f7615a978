package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h *Hub) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func joinRoom(t *testing.T, h *Hub, conn *websocket.Conn, action string, id uuid.UUID, wantRoom string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(joinRequest{Action: action, ID: id.String()}))

	// Joins are processed asynchronously by the read pump.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.mu.RLock()
		members := len(h.rooms[wantRoom])
		h.mu.RUnlock()
		if members > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client never joined room %s", wantRoom)
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestHubEmitsToJoinedRoom(t *testing.T) {
	h := NewHub()
	defer h.Close()
	url := newTestServer(t, h)

	orderID := uuid.New()
	conn := dial(t, url)
	joinRoom(t, h, conn, "joinOrder", orderID, OrderRoom(orderID))

	h.Emit(OrderRoom(orderID), "orderUpdated", map[string]string{"status": "assigned"})

	ev := readEvent(t, conn)
	assert.Equal(t, "orderUpdated", ev.Event)
	payload, ok := ev.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "assigned", payload["status"])
}

func TestHubRoomIsolation(t *testing.T) {
	h := NewHub()
	defer h.Close()
	url := newTestServer(t, h)

	orderA := uuid.New()
	orderB := uuid.New()

	connA := dial(t, url)
	joinRoom(t, h, connA, "joinOrder", orderA, OrderRoom(orderA))
	connB := dial(t, url)
	joinRoom(t, h, connB, "joinOrder", orderB, OrderRoom(orderB))

	h.Emit(OrderRoom(orderA), "orderUpdated", map[string]string{"status": "completed"})

	ev := readEvent(t, connA)
	assert.Equal(t, "orderUpdated", ev.Event)

	// The other room must hear nothing.
	connB.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var stray Event
	err := connB.ReadJSON(&stray)
	assert.Error(t, err)
}

func TestCourierJoinsPoolRoom(t *testing.T) {
	h := NewHub()
	defer h.Close()
	url := newTestServer(t, h)

	courierID := uuid.New()
	conn := dial(t, url)
	joinRoom(t, h, conn, "joinDelivery", courierID, DeliveryRoom(courierID))

	// joinDelivery also subscribes the courier to the shared pool.
	h.mu.RLock()
	poolMembers := len(h.rooms[PoolRoom])
	h.mu.RUnlock()
	require.Equal(t, 1, poolMembers)

	h.Emit(PoolRoom, "newOrderAvailable", map[string]string{"orderId": uuid.NewString()})
	ev := readEvent(t, conn)
	assert.Equal(t, "newOrderAvailable", ev.Event)
}

func TestEmitToEmptyRoomIsNoop(t *testing.T) {
	h := NewHub()
	defer h.Close()

	// Must not panic or block.
	h.Emit(OrderRoom(uuid.New()), "orderUpdated", map[string]string{"status": "assigned"})
}

func TestDisconnectLeavesRooms(t *testing.T) {
	h := NewHub()
	defer h.Close()
	url := newTestServer(t, h)

	orderID := uuid.New()
	conn := dial(t, url)
	joinRoom(t, h, conn, "joinOrder", orderID, OrderRoom(orderID))

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.mu.RLock()
		members := len(h.rooms[OrderRoom(orderID)])
		h.mu.RUnlock()
		if members == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("client was not removed from room after disconnect")
}
