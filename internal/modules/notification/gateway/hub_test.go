package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"evergreenrx.com/pharmanotify/pkg/wire"
	"github.com/gorilla/websocket"
)

func newTestClient() *Client {
	return &Client{send: make(chan []byte, 4)}
}

func TestJoinIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := newTestClient()

	hub.Join(RoomAdmin, c)
	hub.Join(RoomAdmin, c)

	if got := hub.RoomSize(RoomAdmin); got != 1 {
		t.Fatalf("room size = %d, want 1", got)
	}
}

func TestLeaveAndRemove(t *testing.T) {
	hub := NewHub()
	a := newTestClient()
	b := newTestClient()

	hub.Join(RoomAdmin, a)
	hub.Join(RoomAdmin, b)
	hub.Join(RoomForUser("u1"), a)

	hub.Leave(RoomAdmin, a)
	if got := hub.RoomSize(RoomAdmin); got != 1 {
		t.Fatalf("room size after leave = %d, want 1", got)
	}
	if got := hub.RoomSize(RoomForUser("u1")); got != 1 {
		t.Fatalf("leave touched an unrelated room")
	}

	hub.Join(RoomAdmin, a)
	hub.Remove(a)
	if got := hub.RoomSize(RoomAdmin); got != 1 {
		t.Fatalf("room size after remove = %d, want 1", got)
	}
	if got := hub.RoomSize(RoomForUser("u1")); got != 0 {
		t.Fatalf("remove left a stale membership")
	}
}

func TestBroadcastReachesOnlyRoomMembers(t *testing.T) {
	hub := NewHub()
	member := newTestClient()
	outsider := newTestClient()

	hub.Join(RoomAdmin, member)
	hub.Join(RoomForUser("u1"), outsider)

	hub.Broadcast(RoomAdmin, []byte("hello"))

	select {
	case payload := <-member.send:
		if string(payload) != "hello" {
			t.Fatalf("unexpected payload %q", payload)
		}
	default:
		t.Fatal("member did not receive broadcast")
	}

	select {
	case <-outsider.send:
		t.Fatal("outsider received a broadcast for another room")
	default:
	}
}

func TestBroadcastDropsSlowClients(t *testing.T) {
	hub := NewHub()
	slow := &Client{send: make(chan []byte)} // zero buffer, never drained

	hub.Join(RoomAdmin, slow)
	hub.Broadcast(RoomAdmin, []byte("x"))

	if got := hub.RoomSize(RoomAdmin); got != 0 {
		t.Fatalf("slow client still in room, size = %d", got)
	}
	// The send channel must be closed so the write pump shuts down.
	select {
	case _, ok := <-slow.send:
		if ok {
			t.Fatal("expected closed send channel")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestRoomForChannel(t *testing.T) {
	cases := []struct {
		channel string
		room    string
		ok      bool
	}{
		{"notifications:admin", "admin", true},
		{"notifications:user:abc", "user:abc", true},
		{"notifications:", "", false},
		{"other:admin", "", false},
	}
	for _, tc := range cases {
		room, ok := roomForChannel(tc.channel)
		if room != tc.room || ok != tc.ok {
			t.Errorf("roomForChannel(%q) = (%q, %v), want (%q, %v)", tc.channel, room, ok, tc.room, tc.ok)
		}
	}
}

// End to end over a real connection: join envelopes drive membership and
// broadcasts come out the other side.
func TestServeMembershipOverWebSocket(t *testing.T) {
	hub := NewHub()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		admin := r.URL.Query().Get("admin") == "1"
		go Serve(hub, conn, "user-1", admin)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	adminConn, _, err := websocket.DefaultDialer.Dial(url+"?admin=1", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer adminConn.Close()

	staffConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer staffConn.Close()

	join := func(conn *websocket.Conn) {
		if err := conn.WriteJSON(wire.Envelope{Event: wire.EventJoinAdmin}); err != nil {
			t.Fatal(err)
		}
	}
	join(adminConn)
	join(staffConn)

	waitForSize(t, hub, RoomAdmin, 1)

	// Non-admin join-admin must have been ignored.
	if got := hub.RoomSize(RoomAdmin); got != 1 {
		t.Fatalf("admin room size = %d, want 1", got)
	}

	// Staff can still join its own user room.
	if err := staffConn.WriteJSON(wire.Envelope{Event: wire.EventJoinUser}); err != nil {
		t.Fatal(err)
	}
	waitForSize(t, hub, RoomForUser("user-1"), 1)

	hub.Broadcast(RoomAdmin, mustEnvelope(t, "hello admins"))

	adminConn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var env wire.Envelope
	if err := adminConn.ReadJSON(&env); err != nil {
		t.Fatal(err)
	}
	if env.Event != wire.EventNewNotification {
		t.Fatalf("unexpected event %q", env.Event)
	}
}

func waitForSize(t *testing.T, hub *Hub, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if hub.RoomSize(room) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("room %s never reached size %d (have %d)", room, want, hub.RoomSize(room))
}

func mustEnvelope(t *testing.T, message string) []byte {
	t.Helper()
	data, _ := json.Marshal(message)
	payload, err := json.Marshal(wire.Envelope{Event: wire.EventNewNotification, Data: data})
	if err != nil {
		t.Fatal(err)
	}
	return payload
}
