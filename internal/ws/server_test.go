package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"zk-porrinha/internal/app/players"
	"zk-porrinha/internal/app/rooms"
	"zk-porrinha/internal/game"
	"zk-porrinha/internal/testutil/teststack"
)

type wsFixture struct {
	stack  *teststack.Stack
	rooms  *rooms.Service
	server *httptest.Server
}

func newFixture(t *testing.T) *wsFixture {
	t.Helper()
	st := teststack.New(t, 0)
	roomsSvc, err := rooms.NewService(st.Engine, st.Events, 16)
	if err != nil {
		t.Fatalf("rooms service: %v", err)
	}
	srv := NewServer(roomsSvc, players.NewService(st.DB, 0), st.Events)
	hs := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	t.Cleanup(hs.Close)
	return &wsFixture{stack: st, rooms: roomsSvc, server: hs}
}

func (f *wsFixture) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) (string, []byte) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var base struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &base); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return base.Type, raw
}

func TestRoomStreamSendsSnapshotThenEvents(t *testing.T) {
	f := newFixture(t)
	schema := compileSchema(t, "ws_v1.schema.json")
	ctx := context.Background()
	alice := f.stack.Player(t, "alice", "key-a", 100)
	bob := f.stack.Player(t, "bob", "key-b", 100)
	created, err := f.rooms.Create(ctx, alice, 50)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	conn := f.dial(t, "room_id=1&api_key=key-b")
	typ, raw := readMessage(t, conn)
	validateMessage(t, schema, raw)
	var hello Hello
	_ = json.Unmarshal(raw, &hello)
	if typ != MsgHello || hello.RoomID != created.ID || hello.Viewer != bob {
		t.Fatalf("unexpected hello: %s", raw)
	}
	typ, raw = readMessage(t, conn)
	validateMessage(t, schema, raw)
	if typ != MsgRoomSnapshot {
		t.Fatalf("expected snapshot, got %s", raw)
	}

	if _, err := f.rooms.Join(ctx, created.ID, bob, 50); err != nil {
		t.Fatalf("join: %v", err)
	}

	sawJoin := false
	var snap RoomSnapshot
	for i := 0; i < 8 && snap.Room.Status != string(game.StatusCommit); i++ {
		typ, raw = readMessage(t, conn)
		validateMessage(t, schema, raw)
		switch typ {
		case MsgEvent:
			var ev EventMessage
			_ = json.Unmarshal(raw, &ev)
			if strings.HasPrefix(ev.Event.Event, "hub_") {
				t.Fatalf("hub event leaked to stream: %s", raw)
			}
			if ev.Event.Event == game.EventRoomJoined {
				sawJoin = true
			}
		case MsgRoomSnapshot:
			_ = json.Unmarshal(raw, &snap)
		}
	}
	if !sawJoin || snap.Room.Status != string(game.StatusCommit) {
		t.Fatalf("expected room_joined then commit snapshot, got join=%v status=%s", sawJoin, snap.Room.Status)
	}
}

func TestPingGetsPong(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "")
	if typ, _ := readMessage(t, conn); typ != MsgHello {
		t.Fatalf("expected hello, got %s", typ)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if typ, raw := readMessage(t, conn); typ != MsgPong {
		t.Fatalf("expected pong, got %s", raw)
	}
}

func TestRejectsUnknownRoomAndKey(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		query string
		want  int
	}{
		{query: "room_id=99", want: http.StatusNotFound},
		{query: "room_id=abc", want: http.StatusBadRequest},
		{query: "api_key=nope", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?" + tt.query
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		if err == nil {
			t.Fatalf("%s: expected handshake failure", tt.query)
		}
		if resp == nil || resp.StatusCode != tt.want {
			t.Fatalf("%s: status = %v, want %d", tt.query, resp, tt.want)
		}
	}
}
