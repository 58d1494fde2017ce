// Package ws streams room events to websocket clients.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"zk-porrinha/internal/app/players"
	"zk-porrinha/internal/app/rooms"
	"zk-porrinha/internal/events"
	"zk-porrinha/internal/game"
)

var (
	metricWSConnectionsTotal  = expvar.NewInt("ws_connections_total")
	metricWSConnectionsActive = expvar.NewInt("ws_connections_active")
	metricWSMessagesDropped   = expvar.NewInt("ws_messages_dropped_total")
)

var (
	pingInterval = 20 * time.Second
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
)

type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	roomID uint64
	viewer string

	closeOnce sync.Once
	done      chan struct{}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

type Server struct {
	rooms    *rooms.Service
	players  *players.Service
	events   *events.Buffer
	upgrader websocket.Upgrader
}

func NewServer(roomsSvc *rooms.Service, playersSvc *players.Service, buf *events.Buffer) *Server {
	return &Server{
		rooms:    roomsSvc,
		players:  playersSvc,
		events:   buf,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// HandleWS serves /ws?room_id=N. room_id 0 or absent follows every room.
// An api_key query parameter or bearer token makes the snapshots personal.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	var roomID uint64
	if v := r.URL.Query().Get("room_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_room_id")
			return
		}
		roomID = id
	}
	viewer, err := s.viewer(r)
	if err != nil {
		writeHTTPError(w, http.StatusUnauthorized, "unknown_api_key")
		return
	}
	if roomID != 0 {
		if _, err := s.rooms.Get(r.Context(), roomID, viewer); err != nil {
			if errors.Is(err, game.ErrRoomNotFound) {
				writeHTTPError(w, http.StatusNotFound, "room_not_found")
				return
			}
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &Client{conn: conn, send: make(chan []byte, 32), roomID: roomID, viewer: viewer, done: make(chan struct{})}
	metricWSConnectionsTotal.Add(1)
	metricWSConnectionsActive.Add(1)
	log.Info().Uint64("room_id", roomID).Str("viewer", viewer).Msg("ws client connected")

	sub := s.events.Subscribe(roomID)
	go s.writeLoop(c)
	go s.pump(r.Context(), c, sub)

	s.queue(c, Hello{Type: MsgHello, ProtocolVersion: ProtocolVersion, RoomID: roomID, Viewer: viewer})
	if roomID != 0 {
		s.queueSnapshot(r.Context(), c)
	}
	s.readLoop(c)

	s.events.Unsubscribe(sub)
	metricWSConnectionsActive.Add(-1)
	log.Info().Uint64("room_id", roomID).Msg("ws client disconnected")
}

func (s *Server) viewer(r *http.Request) (string, error) {
	key := r.URL.Query().Get("api_key")
	if auth := r.Header.Get("Authorization"); key == "" && strings.HasPrefix(auth, "Bearer ") {
		key = strings.TrimPrefix(auth, "Bearer ")
	}
	if key == "" || s.players == nil {
		return "", nil
	}
	p, err := s.players.Authenticate(r.Context(), key)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		c.close()
		_ = c.conn.Close()
	}()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var in ClientMessage
		if err := json.Unmarshal(msg, &in); err != nil {
			s.queue(c, ErrorMessage{Type: MsgError, ProtocolVersion: ProtocolVersion, Error: "invalid_json"})
			continue
		}
		switch in.Type {
		case "ping":
			s.queue(c, Pong{Type: MsgPong, ProtocolVersion: ProtocolVersion})
		default:
			s.queue(c, ErrorMessage{Type: MsgError, ProtocolVersion: ProtocolVersion, Error: "unknown_message_type"})
		}
	}
}

func (s *Server) writeLoop(c *Client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

// pump forwards subscribed events. Every room event is followed by a fresh
// snapshot so clients never have to fold events themselves.
func (s *Server) pump(ctx context.Context, c *Client, sub *events.Subscription) {
	for {
		select {
		case <-c.done:
			return
		case ev, ok := <-sub.C:
			if !ok {
				c.close()
				return
			}
			if !events.Public(ev) {
				continue
			}
			s.queue(c, EventMessage{Type: MsgEvent, ProtocolVersion: ProtocolVersion, Event: ev})
			if c.roomID != 0 && ev.RoomID == c.roomID {
				s.queueSnapshot(ctx, c)
			}
		}
	}
}

func (s *Server) queueSnapshot(ctx context.Context, c *Client) {
	view, err := s.rooms.Get(context.WithoutCancel(ctx), c.roomID, c.viewer)
	if err != nil {
		s.queue(c, ErrorMessage{Type: MsgError, ProtocolVersion: ProtocolVersion, Error: "snapshot_failed"})
		return
	}
	s.queue(c, RoomSnapshot{Type: MsgRoomSnapshot, ProtocolVersion: ProtocolVersion, Room: view})
}

func (s *Server) queue(c *Client, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case <-c.done:
	case c.send <- b:
	default:
		metricWSMessagesDropped.Add(1)
	}
}

func writeHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}
