package ws

import (
	"zk-porrinha/internal/events"
	"zk-porrinha/internal/game/viewmodel"
)

const ProtocolVersion = "1.0"

const (
	MsgHello        = "hello"
	MsgRoomSnapshot = "room_snapshot"
	MsgEvent        = "event"
	MsgError        = "error"
	MsgPong         = "pong"
)

type Hello struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RoomID          uint64 `json:"room_id"`
	Viewer          string `json:"viewer,omitempty"`
}

type RoomSnapshot struct {
	Type            string             `json:"type"`
	ProtocolVersion string             `json:"protocol_version"`
	Room            viewmodel.RoomView `json:"room"`
}

type EventMessage struct {
	Type            string             `json:"type"`
	ProtocolVersion string             `json:"protocol_version"`
	Event           events.StreamEvent `json:"event"`
}

type ErrorMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Error           string `json:"error"`
}

type Pong struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

// ClientMessage is what clients may send; only "ping" is understood.
type ClientMessage struct {
	Type string `json:"type"`
}
