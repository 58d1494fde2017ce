// Package events keeps a bounded in-process history of game events and fans
// them out to stream subscribers and sinks.
package events

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"zk-porrinha/internal/game"
)

type StreamEvent struct {
	EventID  string `json:"event_id"`
	Event    string `json:"event"`
	RoomID   uint64 `json:"room_id,omitempty"`
	Ledger   uint32 `json:"ledger"`
	ServerTS int64  `json:"server_ts"`
	Data     any    `json:"data,omitempty"`
}

// Subscription receives events for one room, or for every room when RoomID
// is zero. Slow subscribers miss events rather than block publishers.
type Subscription struct {
	C      chan StreamEvent
	RoomID uint64
}

// Sink is called synchronously for every event, before any subscriber sees
// it. It must not block or append to the buffer it is registered on.
type Sink func(StreamEvent)

type Buffer struct {
	// pubMu keeps appends whole so subscribers see ids in order.
	pubMu sync.Mutex

	mu       sync.Mutex
	nextID   int64
	max      int
	events   []StreamEvent
	watchers map[*Subscription]struct{}
	sinks    []Sink
	closed   bool
}

func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = 1000
	}
	return &Buffer{
		max:      max,
		watchers: map[*Subscription]struct{}{},
	}
}

// AddSink registers fn for every event appended after this call.
func (b *Buffer) AddSink(fn Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, fn)
}

// Publish satisfies game.Publisher.
func (b *Buffer) Publish(ev game.Event) {
	b.Append(ev.Type, ev.RoomID, ev.Ledger, ev.Data)
}

func (b *Buffer) Append(event string, roomID uint64, ledger uint32, data any) StreamEvent {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return StreamEvent{}
	}
	b.nextID++
	ev := StreamEvent{
		EventID:  strconv.FormatInt(b.nextID, 10),
		Event:    event,
		RoomID:   roomID,
		Ledger:   ledger,
		ServerTS: time.Now().UnixMilli(),
		Data:     data,
	}
	b.events = append(b.events, ev)
	if len(b.events) > b.max {
		b.events = b.events[len(b.events)-b.max:]
	}
	sinks := b.sinks
	b.mu.Unlock()

	metricEventsPublished.Add(1)
	// sinks first: a subscriber reacting to ev must not read a cache the
	// sinks have yet to invalidate
	for _, fn := range sinks {
		fn(ev)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ev
	}
	for sub := range b.watchers {
		if !sub.wants(ev) {
			continue
		}
		select {
		case sub.C <- ev:
		default:
			metricEventsDropped.Add(1)
		}
	}
	return ev
}

// ReplayAfter returns buffered events for roomID (all rooms when zero) with
// ids greater than lastEventID.
func (b *Buffer) ReplayAfter(roomID uint64, lastEventID string) []StreamEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var last int64
	if lastEventID != "" {
		if v, err := strconv.ParseInt(lastEventID, 10, 64); err == nil {
			last = v
		}
	}
	filter := Subscription{RoomID: roomID}
	out := make([]StreamEvent, 0, len(b.events))
	for _, ev := range b.events {
		id, _ := strconv.ParseInt(ev.EventID, 10, 64)
		if id > last && filter.wants(ev) {
			out = append(out, ev)
		}
	}
	return out
}

func (b *Buffer) Subscribe(roomID uint64) *Subscription {
	sub := &Subscription{C: make(chan StreamEvent, 32), RoomID: roomID}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.C)
		return sub
	}
	b.watchers[sub] = struct{}{}
	metricSubscribersActive.Add(1)
	return sub
}

func (b *Buffer) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.watchers[sub]; ok {
		delete(b.watchers, sub)
		close(sub.C)
		metricSubscribersActive.Add(-1)
	}
}

func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.watchers {
		close(sub.C)
		delete(b.watchers, sub)
		metricSubscribersActive.Add(-1)
	}
}

// wants reports whether ev belongs on this subscription. Room-less events
// (settings changes) go to everyone.
func (s *Subscription) wants(ev StreamEvent) bool {
	return s.RoomID == 0 || ev.RoomID == 0 || ev.RoomID == s.RoomID
}

// Public reports whether ev may be shown to players and spectators. Hub
// notifications are internal plumbing.
func Public(ev StreamEvent) bool {
	return !strings.HasPrefix(ev.Event, "hub_")
}
