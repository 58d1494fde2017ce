// Package spectatorgateway serves the lobby to spectators: one SSE stream
// carrying every room's public events and a snapshot of recent rooms.
package spectatorgateway

import (
	"net/http"
	"time"

	"zk-porrinha/internal/events"
)

var pingInterval = 15 * time.Second

func EventsHandler(buf *events.Buffer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		metricLobbyStreamsOpened.Add(1)
		metricLobbyStreamsActive.Add(1)
		defer metricLobbyStreamsActive.Add(-1)

		sub := buf.Subscribe(0)
		defer buf.Unsubscribe(sub)
		events.SetSSEHeaders(w)

		lastSent := ""
		for _, ev := range buf.ReplayAfter(0, r.Header.Get("Last-Event-ID")) {
			if !events.Public(ev) {
				continue
			}
			if err := events.WriteSSE(w, ev); err != nil {
				return
			}
			metricLobbyEventsSent.Add(1)
			lastSent = ev.EventID
		}
		flusher.Flush()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				if !events.Public(ev) || !newer(ev.EventID, lastSent) {
					continue
				}
				if err := events.WriteSSE(w, ev); err != nil {
					return
				}
				metricLobbyEventsSent.Add(1)
				lastSent = ev.EventID
				flusher.Flush()
			case <-ticker.C:
				ping := events.StreamEvent{
					Event:    "ping",
					ServerTS: time.Now().UnixMilli(),
				}
				if err := events.WriteSSE(w, ping); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

// newer compares decimal event ids without parsing them.
func newer(id, than string) bool {
	if len(id) != len(than) {
		return len(id) > len(than)
	}
	return id > than
}
