package httptransport

import (
	"net/http"
	"strconv"
	"time"

	"zk-porrinha/internal/app/rooms"
	"zk-porrinha/internal/events"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

var ssePingInterval = 15 * time.Second

// RoomEventsHandler streams one room's events as SSE, replaying buffered
// events after Last-Event-ID first.
func RoomEventsHandler(svc *rooms.Service, buf *events.Buffer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID, ok := roomIDParam(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_room_id")
			return
		}
		if _, err := svc.Get(r.Context(), roomID, ""); err != nil {
			writeServiceError(w, r, err)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteHTTPError(w, http.StatusInternalServerError, "stream_not_supported")
			return
		}

		metricSSEConnectionsTotal.Add(1)
		metricSSEConnectionsActive.Add(1)
		defer metricSSEConnectionsActive.Add(-1)

		// subscribe before replaying so nothing published in between is lost
		sub := buf.Subscribe(roomID)
		defer buf.Unsubscribe(sub)

		events.SetSSEHeaders(w)
		log.Info().
			Str("request_id", chimw.GetReqID(r.Context())).
			Uint64("room_id", roomID).
			Msg("sse stream opened")

		lastEventID := r.Header.Get("Last-Event-ID")
		if lastEventID == "" {
			lastEventID = r.URL.Query().Get("last_event_id")
		}
		var sent int64
		for _, ev := range buf.ReplayAfter(roomID, lastEventID) {
			if !events.Public(ev) {
				continue
			}
			if err := events.WriteSSE(w, ev); err != nil {
				return
			}
			sent = eventSeq(ev)
			logSSEEvent(r, roomID, "replay", ev)
		}
		flusher.Flush()

		ticker := time.NewTicker(ssePingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				log.Info().
					Str("request_id", chimw.GetReqID(r.Context())).
					Uint64("room_id", roomID).
					Err(r.Context().Err()).
					Msg("sse stream closed")
				return
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				if !events.Public(ev) || eventSeq(ev) <= sent {
					continue
				}
				if err := events.WriteSSE(w, ev); err != nil {
					return
				}
				logSSEEvent(r, roomID, "live", ev)
				flusher.Flush()
			case <-ticker.C:
				ping := events.StreamEvent{
					Event:    "ping",
					RoomID:   roomID,
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

func eventSeq(ev events.StreamEvent) int64 {
	n, _ := strconv.ParseInt(ev.EventID, 10, 64)
	return n
}

func logSSEEvent(r *http.Request, roomID uint64, source string, ev events.StreamEvent) {
	log.Debug().
		Str("request_id", chimw.GetReqID(r.Context())).
		Uint64("room_id", roomID).
		Str("event", ev.Event).
		Str("event_id", ev.EventID).
		Str("source", source).
		Msg("sse event sent")
}
