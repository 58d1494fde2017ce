package spectatorgateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"zk-porrinha/internal/app/rooms"
	"zk-porrinha/internal/game"
	"zk-porrinha/internal/game/viewmodel"
)

type LobbyState struct {
	RoomCount uint64               `json:"room_count"`
	Rooms     []viewmodel.RoomView `json:"rooms"`
}

// StateHandler returns the spectator lobby, or one room's spectator view
// when room_id is given. Spectator views never carry reveals of an open
// round.
func StateHandler(svc *rooms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if raw := r.URL.Query().Get("room_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]any{"error": "invalid_room_id"})
				return
			}
			metricStateReads.Add("room", 1)
			view, err := svc.Get(r.Context(), id, "")
			if err != nil {
				writeErr(w, err)
				return
			}
			_ = json.NewEncoder(w).Encode(view)
			return
		}

		metricStateReads.Add("lobby", 1)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		list, err := svc.List(r.Context(), limit, "")
		if err != nil {
			writeErr(w, err)
			return
		}
		count, err := svc.Count(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(LobbyState{RoomCount: count.Count, Rooms: list.Items})
	}
}

func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "room_not_found"})
	case errors.Is(err, rooms.ErrInvalidRequest):
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "invalid_request"})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "internal_error"})
	}
}
