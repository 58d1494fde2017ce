package httptransport

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"zk-porrinha/internal/app/rooms"
	"zk-porrinha/internal/commitment"
	"zk-porrinha/internal/game"
)

type RoomHandlers struct {
	svc *rooms.Service
}

func NewRoomHandlers(svc *rooms.Service) *RoomHandlers {
	return &RoomHandlers{svc: svc}
}

type betBody struct {
	BetAmount int64 `json:"bet_amount"`
}

// CommitBody is the JSON accepted by POST /rooms/{id}/commit. Proof is
// base64 in JSON.
type CommitBody struct {
	Commitment string `json:"commitment"`
	Proof      []byte `json:"proof"`
	Hand       int    `json:"hand"`
	Parity     int    `json:"parity"`
	TotalGuess int    `json:"total_guess"`
	JackpotHit bool   `json:"jackpot_hit"`
}

func roomIDParam(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "room_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func viewerOf(r *http.Request) string {
	if p, ok := PlayerFromContext(r.Context()); ok {
		return p.ID
	}
	return ""
}

func (h *RoomHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body betBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		view, err := h.svc.Create(r.Context(), viewerOf(r), body.BetAmount)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		metricRoomsCreated.Add(1)
		writeJSON(w, http.StatusCreated, view)
	}
}

func (h *RoomHandlers) Join() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := roomIDParam(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_room_id")
			return
		}
		var body betBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		view, err := h.svc.Join(r.Context(), id, viewerOf(r), body.BetAmount)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (h *RoomHandlers) Commit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := roomIDParam(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_room_id")
			return
		}
		var body CommitBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		digest, err := commitment.ParseDigest(body.Commitment)
		if err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_commitment")
			return
		}
		if len(body.Proof) == 0 {
			WriteHTTPError(w, http.StatusBadRequest, game.ErrInvalidProof.Error())
			return
		}
		metricCommitTotal.Add(1)
		resp, err := h.svc.Commit(r.Context(), game.CommitRequest{
			RoomID:     id,
			Player:     viewerOf(r),
			Commitment: digest,
			Proof:      body.Proof,
			Hand:       body.Hand,
			Parity:     body.Parity,
			TotalGuess: body.TotalGuess,
			JackpotHit: body.JackpotHit,
		})
		if err != nil {
			metricCommitErrors.Add(1)
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *RoomHandlers) ClaimTimeout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := roomIDParam(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_room_id")
			return
		}
		view, err := h.svc.ClaimTimeout(r.Context(), id, viewerOf(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (h *RoomHandlers) Cancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := roomIDParam(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_room_id")
			return
		}
		view, err := h.svc.Cancel(r.Context(), id, viewerOf(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (h *RoomHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := roomIDParam(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_room_id")
			return
		}
		view, err := h.svc.Get(r.Context(), id, viewerOf(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (h *RoomHandlers) JackpotHash() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := roomIDParam(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_room_id")
			return
		}
		resp, err := h.svc.JackpotHash(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *RoomHandlers) Count() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Count(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *RoomHandlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
				return
			}
			limit = n
		}
		resp, err := h.svc.List(r.Context(), limit, viewerOf(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
