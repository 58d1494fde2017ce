package httptransport

import (
	"encoding/json"
	"net/http"

	"zk-porrinha/internal/app/players"
)

type PlayerHandlers struct {
	svc *players.Service
}

func NewPlayerHandlers(svc *players.Service) *PlayerHandlers {
	return &PlayerHandlers{svc: svc}
}

func (h *PlayerHandlers) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.Register(r.Context(), players.RegisterInput{Name: body.Name})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		metricPlayersRegistered.Add(1)
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (h *PlayerHandlers) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PlayerFromContext(r.Context())
		if !ok {
			WriteHTTPError(w, http.StatusUnauthorized, "missing_api_key")
			return
		}
		resp, err := h.svc.Me(r.Context(), p)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
