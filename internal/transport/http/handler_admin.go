package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"zk-porrinha/internal/app/players"
	"zk-porrinha/internal/game"
	"zk-porrinha/internal/store"
)

// HealthFunc reports whether the storage backend is reachable.
type HealthFunc func(ctx context.Context) error

type AdminHandlers struct {
	engine  *game.Engine
	players *players.Service
	health  HealthFunc
}

func NewAdminHandlers(engine *game.Engine, playersSvc *players.Service, health HealthFunc) *AdminHandlers {
	return &AdminHandlers{engine: engine, players: playersSvc, health: health}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.health != nil {
			if err := h.health(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "down"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "up", "ledger": h.engine.Sequence()})
	}
}

func (h *AdminHandlers) Initialize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Admin    string `json:"admin"`
			Verifier string `json:"verifier"`
			Hub      string `json:"hub"`
			Token    string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		err := h.engine.Initialize(r.Context(), game.Settings{
			Admin:    strings.TrimSpace(body.Admin),
			Verifier: strings.TrimSpace(body.Verifier),
			Hub:      strings.TrimSpace(body.Hub),
			Token:    strings.TrimSpace(body.Token),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		h.writeSettings(w, r)
	}
}

// adminOp handles the admin-gated setters. caller must match the stored
// admin; the admin key only opens the route.
func (h *AdminHandlers) adminOp(apply func(ctx context.Context, caller, value string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Caller string `json:"caller"`
			Value  string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if strings.TrimSpace(body.Value) == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := apply(r.Context(), body.Caller, strings.TrimSpace(body.Value)); err != nil {
			writeServiceError(w, r, err)
			return
		}
		h.writeSettings(w, r)
	}
}

func (h *AdminHandlers) SetAdmin() http.HandlerFunc    { return h.adminOp(h.engine.SetAdmin) }
func (h *AdminHandlers) SetVerifier() http.HandlerFunc { return h.adminOp(h.engine.SetVerifier) }
func (h *AdminHandlers) SetHub() http.HandlerFunc      { return h.adminOp(h.engine.SetHub) }
func (h *AdminHandlers) Upgrade() http.HandlerFunc     { return h.adminOp(h.engine.Upgrade) }

func (h *AdminHandlers) writeSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.engine.Settings(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "settings": s})
}

func (h *AdminHandlers) Topup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			AccountID string `json:"account_id"`
			Amount    int64  `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		refID := strconv.FormatInt(time.Now().UnixNano(), 10)
		resp, err := h.players.TopUp(r.Context(), players.TopUpInput{AccountID: body.AccountID, Amount: body.Amount, RefID: refID})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *AdminHandlers) Ledger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit := 0
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
				return
			}
			limit = n
		}
		f := store.LedgerFilter{AccountID: q.Get("account_id"), RefID: q.Get("room_id")}
		resp, err := h.players.Ledger(r.Context(), f, limit)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
