package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"zk-porrinha/internal/app/players"
	"zk-porrinha/internal/app/rooms"
	"zk-porrinha/internal/events"
	"zk-porrinha/internal/game"
	"zk-porrinha/internal/spectatorgateway"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Deps struct {
	Engine   *game.Engine
	Rooms    *rooms.Service
	Players  *players.Service
	Events   *events.Buffer
	Health   HealthFunc
	AdminKey string

	// MCP and WS are mounted when set.
	MCP http.Handler
	WS  http.HandlerFunc
}

func NewRouter(d Deps) *chi.Mux {
	playerHandlers := NewPlayerHandlers(d.Players)
	roomHandlers := NewRoomHandlers(d.Rooms)
	adminHandlers := NewAdminHandlers(d.Engine, d.Players, d.Health)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())
	if d.MCP != nil {
		r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
		})
		r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", d.MCP)
		r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", d.MCP)
		r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", d.MCP)
	}
	if d.WS != nil {
		r.Get("/ws", d.WS)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Post("/players/register", playerHandlers.Register())
		r.Get("/spectate/events", spectatorgateway.EventsHandler(d.Events))
		r.Get("/spectate/state", spectatorgateway.StateHandler(d.Rooms))

		r.Group(func(r chi.Router) {
			r.Use(OptionalPlayerMiddleware(d.Players))
			r.Get("/rooms", roomHandlers.List())
			r.Get("/rooms/count", roomHandlers.Count())
			r.Get("/rooms/{room_id}", roomHandlers.Get())
			r.Get("/rooms/{room_id}/jackpot-hash", roomHandlers.JackpotHash())
			r.Get("/rooms/{room_id}/events", RoomEventsHandler(d.Rooms, d.Events))
		})

		r.Group(func(r chi.Router) {
			r.Use(PlayerAuthMiddleware(d.Players))
			r.Get("/players/me", playerHandlers.Me())
			r.Post("/rooms", roomHandlers.Create())
			r.Post("/rooms/{room_id}/join", roomHandlers.Join())
			r.Post("/rooms/{room_id}/commit", roomHandlers.Commit())
			r.Post("/rooms/{room_id}/timeout", roomHandlers.ClaimTimeout())
			r.Post("/rooms/{room_id}/cancel", roomHandlers.Cancel())
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(d.AdminKey))
			r.Use(AdminAuditMiddleware(4096))
			r.Post("/admin/initialize", adminHandlers.Initialize())
			r.Post("/admin/admin", adminHandlers.SetAdmin())
			r.Post("/admin/verifier", adminHandlers.SetVerifier())
			r.Post("/admin/hub", adminHandlers.SetHub())
			r.Post("/admin/upgrade", adminHandlers.Upgrade())
			r.Post("/admin/topup", adminHandlers.Topup())
			r.Get("/admin/ledger", adminHandlers.Ledger())

			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 64)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
