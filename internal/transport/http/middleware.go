package httptransport

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"zk-porrinha/internal/app/players"
	"zk-porrinha/internal/logging"
	"zk-porrinha/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	"github.com/rs/zerolog/log"
)

type playerContextKey struct{}

func PlayerFromContext(ctx context.Context) (*store.Player, bool) {
	p, ok := ctx.Value(playerContextKey{}).(*store.Player)
	return p, ok
}

func APILogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				rc := chi.RouteContext(req.Context())
				route := req.URL.Path
				if rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
					slog.String("path", req.URL.Path),
				}
			},
		},
	)
}

// redactedFields never reach the request log.
var redactedFields = map[string]struct{}{
	"api_key": {},
	"proof":   {},
	"salt":    {},
}

// AdminAuditMiddleware attaches the request and response bodies of admin
// calls to the request log line, clipped to limit bytes with secrets masked.
func AdminAuditMiddleware(limit int) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = 4096
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(io.LimitReader(r.Body, int64(limit)+1))
			r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))

			rec := &bodyRecorder{ResponseWriter: w, limit: limit}
			next.ServeHTTP(rec, r)

			reqClipped := len(body) > limit
			if reqClipped {
				body = body[:limit]
			}
			httplog.SetAttrs(r.Context(),
				slog.Any("request_body", auditBody(body)),
				slog.Any("response_body", auditBody(rec.buf.Bytes())),
				slog.Bool("request_body_truncated", reqClipped),
				slog.Bool("response_body_truncated", rec.clipped),
			)
		})
	}
}

type bodyRecorder struct {
	http.ResponseWriter
	buf     bytes.Buffer
	limit   int
	clipped bool
}

func (b *bodyRecorder) Write(p []byte) (int, error) {
	room := b.limit - b.buf.Len()
	switch {
	case room >= len(p):
		b.buf.Write(p)
	case room > 0:
		b.buf.Write(p[:room])
		b.clipped = true
	default:
		b.clipped = len(p) > 0 || b.clipped
	}
	return b.ResponseWriter.Write(p)
}

func (b *bodyRecorder) Flush() {
	if f, ok := b.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// auditBody decodes JSON bodies so they log as structured values and masks
// redactedFields at any depth. Non-JSON bodies log as strings.
func auditBody(raw []byte) any {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return redact(v)
}

func redact(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			if _, secret := redactedFields[strings.ToLower(k)]; secret {
				t[k] = "[redacted]"
				continue
			}
			t[k] = redact(inner)
		}
		return t
	case []any:
		for i := range t {
			t[i] = redact(t[i])
		}
		return t
	default:
		return v
	}
}

func WriteHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func logInternalError(r *http.Request, err error) {
	log.Error().
		Err(err).
		Str("request_id", chimw.GetReqID(r.Context())).
		Str("path", r.URL.Path).
		Msg("request failed")
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	prefix := "Bearer "
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		return ""
	}
	return auth[len(prefix):]
}

// PlayerAuthMiddleware resolves the bearer API key to a player.
func PlayerAuthMiddleware(svc *players.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := bearerToken(r)
			if apiKey == "" {
				WriteHTTPError(w, http.StatusUnauthorized, "missing_api_key")
				return
			}
			p, err := svc.Authenticate(r.Context(), apiKey)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), playerContextKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalPlayerMiddleware attaches the player when a valid key is sent and
// otherwise serves the request anonymously.
func OptionalPlayerMiddleware(svc *players.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey := bearerToken(r); apiKey != "" {
				if p, err := svc.Authenticate(r.Context(), apiKey); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), playerContextKey{}, p))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminAuthMiddleware rejects everything when no admin key is configured.
func AdminAuthMiddleware(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" || !CheckAdminAuth(r, adminKey) {
				WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func CheckAdminAuth(r *http.Request, adminKey string) bool {
	if v := r.Header.Get("X-Admin-Key"); v != "" {
		return subtle.ConstantTimeCompare([]byte(v), []byte(adminKey)) == 1
	}
	token := bearerToken(r)
	return token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(adminKey)) == 1
}
