package mcpserver

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"zk-porrinha/internal/app/players"
	"zk-porrinha/internal/app/rooms"
	"zk-porrinha/internal/store"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type Server struct {
	rooms   *rooms.Service
	players *players.Service

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(roomsSvc *rooms.Service, playersSvc *players.Service) *Server {
	mcpSrv := server.NewMCPServer(
		"zk-porrinha",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		rooms:      roomsSvc,
		players:    playersSvc,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerPlayerTools()
	s.registerRoomTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"room://{room_id}",
			"room_state",
			mcp.WithTemplateDescription("Spectator view of a room by id"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			raw := request.Params.URI
			id, ok := parseRoomURI(raw)
			if !ok {
				return nil, nil
			}
			view, err := s.rooms.Get(ctx, id, "")
			if err != nil {
				return nil, err
			}
			payload, err := json.Marshal(view)
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      raw,
					MIMEType: "application/json",
					Text:     string(payload),
				},
			}, nil
		},
	)
}

func parseRoomURI(raw string) (uint64, bool) {
	if !strings.HasPrefix(raw, "room://") {
		return 0, false
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(raw, "room://"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) authPlayer(ctx context.Context, request mcp.CallToolRequest) (*store.Player, *mcp.CallToolResult) {
	apiKey, err := request.RequireString("api_key")
	if err != nil || strings.TrimSpace(apiKey) == "" {
		return nil, toolError("invalid_request", "api_key is required")
	}
	p, err := s.players.Authenticate(ctx, apiKey)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return p, nil
}

// optionalViewer resolves api_key when present; a bad key is still an
// error so callers notice it instead of silently getting the spectator view.
func (s *Server) optionalViewer(ctx context.Context, request mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	if strings.TrimSpace(request.GetString("api_key", "")) == "" {
		return "", nil
	}
	p, errResp := s.authPlayer(ctx, request)
	if errResp != nil {
		return "", errResp
	}
	return p.ID, nil
}

func roomIDArg(request mcp.CallToolRequest) (uint64, *mcp.CallToolResult) {
	v, err := request.RequireFloat("room_id")
	if err != nil {
		return 0, toolError("invalid_request", err.Error())
	}
	if v < 1 || v != float64(uint64(v)) {
		return 0, toolError("invalid_room_id", "room_id must be a positive integer")
	}
	return uint64(v), nil
}

// betArg reads bet_amount as whole base units. Fractions are rejected rather
// than truncated so a join can never collapse to the zero "match the stake" bet.
func betArg(request mcp.CallToolRequest) (int64, *mcp.CallToolResult) {
	v, err := request.RequireFloat("bet_amount")
	if err != nil {
		return 0, toolError("invalid_request", err.Error())
	}
	if v < 1 || v >= math.MaxInt64 || v != math.Trunc(v) {
		return 0, toolError("invalid_bet", "bet_amount must be a positive whole number of base units")
	}
	return int64(v), nil
}
