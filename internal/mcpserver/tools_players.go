package mcpserver

import (
	"context"

	"zk-porrinha/internal/app/players"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPlayerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"register_player",
			mcp.WithDescription("Register a player and receive a funded account and api_key"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Display name")),
		),
		s.handleRegisterPlayer,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_me",
			mcp.WithDescription("Get the calling player's account and balance"),
			mcp.WithString("api_key", mcp.Required(), mcp.Description("Player API key")),
		),
		s.handleGetMe,
	)
}

func (s *Server) handleRegisterPlayer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	resp, svcErr := s.players.Register(ctx, players.RegisterInput{Name: name})
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleGetMe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResp := s.authPlayer(ctx, request)
	if errResp != nil {
		return errResp, nil
	}
	resp, err := s.players.Me(ctx, p)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}
