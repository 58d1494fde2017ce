package mcpserver

import (
	"context"
	"encoding/base64"

	"zk-porrinha/internal/commitment"
	"zk-porrinha/internal/game"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerRoomTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"create_room",
			mcp.WithDescription("Create a room and escrow the creator's bet"),
			mcp.WithString("api_key", mcp.Required(), mcp.Description("Player API key")),
			mcp.WithNumber("bet_amount", mcp.Required(), mcp.Description("Bet in base units (7 decimals)")),
		),
		s.handleCreateRoom,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"join_room",
			mcp.WithDescription("Take the open seat of a waiting room; bet must equal the room bet"),
			mcp.WithString("api_key", mcp.Required(), mcp.Description("Player API key")),
			mcp.WithNumber("room_id", mcp.Required(), mcp.Description("Room id")),
			mcp.WithNumber("bet_amount", mcp.Required(), mcp.Description("Bet in base units")),
		),
		s.handleJoinRoom,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"commit_hand",
			mcp.WithDescription("Submit a commitment with its proof; the round settles when both seats have committed"),
			mcp.WithString("api_key", mcp.Required(), mcp.Description("Player API key")),
			mcp.WithNumber("room_id", mcp.Required(), mcp.Description("Room id")),
			mcp.WithString("commitment", mcp.Required(), mcp.Description("0x-prefixed 32-byte hex digest")),
			mcp.WithString("proof", mcp.Required(), mcp.Description("Base64 proof bytes")),
			mcp.WithNumber("hand", mcp.Required(), mcp.Description("Revealed hand 0..5")),
			mcp.WithNumber("parity", mcp.Required(), mcp.Description("0 even, 1 odd")),
			mcp.WithNumber("total_guess", mcp.Required(), mcp.Description("Guess of the total 0..10")),
			mcp.WithBoolean("jackpot_hit", mcp.Description("Jackpot hit claimed by the proof")),
		),
		s.handleCommitHand,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"claim_timeout",
			mcp.WithDescription("Claim a room after the opponent missed the commit deadline"),
			mcp.WithString("api_key", mcp.Required(), mcp.Description("Player API key")),
			mcp.WithNumber("room_id", mcp.Required(), mcp.Description("Room id")),
		),
		s.handleClaimTimeout,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"cancel_room",
			mcp.WithDescription("Cancel a waiting room and refund the creator"),
			mcp.WithString("api_key", mcp.Required(), mcp.Description("Player API key")),
			mcp.WithNumber("room_id", mcp.Required(), mcp.Description("Room id")),
		),
		s.handleCancelRoom,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_room",
			mcp.WithDescription("Get a room; with api_key the caller's own reveal is included"),
			mcp.WithNumber("room_id", mcp.Required(), mcp.Description("Room id")),
			mcp.WithString("api_key", mcp.Description("Optional player API key")),
		),
		s.handleGetRoom,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_jackpot_hash",
			mcp.WithDescription("Get the jackpot hash a proof for this room must bind to"),
			mcp.WithNumber("room_id", mcp.Required(), mcp.Description("Room id")),
		),
		s.handleGetJackpotHash,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_room_count",
			mcp.WithDescription("Number of rooms ever created"),
		),
		s.handleGetRoomCount,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_rooms",
			mcp.WithDescription("List recent rooms, newest first"),
			mcp.WithNumber("limit", mcp.Description("Page size, default 20, max 100")),
			mcp.WithString("api_key", mcp.Description("Optional player API key")),
		),
		s.handleListRooms,
	)
}

func (s *Server) handleCreateRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResp := s.authPlayer(ctx, request)
	if errResp != nil {
		return errResp, nil
	}
	bet, errResp := betArg(request)
	if errResp != nil {
		return errResp, nil
	}
	view, svcErr := s.rooms.Create(ctx, p.ID, bet)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(view), nil
}

func (s *Server) handleJoinRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResp := s.authPlayer(ctx, request)
	if errResp != nil {
		return errResp, nil
	}
	id, errResp := roomIDArg(request)
	if errResp != nil {
		return errResp, nil
	}
	bet, errResp := betArg(request)
	if errResp != nil {
		return errResp, nil
	}
	view, svcErr := s.rooms.Join(ctx, id, p.ID, bet)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(view), nil
}

func (s *Server) handleCommitHand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResp := s.authPlayer(ctx, request)
	if errResp != nil {
		return errResp, nil
	}
	id, errResp := roomIDArg(request)
	if errResp != nil {
		return errResp, nil
	}
	rawCommitment, err := request.RequireString("commitment")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	digest, err := commitment.ParseDigest(rawCommitment)
	if err != nil {
		return toolError("invalid_commitment", err.Error()), nil
	}
	rawProof, err := request.RequireString("proof")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	proof, err := base64.StdEncoding.DecodeString(rawProof)
	if err != nil || len(proof) == 0 {
		return toolError(game.ErrInvalidProof.Error(), "proof must be non-empty base64"), nil
	}
	req := game.CommitRequest{
		RoomID:     id,
		Player:     p.ID,
		Commitment: digest,
		Proof:      proof,
		Hand:       request.GetInt("hand", -1),
		Parity:     request.GetInt("parity", -1),
		TotalGuess: request.GetInt("total_guess", -1),
		JackpotHit: request.GetBool("jackpot_hit", false),
	}
	resp, svcErr := s.rooms.Commit(ctx, req)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleClaimTimeout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResp := s.authPlayer(ctx, request)
	if errResp != nil {
		return errResp, nil
	}
	id, errResp := roomIDArg(request)
	if errResp != nil {
		return errResp, nil
	}
	view, err := s.rooms.ClaimTimeout(ctx, id, p.ID)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(view), nil
}

func (s *Server) handleCancelRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResp := s.authPlayer(ctx, request)
	if errResp != nil {
		return errResp, nil
	}
	id, errResp := roomIDArg(request)
	if errResp != nil {
		return errResp, nil
	}
	view, err := s.rooms.Cancel(ctx, id, p.ID)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(view), nil
}

func (s *Server) handleGetRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResp := roomIDArg(request)
	if errResp != nil {
		return errResp, nil
	}
	viewer, errResp := s.optionalViewer(ctx, request)
	if errResp != nil {
		return errResp, nil
	}
	view, err := s.rooms.Get(ctx, id, viewer)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(view), nil
}

func (s *Server) handleGetJackpotHash(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResp := roomIDArg(request)
	if errResp != nil {
		return errResp, nil
	}
	resp, err := s.rooms.JackpotHash(ctx, id)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleGetRoomCount(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.rooms.Count(ctx)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	viewer, errResp := s.optionalViewer(ctx, request)
	if errResp != nil {
		return errResp, nil
	}
	resp, err := s.rooms.List(ctx, request.GetInt("limit", 0), viewer)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}
