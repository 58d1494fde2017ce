// Package apiclient is a small JSON client for the game server's HTTP API,
// shared by the CLI and the bot.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"zk-porrinha/internal/app/players"
	"zk-porrinha/internal/app/rooms"
	"zk-porrinha/internal/game/viewmodel"
)

type Client struct {
	base   string
	apiKey string
	http   *http.Client
}

func New(base, apiKey string) *Client {
	return &Client{
		base:   strings.TrimRight(base, "/"),
		apiKey: apiKey,
		http:   &http.Client{Timeout: 15 * time.Second},
	}
}

// WithAPIKey returns a copy authenticating as apiKey.
func (c *Client) WithAPIKey(apiKey string) *Client {
	cp := *c
	cp.apiKey = apiKey
	return &cp
}

// Error is a non-2xx reply; Code is the server's error code.
type Error struct {
	Status int
	Code   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Code)
}

// CommitBody is the JSON accepted by POST /api/rooms/{id}/commit.
type CommitBody struct {
	Commitment string `json:"commitment"`
	Proof      []byte `json:"proof"`
	Hand       int    `json:"hand"`
	Parity     int    `json:"parity"`
	TotalGuess int    `json:"total_guess"`
	JackpotHit bool   `json:"jackpot_hit"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &Error{Status: resp.StatusCode, Code: e.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) Register(ctx context.Context, name string) (*players.RegisterResponse, error) {
	var out players.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/api/players/register", map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*players.MeResponse, error) {
	var out players.MeResponse
	if err := c.do(ctx, http.MethodGet, "/api/players/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateRoom(ctx context.Context, bet int64) (*viewmodel.RoomView, error) {
	var out viewmodel.RoomView
	if err := c.do(ctx, http.MethodPost, "/api/rooms", map[string]int64{"bet_amount": bet}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) JoinRoom(ctx context.Context, id uint64, bet int64) (*viewmodel.RoomView, error) {
	var out viewmodel.RoomView
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/rooms/%d/join", id), map[string]int64{"bet_amount": bet}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Room(ctx context.Context, id uint64) (*viewmodel.RoomView, error) {
	var out viewmodel.RoomView
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/rooms/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) JackpotHash(ctx context.Context, id uint64) (string, error) {
	var out rooms.JackpotHashResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/rooms/%d/jackpot-hash", id), nil, &out); err != nil {
		return "", err
	}
	return out.JackpotHash, nil
}

// Commit posts a commit. The raw reply is returned because its settlement
// part is only present when the round closes.
func (c *Client) Commit(ctx context.Context, id uint64, body CommitBody) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/rooms/%d/commit", id), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ClaimTimeout(ctx context.Context, id uint64) (*viewmodel.RoomView, error) {
	var out viewmodel.RoomView
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/rooms/%d/timeout", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
