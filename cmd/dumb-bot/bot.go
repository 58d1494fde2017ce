package main

import (
	"context"
	"encoding/json"
	"math/big"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"zk-porrinha/internal/apiclient"
	"zk-porrinha/internal/commitment"
	"zk-porrinha/internal/game"
	"zk-porrinha/internal/game/viewmodel"
	"zk-porrinha/internal/ws"
	"zk-porrinha/internal/zk"
)

type prover interface {
	Prove(t commitment.Tuple, accumulated uint64) (*zk.Proof, error)
}

type action int

const (
	actNone action = iota
	actJoin
	actCommit
	actStop
)

type roundKey struct {
	session uint32
	round   uint32
}

// bot plays one room until it closes. It acts only on room snapshots so a
// dropped event never leaves it stuck.
type bot struct {
	client   *apiclient.Client
	prover   prover
	playerID string
	bet      int64
	rnd      *rand.Rand

	last      viewmodel.RoomView
	committed map[roundKey]bool
	joined    map[roundKey]bool
}

func newBot(client *apiclient.Client, p prover, playerID string, bet int64) *bot {
	return &bot{
		client:    client,
		prover:    p,
		playerID:  playerID,
		bet:       bet,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		committed: map[roundKey]bool{},
		joined:    map[roundKey]bool{},
	}
}

func keyOf(room viewmodel.RoomView) roundKey {
	return roundKey{session: room.SessionID, round: room.RoundsPlayed}
}

func (b *bot) seat(room viewmodel.RoomView) (viewmodel.SeatView, bool) {
	for _, s := range room.Seats {
		if s.Address == b.playerID {
			return s, true
		}
	}
	return viewmodel.SeatView{}, false
}

func (b *bot) decide(room viewmodel.RoomView) action {
	switch game.Status(room.Status) {
	case game.StatusSettled:
		return actStop
	case game.StatusLobby:
		if _, seated := b.seat(room); seated || len(room.Seats) >= 2 || b.joined[keyOf(room)] {
			return actNone
		}
		return actJoin
	case game.StatusCommit:
		s, seated := b.seat(room)
		if !seated || s.HasCommitted || b.committed[keyOf(room)] {
			return actNone
		}
		return actCommit
	}
	return actNone
}

// randomHand draws a tuple with a fresh salt.
func (b *bot) randomHand() (commitment.Tuple, error) {
	salt, err := commitment.NewSalt(nil)
	if err != nil {
		return commitment.Tuple{}, err
	}
	hand := uint8(b.rnd.Intn(commitment.MaxHand + 1))
	return commitment.Tuple{
		Hand:         hand,
		Parity:       uint8(b.rnd.Intn(2)),
		TotalGuess:   hand + uint8(b.rnd.Intn(commitment.MaxHand+1)),
		JackpotGuess: uint8(b.rnd.Intn(commitment.JackpotSpace)),
		Salt:         new(big.Int).Set(salt),
	}, nil
}

func (b *bot) commit(ctx context.Context, room viewmodel.RoomView) error {
	h, err := commitment.ParseDigest(room.JackpotHash)
	if err != nil {
		return err
	}
	bound := (uint64(room.RoundsPlayed) + 1) * (commitment.JackpotSpace - 1)
	acc, ok := commitment.RecoverAccumulator(h, bound)
	if !ok {
		return errors.Errorf("jackpot hash of room %d not recoverable up to %d", room.ID, bound)
	}
	t, err := b.randomHand()
	if err != nil {
		return err
	}
	proof, err := b.prover.Prove(t, acc)
	if err != nil {
		return err
	}
	_, err = b.client.Commit(ctx, room.ID, apiclient.CommitBody{
		Commitment: proof.Inputs.Commitment.String(),
		Proof:      proof.Envelope,
		Hand:       int(proof.Inputs.Hand),
		Parity:     int(proof.Inputs.Parity),
		TotalGuess: int(proof.Inputs.TotalGuess),
		JackpotHit: proof.Inputs.JackpotHit,
	})
	if err != nil {
		return err
	}
	b.committed[keyOf(room)] = true
	log.Info().Uint64("room_id", room.ID).Uint8("hand", t.Hand).Uint8("parity", t.Parity).
		Uint8("total_guess", t.TotalGuess).Msg("hand committed")
	return nil
}

// handleSnapshot applies one room snapshot. It reports false once the room
// is closed.
func (b *bot) handleSnapshot(ctx context.Context, room viewmodel.RoomView) (bool, error) {
	b.last = room
	switch b.decide(room) {
	case actStop:
		log.Info().Uint64("room_id", room.ID).Str("last_winner", room.LastWinner).Msg("room closed")
		return false, nil
	case actJoin:
		b.joined[keyOf(room)] = true
		if _, err := b.client.JoinRoom(ctx, room.ID, b.bet); err != nil {
			return true, err
		}
		log.Info().Uint64("room_id", room.ID).Int64("bet", b.bet).Msg("joined room")
	case actCommit:
		return true, b.commit(ctx, room)
	}
	return true, nil
}

func (b *bot) handleEvent(ctx context.Context, ev ws.EventMessage) error {
	switch ev.Event.Event {
	case game.EventParityWinner, game.EventClosenessWinner, game.EventRoundDraw:
		log.Info().Uint64("room_id", ev.Event.RoomID).Interface("data", ev.Event.Data).Msg("round settled")
	case game.EventTimeoutAvailable:
		if b.last.TimeoutClaimant != b.playerID {
			return nil
		}
		if _, err := b.client.ClaimTimeout(ctx, ev.Event.RoomID); err != nil {
			return err
		}
		log.Info().Uint64("room_id", ev.Event.RoomID).Msg("timeout claimed")
	}
	return nil
}

func dialRoom(ctx context.Context, wsURL, apiKey string, roomID uint64) (*websocket.Conn, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("room_id", strconv.FormatUint(roomID, 10))
	u.RawQuery = q.Encode()
	header := http.Header{}
	header.Set("Authorization", "Bearer "+apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", u.Redacted())
	}
	return conn, nil
}

// run reads the room stream until the room closes or ctx ends.
func (b *bot) run(ctx context.Context, conn *websocket.Conn) error {
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &base); err != nil {
			continue
		}
		switch base.Type {
		case ws.MsgRoomSnapshot:
			var snap ws.RoomSnapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				continue
			}
			more, err := b.handleSnapshot(ctx, snap.Room)
			if err != nil {
				log.Warn().Err(err).Uint64("room_id", snap.Room.ID).Msg("snapshot action failed")
			}
			if !more {
				return nil
			}
		case ws.MsgEvent:
			var ev ws.EventMessage
			if err := json.Unmarshal(data, &ev); err != nil {
				continue
			}
			if err := b.handleEvent(ctx, ev); err != nil {
				log.Warn().Err(err).Str("event", ev.Event.Event).Msg("event action failed")
			}
		case ws.MsgError:
			log.Warn().RawJSON("message", data).Msg("server error")
		}
	}
}
