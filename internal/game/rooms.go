package game

import (
	"context"
	"errors"
	"strings"

	"zk-porrinha/internal/commitment"

	"github.com/rs/zerolog/log"
)

// CreateRoom opens a Lobby room seated by player and escrows the bet.
func (e *Engine) CreateRoom(ctx context.Context, player string, bet int64) (uint64, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		return 0, ErrNotPlayer
	}
	if bet <= 0 {
		return 0, ErrInvalidBet
	}
	var roomID uint64
	err := e.update(ctx, func(tx RoomTx, em *emitter) error {
		settings, err := tx.Settings(ctx)
		if err != nil {
			return err
		}
		led, err := e.ledgerFor(tx, settings)
		if err != nil {
			return err
		}
		id, err := tx.NextRoomID(ctx)
		if err != nil {
			return err
		}
		if err := led.Escrow(ctx, player, id, bet, EntryBetEscrow); err != nil {
			return err
		}
		room := &Room{
			ID:               id,
			Status:           StatusLobby,
			BetAmount:        bet,
			Player1:          newPlayer(player),
			JackpotHash:      commitment.JackpotHash(0),
			LastActionLedger: em.seq,
			SessionID:        uint32(id),
			Creator:          player,
		}
		if err := tx.PutRoom(ctx, room); err != nil {
			return err
		}
		roomID = id
		em.emit(EventRoomCreated, id, RoomCreated{Player: player, BetAmount: bet})
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Info().Uint64("room_id", roomID).Str("player", player).Int64("bet", bet).Msg("room created")
	return roomID, nil
}

// JoinRoom seats player in the first free seat. bet may be zero to accept the
// room's stake; a non-zero bet must match it. Filling the second seat moves
// the room to Commit and opens a hub session.
func (e *Engine) JoinRoom(ctx context.Context, roomID uint64, player string, bet int64) error {
	player = strings.TrimSpace(player)
	if player == "" {
		return ErrNotPlayer
	}
	var status Status
	err := e.update(ctx, func(tx RoomTx, em *emitter) error {
		room, err := tx.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if room.Status != StatusLobby || room.Full() {
			return ErrInvalidPhase
		}
		if self, _, _ := room.Seat(player); self != nil {
			return ErrSelfPlayForbidden
		}
		if bet != 0 && bet != room.BetAmount {
			return ErrInvalidBet
		}
		settings, err := tx.Settings(ctx)
		if err != nil {
			return err
		}
		led, err := e.ledgerFor(tx, settings)
		if err != nil {
			return err
		}
		filling := room.Occupied() == 1
		if filling && settings.Hub == "" {
			return ErrGameHubNotSet
		}
		if err := led.Escrow(ctx, player, roomID, room.BetAmount, EntryBetEscrow); err != nil {
			return err
		}
		seat := 1
		if room.Player1 == nil {
			room.Player1 = newPlayer(player)
		} else {
			room.Player2 = newPlayer(player)
			seat = 2
		}
		room.LastActionLedger = em.seq
		if room.Full() {
			room.Status = StatusCommit
			em.emit(EventHubStartGame, roomID, HubStartGame{
				Hub:           settings.Hub,
				SessionID:     room.SessionID,
				Player1:       room.Player1.Address,
				Player2:       room.Player2.Address,
				Player1Points: room.BetAmount,
				Player2Points: room.BetAmount,
			})
		}
		if err := tx.PutRoom(ctx, room); err != nil {
			return err
		}
		status = room.Status
		em.emit(EventRoomJoined, roomID, RoomJoined{Player: player, Seat: seat, Status: room.Status})
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Uint64("room_id", roomID).Str("player", player).Str("status", string(status)).Msg("room joined")
	return nil
}

// CancelRoom lets the only seated player of a Lobby room take the bet back.
// The room closes unless it holds a jackpot pool, in which case it stays open
// with empty seats.
func (e *Engine) CancelRoom(ctx context.Context, roomID uint64, player string) error {
	return e.update(ctx, func(tx RoomTx, em *emitter) error {
		room, err := tx.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		self, _, _ := room.Seat(player)
		if self == nil {
			return ErrNotPlayer
		}
		if room.Status != StatusLobby || room.Occupied() != 1 {
			return ErrInvalidPhase
		}
		settings, err := tx.Settings(ctx)
		if err != nil {
			return err
		}
		led, err := e.ledgerFor(tx, settings)
		if err != nil {
			return err
		}
		if err := led.Payout(ctx, player, roomID, room.BetAmount, EntryCancelRefund); err != nil {
			return err
		}
		room.LastActionLedger = em.seq
		em.emit(EventRoomCancelled, roomID, RoomCancelled{Player: player, Refund: room.BetAmount})
		if room.JackpotPool > 0 {
			room.clearSeats()
		} else {
			room.Status = StatusSettled
			em.emit(EventRoomClosed, roomID, nil)
		}
		return tx.PutRoom(ctx, room)
	})
}

func (e *Engine) GetRoom(ctx context.Context, roomID uint64) (*Room, error) {
	return e.registry.GetRoom(ctx, roomID)
}

// GetJackpotHash returns the one-way commitment to the room's accumulator.
func (e *Engine) GetJackpotHash(ctx context.Context, roomID uint64) (commitment.Digest, error) {
	room, err := e.registry.GetRoom(ctx, roomID)
	if err != nil {
		return commitment.Digest{}, err
	}
	return room.JackpotHash, nil
}

func (e *Engine) GetRoomCount(ctx context.Context) (uint64, error) {
	return e.registry.RoomCount(ctx)
}

// ListRecentRooms walks ids downward from the counter, newest first, reading
// at most limit rooms.
func (e *Engine) ListRecentRooms(ctx context.Context, limit int) ([]*Room, error) {
	if limit <= 0 {
		limit = 50
	}
	count, err := e.registry.RoomCount(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Room, 0, limit)
	for id := count; id > 0 && len(out) < limit; id-- {
		room, err := e.registry.GetRoom(ctx, id)
		if err != nil {
			if errors.Is(err, ErrRoomNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, room)
	}
	return out, nil
}
