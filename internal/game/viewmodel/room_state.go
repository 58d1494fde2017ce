package viewmodel

import (
	"github.com/shopspring/decimal"

	"zk-porrinha/internal/game"
)

// AmountDecimals is the number of fractional digits of the base unit used
// for display strings (stroops to XLM).
const AmountDecimals = 7

type SeatView struct {
	Seat               int    `json:"seat"`
	Address            string `json:"address"`
	HasCommitted       bool   `json:"has_committed"`
	Commitment         string `json:"commitment,omitempty"`
	RevealedHand       *uint8 `json:"revealed_hand,omitempty"`
	RevealedParity     *uint8 `json:"revealed_parity,omitempty"`
	RevealedTotalGuess *uint8 `json:"revealed_total_guess,omitempty"`
	JackpotHit         *bool  `json:"jackpot_hit,omitempty"`
}

type RoomView struct {
	ID               uint64             `json:"id"`
	Status           string             `json:"status"`
	BetAmount        int64              `json:"bet_amount"`
	BetDisplay       string             `json:"bet_display"`
	Seats            []SeatView         `json:"seats"`
	JackpotPool      int64              `json:"jackpot_pool"`
	JackpotDisplay   string             `json:"jackpot_display"`
	JackpotHash      string             `json:"jackpot_hash"`
	LastActionLedger uint32             `json:"last_action_ledger"`
	TimeoutLedger    uint64             `json:"timeout_ledger"`
	TimeoutClaimant  string             `json:"timeout_claimant,omitempty"`
	LastWinner       string             `json:"last_winner,omitempty"`
	RoundsPlayed     uint32             `json:"rounds_played"`
	SessionID        uint32             `json:"session_id"`
	Creator          string             `json:"creator"`
	LastRound        *game.RoundSummary `json:"last_round,omitempty"`
}

// FormatAmount renders a base-unit amount with AmountDecimals places.
func FormatAmount(amount int64) string {
	return decimal.New(amount, -AmountDecimals).StringFixed(AmountDecimals)
}

// BuildRoomView projects a room for viewer. While a round is in Commit the
// values a seat revealed through its proof are shown only to that seat's
// owner; after settlement they are read from LastRound. The accumulator
// behind the jackpot hash is never exposed.
func BuildRoomView(room *game.Room, timeoutLedgers uint32, viewer string) RoomView {
	out := RoomView{
		ID:               room.ID,
		Status:           string(room.Status),
		BetAmount:        room.BetAmount,
		BetDisplay:       FormatAmount(room.BetAmount),
		Seats:            make([]SeatView, 0, 2),
		JackpotPool:      room.JackpotPool,
		JackpotDisplay:   FormatAmount(room.JackpotPool),
		JackpotHash:      room.JackpotHash.String(),
		LastActionLedger: room.LastActionLedger,
		TimeoutLedger:    uint64(room.LastActionLedger) + uint64(timeoutLedgers),
		RoundsPlayed:     room.RoundsPlayed,
		SessionID:        room.SessionID,
		Creator:          room.Creator,
		LastRound:        room.LastRound,
	}
	if room.LastWinner != nil {
		out.LastWinner = *room.LastWinner
	}
	if who, ok := game.TimeoutClaimant(room); ok {
		out.TimeoutClaimant = who
	}
	for i, p := range []*game.PlayerState{room.Player1, room.Player2} {
		if p == nil {
			continue
		}
		out.Seats = append(out.Seats, buildSeat(i+1, p, room.Status, viewer))
	}
	return out
}

// BuildPublicRoom is the view for spectators.
func BuildPublicRoom(room *game.Room, timeoutLedgers uint32) RoomView {
	return BuildRoomView(room, timeoutLedgers, "")
}

func buildSeat(seat int, p *game.PlayerState, status game.Status, viewer string) SeatView {
	v := SeatView{Seat: seat, Address: p.Address, HasCommitted: p.HasCommitted}
	if p.Commitment != nil {
		v.Commitment = p.Commitment.String()
	}
	if !p.HasCommitted {
		return v
	}
	if status == game.StatusCommit && (viewer == "" || viewer != p.Address) {
		return v
	}
	v.RevealedHand = p.RevealedHand
	v.RevealedParity = p.RevealedParity
	v.RevealedTotalGuess = p.RevealedTotalGuess
	hit := p.JackpotHit
	v.JackpotHit = &hit
	return v
}
