package game

import "zk-porrinha/internal/commitment"

// PlayerState is one seat. Revealed values stay nil until a proof for them
// has verified; the jackpot guess itself is never stored.
type PlayerState struct {
	Address            string             `json:"address"`
	Commitment         *commitment.Digest `json:"commitment,omitempty"`
	HasCommitted       bool               `json:"has_committed"`
	RevealedHand       *uint8             `json:"revealed_hand,omitempty"`
	RevealedParity     *uint8             `json:"revealed_parity,omitempty"`
	RevealedTotalGuess *uint8             `json:"revealed_total_guess,omitempty"`
	JackpotHit         bool               `json:"jackpot_hit"`
}

func newPlayer(address string) *PlayerState {
	return &PlayerState{Address: address}
}

func (p *PlayerState) reveal() (Reveal, bool) {
	if p == nil || !p.HasCommitted || p.RevealedHand == nil || p.RevealedParity == nil || p.RevealedTotalGuess == nil {
		return Reveal{}, false
	}
	return Reveal{
		Hand:       *p.RevealedHand,
		Parity:     *p.RevealedParity,
		TotalGuess: *p.RevealedTotalGuess,
		JackpotHit: p.JackpotHit,
	}, true
}

func (p *PlayerState) clone() *PlayerState {
	if p == nil {
		return nil
	}
	out := *p
	if p.Commitment != nil {
		c := *p.Commitment
		out.Commitment = &c
	}
	out.RevealedHand = cloneU8(p.RevealedHand)
	out.RevealedParity = cloneU8(p.RevealedParity)
	out.RevealedTotalGuess = cloneU8(p.RevealedTotalGuess)
	return &out
}

// Room is the persisted aggregate. JackpotAccumulated is private state and
// must not leave the server; only JackpotHash is public.
type Room struct {
	ID                 uint64            `json:"id"`
	Status             Status            `json:"status"`
	BetAmount          int64             `json:"bet_amount"`
	Player1            *PlayerState      `json:"player1,omitempty"`
	Player2            *PlayerState      `json:"player2,omitempty"`
	JackpotPool        int64             `json:"jackpot_pool"`
	JackpotAccumulated uint64            `json:"jackpot_accumulated"`
	JackpotHash        commitment.Digest `json:"jackpot_hash"`
	LastActionLedger   uint32            `json:"last_action_ledger"`
	LastWinner         *string           `json:"last_winner,omitempty"`
	RoundsPlayed       uint32            `json:"rounds_played"`
	SessionID          uint32            `json:"session_id"`
	Creator            string            `json:"creator"`
	LastRound          *RoundSummary     `json:"last_round,omitempty"`
}

// RoundSummary survives the reset to Lobby so clients can read how the
// previous round ended.
type RoundSummary struct {
	Round        uint32  `json:"round"`
	Outcome      Outcome `json:"outcome"`
	Player1      string  `json:"player1"`
	Player2      string  `json:"player2"`
	Reveal1      *Reveal `json:"reveal1,omitempty"`
	Reveal2      *Reveal `json:"reveal2,omitempty"`
	WinnerPayout int64   `json:"winner_payout"`
	JackpotPaid  int64   `json:"jackpot_paid"`
	Rake         int64   `json:"rake"`
	TimedOut     bool    `json:"timed_out"`
}

// Seat returns the caller's seat and the opposing one. self is nil when
// player does not sit in the room.
func (r *Room) Seat(player string) (self, other *PlayerState, index int) {
	switch {
	case r.Player1 != nil && r.Player1.Address == player:
		return r.Player1, r.Player2, 1
	case r.Player2 != nil && r.Player2.Address == player:
		return r.Player2, r.Player1, 2
	}
	return nil, nil, 0
}

func (r *Room) Full() bool {
	return r.Player1 != nil && r.Player2 != nil
}

func (r *Room) Occupied() int {
	n := 0
	if r.Player1 != nil {
		n++
	}
	if r.Player2 != nil {
		n++
	}
	return n
}

func (r *Room) BothCommitted() bool {
	return r.Full() && r.Player1.HasCommitted && r.Player2.HasCommitted
}

func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	out := *r
	out.Player1 = r.Player1.clone()
	out.Player2 = r.Player2.clone()
	if r.LastWinner != nil {
		w := *r.LastWinner
		out.LastWinner = &w
	}
	if r.LastRound != nil {
		lr := *r.LastRound
		if lr.Reveal1 != nil {
			v := *lr.Reveal1
			lr.Reveal1 = &v
		}
		if lr.Reveal2 != nil {
			v := *lr.Reveal2
			lr.Reveal2 = &v
		}
		out.LastRound = &lr
	}
	return &out
}

func (r *Room) clearSeats() {
	r.Player1 = nil
	r.Player2 = nil
}

func cloneU8(v *uint8) *uint8 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func u8(v uint8) *uint8 { return &v }
