package game

import (
	"context"

	"zk-porrinha/internal/commitment"

	"github.com/rs/zerolog/log"
)

type Rule string

const (
	RuleParity    Rule = "parity"
	RuleCloseness Rule = "closeness"
	RuleDraw      Rule = "draw"
	RuleTimeout   Rule = "timeout"
)

type Reveal struct {
	Hand       uint8 `json:"hand"`
	Parity     uint8 `json:"parity"`
	TotalGuess uint8 `json:"total_guess"`
	JackpotHit bool  `json:"jackpot_hit"`
}

type Outcome struct {
	TotalFingers uint8 `json:"total_fingers"`
	ActualParity uint8 `json:"actual_parity"`
	// Winner is the winning seat, 1 or 2, or 0 on a draw.
	Winner int  `json:"winner"`
	Rule   Rule `json:"rule"`
}

// Resolve decides a round: a lone correct parity guess wins; otherwise the
// total guess strictly closer to the real total wins; otherwise it is a draw.
func Resolve(p1, p2 Reveal) Outcome {
	total := p1.Hand + p2.Hand
	out := Outcome{TotalFingers: total, ActualParity: total % 2, Rule: RuleDraw}

	p1ok := p1.Parity == out.ActualParity
	p2ok := p2.Parity == out.ActualParity
	if p1ok != p2ok {
		out.Rule = RuleParity
		if p1ok {
			out.Winner = 1
		} else {
			out.Winner = 2
		}
		return out
	}

	d1, d2 := distance(p1.TotalGuess, total), distance(p2.TotalGuess, total)
	switch {
	case d1 < d2:
		out.Winner, out.Rule = 1, RuleCloseness
	case d2 < d1:
		out.Winner, out.Rule = 2, RuleCloseness
	}
	return out
}

func distance(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

type Transfer struct {
	To        string `json:"to"`
	Amount    int64  `json:"amount"`
	EntryType string `json:"entry_type"`
}

// Settlement is the token movement plan for one resolved round.
type Settlement struct {
	Outcome      Outcome    `json:"outcome"`
	Winner       string     `json:"winner,omitempty"`
	Transfers    []Transfer `json:"transfers"`
	WinnerPayout int64      `json:"winner_payout"`
	Rake         int64      `json:"rake"`
	JackpotPaid  int64      `json:"jackpot_paid"`
	JackpotSplit bool       `json:"jackpot_split"`
	PoolAfter    int64      `json:"pool_after"`
}

// PlanSettlement computes payouts for room given its outcome. The winner gets
// both bets less the rake taken from the losing bet; the rake feeds the
// jackpot pool. A winner holding a jackpot hit also collects the pool as it
// stood before the round. On a draw both bets are refunded and, if both
// players hit, the pool is split with the odd unit going to player 1.
func PlanSettlement(room *Room, out Outcome, rakeBps int64) (Settlement, error) {
	p1, p2 := room.Player1, room.Player2
	plan := Settlement{Outcome: out, PoolAfter: room.JackpotPool}
	bet := room.BetAmount
	pool := room.JackpotPool

	switch out.Winner {
	case 0:
		plan.Transfers = append(plan.Transfers,
			Transfer{To: p1.Address, Amount: bet, EntryType: EntryBetRefund},
			Transfer{To: p2.Address, Amount: bet, EntryType: EntryBetRefund},
		)
		if pool > 0 && p1.JackpotHit && p2.JackpotHit {
			half := pool / 2
			plan.Transfers = append(plan.Transfers,
				Transfer{To: p1.Address, Amount: half + pool%2, EntryType: EntryJackpotPayout},
				Transfer{To: p2.Address, Amount: half, EntryType: EntryJackpotPayout},
			)
			plan.JackpotPaid = pool
			plan.JackpotSplit = true
			plan.PoolAfter = 0
		}
	case 1, 2:
		winner := p1
		if out.Winner == 2 {
			winner = p2
		}
		plan.Winner = winner.Address
		pot, err := mulAmount(bet, 2)
		if err != nil {
			return Settlement{}, err
		}
		rake, err := bps(bet, rakeBps)
		if err != nil {
			return Settlement{}, err
		}
		plan.Rake = rake
		plan.WinnerPayout = pot - rake
		plan.Transfers = append(plan.Transfers, Transfer{To: winner.Address, Amount: plan.WinnerPayout, EntryType: EntryPotPayout})
		if pool > 0 && winner.JackpotHit {
			plan.Transfers = append(plan.Transfers, Transfer{To: winner.Address, Amount: pool, EntryType: EntryJackpotPayout})
			plan.JackpotPaid = pool
			plan.PoolAfter = rake
		} else {
			after, err := addAmount(pool, rake)
			if err != nil {
				return Settlement{}, err
			}
			plan.PoolAfter = after
		}
	}
	return plan, nil
}

// settle pays out a room whose both players have committed, rotates the
// jackpot accumulator, and resets or closes the room.
func (e *Engine) settle(ctx context.Context, tx RoomTx, em *emitter, room *Room, settings Settings) (*Settlement, error) {
	r1, ok1 := room.Player1.reveal()
	r2, ok2 := room.Player2.reveal()
	if !ok1 || !ok2 {
		return nil, ErrInvalidPhase
	}
	if settings.Hub == "" {
		return nil, ErrGameHubNotSet
	}
	led, err := e.ledgerFor(tx, settings)
	if err != nil {
		return nil, err
	}
	out := Resolve(r1, r2)
	plan, err := PlanSettlement(room, out, e.rakeBps)
	if err != nil {
		return nil, err
	}
	for _, t := range plan.Transfers {
		if t.Amount == 0 {
			continue
		}
		if err := led.Payout(ctx, t.To, room.ID, t.Amount, t.EntryType); err != nil {
			return nil, err
		}
	}

	em.emit(EventHandRevealed, room.ID, revealEvent(room.Player1.Address, r1))
	em.emit(EventHandRevealed, room.ID, revealEvent(room.Player2.Address, r2))
	result := RoundResult{Winner: plan.Winner, TotalFingers: out.TotalFingers, ActualParity: out.ActualParity, Payout: plan.WinnerPayout, Rake: plan.Rake}
	switch out.Rule {
	case RuleParity:
		em.emit(EventParityWinner, room.ID, result)
	case RuleCloseness:
		em.emit(EventClosenessWinner, room.ID, result)
	case RuleDraw:
		em.emit(EventRoundDraw, room.ID, result)
	}
	if plan.JackpotPaid > 0 {
		if plan.JackpotSplit {
			em.emit(EventJackpotSplit, room.ID, JackpotResult{Amount: plan.JackpotPaid})
		} else {
			em.emit(EventJackpotWon, room.ID, JackpotResult{Winner: plan.Winner, Amount: plan.JackpotPaid})
		}
	}

	room.JackpotPool = plan.PoolAfter
	room.LastWinner = nil
	if plan.Winner != "" {
		w := plan.Winner
		room.LastWinner = &w
	}
	inc := e.entropy.JackpotIncrement(room.ID, room.RoundsPlayed, r1.Hand, r2.Hand) % commitment.JackpotSpace
	if room.JackpotAccumulated > ^uint64(0)-inc {
		return nil, ErrAmountOverflow
	}
	room.JackpotAccumulated += inc
	room.JackpotHash = commitment.JackpotHash(room.JackpotAccumulated)
	room.LastRound = &RoundSummary{
		Round:        room.RoundsPlayed,
		Outcome:      out,
		Player1:      room.Player1.Address,
		Player2:      room.Player2.Address,
		Reveal1:      &r1,
		Reveal2:      &r2,
		WinnerPayout: plan.WinnerPayout,
		JackpotPaid:  plan.JackpotPaid,
		Rake:         plan.Rake,
	}
	em.emit(EventHubEndGame, room.ID, HubEndGame{Hub: settings.Hub, SessionID: room.SessionID, Player1Won: out.Winner == 1, Round: room.RoundsPlayed})
	room.RoundsPlayed++
	room.LastActionLedger = em.seq
	room.Status = StatusSettled
	e.resetOrClose(em, room)

	log.Info().
		Uint64("room_id", room.ID).
		Uint32("round", room.RoundsPlayed).
		Str("rule", string(out.Rule)).
		Str("winner", plan.Winner).
		Int64("jackpot_pool", room.JackpotPool).
		Msg("round settled")
	return &plan, nil
}

// resetOrClose reopens a room that still holds a jackpot pool and closes the
// rest.
func (e *Engine) resetOrClose(em *emitter, room *Room) {
	if room.JackpotPool > 0 {
		room.Status = StatusLobby
		room.clearSeats()
		em.emit(EventRoomReset, room.ID, RoomReset{
			JackpotPool:  room.JackpotPool,
			JackpotHash:  room.JackpotHash.String(),
			RoundsPlayed: room.RoundsPlayed,
		})
		return
	}
	room.Status = StatusSettled
	em.emit(EventRoomClosed, room.ID, nil)
}

func revealEvent(player string, r Reveal) HandRevealed {
	return HandRevealed{Player: player, Hand: r.Hand, Parity: r.Parity, TotalGuess: r.TotalGuess, JackpotHit: r.JackpotHit}
}
