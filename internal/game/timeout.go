package game

import (
	"context"

	"github.com/rs/zerolog/log"
)

// TimeoutDeadline is the first ledger sequence at which a timeout may be
// claimed for room.
func (e *Engine) TimeoutDeadline(room *Room) uint64 {
	return uint64(room.LastActionLedger) + uint64(e.timeoutLedgers)
}

// TimeoutClaimant returns the player entitled to claim a stalled Commit
// round: the one who committed while the opponent did not.
func TimeoutClaimant(room *Room) (string, bool) {
	if room.Status != StatusCommit || !room.Full() {
		return "", false
	}
	switch {
	case room.Player1.HasCommitted && !room.Player2.HasCommitted:
		return room.Player1.Address, true
	case room.Player2.HasCommitted && !room.Player1.HasCommitted:
		return room.Player2.Address, true
	}
	return "", false
}

// ClaimTimeout awards both bets to a player whose opponent stopped acting.
// When neither player committed, either may claim and both bets are
// refunded. The jackpot pool stays in the room; the room reopens if it holds
// one and closes otherwise. The claim stamps a fresh last action, so an immediate
// second claim fails with ErrTimeoutNotReached.
func (e *Engine) ClaimTimeout(ctx context.Context, roomID uint64, claimer string) error {
	var payout int64
	err := e.update(ctx, func(tx RoomTx, em *emitter) error {
		room, err := tx.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if uint64(em.seq) < e.TimeoutDeadline(room) {
			return ErrTimeoutNotReached
		}
		self, _, seat := room.Seat(claimer)
		if self == nil {
			return ErrNotPlayer
		}
		if room.Status != StatusCommit {
			return ErrInvalidPhase
		}
		claimant, ok := TimeoutClaimant(room)
		if ok && claimant != claimer {
			return ErrTimeoutNotReached
		}
		settings, err := tx.Settings(ctx)
		if err != nil {
			return err
		}
		if settings.Hub == "" {
			return ErrGameHubNotSet
		}
		led, err := e.ledgerFor(tx, settings)
		if err != nil {
			return err
		}
		summary := &RoundSummary{
			Round:    room.RoundsPlayed,
			Player1:  room.Player1.Address,
			Player2:  room.Player2.Address,
			TimedOut: true,
			Outcome:  Outcome{Rule: RuleDraw},
		}
		if !ok {
			// nobody committed: abort the round and hand both stakes back
			for _, p := range []*PlayerState{room.Player1, room.Player2} {
				if err := led.Payout(ctx, p.Address, roomID, room.BetAmount, EntryBetRefund); err != nil {
					return err
				}
			}
			room.LastWinner = nil
			em.emit(EventRoundDraw, roomID, RoundResult{})
		} else {
			pot, err := mulAmount(room.BetAmount, 2)
			if err != nil {
				return err
			}
			if err := led.Payout(ctx, claimer, roomID, pot, EntryTimeoutPayout); err != nil {
				return err
			}
			payout = pot
			w := claimer
			room.LastWinner = &w
			summary.Outcome = Outcome{Winner: seat, Rule: RuleTimeout}
			summary.WinnerPayout = pot
			em.emit(EventTimeoutClaimed, roomID, TimeoutClaimed{Claimer: claimer, Amount: pot})
		}
		room.LastRound = summary
		room.LastActionLedger = em.seq
		em.emit(EventHubEndGame, roomID, HubEndGame{Hub: settings.Hub, SessionID: room.SessionID, Player1Won: ok && seat == 1, Round: room.RoundsPlayed})
		e.resetOrClose(em, room)
		return tx.PutRoom(ctx, room)
	})
	if err != nil {
		return err
	}
	log.Info().Uint64("room_id", roomID).Str("claimer", claimer).Int64("payout", payout).Msg("timeout claimed")
	return nil
}
