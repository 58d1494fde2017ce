package game

import (
	"context"
	"fmt"

	"zk-porrinha/internal/commitment"

	"github.com/rs/zerolog/log"
)

// CommitRequest carries a player's commitment, its proof, and the values the
// player declares the proof reveals. The declared values are only a cross
// check; what gets recorded comes from the verified proof.
type CommitRequest struct {
	RoomID     uint64
	Player     string
	Commitment commitment.Digest
	Proof      []byte
	Hand       int
	Parity     int
	TotalGuess int
	JackpotHit bool
}

type CommitResult struct {
	Room       *Room       `json:"room"`
	Settled    bool        `json:"settled"`
	Settlement *Settlement `json:"settlement,omitempty"`
}

func (r CommitRequest) prefilter() error {
	if r.Hand < 0 || r.Hand > commitment.MaxHand {
		return ErrInvalidHandValue
	}
	if r.Parity < 0 || r.Parity > commitment.MaxParity || r.TotalGuess < 0 || r.TotalGuess > commitment.MaxTotalGuess {
		return ErrInvalidGuess
	}
	return nil
}

// CommitHand records a verified commitment. The second commitment of a round
// settles it inside the same update.
func (e *Engine) CommitHand(ctx context.Context, req CommitRequest) (*CommitResult, error) {
	if err := req.prefilter(); err != nil {
		return nil, err
	}
	var result *CommitResult
	err := e.update(ctx, func(tx RoomTx, em *emitter) error {
		result = nil
		room, err := tx.GetRoom(ctx, req.RoomID)
		if err != nil {
			return err
		}
		if room.Status != StatusCommit {
			return ErrInvalidPhase
		}
		self, other, _ := room.Seat(req.Player)
		if self == nil {
			return ErrNotPlayer
		}
		if self.HasCommitted {
			return ErrAlreadyCommitted
		}
		if len(req.Proof) == 0 {
			return ErrInvalidProof
		}
		settings, err := tx.Settings(ctx)
		if err != nil {
			return err
		}
		verifier, err := e.verifierFor(settings)
		if err != nil {
			return err
		}
		out, err := e.checkProof(verifier, room, req)
		if err != nil {
			return err
		}
		if other != nil && other.Commitment != nil && *other.Commitment == out.Commitment {
			// a copied opponent proof would open to the same tuple
			return ErrInvalidProof
		}

		c := out.Commitment
		self.Commitment = &c
		self.HasCommitted = true
		self.RevealedHand = u8(out.Hand)
		self.RevealedParity = u8(out.Parity)
		self.RevealedTotalGuess = u8(out.TotalGuess)
		self.JackpotHit = out.JackpotHit
		room.LastActionLedger = em.seq
		em.emit(EventHandCommitted, room.ID, HandCommitted{Player: req.Player, Commitment: c.String()})

		result = &CommitResult{}
		if room.BothCommitted() {
			em.emit(EventBothCommitted, room.ID, nil)
			st, err := e.settle(ctx, tx, em, room, settings)
			if err != nil {
				return err
			}
			result.Settled = true
			result.Settlement = st
		}
		if err := tx.PutRoom(ctx, room); err != nil {
			return err
		}
		result.Room = room.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint64("room_id", req.RoomID).Str("player", req.Player).Bool("settled", result.Settled).Msg("hand committed")
	return result, nil
}

// checkProof extracts the proof's public outputs, cross checks them against
// the request and the room's jackpot hash, then verifies the proof.
func (e *Engine) checkProof(v Verifier, room *Room, req CommitRequest) (PublicInputs, error) {
	out, err := v.PublicOutputs(req.Proof)
	if err != nil {
		return PublicInputs{}, fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	if out.Commitment != req.Commitment {
		return PublicInputs{}, ErrCommitmentMismatch
	}
	if err := commitment.ValidateReveal(out.Hand, out.Parity, out.TotalGuess); err != nil {
		return PublicInputs{}, fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	if int(out.Hand) != req.Hand || int(out.Parity) != req.Parity || int(out.TotalGuess) != req.TotalGuess || out.JackpotHit != req.JackpotHit {
		return PublicInputs{}, fmt.Errorf("%w: declared values differ from proof outputs", ErrInvalidProof)
	}
	if out.JackpotHash != room.JackpotHash {
		return PublicInputs{}, fmt.Errorf("%w: stale jackpot hash", ErrInvalidProof)
	}
	ok, err := v.Verify(req.Proof, out)
	if err != nil {
		return PublicInputs{}, fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	if !ok {
		return PublicInputs{}, ErrInvalidProof
	}
	return out, nil
}
