package zk

import (
	"fmt"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/rs/zerolog/log"

	"zk-porrinha/internal/commitment"
	"zk-porrinha/internal/game"
)

// VerifierName is the key the Groth16 verifier is registered under.
const VerifierName = "groth16-bn254"

// Verifier checks envelopes against a verifying key. It satisfies
// game.Verifier.
type Verifier struct {
	pc *ProofContext
}

func NewVerifier(pc *ProofContext) (*Verifier, error) {
	if pc == nil || pc.vk == nil {
		return nil, ErrMissingKeys
	}
	return &Verifier{pc: pc}, nil
}

// PublicOutputs reads what the envelope's public witness claims. Nothing is
// verified here.
func (v *Verifier) PublicOutputs(proof []byte) (game.PublicInputs, error) {
	_, public, err := DecodeEnvelope(proof)
	if err != nil {
		decodeFailures.Inc(1)
		return game.PublicInputs{}, err
	}
	vec, ok := public.Vector().(fr.Vector)
	if !ok || len(vec) != publicInputs {
		decodeFailures.Inc(1)
		return game.PublicInputs{}, ErrPublicWitness
	}
	var out game.PublicInputs
	out.Commitment = commitment.Digest(vec[0].Bytes())
	small := make([]uint8, 0, 4)
	for _, e := range vec[1:5] {
		if !e.IsUint64() || e.Uint64() > 0xff {
			decodeFailures.Inc(1)
			return game.PublicInputs{}, fmt.Errorf("%w: %v", ErrPublicWitness, errNotSmall)
		}
		small = append(small, uint8(e.Uint64()))
	}
	if small[3] > 1 {
		decodeFailures.Inc(1)
		return game.PublicInputs{}, fmt.Errorf("%w: %v", ErrPublicWitness, errNotSmall)
	}
	out.Hand, out.Parity, out.TotalGuess = small[0], small[1], small[2]
	out.JackpotHit = small[3] == 1
	out.JackpotHash = commitment.Digest(vec[5].Bytes())
	return out, nil
}

// Verify rebuilds the public witness from inputs and checks the proof
// against it. An invalid proof is (false, nil); errors mean the envelope or
// inputs could not be processed.
func (v *Verifier) Verify(proof []byte, inputs game.PublicInputs) (bool, error) {
	start := time.Now()
	p, _, err := DecodeEnvelope(proof)
	if err != nil {
		decodeFailures.Inc(1)
		return false, err
	}
	public, err := frontend.NewWitness(publicAssignment(inputs), ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, fmt.Errorf("build public witness: %w", err)
	}
	if err := groth16.Verify(p, v.pc.vk, public); err != nil {
		verifyFailures.Inc(1)
		log.Debug().Err(err).Str("commitment", inputs.Commitment.String()).Msg("proof rejected")
		return false, nil
	}
	verifyTimer.UpdateSince(start)
	return true, nil
}
