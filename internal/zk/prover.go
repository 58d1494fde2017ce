package zk

import (
	"fmt"
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"zk-porrinha/internal/commitment"
	"zk-porrinha/internal/game"
)

type Prover struct {
	pc *ProofContext
}

func NewProver(pc *ProofContext) (*Prover, error) {
	if pc == nil || !pc.CanProve() {
		return nil, ErrMissingKeys
	}
	return &Prover{pc: pc}, nil
}

// Proof is an encoded envelope with the public inputs it claims.
type Proof struct {
	Envelope []byte
	Inputs   game.PublicInputs
}

// Prove opens t against a room whose accumulator is accumulated. Only the
// owner of t can call this; the accumulator comes from RecoverAccumulator on
// the room's public jackpot hash.
func (p *Prover) Prove(t commitment.Tuple, accumulated uint64) (*Proof, error) {
	digest, err := commitment.Hash(t)
	if err != nil {
		return nil, err
	}
	inputs := game.PublicInputs{
		Commitment:  digest,
		Hand:        t.Hand,
		Parity:      t.Parity,
		TotalGuess:  t.TotalGuess,
		JackpotHit:  commitment.JackpotHit(t.JackpotGuess, accumulated),
		JackpotHash: commitment.JackpotHash(accumulated),
	}
	assignment := publicAssignment(inputs)
	assignment.JackpotGuess = int(t.JackpotGuess)
	assignment.Salt = new(big.Int).Set(t.Salt)
	assignment.Accumulated = new(big.Int).SetUint64(accumulated)
	assignment.Quotient = new(big.Int).SetUint64(accumulated / commitment.JackpotSpace)

	start := time.Now()
	full, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		proveFailures.Inc(1)
		return nil, fmt.Errorf("build witness: %w", err)
	}
	proof, err := groth16.Prove(p.pc.ccs, p.pc.pk, full)
	if err != nil {
		proveFailures.Inc(1)
		return nil, fmt.Errorf("groth16 prove: %w", err)
	}
	public, err := full.Public()
	if err != nil {
		return nil, err
	}
	env, err := EncodeEnvelope(proof, public)
	if err != nil {
		return nil, err
	}
	proveTimer.UpdateSince(start)
	return &Proof{Envelope: env, Inputs: inputs}, nil
}

func publicAssignment(in game.PublicInputs) *HandCircuit {
	return &HandCircuit{
		Commitment:  in.Commitment.BigInt(),
		Hand:        int(in.Hand),
		Parity:      int(in.Parity),
		TotalGuess:  int(in.TotalGuess),
		JackpotHit:  boolVar(in.JackpotHit),
		JackpotHash: in.JackpotHash.BigInt(),
	}
}

func boolVar(b bool) int {
	if b {
		return 1
	}
	return 0
}
