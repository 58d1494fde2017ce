// Package zk proves and verifies hand commitments with a Groth16 circuit
// over BN254.
package zk

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/consensys/gnark/std/math/bits"

	"zk-porrinha/internal/commitment"
)

// HandCircuit proves that a commitment opens to a tuple whose hand, parity
// and total guess equal the public values, and that JackpotHit is whether
// the secret jackpot guess matches the residue of the accumulator behind
// JackpotHash. The jackpot guess and salt stay private.
type HandCircuit struct {
	Commitment  frontend.Variable `gnark:",public"`
	Hand        frontend.Variable `gnark:",public"`
	Parity      frontend.Variable `gnark:",public"`
	TotalGuess  frontend.Variable `gnark:",public"`
	JackpotHit  frontend.Variable `gnark:",public"`
	JackpotHash frontend.Variable `gnark:",public"`

	JackpotGuess frontend.Variable `gnark:",secret"`
	Salt         frontend.Variable `gnark:",secret"`
	Accumulated  frontend.Variable `gnark:",secret"`
	Quotient     frontend.Variable `gnark:",secret"`
}

const publicInputs = 6

func (c *HandCircuit) Define(api frontend.API) error {
	api.AssertIsLessOrEqual(c.Hand, commitment.MaxHand)
	api.AssertIsBoolean(c.Parity)
	api.AssertIsLessOrEqual(c.TotalGuess, commitment.MaxTotalGuess)
	api.AssertIsLessOrEqual(c.JackpotGuess, commitment.JackpotSpace-1)
	api.AssertIsBoolean(c.JackpotHit)

	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	h.Write(c.Hand, c.Parity, c.TotalGuess, c.JackpotGuess, c.Salt)
	api.AssertIsEqual(h.Sum(), c.Commitment)

	h.Reset()
	h.Write(c.Accumulated)
	api.AssertIsEqual(h.Sum(), c.JackpotHash)

	// Accumulated = JackpotSpace*Quotient + residue, residue < JackpotSpace
	bits.ToBinary(api, c.Quotient, bits.WithNbDigits(64))
	residue := api.Sub(c.Accumulated, api.Mul(c.Quotient, commitment.JackpotSpace))
	api.AssertIsLessOrEqual(residue, commitment.JackpotSpace-1)

	hit := api.IsZero(api.Sub(c.JackpotGuess, residue))
	api.AssertIsEqual(c.JackpotHit, hit)
	return nil
}
