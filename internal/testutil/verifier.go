package testutil

import (
	"encoding/json"
	"errors"
	"math/big"

	"zk-porrinha/internal/commitment"
	"zk-porrinha/internal/game"
)

// StubVerifierName is the name StubVerifier is registered under in tests.
const StubVerifierName = "stub"

// StubVerifier accepts proofs made by StubProof: the public outputs in clear
// plus a validity bit. It lets handler tests exercise commits without a
// Groth16 setup.
type StubVerifier struct{}

type stubProof struct {
	Inputs game.PublicInputs `json:"inputs"`
	Valid  bool              `json:"valid"`
}

func (StubVerifier) PublicOutputs(proof []byte) (game.PublicInputs, error) {
	var p stubProof
	if err := json.Unmarshal(proof, &p); err != nil {
		return game.PublicInputs{}, err
	}
	return p.Inputs, nil
}

func (StubVerifier) Verify(proof []byte, inputs game.PublicInputs) (bool, error) {
	var p stubProof
	if err := json.Unmarshal(proof, &p); err != nil {
		return false, err
	}
	if p.Inputs != inputs {
		return false, errors.New("inputs differ")
	}
	return p.Valid, nil
}

// Hand is the private tuple a test player commits to.
type Hand struct {
	Hand, Parity, Total, Guess uint8
	Salt                       int64
}

// StubProof builds a commit request for room, with a real commitment and a
// stub proof bound to the room's jackpot hash and accumulator.
func StubProof(room *game.Room, player string, h Hand, valid bool) (game.CommitRequest, error) {
	digest, err := commitment.Hash(commitment.Tuple{
		Hand: h.Hand, Parity: h.Parity, TotalGuess: h.Total, JackpotGuess: h.Guess,
		Salt: big.NewInt(h.Salt),
	})
	if err != nil {
		return game.CommitRequest{}, err
	}
	inputs := game.PublicInputs{
		Commitment:  digest,
		Hand:        h.Hand,
		Parity:      h.Parity,
		TotalGuess:  h.Total,
		JackpotHit:  commitment.JackpotHit(h.Guess, room.JackpotAccumulated),
		JackpotHash: room.JackpotHash,
	}
	proof, err := json.Marshal(stubProof{Inputs: inputs, Valid: valid})
	if err != nil {
		return game.CommitRequest{}, err
	}
	return game.CommitRequest{
		RoomID:     room.ID,
		Player:     player,
		Commitment: digest,
		Proof:      proof,
		Hand:       int(h.Hand),
		Parity:     int(h.Parity),
		TotalGuess: int(h.Total),
		JackpotHit: inputs.JackpotHit,
	}, nil
}
