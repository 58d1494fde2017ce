package zk

import (
	"errors"
	"math/big"
	"sync"
	"testing"

	"zk-porrinha/internal/commitment"
)

var (
	setupOnce sync.Once
	sharedPC  *ProofContext
	setupErr  error
)

func proofContext(t *testing.T) *ProofContext {
	t.Helper()
	if testing.Short() {
		t.Skip("groth16 setup is slow; skipped in -short mode")
	}
	setupOnce.Do(func() {
		sharedPC, setupErr = Setup()
	})
	if setupErr != nil {
		t.Fatalf("setup: %v", setupErr)
	}
	return sharedPC
}

func tuple(hand, parity, total, guess uint8) commitment.Tuple {
	return commitment.Tuple{Hand: hand, Parity: parity, TotalGuess: total, JackpotGuess: guess, Salt: big.NewInt(987654321)}
}

func TestProveAndVerify(t *testing.T) {
	pc := proofContext(t)
	prover, err := NewProver(pc)
	if err != nil {
		t.Fatalf("new prover: %v", err)
	}
	verifier, err := NewVerifier(pc)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	p, err := prover.Prove(tuple(3, 1, 5, 7), 107)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if !p.Inputs.JackpotHit {
		t.Fatal("guess 7 must hit accumulator 107")
	}
	out, err := verifier.PublicOutputs(p.Envelope)
	if err != nil {
		t.Fatalf("public outputs: %v", err)
	}
	if out != p.Inputs {
		t.Fatalf("outputs = %+v, want %+v", out, p.Inputs)
	}
	ok, err := verifier.Verify(p.Envelope, out)
	if err != nil || !ok {
		t.Fatalf("verify = %v, %v", ok, err)
	}

	tampered := out
	tampered.Hand = 4
	if ok, _ := verifier.Verify(p.Envelope, tampered); ok {
		t.Fatal("proof verified against a different hand")
	}
	tampered = out
	tampered.JackpotHit = false
	if ok, _ := verifier.Verify(p.Envelope, tampered); ok {
		t.Fatal("proof verified against a flipped jackpot hit")
	}
}

func TestProveMiss(t *testing.T) {
	pc := proofContext(t)
	prover, _ := NewProver(pc)
	p, err := prover.Prove(tuple(0, 0, 0, 8), 107)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if p.Inputs.JackpotHit {
		t.Fatal("guess 8 must miss accumulator 107")
	}
	v, _ := NewVerifier(pc)
	if ok, err := v.Verify(p.Envelope, p.Inputs); err != nil || !ok {
		t.Fatalf("verify = %v, %v", ok, err)
	}
}

func TestProveRejectsOutOfRangeTuple(t *testing.T) {
	pc := proofContext(t)
	prover, _ := NewProver(pc)
	if _, err := prover.Prove(tuple(6, 0, 0, 0), 0); !errors.Is(err, commitment.ErrInvalidHandValue) {
		t.Fatalf("err = %v", err)
	}
}

func TestSaveAndLoadContext(t *testing.T) {
	pc := proofContext(t)
	dir := t.TempDir()
	if err := pc.Save(dir); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadContext(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	prover, _ := NewProver(pc)
	p, err := prover.Prove(tuple(2, 0, 4, 1), 1)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	vonly, err := LoadVerifyingContext(dir)
	if err != nil {
		t.Fatalf("load vk: %v", err)
	}
	for _, ctx := range []*ProofContext{loaded, vonly} {
		v, err := NewVerifier(ctx)
		if err != nil {
			t.Fatalf("new verifier: %v", err)
		}
		if ok, err := v.Verify(p.Envelope, p.Inputs); err != nil || !ok {
			t.Fatalf("verify with loaded keys = %v, %v", ok, err)
		}
	}
	if _, err := NewProver(vonly); !errors.Is(err, ErrMissingKeys) {
		t.Fatalf("prover from verifying key err = %v", err)
	}
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	cases := [][]byte{
		nil,
		{0, 0},
		{0, 0, 0, 0, 1},
		{0, 0, 0xff, 0xff, 1, 2, 3},
		{0, 0, 0, 3, 1, 2, 3},
	}
	for _, b := range cases {
		if _, _, err := DecodeEnvelope(b); err == nil {
			t.Fatalf("decoded garbage %x", b)
		}
	}
}

func TestLoadContextMissingDir(t *testing.T) {
	if _, err := LoadContext(t.TempDir()); !errors.Is(err, ErrMissingKeys) {
		t.Fatalf("err = %v, want missing keys", err)
	}
}
