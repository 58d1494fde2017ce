package zk

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
)

// maxProofBytes bounds the proof section; a BN254 Groth16 proof is a few
// hundred bytes even with commitments.
const maxProofBytes = 1 << 12

// EncodeEnvelope lays out [u32 BE proof length][proof][public witness].
func EncodeEnvelope(proof groth16.Proof, public witness.Witness) ([]byte, error) {
	var pb bytes.Buffer
	if _, err := proof.WriteTo(&pb); err != nil {
		return nil, fmt.Errorf("encode proof: %w", err)
	}
	wb, err := public.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode public witness: %w", err)
	}
	out := make([]byte, 4, 4+pb.Len()+len(wb))
	binary.BigEndian.PutUint32(out, uint32(pb.Len()))
	out = append(out, pb.Bytes()...)
	return append(out, wb...), nil
}

// DecodeEnvelope splits an envelope into its proof and public witness.
func DecodeEnvelope(b []byte) (groth16.Proof, witness.Witness, error) {
	if len(b) < 4 {
		return nil, nil, ErrMalformedEnvelope
	}
	n := binary.BigEndian.Uint32(b)
	if n == 0 || n > maxProofBytes || int(n) > len(b)-4 {
		return nil, nil, ErrMalformedEnvelope
	}
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(b[4 : 4+n])); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	public, err := witness.New(ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, err
	}
	if err := public.UnmarshalBinary(b[4+n:]); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrPublicWitness, err)
	}
	return proof, public, nil
}
