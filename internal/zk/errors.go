package zk

import "errors"

var (
	ErrMalformedEnvelope = errors.New("malformed_proof_envelope")
	ErrPublicWitness     = errors.New("invalid_public_witness")
	ErrMissingKeys       = errors.New("zk_keys_missing")

	errNotSmall = errors.New("public value out of range")
)
