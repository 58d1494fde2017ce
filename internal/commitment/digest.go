package commitment

import (
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
)

var ErrInvalidDigest = errors.New("invalid_digest")

// Digest is a 32-byte big-endian field element.
type Digest [32]byte

func (d Digest) String() string {
	return "0x" + hex.EncodeToString(d[:])
}

func (d Digest) IsZero() bool {
	return d == Digest{}
}

func (d Digest) BigInt() *big.Int {
	return new(big.Int).SetBytes(d[:])
}

func DigestFromBigInt(v *big.Int) (Digest, error) {
	var d Digest
	if v == nil || v.Sign() < 0 || v.BitLen() > 256 {
		return d, ErrInvalidDigest
	}
	v.FillBytes(d[:])
	return d, nil
}

func ParseDigest(s string) (Digest, error) {
	var d Digest
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if len(s) != 64 {
		return d, ErrInvalidDigest
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return d, ErrInvalidDigest
	}
	return d, nil
}

func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Digest) UnmarshalText(b []byte) error {
	parsed, err := ParseDigest(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
