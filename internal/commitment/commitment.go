// Package commitment implements the hiding/binding commitment players publish
// before a round settles. Values are BN254 scalar field elements absorbed by
// MiMC in a fixed order, so the same digest can be recomputed inside the
// proving circuit.
package commitment

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

const (
	MaxHand       = 5
	MaxParity     = 1
	MaxTotalGuess = 10
	// JackpotSpace is the size of the rotating jackpot number space.
	JackpotSpace = 100

	// SaltBytes gives 248 bits of entropy while staying below the field modulus.
	SaltBytes = 31
)

var (
	ErrInvalidHandValue = errors.New("invalid_hand_value")
	ErrInvalidGuess     = errors.New("invalid_guess")
	ErrSaltOutOfRange   = errors.New("salt_out_of_range")
	ErrInvalidSalt      = errors.New("invalid_salt")
)

// Tuple is the private opening of a commitment.
type Tuple struct {
	Hand         uint8
	Parity       uint8
	TotalGuess   uint8
	JackpotGuess uint8
	Salt         *big.Int
}

// ValidateReveal checks the publicly revealed part of a tuple.
func ValidateReveal(hand, parity, totalGuess uint8) error {
	if hand > MaxHand {
		return ErrInvalidHandValue
	}
	if parity > MaxParity || totalGuess > MaxTotalGuess {
		return ErrInvalidGuess
	}
	return nil
}

func (t Tuple) Validate() error {
	if err := ValidateReveal(t.Hand, t.Parity, t.TotalGuess); err != nil {
		return err
	}
	if t.JackpotGuess >= JackpotSpace {
		return ErrInvalidGuess
	}
	return CheckSalt(t.Salt)
}

// CheckSalt rejects salts that would be reduced modulo the field.
func CheckSalt(salt *big.Int) error {
	if salt == nil || salt.Sign() < 0 || salt.Cmp(fr.Modulus()) >= 0 {
		return ErrSaltOutOfRange
	}
	return nil
}

// Hash returns MiMC(hand, parity, total_guess, jackpot_guess, salt).
func Hash(t Tuple) (Digest, error) {
	if err := t.Validate(); err != nil {
		return Digest{}, err
	}
	var salt fr.Element
	salt.SetBigInt(t.Salt)
	return sum(
		elementOf(uint64(t.Hand)),
		elementOf(uint64(t.Parity)),
		elementOf(uint64(t.TotalGuess)),
		elementOf(uint64(t.JackpotGuess)),
		salt,
	), nil
}

// NewSalt draws SaltBytes of entropy from r (crypto/rand when nil).
func NewSalt(r io.Reader) (*big.Int, error) {
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, SaltBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read salt entropy: %w", err)
	}
	return new(big.Int).SetBytes(buf), nil
}

// ParseSalt accepts 0x-prefixed hex or decimal.
func ParseSalt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	if s == "" {
		return nil, ErrInvalidSalt
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, ErrInvalidSalt
	}
	if err := CheckSalt(v); err != nil {
		return nil, err
	}
	return v, nil
}

func FormatSalt(salt *big.Int) string {
	return fmt.Sprintf("0x%x", salt)
}

// JackpotHash commits to the full accumulator, not its residue.
func JackpotHash(accumulated uint64) Digest {
	return sum(elementOf(accumulated))
}

func Residue(accumulated uint64) uint8 {
	return uint8(accumulated % JackpotSpace)
}

func JackpotHit(guess uint8, accumulated uint64) bool {
	return guess == Residue(accumulated)
}

// RecoverAccumulator searches [0, max] for the accumulator behind h. Each
// round adds at most JackpotSpace-1, so max = rounds*(JackpotSpace-1) bounds it.
func RecoverAccumulator(h Digest, max uint64) (uint64, bool) {
	for acc := uint64(0); acc <= max; acc++ {
		if JackpotHash(acc) == h {
			return acc, true
		}
		if acc == ^uint64(0) {
			break
		}
	}
	return 0, false
}

func elementOf(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func sum(elems ...fr.Element) Digest {
	h := mimc.NewMiMC()
	for i := range elems {
		b := elems[i].Bytes()
		// canonical elements never fail
		_, _ = h.Write(b[:])
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}
