package game

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// KeccakEntropy seeds the increment from Keccak-256(room_id || round ||
// hand1 || hand2), all big-endian, and reduces the first 8 bytes mod 100.
type KeccakEntropy struct{}

func (KeccakEntropy) JackpotIncrement(roomID uint64, round uint32, hand1, hand2 uint8) uint64 {
	var seed [8 + 4 + 4 + 4]byte
	binary.BigEndian.PutUint64(seed[0:8], roomID)
	binary.BigEndian.PutUint32(seed[8:12], round)
	binary.BigEndian.PutUint32(seed[12:16], uint32(hand1))
	binary.BigEndian.PutUint32(seed[16:20], uint32(hand2))
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(seed[:])
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8]) % 100
}
