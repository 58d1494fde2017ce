package game

import (
	"context"
	"time"

	"zk-porrinha/internal/commitment"
)

// PublicInputs are the proof's public values, in circuit order.
type PublicInputs struct {
	Commitment  commitment.Digest `json:"commitment"`
	Hand        uint8             `json:"hand"`
	Parity      uint8             `json:"parity"`
	TotalGuess  uint8             `json:"total_guess"`
	JackpotHit  bool              `json:"jackpot_hit"`
	JackpotHash commitment.Digest `json:"jackpot_hash"`
}

// Verifier is the proof oracle. PublicOutputs decodes what a proof claims;
// Verify checks the proof against a full set of public inputs.
type Verifier interface {
	PublicOutputs(proof []byte) (PublicInputs, error)
	Verify(proof []byte, inputs PublicInputs) (bool, error)
}

// Accounts is a balance book keyed by account id.
type Accounts interface {
	Debit(ctx context.Context, accountID string, amount int64, entryType, refType, refID string) (int64, error)
	Credit(ctx context.Context, accountID string, amount int64, entryType, refType, refID string) (int64, error)
}

// Ledger moves stakes between players and the escrow pool account.
type Ledger interface {
	Escrow(ctx context.Context, player string, roomID uint64, amount int64, entryType string) error
	Payout(ctx context.Context, player string, roomID uint64, amount int64, entryType string) error
}

// LedgerFactory binds a Ledger to the accounts of one transaction.
type LedgerFactory func(accounts Accounts, pool string) Ledger

// RoomTx is the view of the registry inside one atomic update.
type RoomTx interface {
	Accounts
	EnsureAccount(ctx context.Context, accountID string, initial int64) error
	GetRoom(ctx context.Context, id uint64) (*Room, error)
	PutRoom(ctx context.Context, room *Room) error
	NextRoomID(ctx context.Context) (uint64, error)
	Settings(ctx context.Context) (Settings, error)
	PutSettings(ctx context.Context, s Settings) error
	// InitSettings writes the first settings and fails with
	// ErrAlreadyInitialized when any exist, including ones written by a
	// concurrent transaction.
	InitSettings(ctx context.Context, s Settings) error
}

// Registry stores rooms durably. Update runs fn atomically: every write made
// through tx commits together or not at all, and updates touching the same
// room are serialised.
type Registry interface {
	Update(ctx context.Context, fn func(tx RoomTx) error) error
	GetRoom(ctx context.Context, id uint64) (*Room, error)
	RoomCount(ctx context.Context) (uint64, error)
	Settings(ctx context.Context) (Settings, error)
}

// Settings is the contract-level configuration guarded by the admin.
type Settings struct {
	Admin    string `json:"admin"`
	Verifier string `json:"verifier"`
	Hub      string `json:"hub"`
	Token    string `json:"token"`
	CodeHash string `json:"code_hash,omitempty"`
	Version  uint32 `json:"version"`

	// LedgerGenesis anchors ledger time. It is fixed by Initialize and
	// reloaded on every start.
	LedgerGenesis time.Time `json:"ledger_genesis"`
}

func (s Settings) Initialized() bool {
	return s.Admin != ""
}

// Clock reports the current ledger sequence.
type Clock interface {
	Sequence() uint32
}

// AnchoredClock is a Clock whose sequence counts from a genesis instant that
// can be persisted and restored.
type AnchoredClock interface {
	Clock
	Genesis() time.Time
	Resume(genesis time.Time)
}

// Entropy derives the per-round jackpot accumulator increment, in [0, 100).
type Entropy interface {
	JackpotIncrement(roomID uint64, round uint32, hand1, hand2 uint8) uint64
}

type Publisher interface {
	Publish(ev Event)
}
