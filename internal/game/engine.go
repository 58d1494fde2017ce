package game

import (
	"context"
	"errors"
	"strconv"
	"time"
)

const (
	DefaultTimeoutLedgers uint32 = 100
	DefaultRakeBps        int64  = 4000

	refTypeRoom = "room"

	EntryBetEscrow     = "bet_escrow"
	EntryBetRefund     = "bet_refund"
	EntryPotPayout     = "pot_payout"
	EntryJackpotPayout = "jackpot_payout"
	EntryTimeoutPayout = "timeout_payout"
	EntryCancelRefund  = "cancel_refund"
)

type Options struct {
	Registry  Registry
	Ledger    LedgerFactory
	Verifiers map[string]Verifier
	Clock     Clock
	Entropy   Entropy
	Publisher Publisher

	TimeoutLedgers uint32
	// RakeBps is the share of the losing bet moved into the jackpot pool.
	RakeBps int64
}

// Engine applies room actions. Every mutating call runs inside a single
// Registry.Update; events are published only once that update commits.
type Engine struct {
	registry  Registry
	newLedger LedgerFactory
	verifiers map[string]Verifier
	clock     Clock
	entropy   Entropy
	publisher Publisher

	timeoutLedgers uint32
	rakeBps        int64
}

func NewEngine(opts Options) (*Engine, error) {
	if opts.Registry == nil {
		return nil, errors.New("game: registry is required")
	}
	if opts.Ledger == nil {
		return nil, errors.New("game: ledger factory is required")
	}
	if opts.RakeBps < 0 || opts.RakeBps > 10000 {
		return nil, errors.New("game: rake must be within [0, 10000] bps")
	}
	e := &Engine{
		registry:       opts.Registry,
		newLedger:      opts.Ledger,
		verifiers:      map[string]Verifier{},
		clock:          opts.Clock,
		entropy:        opts.Entropy,
		publisher:      opts.Publisher,
		timeoutLedgers: opts.TimeoutLedgers,
		rakeBps:        opts.RakeBps,
	}
	for name, v := range opts.Verifiers {
		if v != nil {
			e.verifiers[name] = v
		}
	}
	if e.clock == nil {
		e.clock = NewLedgerClock(time.Now(), 5*time.Second)
	}
	if e.entropy == nil {
		e.entropy = KeccakEntropy{}
	}
	if e.publisher == nil {
		e.publisher = nopPublisher{}
	}
	if e.timeoutLedgers == 0 {
		e.timeoutLedgers = DefaultTimeoutLedgers
	}
	return e, nil
}

func (e *Engine) TimeoutLedgers() uint32 {
	return e.timeoutLedgers
}

func (e *Engine) Sequence() uint32 {
	return e.clock.Sequence()
}

type emitter struct {
	seq    uint32
	events []Event
}

func (em *emitter) emit(typ string, roomID uint64, data any) {
	em.events = append(em.events, Event{Type: typ, RoomID: roomID, Ledger: em.seq, Data: data})
}

// update runs fn atomically and publishes what it emitted after commit.
func (e *Engine) update(ctx context.Context, fn func(tx RoomTx, em *emitter) error) error {
	em := &emitter{seq: e.clock.Sequence()}
	err := e.registry.Update(ctx, func(tx RoomTx) error {
		em.events = em.events[:0]
		return fn(tx, em)
	})
	if err != nil {
		return err
	}
	for _, ev := range em.events {
		e.publisher.Publish(ev)
	}
	return nil
}

func (e *Engine) ledgerFor(tx RoomTx, s Settings) (Ledger, error) {
	if s.Token == "" {
		return nil, ErrXLMTokenNotSet
	}
	return e.newLedger(tx, s.Token), nil
}

func (e *Engine) verifierFor(s Settings) (Verifier, error) {
	if s.Verifier == "" {
		return nil, ErrVerifierNotSet
	}
	v, ok := e.verifiers[s.Verifier]
	if !ok {
		return nil, ErrVerifierNotSet
	}
	return v, nil
}

func (e *Engine) HasVerifier(name string) bool {
	_, ok := e.verifiers[name]
	return ok
}

func refID(roomID uint64) string {
	return strconv.FormatUint(roomID, 10)
}
