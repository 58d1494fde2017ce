package game

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"testing"

	"zk-porrinha/internal/commitment"
	"zk-porrinha/internal/ledger"
)

const (
	testPool     = "pool"
	testAdmin    = "admin"
	testVerifier = "stub"
	testHub      = "hub"
)

// memRegistry keeps committed state in maps and hands each Update a private
// copy, swapping it in only when fn succeeds.
type memRegistry struct {
	mu    sync.Mutex
	state memState
}

type memState struct {
	rooms    map[uint64]*Room
	counter  uint64
	settings Settings
	balances map[string]int64
}

func newMemRegistry() *memRegistry {
	return &memRegistry{state: memState{rooms: map[uint64]*Room{}, balances: map[string]int64{}}}
}

func (s memState) clone() memState {
	out := memState{
		rooms:    make(map[uint64]*Room, len(s.rooms)),
		counter:  s.counter,
		settings: s.settings,
		balances: make(map[string]int64, len(s.balances)),
	}
	for id, r := range s.rooms {
		out.rooms[id] = r.Clone()
	}
	for k, v := range s.balances {
		out.balances[k] = v
	}
	return out
}

func (m *memRegistry) Update(_ context.Context, fn func(tx RoomTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memTx{state: m.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	m.state = tx.state
	return nil
}

func (m *memRegistry) GetRoom(_ context.Context, id uint64) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.state.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r.Clone(), nil
}

func (m *memRegistry) RoomCount(context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.counter, nil
}

func (m *memRegistry) Settings(context.Context) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.settings, nil
}

func (m *memRegistry) balance(id string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.balances[id]
}

func (m *memRegistry) fund(id string, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.balances[id] += amount
}

type memTx struct {
	state memState
}

func (tx *memTx) Debit(_ context.Context, id string, amount int64, _, _, _ string) (int64, error) {
	bal, ok := tx.state.balances[id]
	if !ok {
		return 0, ErrAccountNotFound
	}
	if bal < amount {
		return 0, ErrInsufficientFunds
	}
	tx.state.balances[id] = bal - amount
	return bal - amount, nil
}

func (tx *memTx) Credit(_ context.Context, id string, amount int64, _, _, _ string) (int64, error) {
	tx.state.balances[id] += amount
	return tx.state.balances[id], nil
}

func (tx *memTx) EnsureAccount(_ context.Context, id string, initial int64) error {
	if _, ok := tx.state.balances[id]; !ok {
		tx.state.balances[id] = initial
	}
	return nil
}

func (tx *memTx) GetRoom(_ context.Context, id uint64) (*Room, error) {
	r, ok := tx.state.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

func (tx *memTx) PutRoom(_ context.Context, r *Room) error {
	tx.state.rooms[r.ID] = r
	return nil
}

func (tx *memTx) NextRoomID(context.Context) (uint64, error) {
	tx.state.counter++
	return tx.state.counter, nil
}

func (tx *memTx) Settings(context.Context) (Settings, error) {
	return tx.state.settings, nil
}

func (tx *memTx) PutSettings(_ context.Context, s Settings) error {
	tx.state.settings = s
	return nil
}

func (tx *memTx) InitSettings(_ context.Context, s Settings) error {
	if tx.state.settings.Initialized() {
		return ErrAlreadyInitialized
	}
	tx.state.settings = s
	return nil
}

// stubProof is what stubVerifier accepts as a proof: the public outputs in
// clear plus a validity bit.
type stubProof struct {
	Inputs PublicInputs `json:"inputs"`
	Valid  bool         `json:"valid"`
}

type stubVerifier struct{}

func (stubVerifier) PublicOutputs(proof []byte) (PublicInputs, error) {
	var p stubProof
	if err := json.Unmarshal(proof, &p); err != nil {
		return PublicInputs{}, err
	}
	return p.Inputs, nil
}

func (stubVerifier) Verify(proof []byte, inputs PublicInputs) (bool, error) {
	var p stubProof
	if err := json.Unmarshal(proof, &p); err != nil {
		return false, err
	}
	if p.Inputs != inputs {
		return false, errors.New("inputs differ")
	}
	return p.Valid, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func (p *recordingPublisher) has(typ string) bool {
	for _, t := range p.types() {
		if t == typ {
			return true
		}
	}
	return false
}

// fixedEntropy always adds the same increment.
type fixedEntropy uint64

func (f fixedEntropy) JackpotIncrement(uint64, uint32, uint8, uint8) uint64 {
	return uint64(f)
}

type harness struct {
	eng   *Engine
	reg   *memRegistry
	clock *ManualClock
	pub   *recordingPublisher
}

func newHarness(t *testing.T, rakeBps int64) *harness {
	t.Helper()
	h := &harness{reg: newMemRegistry(), clock: NewManualClock(1000), pub: &recordingPublisher{}}
	eng, err := NewEngine(Options{
		Registry:  h.reg,
		Ledger:    func(a Accounts, pool string) Ledger { return ledger.New(a, pool) },
		Verifiers: map[string]Verifier{testVerifier: stubVerifier{}},
		Clock:     h.clock,
		Entropy:   fixedEntropy(7),
		Publisher: h.pub,
		RakeBps:   rakeBps,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	h.eng = eng
	err = eng.Initialize(context.Background(), Settings{Admin: testAdmin, Verifier: testVerifier, Hub: testHub, Token: testPool})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return h
}

// openRoom creates a room for a and seats b, both funded with exactly bet.
func (h *harness) openRoom(t *testing.T, a, b string, bet int64) uint64 {
	t.Helper()
	ctx := context.Background()
	h.reg.fund(a, bet)
	h.reg.fund(b, bet)
	id, err := h.eng.CreateRoom(ctx, a, bet)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if err := h.eng.JoinRoom(ctx, id, b, bet); err != nil {
		t.Fatalf("join room: %v", err)
	}
	return id
}

type hand struct {
	hand, parity, total, guess uint8
	salt                       int64
}

// commitReq builds a commit with a real MiMC commitment and a stub proof
// bound to the room's current jackpot hash.
func (h *harness) commitReq(t *testing.T, roomID uint64, player string, in hand, valid bool) CommitRequest {
	t.Helper()
	room, err := h.eng.GetRoom(context.Background(), roomID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	digest, err := commitment.Hash(commitment.Tuple{
		Hand: in.hand, Parity: in.parity, TotalGuess: in.total, JackpotGuess: in.guess,
		Salt: big.NewInt(in.salt),
	})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	hit := commitment.JackpotHit(in.guess, room.JackpotAccumulated)
	inputs := PublicInputs{
		Commitment:  digest,
		Hand:        in.hand,
		Parity:      in.parity,
		TotalGuess:  in.total,
		JackpotHit:  hit,
		JackpotHash: room.JackpotHash,
	}
	proof, err := json.Marshal(stubProof{Inputs: inputs, Valid: valid})
	if err != nil {
		t.Fatalf("marshal proof: %v", err)
	}
	return CommitRequest{
		RoomID:     roomID,
		Player:     player,
		Commitment: digest,
		Proof:      proof,
		Hand:       int(in.hand),
		Parity:     int(in.parity),
		TotalGuess: int(in.total),
		JackpotHit: hit,
	}
}

func (h *harness) commit(t *testing.T, roomID uint64, player string, in hand) *CommitResult {
	t.Helper()
	res, err := h.eng.CommitHand(context.Background(), h.commitReq(t, roomID, player, in, true))
	if err != nil {
		t.Fatalf("commit %s: %v", player, err)
	}
	return res
}

func mustProof(t *testing.T, inputs PublicInputs) []byte {
	t.Helper()
	b, err := json.Marshal(stubProof{Inputs: inputs, Valid: true})
	if err != nil {
		t.Fatalf("marshal proof: %v", err)
	}
	return b
}
