package game

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"zk-porrinha/internal/commitment"
)

func TestNewEngineValidatesOptions(t *testing.T) {
	if _, err := NewEngine(Options{}); err == nil {
		t.Fatal("expected error without registry")
	}
	_, err := NewEngine(Options{Registry: newMemRegistry(), Ledger: func(Accounts, string) Ledger { return nil }, RakeBps: 10001})
	if err == nil {
		t.Fatal("expected error for rake above 10000 bps")
	}
}

func TestCreateRoom(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	h.reg.fund("alice", 500)

	if _, err := h.eng.CreateRoom(ctx, "alice", 0); !errors.Is(err, ErrInvalidBet) {
		t.Fatalf("zero bet err = %v", err)
	}
	if _, err := h.eng.CreateRoom(ctx, "alice", 501); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("overdraw err = %v", err)
	}
	id, err := h.eng.CreateRoom(ctx, "alice", 500)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 1 {
		t.Fatalf("id = %d, want 1", id)
	}
	room, err := h.eng.GetRoom(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if room.Status != StatusLobby || room.Player1.Address != "alice" || room.Player2 != nil || room.Creator != "alice" {
		t.Fatalf("unexpected room: %+v", room)
	}
	if room.JackpotHash != commitment.JackpotHash(0) {
		t.Fatal("fresh room must commit to a zero accumulator")
	}
	if h.reg.balance("alice") != 0 || h.reg.balance(testPool) != 500 {
		t.Fatalf("escrow not applied: alice=%d pool=%d", h.reg.balance("alice"), h.reg.balance(testPool))
	}
	count, _ := h.eng.GetRoomCount(ctx)
	if count != 1 {
		t.Fatalf("count = %d", count)
	}
	if _, err := h.eng.GetRoom(ctx, 99); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("missing room err = %v", err)
	}
}

func TestCreateRoomRequiresToken(t *testing.T) {
	reg := newMemRegistry()
	reg.fund("alice", 10)
	eng, err := NewEngine(Options{Registry: reg, Ledger: func(Accounts, string) Ledger { return nil }})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := eng.CreateRoom(context.Background(), "alice", 10); !errors.Is(err, ErrXLMTokenNotSet) {
		t.Fatalf("err = %v, want xlm_token_not_set", err)
	}
}

func TestJoinRoomRules(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	h.reg.fund("alice", 100)
	h.reg.fund("bob", 100)
	h.reg.fund("carol", 100)
	id, err := h.eng.CreateRoom(ctx, "alice", 100)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := h.eng.JoinRoom(ctx, id, "alice", 100); !errors.Is(err, ErrSelfPlayForbidden) {
		t.Fatalf("self join err = %v", err)
	}
	if err := h.eng.JoinRoom(ctx, id, "bob", 99); !errors.Is(err, ErrInvalidBet) {
		t.Fatalf("wrong bet err = %v", err)
	}
	if err := h.eng.JoinRoom(ctx, 42, "bob", 100); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("missing room err = %v", err)
	}
	if err := h.eng.JoinRoom(ctx, id, "bob", 0); err != nil {
		t.Fatalf("join: %v", err)
	}
	room, _ := h.eng.GetRoom(ctx, id)
	if room.Status != StatusCommit || room.Player2.Address != "bob" {
		t.Fatalf("unexpected room: %+v", room)
	}
	if err := h.eng.JoinRoom(ctx, id, "carol", 100); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("third join err = %v", err)
	}
	if h.reg.balance(testPool) != 200 || h.reg.balance("carol") != 100 {
		t.Fatalf("balances: pool=%d carol=%d", h.reg.balance(testPool), h.reg.balance("carol"))
	}
	if !h.pub.has(EventHubStartGame) {
		t.Fatalf("events: %v", h.pub.types())
	}
}

func TestCommitRecordsProofOutputs(t *testing.T) {
	h := newHarness(t, 0)
	id := h.openRoom(t, "alice", "bob", 10)
	res := h.commit(t, id, "alice", hand{hand: 4, parity: 0, total: 8, guess: 9, salt: 5})
	if res.Settled {
		t.Fatal("one commit must not settle")
	}
	p1 := res.Room.Player1
	if !p1.HasCommitted || p1.Commitment == nil || *p1.RevealedHand != 4 || *p1.RevealedTotalGuess != 8 {
		t.Fatalf("unexpected seat: %+v", p1)
	}
	if res.Room.Status != StatusCommit {
		t.Fatalf("status = %s", res.Room.Status)
	}
}

func TestNoDoubleCommit(t *testing.T) {
	h := newHarness(t, 0)
	id := h.openRoom(t, "alice", "bob", 10)
	h.commit(t, id, "alice", hand{hand: 1, parity: 1, total: 3, guess: 1, salt: 1})
	before, _ := h.eng.GetRoom(context.Background(), id)

	req := h.commitReq(t, id, "alice", hand{hand: 2, parity: 0, total: 4, guess: 2, salt: 2}, true)
	if _, err := h.eng.CommitHand(context.Background(), req); !errors.Is(err, ErrAlreadyCommitted) {
		t.Fatalf("err = %v, want already_committed", err)
	}
	after, _ := h.eng.GetRoom(context.Background(), id)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("room changed: %+v -> %+v", before, after)
	}
}

func TestInvalidProofLeavesRoomUnchanged(t *testing.T) {
	h := newHarness(t, 0)
	id := h.openRoom(t, "alice", "bob", 10)
	ctx := context.Background()
	before, _ := h.eng.GetRoom(ctx, id)
	events := len(h.pub.types())

	req := h.commitReq(t, id, "alice", hand{hand: 1, parity: 1, total: 3, guess: 1, salt: 1}, false)
	if _, err := h.eng.CommitHand(ctx, req); !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("err = %v, want invalid_proof", err)
	}
	req.Proof = []byte("not a proof")
	if _, err := h.eng.CommitHand(ctx, req); !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("garbage proof err = %v", err)
	}
	req.Proof = nil
	if _, err := h.eng.CommitHand(ctx, req); !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("empty proof err = %v", err)
	}

	after, _ := h.eng.GetRoom(ctx, id)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("room changed: %+v -> %+v", before, after)
	}
	if len(h.pub.types()) != events {
		t.Fatalf("rejected commit published events: %v", h.pub.types()[events:])
	}
}

func TestCommitCrossChecks(t *testing.T) {
	h := newHarness(t, 0)
	id := h.openRoom(t, "alice", "bob", 10)
	ctx := context.Background()
	in := hand{hand: 1, parity: 1, total: 3, guess: 1, salt: 1}

	req := h.commitReq(t, id, "alice", in, true)
	req.Commitment[31] ^= 1
	if _, err := h.eng.CommitHand(ctx, req); !errors.Is(err, ErrCommitmentMismatch) {
		t.Fatalf("mismatch err = %v", err)
	}

	req = h.commitReq(t, id, "alice", in, true)
	req.Hand = 2
	if _, err := h.eng.CommitHand(ctx, req); !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("declared hand err = %v", err)
	}

	req = h.commitReq(t, id, "alice", in, true)
	req.Hand = 6
	if _, err := h.eng.CommitHand(ctx, req); !errors.Is(err, ErrInvalidHandValue) {
		t.Fatalf("hand range err = %v", err)
	}
	req = h.commitReq(t, id, "alice", in, true)
	req.TotalGuess = 11
	if _, err := h.eng.CommitHand(ctx, req); !errors.Is(err, ErrInvalidGuess) {
		t.Fatalf("guess range err = %v", err)
	}

	req = h.commitReq(t, id, "carol", in, true)
	if _, err := h.eng.CommitHand(ctx, req); !errors.Is(err, ErrNotPlayer) {
		t.Fatalf("outsider err = %v", err)
	}
}

func TestCommitRejectsStaleJackpotHash(t *testing.T) {
	h := newHarness(t, 0)
	id := h.openRoom(t, "alice", "bob", 10)
	req := h.commitReq(t, id, "alice", hand{hand: 1, parity: 1, total: 3, guess: 1, salt: 1}, true)

	// rebuild the stub proof against a different accumulator
	out, err := stubVerifier{}.PublicOutputs(req.Proof)
	if err != nil {
		t.Fatalf("outputs: %v", err)
	}
	out.JackpotHash = commitment.JackpotHash(12)
	req.Proof = mustProof(t, out)
	if _, err := h.eng.CommitHand(context.Background(), req); !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("err = %v, want invalid_proof", err)
	}
}

func TestCommitRejectsCopiedOpponentCommitment(t *testing.T) {
	h := newHarness(t, 0)
	id := h.openRoom(t, "alice", "bob", 10)
	in := hand{hand: 1, parity: 1, total: 3, guess: 1, salt: 1}
	h.commit(t, id, "alice", in)
	req := h.commitReq(t, id, "bob", in, true)
	if _, err := h.eng.CommitHand(context.Background(), req); !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("err = %v, want invalid_proof", err)
	}
}

func TestCommitOutsideCommitPhase(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	h.reg.fund("alice", 10)
	id, err := h.eng.CreateRoom(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	req := h.commitReq(t, id, "alice", hand{hand: 1, parity: 1, total: 3, guess: 1, salt: 1}, true)
	if _, err := h.eng.CommitHand(ctx, req); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("lobby commit err = %v", err)
	}

	// a missing proof does not mask the phase or a missing room
	req.Proof = nil
	if _, err := h.eng.CommitHand(ctx, req); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("lobby commit without proof err = %v", err)
	}
	req.RoomID = id + 100
	if _, err := h.eng.CommitHand(ctx, req); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("missing room without proof err = %v", err)
	}
}

func TestStatusNeverMovesBackwardWithinRound(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	h.reg.fund("alice", 10)
	h.reg.fund("bob", 10)
	id, _ := h.eng.CreateRoom(ctx, "alice", 10)

	var seen []Status
	record := func() {
		room, err := h.eng.GetRoom(ctx, id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		seen = append(seen, room.Status)
	}
	record()
	if err := h.eng.JoinRoom(ctx, id, "bob", 10); err != nil {
		t.Fatalf("join: %v", err)
	}
	record()
	h.commit(t, id, "alice", hand{hand: 2, parity: 0, total: 4, guess: 50, salt: 3})
	record()
	h.commit(t, id, "bob", hand{hand: 2, parity: 1, total: 4, guess: 50, salt: 4})
	record()

	want := []Status{StatusLobby, StatusCommit, StatusCommit, StatusSettled}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("statuses = %v, want %v", seen, want)
	}
	if err := h.eng.JoinRoom(ctx, id, "carol", 10); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("join settled err = %v", err)
	}
}

func TestCancelRoom(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	h.reg.fund("alice", 10)
	id, _ := h.eng.CreateRoom(ctx, "alice", 10)

	if err := h.eng.CancelRoom(ctx, id, "bob"); !errors.Is(err, ErrNotPlayer) {
		t.Fatalf("outsider cancel err = %v", err)
	}
	if err := h.eng.CancelRoom(ctx, id, "alice"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	room, _ := h.eng.GetRoom(ctx, id)
	if room.Status != StatusSettled || h.reg.balance("alice") != 10 {
		t.Fatalf("room=%s alice=%d", room.Status, h.reg.balance("alice"))
	}
	if err := h.eng.CancelRoom(ctx, id, "alice"); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("second cancel err = %v", err)
	}
}

func TestListRecentRooms(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	h.reg.fund("alice", 30)
	for i := 0; i < 3; i++ {
		if _, err := h.eng.CreateRoom(ctx, "alice", 10); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	rooms, err := h.eng.ListRecentRooms(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rooms) != 2 || rooms[0].ID != 3 || rooms[1].ID != 2 {
		t.Fatalf("unexpected rooms: %+v", rooms)
	}
}

func TestGetJackpotHashFollowsAccumulator(t *testing.T) {
	h := newHarness(t, DefaultRakeBps)
	id := h.openRoom(t, "alice", "bob", 10)
	h.commit(t, id, "alice", hand{hand: 3, parity: 1, total: 5, guess: 50, salt: 1})
	h.commit(t, id, "bob", hand{hand: 2, parity: 0, total: 6, guess: 50, salt: 2})

	got, err := h.eng.GetJackpotHash(context.Background(), id)
	if err != nil {
		t.Fatalf("jackpot hash: %v", err)
	}
	if got != commitment.JackpotHash(7) {
		t.Fatalf("hash = %s", got)
	}
	if got == commitment.JackpotHash(0) {
		t.Fatal("hash did not rotate")
	}
}

func TestPublishOnlyAfterCommit(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	h.reg.fund("alice", 5)
	n := len(h.pub.types())
	if _, err := h.eng.CreateRoom(ctx, "alice", 10); err == nil {
		t.Fatal("expected insufficient funds")
	}
	if len(h.pub.types()) != n {
		t.Fatalf("failed update published: %v", h.pub.types()[n:])
	}
}
