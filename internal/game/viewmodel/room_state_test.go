package viewmodel

import (
	"encoding/json"
	"strings"
	"testing"

	"zk-porrinha/internal/commitment"
	"zk-porrinha/internal/game"
)

func u8(v uint8) *uint8 { return &v }

func commitRoom() *game.Room {
	c := commitment.JackpotHash(1)
	return &game.Room{
		ID:                 3,
		Status:             game.StatusCommit,
		BetAmount:          25_000_000,
		JackpotPool:        1,
		JackpotAccumulated: 4242,
		JackpotHash:        commitment.JackpotHash(4242),
		LastActionLedger:   10,
		Player1: &game.PlayerState{
			Address: "alice", HasCommitted: true, Commitment: &c,
			RevealedHand: u8(3), RevealedParity: u8(1), RevealedTotalGuess: u8(5), JackpotHit: true,
		},
		Player2: &game.PlayerState{Address: "bob"},
	}
}

func TestRoomViewHidesUnsettledReveals(t *testing.T) {
	room := commitRoom()

	public := BuildPublicRoom(room, 100)
	if len(public.Seats) != 2 {
		t.Fatalf("expected 2 seats, got %d", len(public.Seats))
	}
	if public.Seats[0].RevealedHand != nil || public.Seats[0].JackpotHit != nil {
		t.Fatalf("spectator sees commit-phase values: %+v", public.Seats[0])
	}
	if public.Seats[0].Commitment == "" || !public.Seats[0].HasCommitted {
		t.Fatal("commitment must stay visible")
	}
	if public.TimeoutLedger != 110 || public.TimeoutClaimant != "alice" {
		t.Fatalf("timeout = %d claimant = %q", public.TimeoutLedger, public.TimeoutClaimant)
	}

	if v := BuildRoomView(room, 100, "bob"); v.Seats[0].RevealedHand != nil {
		t.Fatal("opponent sees commit-phase values")
	}
	own := BuildRoomView(room, 100, "alice")
	if own.Seats[0].RevealedHand == nil || *own.Seats[0].RevealedHand != 3 {
		t.Fatalf("owner view: %+v", own.Seats[0])
	}
}

func TestRoomViewNeverLeaksAccumulator(t *testing.T) {
	room := commitRoom()
	room.Status = game.StatusSettled
	b, err := json.Marshal(BuildRoomView(room, 100, "alice"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), ":4242") || strings.Contains(string(b), "accumulated") {
		t.Fatalf("accumulator leaked: %s", b)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[int64]string{
		0:          "0.0000000",
		1:          "0.0000001",
		25_000_000: "2.5000000",
		-10:        "-0.0000010",
	}
	for in, want := range cases {
		if got := FormatAmount(in); got != want {
			t.Fatalf("FormatAmount(%d) = %q, want %q", in, got, want)
		}
	}
	if v := BuildPublicRoom(commitRoom(), 0); v.BetDisplay != "2.5000000" {
		t.Fatalf("bet display = %q", v.BetDisplay)
	}
}
