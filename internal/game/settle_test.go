package game

import (
	"context"
	"testing"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name   string
		p1, p2 Reveal
		winner int
		rule   Rule
		total  uint8
	}{
		{"lone parity p1", Reveal{Hand: 3, Parity: 1, TotalGuess: 5}, Reveal{Hand: 2, Parity: 0, TotalGuess: 6}, 1, RuleParity, 5},
		{"lone parity p2", Reveal{Hand: 1, Parity: 1, TotalGuess: 2}, Reveal{Hand: 1, Parity: 0, TotalGuess: 9}, 2, RuleParity, 2},
		{"both wrong closer p1", Reveal{Hand: 3, Parity: 0, TotalGuess: 6}, Reveal{Hand: 4, Parity: 0, TotalGuess: 4}, 1, RuleCloseness, 7},
		{"both right closer p2", Reveal{Hand: 5, Parity: 0, TotalGuess: 0}, Reveal{Hand: 5, Parity: 0, TotalGuess: 9}, 2, RuleCloseness, 10},
		{"equal distance draws", Reveal{Hand: 2, Parity: 0, TotalGuess: 3}, Reveal{Hand: 3, Parity: 0, TotalGuess: 7}, 0, RuleDraw, 5},
		{"identical guesses draw", Reveal{Hand: 0, Parity: 0, TotalGuess: 0}, Reveal{Hand: 0, Parity: 0, TotalGuess: 0}, 0, RuleDraw, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Resolve(tc.p1, tc.p2)
			if out.Winner != tc.winner || out.Rule != tc.rule || out.TotalFingers != tc.total {
				t.Fatalf("got %+v, want winner=%d rule=%s total=%d", out, tc.winner, tc.rule, tc.total)
			}
			if out.ActualParity != tc.total%2 {
				t.Fatalf("parity = %d", out.ActualParity)
			}
		})
	}
}

func seatedRoom(bet, pool int64, hit1, hit2 bool) *Room {
	return &Room{
		ID:          1,
		Status:      StatusCommit,
		BetAmount:   bet,
		JackpotPool: pool,
		Player1:     &PlayerState{Address: "a", HasCommitted: true, JackpotHit: hit1},
		Player2:     &PlayerState{Address: "b", HasCommitted: true, JackpotHit: hit2},
	}
}

func TestPlanSettlementWinnerWithRake(t *testing.T) {
	plan, err := PlanSettlement(seatedRoom(1000, 50, false, true), Outcome{Winner: 1, Rule: RuleParity}, 4000)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.Winner != "a" || plan.Rake != 400 || plan.WinnerPayout != 1600 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	// the loser's hit is worthless
	if plan.JackpotPaid != 0 || plan.PoolAfter != 450 {
		t.Fatalf("pool: paid=%d after=%d", plan.JackpotPaid, plan.PoolAfter)
	}
	if len(plan.Transfers) != 1 || plan.Transfers[0].EntryType != EntryPotPayout {
		t.Fatalf("transfers: %+v", plan.Transfers)
	}
}

func TestPlanSettlementWinnerTakesJackpot(t *testing.T) {
	plan, err := PlanSettlement(seatedRoom(1000, 900, false, true), Outcome{Winner: 2, Rule: RuleCloseness}, 4000)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.JackpotPaid != 900 || plan.JackpotSplit || plan.PoolAfter != 400 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	var total int64
	for _, tr := range plan.Transfers {
		if tr.To != "b" {
			t.Fatalf("transfer to %s", tr.To)
		}
		total += tr.Amount
	}
	if total != 1600+900 {
		t.Fatalf("total = %d", total)
	}
}

func TestPlanSettlementDrawSplitsJackpot(t *testing.T) {
	plan, err := PlanSettlement(seatedRoom(1000, 901, true, true), Outcome{Rule: RuleDraw}, 4000)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !plan.JackpotSplit || plan.JackpotPaid != 901 || plan.PoolAfter != 0 || plan.Rake != 0 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	got := map[string]int64{}
	for _, tr := range plan.Transfers {
		got[tr.To] += tr.Amount
	}
	if got["a"] != 1000+451 || got["b"] != 1000+450 {
		t.Fatalf("split: %+v", got)
	}
}

func TestPlanSettlementDrawSingleHitKeepsPool(t *testing.T) {
	plan, err := PlanSettlement(seatedRoom(1000, 300, true, false), Outcome{Rule: RuleDraw}, 4000)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.JackpotPaid != 0 || plan.PoolAfter != 300 || len(plan.Transfers) != 2 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestPlanSettlementOverflow(t *testing.T) {
	if _, err := PlanSettlement(seatedRoom(1<<62, 0, false, false), Outcome{Winner: 1, Rule: RuleParity}, 0); err != ErrAmountOverflow {
		t.Fatalf("err = %v, want overflow", err)
	}
}

func TestParityWinnerReceivesBothBets(t *testing.T) {
	h := newHarness(t, 0)
	const bet = 1_000_000
	id := h.openRoom(t, "alice", "bob", bet)

	h.commit(t, id, "alice", hand{hand: 3, parity: 1, total: 5, guess: 50, salt: 11})
	res := h.commit(t, id, "bob", hand{hand: 2, parity: 0, total: 6, guess: 51, salt: 12})

	if !res.Settled || res.Settlement.Winner != "alice" || res.Settlement.Outcome.Rule != RuleParity {
		t.Fatalf("unexpected result: %+v", res.Settlement)
	}
	if got := h.reg.balance("alice"); got != 2_000_000 {
		t.Fatalf("alice balance = %d, want 2000000", got)
	}
	if got := h.reg.balance("bob"); got != 0 {
		t.Fatalf("bob balance = %d, want 0", got)
	}
	if got := h.reg.balance(testPool); got != 0 {
		t.Fatalf("pool balance = %d, want 0", got)
	}
	room, err := h.eng.GetRoom(context.Background(), id)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if room.Status != StatusSettled || room.RoundsPlayed != 1 || room.LastWinner == nil || *room.LastWinner != "alice" {
		t.Fatalf("unexpected room: %+v", room)
	}
	if !h.pub.has(EventParityWinner) || !h.pub.has(EventRoomClosed) {
		t.Fatalf("events: %v", h.pub.types())
	}
}

func TestClosenessBreaksParityTie(t *testing.T) {
	h := newHarness(t, 0)
	id := h.openRoom(t, "alice", "bob", 100)

	h.commit(t, id, "alice", hand{hand: 3, parity: 0, total: 6, guess: 50, salt: 21})
	res := h.commit(t, id, "bob", hand{hand: 4, parity: 0, total: 4, guess: 50, salt: 22})

	if res.Settlement.Outcome.TotalFingers != 7 || res.Settlement.Outcome.Rule != RuleCloseness || res.Settlement.Winner != "alice" {
		t.Fatalf("unexpected outcome: %+v", res.Settlement)
	}
	if h.reg.balance("alice") != 200 {
		t.Fatalf("alice balance = %d", h.reg.balance("alice"))
	}
}

func TestRakeFeedsPoolAndResetsRoom(t *testing.T) {
	h := newHarness(t, DefaultRakeBps)
	id := h.openRoom(t, "alice", "bob", 1000)

	h.commit(t, id, "alice", hand{hand: 3, parity: 1, total: 5, guess: 50, salt: 31})
	res := h.commit(t, id, "bob", hand{hand: 2, parity: 0, total: 6, guess: 51, salt: 32})
	if res.Settlement.Rake != 400 || res.Settlement.WinnerPayout != 1600 {
		t.Fatalf("unexpected settlement: %+v", res.Settlement)
	}

	room, _ := h.eng.GetRoom(context.Background(), id)
	if room.Status != StatusLobby || room.Player1 != nil || room.Player2 != nil {
		t.Fatalf("room not reset: %+v", room)
	}
	if room.JackpotPool != 400 || h.reg.balance(testPool) != 400 {
		t.Fatalf("pool = %d, account = %d", room.JackpotPool, h.reg.balance(testPool))
	}
	if room.JackpotAccumulated != 7 || room.LastRound == nil || room.LastRound.Rake != 400 {
		t.Fatalf("unexpected round state: %+v", room)
	}
	if !h.pub.has(EventRoomReset) {
		t.Fatalf("events: %v", h.pub.types())
	}
}

func TestJackpotHitWinsPoolInNextRound(t *testing.T) {
	h := newHarness(t, DefaultRakeBps)
	id := h.openRoom(t, "alice", "bob", 1000)
	h.commit(t, id, "alice", hand{hand: 3, parity: 1, total: 5, guess: 50, salt: 41})
	h.commit(t, id, "bob", hand{hand: 2, parity: 0, total: 6, guess: 51, salt: 42})

	// accumulator is now 7; the next round's hit guess is 7
	ctx := context.Background()
	h.reg.fund("carol", 1000)
	h.reg.fund("dave", 1000)
	if err := h.eng.JoinRoom(ctx, id, "carol", 0); err != nil {
		t.Fatalf("carol join: %v", err)
	}
	if err := h.eng.JoinRoom(ctx, id, "dave", 0); err != nil {
		t.Fatalf("dave join: %v", err)
	}
	h.commit(t, id, "carol", hand{hand: 1, parity: 1, total: 1, guess: 7, salt: 43})
	res := h.commit(t, id, "dave", hand{hand: 0, parity: 0, total: 0, guess: 8, salt: 44})

	if res.Settlement.Winner != "carol" || res.Settlement.JackpotPaid != 400 {
		t.Fatalf("unexpected settlement: %+v", res.Settlement)
	}
	if got := h.reg.balance("carol"); got != 1600+400 {
		t.Fatalf("carol balance = %d", got)
	}
	room, _ := h.eng.GetRoom(ctx, id)
	if room.JackpotPool != 400 || room.JackpotAccumulated != 14 || room.RoundsPlayed != 2 {
		t.Fatalf("unexpected room: %+v", room)
	}
	if !h.pub.has(EventJackpotWon) {
		t.Fatalf("events: %v", h.pub.types())
	}
}
