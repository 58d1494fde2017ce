package players

import (
	"context"
	"errors"
	"strings"
	"testing"

	"zk-porrinha/internal/kvstore"
	"zk-porrinha/internal/store"
)

func newService(t *testing.T, starting int64) (*Service, *kvstore.DB) {
	t.Helper()
	db, err := kvstore.OpenMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewService(db, starting), db
}

func TestRegisterIssuesUsableKey(t *testing.T) {
	svc, _ := newService(t, 500)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterInput{Name: "  alice "})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !strings.HasPrefix(resp.APIKey, apiKeyPrefix) || resp.Name != "alice" {
		t.Fatalf("unexpected register response: %+v", resp)
	}
	p, err := svc.Authenticate(ctx, resp.APIKey)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if p.ID != resp.PlayerID {
		t.Fatalf("authenticated %s, want %s", p.ID, resp.PlayerID)
	}
	me, err := svc.Me(ctx, p)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.Balance != 500 || me.BalanceDisplay != "0.0000500" {
		t.Fatalf("unexpected me: %+v", me)
	}
}

func TestRegisterRejectsBlankName(t *testing.T) {
	svc, _ := newService(t, 0)
	if _, err := svc.Register(context.Background(), RegisterInput{Name: "   "}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid_request, got %v", err)
	}
}

func TestAuthenticateUnknownKey(t *testing.T) {
	svc, _ := newService(t, 0)
	for _, key := range []string{"", "pk_nope"} {
		if _, err := svc.Authenticate(context.Background(), key); !errors.Is(err, ErrUnknownAPIKey) {
			t.Fatalf("key %q: expected unknown_api_key, got %v", key, err)
		}
	}
}

func TestTopUpAndLedger(t *testing.T) {
	svc, _ := newService(t, 0)
	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterInput{Name: "bob"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.TopUp(ctx, TopUpInput{AccountID: reg.PlayerID, Amount: 0}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid_amount, got %v", err)
	}
	if _, err := svc.TopUp(ctx, TopUpInput{AccountID: "ghost", Amount: 5}); !IsAccountMissing(err) {
		t.Fatalf("expected account_not_found, got %v", err)
	}
	out, err := svc.TopUp(ctx, TopUpInput{AccountID: reg.PlayerID, Amount: 75, RefID: "ops-1"})
	if err != nil {
		t.Fatalf("topup: %v", err)
	}
	if out.Balance != 75 {
		t.Fatalf("balance = %d", out.Balance)
	}

	led, err := svc.Ledger(ctx, store.LedgerFilter{AccountID: reg.PlayerID}, 0)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if led.Limit != defaultLedgerLimit || len(led.Items) != 1 {
		t.Fatalf("unexpected ledger: %+v", led)
	}
	if led.Items[0].Type != store.EntryTopUp || led.Items[0].Amount != 75 {
		t.Fatalf("unexpected entry: %+v", led.Items[0])
	}
	if _, err := svc.Ledger(ctx, store.LedgerFilter{}, -1); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid_request, got %v", err)
	}
}
