package players

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"zk-porrinha/internal/game"
	"zk-porrinha/internal/game/viewmodel"
	"zk-porrinha/internal/store"
)

const (
	apiKeyPrefix       = "pk_"
	maxNameLen         = 64
	defaultLedgerLimit = 50
	maxLedgerLimit     = 500
)

// Store is the player and account surface shared by the Postgres and
// leveldb backends.
type Store interface {
	CreatePlayer(ctx context.Context, name, apiKeyHash string, initial int64) (*store.Player, error)
	GetPlayerByAPIKey(ctx context.Context, apiKey string) (*store.Player, error)
	GetPlayer(ctx context.Context, id string) (*store.Player, error)
	GetAccountBalance(ctx context.Context, accountID string) (int64, error)
	TopUp(ctx context.Context, accountID string, amount int64, refID string) (int64, error)
	ListLedgerEntries(ctx context.Context, f store.LedgerFilter, limit int) ([]store.LedgerEntry, error)
}

type Service struct {
	store           Store
	startingBalance int64
}

func NewService(st Store, startingBalance int64) *Service {
	if startingBalance < 0 {
		startingBalance = 0
	}
	return &Service{store: st, startingBalance: startingBalance}
}

// Register creates a player and returns its API key. Only the key's hash is
// stored, so the response is the one chance to read it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > maxNameLen {
		return nil, ErrInvalidRequest
	}
	apiKey := apiKeyPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
	p, err := s.store.CreatePlayer(ctx, name, store.HashAPIKey(apiKey), s.startingBalance)
	if err != nil {
		return nil, err
	}
	return &RegisterResponse{
		PlayerID: p.ID,
		Name:     p.Name,
		APIKey:   apiKey,
		Balance:  s.startingBalance,
	}, nil
}

// Authenticate resolves an API key to its player.
func (s *Service) Authenticate(ctx context.Context, apiKey string) (*store.Player, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrUnknownAPIKey
	}
	p, err := s.store.GetPlayerByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownAPIKey
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) Me(ctx context.Context, p *store.Player) (*MeResponse, error) {
	if p == nil {
		return nil, ErrInvalidRequest
	}
	balance, err := s.store.GetAccountBalance(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &MeResponse{
		PlayerID:       p.ID,
		Name:           p.Name,
		Balance:        balance,
		BalanceDisplay: viewmodel.FormatAmount(balance),
		CreatedAt:      p.CreatedAt,
	}, nil
}

// TopUp credits an existing account; it never creates one.
func (s *Service) TopUp(ctx context.Context, in TopUpInput) (*TopUpResponse, error) {
	if strings.TrimSpace(in.AccountID) == "" {
		return nil, ErrInvalidRequest
	}
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	bal, err := s.store.TopUp(ctx, in.AccountID, in.Amount, in.RefID)
	if err != nil {
		return nil, err
	}
	return &TopUpResponse{AccountID: in.AccountID, Balance: bal}, nil
}

func (s *Service) Ledger(ctx context.Context, f store.LedgerFilter, limit int) (*LedgerResponse, error) {
	if limit < 0 {
		return nil, ErrInvalidRequest
	}
	if limit == 0 {
		limit = defaultLedgerLimit
	}
	if limit > maxLedgerLimit {
		limit = maxLedgerLimit
	}
	items, err := s.store.ListLedgerEntries(ctx, f, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []store.LedgerEntry{}
	}
	return &LedgerResponse{Items: items, Limit: limit}, nil
}

// IsAccountMissing reports whether err means the account does not exist.
func IsAccountMissing(err error) bool {
	return errors.Is(err, game.ErrAccountNotFound)
}
