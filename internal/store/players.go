package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// CreatePlayer inserts a player and opens its account with initial balance.
func (s *Store) CreatePlayer(ctx context.Context, name, apiKeyHash string, initial int64) (*Player, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	p := &Player{ID: NewPlayerID(), Name: name, APIKeyHash: apiKeyHash}
	err = tx.QueryRow(ctx, `
INSERT INTO players (id, name, api_key_hash) VALUES ($1, $2, $3)
RETURNING created_at`, p.ID, p.Name, p.APIKeyHash).Scan(&p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := ensureAccount(ctx, tx, p.ID, 0); err != nil {
		return nil, err
	}
	if initial > 0 {
		if _, err := credit(ctx, tx, p.ID, initial, EntryStartingCredit, "player", p.ID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) GetPlayerByAPIKey(ctx context.Context, apiKey string) (*Player, error) {
	var p Player
	err := s.Pool.QueryRow(ctx, `SELECT id, name, api_key_hash, created_at FROM players WHERE api_key_hash = $1`,
		HashAPIKey(apiKey)).Scan(&p.ID, &p.Name, &p.APIKeyHash, &p.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

func (s *Store) GetPlayer(ctx context.Context, id string) (*Player, error) {
	var p Player
	err := s.Pool.QueryRow(ctx, `SELECT id, name, api_key_hash, created_at FROM players WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.APIKeyHash, &p.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}
