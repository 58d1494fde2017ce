package store

import (
	"context"
)

func insertLedgerEntry(ctx context.Context, q querier, accountID, entryType string, amount int64, refType, refID string) error {
	_, err := q.Exec(ctx, `
INSERT INTO ledger_entries (id, account_id, type, amount, ref_type, ref_id)
VALUES ($1, $2, $3, $4, $5, $6)`, NewID(), accountID, entryType, amount, refType, refID)
	return err
}

// ListLedgerEntries returns entries newest first.
func (s *Store) ListLedgerEntries(ctx context.Context, f LedgerFilter, limit int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
SELECT id, account_id, type, amount, ref_type, ref_id, created_at
FROM ledger_entries
WHERE ($1 = '' OR account_id = $1) AND ($2 = '' OR ref_id = $2)
ORDER BY id DESC
LIMIT $3`, f.AccountID, f.RefID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]LedgerEntry, 0, limit)
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Type, &e.Amount, &e.RefType, &e.RefID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
