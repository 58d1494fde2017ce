package players

import (
	"time"

	"zk-porrinha/internal/store"
)

type RegisterInput struct {
	Name string
}

type RegisterResponse struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	APIKey   string `json:"api_key"`
	Balance  int64  `json:"balance"`
}

type MeResponse struct {
	PlayerID       string    `json:"player_id"`
	Name           string    `json:"name"`
	Balance        int64     `json:"balance"`
	BalanceDisplay string    `json:"balance_display"`
	CreatedAt      time.Time `json:"created_at"`
}

type TopUpInput struct {
	AccountID string
	Amount    int64
	RefID     string
}

type TopUpResponse struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}

type LedgerResponse struct {
	Items []store.LedgerEntry `json:"items"`
	Limit int                 `json:"limit"`
}
