package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// GameConfig tunes the room state machine. Ledger time advances one sequence
// per LedgerInterval from LedgerGenesis; TimeoutLedgers=100 at 5s is a little
// over eight minutes. LedgerGenesis only seeds a fresh store: once settings
// exist the genesis stored with them wins.
type GameConfig struct {
	TimeoutLedgers   uint32        `env:"TIMEOUT_LEDGERS" envDefault:"100"`
	LedgerInterval   time.Duration `env:"LEDGER_INTERVAL" envDefault:"5s"`
	LedgerGenesis    time.Time     `env:"LEDGER_GENESIS"`
	JackpotRakeBps   int64         `env:"JACKPOT_RAKE_BPS" envDefault:"4000"`
	JanitorInterval  time.Duration `env:"JANITOR_INTERVAL" envDefault:"30s"`
	RecentRoomsLimit int           `env:"RECENT_ROOMS_LIMIT" envDefault:"50"`

	Admin    string `env:"GAME_ADMIN"`
	Verifier string `env:"GAME_VERIFIER" envDefault:"groth16-bn254"`
	Hub      string `env:"GAME_HUB" envDefault:"local"`
	Token    string `env:"GAME_TOKEN" envDefault:"pool"`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	if err != nil {
		return cfg, err
	}
	if cfg.LedgerGenesis.IsZero() {
		cfg.LedgerGenesis = time.Now().UTC()
	}
	if cfg.JackpotRakeBps < 0 {
		cfg.JackpotRakeBps = 0
	}
	if cfg.JackpotRakeBps > 10000 {
		cfg.JackpotRakeBps = 10000
	}
	return cfg, nil
}
