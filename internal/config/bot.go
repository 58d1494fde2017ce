package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	BaseURL string `env:"BOT_BASE_URL" envDefault:"http://localhost:8080"`
	WSURL   string `env:"BOT_WS_URL" envDefault:"ws://localhost:8080/ws"`
	Name    string `env:"BOT_NAME" envDefault:"bot"`
	APIKey  string `env:"BOT_API_KEY"`
	Bet     int64  `env:"BOT_BET" envDefault:"1000000"`
	RoomID  uint64 `env:"BOT_ROOM_ID" envDefault:"0"`
	KeysDir string `env:"ZK_KEYS_DIR" envDefault:"keys"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
