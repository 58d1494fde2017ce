package config

import "github.com/caarlos0/env/v11"

type ZKConfig struct {
	KeysDir   string `env:"ZK_KEYS_DIR" envDefault:"keys"`
	AutoSetup bool   `env:"ZK_AUTO_SETUP" envDefault:"false"`
}

func LoadZK() (ZKConfig, error) {
	var cfg ZKConfig
	err := env.Parse(&cfg)
	return cfg, err
}
