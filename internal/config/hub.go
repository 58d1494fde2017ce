package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type HubConfig struct {
	Enabled          bool          `env:"HUB_ENABLED" envDefault:"false"`
	Endpoint         string        `env:"HUB_ENDPOINT"`
	Secret           string        `env:"HUB_SECRET"`
	Workers          int           `env:"HUB_WORKERS" envDefault:"2"`
	RetryMax         int           `env:"HUB_RETRY_MAX" envDefault:"3"`
	RetryBase        time.Duration `env:"HUB_RETRY_BASE" envDefault:"500ms"`
	FailureThreshold int           `env:"HUB_FAILURE_THRESHOLD" envDefault:"3"`
	CircuitOpen      time.Duration `env:"HUB_CIRCUIT_OPEN" envDefault:"30s"`
	RequestTimeout   time.Duration `env:"HUB_TIMEOUT" envDefault:"5s"`
	DispatchBuffer   int           `env:"HUB_DISPATCH_BUFFER" envDefault:"1024"`
}

func LoadHub() (HubConfig, error) {
	var cfg HubConfig
	err := env.Parse(&cfg)
	return cfg, err
}
