package hub

import (
	"time"

	"zk-porrinha/internal/config"
)

const (
	MethodStartGame = "start_game"
	MethodEndGame   = "end_game"
)

type Config struct {
	Enabled          bool
	Endpoint         string
	Secret           string
	Workers          int
	RetryMax         int
	RetryBase        time.Duration
	FailureThreshold int
	CircuitOpen      time.Duration
	RequestTimeout   time.Duration
	DispatchBuffer   int
}

func FromConfig(c config.HubConfig) Config {
	return Config{
		Enabled:          c.Enabled,
		Endpoint:         c.Endpoint,
		Secret:           c.Secret,
		Workers:          c.Workers,
		RetryMax:         c.RetryMax,
		RetryBase:        c.RetryBase,
		FailureThreshold: c.FailureThreshold,
		CircuitOpen:      c.CircuitOpen,
		RequestTimeout:   c.RequestTimeout,
		DispatchBuffer:   c.DispatchBuffer,
	}
}

// Notification is the JSON body posted to the hub endpoint.
type Notification struct {
	Method        string `json:"method"`
	EventID       string `json:"event_id"`
	Hub           string `json:"hub"`
	SessionID     uint32 `json:"session_id"`
	Player1       string `json:"player1,omitempty"`
	Player2       string `json:"player2,omitempty"`
	Player1Points int64  `json:"player1_points,omitempty"`
	Player2Points int64  `json:"player2_points,omitempty"`
	Player1Won    *bool  `json:"player1_won,omitempty"`
	Round         uint32 `json:"round,omitempty"`
}

type job struct {
	Endpoint string
	Body     Notification
	Attempt  int
}

func (j job) key() string {
	return j.Endpoint
}
