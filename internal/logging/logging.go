package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"zk-porrinha/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxMB   = 10
	defaultBackups = 3
)

var (
	sinkMu sync.RWMutex
	sink   io.Writer = os.Stdout
	file   *lumberjack.Logger
)

func fileSink(cfg config.LogConfig) *lumberjack.Logger {
	maxMB, backups := cfg.MaxMB, cfg.Backups
	if maxMB <= 0 {
		maxMB = defaultMaxMB
	}
	if backups <= 0 {
		backups = defaultBackups
	}
	return &lumberjack.Logger{
		Filename:   strings.TrimSpace(cfg.File),
		MaxSize:    maxMB,
		MaxBackups: backups,
		LocalTime:  true,
	}
}

// Init configures the global zerolog logger. When cfg.File is set, output is
// teed into a size-rotated file next to stdout.
func Init(cfg config.LogConfig) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var out io.Writer = os.Stdout
	var lj *lumberjack.Logger
	if strings.TrimSpace(cfg.File) != "" {
		lj = fileSink(cfg)
		out = io.MultiWriter(os.Stdout, lj)
	}
	sinkMu.Lock()
	prev := file
	sink, file = out, lj
	sinkMu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}

	var output io.Writer = out
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: out}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if n := cfg.SampleEvery; n > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(n)})
	}
	log.Logger = logger
}

// Writer returns the raw sink used by Init, for loggers that format their own
// records (the HTTP request logger).
func Writer() io.Writer {
	sinkMu.RLock()
	defer sinkMu.RUnlock()
	return sink
}
