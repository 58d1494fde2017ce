package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"zk-porrinha/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.log")
	Init(config.LogConfig{Level: "debug", File: path, MaxMB: 1})
	t.Cleanup(func() { Init(config.LogConfig{Level: "info"}) })

	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("global level = %v, want debug", zerolog.GlobalLevel())
	}
	log.Info().Uint64("room_id", 7).Msg("room_created")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), `"room_id":7`) {
		t.Fatalf("log file missing record: %s", b)
	}
	if Writer() == os.Stdout {
		t.Fatal("Writer() should tee into the file sink")
	}
}

func TestInitIgnoresBadLevel(t *testing.T) {
	Init(config.LogConfig{Level: "loud"})
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("global level = %v, want info", zerolog.GlobalLevel())
	}
}

func TestFileSinkRotatesAtMaxSize(t *testing.T) {
	dir := t.TempDir()
	lj := fileSink(config.LogConfig{File: filepath.Join(dir, "game.log"), MaxMB: 1, Backups: 2})
	t.Cleanup(func() { _ = lj.Close() })

	chunk := append(bytes.Repeat([]byte("x"), 600<<10), '\n')
	for i := 0; i < 2; i++ {
		if _, err := lj.Write(chunk); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("files after rotation = %d, want active file plus one backup", len(entries))
	}
	active, err := os.Stat(filepath.Join(dir, "game.log"))
	if err != nil {
		t.Fatalf("stat active: %v", err)
	}
	if active.Size() != int64(len(chunk)) {
		t.Fatalf("active size = %d, want %d", active.Size(), len(chunk))
	}
}

func TestFileSinkDefaults(t *testing.T) {
	lj := fileSink(config.LogConfig{File: " game.log "})
	if lj.Filename != "game.log" || lj.MaxSize != defaultMaxMB || lj.MaxBackups != defaultBackups {
		t.Fatalf("sink = %+v", lj)
	}
}
