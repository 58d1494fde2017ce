package config

import "testing"

func TestLoadBotDefaults(t *testing.T) {
	cfg, err := LoadBot()
	if err != nil {
		t.Fatalf("LoadBot() error = %v", err)
	}
	if cfg.WSURL != "ws://localhost:8080/ws" {
		t.Fatalf("WSURL = %q, want ws://localhost:8080/ws", cfg.WSURL)
	}
	if cfg.Name != "bot" || cfg.Bet != 1000000 {
		t.Fatalf("unexpected bot defaults: %+v", cfg)
	}
}

func TestLoadBotOverrides(t *testing.T) {
	t.Setenv("BOT_WS_URL", "ws://127.0.0.1:9000/ws")
	t.Setenv("BOT_NAME", "BotA")
	t.Setenv("BOT_API_KEY", "key-a")
	t.Setenv("BOT_ROOM_ID", "42")

	cfg, err := LoadBot()
	if err != nil {
		t.Fatalf("LoadBot() error = %v", err)
	}
	if cfg.WSURL != "ws://127.0.0.1:9000/ws" {
		t.Fatalf("WSURL = %q", cfg.WSURL)
	}
	if cfg.Name != "BotA" || cfg.APIKey != "key-a" || cfg.RoomID != 42 {
		t.Fatalf("unexpected bot config: %+v", cfg)
	}
}
