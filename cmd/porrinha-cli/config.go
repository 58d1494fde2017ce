package main

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	defaultServer  = "http://localhost:8080"
	defaultKeysDir = "keys"
)

type cliConfig struct {
	Server  string `toml:"server"`
	APIKey  string `toml:"api_key"`
	KeysDir string `toml:"keys_dir"`
}

func readCLIConfig(path string) (cliConfig, error) {
	var cfg cliConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	return cfg, nil
}

// loadCLIConfig fills flags the user did not set from the config file.
// Explicit flags win.
func loadCLIConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return nil
	}
	cfg, err := readCLIConfig(path)
	if err != nil {
		return err
	}
	for flag, v := range map[string]string{"server": cfg.Server, "api_key": cfg.APIKey, "keys": cfg.KeysDir} {
		if v == "" || cmd.Flags().Changed(flag) {
			continue
		}
		if err := cmd.Flags().Set(flag, v); err != nil {
			return err
		}
	}
	return nil
}
