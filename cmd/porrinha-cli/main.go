package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "porrinha-cli",
		Short:         "zk-porrinha client tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadCLIConfig(cmd)
		},
	}
	root.PersistentFlags().String("config", "", "TOML config file (server, api_key, keys_dir)")
	root.PersistentFlags().String("server", defaultServer, "game server base url")
	root.PersistentFlags().String("api_key", "", "player API key")
	root.PersistentFlags().String("keys", defaultKeysDir, "directory holding circuit and keys")

	root.AddCommand(
		SetupCmd(),
		SaltCmd(),
		CommitCmd(),
		ProveCmd(),
		JackpotCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
