package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
)

func NewRootCmd() *cobra.Command {
	var cfg Config
	root := &cobra.Command{
		Use:           "spn",
		Short:         "Start processes suspended and resume them on demand",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "", "log format (console, json)")
	root.PersistentFlags().String("env-file", ".env", "dotenv file read before the environment")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := LoadConfig(cmd.Flags(), nil)
		if err != nil {
			return err
		}
		cfg = *loaded
		lib.SetLogger(newLogger(&cfg, os.Stderr))
		return nil
	}

	root.AddCommand(newRunCmd(&cfg))
	root.AddCommand(newCodePageCmd())

	return root
}
