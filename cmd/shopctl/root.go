package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"shopmap/internal/app"
	"shopmap/internal/env"
	"shopmap/internal/logger"
)

type options struct {
	configFile string
	verbose    bool
	app        *app.App
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "shopctl",
		Short: "Manage your saved shops from the terminal",
		Long: `shopctl searches places, lists saved shops and moves the local
shop file into the cloud table.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := env.Load(opts.configFile)
			if err != nil {
				return err
			}
			level := cfg.Log.Level
			if opts.verbose {
				level = "debug"
			} else if level == "info" {
				level = "warn"
			}
			zl := logger.New(&logger.Config{Level: level, Format: "console", Output: "stderr"})
			a, err := app.New(cmd.Context(), cfg, zl)
			if err != nil {
				return err
			}
			opts.app = a
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if opts.app == nil {
				return nil
			}
			return opts.app.Close()
		},
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default is ./config.yaml when present)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(newSearchCmd(opts), newListCmd(opts), newMigrateCmd(opts))
	return root
}

func parseUser(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --user %q: %w", raw, err)
	}
	return id, nil
}
