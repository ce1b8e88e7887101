package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/courses-api/pkg/config"
	"github.com/noah-isme/courses-api/pkg/logger"
)

// app carries the configuration and logger shared by subcommands.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd(version string) *cobra.Command {
	rt := &app{}

	root := &cobra.Command{
		Use:          "courses-api",
		Short:        "Course enrollment and waiting list service",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logr, err := logger.New(cfg)
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.logger = logr
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}

	root.AddCommand(newServeCmd(rt), newMigrateCmd(rt))
	return root
}
