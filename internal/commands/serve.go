package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtconv/internal/api"
)

func newServeCommand() *cobra.Command {
	var repoDir string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the converter over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runServe(cmd, absDir, addr)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "workspace directory, for custom profiles")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}

func runServe(cmd *cobra.Command, root, addr string) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	level := logLevelFlag(cmd)
	if level == "" {
		level = cfg.LogLevel
	}
	logger, err := newLogger(cmd.ErrOrStderr(), level)
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	app := api.New(reg, logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()

	logger.Infof("listening on %s", addr)
	return app.Listen(addr)
}
