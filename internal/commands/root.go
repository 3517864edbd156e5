package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtconv/internal/buildinfo"
	"github.com/cleared-dev/stmtconv/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "stmtconv",
		Short:   "Normalize bank statement exports into canonical tables",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn, error or off (default from stmtconv.yaml, else info)")

	rootCmd.AddCommand(
		newInitCommand(),
		newRunCommand(),
		newProfilesCommand(),
		newCodesCommand(),
		newServeCommand(),
	)

	return rootCmd
}

var logLevels = map[string]log.Lvl{
	"debug": log.DEBUG,
	"info":  log.INFO,
	"warn":  log.WARN,
	"error": log.ERROR,
	"off":   log.OFF,
}

// newLogger returns a logger writing to w. An empty level means info.
func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl := log.INFO
	if level != "" {
		var ok bool
		lvl, ok = logLevels[strings.ToLower(level)]
		if !ok {
			return nil, fmt.Errorf("unknown log level %q", level)
		}
	}
	logger := log.New("stmtconv")
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetHeader("${level}")
	return logger, nil
}

// loadConfig reads <root>/stmtconv.yaml, falling back to defaults when the
// workspace has none.
func loadConfig(root string) (*config.Config, error) {
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(""), nil
	}
	return cfg, err
}

// resolve makes a workspace-relative path absolute.
func resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func absFlag(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

func logLevelFlag(cmd *cobra.Command) string {
	level, _ := cmd.Flags().GetString("log-level")
	return level
}
