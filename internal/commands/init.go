package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtconv/internal/config"
	"github.com/cleared-dev/stmtconv/internal/gitops"
	"github.com/cleared-dev/stmtconv/internal/profile"
)

func newInitCommand() *cobra.Command {
	var bank string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new stmtconv workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, bank, !noGit)
		},
	}

	cmd.Flags().StringVar(&bank, "bank", "", "default bank profile for runs")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(out io.Writer, dir, bank string, withGit bool) error {
	if bank != "" && profile.DefaultRegistry().Get(bank) == nil {
		return &profile.ConfigurationError{
			Reason: fmt.Sprintf("unknown bank %q (available: %v)", bank, profile.DefaultRegistry().Names()),
		}
	}

	dirs := []string{
		"import",
		filepath.Join("import", "processed"),
		"output",
		"codes",
		"logs",
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(bank)
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Output files are staged under this prefix before being renamed.
	gitignore := ".stmtconv-*\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	for _, d := range []string{"import", "codes"} {
		if err := os.WriteFile(filepath.Join(dir, d, ".gitkeep"), []byte{}, 0o644); err != nil {
			return fmt.Errorf("writing .gitkeep: %w", err)
		}
	}

	if !withGit {
		fmt.Fprintf(out, "Initialized stmtconv workspace at %s\n", dir)
		return nil
	}

	if err := gitops.Init(dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}

	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(dir, "init: stmtconv workspace", author)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized stmtconv workspace at %s (%s)\n", dir, hash)
	return nil
}
