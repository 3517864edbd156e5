package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtconv/internal/profile"
)

func newProfilesCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List bank profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runProfiles(cmd.OutOrStdout(), absDir)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "workspace directory")

	return cmd
}

func runProfiles(out io.Writer, root string) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	for _, name := range reg.Names() {
		p := reg.Get(name)
		headers := make([]string, len(p.Schema))
		for i, c := range p.Schema {
			headers[i] = c.Header
		}
		lookup := ""
		switch p.Lookup {
		case profile.LookupRequired:
			lookup = " [needs codes]"
		case profile.LookupOptional:
			lookup = " [codes optional]"
		}
		fmt.Fprintf(out, "%-10s %s%s\n", p.Name, p.DisplayName, lookup)
		fmt.Fprintf(out, "%-10s %s\n", "", strings.Join(headers, ", "))
	}
	return nil
}
