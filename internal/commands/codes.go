package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtconv/internal/codes"
)

func newCodesCommand() *cobra.Command {
	codesCmd := &cobra.Command{
		Use:   "codes",
		Short: "Master code table operations",
	}
	codesCmd.AddCommand(newCodesCheckCommand())
	return codesCmd
}

func newCodesCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a master code table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCodesCheck(cmd.OutOrStdout(), args[0])
		},
	}
}

func runCodesCheck(out io.Writer, path string) error {
	table, err := codes.Load(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d codes\n", path, table.Len())
	for _, dup := range table.Duplicates() {
		fmt.Fprintf(out, "  duplicate %s (last description wins)\n", dup)
	}
	return nil
}
