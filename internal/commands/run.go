package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtconv/internal/codes"
	"github.com/cleared-dev/stmtconv/internal/config"
	"github.com/cleared-dev/stmtconv/internal/gitops"
	"github.com/cleared-dev/stmtconv/internal/importer"
	"github.com/cleared-dev/stmtconv/internal/output"
	"github.com/cleared-dev/stmtconv/internal/pipeline"
	"github.com/cleared-dev/stmtconv/internal/profile"
	"github.com/cleared-dev/stmtconv/internal/runlog"
)

type runOptions struct {
	bank      string
	codesFile string
	format    string
	outDir    string
	workers   int
	noCommit  bool
	logLevel  string
}

func newRunCommand() *cobra.Command {
	var opts runOptions
	var repoDir string

	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Convert statement exports",
		Long: `Convert the given statement files, or every export waiting in
<repo>/import/ when none are given. Converted imports are moved to
import/processed/; files that fail are skipped and left in place.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			if opts.codesFile, err = absFlag(opts.codesFile); err != nil {
				return err
			}
			if opts.outDir, err = absFlag(opts.outDir); err != nil {
				return err
			}
			files := make([]string, len(args))
			for i, a := range args {
				if files[i], err = absFlag(a); err != nil {
					return err
				}
			}
			opts.logLevel = logLevelFlag(cmd)
			return runConvert(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), absDir, files, opts)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "workspace directory")
	cmd.Flags().StringVar(&opts.bank, "bank", "", "bank profile (overrides stmtconv.yaml)")
	cmd.Flags().StringVar(&opts.codesFile, "codes", "", "master code table, .xlsx or .csv")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format, xlsx or csv")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "output directory")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "files converted concurrently")
	cmd.Flags().BoolVar(&opts.noCommit, "no-commit", false, "do not commit results to git")

	return cmd
}

// apply overrides cfg with the flags that were set. Paths from flags are
// already absolute; paths from the config are relative to root.
func (o runOptions) apply(cfg *config.Config, root string) {
	if o.bank != "" {
		cfg.Bank = o.bank
	}
	cfg.CodesFile = resolve(root, cfg.CodesFile)
	if o.codesFile != "" {
		cfg.CodesFile = o.codesFile
	}
	if o.format != "" {
		cfg.Output.Format = o.format
	}
	cfg.Output.Dir = resolve(root, cfg.Output.Dir)
	if o.outDir != "" {
		cfg.Output.Dir = o.outDir
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = filepath.Join(root, "output")
	}
	if o.workers > 0 {
		cfg.Workers = o.workers
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.noCommit {
		cfg.Git.AutoCommit = false
	}
}

func runConvert(ctx context.Context, out, errOut io.Writer, root string, files []string, opts runOptions) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	opts.apply(cfg, root)

	logger, err := newLogger(errOut, cfg.LogLevel)
	if err != nil {
		return err
	}

	loaded, err := loadProfile(cfg, logger)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	var sources []pipeline.Source
	scanned := len(files) == 0
	if scanned {
		found, err := importer.Scan(root)
		if err != nil {
			return err
		}
		for _, f := range found {
			sources = append(sources, pipeline.FileSource(f.Path))
		}
	} else {
		for _, f := range files {
			sources = append(sources, pipeline.FileSource(f))
		}
	}
	if len(sources) == 0 {
		fmt.Fprintln(out, "No statement files to convert.")
		return nil
	}

	runner := &pipeline.Runner{
		Loaded:  loaded,
		Workers: cfg.Workers,
		Sink:    output.NewWriter(cfg.Output.Dir, format),
		Log:     logger,
	}
	started := time.Now()
	sum := runner.Run(ctx, sources)

	runID, err := runlog.NextRunID(root, started)
	if err != nil {
		return err
	}
	if err := runlog.Append(root, logEntries(root, runID, started, loaded.Profile.Name, sum)); err != nil {
		logger.Warnf("writing run log: %v", err)
	}

	if scanned {
		for _, res := range sum.Processed {
			dst, err := importer.MarkProcessed(root, res.Name)
			if err != nil {
				logger.Warnf("%v", err)
				continue
			}
			logger.Debugf("moved %s to %s", res.Name, relPath(root, dst))
		}
	}

	if cfg.Git.AutoCommit && gitops.IsRepo(root) {
		if err := commitRun(root, runID, cfg, sum); err != nil {
			logger.Warnf("%v", err)
		}
	}

	printSummary(out, root, runID, sum)

	if n := len(sum.Skipped); n > 0 {
		return fmt.Errorf("%d of %d files skipped", n, len(sources))
	}
	return nil
}

// loadProfile walks the selection from bank name to a loaded profile.
func loadProfile(cfg *config.Config, logger *log.Logger) (profile.Loaded, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return profile.Loaded{}, err
	}

	sel := profile.NewSelection(reg)
	if cfg.Bank == "" {
		return profile.Loaded{}, &profile.ConfigurationError{
			Reason: fmt.Sprintf("no bank selected, use --bank or set bank in %s (available: %v)", config.FileName, reg.Names()),
		}
	}
	if err := sel.Select(cfg.Bank); err != nil {
		return profile.Loaded{}, err
	}

	var table *codes.Table
	if cfg.CodesFile != "" {
		table, err = codes.Load(cfg.CodesFile)
		if err != nil {
			return profile.Loaded{}, err
		}
		for _, dup := range table.Duplicates() {
			logger.Warnf("%s: duplicate code %s, last description wins", filepath.Base(cfg.CodesFile), dup)
		}
		logger.Debugf("loaded %d codes from %s", table.Len(), cfg.CodesFile)
	}

	loaded, err := sel.Load(table)
	if err != nil {
		return profile.Loaded{}, err
	}
	if table != nil && loaded.Codes == nil {
		logger.Warnf("%s does not use a code table, ignoring %s", loaded.Profile.Name, filepath.Base(cfg.CodesFile))
	}
	return loaded, nil
}

func logEntries(root, runID string, at time.Time, profileName string, sum *pipeline.Summary) []runlog.Entry {
	var entries []runlog.Entry
	for _, res := range sum.Processed {
		entries = append(entries, runlog.Entry{
			RunID:       runID,
			Timestamp:   at,
			File:        res.Name,
			Profile:     res.Profile,
			Status:      runlog.StatusProcessed,
			Rows:        len(res.Rows),
			Coded:       res.Coded,
			Uncoded:     res.Uncoded,
			ParseErrors: len(res.ParseErrors),
			Output:      relPath(root, res.OutputPath),
		})
	}
	for _, fe := range sum.Skipped {
		entries = append(entries, runlog.Entry{
			RunID:     runID,
			Timestamp: at,
			File:      fe.File,
			Profile:   profileName,
			Status:    runlog.StatusSkipped,
			Detail:    fe.Err.Error(),
		})
	}
	return entries
}

func commitRun(root, runID string, cfg *config.Config, sum *pipeline.Summary) error {
	changed, err := gitops.HasChanges(root)
	if err != nil || !changed {
		return err
	}
	msg := fmt.Sprintf("run %s: %d converted, %d skipped", runID, len(sum.Processed), len(sum.Skipped))
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	if _, err := gitops.CommitAll(root, msg, author); err != nil {
		return fmt.Errorf("committing run %s: %w", runID, err)
	}
	return nil
}

func printSummary(out io.Writer, root, runID string, sum *pipeline.Summary) {
	fmt.Fprintf(out, "Run %s: %d converted, %d skipped\n", runID, len(sum.Processed), len(sum.Skipped))
	for _, res := range sum.Processed {
		fmt.Fprintf(out, "  ok    %s -> %s (%d rows, %d coded, %d uncoded",
			res.Name, relPath(root, res.OutputPath), len(res.Rows), res.Coded, res.Uncoded)
		if n := len(res.ParseErrors); n > 0 {
			fmt.Fprintf(out, ", %d parse errors", n)
		}
		fmt.Fprintln(out, ")")
	}
	for _, fe := range sum.Skipped {
		fmt.Fprintf(out, "  skip  %s\n", fe)
	}
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && filepath.IsLocal(rel) {
		return filepath.ToSlash(rel)
	}
	return path
}
