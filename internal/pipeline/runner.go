package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/labstack/gommon/log"

	"github.com/cleared-dev/stmtconv/internal/model"
	"github.com/cleared-dev/stmtconv/internal/profile"
)

// Sink persists an output table and returns where it went.
type Sink interface {
	WriteTable(name, profileName string, schema []model.Column, rows []model.CanonicalRow) (string, error)
}

// Source is one input file.
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileSource reads the file at path.
func FileSource(path string) Source {
	return Source{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// FileError is a failure confined to one input file.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Summary reports a run. Both lists keep input order.
type Summary struct {
	Processed []*FileResult
	Skipped   []*FileError
}

// Runner processes a batch of files against one loaded profile.
type Runner struct {
	Loaded  profile.Loaded
	Workers int // <= 1 runs files one after another
	Sink    Sink
	Log     *log.Logger
}

type outcome struct {
	result *FileResult
	err    *FileError
}

// Run processes sources and returns the summary. A failing file is
// skipped and never affects the others.
func (r *Runner) Run(ctx context.Context, sources []Source) *Summary {
	outcomes := make([]outcome, len(sources))

	workers := min(max(r.Workers, 1), len(sources))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = r.runOne(ctx, sources[i])
			}
		}()
	}
	for i := range sources {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	sum := &Summary{}
	for _, o := range outcomes {
		if o.err != nil {
			sum.Skipped = append(sum.Skipped, o.err)
			continue
		}
		sum.Processed = append(sum.Processed, o.result)
	}
	return sum
}

func (r *Runner) runOne(ctx context.Context, src Source) outcome {
	logger := r.logger()
	fail := func(err error) outcome {
		fe := &FileError{File: src.Name, Err: err}
		logger.Errorf("skipping %s", fe)
		return outcome{err: fe}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	rc, err := src.Open()
	if err != nil {
		return fail(fmt.Errorf("opening: %w", err))
	}
	defer rc.Close()

	res, err := Process(src.Name, rc, r.Loaded)
	if err != nil {
		return fail(err)
	}
	for _, pe := range res.ParseErrors {
		logger.Warnf("%s: %s", src.Name, pe)
	}

	if r.Sink != nil {
		path, err := r.Sink.WriteTable(src.Name, res.Profile, res.Schema, res.Rows)
		if err != nil {
			return fail(fmt.Errorf("writing output: %w", err))
		}
		res.OutputPath = path
	}

	logger.Infof("%s: %d rows (%d coded, %d uncoded) %s", src.Name, len(res.Rows), res.Coded, res.Uncoded, res.OutputPath)
	return outcome{result: res}
}

var defaultLog = newStderrLogger("pipeline")

func newStderrLogger(prefix string) *log.Logger {
	l := log.New(prefix)
	l.SetOutput(os.Stderr)
	l.SetHeader("${level}")
	return l
}

func (r *Runner) logger() *log.Logger {
	if r.Log != nil {
		return r.Log
	}
	return defaultLog
}
