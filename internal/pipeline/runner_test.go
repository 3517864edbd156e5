package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtconv/internal/importer"
	"github.com/cleared-dev/stmtconv/internal/model"
	"github.com/cleared-dev/stmtconv/internal/output"
	"github.com/cleared-dev/stmtconv/internal/profile"
)

type memSink struct {
	mu     sync.Mutex
	tables map[string][]model.CanonicalRow
	fail   string
}

func (s *memSink) WriteTable(name, profileName string, _ []model.Column, rows []model.CanonicalRow) (string, error) {
	if name == s.fail {
		return "", errors.New("disk full")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tables == nil {
		s.tables = make(map[string][]model.CanonicalRow)
	}
	s.tables[name] = rows
	return "out/" + name + "_" + profileName, nil
}

func stringSource(name, content string) Source {
	return Source{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(content)), nil },
	}
}

func absaFile(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "acc,ZAR,2401%02d,1,PAID AB%04d,0,-%d.00\n", i%28+1, i, i+1)
	}
	return b.String()
}

func quietLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := log.New("test")
	l.SetOutput(&buf)
	l.SetLevel(log.DEBUG)
	l.SetHeader("${level}")
	return l, &buf
}

func TestRunner_KeepsInputOrder(t *testing.T) {
	for _, workers := range []int{0, 1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			var sources []Source
			for i := 0; i < 12; i++ {
				sources = append(sources, stringSource(fmt.Sprintf("f%02d.csv", i), absaFile(i+1)))
			}
			logger, _ := quietLogger()
			sink := &memSink{}
			r := &Runner{Loaded: loaded(t, profile.ABSA(), nil), Workers: workers, Sink: sink, Log: logger}

			sum := r.Run(context.Background(), sources)
			require.Len(t, sum.Processed, 12)
			assert.Empty(t, sum.Skipped)
			for i, res := range sum.Processed {
				assert.Equal(t, fmt.Sprintf("f%02d.csv", i), res.Name)
				assert.Len(t, res.Rows, i+1)
				assert.Equal(t, "out/"+res.Name+"_absa", res.OutputPath)
			}
			assert.Len(t, sink.tables, 12)
		})
	}
}

func TestRunner_FailureIsolated(t *testing.T) {
	logger, buf := quietLogger()
	sink := &memSink{fail: "sinkfail.csv"}
	r := &Runner{Loaded: loaded(t, profile.ABSA(), nil), Workers: 3, Sink: sink, Log: logger}

	sources := []Source{
		stringSource("good1.csv", absaFile(2)),
		stringSource("narrow.csv", "a,b,c\n"),
		{Name: "missing.csv", Open: func() (io.ReadCloser, error) { return nil, errors.New("no such file") }},
		stringSource("sinkfail.csv", absaFile(1)),
		stringSource("good2.csv", absaFile(3)),
	}
	sum := r.Run(context.Background(), sources)

	require.Len(t, sum.Processed, 2)
	assert.Equal(t, "good1.csv", sum.Processed[0].Name)
	assert.Equal(t, "good2.csv", sum.Processed[1].Name)

	require.Len(t, sum.Skipped, 3)
	assert.Equal(t, "narrow.csv", sum.Skipped[0].File)
	var se *importer.StructuralError
	assert.True(t, errors.As(sum.Skipped[0], &se))
	assert.Equal(t, "missing.csv", sum.Skipped[1].File)
	assert.Contains(t, sum.Skipped[1].Error(), "opening")
	assert.Equal(t, "sinkfail.csv", sum.Skipped[2].File)
	assert.Contains(t, sum.Skipped[2].Error(), "disk full")

	assert.Contains(t, buf.String(), "ERROR")
	assert.Contains(t, buf.String(), "narrow.csv")
}

func TestRunner_ParseErrorsLogged(t *testing.T) {
	logger, buf := quietLogger()
	r := &Runner{Loaded: loaded(t, profile.ABSA(), nil), Log: logger}

	sum := r.Run(context.Background(), []Source{stringSource("x.csv", "a,b,notadate,d,PAID,f,1.00\n")})
	require.Len(t, sum.Processed, 1)
	assert.Len(t, sum.Processed[0].ParseErrors, 1)
	assert.Empty(t, sum.Processed[0].OutputPath)
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "notadate")
}

func TestRunner_Canceled(t *testing.T) {
	logger, _ := quietLogger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Loaded: loaded(t, profile.ABSA(), nil), Log: logger}
	sum := r.Run(ctx, []Source{stringSource("a.csv", absaFile(1))})
	assert.Empty(t, sum.Processed)
	require.Len(t, sum.Skipped, 1)
	assert.ErrorIs(t, sum.Skipped[0], context.Canceled)
}

func TestRunner_NoSources(t *testing.T) {
	r := &Runner{Loaded: loaded(t, profile.ABSA(), nil), Workers: 4}
	sum := r.Run(context.Background(), nil)
	assert.Empty(t, sum.Processed)
	assert.Empty(t, sum.Skipped)
}

func TestFileSource(t *testing.T) {
	src := FileSource(fixture(t, "absa.csv"))
	assert.Equal(t, "absa.csv", src.Name)
	rc, err := src.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "PAYMENT TO ABC123")
}

func TestRunner_SameBaseNameKeepsBothOutputs(t *testing.T) {
	root := t.TempDir()
	var sources []Source
	for i, sub := range []string{"a", "b"} {
		dir := filepath.Join(root, sub)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		path := filepath.Join(dir, "jan.csv")
		require.NoError(t, os.WriteFile(path, []byte(absaFile(i+1)), 0o644))
		sources = append(sources, FileSource(path))
	}

	outDir := t.TempDir()
	logger, _ := quietLogger()
	r := &Runner{
		Loaded:  loaded(t, profile.ABSA(), nil),
		Workers: 2,
		Sink:    output.NewWriter(outDir, output.FormatCSV),
		Log:     logger,
	}

	sum := r.Run(context.Background(), sources)
	require.Len(t, sum.Processed, 2)
	assert.Empty(t, sum.Skipped)

	got := []string{filepath.Base(sum.Processed[0].OutputPath), filepath.Base(sum.Processed[1].OutputPath)}
	assert.ElementsMatch(t, []string{"jan_absa.csv", "jan_absa-2.csv"}, got)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Each table holds its own rows plus the header.
	for _, res := range sum.Processed {
		data, err := os.ReadFile(res.OutputPath)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		assert.Len(t, lines, len(res.Rows)+1)
	}
}

func TestRunner_DefaultLogWritesToStderr(t *testing.T) {
	r := &Runner{}
	assert.Same(t, defaultLog, r.logger())
	assert.Equal(t, os.Stderr, defaultLog.Output())
}
