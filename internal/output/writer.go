// Package output writes canonical tables as xlsx or csv files.
package output

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/stmtconv/internal/model"
)

// Format is an output file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format name. Empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown output format %q (want xlsx or csv)", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write writes a table in the given format.
func Write(w io.Writer, format Format, schema []model.Column, rows []model.CanonicalRow) error {
	if format == FormatCSV {
		return WriteCSV(w, schema, rows)
	}
	return WriteXLSX(w, schema, rows)
}

// FileName returns the output name for an input file, e.g.
// "jan.csv" + "absa" -> "jan_absa.xlsx".
func FileName(input, profileName string, format Format) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return fmt.Sprintf("%s_%s.%s", base, profileName, format)
}

// Writer writes output tables into a directory.
type Writer struct {
	Dir    string
	Format Format
}

// NewWriter creates a Writer.
func NewWriter(dir string, format Format) *Writer {
	return &Writer{Dir: dir, Format: format}
}

// WriteTable writes one table and returns its path. The file appears
// complete or not at all: data goes to a temp file that is then linked into
// place. An existing table is never replaced; when the name is taken the
// new one gets a numeric suffix ("jan_absa-2.xlsx"). Safe for concurrent use.
func (w *Writer) WriteTable(name, profileName string, schema []model.Column, rows []model.CanonicalRow) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	tmp, err := os.CreateTemp(w.Dir, ".stmtconv-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, w.Format, schema, rows); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	file := FileName(name, profileName, w.Format)
	ext := filepath.Ext(file)
	base := strings.TrimSuffix(file, ext)
	path := filepath.Join(w.Dir, file)
	// Link fails rather than replace, so two writers never claim one name.
	for n := 2; ; n++ {
		err := os.Link(tmp.Name(), path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("moving output into place: %w", err)
		}
		path = filepath.Join(w.Dir, fmt.Sprintf("%s-%d%s", base, n, ext))
	}
}
