// Package runlog keeps the history of conversion runs in logs/run-log.csv,
// one row per input file.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/stmtconv/internal/id"
)

// Status of a file within a run.
const (
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
)

// Entry is one row in the run log.
type Entry struct {
	RunID       string
	Timestamp   time.Time
	File        string
	Profile     string
	Status      string
	Rows        int
	Coded       int
	Uncoded     int
	ParseErrors int
	Output      string
	Detail      string
}

// Header is the CSV header for run-log.csv.
const Header = "run_id,timestamp,file,profile,status,rows,coded,uncoded,parse_errors,output,detail"

const (
	numFields      = 11
	logDir         = "logs"
	logFile        = "logs/run-log.csv"
	colRunID       = 0
	colTimestamp   = 1
	colFile        = 2
	colProfile     = 3
	colStatus      = 4
	colRows        = 5
	colCoded       = 6
	colUncoded     = 7
	colParseErrors = 8
	colOutput      = 9
	colDetail      = 10
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colRunID] = e.RunID
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colFile] = e.File
	row[colProfile] = e.Profile
	row[colStatus] = e.Status
	row[colRows] = strconv.Itoa(e.Rows)
	row[colCoded] = strconv.Itoa(e.Coded)
	row[colUncoded] = strconv.Itoa(e.Uncoded)
	row[colParseErrors] = strconv.Itoa(e.ParseErrors)
	row[colOutput] = e.Output
	row[colDetail] = e.Detail
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	var counts [4]int
	for i, col := range []int{colRows, colCoded, colUncoded, colParseErrors} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		counts[i] = n
	}

	return Entry{
		RunID:       record[colRunID],
		Timestamp:   ts,
		File:        record[colFile],
		Profile:     record[colProfile],
		Status:      record[colStatus],
		Rows:        counts[0],
		Coded:       counts[1],
		Uncoded:     counts[2],
		ParseErrors: counts[3],
		Output:      record[colOutput],
		Detail:      record[colDetail],
	}, nil
}

// Append writes entries to <root>/logs/run-log.csv, creating the file and header if needed.
func Append(root string, entries []Entry) error {
	dir := filepath.Join(root, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <root>/logs/run-log.csv.
// Returns an empty slice if the file does not exist.
func Read(root string) ([]Entry, error) {
	path := filepath.Join(root, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// NextRunID returns the next run ID for day, continuing the sequence
// recorded in the log.
func NextRunID(root string, day time.Time) (string, error) {
	entries, err := Read(root)
	if err != nil {
		return "", err
	}

	maxSeq := 0
	for _, e := range entries {
		if !id.SameDay(e.RunID, day) {
			continue
		}
		_, seq, err := id.ParseRunID(e.RunID)
		if err != nil {
			return "", fmt.Errorf("run log: %w", err)
		}
		maxSeq = max(maxSeq, seq)
	}
	return id.FormatRunID(day, maxSeq+1), nil
}
