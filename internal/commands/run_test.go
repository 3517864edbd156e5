package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtconv/internal/runlog"
)

func testdata(name string) string {
	p, err := filepath.Abs(filepath.Join("..", "..", "testdata", name))
	if err != nil {
		panic(err)
	}
	return p
}

func importFixture(t *testing.T, dir, name string) {
	t.Helper()
	data, err := os.ReadFile(testdata(name))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", name), data, 0o644))
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestRun_ImportDir(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	_, err := runStmtconv(t, "init", dir, "--bank", "absa")
	require.NoError(t, err)
	importFixture(t, dir, "absa.csv")

	out, err := runStmtconv(t, "run", "--repo", dir, "--format", "csv")
	require.NoError(t, err, "run failed: %s", out)
	assert.Contains(t, out, "1 converted, 0 skipped")
	assert.Contains(t, out, "output/absa_absa.csv")

	lines := readLines(t, filepath.Join(dir, "output", "absa_absa.csv"))
	require.Len(t, lines, 4, "header + 3 rows")
	assert.Equal(t, "DATE,DESCRIPTION,CODE,DEBIT,CREDIT", lines[0])

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "absa.csv"))
	require.NoError(t, err, "converted import should be moved to processed/")
	_, err = os.Stat(filepath.Join(dir, "import", "absa.csv"))
	assert.True(t, os.IsNotExist(err))

	entries, err := runlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "absa.csv", entries[0].File)
	assert.Equal(t, runlog.StatusProcessed, entries[0].Status)
	assert.Equal(t, 3, entries[0].Rows)
	assert.Equal(t, 2, entries[0].Coded)
	assert.Equal(t, "output/absa_absa.csv", entries[0].Output)

	subject := gitLog(t, dir, "%s")
	assert.Contains(t, subject, "run "+entries[0].RunID)
	assert.Contains(t, subject, "1 converted")
}

func TestRun_ExplicitFilesWithCodes(t *testing.T) {
	dir := t.TempDir()
	_, err := runStmtconv(t, "init", dir, "--no-git")
	require.NoError(t, err)

	out, err := runStmtconv(t, "run", "--repo", dir,
		"--bank", "standard",
		"--codes", testdata("master.csv"),
		"--format", "csv",
		"--workers", "2",
		testdata("standard.csv"))
	require.NoError(t, err, "run failed: %s", out)

	lines := readLines(t, filepath.Join(dir, "output", "standard_standard.csv"))
	assert.Len(t, lines, 6, "header + 5 rows")

	_, err = os.Stat(testdata("standard.csv"))
	require.NoError(t, err, "explicit files are never moved")
}

func TestRun_CodesIgnoredForCapitec(t *testing.T) {
	dir := t.TempDir()
	_, err := runStmtconv(t, "init", dir, "--no-git", "--bank", "capitec")
	require.NoError(t, err)
	importFixture(t, dir, "capitec.csv")

	out, err := runStmtconv(t, "run", "--repo", dir, "--codes", testdata("master.csv"), "--format", "csv")
	require.NoError(t, err, "run failed: %s", out)
	assert.Contains(t, out, "capitec does not use a code table")

	lines := readLines(t, filepath.Join(dir, "output", "capitec_capitec.csv"))
	require.Len(t, lines, 5)
	assert.Equal(t, "DATE,REFERENCE,SITE,ACTIVITY,DEBIT,CREDIT", lines[0])
	assert.Equal(t, "2024-03-01,EFT WAGES WAGE1B D123,D123,B8200,5000.00,0.00", lines[1])
}

func TestRun_SkipsBadFile(t *testing.T) {
	dir := t.TempDir()
	_, err := runStmtconv(t, "init", dir, "--no-git", "--bank", "capitec")
	require.NoError(t, err)
	importFixture(t, dir, "capitec.csv")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "short.csv"), []byte("Capitec Bank\n"), 0o644))

	out, err := runStmtconv(t, "run", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files skipped")
	assert.Contains(t, out, "skip  short.csv")

	_, err = os.Stat(filepath.Join(dir, "output", "capitec_capitec.xlsx"))
	require.NoError(t, err, "good file should still be converted")
	_, err = os.Stat(filepath.Join(dir, "import", "short.csv"))
	require.NoError(t, err, "skipped file should stay in import/")

	entries, err := runlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, runlog.StatusProcessed, entries[0].Status)
	assert.Equal(t, runlog.StatusSkipped, entries[1].Status)
	assert.Equal(t, "short.csv", entries[1].File)
	assert.Contains(t, entries[1].Detail, "structural")
}

func TestRun_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no bank", args: nil, wantErr: "no bank selected"},
		{name: "unknown bank", args: []string{"--bank", "nedbank"}, wantErr: "unknown bank"},
		{name: "missing codes", args: []string{"--bank", "standard"}, wantErr: "a master code file is required"},
		{name: "bad format", args: []string{"--bank", "absa", "--format", "pdf"}, wantErr: "unknown output format"},
		{name: "bad log level", args: []string{"--bank", "absa", "--log-level", "loud"}, wantErr: "unknown log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := runStmtconv(t, "init", dir, "--no-git")
			require.NoError(t, err)
			importFixture(t, dir, "absa.csv")

			_, err = runStmtconv(t, append([]string{"run", "--repo", dir}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			_, err = os.Stat(filepath.Join(dir, "import", "absa.csv"))
			require.NoError(t, err, "nothing should be processed")
		})
	}
}

func TestRun_NothingToDo(t *testing.T) {
	dir := t.TempDir()
	_, err := runStmtconv(t, "init", dir, "--no-git", "--bank", "absa")
	require.NoError(t, err)

	out, err := runStmtconv(t, "run", "--repo", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No statement files")
}
