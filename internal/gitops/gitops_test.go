package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuthor = Author{Name: "Test Author", Email: "test@example.com"}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func TestInit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	_, err := os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git directory should exist")
}

func TestIsRepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	assert.False(t, IsRepo(dir), "empty dir should not be a repo")

	require.NoError(t, Init(dir))
	assert.True(t, IsRepo(dir), "initialized dir should be a repo")
}

func TestHasChanges(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	changed, err := HasChanges(dir)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "out.csv"), []byte("DATE\n"), 0o644))
	changed, err = HasChanges(dir)
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = CommitAll(dir, "run", testAuthor)
	require.NoError(t, err)
	changed, err = HasChanges(dir)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestHasChanges_NotRepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	// A temp dir can sit inside some other checkout; only assert when it does not.
	if _, err := run(dir, "rev-parse", "--git-dir"); err == nil {
		t.Skip("temp dir is inside a git work tree")
	}
	_, err := HasChanges(dir)
	assert.Error(t, err)
}

func TestCommitAll(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.txt"), []byte("hello"), 0o644))

	hash, err := CommitAll(dir, "run 20250115-001: 2 files", testAuthor)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	out, err := run(dir, "log", "--format=%s", "-1")
	require.NoError(t, err)
	assert.Equal(t, "run 20250115-001: 2 files", out)

	out, err = run(dir, "log", "--format=%an <%ae>", "-1")
	require.NoError(t, err)
	assert.Equal(t, "Test Author <test@example.com>", out)
}

func TestCommitAll_NothingToCommit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	_, err := CommitAll(dir, "empty", testAuthor)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git commit")
}

func TestCommitAll_CommitterIdentity(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x"), 0o644))

	_, err := CommitAll(dir, "run", testAuthor)
	require.NoError(t, err)

	out, err := run(dir, "log", "--format=%cn <%ce>", "-1")
	require.NoError(t, err)
	assert.Equal(t, "Test Author <test@example.com>", out)
}

func TestSubcommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"status", "--porcelain"}, "status"},
		{[]string{"-c", "user.name=x", "-c", "user.email=y", "commit", "-m", "msg"}, "commit"},
		{[]string{"-C", "/tmp", "--no-pager", "log"}, "log"},
		{[]string{"--version"}, "--version"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, subcommand(tt.args), "%v", tt.args)
	}
}

func TestAuthor_String(t *testing.T) {
	assert.Equal(t, "Test Author <test@example.com>", testAuthor.String())
}
