// Package importer reads bank exports from disk and slices their rows
// into transaction records according to a bank profile.
package importer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	importDir    = "import"
	processedDir = "import/processed"
)

// FileInfo describes a statement export waiting in import/.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

func isExport(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return true
	}
	return false
}

// Scan returns the exports in <root>/import/, sorted by name. Hidden files
// and subdirectories are ignored. A missing import dir means no files.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", importDir, err)
	}

	var files []FileInfo
	for _, e := range entries {
		if !e.Type().IsRegular() || !isExport(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{Name: e.Name(), Path: filepath.Join(dir, e.Name()), Size: info.Size()})
	}
	slices.SortFunc(files, func(a, b FileInfo) int { return strings.Compare(a.Name, b.Name) })
	return files, nil
}

// MarkProcessed moves a converted export into import/processed/ and returns
// its new path. An earlier statement with the same name is kept; the new
// one gets a numeric suffix ("jan-2.csv").
func MarkProcessed(root, fileName string) (string, error) {
	dstDir := filepath.Join(root, processedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	ext := filepath.Ext(fileName)
	base := strings.TrimSuffix(fileName, ext)
	for n := 2; ; n++ {
		if _, err := os.Lstat(dst); errors.Is(err, fs.ErrNotExist) {
			break
		}
		dst = filepath.Join(dstDir, fmt.Sprintf("%s-%d%s", base, n, ext))
	}

	if err := os.Rename(filepath.Join(root, importDir, fileName), dst); err != nil {
		return "", fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return dst, nil
}
