package archive

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateExtractPath joins an archive entry name onto destPath and rejects
// names that would land outside of it.
func ValidateExtractPath(destPath, entryName string) (string, error) {
	path := filepath.Join(destPath, entryName)

	if !WithinRoot(destPath, path) {
		return "", fmt.Errorf("path outside destination directory: %s", entryName)
	}

	return path, nil
}

// WithinRoot reports whether path is root itself or lies beneath it.
func WithinRoot(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
