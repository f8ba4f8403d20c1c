package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GetAbsolutePath joins the current working directory with a relative path.
// Absolute paths are returned cleaned but otherwise unchanged.
func GetAbsolutePath(relativePath string) (string, error) {
	if filepath.IsAbs(relativePath) {
		return filepath.Clean(relativePath), nil
	}

	root, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}

	return filepath.Join(root, relativePath), nil
}

// FileStem returns the base name of a path without its extension.
func FileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// FormatIndices renders at most max indices as a bracketed list, adding "..."
// when the list was truncated. A max of zero or less renders all indices.
func FormatIndices(indices []int, max int) string {
	shown := indices
	truncated := false
	if max > 0 && len(indices) > max {
		shown = indices[:max]
		truncated = true
	}

	parts := make([]string, len(shown))
	for i, idx := range shown {
		parts[i] = fmt.Sprint(idx)
	}

	out := "[" + strings.Join(parts, ", ") + "]"
	if truncated {
		out += "..."
	}
	return out
}

// FormatNames renders strings as a quoted, bracketed list.
func FormatNames(names []string) string {
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = "'" + name + "'"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
