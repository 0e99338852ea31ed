package util

import (
	"errors"
	"strings"
)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// StorageFileName derives the stored file name from a document title, falling
// back to the original upload name when no title was given. Titles are
// lowercased with spaces collapsed to underscores; the original extension is
// preserved.
func StorageFileName(title, originalName string) (string, error) {
	ext := ""
	if idx := strings.LastIndex(originalName, "."); idx >= 0 {
		ext = strings.ToLower(originalName[idx:])
	}
	base := strings.TrimSpace(title)
	if base == "" {
		return SanitizeFileName(originalName)
	}
	base = strings.ToLower(base)
	base = strings.ReplaceAll(base, " ", "_")
	return SanitizeFileName(base + ext)
}
