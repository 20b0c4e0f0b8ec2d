package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
)

// parseUint64 parses a string to uint64, returning 0 on error.
func parseUint64(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}

// readString reads a file from fsys and returns its trimmed content.
func readString(fsys fs.ReadFileFS, name string) (string, bool) {
	data, err := fsys.ReadFile(name)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// readInt64 reads a decimal int64 from a single-value file.
func readInt64(fsys fs.ReadFileFS, name string) (int64, bool) {
	s, ok := readString(fsys, name)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// readLines reads a file and splits it into lines.
func readLines(fsys fs.ReadFileFS, name string) ([]string, error) {
	data, err := fsys.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return strings.Split(string(data), "\n"), nil
}

// readLink resolves a symbolic link if fsys supports it.
func readLink(fsys FS, name string) (string, error) {
	l, ok := fsys.(LinkFS)
	if !ok {
		return "", fmt.Errorf("readlink %s: %w", name, ErrUnsupported)
	}
	return l.ReadLink(name)
}

// splitNul splits a NUL-separated /proc file such as cmdline or environ.
func splitNul(data []byte) []string {
	s := strings.TrimRight(string(data), "\x00")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\x00")
}

// isNotExist reports whether err means the file or process is gone.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
