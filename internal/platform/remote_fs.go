package platform

import (
	"context"
	"io"
	"io/fs"
	"strings"
	"time"
)

// remoteFS exposes the remote root filesystem through shell commands.
// Each call runs one command.
type remoteFS struct {
	runner commandRunner
}

func (r *remoteFS) run(op, name, cmd string) (string, error) {
	if !fs.ValidPath(name) || !validatePath(name) {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	out, err := r.runner.runCommand(context.Background(), cmd+" "+shellEscape("/"+name))
	if err != nil {
		switch {
		case stderrContains(err, "No such file or directory"), stderrContains(err, "No such process"):
			err = fs.ErrNotExist
		case stderrContains(err, "Permission denied"):
			err = fs.ErrPermission
		}
		return "", &fs.PathError{Op: op, Path: name, Err: err}
	}
	return out, nil
}

func (r *remoteFS) Open(name string) (fs.File, error) {
	data, err := r.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return &remoteFile{name: name, r: strings.NewReader(string(data)), size: int64(len(data))}, nil
}

func (r *remoteFS) ReadFile(name string) ([]byte, error) {
	out, err := r.run("read", name, "cat")
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func (r *remoteFS) ReadDir(name string) ([]fs.DirEntry, error) {
	out, err := r.run("readdir", name, "ls -1A")
	if err != nil {
		return nil, err
	}
	var entries []fs.DirEntry
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			entries = append(entries, remoteEntry(line))
		}
	}
	return entries, nil
}

func (r *remoteFS) ReadLink(name string) (string, error) {
	out, err := r.run("readlink", name, "readlink")
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// remoteEntry is a directory entry whose type is not known without an
// extra round trip.
type remoteEntry string

func (e remoteEntry) Name() string               { return string(e) }
func (e remoteEntry) IsDir() bool                { return false }
func (e remoteEntry) Type() fs.FileMode          { return 0 }
func (e remoteEntry) Info() (fs.FileInfo, error) { return remoteInfo{name: string(e)}, nil }

type remoteInfo struct {
	name string
	size int64
}

func (i remoteInfo) Name() string       { return i.name }
func (i remoteInfo) Size() int64        { return i.size }
func (i remoteInfo) Mode() fs.FileMode  { return 0o444 }
func (i remoteInfo) ModTime() time.Time { return time.Time{} }
func (i remoteInfo) IsDir() bool        { return false }
func (i remoteInfo) Sys() any           { return nil }

type remoteFile struct {
	name string
	r    io.Reader
	size int64
}

func (f *remoteFile) Stat() (fs.FileInfo, error) {
	return remoteInfo{name: f.name[strings.LastIndexByte(f.name, '/')+1:], size: f.size}, nil
}
func (f *remoteFile) Read(p []byte) (int, error) { return f.r.Read(p) }
func (f *remoteFile) Close() error               { return nil }

// shellEscape escapes a string for safe use in shell commands.
// It wraps the string in single quotes and escapes any single quotes within it.
func shellEscape(s string) string {
	// '\'' ends the quote, adds an escaped quote, and starts a new quote
	escaped := strings.ReplaceAll(s, "'", "'\\''")
	return "'" + escaped + "'"
}

// validatePath accepts only alphanumerics, dash, underscore, slash, dot,
// colon and plus. Directory traversal with ".." is rejected.
func validatePath(path string) bool {
	if path == "" || strings.Contains(path, "..") {
		return false
	}
	for _, c := range path {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || c == '-' || c == '_' ||
			c == '/' || c == '.' || c == ':' || c == '+') {
			return false
		}
	}
	return true
}
