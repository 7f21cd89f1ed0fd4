// Package sink provides output destinations for encoded documents.
package sink

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gitlab.com/tozd/go/errors"

	"github.com/broady/capir/internal/clog"
)

// Sink receives encoded output files.
// Implementations MUST be safe for concurrent calls.
type Sink interface {
	// WriteFile writes content to the specified path.
	// The path is relative; the sink determines the actual location.
	WriteFile(ctx context.Context, path string, content []byte) error
}

// FilesystemSink writes to a directory on the local filesystem.
type FilesystemSink struct {
	// Root is the base directory for all writes.
	Root string

	// Mode is the file permission mode (default: 0644).
	Mode os.FileMode

	// Overwrite controls behavior for existing files.
	// If false, returns an error when a file exists.
	Overwrite bool
}

// NewFilesystemSink creates a FilesystemSink writing below root.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{
		Root:      root,
		Mode:      0644,
		Overwrite: true,
	}
}

// WriteFile writes content to path within the root directory, creating
// parent directories as needed. Writes go through a temp file and a rename,
// so readers never observe a partial document.
func (s *FilesystemSink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return errors.WithDetails(err, "path", path)
	}
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	fullPath := filepath.Join(s.Root, filepath.FromSlash(path))
	absRoot, err := filepath.Abs(s.Root)
	if err != nil {
		return errors.Errorf("resolve root directory: %w", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return errors.Errorf("resolve path: %w", err)
	}
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) && absPath != absRoot {
		return errors.Errorf("path escapes root directory: %q", path)
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Errorf("create directories: %w", err)
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0644
	}

	tmp, err := os.CreateTemp(dir, ".capir-*.tmp")
	if err != nil {
		return errors.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	// Leftovers keep the .capir-*.tmp prefix.
	cleanup := func() { _ = os.Remove(tmpPath) }

	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()
	switch {
	case writeErr != nil:
		cleanup()
		return errors.Errorf("write temp file: %w", writeErr)
	case closeErr != nil:
		cleanup()
		return errors.Errorf("close temp file: %w", closeErr)
	}

	if err := os.Chmod(tmpPath, mode); err != nil {
		cleanup()
		return errors.Errorf("set file mode: %w", err)
	}
	if err := ctx.Err(); err != nil {
		cleanup()
		return errors.WithStack(err)
	}

	if s.Overwrite {
		if err := os.Rename(tmpPath, fullPath); err != nil {
			cleanup()
			return errors.Errorf("rename temp file: %w", err)
		}
	} else {
		// os.Link fails with EEXIST when the target exists.
		if err := os.Link(tmpPath, fullPath); err != nil {
			cleanup()
			if errors.Is(err, os.ErrExist) {
				return errors.Errorf("file already exists: %q", path)
			}
			return errors.Errorf("create file: %w", err)
		}
		cleanup()
	}

	clog.Ctx(ctx).DebugContext(ctx, "wrote output", "path", fullPath, "bytes", len(content))
	return nil
}

// WriterSink writes every file to a single io.Writer, typically stdout.
// Paths are only validated.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a WriterSink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// WriteFile writes content to the underlying writer.
func (s *WriterSink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return errors.WithDetails(err, "path", path)
	}
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(content)
	return errors.WithStack(err)
}

// MemorySink stores output files in memory.
// All operations are thread-safe.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink creates a new MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// WriteFile stores a copy of content under path.
func (s *MemorySink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return errors.WithDetails(err, "path", path)
	}
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = append([]byte(nil), content...)
	return nil
}

// Files returns a copy of all written files.
func (s *MemorySink) Files() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]byte, len(s.files))
	for path, content := range s.files {
		result[path] = append([]byte(nil), content...)
	}
	return result
}

// Get returns the content of a single file, or nil if not found.
func (s *MemorySink) Get(path string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.files[path]
	if !ok {
		return nil
	}
	return append([]byte(nil), content...)
}

// Reset clears all stored files.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string][]byte)
}

// Sentinel errors returned by ValidatePath.
var (
	ErrEmptyPath     = errors.Base("path is empty")
	ErrAbsolutePath  = errors.Base("absolute paths not allowed")
	ErrPathTraversal = errors.Base("path traversal not allowed")
	ErrUncleanPath   = errors.Base("path is not clean")
)

// ValidatePath checks if a path is valid for output.
// Paths MUST be relative (no leading /), use / as separator,
// not contain .. components, and be clean (no ./, duplicate /).
func ValidatePath(path string) error {
	if path == "" {
		return errors.WithStack(ErrEmptyPath)
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return errors.WithStack(ErrAbsolutePath)
	}
	// Windows drive letters, even on Unix.
	if len(path) >= 2 && path[1] == ':' && ((path[0] >= 'A' && path[0] <= 'Z') || (path[0] >= 'a' && path[0] <= 'z')) {
		return errors.WithStack(ErrAbsolutePath)
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return errors.WithStack(ErrPathTraversal)
		}
	}
	if cleaned := filepath.ToSlash(filepath.Clean(path)); cleaned != filepath.ToSlash(path) {
		return errors.WithDetails(ErrUncleanPath, "expected", cleaned)
	}
	return nil
}
