// Package emitter writes generated artifacts to disk.
package emitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Options controls where and whether a file is written.
type Options struct {
	Path string // required; destination file, or an existing directory
	// DefaultName is the file name used when Path is an existing directory.
	DefaultName string
	DryRun      bool // don't write, only plan
}

// PlannedFile describes the file the emitter writes or would write.
type PlannedFile struct {
	Path string
	Size int
	Mode os.FileMode
}

// Emit writes content to the destination in opts. The write goes through a
// temporary file in the same directory followed by a rename, so a failed run
// never leaves a truncated destination behind.
func Emit(ctx context.Context, content []byte, opts Options) (*PlannedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.Path) == "" {
		return nil, fmt.Errorf("emitter: Path is required")
	}
	dest, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve destination: %w", err)
	}
	if st, err := os.Stat(dest); err == nil && st.IsDir() {
		if opts.DefaultName == "" {
			return nil, fmt.Errorf("emitter: destination %q is a directory", dest)
		}
		dest = filepath.Join(dest, opts.DefaultName)
	}
	planned := &PlannedFile{Path: dest, Size: len(content), Mode: 0o644}
	if opts.DryRun {
		return planned, nil
	}
	if err := writeAtomic(dest, content, planned.Mode); err != nil {
		return nil, err
	}
	return planned, nil
}

func writeAtomic(dest string, content []byte, mode os.FileMode) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", dest, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp %s: %w", dest, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", dest, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", dest, err)
	}
	return nil
}
