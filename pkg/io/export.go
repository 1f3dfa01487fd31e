package io

import (
	"os"

	"github.com/flowscope/flowscope/pkg/errors"
)

// WriteArtifact writes rendered artifact bytes to path, creating or
// truncating the file. An empty path or [StdinPath] writes to stdout,
// which is how single-format renders compose with pipes.
func WriteArtifact(path string, data []byte) error {
	if path == "" || path == StdinPath {
		if _, err := os.Stdout.Write(data); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write stdout")
		}
		return nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// EnsureDir creates dir and any missing parents. Used before writing a
// multi-format artifact set into an output directory.
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", dir)
	}
	return nil
}
