package io

import (
	"io"
	"os"

	"github.com/flowscope/flowscope/pkg/errors"
)

// StdinPath is the conventional path argument meaning "read from stdin".
const StdinPath = "-"

// ReadPayload reads a workflow payload from path. An empty path or
// [StdinPath] reads stdin instead, allowing payloads to be piped in.
//
// The bytes are returned as-is; callers decide whether they hold raw
// JSON or a base64-wrapped document.
func ReadPayload(path string) ([]byte, error) {
	if path == "" || path == StdinPath {
		return ReadAll(os.Stdin)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return data, nil
}

// ReadAll drains r into memory. Payloads are small (capped upstream by
// graph validation), so buffering the whole document is fine.
func ReadAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read payload")
	}
	return data, nil
}
