package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flowscope/flowscope/pkg/errors"
)

func TestReadPayloadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	payload := []byte(`{"v":1,"nodes":[],"edges":[]}`)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := ReadPayload(path)
	if err != nil {
		t.Fatalf("ReadPayload() error: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("ReadPayload() = %q, want %q", got, payload)
	}
}

func TestReadPayloadMissingFile(t *testing.T) {
	_, err := ReadPayload(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("ReadPayload() expected error for missing file")
	}
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
}

func TestReadPayloadStdin(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	old := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = old }()

	payload := `{"v":1,"nodes":[],"edges":[]}`
	if _, err := w.WriteString(payload); err != nil {
		t.Fatalf("write pipe: %v", err)
	}
	w.Close()

	got, err := ReadPayload(StdinPath)
	if err != nil {
		t.Fatalf("ReadPayload(-) error: %v", err)
	}
	if string(got) != payload {
		t.Errorf("ReadPayload(-) = %q, want %q", got, payload)
	}
}

func TestWriteArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.svg")
	data := []byte("<svg></svg>")

	if err := WriteArtifact(path, data); err != nil {
		t.Fatalf("WriteArtifact() error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("artifact = %q, want %q", got, data)
	}
}

func TestWriteArtifactBadPath(t *testing.T) {
	err := WriteArtifact(filepath.Join(t.TempDir(), "missing", "out.svg"), []byte("x"))
	if err == nil {
		t.Fatal("WriteArtifact() expected error for missing parent dir")
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("%s is not a directory", dir)
	}

	// Empty dir is a no-op, not an error.
	if err := EnsureDir(""); err != nil {
		t.Errorf("EnsureDir(\"\") error: %v", err)
	}
}
