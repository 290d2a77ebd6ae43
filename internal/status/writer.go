// internal/status/writer.go
package status

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Writer is the delivery-only contract for port status.
// It receives a snapshot and writes it verbatim.
// No logic, no interpretation.
type Writer interface {
	WriteStatus(s Snapshot) error
}

// FileWriter replaces a file with the CBOR snapshot on every write.
// Readers never observe a partially written file.
type FileWriter struct {
	path string
}

// NewFileWriter returns a writer for path. The directory must exist.
func NewFileWriter(path string) (*FileWriter, error) {
	if path == "" {
		return nil, errors.New("status writer: path required")
	}
	return &FileWriter{path: path}, nil
}

// Path is the snapshot file.
func (w *FileWriter) Path() string { return w.path }

// WriteStatus encodes s and renames it over the snapshot file.
func (w *FileWriter) WriteStatus(s Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return fmt.Errorf("status writer: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.path), "."+filepath.Base(w.path)+".*")
	if err != nil {
		return fmt.Errorf("status writer: %w", err)
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("status writer: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("status writer: close %s: %w", name, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return fmt.Errorf("status writer: %w", err)
	}
	if err := os.Rename(name, w.path); err != nil {
		os.Remove(name)
		return fmt.Errorf("status writer: %w", err)
	}
	return nil
}

// ReadFile loads a snapshot written by a FileWriter.
func ReadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	return Decode(data)
}
