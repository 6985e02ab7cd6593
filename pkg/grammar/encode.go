package grammar

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode writes the tables to w in msgpack form.
func (t *Tables) Encode(w io.Writer) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode grammar tables: %w", err)
	}
	return nil
}

// Decode reads tables written by Encode and validates them.
func Decode(r io.Reader) (*Tables, error) {
	var t Tables
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode grammar tables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// WriteFile encodes the tables into path, replacing it atomically.
func (t *Tables) WriteFile(path string) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".tables-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(f.Name()) }()

	if err := t.Encode(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadFile decodes tables from path.
func ReadFile(path string) (*Tables, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by the caller
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}
