// Package store persists registered wallets as a JSON array file.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"WalletReg/internal/wallet"
)

// JSONStore rewrites the whole file on every Append; no handle is kept open.
// Existing entries are carried over byte for byte, whatever their shape.
type JSONStore struct {
	Path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{Path: path}
}

// Load returns the stored wallets. A missing file is an empty list.
func (s *JSONStore) Load() ([]wallet.Identity, error) {
	out := []wallet.Identity{}
	data, err := s.read()
	if err != nil || len(data) == 0 {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %q: %w", s.Path, err)
	}
	return out, nil
}

// Append reads the current array, adds w and writes it back.
func (s *JSONStore) Append(w wallet.Identity) error {
	list, err := s.loadRaw()
	if err != nil {
		return err
	}
	entry, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode wallet: %w", err)
	}
	list = append(list, entry)

	b, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encode wallets: %w", err)
	}
	return s.replace(append(b, '\n'))
}

func (s *JSONStore) read() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", s.Path, err)
	}
	return data, nil
}

func (s *JSONStore) loadRaw() ([]json.RawMessage, error) {
	data, err := s.read()
	if err != nil || len(data) == 0 {
		return nil, err
	}
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode %q: %w", s.Path, err)
	}
	return list, nil
}

// replace writes data to a temp file next to Path and renames it over Path,
// so a crash mid-write leaves the previous file intact.
func (s *JSONStore) replace(data []byte) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %q: %w", s.Path, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replace %q: %w", s.Path, err)
	}
	return nil
}
