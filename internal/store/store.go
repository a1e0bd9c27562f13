// Package store persists merged extraction results as JSON files on disk.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrInvalidID marks document IDs that could escape the artifact directory.
var ErrInvalidID = errors.New("invalid document id")

// Store writes one artifact per document under a base directory.
type Store struct {
	dir string
}

// New creates the base directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes v as indented JSON under docID. An existing artifact with
// the same docID is replaced.
func (s *Store) Save(docID string, v any) error {
	if err := validID(docID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	data = append(data, '\n')

	path := s.path(docID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// Load reads the artifact for docID into v.
func (s *Store) Load(docID string, v any) error {
	if err := validID(docID); err != nil {
		return err
	}
	data, err := os.ReadFile(s.path(docID))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode artifact %s: %w", docID, err)
	}
	return nil
}

// Raw returns the stored JSON bytes for docID.
func (s *Store) Raw(docID string) ([]byte, error) {
	if err := validID(docID); err != nil {
		return nil, err
	}
	return os.ReadFile(s.path(docID))
}

// List returns all stored document IDs, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the artifact for docID. Missing artifacts are not an error.
func (s *Store) Delete(docID string) error {
	if err := validID(docID); err != nil {
		return err
	}
	err := os.Remove(s.path(docID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete artifact: %w", err)
	}
	return nil
}

// Exists reports whether an artifact is stored for docID.
func (s *Store) Exists(docID string) bool {
	if validID(docID) != nil {
		return false
	}
	_, err := os.Stat(s.path(docID))
	return err == nil
}

func (s *Store) path(docID string) string {
	return filepath.Join(s.dir, docID+".json")
}

func validID(id string) error {
	if id == "" || strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
