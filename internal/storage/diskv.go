package storage

import (
	"encoding/json"
	"fmt"

	"github.com/peterbourgon/diskv/v3"
)

// DiskvStore keeps each document as one JSON file under a base directory.
// Useful on devices where a single flat file tree is easier to inspect and
// back up than a database file.
type DiskvStore struct {
	d *diskv.Diskv
}

// OpenDiskv creates a file-backed store rooted at basePath.
func OpenDiskv(basePath string) *DiskvStore {
	return &DiskvStore{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		CacheSizeMax: 1024 * 1024, // 1MB
	})}
}

func (s *DiskvStore) Read(name string, v any) (bool, error) {
	if !s.d.Has(name) {
		return false, nil
	}
	data, err := s.d.Read(name)
	if err != nil {
		return false, fmt.Errorf("read document %q: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode document %q: %w", name, err)
	}
	return true, nil
}

func (s *DiskvStore) Write(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode document %q: %w", name, err)
	}
	if err := s.d.Write(name, data); err != nil {
		return fmt.Errorf("write document %q: %w", name, err)
	}
	return nil
}

func (s *DiskvStore) Names() ([]string, error) {
	var names []string
	for key := range s.d.Keys(nil) {
		names = append(names, key)
	}
	return names, nil
}

func (s *DiskvStore) Close() error {
	return nil
}
