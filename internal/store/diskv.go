package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"
)

type diskStore struct {
	d        *diskv.Diskv
	basePath string
}

// Open returns a Store backed by one file per key under basePath. Writes go
// through a temp dir and rename so a reader never observes a partial value.
func Open(basePath string) (Store, error) {
	if basePath == "" {
		return nil, errors.New("store: base path is empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	tempDir := filepath.Join(basePath, ".tmp")
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure temp dir: %w", err)
	}

	log.Printf("[STORE] Opened key-value store at %s", basePath)

	return &diskStore{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			TempDir:      tempDir,
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 64 * 1024,
		}),
		basePath: basePath,
	}, nil
}

func (s *diskStore) Read(key string) ([]byte, error) {
	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}
	return val, nil
}

func (s *diskStore) Write(key string, value []byte) error {
	if err := s.d.Write(key, value); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}

func (s *diskStore) Erase(key string) error {
	if err := s.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: erase %s: %w", key, err)
	}
	return nil
}

func (s *diskStore) Has(key string) bool {
	return s.d.Has(key)
}
