package store

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
)

// ErrNotFound is returned when a key has never been written. Callers treat it
// as a first-run read miss and fall back to their documented default.
var ErrNotFound = errors.New("store: key not found")

// Store is a small durable key-value store. Values are opaque bytes; the
// typed helpers below encode booleans and floats as text so the files stay
// readable on disk.
type Store interface {
	Read(key string) ([]byte, error)
	Write(key string, value []byte) error
	Erase(key string) error
	Has(key string) bool
}

// Bool reads a boolean. A missing key returns def and ErrNotFound.
func Bool(s Store, key string, def bool) (bool, error) {
	data, err := s.Read(key)
	if err != nil {
		return def, err
	}
	v, err := strconv.ParseBool(string(data))
	if err != nil {
		return def, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return v, nil
}

// SetBool writes a boolean.
func SetBool(s Store, key string, v bool) error {
	return s.Write(key, []byte(strconv.FormatBool(v)))
}

// Float reads a float64. A missing key returns def and ErrNotFound.
func Float(s Store, key string, def float64) (float64, error) {
	data, err := s.Read(key)
	if err != nil {
		return def, err
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return def, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return v, nil
}

// SetFloat writes a float64.
func SetFloat(s Store, key string, v float64) error {
	return s.Write(key, []byte(strconv.FormatFloat(v, 'g', -1, 64)))
}

// Int reads an int. A missing key returns def and ErrNotFound.
func Int(s Store, key string, def int) (int, error) {
	data, err := s.Read(key)
	if err != nil {
		return def, err
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return def, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return v, nil
}

// SetInt writes an int.
func SetInt(s Store, key string, v int) error {
	return s.Write(key, []byte(strconv.Itoa(v)))
}

// Memory is an in-process Store. It is what tests and the --test self check
// run against.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Read(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Write(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

func (m *Memory) Erase(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *Memory) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.data[key]
	return ok
}

// Keys returns a snapshot of every key currently held.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}
