// Package prefs is a small typed key-value store persisted to a JSON file,
// optionally encrypted at rest.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
)

const filePermissions = 0o600

type kind string

const (
	kindInt    kind = "int"
	kindLong   kind = "long"
	kindString kind = "string"
	kindBool   kind = "bool"
)

type entry struct {
	Kind  kind            `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Store holds preferences in memory and writes them to disk either on every
// change (auto-commit) or when Commit is called.
type Store struct {
	mu         sync.Mutex
	path       string
	values     map[string]entry
	autoCommit bool
	dirty      bool
	cipher     Cipher
	logger     *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithAutoCommit sets whether setters persist immediately. Defaults to true.
func WithAutoCommit(on bool) Option {
	return func(s *Store) { s.autoCommit = on }
}

// WithCipher encrypts the file content.
func WithCipher(c Cipher) Option {
	return func(s *Store) { s.cipher = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open loads the store at path. A missing file yields an empty store.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:       path,
		values:     make(map[string]entry),
		autoCommit: true,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("Preferences file not found, starting empty", zap.String("path", path))
			return s, nil
		}
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	if s.cipher != nil {
		if data, err = s.cipher.Open(data); err != nil {
			return nil, fmt.Errorf("failed to decrypt preferences: %w", err)
		}
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("failed to parse preferences: %w", err)
	}
	if s.values == nil {
		s.values = make(map[string]entry)
	}

	s.logger.Info("Preferences loaded",
		zap.String("path", path),
		zap.Int("keys", len(s.values)),
		zap.Bool("encrypted", s.cipher != nil))
	return s, nil
}

// SetAutoCommit switches between immediate and batched persistence.
// Turning auto-commit on flushes pending changes.
func (s *Store) SetAutoCommit(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autoCommit = on
	if on {
		return s.commitLocked()
	}
	return nil
}

// AutoCommit reports whether setters persist immediately.
func (s *Store) AutoCommit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoCommit
}

func (s *Store) SetInt(key string, v int32) error  { return s.set(key, kindInt, v) }
func (s *Store) SetLong(key string, v int64) error { return s.set(key, kindLong, v) }
func (s *Store) SetString(key, v string) error     { return s.set(key, kindString, v) }
func (s *Store) SetBool(key string, v bool) error  { return s.set(key, kindBool, v) }

// GetInt returns the int stored under key, or 0.
func (s *Store) GetInt(key string) int32 {
	var v int32
	s.get(key, kindInt, &v)
	return v
}

// GetLong returns the long stored under key, or 0.
func (s *Store) GetLong(key string) int64 {
	var v int64
	s.get(key, kindLong, &v)
	return v
}

// GetString returns the string stored under key, or "".
func (s *Store) GetString(key string) string {
	v, _ := s.LookupString(key)
	return v
}

// LookupString returns the string stored under key and whether it exists.
func (s *Store) LookupString(key string) (string, bool) {
	var v string
	ok := s.get(key, kindString, &v)
	return v, ok
}

// GetBool returns the bool stored under key, or false.
func (s *Store) GetBool(key string) bool {
	var v bool
	s.get(key, kindBool, &v)
	return v
}

// Has reports whether key holds a value of any type.
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// All returns every value decoded to its Go type (int32, int64, string, bool).
func (s *Store) All() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]any, len(s.values))
	for k, e := range s.values {
		var err error
		switch e.Kind {
		case kindInt:
			var v int32
			err = json.Unmarshal(e.Value, &v)
			out[k] = v
		case kindLong:
			var v int64
			err = json.Unmarshal(e.Value, &v)
			out[k] = v
		case kindString:
			var v string
			err = json.Unmarshal(e.Value, &v)
			out[k] = v
		case kindBool:
			var v bool
			err = json.Unmarshal(e.Value, &v)
			out[k] = v
		}
		if err != nil {
			s.logger.Warn("Skipping unreadable preference", zap.String("key", k), zap.Error(err))
			delete(out, k)
		}
	}
	return out
}

// Remove deletes key.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.changedLocked()
}

// Clear deletes every key.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[string]entry)
	return s.changedLocked()
}

// Commit writes pending changes to disk.
func (s *Store) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked()
}

func (s *Store) set(key string, k kind, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = entry{Kind: k, Value: raw}
	return s.changedLocked()
}

func (s *Store) get(key string, k kind, dst any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.values[key]
	if !ok {
		return false
	}
	if e.Kind != k {
		s.logger.Debug("Preference type mismatch",
			zap.String("key", key),
			zap.String("stored", string(e.Kind)),
			zap.String("requested", string(k)))
		return false
	}
	if err := json.Unmarshal(e.Value, dst); err != nil {
		s.logger.Warn("Failed to decode preference", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) changedLocked() error {
	s.dirty = true
	if s.autoCommit {
		return s.commitLocked()
	}
	return nil
}

func (s *Store) commitLocked() error {
	if !s.dirty {
		return nil
	}

	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if s.cipher != nil {
		if data, err = s.cipher.Seal(data); err != nil {
			return fmt.Errorf("failed to encrypt preferences: %w", err)
		}
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return err
	}

	s.dirty = false
	s.logger.Debug("Preferences saved", zap.String("path", s.path), zap.Int("keys", len(s.values)))
	return nil
}

// writeFileAtomic writes to a temp file in the same directory and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create preferences dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, filePermissions); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace preferences file: %w", err)
	}
	return nil
}
