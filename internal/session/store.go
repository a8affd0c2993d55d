// Package session holds the locally persisted bearer credential and the
// guard that decides whether it is still usable.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Fixed keys under which the two session values are persisted.
const (
	TokenKey    = "token"
	IdentityKey = "user_email"
)

// Credentials is the persisted session: a bearer token and the identity
// (an email) used as the user key in API paths.
type Credentials struct {
	Token    string
	Identity string
}

// Complete reports whether both values are present.
func (c Credentials) Complete() bool {
	return c.Token != "" && c.Identity != ""
}

// Store persists Credentials. Get returns zero values for anything that is
// not stored; it only errors on I/O failures.
type Store interface {
	Get() (Credentials, error)
	Set(Credentials) error
	Clear() error
}

// FileStore keeps each value in its own 0600 file inside dir.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a store rooted at dir. The directory is created on
// the first Set.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Get() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.read(TokenKey)
	if err != nil {
		return Credentials{}, err
	}
	id, err := s.read(IdentityKey)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Token: tok, Identity: id}, nil
}

func (s *FileStore) Set(c Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("session.FileStore.Set: create %s: %w", s.dir, err)
	}
	if err := s.write(TokenKey, c.Token); err != nil {
		return err
	}
	return s.write(IdentityKey, c.Identity)
}

// Clear removes both values. Missing files are not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, key := range []string{TokenKey, IdentityKey} {
		if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("session.FileStore.Clear: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (s *FileStore) read(key string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session.FileStore.Get: read %s: %w", key, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileStore) write(key, value string) error {
	path := filepath.Join(s.dir, key)
	if value == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("session.FileStore.Set: remove %s: %w", key, err)
		}
		return nil
	}
	if err := os.WriteFile(path, []byte(value), 0600); err != nil {
		return fmt.Errorf("session.FileStore.Set: write %s: %w", key, err)
	}
	return nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
}

// NewMemoryStore returns a store pre-loaded with c.
func NewMemoryStore(c Credentials) *MemoryStore {
	return &MemoryStore{creds: c}
}

func (s *MemoryStore) Get() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds, nil
}

func (s *MemoryStore) Set(c Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = c
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	return nil
}

// EnvStore overlays environment-provided credentials on a backing store:
// env var > file > empty, per value. Clear and Set go to the backing store,
// and Clear also masks the overlay for the rest of the process so a
// cleared session stays cleared.
type EnvStore struct {
	base     Store
	token    string
	identity string

	mu      sync.Mutex
	cleared bool
}

// NewEnvStore wraps base with the given override values.
func NewEnvStore(base Store, token, identity string) *EnvStore {
	return &EnvStore{base: base, token: token, identity: identity}
}

func (s *EnvStore) Get() (Credentials, error) {
	c, err := s.base.Get()
	if err != nil {
		return Credentials{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleared {
		return c, nil
	}
	if s.token != "" {
		c.Token = s.token
	}
	if s.identity != "" {
		c.Identity = s.identity
	}
	return c, nil
}

func (s *EnvStore) Set(c Credentials) error {
	s.mu.Lock()
	s.cleared = true
	s.mu.Unlock()
	return s.base.Set(c)
}

func (s *EnvStore) Clear() error {
	s.mu.Lock()
	s.cleared = true
	s.mu.Unlock()
	return s.base.Clear()
}
