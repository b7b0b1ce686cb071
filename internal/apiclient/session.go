package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"visa-advisory-portal/internal/model"
)

// Credentials : what a login leaves behind
type Credentials struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	Role         model.Role `json:"role"`
}

// TokenStore : one storage scope for credentials
type TokenStore interface {
	Load() (*Credentials, error)
	Save(credentials *Credentials) error
	Clear() error
}

// MemoryStore : session scope, gone with the process
type MemoryStore struct {
	mu          sync.Mutex
	credentials *Credentials
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (*Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credentials == nil {
		return nil, nil
	}
	c := *s.credentials
	return &c, nil
}

func (s *MemoryStore) Save(credentials *Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *credentials
	s.credentials = &c
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials = nil
	return nil
}

// FileStore : persistent scope, a 0600 JSON file
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Load() (*Credentials, error) {
	raw, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var c Credentials
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode credentials: %w", err)
	}
	return &c, nil
}

func (s *FileStore) Save(credentials *Credentials) error {
	raw, err := json.Marshal(credentials)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	if err := os.WriteFile(s.Path, raw, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// Session : authentication context shared by every call of a Client.
// Credentials live in exactly one scope: session by default, persistent when remembered.
type Session struct {
	mu         sync.Mutex
	session    TokenStore
	persistent TokenStore
}

func NewSession(session, persistent TokenStore) *Session {
	if session == nil {
		session = NewMemoryStore()
	}
	return &Session{session: session, persistent: persistent}
}

// Start : stores the credentials in the scope chosen by remember and clears the other one
func (s *Session) Start(credentials Credentials, remember bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, other := s.session, s.persistent
	if remember {
		if s.persistent == nil {
			return errors.New("no persistent token store configured")
		}
		target, other = s.persistent, s.session
	}

	if other != nil {
		if err := other.Clear(); err != nil {
			return err
		}
	}
	return target.Save(&credentials)
}

// Credentials : session scope first, then persistent. Nil when unauthenticated.
func (s *Session) Credentials() (*Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, store := range []TokenStore{s.session, s.persistent} {
		if store == nil {
			continue
		}
		c, err := store.Load()
		if err != nil {
			return nil, err
		}
		if c != nil && c.AccessToken != "" {
			return c, nil
		}
	}
	return nil, nil
}

// Token : current access token, empty when unauthenticated
func (s *Session) Token() string {
	c, err := s.Credentials()
	if err != nil || c == nil {
		return ""
	}
	return c.AccessToken
}

// replace : rotates the credentials inside whichever scope currently holds them
func (s *Session) replace(credentials Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persistent != nil {
		if c, err := s.persistent.Load(); err == nil && c != nil {
			return s.persistent.Save(&credentials)
		}
	}
	return s.session.Save(&credentials)
}

// End : forgets the credentials in both scopes
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, store := range []TokenStore{s.session, s.persistent} {
		if store == nil {
			continue
		}
		if err := store.Clear(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
