package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// UserStore persists users in a single JSON file, rewritten atomically on
// every change.
type UserStore struct {
	mu   sync.RWMutex
	path string
}

// userSchema is the on-disk JSON layout.
type userSchema struct {
	Users []User `json:"users"`
}

// NewUserStore creates a UserStore persisting to path. The file and its
// parent directory are created on first write.
func NewUserStore(path string) *UserStore {
	return &UserStore{path: path}
}

// load reads all users from disk. A missing file is an empty store.
func (s *UserStore) load() ([]User, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth: read %s: %w", s.path, err)
	}
	var schema userSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("auth: parse %s: %w", s.path, err)
	}
	return schema.Users, nil
}

// store writes all users to disk atomically.
func (s *UserStore) store(users []User) error {
	if users == nil {
		users = []User{}
	}
	data, err := json.MarshalIndent(userSchema{Users: users}, "", "  ")
	if err != nil {
		return fmt.Errorf("auth: marshal users: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("auth: create data dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("auth: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("auth: replace %s: %w", s.path, err)
	}
	return nil
}

// Create inserts a new user. It returns ErrEmailTaken when the email is
// already registered.
func (s *UserStore) Create(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	users = append(users, *user)
	return s.store(users)
}

// GetByEmail returns the user with the given email, or ErrUserNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			u := users[i]
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// GetByID returns the user with the given ID, or ErrUserNotFound.
func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			u := users[i]
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}
