// Package auth implements sign-up and login against a repo.UserStore.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/crucial707/studybuddy/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

// Password storage modes.
const (
	ModePlain  = "plain"
	ModeBcrypt = "bcrypt"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserExists is returned by SignUp when the username is taken.
	ErrUserExists = errors.New("username already exists")
	// ErrMissingFields is returned when username or password is blank.
	ErrMissingFields = errors.New("username and password are required")
)

type Service struct {
	Store repo.UserStore
	Mode  string
}

func NewService(store repo.UserStore, mode string) *Service {
	if mode != ModeBcrypt {
		mode = ModePlain
	}
	return &Service{Store: store, Mode: mode}
}

// ==========================
// Login
// ==========================

// Login succeeds only when the username exists and the password matches the stored value.
// Stored bcrypt hashes are verified with bcrypt regardless of Mode, so a store can hold both.
func (s *Service) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrInvalidCredentials
	}

	users, err := s.Store.LoadUsers(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	stored, ok := users[username]
	if !ok || !passwordMatches(stored, password) {
		return ErrInvalidCredentials
	}
	return nil
}

func passwordMatches(stored, password string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return stored == password
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && strings.HasPrefix(s, "$2")
}

// ==========================
// Sign Up
// ==========================

// SignUp checks that the username is free and then appends it to the store.
// The check and the append are not atomic.
func (s *Service) SignUp(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingFields
	}

	users, err := s.Store.LoadUsers(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	if _, exists := users[username]; exists {
		return ErrUserExists
	}

	stored, err := s.encode(password)
	if err != nil {
		return err
	}

	if err := s.Store.SaveUser(ctx, username, stored); err != nil {
		if errors.Is(err, repo.ErrUserExists) {
			return ErrUserExists
		}
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Service) encode(password string) (string, error) {
	if s.Mode != ModeBcrypt {
		return password, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
