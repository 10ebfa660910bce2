// Package auth implements the mock single-user session stored alongside the
// subscription data. There is no password check; signing in records who the
// user claims to be.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"subtrack/internal/kv"
	"subtrack/internal/ledger"
)

const (
	userKey       = "user"
	onboardingKey = "onboarding_completed"
)

var (
	ErrNotSignedIn  = errors.New("not signed in")
	ErrInvalidEmail = errors.New("invalid email")
)

// User is the signed-in identity.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// Service manages the session and onboarding flags in the kv store.
type Service struct {
	store kv.Store
}

func NewService(store kv.Store) *Service {
	return &Service{store: store}
}

// Login signs in with an email address. The display name is derived from the
// local part and the avatar from a deterministic generator.
func (s *Service) Login(ctx context.Context, email string) (User, error) {
	local, ok := splitEmail(email)
	if !ok {
		return User{}, ErrInvalidEmail
	}

	user := User{
		ID:     "1",
		Name:   local,
		Email:  email,
		Avatar: avatarURL(local),
	}
	if err := s.saveUser(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// LoginWithGoogle mimics a completed OAuth flow with a fixed demo identity.
func (s *Service) LoginWithGoogle(ctx context.Context) (User, error) {
	user := User{
		ID:     "google-1",
		Name:   "Demo User",
		Email:  "demo.user@gmail.com",
		Avatar: avatarURL("Demo User"),
	}
	if err := s.saveUser(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Register creates the account and marks onboarding as pending.
func (s *Service) Register(ctx context.Context, name, email string) (User, error) {
	if _, ok := splitEmail(email); !ok {
		return User{}, ErrInvalidEmail
	}
	if strings.TrimSpace(name) == "" {
		local, _ := splitEmail(email)
		name = local
	}

	user := User{
		ID:     "1",
		Name:   name,
		Email:  email,
		Avatar: avatarURL(name),
	}
	if err := s.saveUser(ctx, user); err != nil {
		return User{}, err
	}
	if err := s.store.Set(ctx, onboardingKey, "false"); err != nil {
		return User{}, fmt.Errorf("reset onboarding flag: %w", err)
	}
	return user, nil
}

// Current returns the signed-in user, or ErrNotSignedIn.
func (s *Service) Current(ctx context.Context) (User, error) {
	raw, ok, err := s.store.Get(ctx, userKey)
	if err != nil {
		return User{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return User{}, ErrNotSignedIn
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return User{}, fmt.Errorf("decode session: %w", err)
	}
	return user, nil
}

// Logout ends the session and wipes the account's data: the subscription
// blob and the onboarding flag go with it.
func (s *Service) Logout(ctx context.Context) error {
	for _, key := range []string{userKey, ledger.StorageKey, onboardingKey} {
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}

// CompleteOnboarding marks the first-run flow as done.
func (s *Service) CompleteOnboarding(ctx context.Context) error {
	if err := s.store.Set(ctx, onboardingKey, "true"); err != nil {
		return fmt.Errorf("set onboarding flag: %w", err)
	}
	return nil
}

// OnboardingCompleted reports whether the first-run flow was finished.
func (s *Service) OnboardingCompleted(ctx context.Context) (bool, error) {
	raw, ok, err := s.store.Get(ctx, onboardingKey)
	if err != nil {
		return false, fmt.Errorf("load onboarding flag: %w", err)
	}
	return ok && raw == "true", nil
}

func (s *Service) saveUser(ctx context.Context, user User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.store.Set(ctx, userKey, string(raw)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func splitEmail(email string) (string, bool) {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return "", false
	}
	return email[:at], true
}

func avatarURL(seed string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + strings.ReplaceAll(seed, " ", "%20")
}
