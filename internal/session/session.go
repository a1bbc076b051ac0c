// Package session holds the authenticated context a Ledger API client
// runs under. A Session is created on login, passed explicitly to the
// client, and torn down on logout or when the API rejects the token.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSession is returned when no session exists for a profile.
	ErrNoSession = errors.New("not logged in")
	// ErrExpired is returned by Manager.Current for a session whose token
	// has passed its expiry. The session is removed.
	ErrExpired = errors.New("session expired")
)

// Role is the audience a session was issued for.
type Role string

const (
	RoleUMKM  Role = "umkm"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUMKM || r == RoleAdmin
}

// Session is one login.
type Session struct {
	Profile   string
	Role      Role
	Token     string
	Subject   string
	Name      string
	EntityID  int
	CreatedAt time.Time
	ExpiresAt time.Time // zero when the token carries no expiry
}

// New creates a session for a freshly issued token. When the token is a
// JWT its exp and sub claims are read without verifying the signature;
// the API remains the authority on validity. Opaque tokens never expire
// client-side.
func New(profile string, role Role, token, name string) (*Session, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	s := &Session{
		Profile:   profile,
		Role:      role,
		Token:     token,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil {
		if claims.ExpiresAt != nil {
			s.ExpiresAt = claims.ExpiresAt.Time.UTC()
		}
		s.Subject = claims.Subject
	}
	return s, nil
}

// Expired reports whether the token's expiry is at or before now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// AuthHeader is the Authorization header value for this session.
func (s *Session) AuthHeader() string {
	return "Bearer " + s.Token
}

// Store persists sessions by profile. Load returns ErrNoSession when the
// profile has none.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, profile string) (*Session, error)
	Delete(ctx context.Context, profile string) error
}

// Manager owns the session lifecycle for a Store.
type Manager struct {
	store Store
	now   func() time.Time
}

// NewManager creates a Manager.
func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Begin persists s, replacing any session of the same profile.
func (m *Manager) Begin(ctx context.Context, s *Session) error {
	if err := m.store.Save(ctx, s); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Current returns the live session of profile. An expired session is
// ended and ErrExpired returned.
func (m *Manager) Current(ctx context.Context, profile string) (*Session, error) {
	s, err := m.store.Load(ctx, profile)
	if err != nil {
		return nil, err
	}
	if s.Expired(m.now()) {
		if err := m.End(ctx, profile); err != nil {
			return nil, err
		}
		return nil, ErrExpired
	}
	return s, nil
}

// End removes the session of profile. Ending a profile with no session
// is not an error.
func (m *Manager) End(ctx context.Context, profile string) error {
	if err := m.store.Delete(ctx, profile); err != nil && !errors.Is(err, ErrNoSession) {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
