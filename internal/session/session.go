package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Session is the persisted login state: the bearer token and the user info
// blob the backend returned with it.
type Session struct {
	AccessToken string          `json:"access_token"`
	UserInfo    json.RawMessage `json:"user_info,omitempty"`
}

// Store owns the session lifecycle: created on a login response, cleared on
// logout or an upstream 401, loaded once at startup. It replaces ambient
// global access to the stored credentials with an explicit object.
type Store struct {
	path string

	mu  sync.RWMutex
	cur *Session
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted session from disk. A missing file is a valid
// logged-out state, not an error.
func (s *Store) Load() error {
	const op = "session.Store.Load"

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.cur = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if sess.AccessToken == "" {
		s.cur = nil
		return nil
	}

	s.cur = &sess
	return nil
}

// Save stores a fresh login.
func (s *Store) Save(sess Session) error {
	const op = "session.Store.Save"

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.cur = &sess
	return nil
}

// Clear drops the session, in memory and on disk.
func (s *Store) Clear() error {
	const op = "session.Store.Clear"

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = nil

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Token returns the current bearer token, empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cur == nil {
		return ""
	}
	return s.cur.AccessToken
}

// Current returns a copy of the session, or nil when logged out.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cur == nil {
		return nil
	}
	sess := *s.cur
	return &sess
}

// TokenExpired reports whether a bearer token carries an exp claim in the
// past. The gateway never holds the signing key, so the claims are read
// without verification; a token that does not parse at all is treated as
// expired. Tokens without an exp claim pass.
func TokenExpired(token string, now time.Time) bool {
	claims := &jwt.RegisteredClaims{}

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}

	if claims.ExpiresAt == nil {
		return false
	}

	return claims.ExpiresAt.Before(now)
}
