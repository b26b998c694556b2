// Package auth keeps the bearer token and profile of a browser session and
// drives the login, registration and logout calls of the restaurant API.
package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront/internal/domain"
)

// Session token and current user. It satisfies api.TokenSource, so a client
// bound to a session always sends the latest token.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *domain.User
	now   func() time.Time
}

func NewSession() *Session {
	return &Session{now: time.Now}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set stores a fresh login
func (s *Session) Set(token string, u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = &u
}

// Adopt takes a token restored from a cookie. The user stays unknown until
// the profile is refreshed.
func (s *Session) Adopt(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == s.token {
		return
	}
	s.token = token
	s.user = nil
}

func (s *Session) setUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
}

func (s *Session) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// IsAuthenticated a profile is loaded and the token has not expired
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != "" && !TokenExpired(s.token, s.now())
}

func (s *Session) IsAdmin() bool {
	u, ok := s.User()
	return ok && s.IsAuthenticated() && u.Role.IsAdmin()
}

// Clear forgets token and user
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}

// TokenExpired reports whether a JWT-shaped token carries an exp in the past.
// Opaque tokens (e.g. Sanctum "id|secret") never expire client side; the API
// answers 401 for them instead. The signature is not checked here.
func TokenExpired(token string, now time.Time) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time)
}
