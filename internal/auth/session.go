// Package auth holds the signed-in state of one user agent: the cached user,
// the short-lived access token and the persisted refresh token.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/sloppy/pastyears/internal/api"
)

// Storage keys.
const (
	RefreshTokenKey = "refresh-token"
	UserKey         = "user"
)

// ErrMissingField is returned when a required credential is empty. The
// request never reaches the API.
var ErrMissingField = errors.New("required field is empty")

// FieldError names the empty field.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string { return e.Field + ": " + ErrMissingField.Error() }

func (e *FieldError) Is(target error) bool { return target == ErrMissingField }

// Store persists small string values across restarts.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Client is the part of the API the session needs.
type Client interface {
	Login(ctx context.Context, email, password string) (api.LoginResponse, error)
	SignUp(ctx context.Context, email, displayName, password string) error
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, userID string) error
}

// Session is safe for concurrent use.
type Session struct {
	client Client
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mu          sync.Mutex
	user        *api.User
	accessToken string
}

// NewSession returns a logged-out session. Call Init to restore a previous
// login from store.
func NewSession(client Client, store Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{client: client, store: store, logger: logger, now: time.Now}
}

// Init restores the cached user and tries a silent refresh. A failed
// refresh leaves the session logged out; only storage errors are returned.
func (s *Session) Init(ctx context.Context) error {
	raw, ok, err := s.store.Get(ctx, UserKey)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if ok {
		var u api.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			s.logger.Warn("discarding unreadable cached user", zap.Error(err))
		} else {
			s.mu.Lock()
			s.user = &u
			s.mu.Unlock()
		}
	}

	token, err := s.refresh(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		s.mu.Lock()
		s.user = nil
		s.mu.Unlock()
	}
	return nil
}

// Login authenticates and persists the refresh token and user.
func (s *Session) Login(ctx context.Context, email, password string) error {
	if err := required("email", email, "password", password); err != nil {
		return err
	}
	resp, err := s.client.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, RefreshTokenKey, resp.RefreshToken); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	encoded, err := json.Marshal(resp.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.Set(ctx, UserKey, string(encoded)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}

	s.mu.Lock()
	user := resp.User
	s.user = &user
	s.accessToken = resp.AccessToken
	s.mu.Unlock()

	s.logger.Info("logged in", zap.String("user_id", user.UserID))
	return nil
}

// SignUp registers an account. It does not log in.
func (s *Session) SignUp(ctx context.Context, email, displayName, password string) error {
	if err := required("email", email, "display name", displayName, "password", password); err != nil {
		return err
	}
	return s.client.SignUp(ctx, strings.TrimSpace(email), strings.TrimSpace(displayName), password)
}

// AccessToken returns a usable access token, refreshing it when the cached
// one has expired. It returns "" when the user is not logged in or the
// refresh fails.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	token := s.accessToken
	s.mu.Unlock()
	if token != "" && !s.expired(token) {
		return token, nil
	}
	return s.refresh(ctx)
}

// refresh trades the stored refresh token for a new access token.
func (s *Session) refresh(ctx context.Context) (string, error) {
	refreshToken, ok, err := s.store.Get(ctx, RefreshTokenKey)
	if err != nil {
		return "", fmt.Errorf("load refresh token: %w", err)
	}
	if !ok || refreshToken == "" {
		s.setAccessToken("")
		return "", nil
	}
	token, err := s.client.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		s.logger.Info("access token refresh failed", zap.Error(err))
		s.setAccessToken("")
		return "", nil
	}
	s.setAccessToken(token)
	return token, nil
}

func (s *Session) setAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

// expired reports whether the token's exp claim has passed. Tokens that
// cannot be parsed or carry no exp are treated as expired.
func (s *Session) expired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return !s.now().Before(claims.ExpiresAt.Time)
}

// Logout revokes the refresh token and forgets the user. It is a no-op when
// nobody is logged in.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	if user == nil {
		return nil
	}
	if err := s.client.Logout(ctx, user.UserID); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = nil
	s.accessToken = ""
	s.mu.Unlock()

	if err := s.store.Remove(ctx, RefreshTokenKey); err != nil {
		return fmt.Errorf("remove refresh token: %w", err)
	}
	if err := s.store.Remove(ctx, UserKey); err != nil {
		return fmt.Errorf("remove user: %w", err)
	}
	s.logger.Info("logged out", zap.String("user_id", user.UserID))
	return nil
}

func (s *Session) IsLoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

func (s *Session) DisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ""
	}
	return s.user.DisplayName
}

// User returns the signed-in user.
func (s *Session) User() (api.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return api.User{}, false
	}
	return *s.user, true
}

// required takes name/value pairs and reports the first empty value.
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return &FieldError{Field: pairs[i]}
		}
	}
	return nil
}
