package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloppy/pastyears/internal/api"
	"github.com/sloppy/pastyears/internal/auth"
	"github.com/sloppy/pastyears/internal/testutil"
)

type stubClient struct {
	logins    int
	refreshes int
	logouts   []string
	signups   int
	token     string
	loginErr  error
	refreshFn func() (string, error)
}

func (c *stubClient) Login(_ context.Context, email, _ string) (api.LoginResponse, error) {
	c.logins++
	if c.loginErr != nil {
		return api.LoginResponse{}, c.loginErr
	}
	return api.LoginResponse{
		RefreshToken: "refresh-1",
		AccessToken:  c.token,
		User:         api.User{UserID: "u1", DisplayName: "Asha", Email: email},
	}, nil
}

func (c *stubClient) SignUp(context.Context, string, string, string) error {
	c.signups++
	return nil
}

func (c *stubClient) RefreshAccessToken(context.Context, string) (string, error) {
	c.refreshes++
	if c.refreshFn != nil {
		return c.refreshFn()
	}
	return "refreshed", nil
}

func (c *stubClient) Logout(_ context.Context, userID string) error {
	c.logouts = append(c.logouts, userID)
	return nil
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return token
}

func TestLoginRequiresFields(t *testing.T) {
	client := &stubClient{}
	s := auth.NewSession(client, auth.NewMemoryStore(), testutil.Logger(t))

	err := s.Login(context.Background(), " ", "pw")
	require.ErrorIs(t, err, auth.ErrMissingField)
	var fe *auth.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "email", fe.Field)

	err = s.SignUp(context.Background(), "a@example.com", "", "pw")
	require.ErrorIs(t, err, auth.ErrMissingField)

	assert.Zero(t, client.logins)
	assert.Zero(t, client.signups)
	assert.False(t, s.IsLoggedIn())
}

func TestLoginPersistsRefreshToken(t *testing.T) {
	store := auth.NewMemoryStore()
	client := &stubClient{token: signed(t, time.Now().Add(time.Hour))}
	s := auth.NewSession(client, store, testutil.Logger(t))

	require.NoError(t, s.Login(context.Background(), "asha@example.com", "pw"))
	assert.True(t, s.IsLoggedIn())
	assert.Equal(t, "Asha", s.DisplayName())

	refresh, ok, err := store.Get(context.Background(), auth.RefreshTokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "refresh-1", refresh)

	token, err := s.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, client.token, token)
	assert.Zero(t, client.refreshes)
}

func TestAccessTokenRefreshesWhenExpired(t *testing.T) {
	client := &stubClient{token: signed(t, time.Now().Add(-time.Minute))}
	s := auth.NewSession(client, auth.NewMemoryStore(), testutil.Logger(t))
	require.NoError(t, s.Login(context.Background(), "asha@example.com", "pw"))

	token, err := s.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed", token)
	assert.Equal(t, 1, client.refreshes)
}

func TestAccessTokenEmptyWhenRefreshFails(t *testing.T) {
	client := &stubClient{
		token:     "not-a-jwt",
		refreshFn: func() (string, error) { return "", api.ErrUnauthorized },
	}
	s := auth.NewSession(client, auth.NewMemoryStore(), testutil.Logger(t))
	require.NoError(t, s.Login(context.Background(), "asha@example.com", "pw"))

	token, err := s.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestAccessTokenLoggedOut(t *testing.T) {
	client := &stubClient{}
	s := auth.NewSession(client, auth.NewMemoryStore(), nil)

	token, err := s.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Zero(t, client.refreshes)
}

func TestInitRestoresSession(t *testing.T) {
	fake := testutil.NewFakeAPI(t, nil)
	fake.AddUser("asha@example.com", "secret", "Asha")
	client, err := api.New(fake.URL())
	require.NoError(t, err)
	store := auth.NewMemoryStore()

	first := auth.NewSession(client, store, testutil.Logger(t))
	require.NoError(t, first.Login(context.Background(), "asha@example.com", "secret"))

	restored := auth.NewSession(client, store, testutil.Logger(t))
	require.NoError(t, restored.Init(context.Background()))
	assert.True(t, restored.IsLoggedIn())
	assert.Equal(t, "Asha", restored.DisplayName())
	token, err := restored.AccessToken(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestInitWithRevokedTokenLogsOut(t *testing.T) {
	fake := testutil.NewFakeAPI(t, nil)
	userID := fake.AddUser("asha@example.com", "secret", "Asha")
	client, err := api.New(fake.URL())
	require.NoError(t, err)
	store := auth.NewMemoryStore()

	first := auth.NewSession(client, store, testutil.Logger(t))
	require.NoError(t, first.Login(context.Background(), "asha@example.com", "secret"))
	require.NoError(t, client.Logout(context.Background(), userID))

	restored := auth.NewSession(client, store, testutil.Logger(t))
	require.NoError(t, restored.Init(context.Background()))
	assert.False(t, restored.IsLoggedIn())
}

func TestLogoutClearsState(t *testing.T) {
	store := auth.NewMemoryStore()
	client := &stubClient{token: signed(t, time.Now().Add(time.Hour))}
	s := auth.NewSession(client, store, testutil.Logger(t))

	require.NoError(t, s.Logout(context.Background()))
	assert.Empty(t, client.logouts)

	require.NoError(t, s.Login(context.Background(), "asha@example.com", "pw"))
	require.NoError(t, s.Logout(context.Background()))

	assert.Equal(t, []string{"u1"}, client.logouts)
	assert.False(t, s.IsLoggedIn())
	_, ok := s.User()
	assert.False(t, ok)
	_, ok, err := store.Get(context.Background(), auth.RefreshTokenKey)
	require.NoError(t, err)
	assert.False(t, ok)

	token, err := s.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}
