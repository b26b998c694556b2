package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/api"
	"storefront/internal/domain"
	"storefront/internal/fakeapi"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.False(t, TokenExpired(signed(t, now.Add(time.Hour)), now))
	assert.True(t, TokenExpired(signed(t, now.Add(-time.Second)), now))
	assert.False(t, TokenExpired("12|opaque-sanctum-token", now))
	assert.False(t, TokenExpired("a.b.c", now))
}

func TestSession_IsAuthenticated(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession()
	s.now = func() time.Time { return now }

	assert.False(t, s.IsAuthenticated())

	s.Adopt(signed(t, now.Add(time.Hour)))
	assert.False(t, s.IsAuthenticated(), "token without profile")

	s.setUser(domain.User{ID: 1, Role: domain.RoleAdmin})
	assert.True(t, s.IsAuthenticated())
	assert.True(t, s.IsAdmin())

	now = now.Add(2 * time.Hour)
	assert.False(t, s.IsAuthenticated(), "expired token")
	assert.False(t, s.IsAdmin())

	s.Clear()
	_, ok := s.User()
	assert.False(t, ok)
	assert.Empty(t, s.Token())
}

func newService(t *testing.T) (*Service, *fakeapi.Server, fakeapi.Fixture) {
	t.Helper()
	fake := fakeapi.New(fakeapi.Options{})
	fx, err := fake.Seed()
	require.NoError(t, err)
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)
	return NewService(api.New(api.Options{BaseURL: srv.URL}), nil), fake, fx
}

func TestService_LoginRefreshLogout(t *testing.T) {
	svc, fake, fx := newService(t)
	ctx := context.Background()
	sess := NewSession()

	_, err := svc.Login(ctx, sess, api.LoginRequest{Email: "not-an-email", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, fake.Calls("login"))

	u, err := svc.Login(ctx, sess, api.LoginRequest{Email: fx.Customer.Email, Password: fakeapi.SeedPassword})
	require.NoError(t, err)
	assert.Equal(t, fx.Customer.ID, u.ID)
	assert.True(t, sess.IsAuthenticated())
	assert.False(t, sess.IsAdmin())

	u, err = svc.Refresh(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, fx.Customer.Email, u.Email)

	svc.Logout(ctx, sess)
	assert.False(t, sess.IsAuthenticated())
	assert.Equal(t, 1, fake.Calls("logout"))
}

func TestService_LogoutClearsEvenWhenAPIFails(t *testing.T) {
	svc, fake, fx := newService(t)
	ctx := context.Background()
	sess := NewSession()
	_, err := svc.Login(ctx, sess, api.LoginRequest{Email: fx.Admin.Email, Password: fakeapi.SeedPassword})
	require.NoError(t, err)

	fake.Fail("logout", 500)
	svc.Logout(ctx, sess)
	assert.Empty(t, sess.Token())
}

func TestService_RefreshDropsRejectedToken(t *testing.T) {
	svc, _, _ := newService(t)
	sess := NewSession()

	_, err := svc.Refresh(context.Background(), sess)
	assert.ErrorIs(t, err, ErrNoToken)

	sess.Adopt("garbage")
	_, err = svc.Refresh(context.Background(), sess)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Empty(t, sess.Token())
}

func TestService_Register(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	sess := NewSession()

	_, err := svc.Register(ctx, sess, api.RegisterRequest{
		Name: "Luis", Email: "luis@pizzeria.test", Password: "secret123", PasswordConfirmation: "secret124",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	u, err := svc.Register(ctx, sess, api.RegisterRequest{
		Name: "Luis", Email: "luis@pizzeria.test", Password: "secret123", PasswordConfirmation: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.True(t, sess.IsAuthenticated())
}

func TestService_PasswordReset(t *testing.T) {
	svc, fake, fx := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.ForgotPassword(ctx, fx.Customer.Email))
	token := fake.ResetToken(fx.Customer.Email)
	require.NotEmpty(t, token)

	err := svc.ResetPassword(ctx, api.ResetPasswordRequest{
		Token: token, Email: fx.Customer.Email, Password: "newpass123", PasswordConfirmation: "newpass123",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, NewSession(), api.LoginRequest{Email: fx.Customer.Email, Password: "newpass123"})
	assert.NoError(t, err)
}
