package api

import (
	"context"
	"fmt"
	"net/http"

	"storefront/internal/domain"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name                 string `json:"name" validate:"required"`
	Surname              string `json:"surname,omitempty"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	Phone                string `json:"phone,omitempty"`
}

type ResetPasswordRequest struct {
	Token                string `json:"token" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// AuthResponse result of login and register
type AuthResponse struct {
	User        domain.User `json:"user"`
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
}

type authWire struct {
	User        userWire `json:"user"`
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
}

func (c *Client) authenticate(ctx context.Context, op, path string, req any) (*AuthResponse, error) {
	body, err := c.doJSON(ctx, op, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}
	w, err := decodeObject[authWire](body, "data", "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if w.AccessToken == "" {
		return nil, fmt.Errorf("%s: %w: missing access_token", op, ErrUnexpectedShape)
	}
	return &AuthResponse{User: w.User.user(), AccessToken: w.AccessToken, TokenType: w.TokenType}, nil
}

// Login POST /auth/login
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	return c.authenticate(ctx, "login", "/auth/login", req)
}

// Register POST /auth/register
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return c.authenticate(ctx, "register", "/auth/register", req)
}

// Me GET /auth/me
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	body, err := c.doJSON(ctx, "me", http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	w, err := decodeObject[userWire](body, "data.user", "data", "user", "")
	if err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	u := w.user()
	return &u, nil
}

// Logout POST /auth/logout
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.doJSON(ctx, "logout", http.MethodPost, "/auth/logout", nil)
	return err
}

// ForgotPassword POST /auth/forgot-password
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.doJSON(ctx, "forgot_password", http.MethodPost, "/auth/forgot-password", map[string]string{"email": email})
	return err
}

// ResetPassword POST /auth/reset-password
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	_, err := c.doJSON(ctx, "reset_password", http.MethodPost, "/auth/reset-password", req)
	return err
}
