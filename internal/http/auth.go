package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/api"
	"storefront/internal/auth"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/repository"
)

type authFunc func(ctx context.Context, sess *auth.Session) (*domain.User, error)

// authenticate runs a login-like call on the locked session and stores the
// resulting token in the auth cookie
func (s *Server) authenticate(c *gin.Context, status int, fn authFunc) {
	var user *domain.User
	err := s.sessions.WithSession(c.Request.Context(), session(c).ID, func(ctx context.Context, rs *repository.Session) error {
		u, err := fn(ctx, rs.Auth)
		user = u
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.setAuthCookie(c, session(c).Auth.Token())
	c.JSON(status, gin.H{"user": user})
}

// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param input body api.LoginRequest true "Credentials"
// @Success 200 {object} map[string]domain.User
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (s *Server) login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	s.authenticate(c, http.StatusOK, func(ctx context.Context, sess *auth.Session) (*domain.User, error) {
		return s.auth.Login(ctx, sess, req)
	})
}

// @Summary Create an account and log in
// @Tags auth
// @Accept json
// @Produce json
// @Param input body api.RegisterRequest true "Account"
// @Success 201 {object} map[string]domain.User
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /auth/register [post]
func (s *Server) register(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	s.authenticate(c, http.StatusCreated, func(ctx context.Context, sess *auth.Session) (*domain.User, error) {
		return s.auth.Register(ctx, sess, req)
	})
}

// @Summary Log out
// @Tags auth
// @Success 204
// @Router /auth/logout [post]
func (s *Server) logout(c *gin.Context) {
	s.auth.Logout(c.Request.Context(), session(c).Auth)
	s.clearAuthCookie(c)
	c.Status(http.StatusNoContent)
}

// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} map[string]string
// @Router /auth/me [get]
func (s *Server) me(c *gin.Context) {
	u, ok := session(c).Auth.User()
	if !ok || !session(c).Auth.IsAuthenticated() {
		s.fail(c, checkout.ErrLoginRequired)
		return
	}
	c.JSON(http.StatusOK, u)
}

type forgotPasswordReq struct {
	Email string `json:"email"`
}

// @Summary Send a password reset link
// @Tags auth
// @Accept json
// @Produce json
// @Param input body forgotPasswordReq true "Email"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /auth/forgot-password [post]
func (s *Server) forgotPassword(c *gin.Context) {
	var req forgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	if err := s.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password reset link sent"})
}

// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param input body api.ResetPasswordRequest true "Reset"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /auth/reset-password [post]
func (s *Server) resetPassword(c *gin.Context) {
	var req api.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	if err := s.auth.ResetPassword(c.Request.Context(), req); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
