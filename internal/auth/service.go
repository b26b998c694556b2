package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/internal/api"
	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/trace"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNoToken      = errors.New("no session token")
)

// Service authentication calls against the API, recorded into a Session
type Service struct {
	api      *api.Client
	validate *validator.Validate
	log      *zap.Logger
}

func NewService(client *api.Client, log *zap.Logger) *Service {
	return &Service{
		api:      client,
		validate: validator.New(),
		log:      logger.OrNop(log).Named("auth"),
	}
}

func (s *Service) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func (s *Service) Login(ctx context.Context, sess *Session, req api.LoginRequest) (*domain.User, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	res, err := s.api.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	sess.Set(res.AccessToken, res.User)
	s.log.Info("logged in", zap.Int64("user_id", res.User.ID), trace.Field(ctx))
	return &res.User, nil
}

func (s *Service) Register(ctx context.Context, sess *Session, req api.RegisterRequest) (*domain.User, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	res, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	sess.Set(res.AccessToken, res.User)
	s.log.Info("registered", zap.Int64("user_id", res.User.ID), trace.Field(ctx))
	return &res.User, nil
}

// Refresh reloads the profile. Any failure drops the token.
func (s *Service) Refresh(ctx context.Context, sess *Session) (*domain.User, error) {
	if sess.Token() == "" {
		return nil, ErrNoToken
	}
	u, err := s.api.WithTokenSource(sess).Me(ctx)
	if err != nil {
		sess.Clear()
		s.log.Debug("profile refresh failed", zap.Error(err), trace.Field(ctx))
		return nil, err
	}
	sess.setUser(*u)
	return u, nil
}

// Logout tells the API and clears the session whatever it answers
func (s *Service) Logout(ctx context.Context, sess *Session) {
	defer sess.Clear()
	if sess.Token() == "" {
		return
	}
	if err := s.api.WithTokenSource(sess).Logout(ctx); err != nil {
		s.log.Debug("logout call failed", zap.Error(err), trace.Field(ctx))
	}
}

type forgotPasswordReq struct {
	Email string `validate:"required,email"`
}

func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if err := s.check(forgotPasswordReq{Email: email}); err != nil {
		return err
	}
	return s.api.ForgotPassword(ctx, email)
}

func (s *Service) ResetPassword(ctx context.Context, req api.ResetPasswordRequest) error {
	if err := s.check(req); err != nil {
		return err
	}
	return s.api.ResetPassword(ctx, req)
}
