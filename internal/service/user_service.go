package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/api"
	"storefront/internal/domain"
	"storefront/internal/logger"
)

// UserService account administration and the caller's saved addresses
type UserService struct {
	api *api.Client
	log *zap.Logger
}

func NewUserService(client *api.Client, log *zap.Logger) *UserService {
	return &UserService{api: client, log: logger.OrNop(log).Named("users")}
}

func (s *UserService) List(ctx context.Context, as Principal) ([]domain.User, error) {
	if err := requireAdmin(as); err != nil {
		return nil, err
	}
	env, err := s.api.WithTokenSource(as).ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return env.Items, nil
}

func (s *UserService) SetRole(ctx context.Context, as Principal, id int64, role domain.Role) (*domain.User, error) {
	if err := requireAdmin(as); err != nil {
		return nil, err
	}
	if id <= 0 || !role.Valid() {
		return nil, fmt.Errorf("%w: role %q", ErrInvalidInput, role)
	}
	return s.api.WithTokenSource(as).UpdateUserRole(ctx, id, role)
}

func (s *UserService) Delete(ctx context.Context, as Principal, id int64) error {
	if err := requireAdmin(as); err != nil {
		return err
	}
	if id <= 0 {
		return ErrInvalidInput
	}
	if err := s.api.WithTokenSource(as).DeleteUser(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", zap.Int64("user_id", id))
	return nil
}

func validAddress(a domain.AddressSnapshot) bool {
	return a.AddressLine != "" && a.CityID > 0
}

func (s *UserService) Addresses(ctx context.Context, as api.TokenSource) ([]domain.Address, error) {
	env, err := s.api.WithTokenSource(as).ListAddresses(ctx)
	if err != nil {
		return nil, err
	}
	return env.Items, nil
}

func (s *UserService) CreateAddress(ctx context.Context, as api.TokenSource, in domain.AddressSnapshot) (*domain.Address, error) {
	if !validAddress(in) {
		return nil, ErrInvalidInput
	}
	return s.api.WithTokenSource(as).CreateAddress(ctx, in)
}

func (s *UserService) UpdateAddress(ctx context.Context, as api.TokenSource, id int64, in domain.AddressSnapshot) (*domain.Address, error) {
	if id <= 0 || !validAddress(in) {
		return nil, ErrInvalidInput
	}
	return s.api.WithTokenSource(as).UpdateAddress(ctx, id, in)
}

func (s *UserService) DeleteAddress(ctx context.Context, as api.TokenSource, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.api.WithTokenSource(as).DeleteAddress(ctx, id)
}
