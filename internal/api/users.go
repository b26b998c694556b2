package api

import (
	"context"
	"fmt"
	"net/http"

	"storefront/internal/domain"
)

type userWire struct {
	ID              Numeric `json:"id"`
	Name            string  `json:"name"`
	Surname         string  `json:"surname"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Role            string  `json:"role"`
	EmailVerifiedAt string  `json:"email_verified_at"`
	CreatedAt       string  `json:"created_at"`
}

func (w userWire) user() domain.User {
	id, _ := w.ID.Int64()
	return domain.User{
		ID:              id,
		Name:            w.Name,
		Surname:         w.Surname,
		Email:           w.Email,
		Phone:           w.Phone,
		Role:            domain.Role(w.Role),
		EmailVerifiedAt: w.EmailVerifiedAt,
		CreatedAt:       w.CreatedAt,
	}
}

func toUser(w userWire) (domain.User, bool) { return w.user(), true }

// ListUsers GET /users
func (c *Client) ListUsers(ctx context.Context) (Envelope[domain.User], error) {
	body, err := c.doJSON(ctx, "list_users", http.MethodGet, "/users", nil)
	if err != nil {
		return Envelope[domain.User]{}, err
	}
	return decodeList(body, toUser, "data.users", "data", "users", ""), nil
}

// UpdateUserRole PUT /users/{id} {role}
func (c *Client) UpdateUserRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error) {
	body, err := c.doJSON(ctx, "update_user_role", http.MethodPut, fmt.Sprintf("/users/%d", id), map[string]domain.Role{"role": role})
	if err != nil {
		return nil, err
	}
	w, err := decodeObject[userWire](body, "data.user", "data", "user", "")
	if err != nil {
		return &domain.User{ID: id, Role: role}, nil
	}
	u := w.user()
	return &u, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	_, err := c.doJSON(ctx, "delete_user", http.MethodDelete, fmt.Sprintf("/users/%d", id), nil)
	return err
}
