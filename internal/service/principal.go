package service

import "storefront/internal/api"

// Principal caller identity: the bearer token plus the admin gate
type Principal interface {
	api.TokenSource
	IsAdmin() bool
}

func requireAdmin(p Principal) error {
	if p == nil || !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
