package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
)

func TestUsers_AdminOnly(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	customer := e.login(t, e.fx.Customer)
	if _, err := e.users.List(ctx, customer); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUsers_SetRoleAndDelete(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	admin := e.login(t, e.fx.Admin)

	if _, err := e.users.SetRole(ctx, admin, e.fx.Customer.ID, "owner"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown role must be rejected: %v", err)
	}
	u, err := e.users.SetRole(ctx, admin, e.fx.Customer.ID, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("set role: %v", err)
	}
	if u.Role != domain.RoleAdmin {
		t.Fatalf("role: %s", u.Role)
	}

	if err := e.users.Delete(ctx, admin, e.fx.Customer.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	users, err := e.users.List(ctx, admin)
	if err != nil || len(users) != 1 {
		t.Fatalf("list after delete: %v %d", err, len(users))
	}
}

func TestAddresses_CRUD(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	customer := e.login(t, e.fx.Customer)

	if _, err := e.users.CreateAddress(ctx, customer, domain.AddressSnapshot{AddressLine: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("city is required: %v", err)
	}
	a, err := e.users.CreateAddress(ctx, customer, domain.AddressSnapshot{AddressLine: "Calle 8", CityID: 2, Sector: "Gazcue"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	upd, err := e.users.UpdateAddress(ctx, customer, a.ID, domain.AddressSnapshot{AddressLine: "Calle 9", CityID: 2})
	if err != nil || upd.AddressLine != "Calle 9" {
		t.Fatalf("update: %v %+v", err, upd)
	}
	list, err := e.users.Addresses(ctx, customer)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %d", err, len(list))
	}
	if err := e.users.DeleteAddress(ctx, customer, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
