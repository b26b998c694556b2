package service

import (
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/api"
	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/fakeapi"
)

type env struct {
	fake     *fakeapi.Server
	fx       fakeapi.Fixture
	client   *api.Client
	products *ProductService
	orders   *OrderService
	users    *UserService
	menu     *cache.TTL[[]domain.Product]
}

func setup(t *testing.T) *env {
	t.Helper()
	fake := fakeapi.New(fakeapi.Options{})
	fx, err := fake.Seed()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	client := api.New(api.Options{BaseURL: srv.URL})
	menu := cache.New[[]domain.Product](time.Minute, time.Minute, nil)
	return &env{
		fake:     fake,
		fx:       fx,
		client:   client,
		products: NewProductService(client, menu, nil),
		orders:   NewOrderService(client, nil),
		users:    NewUserService(client, nil),
		menu:     menu,
	}
}

// login returns a session holding a real token for u
func (e *env) login(t *testing.T, u domain.User) *auth.Session {
	t.Helper()
	tok, err := e.fake.IssueToken(u.ID)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	sess := auth.NewSession()
	sess.Set(tok, u)
	return sess
}
