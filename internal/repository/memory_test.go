package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/auth"
	"storefront/internal/checkout"
	"storefront/internal/domain"
)

func newStore() (*MemorySessions, *time.Time) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemorySessions(func(id string) *Session {
		sess := auth.NewSession()
		return &Session{Auth: sess, Checkout: checkout.New(checkout.Options{Session: sess})}
	}, nil)
	store.now = func() time.Time { return now }
	return store, &now
}

func TestMemorySessions_CRUD(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore()

	s, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.ID == "" || s.Auth == nil || s.Checkout == nil {
		t.Fatalf("incomplete session: %+v", s)
	}

	got, err := store.Get(ctx, s.ID)
	if err != nil || got != s {
		t.Fatalf("get: %v", err)
	}

	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Delete(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestMemorySessions_WithSessionIsExclusive(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore()
	s, _ := store.Create(ctx)

	var (
		wg      sync.WaitGroup
		inside  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.WithSession(ctx, s.ID, func(ctx context.Context, s *Session) error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("expected exclusive access, saw %d concurrent holders", maxSeen)
	}
}

func TestMemorySessions_WithSessionNested(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore()
	s, _ := store.Create(ctx)

	err := store.WithSession(ctx, s.ID, func(ctx context.Context, _ *Session) error {
		// would deadlock if the held lock were taken again
		return store.WithSession(ctx, s.ID, func(context.Context, *Session) error { return nil })
	})
	if err != nil {
		t.Fatalf("nested: %v", err)
	}
}

func TestMemorySessions_SweepEvictsIdle(t *testing.T) {
	ctx := context.Background()
	store, now := newStore()
	old, _ := store.Create(ctx)

	*now = now.Add(90 * time.Minute)
	fresh, _ := store.Create(ctx)

	*now = now.Add(45 * time.Minute)
	if n := store.Sweep(ctx, time.Hour); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if _, err := store.Get(ctx, old.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("idle session kept")
	}
	if _, err := store.Get(ctx, fresh.ID); err != nil {
		t.Fatalf("fresh session evicted: %v", err)
	}
}

func TestProductFilter(t *testing.T) {
	price := func(s string) *decimal.Decimal { d := decimal.RequireFromString(s); return &d }
	menu := []domain.Product{
		{ID: 1, Name: "Margarita", Price: decimal.RequireFromString("9.99"), TypeProduct: domain.ProductTypePizza, IsRecommended: true},
		{ID: 2, Name: "Pepperoni", Price: decimal.RequireFromString("12.50"), TypeProduct: domain.ProductTypePizza},
		{ID: 3, Name: "Refresco", Price: decimal.RequireFromString("1.75"), TypeProduct: domain.ProductTypeDrink},
	}
	cases := []struct {
		name string
		f    ProductFilter
		ids  []int64
	}{
		{"all", ProductFilter{}, []int64{1, 2, 3}},
		{"name", ProductFilter{NameSubstring: "PEP"}, []int64{2}},
		{"min", ProductFilter{MinPrice: price("5")}, []int64{1, 2}},
		{"max", ProductFilter{MaxPrice: price("9.99")}, []int64{1, 3}},
		{"type", ProductFilter{Type: domain.ProductTypeDrink}, []int64{3}},
		{"recommended", ProductFilter{RecommendedOnly: true}, []int64{1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.f.Apply(menu)
			if len(got) != len(tc.ids) {
				t.Fatalf("want %v, got %d products", tc.ids, len(got))
			}
			for i, p := range got {
				if p.ID != tc.ids[i] {
					t.Fatalf("want %v, got id %d at %d", tc.ids, p.ID, i)
				}
			}
		})
	}
}
