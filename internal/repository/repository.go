package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/auth"
	"storefront/internal/checkout"
	"storefront/internal/domain"
)

// ErrNotFound unknown or evicted session
var ErrNotFound = errors.New("not found")

// Session everything the BFF keeps for one browser
type Session struct {
	ID        string
	Auth      *auth.Session
	Checkout  *checkout.Orchestrator
	CreatedAt time.Time
}

// SessionRepository holds live sessions in memory
type SessionRepository interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	// WithSession runs fn while holding the session exclusively
	WithSession(ctx context.Context, id string, fn func(ctx context.Context, s *Session) error) error
	Sweep(ctx context.Context, idle time.Duration) int
}

// ProductFilter menu filter; zero values match everything
type ProductFilter struct {
	NameSubstring   string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Type            domain.ProductType
	RecommendedOnly bool
}

func (f ProductFilter) Match(p domain.Product) bool {
	if !containsIgnoreCase(p.Name, f.NameSubstring) {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.Type != "" && p.TypeProduct != f.Type {
		return false
	}
	return !f.RecommendedOnly || p.IsRecommended
}

// Apply keeps the matching products in their original order
func (f ProductFilter) Apply(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
