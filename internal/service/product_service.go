package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/api"
	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/repository"
	"storefront/internal/trace"
)

// ProductService menu reads for everybody and catalog writes for admins
type ProductService struct {
	api  *api.Client
	menu *cache.TTL[[]domain.Product]
	log  *zap.Logger
}

func NewProductService(client *api.Client, menu *cache.TTL[[]domain.Product], log *zap.Logger) *ProductService {
	return &ProductService{api: client, menu: menu, log: logger.OrNop(log).Named("products")}
}

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("admin role required")
)

const menuKey = "products"

// Menu lists the products matching f, served from the cache when warm
func (s *ProductService) Menu(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, ErrInvalidInput
	}
	if f.Type != "" && !validProductType(f.Type) {
		return nil, ErrInvalidInput
	}
	products, ok := s.menu.Get(menuKey)
	if !ok {
		env, err := s.api.ListProducts(ctx)
		if err != nil {
			return nil, err
		}
		if env.Empty() {
			s.log.Warn("product list came back in an unknown layout", trace.Field(ctx))
		}
		products = env.Items
		s.menu.Set(menuKey, products)
	}
	return f.Apply(products), nil
}

// Lookup finds a menu product by id without the ingredient call of GetByID
func (s *ProductService) Lookup(ctx context.Context, id int64) (*domain.Product, error) {
	products, err := s.Menu(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, api.ErrNotFound
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.api.GetProduct(ctx, id)
}

func (s *ProductService) Ingredients(ctx context.Context) ([]domain.Ingredient, error) {
	env, err := s.api.ListIngredients(ctx)
	if err != nil {
		return nil, err
	}
	return env.Items, nil
}

func validProductType(t domain.ProductType) bool {
	switch t {
	case domain.ProductTypePizza, domain.ProductTypeDrink, domain.ProductTypeDessert, domain.ProductTypeExtra:
		return true
	}
	return false
}

func (s *ProductService) Create(ctx context.Context, as Principal, in api.ProductInput) (*domain.Product, error) {
	if err := requireAdmin(as); err != nil {
		return nil, err
	}
	if in.Name == "" || in.Price.IsNegative() || (in.TypeProduct != "" && !validProductType(in.TypeProduct)) {
		return nil, ErrInvalidInput
	}
	p, err := s.api.WithTokenSource(as).CreateProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	s.menu.Invalidate()
	s.log.Info("product created", zap.Int64("product_id", p.ID), trace.Field(ctx))
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, as Principal, id int64, in api.ProductPatch) (*domain.Product, error) {
	if err := requireAdmin(as); err != nil {
		return nil, err
	}
	if id <= 0 || (in.Name != nil && *in.Name == "") || (in.Price != nil && in.Price.IsNegative()) {
		return nil, ErrInvalidInput
	}
	if in.TypeProduct != nil && !validProductType(*in.TypeProduct) {
		return nil, ErrInvalidInput
	}
	p, err := s.api.WithTokenSource(as).UpdateProduct(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.menu.Invalidate()
	return p, nil
}

// Delete reports false when the API refused; that is not an error
func (s *ProductService) Delete(ctx context.Context, as Principal, id int64) (bool, error) {
	if err := requireAdmin(as); err != nil {
		return false, err
	}
	if id <= 0 {
		return false, ErrInvalidInput
	}
	ok := s.api.WithTokenSource(as).DeleteProduct(ctx, id)
	if ok {
		s.menu.Invalidate()
	}
	return ok, nil
}

func validIngredientType(t domain.IngredientType) bool {
	switch t {
	case domain.IngredientBase, domain.IngredientSauce, domain.IngredientCheese, domain.IngredientExtra:
		return true
	}
	return false
}

func (s *ProductService) CreateIngredient(ctx context.Context, as Principal, in api.IngredientInput) (*domain.Ingredient, error) {
	if err := requireAdmin(as); err != nil {
		return nil, err
	}
	if in.Name == "" || in.Price.IsNegative() || !validIngredientType(in.Type) {
		return nil, ErrInvalidInput
	}
	return s.api.WithTokenSource(as).CreateIngredient(ctx, in)
}

func (s *ProductService) UpdateIngredient(ctx context.Context, as Principal, id int64, in api.IngredientPatch) (*domain.Ingredient, error) {
	if err := requireAdmin(as); err != nil {
		return nil, err
	}
	if id <= 0 || (in.Name != nil && *in.Name == "") || (in.Price != nil && in.Price.IsNegative()) {
		return nil, ErrInvalidInput
	}
	if in.Type != nil && !validIngredientType(*in.Type) {
		return nil, ErrInvalidInput
	}
	return s.api.WithTokenSource(as).UpdateIngredient(ctx, id, in)
}

func (s *ProductService) DeleteIngredient(ctx context.Context, as Principal, id int64) (bool, error) {
	if err := requireAdmin(as); err != nil {
		return false, err
	}
	if id <= 0 {
		return false, ErrInvalidInput
	}
	return s.api.WithTokenSource(as).DeleteIngredient(ctx, id), nil
}

// AdminProducts full list bypassing the menu cache
func (s *ProductService) AdminProducts(ctx context.Context, as Principal) ([]domain.Product, error) {
	if err := requireAdmin(as); err != nil {
		return nil, err
	}
	env, err := s.api.WithTokenSource(as).ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return env.Items, nil
}
