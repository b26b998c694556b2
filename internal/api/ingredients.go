package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

type ingredientWire struct {
	ID           Numeric         `json:"id"`
	IngredientID Numeric         `json:"ingredient_id"`
	Name         string          `json:"name"`
	Price        Numeric         `json:"price"`
	Available    json.RawMessage `json:"available"`
	Ingredient   string          `json:"ingredient"`
}

func (w ingredientWire) ingredient(fallback domain.Ingredient) domain.Ingredient {
	idSrc := w.ID
	if !idSrc.Present {
		idSrc = w.IngredientID
	}
	id, ok := idSrc.Int64()
	if !ok {
		id = fallback.ID
	}
	t := domain.IngredientType(w.Ingredient)
	if t == "" {
		t = fallback.Type
	}
	return domain.Ingredient{
		ID:        id,
		Name:      w.Name,
		Price:     w.Price.Or(fallback.Price),
		Available: truthy(w.Available, fallback.Available),
		Type:      t,
	}
}

var defaultIngredient = domain.Ingredient{Price: decimal.Zero, Available: true, Type: domain.IngredientExtra}

// ListIngredients GET /ingredients
func (c *Client) ListIngredients(ctx context.Context) (Envelope[domain.Ingredient], error) {
	body, err := c.doJSON(ctx, "list_ingredients", http.MethodGet, "/ingredients", nil)
	if err != nil {
		return Envelope[domain.Ingredient]{}, err
	}
	return decodeList(body, func(w ingredientWire) (domain.Ingredient, bool) {
		return w.ingredient(defaultIngredient), true
	}, "", "data", "ingredients"), nil
}

type IngredientInput struct {
	Name      string
	Price     decimal.Decimal
	Type      domain.IngredientType
	Available bool
}

type IngredientPatch struct {
	Name      *string
	Price     *decimal.Decimal
	Type      *domain.IngredientType
	Available *bool
}

func availableFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// CreateIngredient POST /ingredients. Missing response fields fall back to the input.
func (c *Client) CreateIngredient(ctx context.Context, in IngredientInput) (*domain.Ingredient, error) {
	payload := map[string]any{
		"name":       in.Name,
		"price":      json.Number(in.Price.String()),
		"ingredient": in.Type,
		"available":  availableFlag(in.Available),
	}
	body, err := c.doJSON(ctx, "create_ingredient", http.MethodPost, "/ingredients", payload)
	if err != nil {
		return nil, err
	}
	w, err := decodeObject[ingredientWire](body, "data", "")
	if err != nil {
		return nil, fmt.Errorf("create ingredient: %w", err)
	}
	ing := w.ingredient(domain.Ingredient{Price: in.Price, Available: in.Available, Type: in.Type})
	return &ing, nil
}

// UpdateIngredient POST /ingredients/{id} with _method=PUT
func (c *Client) UpdateIngredient(ctx context.Context, id int64, in IngredientPatch) (*domain.Ingredient, error) {
	payload := map[string]any{"_method": http.MethodPut}
	fallback := domain.Ingredient{ID: id, Price: decimal.Zero, Type: domain.IngredientExtra}
	if in.Name != nil && *in.Name != "" {
		payload["name"] = *in.Name
	}
	if in.Price != nil {
		payload["price"] = json.Number(in.Price.String())
		fallback.Price = *in.Price
	}
	if in.Type != nil && *in.Type != "" {
		payload["ingredient"] = *in.Type
		fallback.Type = *in.Type
	}
	if in.Available != nil {
		payload["available"] = availableFlag(*in.Available)
		fallback.Available = *in.Available
	}

	body, err := c.doJSON(ctx, "update_ingredient", http.MethodPost, fmt.Sprintf("/ingredients/%d", id), payload)
	if err != nil {
		return nil, err
	}
	w, err := decodeObject[ingredientWire](body, "data", "")
	if err != nil {
		return nil, fmt.Errorf("update ingredient: %w", err)
	}
	ing := w.ingredient(fallback)
	return &ing, nil
}

// DeleteIngredient reports whether the API accepted the delete
func (c *Client) DeleteIngredient(ctx context.Context, id int64) bool {
	if _, err := c.doJSON(ctx, "delete_ingredient", http.MethodDelete, fmt.Sprintf("/ingredients/%d", id), nil); err != nil {
		c.log.Warn("delete ingredient failed", zap.Int64("ingredient_id", id), zap.Error(err))
		return false
	}
	return true
}
