package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

// DefaultProductImage shown when a product carries no usable image
const DefaultProductImage = "/pizzas/pizza-home-1.webp"

var ErrInvalidDataURL = errors.New("invalid data url")

type productWire struct {
	ID            Numeric         `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         Numeric         `json:"price"`
	ImageURL      json.RawMessage `json:"image_url"`
	Image         json.RawMessage `json:"image"`
	TypeProduct   string          `json:"type_product"`
	IsRecommended json.RawMessage `json:"is_recommended"`
	Badge         string          `json:"badge"`
}

func (w productWire) product() domain.Product {
	id, _ := w.ID.Int64()
	t := domain.ProductType(w.TypeProduct)
	if t == "" {
		t = domain.ProductTypePizza
	}
	return domain.Product{
		ID:            id,
		Name:          w.Name,
		Description:   w.Description,
		Price:         w.Price.Or(decimal.Zero),
		ImageURL:      resolveImage(w.ImageURL, w.Image),
		TypeProduct:   t,
		IsRecommended: truthy(w.IsRecommended, false),
		Badge:         w.Badge,
	}
}

// resolveImage picks image_url when it is a string, then image, then the
// url/original_url/path members of an image_url object
func resolveImage(imageURL, image json.RawMessage) string {
	var s string
	if json.Unmarshal(imageURL, &s) == nil && s != "" {
		return s
	}
	if json.Unmarshal(image, &s) == nil && s != "" {
		return s
	}
	var obj struct {
		URL         string `json:"url"`
		OriginalURL string `json:"original_url"`
		Path        string `json:"path"`
	}
	if isObject(bytes.TrimSpace(imageURL)) && json.Unmarshal(imageURL, &obj) == nil {
		for _, v := range []string{obj.URL, obj.OriginalURL, obj.Path} {
			if v != "" {
				return v
			}
		}
	}
	return DefaultProductImage
}

// ListProducts GET /products
func (c *Client) ListProducts(ctx context.Context) (Envelope[domain.Product], error) {
	body, err := c.doJSON(ctx, "list_products", http.MethodGet, "/products", nil)
	if err != nil {
		return Envelope[domain.Product]{}, err
	}
	return decodeList(body, func(w productWire) (domain.Product, bool) {
		return w.product(), true
	}, "", "data", "products", "products.products"), nil
}

type productIngredientWire struct {
	ID           Numeric `json:"id"`
	IngredientID Numeric `json:"ingredient_id"`
	Pivot        *struct {
		ID Numeric `json:"id"`
	} `json:"pivot"`
}

// ingredientID id, or ingredient_id when id is absent
func (w productIngredientWire) ingredientID() (int64, bool) {
	if w.ID.Present {
		return w.ID.Int64()
	}
	return w.IngredientID.Int64()
}

// detachID pivot id when the API exposes one
func (w productIngredientWire) detachID() int64 {
	if w.Pivot != nil {
		if id, ok := w.Pivot.ID.Int64(); ok {
			return id
		}
	}
	id, _ := w.ingredientID()
	return id
}

func (c *Client) productIngredients(ctx context.Context, productID int64) (Envelope[productIngredientWire], error) {
	body, err := c.doJSON(ctx, "product_ingredients", http.MethodGet, fmt.Sprintf("/products/%d/ingredients", productID), nil)
	if err != nil {
		return Envelope[productIngredientWire]{}, err
	}
	return decodeList(body, func(w productIngredientWire) (productIngredientWire, bool) {
		_, ok := w.ingredientID()
		return w, ok
	}, "data", ""), nil
}

// ProductIngredientIDs ids attached to a product. A failed call yields an empty list.
func (c *Client) ProductIngredientIDs(ctx context.Context, productID int64) []int64 {
	env, err := c.productIngredients(ctx, productID)
	if err != nil {
		c.log.Debug("product ingredients unavailable", zap.Int64("product_id", productID), zap.Error(err))
		return []int64{}
	}
	ids := make([]int64, 0, len(env.Items))
	for _, w := range env.Items {
		id, _ := w.ingredientID()
		ids = append(ids, id)
	}
	return ids
}

// GetProduct finds id in the product list and attaches its ingredient ids
func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	env, err := c.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range env.Items {
		if p.ID == id {
			p.Ingredients = c.ProductIngredientIDs(ctx, id)
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// ProductInput fields sent when creating a product. Image is attached only
// when it is a data: URL.
type ProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	TypeProduct   domain.ProductType
	IsRecommended bool
	Badge         string
	Image         string
	Ingredients   []int64
}

// ProductPatch partial update. A nil Ingredients leaves the attached set
// alone; an empty non-nil slice detaches everything.
type ProductPatch struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	TypeProduct   *domain.ProductType
	IsRecommended *bool
	Badge         *string
	Image         *string
	Ingredients   []int64
}

type formField struct{ key, value string }

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// productForm builds the multipart body; fields with an empty value are
// skipped unless keepEmpty names them
func productForm(fields []formField, image string, keepEmpty map[string]bool) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for _, f := range fields {
		if f.value == "" && !keepEmpty[f.key] {
			continue
		}
		if err := mw.WriteField(f.key, f.value); err != nil {
			return nil, "", err
		}
	}
	if strings.HasPrefix(image, "data:") {
		data, err := decodeDataURL(image)
		if err != nil {
			return nil, "", err
		}
		part, err := mw.CreateFormFile("image", "product-image.png")
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf, mw.FormDataContentType(), nil
}

// decodeDataURL payload of data:[<mediatype>][;base64],<data>
func decodeDataURL(s string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, ErrInvalidDataURL
	}
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
		}
		return b, nil
	}
	return []byte(payload), nil
}

func (c *Client) decodeProduct(body []byte) (*domain.Product, error) {
	w, err := decodeObject[productWire](body, "data", "")
	if err != nil {
		return nil, err
	}
	p := w.product()
	return &p, nil
}

// CreateProduct posts a multipart product and attaches its ingredients one by one.
// Attach failures are logged and do not fail the creation.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	body, contentType, err := productForm([]formField{
		{"name", in.Name},
		{"description", in.Description},
		{"price", in.Price.String()},
		{"type_product", string(in.TypeProduct)},
		{"is_recommended", boolFlag(in.IsRecommended)},
		{"badge", in.Badge},
	}, in.Image, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, "create_product", http.MethodPost, "/products", contentType, body)
	if err != nil {
		return nil, err
	}
	p, err := c.decodeProduct(resp)
	if err != nil {
		return nil, err
	}
	for _, ingID := range in.Ingredients {
		if err := c.AttachIngredient(ctx, p.ID, ingID); err != nil {
			c.log.Warn("attach ingredient failed", zap.Int64("product_id", p.ID), zap.Int64("ingredient_id", ingID), zap.Error(err))
		}
	}
	p.Ingredients = in.Ingredients
	return p, nil
}

// UpdateProduct posts the patch with _method=PUT, then reconciles ingredients
// when the patch carries a set
func (c *Client) UpdateProduct(ctx context.Context, id int64, in ProductPatch) (*domain.Product, error) {
	fields := []formField{{"_method", http.MethodPut}}
	str := func(k string, v *string) {
		if v != nil {
			fields = append(fields, formField{k, *v})
		}
	}
	str("name", in.Name)
	str("description", in.Description)
	if in.Price != nil {
		fields = append(fields, formField{"price", in.Price.String()})
	}
	if in.TypeProduct != nil {
		fields = append(fields, formField{"type_product", string(*in.TypeProduct)})
	}
	if in.IsRecommended != nil {
		fields = append(fields, formField{"is_recommended", boolFlag(*in.IsRecommended)})
	}
	str("badge", in.Badge)
	image := ""
	if in.Image != nil {
		image = *in.Image
	}

	body, contentType, err := productForm(fields, image, map[string]bool{"badge": true})
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, "update_product", http.MethodPost, fmt.Sprintf("/products/%d", id), contentType, body)
	if err != nil {
		return nil, err
	}
	p, err := c.decodeProduct(resp)
	if err != nil {
		return nil, err
	}
	if in.Ingredients != nil {
		if err := c.SyncIngredients(ctx, id, in.Ingredients); err != nil {
			c.log.Warn("ingredient sync incomplete", zap.Int64("product_id", id), zap.Error(err))
		}
		p.Ingredients = in.Ingredients
	}
	return p, nil
}

// AttachIngredient POST /products/{id}/ingredients
func (c *Client) AttachIngredient(ctx context.Context, productID, ingredientID int64) error {
	_, err := c.doJSON(ctx, "attach_ingredient", http.MethodPost,
		fmt.Sprintf("/products/%d/ingredients", productID), map[string]int64{"ingredient_id": ingredientID})
	return err
}

// DetachIngredient DELETE /products/{id}/ingredients/{pivot}
func (c *Client) DetachIngredient(ctx context.Context, productID, pivotID int64) error {
	_, err := c.doJSON(ctx, "detach_ingredient", http.MethodDelete,
		fmt.Sprintf("/products/%d/ingredients/%d", productID, pivotID), nil)
	return err
}

// SyncIngredients attaches the ids of desired that are missing and detaches
// the attached ones not in desired. When the current set cannot be read
// nothing is changed.
func (c *Client) SyncIngredients(ctx context.Context, productID int64, desired []int64) error {
	current, err := c.productIngredients(ctx, productID)
	if err != nil {
		return fmt.Errorf("read current ingredients: %w", err)
	}

	want := make(map[int64]struct{}, len(desired))
	for _, id := range desired {
		want[id] = struct{}{}
	}
	have := make(map[int64]struct{}, len(current.Items))
	for _, w := range current.Items {
		id, _ := w.ingredientID()
		have[id] = struct{}{}
	}

	var errs []error
	for _, id := range desired {
		if _, ok := have[id]; ok {
			continue
		}
		if err := c.AttachIngredient(ctx, productID, id); err != nil {
			errs = append(errs, fmt.Errorf("attach %d: %w", id, err))
		}
		have[id] = struct{}{}
	}
	for _, w := range current.Items {
		id, _ := w.ingredientID()
		if _, keep := want[id]; keep || id == 0 {
			continue
		}
		if err := c.DetachIngredient(ctx, productID, w.detachID()); err != nil {
			errs = append(errs, fmt.Errorf("detach %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// DeleteProduct reports false when the API refuses the delete
func (c *Client) DeleteProduct(ctx context.Context, id int64) bool {
	if _, err := c.doJSON(ctx, "delete_product", http.MethodDelete, fmt.Sprintf("/products/%d", id), nil); err != nil {
		c.log.Warn("delete product failed", zap.Int64("product_id", id), zap.Error(err))
		return false
	}
	return true
}
