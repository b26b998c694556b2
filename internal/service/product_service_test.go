package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"

	"storefront/internal/api"
	"storefront/internal/domain"
	"storefront/internal/repository"
)

func TestMenu_FiltersAndCaches(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	all, err := e.products.Menu(ctx, repository.ProductFilter{})
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	if len(all) != len(e.fx.Products) {
		t.Fatalf("expected %d products, got %d", len(e.fx.Products), len(all))
	}

	pizzas, err := e.products.Menu(ctx, repository.ProductFilter{Type: domain.ProductTypePizza})
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	if len(pizzas) != 2 {
		t.Fatalf("expected 2 pizzas, got %d", len(pizzas))
	}
	if calls := e.fake.Calls("list_products"); calls != 1 {
		t.Fatalf("second read must hit the cache, got %d API calls", calls)
	}
}

func TestMenu_InvalidFilter(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	lo, hi := decimal.NewFromInt(10), decimal.NewFromInt(5)
	if _, err := e.products.Menu(ctx, repository.ProductFilter{MinPrice: &lo, MaxPrice: &hi}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := e.products.Menu(ctx, repository.ProductFilter{Type: "pasta"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestProduct_Create_RequiresAdmin(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	customer := e.login(t, e.fx.Customer)
	_, err := e.products.Create(ctx, customer, api.ProductInput{Name: "Hawaiana", Price: decimal.NewFromInt(11)})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if e.fake.Calls("create_product") != 0 {
		t.Fatalf("no call expected for non admins")
	}
}

func TestProduct_Create_Invalid(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	admin := e.login(t, e.fx.Admin)
	cases := []api.ProductInput{
		{Name: "", Price: decimal.NewFromInt(1)},
		{Name: "N", Price: decimal.NewFromInt(-1)},
		{Name: "N", Price: decimal.NewFromInt(1), TypeProduct: "pasta"},
	}
	for _, in := range cases {
		if _, err := e.products.Create(ctx, admin, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}
}

func TestProduct_CreateInvalidatesMenu(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	admin := e.login(t, e.fx.Admin)

	if _, err := e.products.Menu(ctx, repository.ProductFilter{}); err != nil {
		t.Fatal(err)
	}
	p, err := e.products.Create(ctx, admin, api.ProductInput{
		Name:        "Hawaiana",
		Price:       decimal.RequireFromString("11.00"),
		TypeProduct: domain.ProductTypePizza,
		Ingredients: []int64{e.fx.Ingredient[0].ID},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == 0 {
		t.Fatalf("expected id assigned")
	}

	menu, err := e.products.Menu(ctx, repository.ProductFilter{NameSubstring: "hawa"})
	if err != nil {
		t.Fatal(err)
	}
	if len(menu) != 1 {
		t.Fatalf("new product missing from menu: %+v", menu)
	}
}

func TestProduct_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	admin := e.login(t, e.fx.Admin)
	id := e.fx.Products[1].ID

	price := decimal.RequireFromString("13.00")
	p, err := e.products.Update(ctx, admin, id, api.ProductPatch{Price: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !p.Price.Equal(price) {
		t.Fatalf("price not updated: %s", p.Price)
	}

	empty := ""
	if _, err := e.products.Update(ctx, admin, id, api.ProductPatch{Name: &empty}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	ok, err := e.products.Delete(ctx, admin, id)
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = e.products.Delete(ctx, admin, id)
	if err != nil || ok {
		t.Fatalf("second delete must report false without error: %v %v", ok, err)
	}
}

func TestIngredient_CRUD(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	admin := e.login(t, e.fx.Admin)

	if _, err := e.products.CreateIngredient(ctx, admin, api.IngredientInput{Name: "Piña", Type: "fruta"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown type must be rejected, got %v", err)
	}
	ing, err := e.products.CreateIngredient(ctx, admin, api.IngredientInput{
		Name: "Piña", Price: decimal.RequireFromString("1.00"), Type: domain.IngredientExtra, Available: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	off := false
	upd, err := e.products.UpdateIngredient(ctx, admin, ing.ID, api.IngredientPatch{Available: &off})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Available {
		t.Fatalf("expected unavailable")
	}

	list, err := e.products.Ingredients(ctx)
	if err != nil || len(list) != len(e.fx.Ingredient)+1 {
		t.Fatalf("list: %v %d", err, len(list))
	}

	if ok, err := e.products.DeleteIngredient(ctx, admin, ing.ID); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
}

func TestExportProducts(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	admin := e.login(t, e.fx.Admin)

	var buf bytes.Buffer
	if err := e.products.ExportProducts(ctx, admin, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	book, err := xlsx.OpenBinary(buf.Bytes())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rows := book.Sheets[0].Rows
	if len(rows) != len(e.fx.Products)+1 {
		t.Fatalf("expected header plus %d rows, got %d", len(e.fx.Products), len(rows))
	}
	if got := rows[1].Cells[1].Value; got != "Margarita" {
		t.Fatalf("first product name: %q", got)
	}
	if got := rows[1].Cells[3].Value; got != "9.99" {
		t.Fatalf("price cell: %q", got)
	}

	customer := e.login(t, e.fx.Customer)
	if err := e.products.ExportProducts(ctx, customer, &buf); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
