package fakeapi

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
)

// DeliveryFee added by the backend to every order total
var DeliveryFee = decimal.RequireFromString("2.50")

type product struct {
	domain.Product
}

func (p *product) render() map[string]any {
	var image any
	if p.ImageURL != "" {
		image = p.ImageURL
	}
	return map[string]any{
		"id":             p.ID,
		"name":           p.Name,
		"description":    p.Description,
		"price":          money(p.Price),
		"image_url":      image,
		"type_product":   p.TypeProduct,
		"is_recommended": flag(p.IsRecommended),
		"badge":          p.Badge,
	}
}

type ingredient struct {
	domain.Ingredient
}

func (i *ingredient) render() map[string]any {
	return map[string]any{
		"id":         i.ID,
		"name":       i.Name,
		"price":      money(i.Price),
		"ingredient": i.Type,
		"available":  flag(i.Available),
	}
}

// pivot row of the product/ingredient relation
type pivot struct {
	ID           int64
	IngredientID int64
}

type account struct {
	domain.User
	hash []byte
}

type order struct {
	ID        int64
	UserID    int64
	Status    domain.OrderStatus
	Total     decimal.Decimal
	Items     []orderItem
	Address   domain.AddressSnapshot
	Payments  []domain.Payment
	CreatedAt time.Time
}

type orderItem struct {
	ProductID int64
	Name      string
	Quantity  int
	Price     decimal.Decimal
}

const timeLayout = "2006-01-02T15:04:05.000000Z"

func (o *order) render() map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, map[string]any{
			"product_id": it.ProductID,
			"quantity":   it.Quantity,
			"price":      money(it.Price),
			"product":    map[string]any{"name": it.Name},
		})
	}
	payments := make([]map[string]any, 0, len(o.Payments))
	for _, p := range o.Payments {
		payments = append(payments, renderPayment(p))
	}
	return map[string]any{
		"id":         o.ID,
		"user_id":    o.UserID,
		"status":     o.Status,
		"total":      money(o.Total),
		"items":      items,
		"address":    o.Address,
		"payments":   payments,
		"created_at": o.CreatedAt.UTC().Format(timeLayout),
	}
}

func renderPayment(p domain.Payment) map[string]any {
	return map[string]any{
		"id":             p.ID,
		"order_id":       p.OrderID,
		"method":         p.Method,
		"status":         p.Status,
		"amount":         money(p.Amount),
		"transaction_id": p.TransactionID,
		"created_at":     p.CreatedAt,
	}
}

// AddCity registers a delivery city
func (s *Server) AddCity(c domain.City) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cities = append(s.cities, c)
}

// ClearCities empties the city list
func (s *Server) ClearCities() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cities = nil
}

// AddProduct stores p under a fresh id and returns it
func (s *Server) AddProduct(p domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	if p.TypeProduct == "" {
		p.TypeProduct = domain.ProductTypePizza
	}
	s.products[p.ID] = &product{Product: p}
	return p
}

// Product current server copy of id, with attached ingredient ids
func (s *Server) Product(id int64) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, false
	}
	out := p.Product
	out.Ingredients = nil
	for _, pv := range s.pivots[id] {
		out.Ingredients = append(out.Ingredients, pv.IngredientID)
	}
	return out, true
}

func (s *Server) AddIngredient(i domain.Ingredient) domain.Ingredient {
	s.mu.Lock()
	defer s.mu.Unlock()
	i.ID = s.id()
	if i.Type == "" {
		i.Type = domain.IngredientExtra
	}
	s.ingredients[i.ID] = &ingredient{Ingredient: i}
	return i
}

// Attach links an ingredient to a product and returns the pivot id
func (s *Server) Attach(productID, ingredientID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attach(productID, ingredientID)
}

func (s *Server) attach(productID, ingredientID int64) int64 {
	pv := pivot{ID: s.id(), IngredientID: ingredientID}
	s.pivots[productID] = append(s.pivots[productID], pv)
	return pv.ID
}

// AddUser stores u with a bcrypt hash of password
func (s *Server) AddUser(u domain.User, password string) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return domain.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id()
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if u.CreatedAt == "" {
		u.CreatedAt = s.now().UTC().Format(timeLayout)
	}
	s.users[u.ID] = &account{User: u, hash: hash}
	return u, nil
}

// Order server copy of an order
func (s *Server) Order(id int64) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, false
	}
	return o.domain(), true
}

// OrderCount number of orders created so far
func (s *Server) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (o *order) domain() domain.Order {
	out := domain.Order{
		ID:        o.ID,
		Status:    o.Status,
		Total:     o.Total,
		Payments:  append([]domain.Payment(nil), o.Payments...),
		CreatedAt: o.CreatedAt.UTC().Format(timeLayout),
	}
	addr := o.Address
	out.Address = &addr
	for _, it := range o.Items {
		price := it.Price
		out.Items = append(out.Items, domain.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity, Name: it.Name, Price: &price})
	}
	return out
}

// Fixture ids of the seeded data
type Fixture struct {
	Admin      domain.User
	Customer   domain.User
	Products   []domain.Product
	Ingredient []domain.Ingredient
}

const SeedPassword = "password123"

// Seed loads a small menu, the fallback cities and two accounts sharing SeedPassword
func (s *Server) Seed() (Fixture, error) {
	var fx Fixture
	for _, c := range domain.FallbackCities {
		s.AddCity(c)
	}

	var err error
	if fx.Admin, err = s.AddUser(domain.User{Name: "Admin", Email: "admin@pizzeria.test", Role: domain.RoleAdmin}, SeedPassword); err != nil {
		return fx, err
	}
	if fx.Customer, err = s.AddUser(domain.User{Name: "Ana", Surname: "Pérez", Email: "ana@pizzeria.test", Phone: "8095550101"}, SeedPassword); err != nil {
		return fx, err
	}

	for _, i := range []domain.Ingredient{
		{Name: "Masa fina", Price: decimal.Zero, Available: true, Type: domain.IngredientBase},
		{Name: "Salsa de tomate", Price: decimal.Zero, Available: true, Type: domain.IngredientSauce},
		{Name: "Mozzarella", Price: decimal.RequireFromString("1.50"), Available: true, Type: domain.IngredientCheese},
		{Name: "Pepperoni", Price: decimal.RequireFromString("2.00"), Available: true, Type: domain.IngredientExtra},
	} {
		fx.Ingredient = append(fx.Ingredient, s.AddIngredient(i))
	}

	for _, p := range []domain.Product{
		{Name: "Margarita", Description: "Tomate, mozzarella y albahaca", Price: decimal.RequireFromString("9.99"), TypeProduct: domain.ProductTypePizza, IsRecommended: true, ImageURL: "/pizzas/margarita.webp"},
		{Name: "Pepperoni", Description: "Doble pepperoni", Price: decimal.RequireFromString("12.50"), TypeProduct: domain.ProductTypePizza, Badge: "Nuevo"},
		{Name: "Refresco", Price: decimal.RequireFromString("1.75"), TypeProduct: domain.ProductTypeDrink},
		{Name: "Tiramisú", Price: decimal.RequireFromString("4.25"), TypeProduct: domain.ProductTypeDessert},
	} {
		fx.Products = append(fx.Products, s.AddProduct(p))
	}
	for _, ing := range fx.Ingredient[:3] {
		s.Attach(fx.Products[0].ID, ing.ID)
	}
	s.Attach(fx.Products[1].ID, fx.Ingredient[3].ID)
	return fx, nil
}
