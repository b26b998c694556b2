package domain

import "github.com/shopspring/decimal"

// ProductType menu section of a product
type ProductType string

const (
	ProductTypePizza   ProductType = "pizza"
	ProductTypeDrink   ProductType = "drink"
	ProductTypeDessert ProductType = "dessert"
	ProductTypeExtra   ProductType = "extra"
)

// Product a menu item
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"image_url"`
	TypeProduct   ProductType     `json:"type_product"`
	IsRecommended bool            `json:"is_recommended"`
	Badge         string          `json:"badge,omitempty"`
	Ingredients   []int64         `json:"ingredients,omitempty"`
}

// IngredientType kind of ingredient
type IngredientType string

const (
	IngredientBase   IngredientType = "base"
	IngredientSauce  IngredientType = "salsa"
	IngredientCheese IngredientType = "queso"
	IngredientExtra  IngredientType = "extra"
)

// Ingredient a product component that can be attached to menu items
type Ingredient struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
	Type      IngredientType  `json:"type"`
}

// City delivery city
type City struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FallbackCities offered when the city list comes back empty
var FallbackCities = []City{
	{ID: 1, Name: "Santo Domingo"},
	{ID: 2, Name: "Santiago"},
	{ID: 3, Name: "La Vega"},
}

// Address saved delivery address of a user
type Address struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	AddressLine string `json:"address_line"`
	CityID      int64  `json:"city_id"`
	Sector      string `json:"sector,omitempty"`
	Reference   string `json:"reference,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Role user role
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// IsAdmin reports whether the role may open the back-office
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r.IsAdmin()
}

// User account profile
type User struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Surname         string `json:"surname,omitempty"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	Role            Role   `json:"role,omitempty"`
	EmailVerifiedAt string `json:"email_verified_at,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
}

// OrderStatus order status as reported by the API
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusApproved  OrderStatus = "approved"
)

// Assignable reports whether an operator may set the status by hand
func (s OrderStatus) Assignable() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusPreparing, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// PaymentMethod how the customer pays
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

// Valid reports whether m is a known method
func (m PaymentMethod) Valid() bool {
	return m == PaymentCard || m == PaymentCash
}

// PaymentStatus status recorded with a payment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
)

// OrderItem position of an order
type OrderItem struct {
	ProductID int64            `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Name      string           `json:"name,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

// AddressSnapshot delivery address copied into an order
type AddressSnapshot struct {
	AddressLine string `json:"address_line"`
	CityID      int64  `json:"city_id"`
	Sector      string `json:"sector,omitempty"`
	Reference   string `json:"reference,omitempty"`
}

// Payment payment registered against an order
type Payment struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"order_id,omitempty"`
	Method        PaymentMethod   `json:"method"`
	Status        PaymentStatus   `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID *string         `json:"transaction_id"`
	CreatedAt     string          `json:"created_at,omitempty"`
}

// Order server-owned order, the client only keeps a transient view
type Order struct {
	ID        int64            `json:"id"`
	Status    OrderStatus      `json:"status"`
	Total     decimal.Decimal  `json:"total"`
	Items     []OrderItem      `json:"items,omitempty"`
	Address   *AddressSnapshot `json:"address,omitempty"`
	Payments  []Payment        `json:"payments,omitempty"`
	CreatedAt string           `json:"created_at,omitempty"`
}
