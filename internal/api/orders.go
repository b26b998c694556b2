package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// CreateOrderRequest body of POST /orders. Either Address or AddressID is set.
type CreateOrderRequest struct {
	AddressID *int64                  `json:"address_id,omitempty"`
	Address   *domain.AddressSnapshot `json:"address,omitempty"`
	Items     []OrderLine             `json:"items"`
}

type OrderLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// OrderReceipt what the checkout needs back from order creation. Fields keep
// their presence/validity so the caller decides how to treat bad values.
type OrderReceipt struct {
	ID     Numeric `json:"id"`
	Total  Numeric `json:"total"`
	Status string  `json:"status"`
}

// CreatePaymentRequest body of POST /orders/{id}/payments. Amount is sent as
// a JSON number and TransactionID as null when unset.
type CreatePaymentRequest struct {
	Amount        json.Number          `json:"amount"`
	Method        domain.PaymentMethod `json:"method"`
	Status        domain.PaymentStatus `json:"status"`
	TransactionID *string              `json:"transaction_id"`
}

type orderItemWire struct {
	ProductID Numeric `json:"product_id"`
	Quantity  Numeric `json:"quantity"`
	Name      string  `json:"name"`
	Price     Numeric `json:"price"`
	Product   *struct {
		Name string `json:"name"`
	} `json:"product"`
}

type addressWire struct {
	ID          Numeric `json:"id"`
	UserID      Numeric `json:"user_id"`
	AddressLine string  `json:"address_line"`
	CityID      Numeric `json:"city_id"`
	Sector      string  `json:"sector"`
	Reference   string  `json:"reference"`
	CreatedAt   string  `json:"created_at"`
}

func (w addressWire) address() domain.Address {
	id, _ := w.ID.Int64()
	userID, _ := w.UserID.Int64()
	cityID, _ := w.CityID.Int64()
	return domain.Address{
		ID:          id,
		UserID:      userID,
		AddressLine: w.AddressLine,
		CityID:      cityID,
		Sector:      w.Sector,
		Reference:   w.Reference,
		CreatedAt:   w.CreatedAt,
	}
}

type paymentWire struct {
	ID            Numeric `json:"id"`
	OrderID       Numeric `json:"order_id"`
	Method        string  `json:"method"`
	Status        string  `json:"status"`
	Amount        Numeric `json:"amount"`
	TransactionID *string `json:"transaction_id"`
	CreatedAt     string  `json:"created_at"`
}

func (w paymentWire) payment() domain.Payment {
	id, _ := w.ID.Int64()
	orderID, _ := w.OrderID.Int64()
	return domain.Payment{
		ID:            id,
		OrderID:       orderID,
		Method:        domain.PaymentMethod(w.Method),
		Status:        domain.PaymentStatus(w.Status),
		Amount:        w.Amount.Or(decimal.Zero),
		TransactionID: w.TransactionID,
		CreatedAt:     w.CreatedAt,
	}
}

type orderWire struct {
	ID        Numeric         `json:"id"`
	Status    string          `json:"status"`
	Total     Numeric         `json:"total"`
	Items     []orderItemWire `json:"items"`
	Address   *addressWire    `json:"address"`
	Payments  []paymentWire   `json:"payments"`
	CreatedAt string          `json:"created_at"`
}

func (w orderWire) order() domain.Order {
	id, _ := w.ID.Int64()
	o := domain.Order{
		ID:        id,
		Status:    domain.OrderStatus(w.Status),
		Total:     w.Total.Or(decimal.Zero),
		CreatedAt: w.CreatedAt,
	}
	for _, it := range w.Items {
		pid, _ := it.ProductID.Int64()
		qty, _ := it.Quantity.Int64()
		item := domain.OrderItem{ProductID: pid, Quantity: int(qty), Name: it.Name}
		if item.Name == "" && it.Product != nil {
			item.Name = it.Product.Name
		}
		if it.Price.Valid {
			price := it.Price.Value
			item.Price = &price
		}
		o.Items = append(o.Items, item)
	}
	if w.Address != nil {
		a := w.Address.address()
		o.Address = &domain.AddressSnapshot{
			AddressLine: a.AddressLine,
			CityID:      a.CityID,
			Sector:      a.Sector,
			Reference:   a.Reference,
		}
	}
	for _, p := range w.Payments {
		o.Payments = append(o.Payments, p.payment())
	}
	return o
}

func toOrder(w orderWire) (domain.Order, bool) { return w.order(), true }

// CreateOrder POST /orders. The receipt is returned as found; a response
// without an order object yields an empty receipt, not an error.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderReceipt, error) {
	body, err := c.doJSON(ctx, "create_order", http.MethodPost, "/orders", req)
	if err != nil {
		return nil, err
	}
	receipt, err := decodeObject[OrderReceipt](body, "data.order", "data", "order", "")
	if err != nil {
		return &OrderReceipt{}, nil
	}
	return &receipt, nil
}

// CreatePayment POST /orders/{id}/payments
func (c *Client) CreatePayment(ctx context.Context, orderID int64, req CreatePaymentRequest) (*domain.Payment, error) {
	body, err := c.doJSON(ctx, "create_payment", http.MethodPost, fmt.Sprintf("/orders/%d/payments", orderID), req)
	if err != nil {
		return nil, err
	}
	w, err := decodeObject[paymentWire](body, "data", "")
	if err != nil {
		// the payment was accepted; echo the request
		amount, _ := decimal.NewFromString(string(req.Amount))
		return &domain.Payment{
			OrderID:       orderID,
			Method:        req.Method,
			Status:        req.Status,
			Amount:        amount,
			TransactionID: req.TransactionID,
		}, nil
	}
	p := w.payment()
	if p.OrderID == 0 {
		p.OrderID = orderID
	}
	return &p, nil
}

// ListOrders GET /orders, or every customer's orders with all=1
func (c *Client) ListOrders(ctx context.Context, all bool) (Envelope[domain.Order], error) {
	path := "/orders"
	if all {
		path += "?all=1"
	}
	body, err := c.doJSON(ctx, "list_orders", http.MethodGet, path, nil)
	if err != nil {
		return Envelope[domain.Order]{}, err
	}
	return decodeList(body, toOrder, "data", "data.orders", "", "orders"), nil
}

// GetOrder GET /orders/{id}
func (c *Client) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	body, err := c.doJSON(ctx, "get_order", http.MethodGet, fmt.Sprintf("/orders/%d", id), nil)
	if err != nil {
		return nil, err
	}
	w, err := decodeObject[orderWire](body, "data.order", "data", "order", "")
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	o := w.order()
	return &o, nil
}

// UpdateOrderStatus PUT /orders/{id}/status
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	body, err := c.doJSON(ctx, "update_order_status", http.MethodPut,
		fmt.Sprintf("/orders/%d/status", id), map[string]domain.OrderStatus{"status": status})
	if err != nil {
		return nil, err
	}
	w, err := decodeObject[orderWire](body, "data.order", "data", "order", "")
	if err != nil {
		return &domain.Order{ID: id, Status: status}, nil
	}
	o := w.order()
	return &o, nil
}
