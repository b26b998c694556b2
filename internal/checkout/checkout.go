// Package checkout drives the four-step checkout wizard of one session: step
// gating, the login gate, city and saved-address loading, and the two-phase
// order/payment commit.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/api"
	"storefront/internal/domain"
)

var (
	ErrLoginRequired        = errors.New("login required")
	ErrStepIncomplete       = errors.New("step is incomplete")
	ErrCheckoutInProgress   = errors.New("checkout already in progress")
	ErrInvalidOrderID       = errors.New("order did not return a valid id")
	ErrInvalidAmount        = errors.New("order amount is invalid")
	ErrPurchaseFailed       = errors.New("could not process the purchase")
	ErrPaymentPending       = errors.New("order created, payment pending")
	ErrNoPendingOrder       = errors.New("no order awaiting payment")
	ErrInvalidCity          = errors.New("city id is not a valid id")
	ErrAddressNotFound      = errors.New("saved address not found")
	ErrCitiesUnavailable    = errors.New("could not load cities")
	ErrAddressesUnavailable = errors.New("could not load saved addresses")

	// ErrStale result of a load whose step was left before it finished
	ErrStale = errors.New("stale response dropped")
)

// PaymentPendingError the order exists server side but its payment was not
// recorded
type PaymentPendingError struct {
	OrderID int64
	Err     error
}

func (e *PaymentPendingError) Error() string {
	return fmt.Sprintf("order %d created, payment pending: %v", e.OrderID, e.Err)
}

func (e *PaymentPendingError) Unwrap() []error {
	return []error{ErrPaymentPending, ErrPurchaseFailed, e.Err}
}

//go:generate mockery --name=OrderClient --output=./mocks --case=underscore
type OrderClient interface {
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) (*api.OrderReceipt, error)
	CreatePayment(ctx context.Context, orderID int64, req api.CreatePaymentRequest) (*domain.Payment, error)
}

//go:generate mockery --name=DirectoryClient --output=./mocks --case=underscore
type DirectoryClient interface {
	ListCities(ctx context.Context) (api.Envelope[domain.City], error)
	ListAddresses(ctx context.Context) (api.Envelope[domain.Address], error)
}

// Session login state consulted by the gates
type Session interface {
	IsAuthenticated() bool
	User() (domain.User, bool)
}

// Notifier receives the outcome of every commit attempt that reached the API
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

type Outcome string

const (
	OutcomeCommitted      Outcome = "committed"
	OutcomePaymentPending Outcome = "payment_pending"
	OutcomeFailed         Outcome = "failed"
	OutcomeSkipped        Outcome = "skipped"
)

// PendingOrder handle of an order whose payment is still to be recorded.
// Amount is nil when the API reported an unusable total.
type PendingOrder struct {
	OrderID       int64                `json:"order_id"`
	Amount        *decimal.Decimal     `json:"amount"`
	Method        domain.PaymentMethod `json:"method"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	TransactionID *string              `json:"transaction_id"`
	Reason        string               `json:"reason"`
	CreatedAt     time.Time            `json:"created_at"`
}

type Result struct {
	Outcome Outcome         `json:"outcome"`
	OrderID int64           `json:"order_id,omitempty"`
	Payment *domain.Payment `json:"payment,omitempty"`
	Pending *PendingOrder   `json:"pending,omitempty"`
}

// Event checkout notification
type Event struct {
	Outcome       Outcome              `json:"outcome"`
	OrderID       int64                `json:"order_id,omitempty"`
	Amount        decimal.Decimal      `json:"amount"`
	Method        domain.PaymentMethod `json:"method"`
	TransactionID *string              `json:"transaction_id"`
	Items         []api.OrderLine      `json:"items"`
	UserID        int64                `json:"user_id,omitempty"`
	Email         string               `json:"email,omitempty"`
	Name          string               `json:"name,omitempty"`
	Reason        string               `json:"reason,omitempty"`
	At            time.Time            `json:"at"`
}
