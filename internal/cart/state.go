// Package cart holds the checkout cart as an immutable snapshot and the pure
// reducers that derive a new snapshot from the previous one.
package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Step position of the checkout wizard
type Step int

const (
	StepItems Step = iota
	StepAddress
	StepPayment
	StepSummary
)

// ClampStep maps any integer onto the [StepItems, StepSummary] range
func ClampStep(n int) Step {
	if n < int(StepItems) {
		return StepItems
	}
	if n > int(StepSummary) {
		return StepSummary
	}
	return Step(n)
}

func (s Step) String() string {
	switch s {
	case StepItems:
		return "items"
	case StepAddress:
		return "address"
	case StepPayment:
		return "payment"
	case StepSummary:
		return "summary"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// DeliveryFee flat fee charged on any non-empty cart
var DeliveryFee = decimal.RequireFromString("2.50")

// Line product with its quantity. Quantity is always >= 1.
type Line struct {
	Product  domain.Product `json:"item"`
	Quantity int            `json:"quantity"`
	Note     string         `json:"note,omitempty"`
}

// State cart snapshot. Values are never mutated in place: reducers return a copy.
type State struct {
	Items   []Line                `json:"items"`
	Address domain.AddressForm    `json:"address"`
	Payment domain.PaymentDetails `json:"payment_details"`
	Method  domain.PaymentMethod  `json:"payment_method"`
	Step    Step                  `json:"step"`
}

// Initial empty cart at the first step paying by card
func Initial() State {
	return State{
		Items:  []Line{},
		Method: domain.PaymentCard,
		Step:   StepItems,
	}
}

func (s State) clone() State {
	items := make([]Line, len(s.Items))
	copy(items, s.Items)
	s.Items = items
	return s
}

// Line returns the line holding product id
func (s State) Line(id int64) (Line, bool) {
	for _, l := range s.Items {
		if l.Product.ID == id {
			return l, true
		}
	}
	return Line{}, false
}

// Subtotal sum of price*quantity over all lines
func (s State) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range s.Items {
		sum = sum.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// DeliveryFee flat fee when the cart has lines, zero otherwise
func (s State) DeliveryFee() decimal.Decimal {
	if len(s.Items) == 0 {
		return decimal.Zero
	}
	return DeliveryFee
}

// Total subtotal plus delivery fee
func (s State) Total() decimal.Decimal {
	return s.Subtotal().Add(s.DeliveryFee())
}

// AddItem increments the line of p or appends a new line with quantity 1
func AddItem(s State, p domain.Product) State {
	s = s.clone()
	for i := range s.Items {
		if s.Items[i].Product.ID == p.ID {
			s.Items[i].Quantity++
			return s
		}
	}
	s.Items = append(s.Items, Line{Product: p, Quantity: 1})
	return s
}

// RemoveItem drops the line of product id, no-op when absent
func RemoveItem(s State, id int64) State {
	items := make([]Line, 0, len(s.Items))
	for _, l := range s.Items {
		if l.Product.ID != id {
			items = append(items, l)
		}
	}
	s.Items = items
	return s
}

// UpdateQuantity sets the absolute quantity of a line; quantity <= 0 removes it
func UpdateQuantity(s State, id int64, quantity int) State {
	if quantity <= 0 {
		return RemoveItem(s, id)
	}
	s = s.clone()
	for i := range s.Items {
		if s.Items[i].Product.ID == id {
			s.Items[i].Quantity = quantity
		}
	}
	return s
}

// SetNote attaches a free-text note to a line
func SetNote(s State, id int64, note string) State {
	s = s.clone()
	for i := range s.Items {
		if s.Items[i].Product.ID == id {
			s.Items[i].Note = note
		}
	}
	return s
}

// SetAddress merges the patch into the address form
func SetAddress(s State, p domain.AddressPatch) State {
	s.Address = p.Apply(s.Address)
	return s
}

// SetPaymentDetails merges the patch into the payment details
func SetPaymentDetails(s State, p domain.PaymentPatch) State {
	s.Payment = p.Apply(s.Payment)
	return s
}

// SetPaymentMethod switches the method. Switching to cash wipes the card data.
func SetPaymentMethod(s State, m domain.PaymentMethod) State {
	s.Method = m
	if m == domain.PaymentCash {
		s.Payment = domain.PaymentDetails{}
	}
	return s
}

// SetStep stores step as is; callers clamp
func SetStep(s State, step Step) State {
	s.Step = step
	return s
}

// Reset returns the initial state
func Reset(State) State {
	return Initial()
}
