package checkout

import (
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/domain"
)

// View read model of the wizard handed to the HTTP layer. Card data is masked.
type View struct {
	Step          cart.Step             `json:"step"`
	StepName      string                `json:"step_name"`
	Items         []cart.Line           `json:"items"`
	Address       domain.AddressForm    `json:"address"`
	Method        domain.PaymentMethod  `json:"payment_method"`
	Payment       domain.PaymentDetails `json:"payment_details"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	DeliveryFee   decimal.Decimal       `json:"delivery_fee"`
	Total         decimal.Decimal       `json:"total"`
	CanContinue   bool                  `json:"can_continue"`
	Authenticated bool                  `json:"authenticated"`
	Processing    bool                  `json:"processing"`
	OrderSuccess  bool                  `json:"order_success"`
	LastOrderID   int64                 `json:"last_order_id,omitempty"`
	Cities        []domain.City         `json:"cities"`
	CitiesLoading bool                  `json:"cities_loading"`
	CitiesError   string                `json:"cities_error,omitempty"`
	Addresses     []domain.Address      `json:"addresses"`
	AddressError  string                `json:"addresses_error,omitempty"`
	Pending       *PendingOrder         `json:"pending_order,omitempty"`
}

func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := o.cart.Snapshot()
	v := View{
		Step:          st.Step,
		StepName:      st.Step.String(),
		Items:         st.Items,
		Address:       st.Address,
		Method:        st.Method,
		Payment:       st.Payment.Masked(),
		Subtotal:      st.Subtotal(),
		DeliveryFee:   st.DeliveryFee(),
		Total:         st.Total(),
		CanContinue:   o.ready(st),
		Authenticated: o.session.IsAuthenticated(),
		Processing:    o.processing,
		OrderSuccess:  o.orderSuccess,
		LastOrderID:   o.lastOrderID,
		Cities:        o.cityOptions(),
		CitiesLoading: o.citiesLoading,
		Addresses:     append([]domain.Address{}, o.addresses...),
	}
	if o.citiesErr != nil {
		v.CitiesError = o.citiesErr.Error()
	}
	if o.addressesErr != nil {
		v.AddressError = o.addressesErr.Error()
	}
	if o.pending != nil {
		p := *o.pending
		v.Pending = &p
	}
	return v
}

// Pending order awaiting its payment, if any
func (o *Orchestrator) Pending() (PendingOrder, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending == nil {
		return PendingOrder{}, false
	}
	return *o.pending, true
}

func (o *Orchestrator) Processing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.processing
}
