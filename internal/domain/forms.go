package domain

// AddressForm delivery address typed during checkout. CityID stays a string
// until submission, where it is coerced to an integer.
type AddressForm struct {
	AddressLine string `json:"address_line"`
	CityID      string `json:"city_id"`
	Sector      string `json:"sector"`
	Reference   string `json:"reference"`
}

// AddressPatch partial update of AddressForm, nil fields are left untouched
type AddressPatch struct {
	AddressLine *string `json:"address_line"`
	CityID      *string `json:"city_id"`
	Sector      *string `json:"sector"`
	Reference   *string `json:"reference"`
}

// Apply merges the supplied fields into f
func (p AddressPatch) Apply(f AddressForm) AddressForm {
	if p.AddressLine != nil {
		f.AddressLine = *p.AddressLine
	}
	if p.CityID != nil {
		f.CityID = *p.CityID
	}
	if p.Sector != nil {
		f.Sector = *p.Sector
	}
	if p.Reference != nil {
		f.Reference = *p.Reference
	}
	return f
}

// PaymentDetails card data, only meaningful for PaymentCard
type PaymentDetails struct {
	CardHolder    string `json:"card_holder"`
	CardNumber    string `json:"card_number"`
	Expiry        string `json:"expiry"`
	CVV           string `json:"cvv"`
	TransactionID string `json:"transaction_id"`
}

// Complete reports whether every card field required to pay is filled
func (d PaymentDetails) Complete() bool {
	return d.CardHolder != "" && d.CardNumber != "" && d.Expiry != "" && d.CVV != ""
}

// Masked copy safe to hand back to a client
func (d PaymentDetails) Masked() PaymentDetails {
	switch r := []rune(d.CardNumber); {
	case len(r) > 4:
		d.CardNumber = "**** " + string(r[len(r)-4:])
	case len(r) > 0:
		d.CardNumber = "****"
	}
	if d.CVV != "" {
		d.CVV = "***"
	}
	return d
}

// PaymentPatch partial update of PaymentDetails
type PaymentPatch struct {
	CardHolder    *string `json:"card_holder"`
	CardNumber    *string `json:"card_number"`
	Expiry        *string `json:"expiry"`
	CVV           *string `json:"cvv"`
	TransactionID *string `json:"transaction_id"`
}

// Apply merges the supplied fields into d
func (p PaymentPatch) Apply(d PaymentDetails) PaymentDetails {
	if p.CardHolder != nil {
		d.CardHolder = *p.CardHolder
	}
	if p.CardNumber != nil {
		d.CardNumber = *p.CardNumber
	}
	if p.Expiry != nil {
		d.Expiry = *p.Expiry
	}
	if p.CVV != nil {
		d.CVV = *p.CVV
	}
	if p.TransactionID != nil {
		d.TransactionID = *p.TransactionID
	}
	return d
}
