package domain

import "testing"

func TestPaymentDetails_Masked(t *testing.T) {
	cases := []struct {
		name, number, want string
	}{
		{"full number", "4111111111111111", "**** 1111"},
		{"five digits", "12345", "**** 2345"},
		{"four digits", "1234", "****"},
		{"one digit", "7", "****"},
		{"multibyte tail", "4111 ١٢٣٤", "**** ١٢٣٤"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := PaymentDetails{CardHolder: "Ana", CardNumber: tc.number, CVV: "123", TransactionID: "TX-1"}
			m := d.Masked()
			if m.CardNumber != tc.want {
				t.Errorf("card number: expected %q, got %q", tc.want, m.CardNumber)
			}
			if m.CVV != "***" {
				t.Errorf("cvv: expected masked, got %q", m.CVV)
			}
			if m.CardHolder != "Ana" || m.TransactionID != "TX-1" {
				t.Errorf("non-secret fields changed: %+v", m)
			}
			if d.CardNumber != tc.number {
				t.Errorf("receiver modified: %q", d.CardNumber)
			}
		})
	}
}
