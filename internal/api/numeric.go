package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Numeric number the API may send as a JSON number, a numeric string or null.
// Decoding never fails: an unparsable value is Present but not Valid.
type Numeric struct {
	Value   decimal.Decimal
	Present bool
	Valid   bool
}

func NumericOf(d decimal.Decimal) Numeric {
	return Numeric{Value: d, Present: true, Valid: true}
}

func (n *Numeric) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = Numeric{}
		return nil
	}
	*n = Numeric{Present: true}

	s := string(b)
	if b[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return nil
		}
		s = strings.TrimSpace(unq)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	n.Value, n.Valid = d, true
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if !n.Present || !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(json.Number(n.Value.String()))
}

// Or returns the value, or fallback when absent or invalid
func (n Numeric) Or(fallback decimal.Decimal) decimal.Decimal {
	if n.Valid {
		return n.Value
	}
	return fallback
}

// Int64 integer value; ok is false for absent, invalid or fractional numbers
func (n Numeric) Int64() (int64, bool) {
	if !n.Valid || !n.Value.Equal(n.Value.Truncate(0)) {
		return 0, false
	}
	return n.Value.IntPart(), true
}
