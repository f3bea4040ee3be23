package menu

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Price is an exact amount of US dollars.
type Price struct {
	amount decimal.Decimal
}

// ParsePrice parses "5.00" or "$5.00".
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return Price{}, fmt.Errorf("empty price")
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, err
	}
	if amount.IsNegative() {
		return Price{}, fmt.Errorf("negative price %q", s)
	}
	return Price{amount: amount}, nil
}

// MustParsePrice is ParsePrice for constants, it panics on malformed input.
func MustParsePrice(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Price) Amount() decimal.Decimal {
	return p.amount
}

func (p Price) Equal(other Price) bool {
	return p.amount.Equal(other.amount)
}

// String renders the price as $D.CC.
func (p Price) String() string {
	return "$" + p.amount.StringFixed(2)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Price) UnmarshalJSON(data []byte) error {
	var s string
	err := json.Unmarshal(data, &s)
	if err != nil {
		return err
	}
	parsed, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
