package domain

import "github.com/shopspring/decimal"

// Price is a strictly positive monetary amount. The zero value is not a valid
// Price; use NewPrice.
type Price struct {
	amount decimal.Decimal
}

func NewPrice(amount decimal.Decimal) (Price, error) {
	if !amount.IsPositive() {
		return Price{}, ErrInvalidPrice
	}
	return Price{amount: amount}, nil
}

// MustPrice is NewPrice for literals known to be valid (seeds, tests).
func MustPrice(amount string) Price {
	p, err := NewPrice(decimal.RequireFromString(amount))
	if err != nil {
		panic(err)
	}
	return p
}

func (p Price) Amount() decimal.Decimal { return p.amount }

// Equal compares by value: 100 and 100.00 are the same price.
func (p Price) Equal(other Price) bool { return p.amount.Equal(other.amount) }

// String renders two decimals for display. Never use it for comparison.
func (p Price) String() string { return p.amount.StringFixed(2) }
