package models

import "math"

// Money is an amount in minor currency units (paise for INR). Keeping amounts
// integral avoids float drift when summing line items.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// NewMoney converts a major-unit amount to Money, rounding to the nearest
// minor unit. 499.99 INR becomes 49999 paise.
func NewMoney(amount float64, currency string) Money {
	return Money{
		Amount:   int64(math.Round(amount * 100)),
		Currency: currency,
	}
}

// ToFloat returns the amount in major units.
func (m Money) ToFloat() float64 {
	return float64(m.Amount) / 100
}

// Mul returns the money multiplied by a quantity.
func (m Money) Mul(qty int) Money {
	return Money{Amount: m.Amount * int64(qty), Currency: m.Currency}
}

// Add returns the sum of two amounts. Currencies are assumed to match; the
// service layer rejects mixed-currency carts before any Money math happens.
func (m Money) Add(other Money) Money {
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}
}
