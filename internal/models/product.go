package models

import "time"

// Product carries the catalog fields the checkout workflow needs. Quantity is
// the shared mutable stock count, concurrently decremented by racing
// checkouts; PurchaseCount is the cumulative units sold.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Price         Money     `json:"price"`
	Discount      int       `json:"discount"` // percent off, 0-100
	Quantity      int       `json:"quantity"`
	PurchaseCount int64     `json:"purchase_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EffectivePrice is the discounted unit price charged at checkout.
func (p *Product) EffectivePrice() Money {
	if p.Discount <= 0 {
		return p.Price
	}
	discounted := p.Price.Amount - p.Price.Amount*int64(p.Discount)/100
	return Money{Amount: discounted, Currency: p.Price.Currency}
}

// CartItem is one (product, quantity) pair in a user's cart, unique per
// product. The cart is emptied exactly once per successful checkout.
type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
