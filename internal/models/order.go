package models

import "time"

// PaymentStatus is the lifecycle state of an order's payment.
type PaymentStatus string

const (
	PaymentStatusPending     PaymentStatus = "pending"
	PaymentStatusPaid        PaymentStatus = "paid"
	PaymentStatusFailed      PaymentStatus = "failed"
	PaymentStatusStockIssue  PaymentStatus = "failed_stock_issue"
	PaymentStatusRefunded    PaymentStatus = "refunded"
)

// OrderItem is one line of an order. Unit price and product name are captured
// at purchase time so later catalog edits never rewrite order history.
type OrderItem struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	Quantity      int    `json:"quantity"`
	UnitPrice     Money  `json:"unit_price"`
	LineTotal     Money  `json:"line_total"`
}

// Address is a shipping destination. All fields are optional free-form
// strings; the storefront lets users fill these in progressively.
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Order is the immutable record of a completed (or flagged) checkout. It is
// created only after gateway signature verification succeeds and is mutated
// afterwards only to flag a stock failure.
type Order struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	Items            []OrderItem   `json:"items"`
	Total            Money         `json:"total"`
	ShippingAddress  Address       `json:"shipping_address"`
	GatewayOrderID   string        `json:"gateway_order_id"`
	GatewayPaymentID string        `json:"gateway_payment_id"`
	GatewaySignature string        `json:"-"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	CreatedAt        time.Time     `json:"created_at"`
}

// ComputeTotal sums the line totals.
func (o *Order) ComputeTotal() Money {
	var total Money
	for _, item := range o.Items {
		if total.Currency == "" {
			total.Currency = item.LineTotal.Currency
		}
		total = total.Add(item.LineTotal)
	}
	return total
}
