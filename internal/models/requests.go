package models

// InitiateCheckoutRequest is the body of POST /api/v1/checkout/initiate.
// Items are validated but not forwarded to the gateway.
type InitiateCheckoutRequest struct {
	Amount   float64           `json:"amount" binding:"required"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
	Items    []CheckoutItem    `json:"items" binding:"required"`
}

// CheckoutItem is a (product, quantity) pair as sent by the client.
type CheckoutItem struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// InitiateCheckoutResponse returns what the client needs to open the gateway
// checkout widget. The key id is public; the secret never leaves the server.
type InitiateCheckoutResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// VerifyPaymentRequest is the body of POST /api/v1/checkout/verify. The field
// names mirror what the Razorpay browser SDK hands back. Clients may also
// send per-item price/name fields for backward compatibility; they are
// ignored and pricing is re-derived server-side.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string         `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string         `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string         `json:"razorpay_signature" binding:"required"`
	Items             []CheckoutItem `json:"items" binding:"required"`
	DeclaredTotal     float64        `json:"total_amount" binding:"required"`
	ShippingAddress   Address        `json:"shipping_address"`
}

// OrderListFilter narrows an order listing.
type OrderListFilter struct {
	UserID string
	Limit  int
	Offset int
}
