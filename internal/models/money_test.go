package models

import "testing"

func TestNewMoney_MinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected int64
	}{
		{"whole rupees", 500, 50000},
		{"two decimals", 499.99, 49999},
		{"rounds up", 10.006, 1001},
		{"rounds down", 10.004, 1000},
		{"single paisa", 0.01, 1},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMoney(tt.amount, "INR")
			if m.Amount != tt.expected {
				t.Errorf("NewMoney(%v) = %d, want %d", tt.amount, m.Amount, tt.expected)
			}
			if m.Currency != "INR" {
				t.Errorf("expected currency INR, got %s", m.Currency)
			}
		})
	}
}

func TestMoney_ToFloat(t *testing.T) {
	m := Money{Amount: 49999, Currency: "INR"}
	if m.ToFloat() != 499.99 {
		t.Errorf("ToFloat() = %v, want 499.99", m.ToFloat())
	}
}

func TestMoney_Mul(t *testing.T) {
	m := Money{Amount: 1500, Currency: "INR"}
	got := m.Mul(3)
	if got.Amount != 4500 {
		t.Errorf("Mul(3) = %d, want 4500", got.Amount)
	}
	if got.Currency != "INR" {
		t.Errorf("Mul changed currency to %s", got.Currency)
	}
}

func TestOrder_ComputeTotal(t *testing.T) {
	order := &Order{
		Items: []OrderItem{
			{LineTotal: Money{Amount: 1000, Currency: "INR"}},
			{LineTotal: Money{Amount: 2000, Currency: "INR"}},
			{LineTotal: Money{Amount: 500, Currency: "INR"}},
		},
	}

	total := order.ComputeTotal()
	if total.Amount != 3500 {
		t.Errorf("ComputeTotal() = %d, want 3500", total.Amount)
	}
	if total.Currency != "INR" {
		t.Errorf("expected currency INR, got %s", total.Currency)
	}
}

func TestProduct_EffectivePrice(t *testing.T) {
	tests := []struct {
		name     string
		price    int64
		discount int
		expected int64
	}{
		{"no discount", 10000, 0, 10000},
		{"ten percent", 10000, 10, 9000},
		{"rounds toward store", 9999, 10, 9000},
		{"full discount", 10000, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{Price: Money{Amount: tt.price, Currency: "INR"}, Discount: tt.discount}
			got := p.EffectivePrice()
			if got.Amount != tt.expected {
				t.Errorf("EffectivePrice() = %d, want %d", got.Amount, tt.expected)
			}
		})
	}
}
