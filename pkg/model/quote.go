package model

import "time"

// QuoteItem is one line in a customer's quote cart.
type QuoteItem struct {
	ID        string    `json:"id"`
	Style     string    `json:"style"`
	Color     string    `json:"color"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	AddedAt   time.Time `json:"added_at"`
}

// QuoteCart is the server-side cart for a browser session.
type QuoteCart struct {
	ID        string      `json:"id"`
	Items     []QuoteItem `json:"items"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Subtotal sums quantity x unit price across items.
func (c *QuoteCart) Subtotal() float64 {
	var total float64
	for _, it := range c.Items {
		total += float64(it.Quantity) * it.UnitPrice
	}
	return total
}

// QuoteRequest is a submitted cart with customer contact details.
type QuoteRequest struct {
	ID          string      `json:"id"`
	CartID      string      `json:"cart_id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Company     string      `json:"company,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	Items       []QuoteItem `json:"items"`
	Subtotal    float64     `json:"subtotal"`
	SubmittedAt time.Time   `json:"submitted_at"`
}
