// internal/models/product.go
package models

// Product is a bookable catalog item. The search interpreter only reads the
// category and the five location fields.
type Product struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Category  string  `json:"category"`
	Continent string  `json:"continent,omitempty"`
	Country   string  `json:"country,omitempty"`
	Province  string  `json:"province,omitempty"`
	City      string  `json:"city,omitempty"`
	Area      string  `json:"area,omitempty"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency,omitempty"`
}
