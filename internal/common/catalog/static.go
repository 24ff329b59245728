package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"travel-workers/internal/models"
)

// StaticSource serves a fixed product list.
type StaticSource struct {
	products []models.Product
}

func NewStaticSource(products []models.Product) *StaticSource {
	cp := make([]models.Product, len(products))
	copy(cp, products)
	return &StaticSource{products: cp}
}

// LoadStaticSource reads a JSON array of products from path. An empty path
// yields the built-in sample catalog.
func LoadStaticSource(path string) (*StaticSource, error) {
	if path == "" {
		return NewStaticSource(SampleProducts()), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode catalog file %s: %w", path, err)
	}
	return NewStaticSource(products), nil
}

func (s *StaticSource) Products(_ context.Context) ([]models.Product, error) {
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

// SampleProducts is a small Southern Africa catalog used by the CLI and tests.
func SampleProducts() []models.Product {
	return []models.Product{
		{ID: "p-001", Title: "Oyster Box Hotel", Category: "Lodging", Continent: "Africa", Country: "South Africa", Province: "KwaZulu-Natal", City: "Umhlanga", Price: 4200, Currency: "ZAR"},
		{ID: "p-002", Title: "Durban Beachfront Guesthouse", Category: "Lodging", Continent: "Africa", Country: "South Africa", Province: "KwaZulu-Natal", City: "Durban", Area: "Golden Mile", Price: 1250, Currency: "ZAR"},
		{ID: "p-003", Title: "Durban Harbour Cruise", Category: "Activity", Continent: "Africa", Country: "South Africa", Province: "KwaZulu-Natal", City: "Durban", Price: 380, Currency: "ZAR"},
		{ID: "p-004", Title: "Skukuza Rest Camp", Category: "Lodging", Continent: "Africa", Country: "South Africa", Province: "Mpumalanga", City: "Skukuza", Area: "Kruger National Park", Price: 1800, Currency: "ZAR"},
		{ID: "p-005", Title: "Sunrise Game Drive", Category: "Tour", Continent: "Africa", Country: "South Africa", Province: "Mpumalanga", City: "Skukuza", Area: "Kruger National Park", Price: 950, Currency: "ZAR"},
		{ID: "p-006", Title: "Table Mountain Hike", Category: "Tour", Continent: "Africa", Country: "South Africa", Province: "Western Cape", City: "Cape Town", Area: "Table Mountain", Price: 650, Currency: "ZAR"},
		{ID: "p-007", Title: "V&A Waterfront Hotel", Category: "Lodging", Continent: "Africa", Country: "South Africa", Province: "Western Cape", City: "Cape Town", Area: "V&A Waterfront", Price: 3900, Currency: "ZAR"},
		{ID: "p-008", Title: "Cape Winelands Tour", Category: "Tour", Continent: "Africa", Country: "South Africa", Province: "Western Cape", City: "Stellenbosch", Price: 1100, Currency: "ZAR"},
		{ID: "p-009", Title: "Sandton Business Hotel", Category: "Lodging", Continent: "Africa", Country: "South Africa", Province: "Gauteng", City: "Johannesburg", Area: "Sandton", Price: 2100, Currency: "ZAR"},
		{ID: "p-010", Title: "Soweto Cycle Tour", Category: "Tour", Continent: "Africa", Country: "South Africa", Province: "Gauteng", City: "Johannesburg", Area: "Soweto", Price: 540, Currency: "ZAR"},
		{ID: "p-011", Title: "Victoria Falls Bridge Bungee", Category: "Activity", Continent: "Africa", Country: "Zimbabwe", Province: "Matabeleland North", City: "Victoria Falls", Price: 2300, Currency: "ZAR"},
		{ID: "p-012", Title: "Okavango Delta Safari", Category: "Tour", Continent: "Africa", Country: "Botswana", Province: "North-West District", City: "Maun", Area: "Okavango Delta", Price: 7800, Currency: "ZAR"},
		{ID: "p-013", Title: "Durban Airport Shuttle", Category: "Transport", Continent: "Africa", Country: "South Africa", Province: "KwaZulu-Natal", City: "Durban", Price: 250, Currency: "ZAR"},
		{ID: "p-014", Title: "Bunny Chow Food Walk", Category: "Dining", Continent: "Africa", Country: "South Africa", Province: "KwaZulu-Natal", City: "Durban", Price: 300, Currency: "ZAR"},
	}
}
