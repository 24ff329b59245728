package query

import (
	"fmt"
	"net/url"
	"strings"

	"travel-workers/internal/models"
)

// Suggestion is a ready-to-render search action with its result count.
type Suggestion struct {
	Label  string            `json:"label"`
	Count  int               `json:"count"`
	Params map[string]string `json:"params"`
}

// QueryString encodes Params for a search URL.
func (s *Suggestion) QueryString() string {
	v := url.Values{}
	for k, p := range s.Params {
		v.Set(k, p)
	}
	return v.Encode()
}

// BuildSuggestion counts matching products for q. It returns nil when q has
// neither a category nor a location.
func BuildSuggestion(q ParsedQuery, products []models.Product) *Suggestion {
	if q.IsEmpty() {
		return nil
	}

	level, value := q.Location.Level(), q.Location.Value()
	count := 0
	for _, p := range products {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if level != "" && productRef(p).Get(level) != value {
			continue
		}
		count++
	}

	params := q.Location.Params()
	if q.Category != "" {
		params["category"] = q.Category
	}

	parts := []string{"Show"}
	if q.Category != "" {
		parts = append(parts, q.Category)
	}
	if value != "" {
		parts = append(parts, "in", value)
	}
	parts = append(parts, fmt.Sprintf("(%d)", count))

	return &Suggestion{
		Label:  strings.Join(parts, " "),
		Count:  count,
		Params: params,
	}
}
