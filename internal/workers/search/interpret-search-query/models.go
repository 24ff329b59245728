// internal/workers/search/interpret-search-query/models.go
package interpretsearchquery

import "travel-workers/internal/query"

type Input struct {
	Query string `json:"query"`
	// EnableAliases overrides the worker default when set.
	EnableAliases *bool `json:"enableAliases,omitempty"`
	// MyLocation wins over the saved location for "near me" queries.
	MyLocation       *query.LocationRef `json:"myLocation,omitempty"`
	RememberLocation bool               `json:"rememberLocation,omitempty"`
}

type Output struct {
	Parsed        query.ParsedQuery `json:"parsed"`
	HasSuggestion bool              `json:"hasSuggestion"`
	Suggestion    *query.Suggestion `json:"suggestion"`
	SearchParams  string            `json:"searchParams,omitempty"`
}
