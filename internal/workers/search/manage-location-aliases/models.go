// internal/workers/search/manage-location-aliases/models.go
package managelocationaliases

import "travel-workers/internal/query"

// Actions.
const (
	ActionList          = "list"
	ActionAdd           = "add"
	ActionRemove        = "remove"
	ActionSetMyLocation = "set-my-location"
)

type Input struct {
	Action     string             `json:"action"`
	Key        string             `json:"key,omitempty"`
	Target     *query.LocationRef `json:"target,omitempty"`
	MyLocation *query.LocationRef `json:"myLocation,omitempty"`
}

type Output struct {
	Action         string                `json:"action"`
	Aliases        []query.LocationAlias `json:"aliases"`
	BuiltinCount   int                   `json:"builtinCount"`
	ShadowsBuiltin bool                  `json:"shadowsBuiltin,omitempty"`
	Removed        bool                  `json:"removed,omitempty"`
	MyLocation     query.LocationRef     `json:"myLocation"`
}
