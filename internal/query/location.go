// Package query turns free-text travel searches such as "safari near Skukuza"
// or "hotels in jozi" into a category and a single location filter.
package query

import "strings"

// Level is one of the five location granularities a product is tagged with.
type Level string

const (
	LevelArea      Level = "area"
	LevelCity      Level = "city"
	LevelProvince  Level = "province"
	LevelCountry   Level = "country"
	LevelContinent Level = "continent"
)

// Levels lists every level from most to least specific.
var Levels = []Level{LevelArea, LevelCity, LevelProvince, LevelCountry, LevelContinent}

// LocationRef names a place at one level. A normalized ref has at most one
// field set.
type LocationRef struct {
	Area      string `json:"area,omitempty"`
	City      string `json:"city,omitempty"`
	Province  string `json:"province,omitempty"`
	Country   string `json:"country,omitempty"`
	Continent string `json:"continent,omitempty"`
}

// RefAt builds a ref with only the given level set.
func RefAt(level Level, value string) LocationRef {
	var r LocationRef
	r.set(level, value)
	return r
}

func (r *LocationRef) set(level Level, value string) {
	switch level {
	case LevelArea:
		r.Area = value
	case LevelCity:
		r.City = value
	case LevelProvince:
		r.Province = value
	case LevelCountry:
		r.Country = value
	case LevelContinent:
		r.Continent = value
	}
}

// Get returns the value stored at level.
func (r LocationRef) Get(level Level) string {
	switch level {
	case LevelArea:
		return r.Area
	case LevelCity:
		return r.City
	case LevelProvince:
		return r.Province
	case LevelCountry:
		return r.Country
	case LevelContinent:
		return r.Continent
	}
	return ""
}

func (r LocationRef) IsEmpty() bool {
	return r.Level() == ""
}

// Level reports the most specific level set, or "" for an empty ref.
func (r LocationRef) Level() Level {
	for _, l := range Levels {
		if strings.TrimSpace(r.Get(l)) != "" {
			return l
		}
	}
	return ""
}

// Value is the label at Level.
func (r LocationRef) Value() string {
	if l := r.Level(); l != "" {
		return strings.TrimSpace(r.Get(l))
	}
	return ""
}

// Normalize keeps only the most specific field.
func (r LocationRef) Normalize() LocationRef {
	l := r.Level()
	if l == "" {
		return LocationRef{}
	}
	return RefAt(l, r.Value())
}

// Params renders the ref as a single query parameter.
func (r LocationRef) Params() map[string]string {
	l := r.Level()
	if l == "" {
		return map[string]string{}
	}
	return map[string]string{string(l): r.Value()}
}

func (r LocationRef) String() string {
	if l := r.Level(); l != "" {
		return string(l) + "=" + r.Value()
	}
	return "{}"
}
