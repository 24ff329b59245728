package query

import (
	"strings"

	"travel-workers/internal/models"
)

// LabelEntry is one known location label.
type LabelEntry struct {
	Key       string // normalized
	Canonical string
	Level     Level
}

// LocationMaps indexes the location labels present in a product catalog.
type LocationMaps struct {
	byLevel map[Level]map[string]string
	// AllLabels is ordered area, city, province, country, continent and by
	// first appearance in the catalog within a level.
	AllLabels []LabelEntry
	// parents[level][key] holds the normalized labels of enclosing levels seen
	// on the same products.
	parents map[Level]map[string]map[string]bool
}

// BuildLocationMaps derives the label maps from products.
func BuildLocationMaps(products []models.Product) *LocationMaps {
	m := &LocationMaps{
		byLevel: make(map[Level]map[string]string, len(Levels)),
		parents: make(map[Level]map[string]map[string]bool, len(Levels)),
	}
	order := make(map[Level][]LabelEntry, len(Levels))
	for _, l := range Levels {
		m.byLevel[l] = map[string]string{}
		m.parents[l] = map[string]map[string]bool{}
	}

	for _, p := range products {
		ref := productRef(p)
		for i, l := range Levels {
			canonical := strings.TrimSpace(ref.Get(l))
			key := normalizeText(canonical)
			if key == "" {
				continue
			}
			if _, seen := m.byLevel[l][key]; !seen {
				m.byLevel[l][key] = canonical
				order[l] = append(order[l], LabelEntry{Key: key, Canonical: canonical, Level: l})
			}
			for _, outer := range Levels[i+1:] {
				if pk := normalizeText(ref.Get(outer)); pk != "" {
					if m.parents[l][key] == nil {
						m.parents[l][key] = map[string]bool{}
					}
					m.parents[l][key][pk] = true
				}
			}
		}
	}

	for _, l := range Levels {
		m.AllLabels = append(m.AllLabels, order[l]...)
	}
	return m
}

func productRef(p models.Product) LocationRef {
	return LocationRef{
		Area:      p.Area,
		City:      p.City,
		Province:  p.Province,
		Country:   p.Country,
		Continent: p.Continent,
	}
}

// Lookup returns the canonical label for an exact normalized key at level.
func (m *LocationMaps) Lookup(level Level, key string) (string, bool) {
	v, ok := m.byLevel[level][key]
	return v, ok
}

// Labels returns the entries for one level.
func (m *LocationMaps) Labels(level Level) []LabelEntry {
	var out []LabelEntry
	for _, e := range m.AllLabels {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// encloses reports whether outer was seen as an enclosing label of inner.
func (m *LocationMaps) encloses(outer, inner LabelEntry) bool {
	return m.parents[inner.Level][inner.Key][outer.Key]
}
