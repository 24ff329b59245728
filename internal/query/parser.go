package query

import (
	"strings"

	"travel-workers/internal/models"
)

// ParsedQuery is the filter intent extracted from a search phrase.
type ParsedQuery struct {
	Category      string      `json:"category"`
	Location      LocationRef `json:"location"`
	UsedConnector string      `json:"usedConnector,omitempty"`
}

// IsEmpty reports a parse that found neither a category nor a location.
func (q ParsedQuery) IsEmpty() bool {
	return q.Category == "" && q.Location.IsEmpty()
}

var connectors = []string{" in ", " near ", " around ", " at "}

var nearMePhrases = []string{"near me", "around me", "close by", "nearby"}

func mentionsNearMe(text string) bool {
	for _, p := range nearMePhrases {
		if containsPhrase(text, p) {
			return true
		}
	}
	return false
}

// splitOnConnector splits at the right-most connector. Without one, left and
// right are both the whole text.
func splitOnConnector(text string) (left, right, connector string) {
	best := -1
	for _, c := range connectors {
		if idx := strings.LastIndex(text, c); idx > best {
			best = idx
			connector = c
		}
	}
	if best < 0 {
		return text, text, ""
	}
	return text[:best], text[best+len(connector):], strings.TrimSpace(connector)
}

// Parse interprets text against a product catalog. aliases may be nil, in
// which case every alias step is skipped.
func Parse(text string, products []models.Product, myLocation LocationRef, aliases AliasMap) ParsedQuery {
	t := normalizeText(text)
	if t == "" {
		return ParsedQuery{}
	}

	left, right, connector := splitOnConnector(t)
	result := ParsedQuery{
		Category:      DetectCategory(left),
		UsedConnector: connector,
	}

	if mentionsNearMe(t) {
		if loc := nearestOf(myLocation); !loc.IsEmpty() {
			result.Location = loc
			result.UsedConnector = "near"
			return result
		}
	}

	maps := BuildLocationMaps(products)
	result.Location = ResolveLocationToken(right, aliases, maps)
	if result.Location.IsEmpty() {
		result.Location = LongestLocationMatch(t, aliases, maps)
	}
	return result
}

// nearestOf picks the city, else province, else country of a saved location.
func nearestOf(my LocationRef) LocationRef {
	for _, l := range []Level{LevelCity, LevelProvince, LevelCountry} {
		if v := strings.TrimSpace(my.Get(l)); v != "" {
			return RefAt(l, v)
		}
	}
	return LocationRef{}
}

// ResolveLocationToken maps the location half of a query to a place: exact
// alias, then whole-word alias for keys of three or more characters, then
// each catalog level from area to continent, exact before whole-word.
func ResolveLocationToken(token string, aliases AliasMap, maps *LocationMaps) LocationRef {
	t := normalizeText(token)
	if t == "" {
		return LocationRef{}
	}

	if aliases != nil {
		if target, ok := aliases[t]; ok {
			return target
		}
		for _, k := range aliases.keysLongestFirst() {
			if len(k) >= 3 && containsPhrase(t, k) {
				return aliases[k]
			}
		}
	}

	if maps == nil {
		return LocationRef{}
	}
	for _, l := range Levels {
		if canonical, ok := maps.Lookup(l, t); ok {
			return RefAt(l, canonical)
		}
		if e, ok := longestLabelIn(t, maps.Labels(l)); ok {
			return RefAt(l, e.Canonical)
		}
	}
	return LocationRef{}
}

func longestLabelIn(text string, labels []LabelEntry) (LabelEntry, bool) {
	var best LabelEntry
	found := false
	for _, e := range labels {
		if len(e.Key) > len(best.Key) && containsPhrase(text, e.Key) {
			best = e
			found = true
		}
	}
	return best, found
}

// LongestLocationMatch scans the whole query for the longest catalog label
// and the longest alias key and returns whichever is longer. When the winning
// label encloses a more specific label that also matched ("durban south
// africa"), the more specific one is returned. Equal lengths resolve only if
// both point at the same place.
func LongestLocationMatch(text string, aliases AliasMap, maps *LocationMaps) LocationRef {
	t := normalizeText(text)
	if t == "" {
		return LocationRef{}
	}

	var label LocationRef
	labelLen := 0
	if maps != nil {
		var matched []LabelEntry
		for _, e := range maps.AllLabels {
			if containsPhrase(t, e.Key) {
				matched = append(matched, e)
			}
		}
		if best, ok := longestLabelIn(t, matched); ok {
			labelLen = len(best.Key)
			best = mostSpecificWithin(best, matched, maps)
			label = RefAt(best.Level, best.Canonical)
		}
	}

	var alias LocationRef
	aliasLen := 0
	for _, k := range aliases.keysLongestFirst() {
		if containsPhrase(t, k) {
			alias = aliases[k]
			aliasLen = len(k)
			break
		}
	}

	switch {
	case labelLen == 0 && aliasLen == 0:
		return LocationRef{}
	case labelLen > aliasLen:
		return label
	case aliasLen > labelLen:
		return alias
	case label == alias:
		return label
	default:
		return LocationRef{}
	}
}

// mostSpecificWithin refines best to the most specific matched label the
// catalog places inside it.
func mostSpecificWithin(best LabelEntry, matched []LabelEntry, maps *LocationMaps) LabelEntry {
	for _, e := range matched {
		if e.Level == best.Level {
			break
		}
		if maps.encloses(best, e) {
			return e
		}
	}
	return best
}
