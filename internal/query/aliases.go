package query

import (
	"sort"
	"strings"
)

// LocationAlias maps a lowercase phrase to a canonical location.
type LocationAlias struct {
	Key    string      `json:"key"`
	Target LocationRef `json:"target"`
}

// builtinAliases is never modified at runtime.
var builtinAliases = []LocationAlias{
	{Key: "sa", Target: LocationRef{Country: "South Africa"}},
	{Key: "rsa", Target: LocationRef{Country: "South Africa"}},
	{Key: "za", Target: LocationRef{Country: "South Africa"}},
	{Key: "mzansi", Target: LocationRef{Country: "South Africa"}},
	{Key: "ct", Target: LocationRef{City: "Cape Town"}},
	{Key: "cpt", Target: LocationRef{City: "Cape Town"}},
	{Key: "mother city", Target: LocationRef{City: "Cape Town"}},
	{Key: "jozi", Target: LocationRef{City: "Johannesburg"}},
	{Key: "joburg", Target: LocationRef{City: "Johannesburg"}},
	{Key: "jhb", Target: LocationRef{City: "Johannesburg"}},
	{Key: "egoli", Target: LocationRef{City: "Johannesburg"}},
	{Key: "dbn", Target: LocationRef{City: "Durban"}},
	{Key: "pta", Target: LocationRef{City: "Pretoria"}},
	{Key: "pe", Target: LocationRef{City: "Gqeberha"}},
	{Key: "port elizabeth", Target: LocationRef{City: "Gqeberha"}},
	{Key: "kzn", Target: LocationRef{Province: "KwaZulu-Natal"}},
	{Key: "wc", Target: LocationRef{Province: "Western Cape"}},
	{Key: "ec", Target: LocationRef{Province: "Eastern Cape"}},
	{Key: "gp", Target: LocationRef{Province: "Gauteng"}},
	{Key: "kruger", Target: LocationRef{Area: "Kruger National Park"}},
	{Key: "kruger park", Target: LocationRef{Area: "Kruger National Park"}},
	{Key: "knp", Target: LocationRef{Area: "Kruger National Park"}},
	{Key: "garden route", Target: LocationRef{Area: "Garden Route"}},
	{Key: "the waterfront", Target: LocationRef{Area: "V&A Waterfront"}},
	{Key: "vic falls", Target: LocationRef{City: "Victoria Falls"}},
	{Key: "the okavango", Target: LocationRef{Area: "Okavango Delta"}},
	{Key: "zim", Target: LocationRef{Country: "Zimbabwe"}},
	{Key: "uk", Target: LocationRef{Country: "United Kingdom"}},
	{Key: "us", Target: LocationRef{Country: "United States"}},
	{Key: "usa", Target: LocationRef{Country: "United States"}},
}

// BuiltinAliases returns a copy of the built-in alias table.
func BuiltinAliases() []LocationAlias {
	out := make([]LocationAlias, len(builtinAliases))
	copy(out, builtinAliases)
	return out
}

// NormalizeAliasKey lowercases, trims and collapses whitespace.
func NormalizeAliasKey(key string) string {
	return normalizeText(key)
}

// AliasMap is a merged alias table keyed by normalized phrase.
type AliasMap map[string]LocationRef

// MergeAliases overlays custom on top of builtin. Later entries win, so a
// custom alias always replaces a built-in one with the same key. Entries with
// an empty key or target are dropped.
func MergeAliases(builtin, custom []LocationAlias) AliasMap {
	m := make(AliasMap, len(builtin)+len(custom))
	for _, list := range [][]LocationAlias{builtin, custom} {
		for _, a := range list {
			k := NormalizeAliasKey(a.Key)
			t := a.Target.Normalize()
			if k == "" || t.IsEmpty() {
				continue
			}
			m[k] = t
		}
	}
	return m
}

// keysLongestFirst orders keys by length, then alphabetically, so lookups
// are deterministic.
func (m AliasMap) keysLongestFirst() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// sanitizeAliases normalizes keys and targets and drops invalid or duplicate
// entries. A repeated key keeps its first position and its last target.
func sanitizeAliases(list []LocationAlias) []LocationAlias {
	last := make(map[string]int, len(list))
	clean := make([]LocationAlias, 0, len(list))
	for _, a := range list {
		k := NormalizeAliasKey(a.Key)
		t := a.Target.Normalize()
		if k == "" || t.IsEmpty() {
			continue
		}
		if idx, ok := last[k]; ok {
			clean[idx].Target = t
			continue
		}
		last[k] = len(clean)
		clean = append(clean, LocationAlias{Key: k, Target: t})
	}
	return clean
}

func isBuiltinKey(key string) bool {
	k := NormalizeAliasKey(key)
	for _, a := range builtinAliases {
		if strings.EqualFold(a.Key, k) {
			return true
		}
	}
	return false
}
