package query

import (
	"regexp"
	"strings"
	"sync"
)

// boundary matching treats any letter or digit as a word character so that
// "cat" never matches inside "catering" and accented names still work.
var patternCache sync.Map // string -> *regexp.Regexp

func boundaryPattern(phrase string) *regexp.Regexp {
	if re, ok := patternCache.Load(phrase); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?:^|[^\p{L}\p{N}])` + regexp.QuoteMeta(phrase) + `(?:$|[^\p{L}\p{N}])`)
	actual, _ := patternCache.LoadOrStore(phrase, re)
	return actual.(*regexp.Regexp)
}

// containsPhrase reports whether phrase occurs in text as whole words. Both
// arguments must already be normalized.
func containsPhrase(text, phrase string) bool {
	if phrase == "" || len(phrase) > len(text) {
		return false
	}
	if !strings.Contains(text, phrase) {
		return false
	}
	return boundaryPattern(phrase).MatchString(text)
}

// normalizeText lowercases and collapses runs of whitespace.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
