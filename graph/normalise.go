package graph

import (
	"regexp"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// multiValuedKeys are canonical property keys whose free-text values are
// split on comma-then-whitespace into a set of unique tokens.
var multiValuedKeys = map[string]bool{
	"synonym":      true,
	"relatedTerm":  true,
	"example":      true,
	"businessArea": true,
	"subdomain":    true,
}

// tokenSplitKeys are multi-valued keys whose tokens are additionally split
// on internal whitespace.
var tokenSplitKeys = map[string]bool{
	"businessArea": true,
	"subdomain":    true,
}

var commaSplit = regexp.MustCompile(`,\s*`)

// NormaliseValue applies the property-specific value rules for the given
// canonical key. Multi-valued properties come back as a sorted slice of
// unique tokens so that faceting behaves consistently regardless of source
// formatting; everything else passes through unchanged.
func NormaliseValue(key string, value string) any {
	if !multiValuedKeys[key] {
		return value
	}

	tokens := mapset.NewThreadUnsafeSet[string]()
	for _, part := range commaSplit.Split(value, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if tokenSplitKeys[key] {
			for _, token := range strings.Fields(part) {
				tokens.Add(token)
			}
			continue
		}
		tokens.Add(part)
	}

	sorted := tokens.ToSlice()
	sort.Strings(sorted)
	return sorted
}

// IsMultiValued reports whether the canonical key is normalised into a set.
func IsMultiValued(key string) bool {
	return multiValuedKeys[key]
}
