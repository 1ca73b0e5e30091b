// Package memory provides an in-process search index used by local runs
// and tests. Documents are tokenized into an inverted index per field.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ontoflow/ontoflow/search"
)

type indexData struct {
	docs map[string]search.Document

	// tokens maps field name to token to the document ids containing it.
	tokens map[string]map[string]mapset.Set[string]
}

// Indexer is the in-memory search backend. Safe for concurrent use.
type Indexer struct {
	mu      sync.RWMutex
	indices map[string]*indexData
}

// New returns an empty in-memory indexer.
func New() *Indexer {
	return &Indexer{indices: make(map[string]*indexData)}
}

// CreateIndex creates the index if absent.
func (x *Indexer) CreateIndex(_ context.Context, index string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.indices[index]; !ok {
		x.indices[index] = &indexData{
			docs:   make(map[string]search.Document),
			tokens: make(map[string]map[string]mapset.Set[string]),
		}
	}
	return nil
}

// DeleteIndex removes the index; missing indices are a no-op.
func (x *Indexer) DeleteIndex(_ context.Context, index string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.indices, index)
	return nil
}

// IndexDocument upserts one document.
func (x *Indexer) IndexDocument(ctx context.Context, index string, doc search.Document) error {
	return x.IndexDocuments(ctx, index, []search.Document{doc})
}

// IndexDocuments upserts a batch, creating the index on first use.
func (x *Indexer) IndexDocuments(_ context.Context, index string, docs []search.Document) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	data, ok := x.indices[index]
	if !ok {
		data = &indexData{
			docs:   make(map[string]search.Document),
			tokens: make(map[string]map[string]mapset.Set[string]),
		}
		x.indices[index] = data
	}

	for _, doc := range docs {
		id := doc.ID()
		if _, exists := data.docs[id]; exists {
			data.removeTokens(id)
		}
		data.docs[id] = doc
		for field, value := range fieldValues(doc) {
			for _, token := range tokenize(value...) {
				byToken, ok := data.tokens[field]
				if !ok {
					byToken = make(map[string]mapset.Set[string])
					data.tokens[field] = byToken
				}
				ids, ok := byToken[token]
				if !ok {
					ids = mapset.NewThreadUnsafeSet[string]()
					byToken[token] = ids
				}
				ids.Add(id)
			}
		}
	}
	return nil
}

func (d *indexData) removeTokens(id string) {
	for _, byToken := range d.tokens {
		for token, ids := range byToken {
			ids.Remove(id)
			if ids.Cardinality() == 0 {
				delete(byToken, token)
			}
		}
	}
}

// candidates resolves the document ids containing at least one query token
// in the requested fields through the inverted index, so scoring only
// touches documents that can match. Prefix queries scan the token keys;
// exact matches only ever hit single-token values, which the index holds.
func (d *indexData) candidates(queryTokens []string, fields []string) mapset.Set[string] {
	ids := mapset.NewThreadUnsafeSet[string]()
	for field, byToken := range d.tokens {
		if len(fields) > 0 && !slices.Contains(fields, field) {
			continue
		}
		for token, docs := range byToken {
			for _, queryToken := range queryTokens {
				if strings.HasPrefix(token, queryToken) {
					ids = ids.Union(docs)
					break
				}
			}
		}
	}
	return ids
}

// Search evaluates the query contract against the index.
func (x *Indexer) Search(_ context.Context, index string, q search.Query) ([]search.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	data, ok := x.indices[index]
	if !ok {
		return nil, fmt.Errorf("index %s not found", index)
	}

	queryTokens := tokenize(q.Query)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	required := 1
	if q.And {
		required = len(queryTokens)
	} else if q.MinimumShouldMatchPercentage > 0 {
		// Elasticsearch rounds the fractional token count down.
		required = len(queryTokens) * q.MinimumShouldMatchPercentage / 100
		if required < 1 {
			required = 1
		}
	}

	var results []search.Document
	for _, id := range data.candidates(queryTokens, q.Fields).ToSlice() {
		doc := data.docs[id]
		if matchCount(doc, q, queryTokens) >= required {
			results = append(results, doc)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID() < results[j].ID() })
	return results, nil
}

// matchCount returns how many query tokens the document matches across the
// requested fields.
func matchCount(doc search.Document, q search.Query, queryTokens []string) int {
	values := fieldValues(doc)
	fields := q.Fields
	if len(fields) == 0 {
		fields = make([]string, 0, len(values))
		for field := range values {
			fields = append(fields, field)
		}
	}

	matched := 0
	for _, token := range queryTokens {
		for _, field := range fields {
			value, ok := values[field]
			if !ok {
				continue
			}
			if tokenMatches(value, token, q.Exact) {
				matched++
				break
			}
		}
	}
	return matched
}

func tokenMatches(values []string, token string, exact bool) bool {
	for _, value := range values {
		if exact {
			if strings.EqualFold(value, token) {
				return true
			}
			continue
		}
		for _, docToken := range tokenize(value) {
			if docToken == token || strings.HasPrefix(docToken, token) {
				return true
			}
		}
	}
	return false
}

// fieldValues flattens a document into field name to string values.
func fieldValues(doc search.Document) map[string][]string {
	values := map[string][]string{
		"iri":   {doc.IRI},
		"label": {doc.Label},
		"kind":  {doc.Kind},
	}
	for key, value := range doc.Properties {
		switch v := value.(type) {
		case string:
			values[key] = []string{v}
		case []string:
			values[key] = v
		case []any:
			strs := make([]string, 0, len(v))
			for _, item := range v {
				strs = append(strs, fmt.Sprint(item))
			}
			values[key] = strs
		default:
			values[key] = []string{fmt.Sprint(v)}
		}
	}
	return values
}

func tokenize(values ...string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	var tokens []string
	for _, value := range values {
		for _, token := range strings.FieldsFunc(strings.ToLower(value), func(r rune) bool {
			return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
		}) {
			if seen.Add(token) {
				tokens = append(tokens, token)
			}
		}
	}
	return tokens
}
