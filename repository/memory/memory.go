// Package memory implements the repository interfaces in process memory. Handler and router tests use it
// in place of MongoDB; it follows the same sentinel errors and conditional-update semantics.
package memory

import (
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// patch applies a $set/$unset pair to doc by round-tripping it through BSON, so field names follow the bson tags.
func patch[T any](doc *T, set bson.M, unset []string) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	for k, v := range set {
		m[k] = v
	}
	for _, k := range unset {
		delete(m, k)
	}
	raw, err = bson.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal patched: %w", err)
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("unmarshal patched: %w", err)
	}
	*doc = out
	return nil
}

// clone returns an independent copy so callers cannot mutate stored documents.
func clone[T any](doc T) T {
	_ = patch(&doc, nil, nil)
	return doc
}

func page[T any](items []T, p, limit int64) []T {
	if p < 1 {
		p = 1
	}
	if limit < 1 {
		limit = 10
	}
	start := (p - 1) * limit
	if start >= int64(len(items)) {
		return []T{}
	}
	end := start + limit
	if end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[start:end]
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func inRange(date, from, to string) bool {
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

func sortBy[T any](items []T, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}
