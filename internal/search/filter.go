// Package search narrows a pantry collection by free text.
package search

import (
	"strings"

	"github.com/ukydev/pantry-finder/internal/models"
)

// Normalize lower-cases a query. A blank query normalizes to "", meaning "no filter";
// any other query keeps its whitespace.
func Normalize(query string) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}
	return strings.ToLower(query)
}

// Match reports whether a normalized, non-empty query is a substring of the pantry's
// address, city or organizations, ignoring case.
func Match(p models.Pantry, normalized string) bool {
	return strings.Contains(strings.ToLower(p.Address), normalized) ||
		strings.Contains(strings.ToLower(p.City), normalized) ||
		strings.Contains(strings.ToLower(p.Organizations), normalized)
}

// Filter returns the pantries matching query in input order. A blank query returns
// pantries itself.
func Filter(pantries []models.Pantry, query string) []models.Pantry {
	q := Normalize(query)
	if q == "" {
		return pantries
	}
	out := make([]models.Pantry, 0, len(pantries))
	for _, p := range pantries {
		if Match(p, q) {
			out = append(out, p)
		}
	}
	return out
}
