package store

import (
	"math"
	"sort"
	"strings"

	"github.com/ukydev/pantry-finder/internal/geo"
	"github.com/ukydev/pantry-finder/internal/location"
	"github.com/ukydev/pantry-finder/internal/models"
	"github.com/ukydev/pantry-finder/internal/search"
)

// inputs are the values the derived view is a function of.
type inputs struct {
	canonical       []models.Pantry
	location        *models.Coordinate
	locationTrusted bool
	authorization   location.Authorization
	searchText      string
	sortMode        SortMode
}

// view is the result of derive.
type view struct {
	derived   []models.Pantry
	distances []float64
	effective SortMode
}

// nearestAvailable reports whether distance ranking can be honored.
func (in inputs) nearestAvailable() bool {
	return !in.authorization.Revoked() && in.location != nil && in.locationTrusted
}

// derive computes the presented collection: ranked by distance when nearest is both
// requested and available, alphabetical otherwise, then restricted to search matches.
// It never mutates canonical and always returns fresh slices.
func derive(in inputs) view {
	if in.canonical == nil {
		panic("store: derive called with nil canonical collection")
	}

	var (
		ordered   []models.Pantry
		distances []float64
		effective = Alphabetical
	)
	if in.sortMode == Nearest && in.nearestAvailable() {
		ranked := geo.RankWithDistances(in.canonical, *in.location)
		ordered = make([]models.Pantry, len(ranked))
		distances = make([]float64, len(ranked))
		for i, r := range ranked {
			ordered[i] = r.Pantry
			distances[i] = r.Distance
		}
		effective = Nearest
	} else {
		ordered = alphabetical(in.canonical)
	}

	q := search.Normalize(in.searchText)
	if q == "" {
		return view{derived: ordered, distances: distances, effective: effective}
	}

	out := view{derived: make([]models.Pantry, 0, len(ordered)), effective: effective}
	if distances != nil {
		out.distances = make([]float64, 0, len(ordered))
	}
	for i, p := range ordered {
		if !search.Match(p, q) {
			continue
		}
		out.derived = append(out.derived, p)
		if distances != nil {
			out.distances = append(out.distances, distances[i])
		}
	}
	return out
}

// alphabetical orders by organization name ignoring case; ties keep input order.
func alphabetical(pantries []models.Pantry) []models.Pantry {
	out := make([]models.Pantry, len(pantries))
	copy(out, pantries)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Organizations) < strings.ToLower(out[j].Organizations)
	})
	return out
}

// distanceOK reports whether d is a finite distance.
func distanceOK(d float64) bool {
	return !math.IsInf(d, 0) && !math.IsNaN(d)
}
