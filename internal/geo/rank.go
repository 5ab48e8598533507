// Package geo orders pantries by great-circle distance from a reference point.
package geo

import (
	"math"
	"sort"

	"github.com/ukydev/pantry-finder/internal/models"
)

// Ranked pairs a pantry with its distance from the ranking origin. Distance is
// +Inf when either coordinate is out of range.
type Ranked struct {
	Pantry   models.Pantry
	Distance float64
}

// Rankable reports whether the entry has a finite distance.
func (r Ranked) Rankable() bool {
	return !math.IsInf(r.Distance, 1)
}

// Distance returns the meters between origin and p, or +Inf if either is unrankable.
func Distance(origin models.Coordinate, p models.Pantry) float64 {
	if !origin.Valid() || !p.HasValidCoordinate() {
		return math.Inf(1)
	}
	return Haversine(origin, p.Coordinate())
}

// RankWithDistances orders pantries by ascending distance from origin. The sort is
// stable: equidistant pantries keep their input order and unrankable pantries follow
// every rankable one in input order. The input slice is not modified.
func RankWithDistances(pantries []models.Pantry, origin models.Coordinate) []Ranked {
	ranked := make([]Ranked, len(pantries))
	for i, p := range pantries {
		ranked[i] = Ranked{Pantry: p, Distance: Distance(origin, p)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})
	return ranked
}

// Rank is RankWithDistances without the distances.
func Rank(pantries []models.Pantry, origin models.Coordinate) []models.Pantry {
	ranked := RankWithDistances(pantries, origin)
	out := make([]models.Pantry, len(ranked))
	for i, r := range ranked {
		out[i] = r.Pantry
	}
	return out
}
