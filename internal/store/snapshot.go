package store

import (
	"github.com/ukydev/pantry-finder/internal/location"
	"github.com/ukydev/pantry-finder/internal/models"
)

// Snapshot is a consistent, fully derived view of a store. Its slices are never
// modified after publication and must not be modified by readers.
type Snapshot struct {
	Version   uint64
	LoadState LoadState
	// Err is the most recent fetch failure; cleared by the next successful fetch.
	Err error
	// LocationErr is the most recent provider-reported location failure.
	LocationErr error

	Derived []models.Pantry
	// Distances holds meters aligned with Derived when EffectiveSort is Nearest,
	// +Inf for unrankable pantries. Nil otherwise.
	Distances []float64

	SortMode         SortMode
	EffectiveSort    SortMode
	NearestAvailable bool
	SearchText       string

	Location        *models.Coordinate
	LocationTrusted bool
	Authorization   location.Authorization

	Selected *models.Pantry
	Total    int
}

// DistanceAt returns the ranked distance of Derived[i], if known.
func (s Snapshot) DistanceAt(i int) (float64, bool) {
	if i < 0 || i >= len(s.Distances) {
		return 0, false
	}
	d := s.Distances[i]
	return d, distanceOK(d)
}
