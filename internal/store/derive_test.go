package store

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/pantry-finder/internal/location"
	"github.com/ukydev/pantry-finder/internal/models"
)

func TestDerive_Idempotent(t *testing.T) {
	here := models.Coordinate{Latitude: 36.0, Longitude: -78.9}
	in := inputs{
		canonical:       []models.Pantry{lost, pantryB, foodBankA, aardvark},
		location:        &here,
		locationTrusted: true,
		authorization:   location.AuthorizedAlways,
		searchText:      "a",
		sortMode:        Nearest,
	}
	first := derive(in)
	second := derive(in)
	assert.Equal(t, first, second)
	assert.True(t, math.IsInf(first.distances[len(first.distances)-1], 1))
}

func TestDerive_DoesNotMutateCanonical(t *testing.T) {
	canonical := []models.Pantry{pantryB, aardvark, foodBankA}
	snapshot := append([]models.Pantry(nil), canonical...)

	v := derive(inputs{canonical: canonical})
	assert.Equal(t, snapshot, canonical)
	assert.Equal(t, []string{"aardvark Outreach", "Food Bank A", "Pantry B"}, orgs(v.derived))

	v.derived[0] = models.Pantry{}
	assert.Equal(t, snapshot, canonical, "derived slice must not alias canonical")
}

func TestDerive_AlphabeticalIsStable(t *testing.T) {
	first := models.Pantry{Organizations: "Same", City: "One"}
	second := models.Pantry{Organizations: "same", City: "Two"}
	v := derive(inputs{canonical: []models.Pantry{first, second}})
	assert.Equal(t, []models.Pantry{first, second}, v.derived)
}

func TestDerive_NearestRequiresTrustedLocation(t *testing.T) {
	here := models.Coordinate{Latitude: 35.8, Longitude: -78.6}
	base := inputs{
		canonical:     []models.Pantry{foodBankA, pantryB},
		location:      &here,
		authorization: location.AuthorizedWhenInUse,
		sortMode:      Nearest,
	}

	v := derive(base)
	assert.Equal(t, Alphabetical, v.effective)
	assert.Nil(t, v.distances)

	base.locationTrusted = true
	v = derive(base)
	assert.Equal(t, Nearest, v.effective)
	assert.Equal(t, []string{"Pantry B", "Food Bank A"}, orgs(v.derived))

	base.authorization = location.Restricted
	v = derive(base)
	assert.Equal(t, Alphabetical, v.effective)
}

func TestDerive_EmptyCanonical(t *testing.T) {
	v := derive(inputs{canonical: []models.Pantry{}, searchText: "durham"})
	require.NotNil(t, v.derived)
	assert.Empty(t, v.derived)
}

func TestDerive_NilCanonicalPanics(t *testing.T) {
	assert.Panics(t, func() { derive(inputs{}) })
}
