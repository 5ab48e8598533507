package present

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/pantry-finder/internal/location"
	"github.com/ukydev/pantry-finder/internal/models"
	"github.com/ukydev/pantry-finder/internal/store"
)

var (
	urban = models.Pantry{
		Organizations: "Urban Ministries",
		Address:       "410 Liberty St",
		City:          "Durham",
		Days:          "Mon-Fri",
		Hours:         "9am-12pm",
		Phone:         "(919) 682-0538",
		Prereq:        "Photo ID",
		Info:          "Walk-ins welcome",
		Latitude:      35.9940,
		Longitude:     -78.8986,
	}
	noCoords = models.Pantry{Organizations: "Mobile Pantry", Days: "Sat", Hours: "noon", Latitude: 91}
)

func TestList(t *testing.T) {
	selected := urban
	snap := store.Snapshot{
		Version:       4,
		LoadState:     store.Loaded,
		Derived:       []models.Pantry{urban, noCoords},
		Distances:     []float64{120.5, math.Inf(1)},
		SortMode:      store.Nearest,
		EffectiveSort: store.Nearest,
		Authorization: location.AuthorizedWhenInUse,
		Selected:      &selected,
		Total:         3,
		Err:           errors.New("stale"),
	}

	v := List(snap)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, "Urban Ministries", v.Rows[0].Name)
	assert.Equal(t, "Mon-Fri, 9am-12pm", v.Rows[0].Availability)
	require.NotNil(t, v.Rows[0].DistanceMeters)
	assert.Equal(t, 120.5, *v.Rows[0].DistanceMeters)
	assert.True(t, v.Rows[0].Selected)
	assert.Nil(t, v.Rows[1].DistanceMeters)
	assert.False(t, v.Rows[1].Selected)

	assert.Equal(t, "loaded", v.LoadState)
	assert.Equal(t, "nearest", v.EffectiveSort)
	assert.Equal(t, "authorizedWhenInUse", v.Authorization)
	assert.Equal(t, "stale", v.Error)
	assert.Empty(t, v.LocationError)
	assert.Equal(t, 3, v.Total)
}

func TestList_Empty(t *testing.T) {
	v := List(store.Snapshot{Derived: []models.Pantry{}})
	assert.NotNil(t, v.Rows)
	assert.Empty(t, v.Rows)
	assert.Equal(t, "empty", v.LoadState)
}

func TestMap(t *testing.T) {
	t.Run("default center without trusted location", func(t *testing.T) {
		here := models.Coordinate{Latitude: 36.1, Longitude: -78.7}
		v := Map(store.Snapshot{Derived: []models.Pantry{urban, noCoords}, Location: &here})

		assert.Equal(t, DefaultCenter, v.Center)
		assert.False(t, v.UserLocated)
		require.Len(t, v.Annotations, 1)
		assert.Equal(t, "Urban Ministries", v.Annotations[0].Title)
		assert.Equal(t, "Mon-Fri, 9am-12pm", v.Annotations[0].Subtitle)
		assert.Nil(t, v.Selected)
	})

	t.Run("centered on trusted location with selection", func(t *testing.T) {
		here := models.Coordinate{Latitude: 36.1, Longitude: -78.7}
		selected := urban
		v := Map(store.Snapshot{
			Derived:         []models.Pantry{urban},
			Location:        &here,
			LocationTrusted: true,
			Selected:        &selected,
		})

		assert.Equal(t, here, v.Center)
		assert.True(t, v.UserLocated)
		require.NotNil(t, v.Selected)
		assert.Equal(t, urban.ID(), v.Selected.ID)
		assert.True(t, v.Annotations[0].Selected)
	})
}

func TestAnnotate(t *testing.T) {
	_, ok := Annotate(noCoords)
	assert.False(t, ok)

	a, ok := Annotate(urban)
	require.True(t, ok)
	assert.Equal(t, urban.Coordinate(), a.Coordinate)
	assert.Equal(t, urban.ID(), a.ID)
}

func TestDescribe(t *testing.T) {
	d := Describe(urban)
	assert.Equal(t, "Mon-Fri\n9am-12pm", d.Availability)
	assert.Equal(t, "tel:9196820538", d.DialURI)
	assert.Equal(t, "Photo ID", d.Prereq)
	require.NotNil(t, d.Destination)
	assert.Equal(t, models.Destination{Coordinate: urban.Coordinate(), Label: "Urban Ministries"}, *d.Destination)
}

func TestDescribe_InvalidCoordinate(t *testing.T) {
	nan := urban
	nan.Latitude = math.NaN()

	for _, p := range []models.Pantry{noCoords, nan} {
		d := Describe(p)
		assert.Nil(t, d.Destination)

		data, err := json.Marshal(d)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "destination")
	}
}

func TestDialURI(t *testing.T) {
	tests := []struct {
		phone string
		want  string
	}{
		{"919-682-0538", "tel:9196820538"},
		{" +1 (919) 682 0538 ", "tel:+19196820538"},
		{"call 1+2", "tel:12"},
		{"", ""},
		{"+", ""},
		{"n/a", ""},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, DialURI(tt.phone))
		})
	}
}

func TestNavigation(t *testing.T) {
	_, err := Navigation(store.Snapshot{})
	assert.ErrorIs(t, err, ErrNoSelection)

	selected := urban
	dest, err := Navigation(store.Snapshot{Selected: &selected})
	require.NoError(t, err)
	assert.Equal(t, "Urban Ministries", dest.Label)
	assert.Equal(t, urban.Coordinate(), dest.Coordinate)

	nan := urban
	nan.Longitude = math.Inf(-1)
	_, err = Navigation(store.Snapshot{Selected: &nan})
	assert.ErrorIs(t, err, ErrNoDestination)
}
