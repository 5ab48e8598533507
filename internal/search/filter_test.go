package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ukydev/pantry-finder/internal/models"
)

var pantries = []models.Pantry{
	{Organizations: "Food Bank A", Address: "1 Main St", City: "Durham"},
	{Organizations: "Pantry B", Address: "2 Oak Ave", City: "Raleigh"},
	{Organizations: "Durham Rescue Mission", Address: "1201 E Main St", City: "Durham"},
	{Organizations: "Café Ñandú", Address: "9 Elm", City: "Cary, NC"},
	{Organizations: "Hope Kitchen", Address: "77 Church St", City: "Chapel Hill", Info: "durham residents only"},
}

func names(ps []models.Pantry) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Organizations
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{"city match", "raleigh", []string{"Pantry B"}},
		{"organizations or city", "durham", []string{"Food Bank A", "Durham Rescue Mission"}},
		{"address match", "main st", []string{"Food Bank A", "Durham Rescue Mission"}},
		{"upper case query", "OAK", []string{"Pantry B"}},
		{"inner whitespace is significant", "main  st", []string{}},
		{"trailing whitespace is significant", "pantry ", []string{"Pantry B"}},
		{"trailing whitespace past the end", "kitchen ", []string{}},
		{"leading whitespace matches inside a field", " rescue", []string{"Durham Rescue Mission"}},
		{"leading whitespace past the start", " durham", []string{}},
		{"unicode folding", "ÑANDÚ", []string{"Café Ñandú"}},
		{"info is not searched", "residents", []string{}},
		{"no match", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, names(Filter(pantries, tt.query)))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "", Normalize(" \t "))
	assert.Equal(t, "main ", Normalize("MAIN "))
	assert.Equal(t, " oak", Normalize(" Oak"))
}

func TestFilter_Identity(t *testing.T) {
	for _, q := range []string{"", " ", "\t\n"} {
		assert.Equal(t, pantries, Filter(pantries, q))
	}
	assert.Nil(t, Filter(nil, ""))
}

func TestFilter_CaseInsensitive(t *testing.T) {
	assert.Equal(t, Filter(pantries, "nc"), Filter(pantries, "NC"))
	assert.Equal(t, []string{"Café Ñandú"}, names(Filter(pantries, "NC")))
}

func TestFilter_PreservesOrder(t *testing.T) {
	reversed := make([]models.Pantry, len(pantries))
	for i, p := range pantries {
		reversed[len(pantries)-1-i] = p
	}

	assert.Equal(t, []string{"Durham Rescue Mission", "Food Bank A"}, names(Filter(reversed, "durham")))
}
