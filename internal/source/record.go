package source

import (
	"encoding/json"
	"fmt"

	"github.com/ukydev/pantry-finder/internal/models"
)

// Record is the wire form of a pantry. Every field is required; pointers let the
// decoder tell a missing field from a zero value.
type Record struct {
	Address       *string  `json:"address" bson:"address"`
	City          *string  `json:"city" bson:"city"`
	Days          *string  `json:"days" bson:"days"`
	Hours         *string  `json:"hours" bson:"hours"`
	Info          *string  `json:"info" bson:"info"`
	Organizations *string  `json:"organizations" bson:"organizations"`
	Phone         *string  `json:"phone" bson:"phone"`
	Prereq        *string  `json:"prereq" bson:"prereq"`
	Latitude      *float64 `json:"latitude" bson:"latitude"`
	Longitude     *float64 `json:"longitude" bson:"longitude"`
}

// Pantry converts the record, failing on the first missing field. Coordinates are
// not range-checked.
func (r Record) Pantry() (models.Pantry, error) {
	strs := []struct {
		name string
		val  *string
	}{
		{"address", r.Address},
		{"city", r.City},
		{"days", r.Days},
		{"hours", r.Hours},
		{"info", r.Info},
		{"organizations", r.Organizations},
		{"phone", r.Phone},
		{"prereq", r.Prereq},
	}
	for _, s := range strs {
		if s.val == nil {
			return models.Pantry{}, fmt.Errorf("missing field %q", s.name)
		}
	}
	if r.Latitude == nil {
		return models.Pantry{}, fmt.Errorf("missing field %q", "latitude")
	}
	if r.Longitude == nil {
		return models.Pantry{}, fmt.Errorf("missing field %q", "longitude")
	}

	return models.Pantry{
		Address:       *r.Address,
		City:          *r.City,
		Days:          *r.Days,
		Hours:         *r.Hours,
		Info:          *r.Info,
		Organizations: *r.Organizations,
		Phone:         *r.Phone,
		Prereq:        *r.Prereq,
		Latitude:      *r.Latitude,
		Longitude:     *r.Longitude,
	}, nil
}

type feedDocument struct {
	Pantries *[]Record `json:"pantries"`
}

// Decode parses a feed document of the form {"pantries": [...]}. Any failure is
// returned as a decode FetchError.
func Decode(data []byte) ([]models.Pantry, error) {
	var doc feedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, DecodeError(err)
	}
	if doc.Pantries == nil {
		return nil, DecodeError(fmt.Errorf("missing field %q", "pantries"))
	}

	pantries := make([]models.Pantry, 0, len(*doc.Pantries))
	for i, rec := range *doc.Pantries {
		p, err := rec.Pantry()
		if err != nil {
			return nil, DecodeError(fmt.Errorf("pantry %d: %w", i, err))
		}
		pantries = append(pantries, p)
	}
	return pantries, nil
}
