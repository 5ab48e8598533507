package location

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ukydev/pantry-finder/internal/models"
)

// Fix is the JSON wire form of an Event, used by device publishers and HTTP clients.
// An omitted authorization decodes to Unreported.
type Fix struct {
	Authorization  string   `json:"authorization,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	AccuracyMeters *float64 `json:"accuracy_meters,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// Event converts the fix. Latitude and longitude must be given together.
func (f Fix) Event() (Event, error) {
	evt := Event{Authorization: Unreported, AccuracyMeters: f.AccuracyMeters}
	if f.Authorization != "" {
		auth, err := ParseAuthorization(f.Authorization)
		if err != nil {
			return Event{}, err
		}
		evt.Authorization = auth
	}

	switch {
	case f.Latitude != nil && f.Longitude != nil:
		evt.Coordinate = &models.Coordinate{Latitude: *f.Latitude, Longitude: *f.Longitude}
	case f.Latitude != nil || f.Longitude != nil:
		return Event{}, fmt.Errorf("latitude and longitude must be given together")
	}

	if f.Error != "" {
		evt.Err = errors.New(f.Error)
	}
	return evt, nil
}

// NewFix builds the wire form of evt. Trusted is not transmitted.
func NewFix(evt Event) Fix {
	f := Fix{AccuracyMeters: evt.AccuracyMeters}
	if evt.Authorization != Unreported {
		f.Authorization = evt.Authorization.String()
	}
	if evt.Coordinate != nil {
		lat, lon := evt.Coordinate.Latitude, evt.Coordinate.Longitude
		f.Latitude = &lat
		f.Longitude = &lon
	}
	if evt.Err != nil {
		f.Error = evt.Err.Error()
	}
	return f
}

// DecodeFix parses a JSON fix into an Event.
func DecodeFix(data []byte) (Event, error) {
	var f Fix
	if err := json.Unmarshal(data, &f); err != nil {
		return Event{}, fmt.Errorf("decode fix: %w", err)
	}
	return f.Event()
}
