// Package present projects store snapshots into the shapes the list, map and detail
// surfaces render. Projections are pure functions of a snapshot.
package present

import (
	"errors"
	"strings"

	"github.com/ukydev/pantry-finder/internal/models"
	"github.com/ukydev/pantry-finder/internal/store"
)

var (
	// ErrNoSelection is returned by Navigation when no pantry is selected.
	ErrNoSelection = errors.New("no pantry selected")
	// ErrNoDestination is returned by Navigation when the selected pantry cannot be placed.
	ErrNoDestination = errors.New("selected pantry has no valid coordinate")
)

// DefaultCenter is the map center used until a trusted location is known.
var DefaultCenter = models.Coordinate{Latitude: 35.996543666002445, Longitude: -78.90108037808307}

// ListRow is one row of the pantry list.
type ListRow struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Availability   string   `json:"availability"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
	Selected       bool     `json:"selected"`
}

// Annotation is one map pin.
type Annotation struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Subtitle   string            `json:"subtitle"`
	Coordinate models.Coordinate `json:"coordinate"`
	Selected   bool              `json:"selected"`
}

// Detail is the full card for one pantry.
type Detail struct {
	ID            string              `json:"id"`
	Organizations string              `json:"organizations"`
	Phone         string              `json:"phone"`
	DialURI       string              `json:"dial_uri,omitempty"`
	Address       string              `json:"address"`
	City          string              `json:"city"`
	Availability  string              `json:"availability"`
	Prereq        string              `json:"prereq"`
	Info          string              `json:"info"`
	Destination   *models.Destination `json:"destination,omitempty"`
}

// ListView is the list surface state.
type ListView struct {
	Version          uint64    `json:"version"`
	LoadState        string    `json:"load_state"`
	Error            string    `json:"error,omitempty"`
	LocationError    string    `json:"location_error,omitempty"`
	SearchText       string    `json:"search_text"`
	SortMode         string    `json:"sort_mode"`
	EffectiveSort    string    `json:"effective_sort"`
	NearestAvailable bool      `json:"nearest_available"`
	Authorization    string    `json:"authorization"`
	Total            int       `json:"total"`
	Rows             []ListRow `json:"rows"`
}

// MapView is the map surface state.
type MapView struct {
	Version     uint64            `json:"version"`
	LoadState   string            `json:"load_state"`
	Center      models.Coordinate `json:"center"`
	UserLocated bool              `json:"user_located"`
	Annotations []Annotation      `json:"annotations"`
	Selected    *Annotation       `json:"selected,omitempty"`
}

// List builds the list view of snap. Rows follow the derived order.
func List(snap store.Snapshot) ListView {
	selectedID := selectedID(snap)
	rows := make([]ListRow, len(snap.Derived))
	for i, p := range snap.Derived {
		id := p.ID()
		rows[i] = ListRow{
			ID:           id,
			Name:         p.Organizations,
			Availability: p.Availability(),
			Selected:     id == selectedID,
		}
		if d, ok := snap.DistanceAt(i); ok {
			rows[i].DistanceMeters = &d
		}
	}
	return ListView{
		Version:          snap.Version,
		LoadState:        snap.LoadState.String(),
		Error:            errString(snap.Err),
		LocationError:    errString(snap.LocationErr),
		SearchText:       snap.SearchText,
		SortMode:         snap.SortMode.String(),
		EffectiveSort:    snap.EffectiveSort.String(),
		NearestAvailable: snap.NearestAvailable,
		Authorization:    snap.Authorization.String(),
		Total:            snap.Total,
		Rows:             rows,
	}
}

// Map builds the map view of snap. Pantries without a valid coordinate are not placed.
func Map(snap store.Snapshot) MapView {
	selectedID := selectedID(snap)
	v := MapView{
		Version:     snap.Version,
		LoadState:   snap.LoadState.String(),
		Center:      Center(snap),
		UserLocated: snap.Location != nil && snap.LocationTrusted,
		Annotations: make([]Annotation, 0, len(snap.Derived)),
	}
	for _, p := range snap.Derived {
		a, ok := Annotate(p)
		if !ok {
			continue
		}
		if a.ID == selectedID {
			a.Selected = true
			sel := a
			v.Selected = &sel
		}
		v.Annotations = append(v.Annotations, a)
	}
	return v
}

// Center is the trusted user location, or DefaultCenter.
func Center(snap store.Snapshot) models.Coordinate {
	if snap.Location != nil && snap.LocationTrusted {
		return *snap.Location
	}
	return DefaultCenter
}

// Annotate returns the map pin for p, or false if p cannot be placed.
func Annotate(p models.Pantry) (Annotation, bool) {
	if !p.HasValidCoordinate() {
		return Annotation{}, false
	}
	return Annotation{
		ID:         p.ID(),
		Title:      p.Organizations,
		Subtitle:   p.Availability(),
		Coordinate: p.Coordinate(),
	}, true
}

// Describe builds the detail card for p. Destination is nil when p has no valid
// coordinate.
func Describe(p models.Pantry) Detail {
	d := Detail{
		ID:            p.ID(),
		Organizations: p.Organizations,
		Phone:         p.Phone,
		DialURI:       DialURI(p.Phone),
		Address:       p.Address,
		City:          p.City,
		Availability:  p.Days + "\n" + p.Hours,
		Prereq:        p.Prereq,
		Info:          p.Info,
	}
	if p.HasValidCoordinate() {
		dest := p.Destination()
		d.Destination = &dest
	}
	return d
}

// DialURI converts a free-form phone number into a tel: URI, keeping digits and a
// leading plus. It returns "" when phone has no digits.
func DialURI(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	digits := strings.TrimPrefix(b.String(), "+")
	if digits == "" {
		return ""
	}
	return "tel:" + b.String()
}

// Navigation returns the hand-off destination of the selected pantry.
func Navigation(snap store.Snapshot) (models.Destination, error) {
	if snap.Selected == nil {
		return models.Destination{}, ErrNoSelection
	}
	if !snap.Selected.HasValidCoordinate() {
		return models.Destination{}, ErrNoDestination
	}
	return snap.Selected.Destination(), nil
}

func selectedID(snap store.Snapshot) string {
	if snap.Selected == nil {
		return ""
	}
	return snap.Selected.ID()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
