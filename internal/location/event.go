// Package location turns platform location-provider updates into trust-graded events.
package location

import (
	"fmt"

	"github.com/ukydev/pantry-finder/internal/models"
)

// Authorization mirrors the platform location permission states.
type Authorization int

// Unreported marks an event that carries no authorization; the receiver keeps the
// state it already holds.
const Unreported Authorization = -1

const (
	NotDetermined Authorization = iota
	Denied
	Restricted
	AuthorizedWhenInUse
	AuthorizedAlways
)

var authorizationNames = map[Authorization]string{
	NotDetermined:       "notDetermined",
	Denied:              "denied",
	Restricted:          "restricted",
	AuthorizedWhenInUse: "authorizedWhenInUse",
	AuthorizedAlways:    "authorizedAlways",
}

func (a Authorization) String() string {
	if name, ok := authorizationNames[a]; ok {
		return name
	}
	if a == Unreported {
		return "unreported"
	}
	return fmt.Sprintf("Authorization(%d)", int(a))
}

// Allows reports whether coordinates may be used under this authorization.
func (a Authorization) Allows() bool {
	return a == AuthorizedWhenInUse || a == AuthorizedAlways
}

// Revoked reports whether the state withdraws location access.
func (a Authorization) Revoked() bool {
	return a == Denied || a == Restricted
}

// ParseAuthorization parses the names produced by String.
func ParseAuthorization(s string) (Authorization, error) {
	for a, name := range authorizationNames {
		if name == s {
			return a, nil
		}
	}
	return NotDetermined, fmt.Errorf("unknown authorization %q", s)
}

func (a Authorization) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Authorization) UnmarshalText(text []byte) error {
	parsed, err := ParseAuthorization(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Event is one provider update. Coordinate and AccuracyMeters are nil when the provider
// did not report them; Err carries a provider-reported failure. Authorization is
// Unreported when the update did not say. Trusted is assigned by the Tracker.
type Event struct {
	Authorization  Authorization
	Coordinate     *models.Coordinate
	AccuracyMeters *float64
	Err            error
	Trusted        bool
}
