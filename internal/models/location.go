package models

// Coordinate represents a geographical location with latitude and longitude in degrees.
type Coordinate struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Valid reports whether the coordinate lies within [-90, 90] x [-180, 180].
// NaN values are never valid.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Destination is the coordinate/label pair handed to an external navigation surface.
type Destination struct {
	Coordinate Coordinate `json:"coordinate"`
	Label      string     `json:"label"`
}
