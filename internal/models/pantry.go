package models

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"golang.org/x/crypto/blake2b"
)

// idSize is the digest length in bytes used for structural pantry identity.
const idSize = 16

// Pantry represents a food-assistance location as published by the pantry feed.
// The feed supplies no stable key; see ID.
type Pantry struct {
	Address       string  `json:"address" bson:"address"`
	City          string  `json:"city" bson:"city"`
	Days          string  `json:"days" bson:"days"`
	Hours         string  `json:"hours" bson:"hours"`
	Info          string  `json:"info" bson:"info"`
	Organizations string  `json:"organizations" bson:"organizations"`
	Phone         string  `json:"phone" bson:"phone"`
	Prereq        string  `json:"prereq" bson:"prereq"`
	Latitude      float64 `json:"latitude" bson:"latitude"`
	Longitude     float64 `json:"longitude" bson:"longitude"`
}

// Coordinate returns the pantry location.
func (p Pantry) Coordinate() Coordinate {
	return Coordinate{Latitude: p.Latitude, Longitude: p.Longitude}
}

// HasValidCoordinate reports whether the pantry can be placed on a map or ranked by distance.
func (p Pantry) HasValidCoordinate() bool {
	return p.Coordinate().Valid()
}

// Availability is the "days, hours" line shown in lists and map callouts.
func (p Pantry) Availability() string {
	return p.Days + ", " + p.Hours
}

// Destination returns the navigation hand-off pair for the pantry.
func (p Pantry) Destination() Destination {
	return Destination{Coordinate: p.Coordinate(), Label: p.Organizations}
}

// ID derives a structural identity from every field of the pantry. Two records with
// identical contents share an ID; any field change yields a different one.
func (p Pantry) ID() string {
	h, err := blake2b.New(idSize, nil)
	if err != nil {
		// Only reachable with an invalid size or key.
		panic(err)
	}
	var buf []byte
	for _, field := range []string{
		p.Address, p.City, p.Days, p.Hours, p.Info,
		p.Organizations, p.Phone, p.Prereq,
	} {
		buf = binary.BigEndian.AppendUint64(buf[:0], uint64(len(field)))
		h.Write(buf)
		h.Write([]byte(field))
	}
	buf = binary.BigEndian.AppendUint64(buf[:0], math.Float64bits(p.Latitude))
	buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(p.Longitude))
	h.Write(buf)
	return hex.EncodeToString(h.Sum(nil))
}
