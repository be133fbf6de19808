package model

import (
	"time"
)

type Position struct {
	Latitude  float64   `json:"lat" bson:"lat"`
	Longitude float64   `json:"lng" bson:"lng"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

func NewPosition(lat, lng float64, ts time.Time) Position {
	return Position{
		Latitude:  lat,
		Longitude: lng,
		Timestamp: ts,
	}
}

// Fix is a position reported by an external feed rather than produced by
// the simulated motion model.
type Fix struct {
	Position
	Speed   float64 `json:"speed,omitempty"`
	Course  float64 `json:"course,omitempty"`
	Battery *int    `json:"battery,omitempty"`
	SOS     bool    `json:"sos,omitempty"`
}

// Coordinates is a point without a timestamp, used for spawn points and
// checkpoint locations.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" bson:"lng" yaml:"lng" validate:"gte=-180,lte=180"`
}
