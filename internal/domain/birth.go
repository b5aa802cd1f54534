package domain

import "time"

// Coordinate is a WGS-84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BirthData describes the chart subject. Name and Location are display labels.
// A nil Coordinate is the intentional "unknown birthplace coordinate" state,
// not an error; whether that is acceptable depends on the provider.
type BirthData struct {
	// Name is an opaque label, never part of subject identity.
	Name string `json:"name,omitempty"`

	// BirthTime holds the civil birth date and time-of-day as wall-clock
	// fields. By convention it is constructed in UTC; the real zone lives in
	// Timezone and is applied when the provider request is built.
	BirthTime time.Time `json:"birth_time"`

	// Timezone is the IANA zone identifier of the birthplace, e.g. "Europe/Kyiv".
	Timezone string `json:"timezone"`

	Coordinate *Coordinate `json:"coordinate,omitempty"`

	// Location is the free-text birthplace label, e.g. "Kyiv, Ukraine".
	Location string `json:"location,omitempty"`
}
