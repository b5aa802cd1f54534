package domain

import "time"

// ProviderRequest is the normalized, provider-agnostic request built from
// birth data. Calendar fields are split out because most ephemeris APIs take
// them individually; both timezone representations are carried so each
// adapter can send whichever its provider expects.
type ProviderRequest struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int

	// TimezoneID is the IANA identifier, e.g. "Europe/Kyiv".
	TimezoneID string
	// UTCOffsetHours is the zone's offset from UTC at the birth instant,
	// DST included, e.g. 3.0 for Kyiv summer time or 5.5 for India.
	UTCOffsetHours float64

	Coordinate  *Coordinate
	HouseSystem HouseSystem
}

// NewProviderRequest normalizes birth data into a provider request for the
// given house system. The house system must already be validated via
// ParseHouseSystem; an unknown timezone identifier fails with a
// ConfigurationError. The coordinate passes through unchanged, absent or not:
// whether a provider tolerates a missing coordinate is checked by
// RequireCoordinate before any network attempt.
func NewProviderRequest(birth BirthData, houseSystem HouseSystem) (ProviderRequest, error) {
	if _, err := ParseHouseSystem(string(houseSystem)); err != nil {
		return ProviderRequest{}, err
	}

	loc, err := time.LoadLocation(birth.Timezone)
	if err != nil {
		return ProviderRequest{}, &ConfigurationError{Setting: "timezone", Value: birth.Timezone}
	}

	t := birth.BirthTime
	// Re-anchor the wall-clock fields in the birth zone to resolve the
	// offset at that instant, DST included.
	local := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
	_, offsetSeconds := local.Zone()

	return ProviderRequest{
		Year:           t.Year(),
		Month:          int(t.Month()),
		Day:            t.Day(),
		Hour:           t.Hour(),
		Minute:         t.Minute(),
		Second:         t.Second(),
		TimezoneID:     birth.Timezone,
		UTCOffsetHours: float64(offsetSeconds) / 3600,
		Coordinate:     birth.Coordinate,
		HouseSystem:    houseSystem,
	}, nil
}

// RequireCoordinate fails fast with a MissingCoordinateError when the request
// carries no coordinate. Called by adapters whose provider mandates one,
// before the request leaves the process.
func (r ProviderRequest) RequireCoordinate() error {
	if r.Coordinate == nil {
		return &MissingCoordinateError{}
	}
	return nil
}
