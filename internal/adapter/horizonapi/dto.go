package horizonapi

import (
	"github.com/astrolark/natal-chart-service/internal/domain"
)

// Wire types for the Horizon western-horoscope API. Field names follow the
// provider's JSON exactly; nothing in here leaks past this package.

type wireRequest struct {
	Day    int `json:"day"`
	Month  int `json:"month"`
	Year   int `json:"year"`
	Hour   int `json:"hour"`
	Minute int `json:"min"`
	Second int `json:"sec"`

	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	// Tzone is the UTC offset in hours at the birth instant, DST included.
	Tzone float64 `json:"tzone"`

	HouseSystem string `json:"house_system"`
}

type wireResponse struct {
	Planets   []wirePlanet `json:"planets"`
	Houses    []wireHouse  `json:"houses"`
	Ascendant *float64     `json:"ascendant"`
	Midheaven *float64     `json:"midheaven"`
	Aspects   []wireAspect `json:"aspects"`
}

type wirePlanet struct {
	Name       string   `json:"name"`
	FullDegree *float64 `json:"full_degree"`
	Latitude   float64  `json:"latitude"`
	Speed      float64  `json:"speed"`
	IsRetro    string   `json:"is_retro"` // "true"/"false", case varies
	House      int      `json:"house"`
}

type wireHouse struct {
	// House is the provider's cusp label, a number ("1") or an ordinal
	// name ("First House") depending on endpoint version.
	House  string   `json:"house"`
	Degree *float64 `json:"degree"`
}

type wireAspect struct {
	AspectingPlanet string  `json:"aspecting_planet"`
	AspectedPlanet  string  `json:"aspected_planet"`
	Type            string  `json:"type"`
	Orb             float64 `json:"orb"`
	Applying        *bool   `json:"applying,omitempty"`
}

// encodeRequest builds the provider's request body from a normalized request.
// The caller has already guaranteed a coordinate is present.
func encodeRequest(req domain.ProviderRequest) wireRequest {
	return wireRequest{
		Day:         req.Day,
		Month:       req.Month,
		Year:        req.Year,
		Hour:        req.Hour,
		Minute:      req.Minute,
		Second:      req.Second,
		Lat:         req.Coordinate.Lat,
		Lon:         req.Coordinate.Lon,
		Tzone:       req.UTCOffsetHours,
		HouseSystem: string(req.HouseSystem),
	}
}

// toRawChart lowers the wire response into the provider-agnostic intermediate
// shape. No validation happens here; the domain mapper owns that.
func (r wireResponse) toRawChart() domain.RawChart {
	raw := domain.RawChart{}

	for _, p := range r.Planets {
		raw.Bodies = append(raw.Bodies, domain.RawBody{
			Name:       p.Name,
			Longitude:  p.FullDegree,
			Latitude:   p.Latitude,
			Speed:      p.Speed,
			Retrograde: p.IsRetro,
			House:      p.House,
		})
	}

	for _, h := range r.Houses {
		raw.Houses = append(raw.Houses, domain.RawHouse{
			Label:     h.House,
			Longitude: h.Degree,
		})
	}

	if r.Ascendant != nil {
		raw.Angles = append(raw.Angles, domain.RawAngle{Name: "Ascendant", Longitude: *r.Ascendant})
	}
	if r.Midheaven != nil {
		raw.Angles = append(raw.Angles, domain.RawAngle{Name: "Midheaven", Longitude: *r.Midheaven})
	}

	for _, a := range r.Aspects {
		raw.Aspects = append(raw.Aspects, domain.RawAspect{
			First:    a.AspectingPlanet,
			Second:   a.AspectedPlanet,
			Type:     a.Type,
			Orb:      a.Orb,
			Applying: a.Applying,
		})
	}

	return raw
}
