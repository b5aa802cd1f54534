package domain

import "context"

// RawChart is the provider-agnostic intermediate shape every provider adapter
// decodes its wire response into. String fields carry whatever the provider
// sent; all validation and normalization happens in [MapChart].
type RawChart struct {
	Bodies  []RawBody
	Houses  []RawHouse
	Angles  []RawAngle
	Aspects []RawAspect
}

// RawBody is one body entry as the provider reported it. Longitude is a
// pointer so an absent value is distinguishable from 0 degrees Aries.
type RawBody struct {
	Name       string
	Longitude  *float64
	Latitude   float64
	Speed      float64
	Retrograde string // provider string flag; "true" (any case) means retrograde
	House      int
}

// RawHouse is one cusp entry. Label is either a house number ("1".."12") or
// an ordinal name ("First House").
type RawHouse struct {
	Label     string
	Longitude *float64
}

// RawAngle is a named chart angle such as "Ascendant" or "MC".
type RawAngle struct {
	Name      string
	Longitude float64
}

// RawAspect is one aspect entry; participants are provider body names and may
// reference bodies the domain does not track.
type RawAspect struct {
	First    string
	Second   string
	Type     string
	Orb      float64
	Applying *bool
}

// Provider fetches raw ephemeris data for a normalized request. The transport,
// its authentication, and its retry policy belong to the implementation; the
// core only distinguishes "data" from "no data available".
type Provider interface {
	FetchChart(ctx context.Context, req ProviderRequest) (RawChart, error)
}
