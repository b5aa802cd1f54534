// Package domain models a western-astrology natal chart.
//
// # Data Source
//
// Planetary positions, house cusps, and aspects originate from an external
// ephemeris provider. Providers return loosely-specified JSON: field names,
// house identification, and boolean encodings vary between integrations, so
// each provider adapter decodes its own wire shape into the provider-agnostic
// [RawChart] before any of it enters the mapper. Provider field names must not
// leak past [MapChart].
//
// # Coordinate Conventions
//
// Ecliptic longitude:
//
//	Always normalized into [0, 360). Negative provider values wrap by +360.
//	The zodiac sign is a pure function of longitude: sign = floor(longitude/30),
//	Aries at [0,30) through Pisces at [330,360).
//
// Houses:
//
//	Exactly 12 houses numbered 1-12, each exactly once. Some providers encode
//	house identity as an ordinal name ("First House", "Tenth House"); these are
//	translated through a fixed table. Fewer or more than 12 distinct houses is
//	a mapping error, never a warning.
//
// Retrograde:
//
//	Providers encode retrograde motion as a string flag ("true"/"false"), a
//	boolean, or only as the sign of the daily speed. The string flag is
//	normalized by case-insensitive equality to "true"; the domain keeps the
//	boolean and the signed speed independently.
//
// # Derived Quantities
//
// South Node:
//
//	Always computed locally as True Node longitude + 180 degrees, normalized.
//	Provider-supplied South Node values are discarded so the opposition to the
//	True Node is exact to floating-point precision regardless of provider
//	rounding. Sign and house derive from the computed longitude like any other
//	body.
//
// House rulers:
//
//	For each house, the ruling body of the cusp sign per the traditional
//	seven-body rulership scheme (modern scheme available), cross-referenced
//	against that body's own mapped position. Houses whose ruler is absent from
//	the response are omitted rather than failing the mapping.
//
// # Aspect Ranking
//
// Aspects are ordered for reports by orb ascending (tighter is earlier). When
// two orbs are within 0.1 degrees of each other, a fixed type precedence
// breaks the tie: conjunction and opposition over trine and square, over
// sextile, over the minor aspects. The sort is stable, so further ties keep
// input order.
package domain
