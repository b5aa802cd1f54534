package domain

import (
	"math"
	"strings"
	"time"
)

// Sign is a zodiac sign, one of the twelve 30-degree segments of the ecliptic.
type Sign string

const (
	SignAries       Sign = "aries"
	SignTaurus      Sign = "taurus"
	SignGemini      Sign = "gemini"
	SignCancer      Sign = "cancer"
	SignLeo         Sign = "leo"
	SignVirgo       Sign = "virgo"
	SignLibra       Sign = "libra"
	SignScorpio     Sign = "scorpio"
	SignSagittarius Sign = "sagittarius"
	SignCapricorn   Sign = "capricorn"
	SignAquarius    Sign = "aquarius"
	SignPisces      Sign = "pisces"
)

// signOrder lists the signs in ecliptic order, Aries first.
var signOrder = [12]Sign{
	SignAries, SignTaurus, SignGemini, SignCancer,
	SignLeo, SignVirgo, SignLibra, SignScorpio,
	SignSagittarius, SignCapricorn, SignAquarius, SignPisces,
}

// SignFromLongitude derives the zodiac sign of an ecliptic longitude.
// The longitude is normalized first, so any finite value is accepted.
func SignFromLongitude(longitude float64) Sign {
	idx := int(NormalizeLongitude(longitude) / 30)
	if idx > 11 { // guards float edge at exactly 360 after rounding
		idx = 11
	}
	return signOrder[idx]
}

// ParseSign matches a provider sign name case-insensitively.
func ParseSign(s string) (Sign, bool) {
	name := Sign(strings.ToLower(strings.TrimSpace(s)))
	for _, sign := range signOrder {
		if sign == name {
			return sign, true
		}
	}
	return "", false
}

// Body identifies a tracked celestial body.
type Body string

const (
	BodySun       Body = "sun"
	BodyMoon      Body = "moon"
	BodyMercury   Body = "mercury"
	BodyVenus     Body = "venus"
	BodyMars      Body = "mars"
	BodyJupiter   Body = "jupiter"
	BodySaturn    Body = "saturn"
	BodyUranus    Body = "uranus"
	BodyNeptune   Body = "neptune"
	BodyPluto     Body = "pluto"
	BodyTrueNode  Body = "true_node"
	BodySouthNode Body = "south_node"
	BodyLilith    Body = "lilith"
)

// bodySynonyms maps normalized provider spellings to body identifiers.
// Providers disagree on node naming; all common variants are accepted.
var bodySynonyms = map[string]Body{
	"sun":        BodySun,
	"moon":       BodyMoon,
	"mercury":    BodyMercury,
	"venus":      BodyVenus,
	"mars":       BodyMars,
	"jupiter":    BodyJupiter,
	"saturn":     BodySaturn,
	"uranus":     BodyUranus,
	"neptune":    BodyNeptune,
	"pluto":      BodyPluto,
	"true node":  BodyTrueNode,
	"north node": BodyTrueNode,
	"node":       BodyTrueNode,
	"south node": BodySouthNode,
	"lilith":     BodyLilith,
	"black moon": BodyLilith,
}

// ParseBody matches a provider body name against the tracked set.
// Matching is case-insensitive and treats underscores as spaces. Returns
// false for untracked participants (asteroids, arabic parts, and so on).
func ParseBody(s string) (Body, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "_", " ")
	b, ok := bodySynonyms[key]
	return b, ok
}

// AspectType is an angular relationship between two bodies.
type AspectType string

const (
	AspectConjunction    AspectType = "conjunction"
	AspectOpposition     AspectType = "opposition"
	AspectTrine          AspectType = "trine"
	AspectSquare         AspectType = "square"
	AspectSextile        AspectType = "sextile"
	AspectQuincunx       AspectType = "quincunx"
	AspectSemisextile    AspectType = "semisextile"
	AspectSemisquare     AspectType = "semisquare"
	AspectSesquiquadrate AspectType = "sesquiquadrate"
	AspectQuintile       AspectType = "quintile"
	AspectBiquintile     AspectType = "biquintile"
)

// aspectPrecedence is the fixed total order used to break near-equal-orb ties
// in ranking. Lower is more significant.
var aspectPrecedence = map[AspectType]int{
	AspectConjunction:    0,
	AspectOpposition:     1,
	AspectTrine:          2,
	AspectSquare:         3,
	AspectSextile:        4,
	AspectQuincunx:       5,
	AspectSemisextile:    6,
	AspectSemisquare:     7,
	AspectSesquiquadrate: 8,
	AspectQuintile:       9,
	AspectBiquintile:     10,
}

// ParseAspectType matches a provider aspect name case-insensitively.
// "inconjunct" is the common synonym for quincunx.
func ParseAspectType(s string) (AspectType, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "inconjunct" {
		return AspectQuincunx, true
	}
	t := AspectType(key)
	if _, ok := aspectPrecedence[t]; ok {
		return t, true
	}
	return "", false
}

// HouseSystem selects the house-division method requested from the provider.
type HouseSystem string

const (
	HousePlacidus      HouseSystem = "placidus"
	HouseKoch          HouseSystem = "koch"
	HouseEqual         HouseSystem = "equal"
	HouseWholeSign     HouseSystem = "whole_sign"
	HousePorphyry      HouseSystem = "porphyry"
	HouseRegiomontanus HouseSystem = "regiomontanus"
	HouseCampanus      HouseSystem = "campanus"
)

var supportedHouseSystems = map[HouseSystem]bool{
	HousePlacidus:      true,
	HouseKoch:          true,
	HouseEqual:         true,
	HouseWholeSign:     true,
	HousePorphyry:      true,
	HouseRegiomontanus: true,
	HouseCampanus:      true,
}

// ParseHouseSystem validates a house-system identifier. Unsupported values
// fail with a ConfigurationError naming the invalid system.
func ParseHouseSystem(s string) (HouseSystem, error) {
	hs := HouseSystem(strings.ToLower(strings.TrimSpace(s)))
	if !supportedHouseSystems[hs] {
		return "", &ConfigurationError{Setting: "house system", Value: s}
	}
	return hs, nil
}

// RequiresAscendant reports whether charts in this house system are unusable
// without an Ascendant. Whole-sign charts can be built from the Sun sign when
// the birth time is unreliable; every other supported system anchors its cusps
// to the Ascendant.
func (h HouseSystem) RequiresAscendant() bool {
	return h != HouseWholeSign
}

// CelestialBody is one mapped body position.
type CelestialBody struct {
	Body       Body    `json:"body"`
	Longitude  float64 `json:"longitude"` // ecliptic, [0,360)
	Latitude   float64 `json:"latitude"`
	Sign       Sign    `json:"sign"`
	House      int     `json:"house"` // 1-12
	Retrograde bool    `json:"retrograde"`
	Speed      float64 `json:"speed"` // signed degrees/day
}

// HouseCusp is the start boundary of one house.
type HouseCusp struct {
	House     int     `json:"house"` // 1-12
	Longitude float64 `json:"longitude"`
	Sign      Sign    `json:"sign"`
}

// Aspect is an angular relationship between two distinct bodies.
// Applying is nil when the provider does not report it.
type Aspect struct {
	First    Body       `json:"first"`
	Second   Body       `json:"second"`
	Type     AspectType `json:"type"`
	Orb      float64    `json:"orb"` // absolute deviation from exact, >= 0
	Applying *bool      `json:"applying,omitempty"`
}

// ChartAngles holds the two primary chart angles.
type ChartAngles struct {
	Ascendant float64 `json:"ascendant"`
	Midheaven float64 `json:"midheaven"`
}

// HouseRuler cross-references a house with its cusp-sign ruler's own position.
// Derived at mapping time, never stored independently.
type HouseRuler struct {
	House     int     `json:"house"`
	Ruler     Body    `json:"ruler"`
	Sign      Sign    `json:"sign"`        // the ruler's own sign
	RulerIn   int     `json:"ruler_house"` // the house the ruler occupies
	Longitude float64 `json:"longitude"`   // the ruler's own longitude
}

// RenderedImage is an opaque reference to a cached chart-wheel rendering
// produced by the rendering collaborator. The core never renders.
type RenderedImage struct {
	Ref    string `json:"ref"`
	Format string `json:"format"`
}

// NatalChart is the aggregate produced by one provider response. Immutable
// after mapping except for attaching a rendered-image reference; a changed
// subject or house system supersedes the chart rather than mutating it.
type NatalChart struct {
	ID          string          `json:"id"`
	Birth       BirthData       `json:"birth"`
	Bodies      []CelestialBody `json:"bodies"`
	Houses      []HouseCusp     `json:"houses"` // exactly 12, numbered 1-12
	Aspects     []Aspect        `json:"aspects"`
	Rulers      []HouseRuler    `json:"rulers"`
	Angles      ChartAngles     `json:"angles"`
	HouseSystem HouseSystem     `json:"house_system"`
	MappedAt    time.Time       `json:"mapped_at"`
	Image       *RenderedImage  `json:"image,omitempty"`
}

// Body returns the mapped position of a body, if present.
func (c *NatalChart) Body(b Body) (CelestialBody, bool) {
	for _, cb := range c.Bodies {
		if cb.Body == b {
			return cb, true
		}
	}
	return CelestialBody{}, false
}

// NormalizeLongitude wraps an ecliptic longitude into [0,360).
func NormalizeLongitude(longitude float64) float64 {
	l := math.Mod(longitude, 360)
	if l < 0 {
		l += 360
	}
	if l == 360 { // Mod can return the modulus for values like -1e-15
		l = 0
	}
	return l
}

// HouseForLongitude finds the house whose arc contains the longitude, using
// the cusp of each house as the inclusive start boundary. Cusps may be in any
// order; the arc from a cusp runs to the numerically next house's cusp with
// zodiac wraparound. Returns 0 when cusps do not cover 12 houses.
func HouseForLongitude(cusps []HouseCusp, longitude float64) int {
	if len(cusps) != 12 {
		return 0
	}
	byHouse := make(map[int]float64, 12)
	for _, c := range cusps {
		byHouse[c.House] = c.Longitude
	}
	if len(byHouse) != 12 {
		return 0
	}

	lon := NormalizeLongitude(longitude)
	for h := 1; h <= 12; h++ {
		start := byHouse[h]
		next := h%12 + 1
		end := byHouse[next]

		if start <= end {
			if lon >= start && lon < end {
				return h
			}
			continue
		}
		// Arc crosses 0 Aries.
		if lon >= start || lon < end {
			return h
		}
	}
	return 0
}
