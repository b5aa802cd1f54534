package domain

// RulershipScheme selects which rulership table assigns a ruling body to each
// sign. Both tables are total over the twelve signs; there is no error path.
type RulershipScheme string

const (
	// RulershipTraditional uses the classical seven-body scheme: the outer
	// planets do not rule, so Scorpio falls to Mars, Aquarius to Saturn, and
	// Pisces to Jupiter.
	RulershipTraditional RulershipScheme = "traditional"

	// RulershipModern substitutes the outer planets for Scorpio, Aquarius,
	// and Pisces.
	RulershipModern RulershipScheme = "modern"
)

var traditionalRulers = map[Sign]Body{
	SignAries:       BodyMars,
	SignTaurus:      BodyVenus,
	SignGemini:      BodyMercury,
	SignCancer:      BodyMoon,
	SignLeo:         BodySun,
	SignVirgo:       BodyMercury,
	SignLibra:       BodyVenus,
	SignScorpio:     BodyMars,
	SignSagittarius: BodyJupiter,
	SignCapricorn:   BodySaturn,
	SignAquarius:    BodySaturn,
	SignPisces:      BodyJupiter,
}

var modernRulers = map[Sign]Body{
	SignAries:       BodyMars,
	SignTaurus:      BodyVenus,
	SignGemini:      BodyMercury,
	SignCancer:      BodyMoon,
	SignLeo:         BodySun,
	SignVirgo:       BodyMercury,
	SignLibra:       BodyVenus,
	SignScorpio:     BodyPluto,
	SignSagittarius: BodyJupiter,
	SignCapricorn:   BodySaturn,
	SignAquarius:    BodyUranus,
	SignPisces:      BodyNeptune,
}

// Ruler returns the ruling body of a sign under the given scheme.
// Unknown schemes fall back to the traditional table.
func Ruler(sign Sign, scheme RulershipScheme) Body {
	if scheme == RulershipModern {
		return modernRulers[sign]
	}
	return traditionalRulers[sign]
}
