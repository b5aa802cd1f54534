package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuler_TotalOverAllSigns(t *testing.T) {
	for _, scheme := range []RulershipScheme{RulershipTraditional, RulershipModern} {
		for _, sign := range signOrder {
			assert.NotEmpty(t, Ruler(sign, scheme), "scheme %s sign %s", scheme, sign)
		}
	}
}

func TestRuler_TraditionalScheme(t *testing.T) {
	assert.Equal(t, BodyMars, Ruler(SignScorpio, RulershipTraditional))
	assert.Equal(t, BodySaturn, Ruler(SignAquarius, RulershipTraditional))
	assert.Equal(t, BodyJupiter, Ruler(SignPisces, RulershipTraditional))
	assert.Equal(t, BodySun, Ruler(SignLeo, RulershipTraditional))
	assert.Equal(t, BodyMoon, Ruler(SignCancer, RulershipTraditional))
}

func TestRuler_ModernSubstitutions(t *testing.T) {
	assert.Equal(t, BodyPluto, Ruler(SignScorpio, RulershipModern))
	assert.Equal(t, BodyUranus, Ruler(SignAquarius, RulershipModern))
	assert.Equal(t, BodyNeptune, Ruler(SignPisces, RulershipModern))
	// Signs without outer-planet substitutions match the traditional table.
	assert.Equal(t, BodyMars, Ruler(SignAries, RulershipModern))
}

func TestRuler_UnknownSchemeFallsBackToTraditional(t *testing.T) {
	assert.Equal(t, BodyMars, Ruler(SignScorpio, RulershipScheme("hellenistic")))
}
