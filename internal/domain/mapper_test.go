package domain

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func f(v float64) *float64 { return &v }

// kyivBirth is the reference fixture subject: 1990-03-25 14:30, Kyiv.
func kyivBirth() BirthData {
	return BirthData{
		Name:       "Fixture",
		BirthTime:  time.Date(1990, 3, 25, 14, 30, 0, 0, time.UTC),
		Timezone:   "Europe/Kyiv",
		Coordinate: &Coordinate{Lat: 50.4501, Lon: 30.5234},
		Location:   "Kyiv, Ukraine",
	}
}

// fixtureRaw builds a full provider response: ten planets, True Node, Lilith,
// equal houses from an Ascendant at 165 degrees, and a few aspects.
func fixtureRaw() RawChart {
	planets := []struct {
		name string
		lon  float64
	}{
		{"Sun", 4.5}, {"Moon", 118.2}, {"Mercury", 352.9}, {"Venus", 21.7},
		{"Mars", 305.4}, {"Jupiter", 95.1}, {"Saturn", 294.8}, {"Uranus", 279.3},
		{"Neptune", 284.6}, {"Pluto", 227.9},
	}

	raw := RawChart{}
	for _, p := range planets {
		raw.Bodies = append(raw.Bodies, RawBody{
			Name: p.name, Longitude: f(p.lon), Speed: 1.0, Retrograde: "false", House: 0,
		})
	}
	raw.Bodies = append(raw.Bodies,
		RawBody{Name: "True Node", Longitude: f(47.12), Speed: -0.053, Retrograde: "TRUE"},
		RawBody{Name: "Lilith", Longitude: f(12.0), Speed: 0.111, Retrograde: "false"},
	)

	for i := 0; i < 12; i++ {
		lon := NormalizeLongitude(165 + float64(i)*30)
		raw.Houses = append(raw.Houses, RawHouse{Label: houseLabel(i + 1), Longitude: f(lon)})
	}

	raw.Angles = []RawAngle{
		{Name: "Ascendant", Longitude: 165.0},
		{Name: "MC", Longitude: 75.0},
	}

	raw.Aspects = []RawAspect{
		{First: "Sun", Second: "Moon", Type: "trine", Orb: 3.7},
		{First: "Venus", Second: "Mars", Type: "square", Orb: 0.8},
		{First: "Moon", Second: "Pluto", Type: "opposition", Orb: 0.85},
	}

	return raw
}

var ordinalNames = [12]string{
	"First House", "Second House", "Third House", "Fourth House",
	"Fifth House", "Sixth House", "Seventh House", "Eighth House",
	"Ninth House", "Tenth House", "Eleventh House", "Twelfth House",
}

func houseLabel(n int) string { return ordinalNames[n-1] }

func TestMapChart_KyivFixture(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)))
	defer SetClock(nil)

	chart, err := MapChart(fixtureRaw(), kyivBirth(), HousePlacidus, RulershipTraditional, testLogger())
	require.NoError(t, err)

	assert.NotEmpty(t, chart.ID)
	assert.Equal(t, HousePlacidus, chart.HouseSystem)
	assert.Equal(t, time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC), chart.MappedAt)
	assert.Equal(t, "Kyiv, Ukraine", chart.Birth.Location)

	t.Run("south node derived from true node", func(t *testing.T) {
		south, ok := chart.Body(BodySouthNode)
		require.True(t, ok)
		assert.Equal(t, 227.12, south.Longitude)
		assert.Equal(t, SignScorpio, south.Sign)
		// Equal cusps from 165: house 3 spans [225, 255).
		assert.Equal(t, 3, south.House)
		assert.True(t, south.Retrograde, "south node mirrors true node motion")
		assert.Zero(t, south.Latitude)
	})

	t.Run("all longitudes normalized", func(t *testing.T) {
		for _, b := range chart.Bodies {
			assert.GreaterOrEqual(t, b.Longitude, 0.0, "body %s", b.Body)
			assert.Less(t, b.Longitude, 360.0, "body %s", b.Body)
		}
		for _, c := range chart.Houses {
			assert.GreaterOrEqual(t, c.Longitude, 0.0)
			assert.Less(t, c.Longitude, 360.0)
		}
	})

	t.Run("exactly 12 uniquely numbered houses", func(t *testing.T) {
		require.Len(t, chart.Houses, 12)
		seen := map[int]bool{}
		for _, c := range chart.Houses {
			assert.False(t, seen[c.House], "duplicate house %d", c.House)
			seen[c.House] = true
		}
		for h := 1; h <= 12; h++ {
			assert.True(t, seen[h], "missing house %d", h)
		}
	})

	t.Run("angles", func(t *testing.T) {
		assert.Equal(t, 165.0, chart.Angles.Ascendant)
		assert.Equal(t, 75.0, chart.Angles.Midheaven, "MC accepted as Midheaven synonym")
	})

	t.Run("retrograde string flag normalized", func(t *testing.T) {
		node, ok := chart.Body(BodyTrueNode)
		require.True(t, ok)
		assert.True(t, node.Retrograde, `"TRUE" parses case-insensitively`)

		sun, ok := chart.Body(BodySun)
		require.True(t, ok)
		assert.False(t, sun.Retrograde)
	})

	t.Run("bodies get houses from cusps when provider omits them", func(t *testing.T) {
		sun, ok := chart.Body(BodySun)
		require.True(t, ok)
		// Equal cusps from 165: house 7 spans [345, 15) across 0 Aries.
		assert.Equal(t, 7, sun.House)
	})

	t.Run("aspects ranked by orb", func(t *testing.T) {
		require.Len(t, chart.Aspects, 3)
		assert.Equal(t, AspectOpposition, chart.Aspects[0].Type, "0.85 opposition outranks 0.8 square within tolerance")
		assert.Equal(t, AspectSquare, chart.Aspects[1].Type)
		assert.Equal(t, AspectTrine, chart.Aspects[2].Type)
	})

	t.Run("rulers derived for every house", func(t *testing.T) {
		require.Len(t, chart.Rulers, 12, "all traditional rulers present in fixture")
		byHouse := map[int]HouseRuler{}
		for _, r := range chart.Rulers {
			byHouse[r.House] = r
		}
		// House 1 cusp at 165 degrees is Virgo; Mercury rules Virgo.
		first := byHouse[1]
		assert.Equal(t, BodyMercury, first.Ruler)
		assert.Equal(t, 352.9, first.Longitude)
		assert.Equal(t, SignPisces, first.Sign)
	})
}

func TestMapChart_ProviderSouthNodeDiscarded(t *testing.T) {
	raw := fixtureRaw()
	// Provider reports a rounded South Node; the mapper must recompute.
	raw.Bodies = append(raw.Bodies, RawBody{Name: "South Node", Longitude: f(227.0), Retrograde: "true"})

	chart, err := MapChart(raw, kyivBirth(), HousePlacidus, RulershipTraditional, testLogger())
	require.NoError(t, err)

	south, ok := chart.Body(BodySouthNode)
	require.True(t, ok)
	assert.Equal(t, 227.12, south.Longitude, "derived value wins over provider value")
}

func TestMapChart_SouthNodeExactOpposition(t *testing.T) {
	for _, nodeLon := range []float64{0, 47.12, 179.999, 180, 211.75, 359.5} {
		raw := fixtureRaw()
		raw.Bodies[10].Longitude = f(nodeLon) // True Node entry

		chart, err := MapChart(raw, kyivBirth(), HousePlacidus, RulershipTraditional, testLogger())
		require.NoError(t, err)

		south, ok := chart.Body(BodySouthNode)
		require.True(t, ok)
		assert.Equal(t, NormalizeLongitude(nodeLon+180), south.Longitude, "node at %v", nodeLon)
	}
}

func TestMapChart_NegativeLongitudeWraps(t *testing.T) {
	raw := fixtureRaw()
	raw.Bodies[0].Longitude = f(-15.0) // Sun

	chart, err := MapChart(raw, kyivBirth(), HousePlacidus, RulershipTraditional, testLogger())
	require.NoError(t, err)

	sun, ok := chart.Body(BodySun)
	require.True(t, ok)
	assert.Equal(t, 345.0, sun.Longitude)
	assert.Equal(t, SignPisces, sun.Sign)
}

func TestMapChart_FatalConditions(t *testing.T) {
	t.Run("missing body longitude", func(t *testing.T) {
		raw := fixtureRaw()
		raw.Bodies[3].Longitude = nil // Venus

		_, err := MapChart(raw, kyivBirth(), HousePlacidus, RulershipTraditional, testLogger())
		var mapErr *MappingError
		require.ErrorAs(t, err, &mapErr)
		assert.Equal(t, "Venus.longitude", mapErr.Field)
	})

	t.Run("eleven houses", func(t *testing.T) {
		raw := fixtureRaw()
		raw.Houses = raw.Houses[:11]

		_, err := MapChart(raw, kyivBirth(), HousePlacidus, RulershipTraditional, testLogger())
		var mapErr *MappingError
		require.ErrorAs(t, err, &mapErr)
		assert.Equal(t, "houses", mapErr.Field)
	})

	t.Run("duplicate house", func(t *testing.T) {
		raw := fixtureRaw()
		raw.Houses[5].Label = "First House"

		_, err := MapChart(raw, kyivBirth(), HousePlacidus, RulershipTraditional, testLogger())
		var mapErr *MappingError
		require.ErrorAs(t, err, &mapErr)
		assert.Contains(t, mapErr.Reason, "duplicate")
	})

	t.Run("missing ascendant with quadrant system", func(t *testing.T) {
		raw := fixtureRaw()
		raw.Angles = []RawAngle{{Name: "MC", Longitude: 75.0}}

		_, err := MapChart(raw, kyivBirth(), HousePlacidus, RulershipTraditional, testLogger())
		var mapErr *MappingError
		require.ErrorAs(t, err, &mapErr)
		assert.Equal(t, "ascendant", mapErr.Field)
	})

	t.Run("missing ascendant tolerated for whole sign", func(t *testing.T) {
		raw := fixtureRaw()
		raw.Angles = []RawAngle{{Name: "MC", Longitude: 75.0}}

		chart, err := MapChart(raw, kyivBirth(), HouseWholeSign, RulershipTraditional, testLogger())
		require.NoError(t, err)
		assert.Zero(t, chart.Angles.Ascendant)
	})
}

func TestMapChart_GracefulDegradation(t *testing.T) {
	t.Run("asteroid aspect participants dropped", func(t *testing.T) {
		raw := fixtureRaw()
		raw.Aspects = append(raw.Aspects,
			RawAspect{First: "Chiron", Second: "Sun", Type: "conjunction", Orb: 0.2},
			RawAspect{First: "Moon", Second: "Part of Fortune", Type: "sextile", Orb: 1.1},
		)

		chart, err := MapChart(raw, kyivBirth(), HousePlacidus, RulershipTraditional, testLogger())
		require.NoError(t, err)
		assert.Len(t, chart.Aspects, 3, "untracked participants dropped, chart intact")
	})

	t.Run("self aspect dropped", func(t *testing.T) {
		raw := fixtureRaw()
		raw.Aspects = append(raw.Aspects, RawAspect{First: "Sun", Second: "sun", Type: "conjunction", Orb: 0})

		chart, err := MapChart(raw, kyivBirth(), HousePlacidus, RulershipTraditional, testLogger())
		require.NoError(t, err)
		for _, a := range chart.Aspects {
			assert.NotEqual(t, a.First, a.Second)
		}
	})

	t.Run("unknown aspect type dropped", func(t *testing.T) {
		raw := fixtureRaw()
		raw.Aspects = append(raw.Aspects, RawAspect{First: "Sun", Second: "Moon", Type: "novile", Orb: 0.1})

		chart, err := MapChart(raw, kyivBirth(), HousePlacidus, RulershipTraditional, testLogger())
		require.NoError(t, err)
		assert.Len(t, chart.Aspects, 3)
	})

	t.Run("ruler omitted when ruling body absent", func(t *testing.T) {
		raw := fixtureRaw()
		// Remove Mercury; Virgo- and Gemini-cusped houses lose their ruler.
		raw.Bodies = append(raw.Bodies[:2], raw.Bodies[3:]...)

		chart, err := MapChart(raw, kyivBirth(), HousePlacidus, RulershipTraditional, testLogger())
		require.NoError(t, err)
		assert.Len(t, chart.Rulers, 10)
		for _, r := range chart.Rulers {
			assert.NotEqual(t, BodyMercury, r.Ruler)
		}
	})

	t.Run("untracked body entries skipped", func(t *testing.T) {
		raw := fixtureRaw()
		raw.Bodies = append(raw.Bodies, RawBody{Name: "Ceres", Longitude: nil})

		chart, err := MapChart(raw, kyivBirth(), HousePlacidus, RulershipTraditional, testLogger())
		require.NoError(t, err, "untracked bodies skipped before longitude validation")
		_, ok := chart.Body("ceres")
		assert.False(t, ok)
	})
}

func TestMapChart_NumericHouseLabels(t *testing.T) {
	raw := fixtureRaw()
	for i := range raw.Houses {
		raw.Houses[i].Label = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}[i]
	}

	chart, err := MapChart(raw, kyivBirth(), HousePlacidus, RulershipTraditional, testLogger())
	require.NoError(t, err)
	assert.Len(t, chart.Houses, 12)
}
