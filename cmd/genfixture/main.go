// Command genfixture generates deterministic chart fixtures for test suites:
// a raw provider-shaped response and the mapped chart it produces. It uses the
// actual domain mapper so the fixture always matches real mapping behavior.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -raw-out data/fixtures/kyiv_1990_raw.json \
//	  -chart-out data/fixtures/kyiv_1990_chart.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/astrolark/natal-chart-service/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rawOut := flag.String("raw-out", "", "output path for the raw provider response fixture")
	chartOut := flag.String("chart-out", "", "output path for the mapped chart fixture")
	flag.Parse()

	if *rawOut == "" || *chartOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -raw-out, -chart-out")
	}

	// Fix the clock for a reproducible MappedAt timestamp.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	raw := fixtureRaw()
	birth := fixtureBirth()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	chart, err := domain.MapChart(raw, birth, domain.HouseEqual, domain.RulershipTraditional, logger)
	if err != nil {
		return fmt.Errorf("mapping fixture: %w", err)
	}

	if err := writeJSON(*rawOut, raw); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	if err := writeJSON(*chartOut, chart); err != nil {
		return fmt.Errorf("writing chart fixture: %w", err)
	}
	log.Printf("wrote chart fixture: %s", *chartOut)

	printStats(chart)
	return nil
}

// fixtureBirth is the canonical test subject: Kyiv, spring equinox era, known
// coordinates.
func fixtureBirth() domain.BirthData {
	return domain.BirthData{
		Name:       "Fixture Subject",
		BirthTime:  time.Date(1990, time.March, 25, 14, 30, 0, 0, time.UTC),
		Timezone:   "Europe/Kyiv",
		Coordinate: &domain.Coordinate{Lat: 50.4501, Lon: 30.5234},
		Location:   "Kyiv, Ukraine",
	}
}

// fixtureRaw builds a full provider response: ten planets, the True Node,
// Lilith, twelve equal houses anchored at the Ascendant, and a handful of
// aspects with close orbs to exercise tie-breaking.
func fixtureRaw() domain.RawChart {
	f := func(v float64) *float64 { return &v }

	raw := domain.RawChart{
		Bodies: []domain.RawBody{
			{Name: "Sun", Longitude: f(4.5), Speed: 0.985, Retrograde: "false"},
			{Name: "Moon", Longitude: f(262.75), Speed: 13.2, Retrograde: "false"},
			{Name: "Mercury", Longitude: f(352.9), Speed: 1.4, Retrograde: "false"},
			{Name: "Venus", Longitude: f(332.1), Speed: 1.2, Retrograde: "false"},
			{Name: "Mars", Longitude: f(301.3), Speed: 0.7, Retrograde: "false"},
			{Name: "Jupiter", Longitude: f(93.6), Speed: 0.1, Retrograde: "false"},
			{Name: "Saturn", Longitude: f(295.4), Speed: 0.05, Retrograde: "false"},
			{Name: "Uranus", Longitude: f(278.9), Speed: 0.02, Retrograde: "true"},
			{Name: "Neptune", Longitude: f(284.2), Speed: 0.01, Retrograde: "false"},
			{Name: "Pluto", Longitude: f(227.5), Speed: -0.01, Retrograde: "TRUE"},
			{Name: "True Node", Longitude: f(47.12), Speed: -0.053, Retrograde: "TRUE"},
			{Name: "Lilith", Longitude: f(122.4), Speed: 0.11, Retrograde: "false"},
		},
		Angles: []domain.RawAngle{
			{Name: "Ascendant", Longitude: 165.0},
			{Name: "Midheaven", Longitude: 75.0},
		},
		Aspects: []domain.RawAspect{
			{First: "Moon", Second: "Venus", Type: "Trine", Orb: 3.7},
			{First: "Sun", Second: "Jupiter", Type: "Square", Orb: 0.8},
			{First: "Mercury", Second: "Pluto", Type: "Opposition", Orb: 0.85},
			{First: "Mars", Second: "Saturn", Type: "Conjunction", Orb: 5.9},
		},
	}

	ordinals := []string{
		"First House", "Second House", "Third House", "Fourth House",
		"Fifth House", "Sixth House", "Seventh House", "Eighth House",
		"Ninth House", "Tenth House", "Eleventh House", "Twelfth House",
	}
	for i, label := range ordinals {
		raw.Houses = append(raw.Houses, domain.RawHouse{
			Label:     label,
			Longitude: f(domain.NormalizeLongitude(165.0 + float64(i*30))),
		})
	}
	return raw
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(chart domain.NatalChart) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Bodies: %d\n", len(chart.Bodies))
	fmt.Printf("Houses: %d\n", len(chart.Houses))
	fmt.Printf("Rulers: %d\n", len(chart.Rulers))
	fmt.Printf("Angles: asc=%g, mc=%g\n", chart.Angles.Ascendant, chart.Angles.Midheaven)

	if node, ok := chart.Body(domain.BodyTrueNode); ok {
		fmt.Printf("True Node: %g (%s, house %d)\n", node.Longitude, node.Sign, node.House)
	}
	if south, ok := chart.Body(domain.BodySouthNode); ok {
		fmt.Printf("South Node: %g (%s, house %d)\n", south.Longitude, south.Sign, south.House)
	}

	fmt.Println("Ranked aspects:")
	for i, a := range chart.Aspects {
		fmt.Printf("  [%d] %s %s %s (orb %g)\n", i, a.First, a.Type, a.Second, a.Orb)
	}

	retro := 0
	for _, b := range chart.Bodies {
		if b.Retrograde {
			retro++
		}
	}
	fmt.Printf("Retrograde bodies: %d\n", retro)
}
