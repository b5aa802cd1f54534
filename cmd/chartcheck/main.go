// Command chartcheck performs offline integrity checks on chart fixtures: it
// re-runs the domain mapping on the raw fixture and verifies the stored chart
// fixture against numeric invariants, derived quantities, aspect ordering, and
// mapping equivalence.
//
// Usage:
//
//	go run ./cmd/chartcheck \
//	  -raw data/fixtures/kyiv_1990_raw.json \
//	  -chart data/fixtures/kyiv_1990_chart.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/astrolark/natal-chart-service/internal/domain"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	rawPath := flag.String("raw", "", "path to the raw provider response fixture")
	chartPath := flag.String("chart", "", "path to the mapped chart fixture")
	flag.Parse()

	if *rawPath == "" || *chartPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*rawPath, *chartPath); code != 0 {
		os.Exit(code)
	}
}

func run(rawPath, chartPath string) int {
	// Fix the clock to match genfixture for a reproducible MappedAt.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Chart Fixture Integrity Validation ===")
	fmt.Println()

	raw, err := loadJSON[domain.RawChart](rawPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw fixture: %v\n", err)
		return 1
	}
	chart, err := loadJSON[domain.NatalChart](chartPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load chart fixture: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateNumericInvariants(chart),
		validateDerivedQuantities(chart),
		validateAspectOrdering(chart),
		validateMappingEquivalence(raw, chart),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-44s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Chart: %d bodies, %d houses, %d aspects, %d rulers\n",
		len(chart.Bodies), len(chart.Houses), len(chart.Aspects), len(chart.Rulers))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) (T, error) {
	var v T
	data, err := os.ReadFile(path)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, err
	}
	return v, nil
}

// ── Phase 1: Numeric Invariants ──
// Longitudes in [0,360), houses in 1-12, exactly twelve cusps, orbs >= 0.

func validateNumericInvariants(chart domain.NatalChart) *phase {
	p := &phase{name: "Phase 1: Numeric Invariants"}

	for _, b := range chart.Bodies {
		if b.Longitude < 0 || b.Longitude >= 360 {
			p.errorf("%s: longitude %g outside [0,360)", b.Body, b.Longitude)
		}
		if b.House < 1 || b.House > 12 {
			p.errorf("%s: house %d outside 1-12", b.Body, b.House)
		}
		if b.Sign != domain.SignFromLongitude(b.Longitude) {
			p.errorf("%s: sign %q does not match longitude %g", b.Body, b.Sign, b.Longitude)
		}
	}

	if len(chart.Houses) != 12 {
		p.errorf("chart has %d houses, want 12", len(chart.Houses))
	}
	seen := map[int]bool{}
	for _, h := range chart.Houses {
		if h.House < 1 || h.House > 12 {
			p.errorf("cusp house %d outside 1-12", h.House)
		}
		if seen[h.House] {
			p.errorf("duplicate house %d", h.House)
		}
		seen[h.House] = true
		if h.Longitude < 0 || h.Longitude >= 360 {
			p.errorf("house %d: cusp longitude %g outside [0,360)", h.House, h.Longitude)
		}
	}

	for i, a := range chart.Aspects {
		if a.Orb < 0 {
			p.errorf("aspect %d: negative orb %g", i, a.Orb)
		}
		if a.First == a.Second {
			p.errorf("aspect %d: self-aspect on %s", i, a.First)
		}
	}

	if asc := chart.Angles.Ascendant; asc < 0 || asc >= 360 {
		p.errorf("ascendant %g outside [0,360)", asc)
	}
	return p
}

// ── Phase 2: Derived Quantities ──
// South Node opposes the True Node; rulers agree with the rulership table.

func validateDerivedQuantities(chart domain.NatalChart) *phase {
	p := &phase{name: "Phase 2: Derived Quantities"}

	node, hasNode := chart.Body(domain.BodyTrueNode)
	south, hasSouth := chart.Body(domain.BodySouthNode)
	switch {
	case hasNode && !hasSouth:
		p.errorf("True Node present but South Node missing")
	case hasNode && hasSouth:
		want := domain.NormalizeLongitude(node.Longitude + 180)
		if !floatEq(south.Longitude, want) {
			p.errorf("South Node longitude %g, want %g (True Node + 180)", south.Longitude, want)
		}
		if south.Latitude != 0 {
			p.errorf("South Node latitude %g, want 0", south.Latitude)
		}
	}

	cuspSign := map[int]domain.Sign{}
	for _, h := range chart.Houses {
		cuspSign[h.House] = h.Sign
	}
	for _, r := range chart.Rulers {
		sign, ok := cuspSign[r.House]
		if !ok {
			p.errorf("ruler for unknown house %d", r.House)
			continue
		}
		if want := domain.Ruler(sign, domain.RulershipTraditional); r.Ruler != want {
			p.errorf("house %d (%s): ruler %s, table says %s", r.House, sign, r.Ruler, want)
		}
		body, ok := chart.Body(r.Ruler)
		if !ok {
			p.errorf("house %d: ruler %s not among mapped bodies", r.House, r.Ruler)
			continue
		}
		if !floatEq(r.Longitude, body.Longitude) || r.RulerIn != body.House || r.Sign != body.Sign {
			p.errorf("house %d: ruler cross-reference out of sync with %s position", r.House, r.Ruler)
		}
	}
	return p
}

// ── Phase 3: Aspect Ordering ──
// Clearly tighter orbs come first; near-ties follow type precedence.

func validateAspectOrdering(chart domain.NatalChart) *phase {
	p := &phase{name: "Phase 3: Aspect Ordering"}

	for i := 0; i < len(chart.Aspects); i++ {
		for j := i + 1; j < len(chart.Aspects); j++ {
			if chart.Aspects[j].Orb+0.1 < chart.Aspects[i].Orb {
				p.errorf("aspect %d (orb %g) precedes aspect %d (orb %g) despite clearly wider orb",
					i, chart.Aspects[i].Orb, j, chart.Aspects[j].Orb)
			}
		}
	}
	return p
}

// ── Phase 4: Mapping Equivalence ──
// Re-running the mapper on the raw fixture reproduces the stored chart.

func validateMappingEquivalence(raw domain.RawChart, chart domain.NatalChart) *phase {
	p := &phase{name: "Phase 4: Mapping Equivalence"}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	remapped, err := domain.MapChart(raw, chart.Birth, chart.HouseSystem, domain.RulershipTraditional, logger)
	if err != nil {
		p.errorf("re-mapping raw fixture: %v", err)
		return p
	}

	if len(remapped.Bodies) != len(chart.Bodies) {
		p.errorf("body count: remapped %d, fixture %d", len(remapped.Bodies), len(chart.Bodies))
	}
	for _, b := range remapped.Bodies {
		stored, ok := chart.Body(b.Body)
		if !ok {
			p.errorf("%s: present after remap, missing in fixture", b.Body)
			continue
		}
		if !floatEq(b.Longitude, stored.Longitude) {
			p.errorf("%s: longitude remapped %g, fixture %g", b.Body, b.Longitude, stored.Longitude)
		}
		if b.House != stored.House {
			p.errorf("%s: house remapped %d, fixture %d", b.Body, b.House, stored.House)
		}
		if b.Retrograde != stored.Retrograde {
			p.errorf("%s: retrograde flag mismatch", b.Body)
		}
	}

	if len(remapped.Aspects) != len(chart.Aspects) {
		p.errorf("aspect count: remapped %d, fixture %d", len(remapped.Aspects), len(chart.Aspects))
	} else {
		for i := range remapped.Aspects {
			a, b := remapped.Aspects[i], chart.Aspects[i]
			if a.First != b.First || a.Second != b.Second || a.Type != b.Type {
				p.errorf("aspect %d: remapped %s %s %s, fixture %s %s %s",
					i, a.First, a.Type, a.Second, b.First, b.Type, b.Second)
			}
		}
	}

	if !remapped.MappedAt.Equal(chart.MappedAt) {
		p.errorf("mapped_at: remapped %s, fixture %s",
			remapped.MappedAt.Format(time.RFC3339), chart.MappedAt.Format(time.RFC3339))
	}
	return p
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
