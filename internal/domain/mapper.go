package domain

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// houseOrdinals translates providers that identify houses by ordinal name.
// Keys are lowercased with any trailing " house" stripped.
var houseOrdinals = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4,
	"fifth": 5, "sixth": 6, "seventh": 7, "eighth": 8,
	"ninth": 9, "tenth": 10, "eleventh": 11, "twelfth": 12,
}

// MapChart builds a complete NatalChart from a provider's raw response.
//
// Fatal conditions surface as a *MappingError naming the offending field:
// fewer or more than 12 distinct houses, a tracked body without a usable
// longitude, or a missing Ascendant when the house system needs one. Aspect
// and ruler level problems degrade by omission: aspects referencing untracked
// participants are logged and dropped, and houses whose ruling body is absent
// from the response simply get no ruler entry.
func MapChart(raw RawChart, birth BirthData, houseSystem HouseSystem, scheme RulershipScheme, logger *slog.Logger) (NatalChart, error) {
	cusps, err := mapHouses(raw.Houses)
	if err != nil {
		return NatalChart{}, err
	}

	bodies, err := mapBodies(raw.Bodies, cusps, logger)
	if err != nil {
		return NatalChart{}, err
	}

	angles, err := mapAngles(raw.Angles, houseSystem)
	if err != nil {
		return NatalChart{}, err
	}

	aspects := mapAspects(raw.Aspects, logger)
	rulers := deriveRulers(cusps, bodies, scheme)

	return NatalChart{
		ID:          uuid.NewString(),
		Birth:       birth,
		Bodies:      bodies,
		Houses:      cusps,
		Aspects:     RankAspects(aspects),
		Rulers:      rulers,
		Angles:      angles,
		HouseSystem: houseSystem,
		MappedAt:    clock.Now().UTC(),
	}, nil
}

// mapBodies normalizes every tracked body entry and appends the locally
// derived South Node. Untracked names (asteroids, arabic parts) are dropped;
// duplicates keep the first occurrence. A provider-supplied South Node is
// discarded so the derived one stays exactly opposite the True Node.
func mapBodies(rawBodies []RawBody, cusps []HouseCusp, logger *slog.Logger) ([]CelestialBody, error) {
	bodies := make([]CelestialBody, 0, len(rawBodies)+1)
	seen := make(map[Body]bool, len(rawBodies))

	for _, rb := range rawBodies {
		body, ok := ParseBody(rb.Name)
		if !ok {
			logger.Debug("dropping untracked body", "name", rb.Name)
			continue
		}
		if body == BodySouthNode {
			logger.Debug("discarding provider south node; derived locally")
			continue
		}
		if seen[body] {
			logger.Debug("dropping duplicate body entry", "body", body)
			continue
		}

		if rb.Longitude == nil {
			return nil, &MappingError{Field: rb.Name + ".longitude", Reason: "absent"}
		}
		if math.IsNaN(*rb.Longitude) || math.IsInf(*rb.Longitude, 0) {
			return nil, &MappingError{Field: rb.Name + ".longitude", Reason: "not a finite number"}
		}

		lon := NormalizeLongitude(*rb.Longitude)
		house := rb.House
		if house < 1 || house > 12 {
			house = HouseForLongitude(cusps, lon)
		}

		seen[body] = true
		bodies = append(bodies, CelestialBody{
			Body:       body,
			Longitude:  lon,
			Latitude:   rb.Latitude,
			Sign:       SignFromLongitude(lon),
			House:      house,
			Retrograde: strings.EqualFold(strings.TrimSpace(rb.Retrograde), "true"),
			Speed:      rb.Speed,
		})
	}

	if south, ok := deriveSouthNode(bodies, cusps); ok {
		bodies = append(bodies, south)
	}

	return bodies, nil
}

// deriveSouthNode computes the South Node from the True Node's longitude plus
// 180 degrees. Nodes sit on the ecliptic, so latitude is zero; speed and
// retrograde motion mirror the True Node. Returns false when the response
// carried no True Node.
func deriveSouthNode(bodies []CelestialBody, cusps []HouseCusp) (CelestialBody, bool) {
	for _, b := range bodies {
		if b.Body != BodyTrueNode {
			continue
		}
		lon := NormalizeLongitude(b.Longitude + 180)
		return CelestialBody{
			Body:       BodySouthNode,
			Longitude:  lon,
			Latitude:   0,
			Sign:       SignFromLongitude(lon),
			House:      HouseForLongitude(cusps, lon),
			Retrograde: b.Retrograde,
			Speed:      b.Speed,
		}, true
	}
	return CelestialBody{}, false
}

// mapHouses parses the cusp list and enforces the exactly-12 invariant.
func mapHouses(rawHouses []RawHouse) ([]HouseCusp, error) {
	cusps := make([]HouseCusp, 0, 12)
	seen := make(map[int]bool, 12)

	for _, rh := range rawHouses {
		num, ok := parseHouseLabel(rh.Label)
		if !ok {
			return nil, &MappingError{Field: "houses", Reason: "unrecognized house label " + strconv.Quote(rh.Label)}
		}
		if seen[num] {
			return nil, &MappingError{Field: "houses", Reason: "duplicate house " + strconv.Itoa(num)}
		}
		if rh.Longitude == nil {
			return nil, &MappingError{Field: "houses", Reason: "house " + strconv.Itoa(num) + " cusp longitude absent"}
		}

		lon := NormalizeLongitude(*rh.Longitude)
		seen[num] = true
		cusps = append(cusps, HouseCusp{
			House:     num,
			Longitude: lon,
			Sign:      SignFromLongitude(lon),
		})
	}

	if len(cusps) != 12 {
		return nil, &MappingError{Field: "houses", Reason: strconv.Itoa(len(cusps)) + " distinct houses, want 12"}
	}
	return cusps, nil
}

// parseHouseLabel accepts a numeric house label ("1".."12") or an ordinal
// name ("First House", "tenth"), case-insensitively.
func parseHouseLabel(label string) (int, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	if n, err := strconv.Atoi(label); err == nil {
		return n, n >= 1 && n <= 12
	}
	label = strings.TrimSuffix(label, " house")
	n, ok := houseOrdinals[label]
	return n, ok
}

// mapAngles extracts the Ascendant and Midheaven. Name matching is
// case-insensitive; "MC" is accepted as a Midheaven synonym and "ASC" for the
// Ascendant. A missing Ascendant is fatal when the house system anchors to
// it; a missing Midheaven degrades to zero.
func mapAngles(rawAngles []RawAngle, houseSystem HouseSystem) (ChartAngles, error) {
	var angles ChartAngles
	var haveAsc bool

	for _, ra := range rawAngles {
		switch strings.ToLower(strings.TrimSpace(ra.Name)) {
		case "ascendant", "asc":
			angles.Ascendant = NormalizeLongitude(ra.Longitude)
			haveAsc = true
		case "midheaven", "mc":
			angles.Midheaven = NormalizeLongitude(ra.Longitude)
		}
	}

	if !haveAsc && houseSystem.RequiresAscendant() {
		return ChartAngles{}, &MappingError{Field: "ascendant", Reason: "absent but required by house system " + string(houseSystem)}
	}
	return angles, nil
}

// mapAspects parses aspect entries, dropping (not failing) anything that
// references a participant outside the tracked body set, an unrecognized
// aspect type, or a self-aspect. Providers routinely include asteroid
// participants the domain does not model.
func mapAspects(rawAspects []RawAspect, logger *slog.Logger) []Aspect {
	aspects := make([]Aspect, 0, len(rawAspects))

	for _, ra := range rawAspects {
		first, ok := ParseBody(ra.First)
		if !ok {
			logger.Debug("dropping aspect with untracked participant", "participant", ra.First, "type", ra.Type)
			continue
		}
		second, ok := ParseBody(ra.Second)
		if !ok {
			logger.Debug("dropping aspect with untracked participant", "participant", ra.Second, "type", ra.Type)
			continue
		}
		if first == second {
			logger.Debug("dropping self-aspect", "body", first, "type", ra.Type)
			continue
		}
		aspectType, ok := ParseAspectType(ra.Type)
		if !ok {
			logger.Debug("dropping aspect with unrecognized type", "type", ra.Type)
			continue
		}

		aspects = append(aspects, Aspect{
			First:    first,
			Second:   second,
			Type:     aspectType,
			Orb:      math.Abs(ra.Orb),
			Applying: ra.Applying,
		})
	}

	return aspects
}

// deriveRulers computes the house-ruler cross-references. Houses whose ruling
// body did not survive body mapping are omitted.
func deriveRulers(cusps []HouseCusp, bodies []CelestialBody, scheme RulershipScheme) []HouseRuler {
	positions := make(map[Body]CelestialBody, len(bodies))
	for _, b := range bodies {
		positions[b.Body] = b
	}

	rulers := make([]HouseRuler, 0, 12)
	for h := 1; h <= 12; h++ {
		for _, c := range cusps {
			if c.House != h {
				continue
			}
			ruler := Ruler(c.Sign, scheme)
			pos, ok := positions[ruler]
			if !ok {
				break
			}
			rulers = append(rulers, HouseRuler{
				House:     h,
				Ruler:     ruler,
				Sign:      pos.Sign,
				RulerIn:   pos.House,
				Longitude: pos.Longitude,
			})
			break
		}
	}
	return rulers
}
