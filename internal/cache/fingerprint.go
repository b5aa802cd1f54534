package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/astrolark/natal-chart-service/internal/domain"
)

// Fingerprint produces the canonical storage key for a chart subject. The
// canonical form quantizes exactly like the tolerant matching rule observes:
// date to the day, time to the second, location lowercased, coordinates to
// four decimals. Deterministic keys make Save an idempotent upsert; saving
// the same subject twice can never create a duplicate record.
func Fingerprint(birth domain.BirthData, houseSystem domain.HouseSystem) string {
	t := birth.BirthTime

	coord := "none"
	if birth.Coordinate != nil {
		coord = fmt.Sprintf("%.4f,%.4f", birth.Coordinate.Lat, birth.Coordinate.Lon)
	}

	input := fmt.Sprintf("%04d-%02d-%02d|%02d:%02d:%02d|%s|%s|%s|%s",
		t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(),
		strings.ToLower(strings.TrimSpace(birth.Location)),
		birth.Timezone,
		coord,
		houseSystem,
	)

	hash := sha256.Sum256([]byte(input))
	return "chart-" + hex.EncodeToString(hash[:16])
}
