package domain

import (
	"math"
	"sort"
)

// orbTieTolerance is the orb difference under which two aspects are
// considered equally exact, letting type precedence decide their order.
const orbTieTolerance = 0.1

// RankAspects returns the aspects in report order without touching the input
// slice. Primary key is orb ascending; when two orbs are within
// orbTieTolerance of each other, the fixed aspect-type precedence applies.
// Ranking is stable: ties beyond both keys preserve input order.
func RankAspects(aspects []Aspect) []Aspect {
	ranked := make([]Aspect, len(aspects))
	copy(ranked, aspects)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Orb < ranked[j].Orb
	})

	// Resolve near-ties by precedence with adjacent swaps only. Every swap
	// exchanges two aspects whose orbs differ by at most the tolerance, so an
	// aspect can never move past one more than the tolerance tighter.
	for swapped := true; swapped; {
		swapped = false
		for i := 1; i < len(ranked); i++ {
			a, b := ranked[i-1], ranked[i]
			if math.Abs(a.Orb-b.Orb) <= orbTieTolerance &&
				aspectPrecedence[b.Type] < aspectPrecedence[a.Type] {
				ranked[i-1], ranked[i] = b, a
				swapped = true
			}
		}
	}

	return ranked
}
