package estimation

import (
	"math"

	"github.com/mamadbah2/herdfeed/internal/domain/models"
)

// UnderfedThreshold is the minimum coverage ratio an animal needs to be OK.
const UnderfedThreshold = 0.85

// Classification is the status verdict for one animal.
type Classification struct {
	Status          models.FeedStatus
	CoveragePercent int
}

// Classify derives a status from required and estimated intake. A missed
// override wins over any numeric coverage. Zero requirement counts as fully
// covered.
func Classify(requiredKg, estimatedKg float64, override models.Override) Classification {
	coverage := 1.0
	if requiredKg > 0 {
		coverage = estimatedKg / requiredKg
	}

	c := Classification{CoveragePercent: coveragePercent(coverage)}

	switch {
	case override == models.OverrideMissed:
		c.Status = models.StatusMissed
	case coverage < UnderfedThreshold:
		c.Status = models.StatusUnderfed
	default:
		c.Status = models.StatusOK
	}
	return c
}

func coveragePercent(coverage float64) int {
	if math.IsNaN(coverage) || coverage <= 0 {
		return 0
	}
	pct := math.Round(math.Min(coverage, 1) * 100)
	return int(math.Max(0, math.Min(pct, 100)))
}
