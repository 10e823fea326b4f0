// Package estimation imputes per-animal intake from a single bulk feeding and
// classifies the resulting nutritional status. Everything here is pure: no
// I/O, no clocks, no shared state.
package estimation

import (
	"errors"
	"fmt"
	"math"

	"github.com/mamadbah2/herdfeed/internal/domain/models"
)

// ErrInvalidInput marks inputs the engine refuses to estimate.
var ErrInvalidInput = errors.New("invalid input")

// Share is the raw allocation for one animal before classification.
type Share struct {
	AnimalID    string
	Override    models.Override
	EstimatedKg float64
	RequiredKg  float64
}

// Multiplier maps an override onto its participation weight.
func Multiplier(o models.Override) float64 {
	switch o {
	case models.OverrideMissed:
		return 0
	case models.OverridePartial:
		return 0.5
	default:
		return 1
	}
}

// Distribute splits totalKg across animals in proportion to their effective
// weight (body weight scaled by the override multiplier). Shares freed by
// partial or missed animals go to the rest of the group; the pool never
// shrinks. When no animal carries effective weight every share is zero.
func Distribute(animals []models.Animal, profile models.GroupProfile, totalKg float64, overrides map[string]models.Override) ([]Share, error) {
	if math.IsNaN(totalKg) || math.IsInf(totalKg, 0) || totalKg < 0 {
		return nil, fmt.Errorf("%w: total kg must be a non-negative number, got %v", ErrInvalidInput, totalKg)
	}
	if !(profile.RationPerKg > 0) {
		return nil, fmt.Errorf("%w: group %s has no positive ration coefficient", ErrInvalidInput, profile.ID)
	}

	shares := make([]Share, len(animals))
	effective := make([]float64, len(animals))
	var effectiveSum float64

	for i, a := range animals {
		if math.IsNaN(a.Weight) || a.Weight < 0 {
			return nil, fmt.Errorf("%w: animal %s has invalid weight %v", ErrInvalidInput, a.ID, a.Weight)
		}

		override := overrides[a.ID]
		if override == "" {
			override = models.OverrideAte
		}

		effective[i] = a.Weight * Multiplier(override)
		effectiveSum += effective[i]

		shares[i] = Share{
			AnimalID:   a.ID,
			Override:   override,
			RequiredKg: a.Weight * profile.RationPerKg,
		}
	}

	if effectiveSum > 0 {
		for i := range shares {
			shares[i].EstimatedKg = totalKg * effective[i] / effectiveSum
		}
	}

	return shares, nil
}

// Evaluate runs Distribute and classifies every share, preserving animal order.
func Evaluate(animals []models.Animal, profile models.GroupProfile, totalKg float64, overrides map[string]models.Override) ([]models.AnimalEstimate, error) {
	shares, err := Distribute(animals, profile, totalKg, overrides)
	if err != nil {
		return nil, err
	}

	out := make([]models.AnimalEstimate, 0, len(shares))
	for _, s := range shares {
		c := Classify(s.RequiredKg, s.EstimatedKg, s.Override)
		out = append(out, models.AnimalEstimate{
			AnimalID:        s.AnimalID,
			EstimatedKg:     s.EstimatedKg,
			RequiredKg:      s.RequiredKg,
			CoveragePercent: c.CoveragePercent,
			Status:          c.Status,
		})
	}
	return out, nil
}
