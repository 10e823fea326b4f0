package models

import (
	"fmt"
	"time"
)

// Override tags how an animal participated in one feeding.
type Override string

const (
	OverrideAte     Override = "ate"
	OverridePartial Override = "partial"
	OverrideMissed  Override = "missed"
)

// ParseOverride converts raw text into an Override. Empty input means ate.
func ParseOverride(raw string) (Override, error) {
	switch Override(raw) {
	case "", OverrideAte:
		return OverrideAte, nil
	case OverridePartial:
		return OverridePartial, nil
	case OverrideMissed:
		return OverrideMissed, nil
	default:
		return "", fmt.Errorf("unknown override %q", raw)
	}
}

// AnimalEstimate is the per-animal outcome of one feed event.
type AnimalEstimate struct {
	AnimalID        string     `bson:"id" json:"id"`
	EstimatedKg     float64    `bson:"estimated_kg" json:"estimatedKg"`
	RequiredKg      float64    `bson:"required_kg" json:"requiredKg"`
	CoveragePercent int        `bson:"coverage_percent" json:"coveragePercent"`
	Status          FeedStatus `bson:"status" json:"status"`
}

// FeedEvent is an immutable record of one bulk delivery to a group.
type FeedEvent struct {
	ID         string              `bson:"id" json:"id"`
	Timestamp  time.Time           `bson:"timestamp" json:"timestamp"`
	Group      GroupID             `bson:"group" json:"group"`
	FeedType   string              `bson:"feed_type" json:"feedType"`
	TotalKg    float64             `bson:"total_kg" json:"totalKg"`
	Method     string              `bson:"method" json:"method"`
	RecordedBy string              `bson:"recorded_by" json:"recordedBy"`
	Overrides  map[string]Override `bson:"overrides" json:"overrides"`
	Estimates  []AnimalEstimate    `bson:"estimates" json:"estimates"`
}

// CountStatus returns how many estimates carry the given status.
func (e FeedEvent) CountStatus(status FeedStatus) int {
	n := 0
	for _, est := range e.Estimates {
		if est.Status == status {
			n++
		}
	}
	return n
}

// RecordFeedingRequest is the operator input for recording a feeding.
type RecordFeedingRequest struct {
	Group      string            `json:"group" binding:"required"`
	FeedType   string            `json:"feedType" binding:"required"`
	TotalKg    *float64          `json:"totalKg" binding:"required"`
	Overrides  map[string]string `json:"overrides"`
	RecordedBy string            `json:"recordedBy"`
}
