// Package state holds the farm's in-memory registry and feed event log.
package state

import (
	"strings"

	"github.com/mamadbah2/herdfeed/internal/domain/models"
)

// DefaultKey is the storage identifier the whole state is saved under.
const DefaultKey = "liveshock_v1_storage"

// Herd is the application state: the animal registry in display order and
// the feed event log in creation order.
type Herd struct {
	Animals []models.Animal    `bson:"pigs" json:"pigs"`
	Events  []models.FeedEvent `bson:"feed_events" json:"feedEvents"`
}

// GroupAnimals returns copies of every animal currently in group.
func (h *Herd) GroupAnimals(group models.GroupID) []models.Animal {
	var out []models.Animal
	for _, a := range h.Animals {
		if a.Group == group {
			out = append(out, a)
		}
	}
	return out
}

// IndexOf returns the registry position of the animal with id.
func (h *Herd) IndexOf(id string) (int, bool) {
	for i, a := range h.Animals {
		if a.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Apply appends event to the log and overwrites the latest intake and status
// of every animal it covers.
func (h *Herd) Apply(event models.FeedEvent) {
	byID := make(map[string]models.AnimalEstimate, len(event.Estimates))
	for _, est := range event.Estimates {
		byID[est.AnimalID] = est
	}

	for i := range h.Animals {
		est, ok := byID[h.Animals[i].ID]
		if !ok {
			continue
		}
		h.Animals[i].LastIntakeKg = est.EstimatedKg
		h.Animals[i].Status = est.Status
	}

	h.Events = append(h.Events, event)
}

// Recent returns up to limit events, newest first. limit <= 0 returns all.
func (h *Herd) Recent(limit int) []models.FeedEvent {
	n := len(h.Events)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.FeedEvent, 0, n)
	for i := len(h.Events) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h.Events[i])
	}
	return out
}

// Filter lists animals matching f in registry order.
func (h *Herd) Filter(f models.AnimalFilter) []models.Animal {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Animal, 0, len(h.Animals))
	for _, a := range h.Animals {
		if search != "" &&
			!strings.Contains(strings.ToLower(a.TagID), search) &&
			!strings.Contains(strings.ToLower(a.Name), search) {
			continue
		}
		if f.Group != "" && a.Group != f.Group {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Snapshot summarises the registry for the advisory generator.
func (h *Herd) Snapshot() models.HerdSnapshot {
	snap := models.HerdSnapshot{Count: len(h.Animals)}
	if snap.Count == 0 {
		return snap
	}

	var totalWeight float64
	seen := make(map[models.GroupID]bool)
	for _, a := range h.Animals {
		totalWeight += a.Weight
		if a.Status == models.StatusUnderfed {
			snap.UnderfedCount++
		}
		if !seen[a.Group] {
			seen[a.Group] = true
			snap.DistinctGroups = append(snap.DistinctGroups, string(a.Group))
		}
	}

	snap.AvgWeight = totalWeight / float64(snap.Count)
	snap.UnderfedRatePercent = float64(snap.UnderfedCount) / float64(snap.Count) * 100
	return snap
}

// Clone returns a deep copy safe to hand to another goroutine.
func (h *Herd) Clone() Herd {
	out := Herd{
		Animals: make([]models.Animal, len(h.Animals)),
		Events:  make([]models.FeedEvent, len(h.Events)),
	}
	for i, a := range h.Animals {
		a.WeightHistory = append([]models.WeightPoint(nil), a.WeightHistory...)
		out.Animals[i] = a
	}
	for i, e := range h.Events {
		e.Estimates = append([]models.AnimalEstimate(nil), e.Estimates...)
		if e.Overrides != nil {
			overrides := make(map[string]models.Override, len(e.Overrides))
			for k, v := range e.Overrides {
				overrides[k] = v
			}
			e.Overrides = overrides
		}
		out.Events[i] = e
	}
	return out
}
