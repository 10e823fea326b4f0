package state

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/mamadbah2/herdfeed/internal/domain/models"
)

func sampleHerd() Herd {
	return Herd{Animals: []models.Animal{
		{ID: "a", TagID: "TAG-1", Name: "Rosie", Group: models.GroupGrower, Weight: 20, Status: models.StatusPending},
		{ID: "b", TagID: "TAG-2", Name: "Hamlet", Group: models.GroupGrower, Weight: 80, Status: models.StatusPending},
		{ID: "c", TagID: "TAG-3", Name: "Babe", Group: models.GroupPiglet, Weight: 12, Status: models.StatusPending},
	}}
}

func TestApplyOverwritesLatestStatus(t *testing.T) {
	h := sampleHerd()

	h.Apply(models.FeedEvent{ID: "e1", Group: models.GroupGrower, Estimates: []models.AnimalEstimate{
		{AnimalID: "a", EstimatedKg: 0.4, Status: models.StatusUnderfed},
		{AnimalID: "b", EstimatedKg: 1.6, Status: models.StatusUnderfed},
	}})
	h.Apply(models.FeedEvent{ID: "e2", Group: models.GroupGrower, Estimates: []models.AnimalEstimate{
		{AnimalID: "a", EstimatedKg: 0.7, Status: models.StatusOK},
		{AnimalID: "b", EstimatedKg: 0, Status: models.StatusMissed},
	}})

	if h.Animals[0].Status != models.StatusOK || h.Animals[0].LastIntakeKg != 0.7 {
		t.Fatalf("animal a not overwritten: %+v", h.Animals[0])
	}
	if h.Animals[1].Status != models.StatusMissed || h.Animals[1].LastIntakeKg != 0 {
		t.Fatalf("animal b not overwritten: %+v", h.Animals[1])
	}
	if h.Animals[2].Status != models.StatusPending {
		t.Fatalf("other group must not change: %+v", h.Animals[2])
	}
	if len(h.Events) != 2 || h.Events[0].ID != "e1" {
		t.Fatalf("events should be kept in creation order: %+v", h.Events)
	}
	if recent := h.Recent(1); len(recent) != 1 || recent[0].ID != "e2" {
		t.Fatalf("recent should start with newest: %+v", recent)
	}
}

func TestFilter(t *testing.T) {
	h := sampleHerd()
	h.Animals[1].Status = models.StatusUnderfed

	if got := h.Filter(models.AnimalFilter{Search: "tag-3"}); len(got) != 1 || got[0].ID != "c" {
		t.Fatalf("search by tag: %+v", got)
	}
	if got := h.Filter(models.AnimalFilter{Search: "ham"}); len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("search by name: %+v", got)
	}
	if got := h.Filter(models.AnimalFilter{Group: models.GroupGrower}); len(got) != 2 {
		t.Fatalf("group filter: %+v", got)
	}
	if got := h.Filter(models.AnimalFilter{Status: models.StatusUnderfed}); len(got) != 1 {
		t.Fatalf("status filter: %+v", got)
	}
}

func TestSnapshot(t *testing.T) {
	h := sampleHerd()
	h.Animals[0].Status = models.StatusUnderfed

	snap := h.Snapshot()
	if snap.Count != 3 || snap.UnderfedCount != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.AvgWeight != 112.0/3 {
		t.Fatalf("avg weight %v", snap.AvgWeight)
	}
	if len(snap.DistinctGroups) != 2 {
		t.Fatalf("distinct groups %v", snap.DistinctGroups)
	}

	empty := (&Herd{}).Snapshot()
	if empty.Count != 0 || empty.AvgWeight != 0 {
		t.Fatalf("empty snapshot %+v", empty)
	}
}

func TestStoreUpdateRollsBackOnError(t *testing.T) {
	store := NewStore(sampleHerd())

	err := store.Update(func(h *Herd) error {
		h.Animals[0].Name = "changed"
		return errors.New("boom")
	})
	if err == nil {
		t.Fatalf("expected error")
	}

	store.Read(func(h *Herd) {
		if h.Animals[0].Name != "Rosie" {
			t.Fatalf("failed update leaked changes")
		}
	})

	if err := store.Update(func(h *Herd) error {
		h.Animals[0].Name = "changed"
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if snap := store.Snapshot(); snap.Animals[0].Name != "changed" {
		t.Fatalf("successful update not kept")
	}
}

func TestCloneIsDeep(t *testing.T) {
	h := sampleHerd()
	h.Apply(models.FeedEvent{ID: "e", Overrides: map[string]models.Override{"a": models.OverrideMissed},
		Estimates: []models.AnimalEstimate{{AnimalID: "a"}}})

	c := h.Clone()
	c.Events[0].Overrides["a"] = models.OverrideAte
	c.Events[0].Estimates[0].EstimatedKg = 9

	if h.Events[0].Overrides["a"] != models.OverrideMissed || h.Events[0].Estimates[0].EstimatedKg != 0 {
		t.Fatalf("clone shares memory with original")
	}
}

func TestGenerateSeedIsDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := GenerateSeed(rand.New(rand.NewPCG(7, 11)), now)
	b := GenerateSeed(rand.New(rand.NewPCG(7, 11)), now)

	if len(a.Animals) != SeedSize {
		t.Fatalf("expected %d animals, got %d", SeedSize, len(a.Animals))
	}
	for i := range a.Animals {
		if a.Animals[i].Group != b.Animals[i].Group || a.Animals[i].Weight != b.Animals[i].Weight {
			t.Fatalf("seed differs at %d", i)
		}
		x := a.Animals[i]
		if x.Weight < 10 || x.Weight > 120 {
			t.Fatalf("weight out of range: %v", x.Weight)
		}
		if x.IsPregnant != (x.Group == models.GroupPregnant) {
			t.Fatalf("pregnancy flag mismatch for %s", x.ID)
		}
		if x.Status != models.StatusPending {
			t.Fatalf("seed animals start pending")
		}
	}
	if a.Animals[0].TagID != "TAG-1001" || a.Animals[0].ID != "p-1" {
		t.Fatalf("unexpected identifiers %+v", a.Animals[0])
	}
}
