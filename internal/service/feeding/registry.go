package feeding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdfeed/internal/domain/models"
	"github.com/mamadbah2/herdfeed/internal/estimation"
	"github.com/mamadbah2/herdfeed/internal/repository/mongodb"
	"github.com/mamadbah2/herdfeed/internal/state"
)

const (
	defaultBreed = "Unknown"
	photoURLFmt  = "https://picsum.photos/seed/%s/200/200"
)

// StateLoader reads the persisted farm state.
type StateLoader interface {
	LoadState(ctx context.Context, key string) (state.Herd, error)
}

// RegisterAnimal validates req and prepends a new animal to the registry.
func (s *Service) RegisterAnimal(ctx context.Context, req models.RegisterAnimalRequest) (models.Animal, error) {
	tag := strings.TrimSpace(req.TagID)
	name := strings.TrimSpace(req.Name)
	if tag == "" || name == "" {
		return models.Animal{}, fmt.Errorf("%w: tag and name are required", estimation.ErrInvalidInput)
	}
	if !validWeight(req.Weight) {
		return models.Animal{}, fmt.Errorf("%w: weight must be a positive number", estimation.ErrInvalidInput)
	}
	group, err := models.ParseGroupID(strings.TrimSpace(req.Group))
	if err != nil {
		return models.Animal{}, fmt.Errorf("%w: %v", estimation.ErrInvalidInput, err)
	}
	sex := models.Sex(strings.TrimSpace(req.Sex))
	if sex == "" {
		sex = models.SexFemale
	}
	if !sex.Valid() {
		return models.Animal{}, fmt.Errorf("%w: unknown sex %q", estimation.ErrInvalidInput, req.Sex)
	}

	now := s.now().UTC()
	breed := strings.TrimSpace(req.Breed)
	if breed == "" {
		breed = defaultBreed
	}
	dob := strings.TrimSpace(req.BirthDate)
	if dob == "" {
		dob = now.Format(time.DateOnly)
	} else if _, err := time.Parse(time.DateOnly, dob); err != nil {
		return models.Animal{}, fmt.Errorf("%w: birth date must be YYYY-MM-DD", estimation.ErrInvalidInput)
	}

	animal := models.Animal{
		ID:            "p-" + s.newID(),
		TagID:         tag,
		Name:          name,
		Group:         group,
		Weight:        req.Weight,
		WeightHistory: []models.WeightPoint{{Date: now, Value: req.Weight}},
		Sex:           sex,
		Breed:         breed,
		BirthDate:     dob,
		IsPregnant:    req.IsPregnant,
		PhotoURL:      fmt.Sprintf(photoURLFmt, tag),
		Status:        models.StatusPending,
	}

	var (
		snapshot state.Herd
		ticket   uint64
	)
	err = s.store.Update(func(h *state.Herd) error {
		h.Animals = append([]models.Animal{animal}, h.Animals...)
		snapshot = h.Clone()
		ticket = s.order.ticket()
		return nil
	})
	if err != nil {
		return models.Animal{}, err
	}

	s.logger.Info("animal registered", zap.String("animal_id", animal.ID), zap.String("tag", tag), zap.String("group", string(group)))
	s.afterCommit(ctx, ticket, snapshot, nil)
	return animal, nil
}

// UpdateAnimal applies the non-nil fields of req. Status and latest intake
// are owned by feed events and never change here.
func (s *Service) UpdateAnimal(ctx context.Context, id string, req models.UpdateAnimalRequest) (models.Animal, error) {
	var group models.GroupID
	if req.Group != nil {
		g, err := models.ParseGroupID(strings.TrimSpace(*req.Group))
		if err != nil {
			return models.Animal{}, fmt.Errorf("%w: %v", estimation.ErrInvalidInput, err)
		}
		group = g
	}
	if req.Weight != nil && !validWeight(*req.Weight) {
		return models.Animal{}, fmt.Errorf("%w: weight must be a positive number", estimation.ErrInvalidInput)
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return models.Animal{}, fmt.Errorf("%w: name cannot be blank", estimation.ErrInvalidInput)
	}

	var (
		updated  models.Animal
		snapshot state.Herd
		ticket   uint64
	)
	err := s.store.Update(func(h *state.Herd) error {
		idx, ok := h.IndexOf(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrAnimalNotFound, id)
		}
		a := &h.Animals[idx]
		if req.Name != nil {
			a.Name = strings.TrimSpace(*req.Name)
		}
		if req.Group != nil {
			a.Group = group
		}
		if req.Weight != nil && *req.Weight != a.Weight {
			a.Weight = *req.Weight
			a.WeightHistory = append(a.WeightHistory, models.WeightPoint{Date: s.now().UTC(), Value: *req.Weight})
		}
		if req.Breed != nil {
			a.Breed = strings.TrimSpace(*req.Breed)
		}
		if req.IsPregnant != nil {
			a.IsPregnant = *req.IsPregnant
		}
		updated = *a
		snapshot = h.Clone()
		ticket = s.order.ticket()
		return nil
	})
	if err != nil {
		return models.Animal{}, err
	}

	s.logger.Info("animal updated", zap.String("animal_id", id))
	s.afterCommit(ctx, ticket, snapshot, nil)
	return updated, nil
}

// ListAnimals returns the registry filtered by f.
func (s *Service) ListAnimals(f models.AnimalFilter) []models.Animal {
	var out []models.Animal
	s.store.Read(func(h *state.Herd) {
		out = h.Filter(f)
	})
	return out
}

// ResetData replaces the registry with generated demo animals and clears
// the event log.
func (s *Service) ResetData(ctx context.Context) state.Herd {
	seed := state.NewSeed(s.now().UTC())

	var ticket uint64
	_ = s.store.Update(func(h *state.Herd) error {
		*h = seed.Clone()
		ticket = s.order.ticket()
		return nil
	})
	s.logger.Warn("farm state reset to seed data", zap.Int("animals", len(seed.Animals)))
	s.afterCommit(ctx, ticket, seed.Clone(), nil)
	return seed
}

// LoadInitialState reads the persisted state. A missing document or a
// failed load falls back to seed data so the service can always start.
func LoadInitialState(ctx context.Context, loader StateLoader, key string, now time.Time, logger *zap.Logger) (state.Herd, bool) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loader == nil {
		return state.NewSeed(now), false
	}

	herd, err := loader.LoadState(ctx, key)
	switch {
	case errors.Is(err, mongodb.ErrStateNotFound):
		logger.Info("no stored state, starting from seed data", zap.String("key", key))
		return state.NewSeed(now), false
	case err != nil:
		logger.Error("failed to load stored state, starting from seed data", zap.String("key", key), zap.Error(err))
		return state.NewSeed(now), false
	}
	if herd.Events == nil {
		herd.Events = []models.FeedEvent{}
	}
	logger.Info("state loaded", zap.String("key", key), zap.Int("animals", len(herd.Animals)), zap.Int("events", len(herd.Events)))
	return herd, true
}

func validWeight(w float64) bool {
	return w > 0 && !math.IsInf(w, 0) && !math.IsNaN(w)
}
