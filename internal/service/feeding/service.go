// Package feeding is the single writer of the farm state. It validates
// operator input, runs the estimation engine, commits the result and only
// then fires the side effects (persistence, ledger, alerts, advisory).
package feeding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdfeed/internal/domain/models"
	"github.com/mamadbah2/herdfeed/internal/domain/reference"
	"github.com/mamadbah2/herdfeed/internal/estimation"
	"github.com/mamadbah2/herdfeed/internal/metrics"
	"github.com/mamadbah2/herdfeed/internal/service/reporting"
	"github.com/mamadbah2/herdfeed/internal/state"
)

// ErrUnknownFeedType is returned when a feed type matches neither id nor name.
var ErrUnknownFeedType = fmt.Errorf("%w: unknown feed type", estimation.ErrInvalidInput)

// ErrAnimalNotFound is returned when an edit targets a missing animal.
var ErrAnimalNotFound = errors.New("animal not found")

const (
	feedingMethod     = "Manual Trough"
	defaultRecorder   = "Admin User"
	sideEffectTimeout = 10 * time.Second
)

// StateSaver persists the whole farm state.
type StateSaver interface {
	SaveState(ctx context.Context, key string, herd state.Herd) error
}

// Ledger mirrors feed events somewhere outside the service.
type Ledger interface {
	AppendFeedEvent(ctx context.Context, event models.FeedEvent) error
}

// Notifier delivers alerts to the farm manager.
type Notifier interface {
	NotifyManager(ctx context.Context, message string) error
}

// AdvisoryTrigger schedules an advisory refresh without waiting for it.
type AdvisoryTrigger interface {
	Trigger(snapshot models.HerdSnapshot)
}

// Dependencies are the optional side effects run after a committed change.
// Any of them may be nil.
type Dependencies struct {
	Saver    StateSaver
	StateKey string
	Ledger   Ledger
	Notifier Notifier
	Advisory AdvisoryTrigger
	Metrics  *metrics.Metrics
}

// Service implements feed recording and registry edits.
type Service struct {
	store  *state.Store
	ref    *reference.Registry
	deps   Dependencies
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
	order  *commitOrder
	alerts sync.WaitGroup
}

// NewService constructs a feeding service over store.
func NewService(store *state.Store, ref *reference.Registry, deps Dependencies, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.StateKey == "" {
		deps.StateKey = state.DefaultKey
	}
	return &Service{
		store:  store,
		ref:    ref,
		deps:   deps,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
		order:  newCommitOrder(),
	}
}

// RecordFeeding estimates per-animal intake for one delivery, appends the
// event and updates every animal of the group. Invalid input is rejected
// before anything is recorded.
func (s *Service) RecordFeeding(ctx context.Context, req models.RecordFeedingRequest) (models.FeedEvent, error) {
	group, err := models.ParseGroupID(strings.TrimSpace(req.Group))
	if err != nil {
		return models.FeedEvent{}, fmt.Errorf("%w: %v", estimation.ErrInvalidInput, err)
	}
	profile, err := s.ref.Group(group)
	if err != nil {
		return models.FeedEvent{}, fmt.Errorf("%w: %v", estimation.ErrInvalidInput, err)
	}
	feedType, ok := s.ref.FeedType(req.FeedType)
	if !ok {
		return models.FeedEvent{}, fmt.Errorf("%w %q", ErrUnknownFeedType, req.FeedType)
	}
	if req.TotalKg == nil {
		return models.FeedEvent{}, fmt.Errorf("%w: total kg is required", estimation.ErrInvalidInput)
	}

	overrides := make(map[string]models.Override, len(req.Overrides))
	for id, raw := range req.Overrides {
		o, err := models.ParseOverride(raw)
		if err != nil {
			return models.FeedEvent{}, fmt.Errorf("%w: animal %s: %v", estimation.ErrInvalidInput, id, err)
		}
		overrides[id] = o
	}

	recordedBy := strings.TrimSpace(req.RecordedBy)
	if recordedBy == "" {
		recordedBy = defaultRecorder
	}

	var (
		event    models.FeedEvent
		snapshot state.Herd
		ticket   uint64
	)
	err = s.store.Update(func(h *state.Herd) error {
		animals := h.GroupAnimals(group)

		scoped := make(map[string]models.Override, len(overrides))
		for _, a := range animals {
			if o, ok := overrides[a.ID]; ok {
				scoped[a.ID] = o
			}
		}
		if len(scoped) != len(overrides) {
			s.logger.Debug("ignoring overrides for animals outside the group",
				zap.String("group", string(group)), zap.Int("ignored", len(overrides)-len(scoped)))
		}

		estimates, err := estimation.Evaluate(animals, profile, *req.TotalKg, scoped)
		if err != nil {
			return err
		}

		event = models.FeedEvent{
			ID:         s.newID(),
			Timestamp:  s.now().UTC(),
			Group:      group,
			FeedType:   feedType.Name,
			TotalKg:    *req.TotalKg,
			Method:     feedingMethod,
			RecordedBy: recordedBy,
			Overrides:  scoped,
			Estimates:  estimates,
		}
		h.Apply(event)
		snapshot = h.Clone()
		ticket = s.order.ticket()
		return nil
	})
	if err != nil {
		return models.FeedEvent{}, err
	}

	if len(event.Estimates) == 0 && event.TotalKg > 0 {
		s.logger.Warn("feeding recorded for a group without animals",
			zap.String("group", string(group)), zap.Float64("total_kg", event.TotalKg))
	}

	underfed := event.CountStatus(models.StatusUnderfed)
	s.logger.Info("feeding recorded",
		zap.String("event_id", event.ID),
		zap.String("group", string(group)),
		zap.String("feed_type", event.FeedType),
		zap.Float64("total_kg", event.TotalKg),
		zap.Int("animals", len(event.Estimates)),
		zap.Int("underfed", underfed))

	s.afterCommit(ctx, ticket, snapshot, &event)
	if underfed > 0 {
		s.alert(fmt.Sprintf("%d pigs underfed in %s group.", underfed, group))
	}

	return event, nil
}

// Events returns the feed event log, newest first.
func (s *Service) Events(limit int) []models.FeedEvent {
	var out []models.FeedEvent
	s.store.Read(func(h *state.Herd) {
		out = h.Recent(limit)
	})
	return out
}

// Wait blocks until background alerts have been delivered or dropped.
func (s *Service) Wait() {
	s.alerts.Wait()
}

// afterCommit runs the side effects every committed change shares. They run
// in commit order; event is nil for registry edits.
func (s *Service) afterCommit(ctx context.Context, ticket uint64, snapshot state.Herd, event *models.FeedEvent) {
	s.order.run(ticket, func() {
		if event != nil {
			s.deps.Metrics.ObserveFeedEvent(*event)
		}
		s.deps.Metrics.SetStatusCounts(reporting.CountStatuses(snapshot.Animals))
		if s.deps.Advisory != nil {
			s.deps.Advisory.Trigger(snapshot.Snapshot())
		}

		s.persist(ctx, snapshot)
		if event != nil {
			s.appendLedger(ctx, *event)
		}
	})
}

func (s *Service) persist(ctx context.Context, snapshot state.Herd) {
	if s.deps.Saver == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := s.deps.Saver.SaveState(saveCtx, s.deps.StateKey, snapshot); err != nil {
		s.deps.Metrics.PersistFailed()
		s.logger.Error("failed to persist state", zap.String("key", s.deps.StateKey), zap.Error(err))
	}
}

func (s *Service) appendLedger(ctx context.Context, event models.FeedEvent) {
	if s.deps.Ledger == nil {
		return
	}
	ledgerCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := s.deps.Ledger.AppendFeedEvent(ledgerCtx, event); err != nil {
		s.logger.Error("failed to append feed event to ledger", zap.String("event_id", event.ID), zap.Error(err))
	}
}

func (s *Service) alert(message string) {
	if s.deps.Notifier == nil {
		s.logger.Warn("underfed alert not delivered, no notifier configured", zap.String("alert", message))
		return
	}

	s.alerts.Add(1)
	go func() {
		defer s.alerts.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.deps.Notifier.NotifyManager(ctx, message); err != nil {
			s.logger.Error("failed to send underfed alert", zap.String("alert", message), zap.Error(err))
			return
		}
		s.logger.Info("underfed alert sent", zap.String("alert", message))
	}()
}
