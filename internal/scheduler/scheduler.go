package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdfeed/internal/config"
	"github.com/mamadbah2/herdfeed/internal/export"
)

const jobTimeout = 2 * time.Minute

// ReportSource renders the periodic summaries.
type ReportSource interface {
	WeeklySummary() string
	ExportCSV(w io.Writer) (string, error)
}

// Notifier delivers text to the farm manager.
type Notifier interface {
	NotifyManager(ctx context.Context, message string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.ReportingConfig
	reports  ReportSource
	notifier Notifier
	sink     export.Sink
	logger   *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone.
// notifier and sink may be nil; their jobs are then skipped.
func NewScheduler(cfg config.ReportingConfig, reports ReportSource, notifier Notifier, sink export.Sink, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		cfg:      cfg,
		reports:  reports,
		notifier: notifier,
		sink:     sink,
		logger:   logger,
	}, nil
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	if s.notifier != nil {
		if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runJob("weekly report", s.SendWeeklyReport)); err != nil {
			return fmt.Errorf("schedule weekly report %q: %w", s.cfg.CronSchedule, err)
		}
	} else {
		s.logger.Warn("no notifier configured, weekly report disabled")
	}

	if s.sink != nil {
		if _, err := s.cron.AddFunc(s.cfg.ExportCronSchedule, s.runJob("registry export", s.ExportRegistry)); err != nil {
			return fmt.Errorf("schedule registry export %q: %w", s.cfg.ExportCronSchedule, err)
		}
	} else {
		s.logger.Info("no export sink configured, nightly export disabled")
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// SendWeeklyReport sends the seven-day summary to the manager.
func (s *Scheduler) SendWeeklyReport(ctx context.Context) error {
	if s.notifier == nil {
		return errors.New("no notifier configured")
	}
	if err := s.notifier.NotifyManager(ctx, s.reports.WeeklySummary()); err != nil {
		return fmt.Errorf("send weekly report: %w", err)
	}
	return nil
}

// ExportRegistry writes the registry CSV to the export sink.
func (s *Scheduler) ExportRegistry(ctx context.Context) error {
	if s.sink == nil {
		return errors.New("no export sink configured")
	}
	var buf bytes.Buffer
	name, err := s.reports.ExportCSV(&buf)
	if err != nil {
		return fmt.Errorf("render export: %w", err)
	}
	if err := s.sink.Put(ctx, name, buf.Bytes()); err != nil {
		return fmt.Errorf("store export %s: %w", name, err)
	}
	s.logger.Info("registry exported", zap.String("file", name), zap.Int("bytes", buf.Len()))
	return nil
}

func (s *Scheduler) runJob(name string, job func(context.Context) error) func() {
	return func() {
		s.logger.Info("running scheduled job", zap.String("job", name))
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if err := job(ctx); err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.logger.Info("scheduled job finished", zap.String("job", name))
	}
}
