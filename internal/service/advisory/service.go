// Package advisory keeps an up-to-date management tip for the herd. Requests
// run in the background, debounced, and never block feed recording.
package advisory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdfeed/internal/domain/models"
	"github.com/mamadbah2/herdfeed/pkg/clients/anthropic"
)

const (
	PendingText   = "Analyzing herd metrics for insights..."
	EmptyHerdText = "Add livestock to the registry to receive AI-powered insights."
	FallbackText  = "System offline. Recommended: Perform manual inspection of trough distribution and verify metabolic requirements for the **Grower** group."
	BlankText     = "Ensure regular weighing and check for trough dominance issues."
)

// Service owns the latest advisory text.
type Service struct {
	client   anthropic.Client
	debounce time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	mu         sync.Mutex
	advice     string
	generation uint64
	cancel     context.CancelFunc
	closed     bool
	wg         sync.WaitGroup
}

// NewService wires the advisory task. A nil client always yields FallbackText.
func NewService(client anthropic.Client, debounce, timeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:   client,
		debounce: debounce,
		timeout:  timeout,
		logger:   logger,
		advice:   PendingText,
	}
}

// Current returns the latest advisory text.
func (s *Service) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advice
}

// Trigger schedules a refresh for snapshot and returns immediately. A newer
// trigger cancels any refresh still waiting or in flight.
func (s *Service) Trigger(snapshot models.HerdSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.refresh(ctx, s.generation, snapshot)
}

// Wait blocks until every scheduled refresh has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close cancels outstanding work and waits for it to stop.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Service) refresh(ctx context.Context, generation uint64, snapshot models.HerdSnapshot) {
	defer s.wg.Done()

	if s.debounce > 0 {
		timer := time.NewTimer(s.debounce)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	text := s.fetch(ctx, snapshot)
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation == s.generation {
		s.advice = text
	}
}

func (s *Service) fetch(ctx context.Context, snapshot models.HerdSnapshot) string {
	if snapshot.Count == 0 {
		return EmptyHerdText
	}
	if s.client == nil {
		return FallbackText
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.client.GenerateAdvice(callCtx, snapshot)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("advisory generation failed, using fallback", zap.Error(err))
		}
		return FallbackText
	}
	if text == "" {
		return BlankText
	}
	return text
}
