package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdfeed/internal/domain/models"
	"github.com/mamadbah2/herdfeed/internal/domain/reference"
	"github.com/mamadbah2/herdfeed/internal/state"
)

const dateLayout = "2006-01-02"

// Service exposes cost reports and registry exports over the live state.
type Service struct {
	store  *state.Store
	ref    *reference.Registry
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(store *state.Store, ref *reference.Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, ref: ref, logger: logger, now: time.Now}
}

// CostReport aggregates the event log for window against a single clock reading.
func (s *Service) CostReport(window models.Window) models.CostReport {
	now := s.now()
	herd := s.store.Snapshot()

	report := Aggregate(Input{
		Animals:   herd.Animals,
		Events:    herd.Events,
		Groups:    s.ref.Groups(),
		FeedTypes: s.ref.FeedTypes(),
		Window:    window,
		Now:       now,
	})

	s.logger.Debug("cost report generated",
		zap.String("window", string(window)),
		zap.Int("events", report.EventCount),
		zap.Float64("total_cost", report.TotalCost))
	return report
}

// ExportCSV writes the registry as CSV and returns the suggested filename.
func (s *Service) ExportCSV(w io.Writer) (string, error) {
	herd := s.store.Snapshot()
	if err := WriteCSV(w, herd.Animals); err != nil {
		return "", err
	}
	return ExportFilename(s.now()), nil
}

// WeeklySummary renders the last seven days as a short text message.
func (s *Service) WeeklySummary() string {
	report := s.CostReport(models.Window7Days)
	start := report.GeneratedAt.AddDate(0, 0, -7)

	var b strings.Builder
	if report.EventCount == 0 {
		fmt.Fprintf(&b, "Feed report (%s to %s): no feedings recorded.", start.Format(dateLayout), report.GeneratedAt.Format(dateLayout))
	} else {
		fmt.Fprintf(&b, "Feed report (%s to %s): %.2f kg delivered across %d feedings, cost %.2f.",
			start.Format(dateLayout), report.GeneratedAt.Format(dateLayout), report.TotalKg, report.EventCount, report.TotalCost)

		var parts []string
		for _, share := range report.ByGroup {
			if share.Cost > 0 {
				parts = append(parts, fmt.Sprintf("%s %.1f%%", share.Key, share.Percent))
			}
		}
		if len(parts) > 0 {
			b.WriteString("\nBy group: " + strings.Join(parts, ", ") + ".")
		}
	}

	st := report.Status
	fmt.Fprintf(&b, "\nHerd status: %d OK, %d underfed, %d missed, %d pending of %d animals.",
		st.OK, st.Underfed, st.Missed, st.Pending, st.Total)
	return b.String()
}
