package reporting

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/herdfeed/internal/domain/models"
)

// recentLimit caps the timeline attached to a report.
const recentLimit = 15

// Input is everything an aggregation reads. Now is taken once by the caller
// and used for every window comparison of the call.
type Input struct {
	Animals   []models.Animal
	Events    []models.FeedEvent
	Groups    []models.GroupProfile
	FeedTypes []models.FeedType
	Window    models.Window
	Now       time.Time
}

// Aggregate reduces the feed event log into cost and usage totals. It is pure:
// the same input always yields the same report.
func Aggregate(in Input) models.CostReport {
	filtered := FilterWindow(in.Events, in.Window, in.Now)

	costPerKg := make(map[string]decimal.Decimal, len(in.FeedTypes))
	for _, f := range in.FeedTypes {
		costPerKg[f.Name] = decimal.NewFromFloat(f.CostPerKg)
	}

	totalCost := decimal.Zero
	totalKg := decimal.Zero
	byGroup := make(map[string]decimal.Decimal)
	byFeed := make(map[string]decimal.Decimal)

	for _, e := range filtered {
		kg := decimal.NewFromFloat(e.TotalKg)
		// unknown feed names cost nothing
		cost := kg.Mul(costPerKg[e.FeedType])

		totalCost = totalCost.Add(cost)
		totalKg = totalKg.Add(kg)
		byGroup[string(e.Group)] = byGroup[string(e.Group)].Add(cost)
		byFeed[e.FeedType] = byFeed[e.FeedType].Add(cost)
	}

	groupOrder := make([]string, 0, len(in.Groups))
	for _, g := range in.Groups {
		groupOrder = append(groupOrder, string(g.ID))
	}
	feedOrder := make([]string, 0, len(in.FeedTypes))
	for _, f := range in.FeedTypes {
		feedOrder = append(feedOrder, f.Name)
	}

	recent := filtered
	if len(recent) > recentLimit {
		recent = recent[len(recent)-recentLimit:]
	}
	timeline := make([]models.FeedEvent, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		timeline = append(timeline, recent[i])
	}

	return models.CostReport{
		Window:      in.Window,
		GeneratedAt: in.Now,
		EventCount:  len(filtered),
		TotalCost:   totalCost.InexactFloat64(),
		TotalKg:     totalKg.InexactFloat64(),
		ByGroup:     breakdown(byGroup, groupOrder, totalCost),
		ByFeedType:  breakdown(byFeed, feedOrder, totalCost),
		Status:      CountStatuses(in.Animals),
		Groups:      groupStats(in.Animals, in.Groups),
		Recent:      timeline,
	}
}

// FilterWindow keeps events at or after now minus the window length.
func FilterWindow(events []models.FeedEvent, window models.Window, now time.Time) []models.FeedEvent {
	days := window.Days()
	if days == 0 {
		return append([]models.FeedEvent(nil), events...)
	}

	threshold := now.AddDate(0, 0, -days)
	out := make([]models.FeedEvent, 0, len(events))
	for _, e := range events {
		if e.Timestamp.Before(threshold) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// CountStatuses tallies the current status of every registered animal.
func CountStatuses(animals []models.Animal) models.StatusCounts {
	counts := models.StatusCounts{Total: len(animals)}
	for _, a := range animals {
		switch a.Status {
		case models.StatusOK:
			counts.OK++
		case models.StatusUnderfed:
			counts.Underfed++
		case models.StatusMissed:
			counts.Missed++
		default:
			counts.Pending++
		}
	}
	if counts.Total > 0 {
		counts.OKPercent = int(math.Round(float64(counts.OK) / float64(counts.Total) * 100))
		counts.UnderfedPercent = int(math.Round(float64(counts.Underfed) / float64(counts.Total) * 100))
	}
	return counts
}

func groupStats(animals []models.Animal, groups []models.GroupProfile) []models.GroupStat {
	stats := make([]models.GroupStat, 0, len(groups))
	for _, g := range groups {
		stat := models.GroupStat{Group: g.ID}
		var total float64
		for _, a := range animals {
			if a.Group == g.ID {
				stat.Count++
				total += a.Weight
			}
		}
		if stat.Count > 0 {
			stat.AvgWeight = total / float64(stat.Count)
		}
		stats = append(stats, stat)
	}
	return stats
}

func breakdown(costs map[string]decimal.Decimal, order []string, total decimal.Decimal) []models.CostShare {
	keys := append([]string(nil), order...)
	known := make(map[string]bool, len(order))
	for _, k := range order {
		known[k] = true
	}

	var extra []string
	for k := range costs {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	keys = append(keys, extra...)

	hundred := decimal.NewFromInt(100)
	shares := make([]models.CostShare, 0, len(keys))
	for _, k := range keys {
		cost := costs[k]
		share := models.CostShare{Key: k, Cost: cost.InexactFloat64()}
		if !total.IsZero() {
			share.Percent = cost.Div(total).Mul(hundred).InexactFloat64()
		}
		shares = append(shares, share)
	}
	return shares
}
