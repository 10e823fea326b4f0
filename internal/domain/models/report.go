package models

import (
	"fmt"
	"time"
)

// Window selects the time range of a cost report.
type Window string

const (
	WindowAll    Window = "all"
	Window7Days  Window = "7d"
	Window30Days Window = "30d"
)

// ParseWindow converts raw text into a Window. Empty input means all.
func ParseWindow(raw string) (Window, error) {
	switch Window(raw) {
	case "", WindowAll:
		return WindowAll, nil
	case Window7Days:
		return Window7Days, nil
	case Window30Days:
		return Window30Days, nil
	default:
		return "", fmt.Errorf("unknown report window %q", raw)
	}
}

// Days returns the window length in days, 0 for all.
func (w Window) Days() int {
	switch w {
	case Window7Days:
		return 7
	case Window30Days:
		return 30
	default:
		return 0
	}
}

// CostShare is one line of a cost breakdown.
type CostShare struct {
	Key     string  `json:"key"`
	Cost    float64 `json:"cost"`
	Percent float64 `json:"percent"`
}

// StatusCounts summarises the current registry status distribution.
type StatusCounts struct {
	Total           int `json:"total"`
	OK              int `json:"ok"`
	Underfed        int `json:"underfed"`
	Missed          int `json:"missed"`
	Pending         int `json:"pending"`
	OKPercent       int `json:"okPercent"`
	UnderfedPercent int `json:"underfedPercent"`
}

// GroupStat reports headcount and average weight per group.
type GroupStat struct {
	Group     GroupID `json:"group"`
	Count     int     `json:"count"`
	AvgWeight float64 `json:"avgWeight"`
}

// CostReport is the aggregated view over the feed event log.
type CostReport struct {
	Window      Window       `json:"window"`
	GeneratedAt time.Time    `json:"generatedAt"`
	EventCount  int          `json:"eventCount"`
	TotalCost   float64      `json:"totalCost"`
	TotalKg     float64      `json:"totalKg"`
	ByGroup     []CostShare  `json:"byGroup"`
	ByFeedType  []CostShare  `json:"byFeedType"`
	Status      StatusCounts `json:"status"`
	Groups      []GroupStat  `json:"groups"`
	Recent      []FeedEvent  `json:"recent"`
}
