package models

// OutboundMessageRequest represents a message pushed to a farm manager.
type OutboundMessageRequest struct {
	To      string `json:"to" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// HerdSnapshot is the aggregate handed to the advisory generator.
type HerdSnapshot struct {
	Count               int      `json:"count"`
	UnderfedCount       int      `json:"underfedCount"`
	UnderfedRatePercent float64  `json:"underfedRatePercent"`
	AvgWeight           float64  `json:"avgWeight"`
	DistinctGroups      []string `json:"distinctGroups"`
}
