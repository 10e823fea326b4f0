package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdfeed/internal/domain/models"
	"github.com/mamadbah2/herdfeed/internal/domain/reference"
)

// ReportService produces cost reports and registry exports.
type ReportService interface {
	CostReport(window models.Window) models.CostReport
	ExportCSV(w io.Writer) (string, error)
}

// AdvisorySource exposes the latest advisory text.
type AdvisorySource interface {
	Current() string
}

// ReportHandler serves read-only views: reports, export, advisory, reference data.
type ReportHandler struct {
	reports  ReportService
	advisory AdvisorySource
	ref      *reference.Registry
	logger   *zap.Logger
}

// NewReportHandler constructs the HTTP adapter.
func NewReportHandler(reports ReportService, advisory AdvisorySource, ref *reference.Registry, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{reports: reports, advisory: advisory, ref: ref, logger: logger}
}

// Costs handles GET /api/reports/costs?window=all|7d|30d.
func (h *ReportHandler) Costs(c *gin.Context) {
	window, err := models.ParseWindow(c.Query("window"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.reports.CostReport(window))
}

// ExportCSV handles GET /api/reports/export.csv.
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	filename, err := h.reports.ExportCSV(&buf)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Advisory handles GET /api/advisory.
func (h *ReportHandler) Advisory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"advice": h.advisory.Current()})
}

// Reference handles GET /api/reference.
func (h *ReportHandler) Reference(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"groups":    h.ref.Groups(),
		"feedTypes": h.ref.FeedTypes(),
	})
}
