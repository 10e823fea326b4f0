package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdfeed/internal/domain/models"
	"github.com/mamadbah2/herdfeed/internal/state"
)

// HerdService is the write side of the farm state.
type HerdService interface {
	RecordFeeding(ctx context.Context, req models.RecordFeedingRequest) (models.FeedEvent, error)
	Events(limit int) []models.FeedEvent
	RegisterAnimal(ctx context.Context, req models.RegisterAnimalRequest) (models.Animal, error)
	UpdateAnimal(ctx context.Context, id string, req models.UpdateAnimalRequest) (models.Animal, error)
	ListAnimals(f models.AnimalFilter) []models.Animal
	ResetData(ctx context.Context) state.Herd
}

// HerdHandler serves feedings and the animal registry.
type HerdHandler struct {
	svc    HerdService
	logger *zap.Logger
}

// NewHerdHandler constructs the HTTP adapter over svc.
func NewHerdHandler(svc HerdService, logger *zap.Logger) *HerdHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HerdHandler{svc: svc, logger: logger}
}

// RecordFeeding handles POST /api/feedings.
func (h *HerdHandler) RecordFeeding(c *gin.Context) {
	var req models.RecordFeedingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid feeding payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	event, err := h.svc.RecordFeeding(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// ListFeedings handles GET /api/feedings. Events come newest first.
func (h *HerdHandler) ListFeedings(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, h.svc.Events(limit))
}

// ListAnimals handles GET /api/animals?q=&group=&status=.
func (h *HerdHandler) ListAnimals(c *gin.Context) {
	filter := models.AnimalFilter{Search: c.Query("q")}
	if raw := c.Query("group"); raw != "" {
		g, err := models.ParseGroupID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.Group = g
	}
	if raw := c.Query("status"); raw != "" {
		st, err := models.ParseFeedStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.Status = st
	}
	c.JSON(http.StatusOK, h.svc.ListAnimals(filter))
}

// RegisterAnimal handles POST /api/animals.
func (h *HerdHandler) RegisterAnimal(c *gin.Context) {
	var req models.RegisterAnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid animal payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	animal, err := h.svc.RegisterAnimal(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, animal)
}

// UpdateAnimal handles PATCH /api/animals/:id.
func (h *HerdHandler) UpdateAnimal(c *gin.Context) {
	var req models.UpdateAnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	animal, err := h.svc.UpdateAnimal(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, animal)
}

// Reset handles POST /api/admin/reset.
func (h *HerdHandler) Reset(c *gin.Context) {
	herd := h.svc.ResetData(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"animals": len(herd.Animals), "events": len(herd.Events)})
}
