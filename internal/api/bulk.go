package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/graphein/graphein/internal/models"
	"github.com/graphein/graphein/internal/store"
)

// maxBulkItems caps the number of items accepted by a single bulk request.
const maxBulkItems = 1000

// BulkHandler serves batch operation endpoints.
type BulkHandler struct {
	units   UnitService
	triples TripleService
	log     *logrus.Logger
}

// NewBulkHandler creates a BulkHandler with the given services and logger.
func NewBulkHandler(units UnitService, triples TripleService, log *logrus.Logger) *BulkHandler {
	return &BulkHandler{units: units, triples: triples, log: log}
}

// BulkUnits handles POST /api/v1/bulk/units.
func (h *BulkHandler) BulkUnits(c *gin.Context) {
	var units []models.KnowledgeUnit
	if err := c.ShouldBindJSON(&units); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if len(units) > maxBulkItems {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "bulk request exceeds maximum of 1000 items")

		return
	}

	created, skipped, err := h.units.BulkCreate(c.Request.Context(), units)
	if err != nil {
		h.log.WithError(err).Error("bulk creating units")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{
		"action": "bulk.units", "created": len(created), "skipped": len(skipped),
	}).Info("audit")

	c.JSON(http.StatusOK, bulkResponse(created, skipped))
}

// BulkTriples handles POST /api/v1/bulk/triples.
func (h *BulkHandler) BulkTriples(c *gin.Context) {
	var triples []models.SemanticTriple
	if err := c.ShouldBindJSON(&triples); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if len(triples) > maxBulkItems {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "bulk request exceeds maximum of 1000 items")

		return
	}

	created, skipped, err := h.triples.BulkCreate(c.Request.Context(), triples)
	if err != nil {
		h.log.WithError(err).Error("bulk creating triples")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{
		"action": "bulk.triples", "created": len(created), "skipped": len(skipped),
	}).Info("audit")

	c.JSON(http.StatusOK, bulkResponse(created, skipped))
}

func bulkResponse[T any](created []T, skipped []store.BulkSkip) gin.H {
	if skipped == nil {
		skipped = []store.BulkSkip{}
	}

	return gin.H{"created": len(created), "items": created, "skipped": skipped}
}
