package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/graphein/graphein/internal/models"
)

// TripleHandler serves semantic triple and path-finding endpoints.
type TripleHandler struct {
	svc TripleService
	log *logrus.Logger
}

// NewTripleHandler creates a TripleHandler with the given service and logger.
func NewTripleHandler(svc TripleService, log *logrus.Logger) *TripleHandler {
	return &TripleHandler{svc: svc, log: log}
}

// List handles GET /api/v1/triples.
func (h *TripleHandler) List(c *gin.Context) {
	filter := models.TripleFilter{
		SubjectID:    c.Query("subject_id"),
		ObjectID:     c.Query("object_id"),
		RelationType: c.Query("relation_type"),
		SourceID:     c.Query("source_id"),
	}
	limit := parseInt(c.DefaultQuery("limit", "100"), 100)
	offset := parseOffset(c.DefaultQuery("offset", "0"))

	triples, err := h.svc.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		h.log.WithError(err).Error("listing triples")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, gin.H{"triples": triples, "count": len(triples)})
}

// Get handles GET /api/v1/triples/:id.
func (h *TripleHandler) Get(c *gin.Context) {
	tripleID := c.Param("id")
	if err := validatePathID(tripleID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	triple, err := h.svc.Get(c.Request.Context(), tripleID)
	if err != nil {
		if errors.Is(err, models.ErrTripleNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "triple not found")

			return
		}

		h.log.WithError(err).Error("getting triple")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, triple)
}

// Create handles POST /api/v1/triples.
func (h *TripleHandler) Create(c *gin.Context) {
	var triple models.SemanticTriple
	if err := c.ShouldBindJSON(&triple); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	created, err := h.svc.Create(c.Request.Context(), triple)
	if err != nil {
		var dup *models.DuplicateError
		if errors.As(err, &dup) {
			c.JSON(http.StatusConflict, gin.H{
				"error":       ErrCodeConflict,
				"message":     "identical triple already exists",
				"existing_id": dup.ExistingID,
			})

			return
		}

		switch {
		case errors.Is(err, models.ErrUnitNotFound):
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "subject or object unit not found")
		case errors.Is(err, models.ErrMissingPredicate),
			errors.Is(err, models.ErrMissingSubject),
			errors.Is(err, models.ErrMissingObject),
			errors.Is(err, models.ErrSelfReference):
			respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		default:
			h.log.WithError(err).Error("creating triple")
			respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
		}

		return
	}

	h.log.WithFields(logrus.Fields{"action": "triple.create", "triple_id": created.ID}).Info("audit")

	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/v1/triples/:id.
func (h *TripleHandler) Update(c *gin.Context) {
	tripleID := c.Param("id")
	if err := validatePathID(tripleID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	var req models.UpdateTripleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	triple, err := h.svc.Update(c.Request.Context(), tripleID, req)
	if err != nil {
		if errors.Is(err, models.ErrTripleNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "triple not found")

			return
		}

		h.log.WithError(err).Error("updating triple")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "triple.update", "triple_id": tripleID}).Info("audit")

	c.JSON(http.StatusOK, triple)
}

// Delete handles DELETE /api/v1/triples/:id.
func (h *TripleHandler) Delete(c *gin.Context) {
	tripleID := c.Param("id")
	if err := validatePathID(tripleID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	if err := h.svc.Delete(c.Request.Context(), tripleID); err != nil {
		if errors.Is(err, models.ErrTripleNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "triple not found")

			return
		}

		h.log.WithError(err).Error("deleting triple")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "triple.delete", "triple_id": tripleID}).Info("audit")

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ListForUnit handles GET /api/v1/units/:id/triples.
func (h *TripleHandler) ListForUnit(c *gin.Context) {
	unitID := c.Param("id")
	if err := validatePathID(unitID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	direction := c.DefaultQuery("direction", models.DirectionBoth)
	switch direction {
	case models.DirectionOutgoing, models.DirectionIncoming, models.DirectionBoth:
	default:
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "direction must be outgoing, incoming, or both")

		return
	}

	relationType := c.Query("relation_type")
	limit := parseInt(c.DefaultQuery("limit", "100"), 100)

	triples, err := h.svc.ListForUnit(c.Request.Context(), unitID, direction, relationType, limit)
	if err != nil {
		h.log.WithError(err).Error("listing triples for unit")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	outgoing, incoming, err := h.svc.CountForUnit(c.Request.Context(), unitID)
	if err != nil {
		h.log.WithError(err).Error("counting triples for unit")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"triples":        triples,
		"outgoing_count": outgoing,
		"incoming_count": incoming,
	})
}

// Path handles GET /api/v1/path/:from/:to.
func (h *TripleHandler) Path(c *gin.Context) {
	fromID := c.Param("from")
	toID := c.Param("to")
	if err := validatePathID(fromID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}
	if err := validatePathID(toID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	depth := parseDepth(c.Query("depth"))

	path, err := h.svc.FindPath(c.Request.Context(), fromID, toID, depth)
	if err != nil {
		if errors.Is(err, models.ErrUnitNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "unit not found")

			return
		}

		h.log.WithError(err).Error("finding path")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	// A nil path means the two units are not connected within the depth limit.
	if path == nil {
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "no path found")

		return
	}

	c.JSON(http.StatusOK, gin.H{"path": path, "length": len(path)})
}
