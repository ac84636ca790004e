package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/graphein/graphein/internal/models"
)

// UnitHandler serves knowledge unit CRUD and search endpoints.
type UnitHandler struct {
	svc UnitService
	log *logrus.Logger
}

// NewUnitHandler creates a UnitHandler with the given service and logger.
func NewUnitHandler(svc UnitService, log *logrus.Logger) *UnitHandler {
	return &UnitHandler{svc: svc, log: log}
}

// List handles GET /api/v1/units.
func (h *UnitHandler) List(c *gin.Context) {
	filter := models.UnitFilter{
		UnitType: c.Query("type"),
		State:    c.Query("state"),
		Tag:      c.Query("tag"),
		ImportID: c.Query("import_id"),
		Domain:   c.Query("domain"),
	}
	limit := parseInt(c.DefaultQuery("limit", "100"), 100)
	offset := parseOffset(c.DefaultQuery("offset", "0"))

	units, total, err := h.svc.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		h.log.WithError(err).Error("listing units")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, gin.H{"units": units, "total": total})
}

// Get handles GET /api/v1/units/:id.
func (h *UnitHandler) Get(c *gin.Context) {
	unitID := c.Param("id")
	if err := validatePathID(unitID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	unit, err := h.svc.Get(c.Request.Context(), unitID)
	if err != nil {
		if errors.Is(err, models.ErrUnitNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "unit not found")

			return
		}

		h.log.WithError(err).Error("getting unit")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, unit)
}

// GetByName handles GET /api/v1/units/by-name/:name.
func (h *UnitHandler) GetByName(c *gin.Context) {
	name := c.Param("name")
	if err := validatePathID(name); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	unit, err := h.svc.GetByCanonicalName(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, models.ErrUnitNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "unit not found")

			return
		}

		h.log.WithError(err).Error("getting unit by canonical name")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, unit)
}

// Search handles GET /api/v1/search.
func (h *UnitHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "q is required")

		return
	}

	filter := models.UnitFilter{
		UnitType: c.Query("type"),
		Domain:   c.Query("domain"),
	}
	limit := parseInt(c.DefaultQuery("limit", "20"), 20)

	results, err := h.svc.Search(c.Request.Context(), query, filter, limit)
	if err != nil {
		h.log.WithError(err).Error("searching units")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// Create handles POST /api/v1/units.
func (h *UnitHandler) Create(c *gin.Context) {
	var unit models.KnowledgeUnit
	if err := c.ShouldBindJSON(&unit); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	created, err := h.svc.Create(c.Request.Context(), unit)
	if err != nil {
		var dup *models.DuplicateError
		if errors.As(err, &dup) {
			c.JSON(http.StatusConflict, gin.H{
				"error":       ErrCodeConflict,
				"message":     "unit with this canonical name already exists",
				"existing_id": dup.ExistingID,
			})

			return
		}

		if errors.Is(err, models.ErrMissingTitle) {
			respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

			return
		}

		h.log.WithError(err).Error("creating unit")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "unit.create", "unit_id": created.ID}).Info("audit")

	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/v1/units/:id.
func (h *UnitHandler) Update(c *gin.Context) {
	unitID := c.Param("id")
	if err := validatePathID(unitID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	var req models.UpdateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	unit, err := h.svc.Update(c.Request.Context(), unitID, req)
	if err != nil {
		if errors.Is(err, models.ErrUnitNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "unit not found")

			return
		}

		h.log.WithError(err).Error("updating unit")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "unit.update", "unit_id": unitID}).Info("audit")

	c.JSON(http.StatusOK, unit)
}

// Delete handles DELETE /api/v1/units/:id.
func (h *UnitHandler) Delete(c *gin.Context) {
	unitID := c.Param("id")
	if err := validatePathID(unitID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	if err := h.svc.Delete(c.Request.Context(), unitID); err != nil {
		if errors.Is(err, models.ErrUnitNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "unit not found")

			return
		}

		h.log.WithError(err).Error("deleting unit")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "unit.delete", "unit_id": unitID}).Info("audit")

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// mergeRequest is the JSON body accepted by the merge endpoint.
type mergeRequest struct {
	SourceIDs []string `json:"source_ids"`
}

// Merge handles POST /api/v1/units/:id/merge.
func (h *UnitHandler) Merge(c *gin.Context) {
	targetID := c.Param("id")
	if err := validatePathID(targetID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	unit, err := h.svc.Merge(c.Request.Context(), targetID, req.SourceIDs)
	if err != nil {
		if errors.Is(err, models.ErrUnitNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "unit not found")

			return
		}

		if errors.Is(err, models.ErrSelfReference) {
			respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

			return
		}

		h.log.WithError(err).Error("merging units")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{
		"action": "unit.merge", "target_id": targetID, "sources": len(req.SourceIDs),
	}).Info("audit")

	c.JSON(http.StatusOK, unit)
}
