package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/graphein/graphein/internal/models"
)

// GraphHandler serves knowledge graph endpoints.
type GraphHandler struct {
	svc GraphService
	log *logrus.Logger
}

// NewGraphHandler creates a GraphHandler with the given service and logger.
func NewGraphHandler(svc GraphService, log *logrus.Logger) *GraphHandler {
	return &GraphHandler{svc: svc, log: log}
}

// List handles GET /api/v1/graphs.
func (h *GraphHandler) List(c *gin.Context) {
	filter := models.GraphFilter{
		OwnerID: c.Query("owner_id"),
		Status:  c.Query("status"),
	}
	if v := c.Query("is_public"); v != "" {
		public := v == "true"
		filter.IsPublic = &public
	}
	limit := parseInt(c.DefaultQuery("limit", "50"), 50)
	offset := parseOffset(c.DefaultQuery("offset", "0"))

	graphs, total, err := h.svc.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		h.log.WithError(err).Error("listing graphs")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, gin.H{"graphs": graphs, "total": total})
}

// Get handles GET /api/v1/graphs/:id.
func (h *GraphHandler) Get(c *gin.Context) {
	graphID := c.Param("id")
	if err := validatePathID(graphID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	graph, err := h.svc.Get(c.Request.Context(), graphID)
	if err != nil {
		if errors.Is(err, models.ErrGraphNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "graph not found")

			return
		}

		h.log.WithError(err).Error("getting graph")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, graph)
}

// Create handles POST /api/v1/graphs.
func (h *GraphHandler) Create(c *gin.Context) {
	var graph models.KnowledgeGraph
	if err := c.ShouldBindJSON(&graph); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	created, err := h.svc.Create(c.Request.Context(), graph)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateKey):
			respondError(c, http.StatusConflict, ErrCodeConflict, "graph with this ID already exists")
		case errors.Is(err, models.ErrMissingName), errors.Is(err, models.ErrMissingOwner):
			respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		default:
			h.log.WithError(err).Error("creating graph")
			respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
		}

		return
	}

	h.log.WithFields(logrus.Fields{"action": "graph.create", "graph_id": created.ID}).Info("audit")

	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/v1/graphs/:id.
func (h *GraphHandler) Update(c *gin.Context) {
	graphID := c.Param("id")
	if err := validatePathID(graphID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	var req models.UpdateGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	graph, err := h.svc.Update(c.Request.Context(), graphID, req)
	if err != nil {
		if errors.Is(err, models.ErrGraphNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "graph not found")

			return
		}

		h.log.WithError(err).Error("updating graph")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "graph.update", "graph_id": graphID}).Info("audit")

	c.JSON(http.StatusOK, graph)
}

// Delete handles DELETE /api/v1/graphs/:id.
func (h *GraphHandler) Delete(c *gin.Context) {
	graphID := c.Param("id")
	if err := validatePathID(graphID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	if err := h.svc.Delete(c.Request.Context(), graphID); err != nil {
		if errors.Is(err, models.ErrGraphNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "graph not found")

			return
		}

		h.log.WithError(err).Error("deleting graph")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "graph.delete", "graph_id": graphID}).Info("audit")

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// memberRequest is the JSON body accepted by the membership endpoints.
type memberRequest struct {
	UnitIDs   []string `json:"unit_ids"`
	TripleIDs []string `json:"triple_ids"`
}

// AddUnits handles POST /api/v1/graphs/:id/units.
func (h *GraphHandler) AddUnits(c *gin.Context) {
	graphID := c.Param("id")
	if err := validatePathID(graphID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if len(req.UnitIDs) == 0 {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "unit_ids is required")

		return
	}

	graph, added, err := h.svc.AddUnits(c.Request.Context(), graphID, req.UnitIDs)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrGraphNotFound):
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "graph not found")
		case errors.Is(err, models.ErrUnitNotFound):
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "one or more units not found")
		default:
			h.log.WithError(err).Error("adding units to graph")
			respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
		}

		return
	}

	h.log.WithFields(logrus.Fields{"action": "graph.add_units", "graph_id": graphID, "added": added}).Info("audit")

	c.JSON(http.StatusOK, gin.H{"graph": graph, "added": added})
}

// AddTriples handles POST /api/v1/graphs/:id/triples.
func (h *GraphHandler) AddTriples(c *gin.Context) {
	graphID := c.Param("id")
	if err := validatePathID(graphID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if len(req.TripleIDs) == 0 {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "triple_ids is required")

		return
	}

	graph, added, err := h.svc.AddTriples(c.Request.Context(), graphID, req.TripleIDs)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrGraphNotFound):
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "graph not found")
		case errors.Is(err, models.ErrTripleNotFound):
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "one or more triples not found")
		default:
			h.log.WithError(err).Error("adding triples to graph")
			respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
		}

		return
	}

	h.log.WithFields(logrus.Fields{"action": "graph.add_triples", "graph_id": graphID, "added": added}).Info("audit")

	c.JSON(http.StatusOK, gin.H{"graph": graph, "added": added})
}

// Visual handles GET /api/v1/graphs/:id/visual.
func (h *GraphHandler) Visual(c *gin.Context) {
	graphID := c.Param("id")
	if err := validatePathID(graphID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	var roots []string
	if raw := c.Query("roots"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				roots = append(roots, id)
			}
		}
	}
	depth := parseDepth(c.Query("depth"))

	data, err := h.svc.Visual(c.Request.Context(), graphID, roots, depth)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrGraphNotFound):
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "graph not found")
		case errors.Is(err, models.ErrGraphEmpty):
			respondError(c, http.StatusUnprocessableEntity, ErrCodeValidationError, "graph contains no units")
		default:
			h.log.WithError(err).Error("building visual subgraph")
			respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
		}

		return
	}

	c.JSON(http.StatusOK, data)
}

// Stats handles GET /api/v1/graphs/:id/stats.
func (h *GraphHandler) Stats(c *gin.Context) {
	graphID := c.Param("id")
	if err := validatePathID(graphID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), graphID)
	if err != nil {
		if errors.Is(err, models.ErrGraphNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "graph not found")

			return
		}

		h.log.WithError(err).Error("computing graph stats")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, stats)
}
