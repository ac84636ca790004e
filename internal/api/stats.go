package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/graphein/graphein/internal/dbpool"
	"github.com/graphein/graphein/internal/metrics"
)

// StatsHandler serves the global statistics endpoint.
type StatsHandler struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

// NewStatsHandler creates a StatsHandler with the given dependencies.
func NewStatsHandler(pool *dbpool.Pool, log *logrus.Logger) *StatsHandler {
	return &StatsHandler{pool: pool, log: log}
}

// statsResponse is the JSON payload returned by the stats endpoint.
type statsResponse struct {
	Units         int     `json:"units"`
	Triples       int     `json:"triples"`
	Graphs        int     `json:"graphs"`
	UnitTypes     int     `json:"unit_types"`
	Domains       int     `json:"domains"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// GetStats handles GET /api/v1/stats.
func (h *StatsHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	var resp statsResponse

	// Single consolidated query for all aggregate counts.
	if err := h.pool.QueryRow(ctx,
		`SELECT
			COUNT(*),
			COUNT(DISTINCT unit_type),
			COUNT(DISTINCT domain) FILTER (WHERE domain <> ''),
			(SELECT COUNT(*) FROM kg_triples),
			(SELECT COALESCE(AVG(confidence), 0) FROM kg_triples),
			(SELECT COUNT(*) FROM kg_graphs)
		 FROM kg_units`,
	).Scan(
		&resp.Units, &resp.UnitTypes, &resp.Domains,
		&resp.Triples, &resp.AvgConfidence, &resp.Graphs,
	); err != nil {
		h.log.WithError(err).Error("stats: consolidated query")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
		return
	}

	// Round avg_confidence to 2 decimal places for cleaner output.
	resp.AvgConfidence = float64(int(resp.AvgConfidence*100+0.5)) / 100

	// Update Prometheus gauges with fresh counts.
	metrics.UnitCount.Set(float64(resp.Units))
	metrics.TripleCount.Set(float64(resp.Triples))

	c.JSON(http.StatusOK, resp)
}
