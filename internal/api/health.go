// Package api provides the HTTP handlers for graphein.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/graphein/graphein/internal/dbpool"
)

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	pool       *dbpool.Pool
	log        *logrus.Logger
	httpClient *http.Client
	version    string
	startTime  time.Time
	llmBaseURL string
	llmModel   string
}

// NewHealthHandler creates a HealthHandler with the given dependencies.
func NewHealthHandler(pool *dbpool.Pool, log *logrus.Logger, version, llmBaseURL, llmModel string) *HealthHandler {
	return &HealthHandler{
		pool:       pool,
		log:        log,
		httpClient: &http.Client{Timeout: 2 * time.Second},
		version:    version,
		startTime:  time.Now(),
		llmBaseURL: llmBaseURL,
		llmModel:   llmModel,
	}
}

// readinessResponse is the JSON payload returned by the readiness endpoint.
type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// healthResponse is the JSON payload returned by the health/liveness endpoint.
type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	Extraction    string  `json:"extraction"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Liveness handles GET /api/v1/health.
func (h *HealthHandler) Liveness(c *gin.Context) {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		Database:      "connected",
		Extraction:    "unconfigured",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	// Best-effort database ping (non-fatal for liveness).
	if h.pool != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.pool.HealthCheck(ctx); err != nil {
			resp.Database = "disconnected"
		}
	} else {
		resp.Database = "not_configured"
	}

	if h.llmModel != "" {
		resp.Extraction = h.llmModel
	}

	c.JSON(http.StatusOK, resp)
}

// Readiness handles GET /api/v1/ready.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := map[string]string{
		"database": "ok",
		"schema":   "ok",
		"llm":      "ok",
	}
	status := "ready"
	statusCode := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.pool.HealthCheck(ctx); err != nil {
		h.log.WithError(err).Error("readiness: database health check failed")
		checks["database"] = "error"
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	if checks["database"] == "ok" {
		if err := h.checkSchema(ctx); err != nil {
			h.log.WithError(err).Error("readiness: schema check failed")
			checks["schema"] = "error"
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
		}
	} else {
		checks["schema"] = "unknown"
	}

	// Check the LLM endpoint (best-effort, degraded but not failing).
	if err := h.checkLLM(); err != nil {
		h.log.WithError(err).Warn("readiness: llm check failed")
		checks["llm"] = "degraded"
	}

	c.JSON(statusCode, readinessResponse{
		Status: status,
		Checks: checks,
	})
}

// checkSchema verifies the database schema by querying the units table.
func (h *HealthHandler) checkSchema(ctx context.Context) error {
	var count int
	err := h.pool.QueryRow(ctx, "SELECT COUNT(*) FROM kg_units").Scan(&count)
	if err != nil {
		return fmt.Errorf("schema check: %w", err)
	}

	return nil
}

// checkLLM does a best-effort connectivity check against the completion API.
func (h *HealthHandler) checkLLM() error {
	if h.llmBaseURL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.llmBaseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("llm request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("llm unreachable: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	// Auth failures still prove the endpoint is reachable.
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("llm returned status %d", resp.StatusCode)
	}

	return nil
}
