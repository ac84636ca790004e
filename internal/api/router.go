package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/graphein/graphein/internal/dbpool"
	"github.com/graphein/graphein/internal/middleware"
	"github.com/graphein/graphein/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log            *logrus.Logger
	Pool           *dbpool.Pool
	Hub            *ws.Hub
	Units          UnitService
	Triples        TripleService
	Graphs         GraphService
	Imports        ImportService
	CORSOrigins    []string
	Version        string
	LLMBaseURL     string
	LLMModel       string
	ImportMaxSize  int64
	ImportMaxPairs int
}

// Router-level limits.
const (
	maxBodySize = 10 << 20 // 10 MB
	rateLimit   = 100      // requests per second per IP
	rateBurst   = 200      // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.Metrics())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, log, deps.Version, deps.LLMBaseURL, deps.LLMModel)
	units := NewUnitHandler(deps.Units, log)
	triples := NewTripleHandler(deps.Triples, log)
	graphs := NewGraphHandler(deps.Graphs, log)
	bulk := NewBulkHandler(deps.Units, deps.Triples, log)
	imports := NewImportHandler(deps.Imports, log, deps.ImportMaxSize, deps.ImportMaxPairs)
	stats := NewStatsHandler(deps.Pool, log)

	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// Knowledge units.
	api.GET("/units", units.List)
	api.POST("/units", units.Create)
	api.GET("/units/by-name/:name", units.GetByName)
	api.GET("/units/:id", units.Get)
	api.PUT("/units/:id", units.Update)
	api.DELETE("/units/:id", units.Delete)
	api.POST("/units/:id/merge", units.Merge)
	api.GET("/units/:id/triples", triples.ListForUnit)

	// Full-text search.
	api.GET("/search", units.Search)

	// Semantic triples.
	api.GET("/triples", triples.List)
	api.POST("/triples", triples.Create)
	api.GET("/triples/:id", triples.Get)
	api.PUT("/triples/:id", triples.Update)
	api.DELETE("/triples/:id", triples.Delete)

	// Path finding.
	api.GET("/path/:from/:to", triples.Path)

	// Knowledge graphs.
	api.GET("/graphs", graphs.List)
	api.POST("/graphs", graphs.Create)
	api.GET("/graphs/:id", graphs.Get)
	api.PUT("/graphs/:id", graphs.Update)
	api.DELETE("/graphs/:id", graphs.Delete)
	api.POST("/graphs/:id/units", graphs.AddUnits)
	api.POST("/graphs/:id/triples", graphs.AddTriples)
	api.GET("/graphs/:id/visual", graphs.Visual)
	api.GET("/graphs/:id/stats", graphs.Stats)

	// Bulk operations.
	api.POST("/bulk/units", bulk.BulkUnits)
	api.POST("/bulk/triples", bulk.BulkTriples)

	// Document imports.
	api.POST("/imports", imports.Upload)
	api.GET("/imports", imports.List)
	api.GET("/imports/:id", imports.Get)
	api.POST("/imports/:id/cancel", imports.Cancel)
	api.DELETE("/imports/:id", imports.Delete)

	// Stats.
	api.GET("/stats", stats.GetStats)

	// WebSocket endpoint.
	api.GET("/ws", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins))
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
