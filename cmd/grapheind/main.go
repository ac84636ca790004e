// Command grapheind runs the graphein knowledge graph server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/graphein/graphein/internal/api"
	"github.com/graphein/graphein/internal/config"
	"github.com/graphein/graphein/internal/db"
	"github.com/graphein/graphein/internal/db/migrations"
	"github.com/graphein/graphein/internal/dbpool"
	"github.com/graphein/graphein/internal/extract"
	"github.com/graphein/graphein/internal/importer"
	"github.com/graphein/graphein/internal/service"
	"github.com/graphein/graphein/internal/store"
	"github.com/graphein/graphein/internal/ws"
)

// version is set at build time via -ldflags.
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("loading config")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value())
	if err != nil {
		log.WithError(err).Fatal("connecting to database")
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		log.WithError(err).Fatal("running migrations")
	}

	base := store.Base{Pool: pool, Log: log}
	unitStore := store.NewUnitStore(base)
	tripleStore := store.NewTripleStore(base)
	graphStore := store.NewGraphStore(base)

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	unitSvc := service.NewUnitService(unitStore, hub, log)
	tripleSvc := service.NewTripleService(tripleStore, hub, log)
	graphSvc := service.NewGraphService(graphStore, hub, log)

	llm := extract.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey.Value(), cfg.LLMModel, log)
	unitExtractor := extract.NewUnitExtractor(llm, log)
	relationExtractor := extract.NewRelationExtractor(llm, log)

	imports := importer.NewManager(unitStore, tripleStore, graphStore, unitExtractor, relationExtractor, hub, log)

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:            log,
		Pool:           pool,
		Hub:            hub,
		Units:          unitSvc,
		Triples:        tripleSvc,
		Graphs:         graphSvc,
		Imports:        imports,
		CORSOrigins:    cfg.CORSOrigins,
		Version:        version,
		LLMBaseURL:     cfg.LLMBaseURL,
		LLMModel:       cfg.LLMModel,
		ImportMaxSize:  cfg.ImportMaxSize,
		ImportMaxPairs: cfg.MaxPairs,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Addr()).Info("server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}

	hub.Shutdown()

	log.Info("server exited")
}
