package main

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Skufu/healthrec/internal/config"
	"github.com/Skufu/healthrec/internal/content"
	"github.com/Skufu/healthrec/internal/logging"
	"github.com/Skufu/healthrec/internal/metrics"
	"github.com/Skufu/healthrec/internal/recommend"
)

//go:embed templates/*.html
var templateFS embed.FS

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Recommender interface {
	Recommend(req recommend.Request) ([]string, error)
}

// serve loads the tables, starts the HTTP server and blocks until a
// shutdown signal arrives.
func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	gin.SetMode(cfg.GinMode)

	rec, err := loadRecommender(cfg, log)
	if err != nil {
		return err
	}

	var db HealthChecker
	if cfg.EnableDB {
		pool, err := connectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()
		db = pool
	}

	router := setupRouter(rec, db, log, cfg.MaxBodyBytes)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("server listening")
	return waitForShutdown(ctx, server, errCh, log)
}

// loadRecommender reads both tables and builds the read-only recommender.
// Any load failure is fatal for the process.
func loadRecommender(cfg *config.Config, log zerolog.Logger) (*recommend.Recommender, error) {
	items, err := content.LoadItems(cfg.ContentFile)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	conditions, err := content.LoadConditions(cfg.ConditionsFile)
	if err != nil {
		return nil, fmt.Errorf("load conditions: %w", err)
	}

	metrics.ContentItemsLoaded.Set(float64(len(items)))
	metrics.ConditionsLoaded.Set(float64(len(conditions)))
	log.Info().
		Str("content_file", cfg.ContentFile).
		Int("items", len(items)).
		Str("conditions_file", cfg.ConditionsFile).
		Int("conditions", len(conditions)).
		Msg("tables loaded")

	return recommend.New(items, conditions,
		recommend.WithReference(cfg.ReferenceItem),
		recommend.WithLimit(cfg.Limit),
		recommend.WithLogger(log),
		recommend.WithConditionObserver(metrics.RecordConditionLookups),
	), nil
}

func connectDB(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

func setupRouter(rec Recommender, db HealthChecker, log zerolog.Logger, maxBodyBytes int64) *gin.Engine {
	router := gin.New()
	router.Use(
		logging.Middleware(log),
		gin.Recovery(),
		metrics.Middleware(),
		limitBodySize(maxBodyBytes),
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}),
	)
	router.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	h := &handler{rec: rec}
	router.GET("/", h.index)
	router.POST("/", h.submitForm)
	router.POST("/api/recommendations", h.recommendJSON)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
	})

	router.GET("/metrics", metrics.Handler())

	return router
}

func waitForShutdown(ctx context.Context, server *http.Server, errCh <-chan error, log zerolog.Logger) error {
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
