// Package app wires together all dependencies and runs the filter service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/kryptonum-dev/audiofast-filters/internal/catalog"
	"github.com/kryptonum-dev/audiofast-filters/internal/cms"
	"github.com/kryptonum-dev/audiofast-filters/internal/config"
	"github.com/kryptonum-dev/audiofast-filters/internal/event"
	handler "github.com/kryptonum-dev/audiofast-filters/internal/handler/http"
	"github.com/kryptonum-dev/audiofast-filters/internal/service"
	"github.com/kryptonum-dev/audiofast-filters/pkg/health"
	pkgkafka "github.com/kryptonum-dev/audiofast-filters/pkg/kafka"
	"github.com/kryptonum-dev/audiofast-filters/pkg/middleware"
	"github.com/kryptonum-dev/audiofast-filters/pkg/tracing"
)

// App holds the running components of the filter service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	service    *service.FilterService
	consumers  []*pkgkafka.Consumer
	httpServer *http.Server

	tracerShutdown func(context.Context) error
	catalogLoaded  atomic.Bool
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: logger,
	}

	// Tracing.
	tracingCfg := tracing.Config{
		ServiceName:    "filters",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampleRate,
		Enabled:        cfg.TracingEnabled,
	}
	tracerShutdown, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	// Catalog store and service layer.
	store := catalog.NewMemoryStore()
	cmsClient := cms.NewClient(cfg.CMSBaseURL, logger)
	a.service = service.NewFilterService(store, cmsClient, logger)
	logger.Info("in-memory catalog initialized",
		slog.String("cms_url", cfg.CMSBaseURL),
	)

	// Kafka consumers for product events.
	if cfg.KafkaEnabled {
		eventConsumer := event.NewConsumer(a.service, logger)

		topics := []string{
			event.TopicProductCreated,
			event.TopicProductUpdated,
			event.TopicProductDeleted,
		}

		for _, topic := range topics {
			consumerCfg := pkgkafka.ConsumerConfig{
				Brokers:  cfg.KafkaBrokers,
				GroupID:  cfg.ConsumerGroup,
				Topic:    topic,
				MinBytes: 1,
				MaxBytes: 10e6, // 10 MB
			}
			c := pkgkafka.NewConsumer(consumerCfg, eventConsumer.Handle, logger)
			a.consumers = append(a.consumers, c)
		}
		logger.Info("kafka consumers initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.Int("topic_count", len(topics)),
		)
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("catalog", func(_ context.Context) error {
		if !a.catalogLoaded.Load() {
			return errors.New("catalog not loaded yet")
		}
		return nil
	})
	if cfg.KafkaEnabled {
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
	}

	// HTTP router.
	corsCfg := middleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Environment:    cfg.Environment,
	}
	router := handler.NewRouter(a.service, healthHandler, corsCfg, logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// Run starts the HTTP server, the Kafka consumers, and the initial catalog
// load, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	// Initial catalog load. Runs in the background so a slow CMS does not
	// delay startup; readiness reports unhealthy until it completes.
	go a.loadCatalog(ctx)

	// Start Kafka consumers in background goroutines.
	for _, c := range a.consumers {
		c := c
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	// Start HTTP server.
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// loadCatalog performs the initial full catalog fetch, retrying with a fixed
// delay until it succeeds or the context is canceled.
func (a *App) loadCatalog(ctx context.Context) {
	const retryDelay = 10 * time.Second

	for {
		err := a.service.Reindex(ctx)
		if err == nil {
			a.catalogLoaded.Store(true)
			a.logger.Info("initial catalog load complete")
			return
		}

		a.logger.Error("initial catalog load failed",
			slog.String("error", err.Error()),
			slog.Duration("retry_in", retryDelay),
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay):
		}
	}
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// Close Kafka consumers.
	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// Flush pending spans.
	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
