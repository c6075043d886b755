package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/vanmitra/fra-pipeline/internal/adapters/http"
	"github.com/vanmitra/fra-pipeline/internal/bootstrap"
	"github.com/vanmitra/fra-pipeline/internal/config"
	"github.com/vanmitra/fra-pipeline/internal/observability/logging"
	"github.com/vanmitra/fra-pipeline/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("fra-pipeline-api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics("fra-pipeline-api")
	limiter := httpadapter.NewTrafficLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, func() {
		httpMetrics.RecordRateLimited("fra-pipeline-api")
	})

	router := httpadapter.NewRouter(
		app.IngestUC,
		app.Reader,
		app.ReviewUC,
		app.Exporter,
		app.Catalog,
		httpMetrics,
		int64(cfg.MaxUploadMB)<<20,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", httpMetrics.Handler())
	mux.Handle("/", router.Handler(limiter))

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_error", "error", err)
	}
}
