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

	"github.com/vanmitra/fra-pipeline/internal/bootstrap"
	"github.com/vanmitra/fra-pipeline/internal/config"
	"github.com/vanmitra/fra-pipeline/internal/core/domain"
	"github.com/vanmitra/fra-pipeline/internal/observability/logging"
	"github.com/vanmitra/fra-pipeline/internal/observability/metrics"
)

const workerService = "fra-pipeline-worker"

// stageObserver feeds pipeline stage telemetry into the worker registry.
type stageObserver struct {
	m *metrics.WorkerMetrics
}

func (o stageObserver) ObserveStage(stage string, duration time.Duration) {
	o.m.ObserveStage(workerService, stage, duration)
}

func (o stageObserver) ObserveExtractedFields(docType domain.DocumentType, count int) {
	o.m.ObserveExtractedFields(workerService, string(docType), count)
}

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(workerService, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(workerService)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("worker metrics server error: %v", err)
		}
	}()

	app.ProcessUC.WithObserver(stageObserver{m: workerMetrics})

	pipelineTimeout := time.Duration(cfg.PipelineTimeoutSeconds) * time.Second

	err = app.Queue.SubscribeDocumentQueued(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, pipelineTimeout)
		defer cancel()

		if doc, err := app.Repo.GetByID(processCtx, documentID); err == nil {
			workerMetrics.ObserveQueueLag(workerService, time.Since(doc.CreatedAt))
		}

		workerMetrics.StartDocument()
		start := time.Now()
		processErr := app.ProcessUC.ProcessByID(processCtx, documentID)
		workerMetrics.FinishDocument(workerService, time.Since(start), processErr)

		if processErr != nil {
			slog.Error("document_process_failed", "document_id", documentID, "error", processErr)
		}
		return processErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}

	slog.Info("worker_subscribed")
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("worker_metrics_shutdown_error", "error", err)
	}
}
