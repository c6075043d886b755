package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/vanmitra/fra-pipeline/internal/categorize"
	"github.com/vanmitra/fra-pipeline/internal/config"
	"github.com/vanmitra/fra-pipeline/internal/core/ports"
	"github.com/vanmitra/fra-pipeline/internal/core/usecase"
	"github.com/vanmitra/fra-pipeline/internal/eligibility"
	"github.com/vanmitra/fra-pipeline/internal/extraction"
	"github.com/vanmitra/fra-pipeline/internal/infrastructure/queue/nats"
	"github.com/vanmitra/fra-pipeline/internal/infrastructure/recognizer"
	"github.com/vanmitra/fra-pipeline/internal/infrastructure/repository/postgres"
	"github.com/vanmitra/fra-pipeline/internal/infrastructure/resilience"
	"github.com/vanmitra/fra-pipeline/internal/infrastructure/storage/localfs"
	"github.com/vanmitra/fra-pipeline/internal/quality"
)

type App struct {
	Config config.Config

	Queue ports.MessageQueue
	Repo  ports.DocumentRepository

	IngestUC  ports.DocumentIngestor
	ProcessUC *usecase.ProcessDocumentUseCase
	ReviewUC  ports.ReviewService
	Reader    ports.DocumentReader
	Exporter  ports.ResultExporter
	Catalog   ports.CatalogReloader

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	audit := postgres.NewAuditRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executorCfg := resilience.DefaultConfig()
	executorCfg.RetryMaxAttempts = cfg.RetryMaxAttempt
	executor := resilience.NewExecutor(executorCfg)

	queue, err := nats.NewQueue(cfg.NATSURL, executor)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ocr := recognizer.NewClient(
		cfg.RecognizerURL,
		time.Duration(cfg.RecognizerTimeoutSeconds)*time.Second,
		executor,
	)

	table, err := categorize.LoadTable(cfg.CategoryTablePath)
	if err != nil {
		return nil, fmt.Errorf("load category table: %w", err)
	}
	categorizer := categorize.New(table)

	assessor := quality.NewAssessor(quality.Config{
		LowConfidenceThreshold: cfg.LowConfidenceThreshold,
	})

	catalogStore, err := eligibility.NewCatalogStore(cfg.SchemeCatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load scheme catalog: %w", err)
	}
	engine := eligibility.NewEngine(eligibility.Thresholds{
		HighBenefit:   cfg.HighBenefitThreshold,
		MediumBenefit: cfg.MediumBenefitThreshold,
	})
	schemes := eligibility.NewService(engine, catalogStore)

	extractor := extraction.NewExtractor()
	analyzer := usecase.NewAnalyzer(categorizer, assessor, schemes, schemes)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(
		repo, audit, storage, ocr, extractor, analyzer,
		time.Duration(cfg.RecognizerTimeoutSeconds)*time.Second,
	)
	reviewUC := usecase.NewReviewUseCase(repo, audit, analyzer, queue)
	reader := usecase.NewDocumentReadModel(repo, audit)
	exporter := usecase.NewExportUseCase(repo)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		ReviewUC:  reviewUC,
		Reader:    reader,
		Exporter:  exporter,
		Catalog:   schemes,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
