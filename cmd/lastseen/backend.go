package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lastseen/internal/blobstore"
	"lastseen/internal/calendar"
	"lastseen/internal/classify"
	"lastseen/internal/config"
	"lastseen/internal/geocode"
	"lastseen/internal/heuristic"
	"lastseen/internal/logging"
	"lastseen/internal/pipeline"
	"lastseen/internal/publish"
	"lastseen/internal/runner"
	"lastseen/internal/services"
	"lastseen/internal/services/llm"
	"lastseen/internal/services/places"
	"lastseen/internal/sqlitedb"
	"lastseen/internal/verdict"
)

// backend bundles the blob store for both documents and the verdict store
// layered on it.
type backend struct {
	blobs    blobstore.Store
	verdicts verdict.Store
	db       *sqlitedb.DB
}

func (b *backend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func (b *backend) describe() string {
	return blobstore.Describe(b.blobs)
}

func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	log := logging.NewComponentLogger(logger, "store")
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		db, err := sqlitedb.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		log.Debug("store opened", logging.String("backend", "sqlite"), logging.String("path", db.Path()))
		return &backend{blobs: blobstore.NewSQLite(db), verdicts: verdict.NewSQLiteStore(db), db: db}, nil
	case config.BackendS3:
		s3, err := blobstore.NewS3(ctx, blobstore.S3Options{
			Bucket: cfg.Store.S3Bucket,
			Region: cfg.Store.S3Region,
			Prefix: cfg.Store.S3Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open s3 store: %w", err)
		}
		log.Debug("store opened", logging.String("backend", "s3"), logging.String("bucket", cfg.Store.S3Bucket))
		return &backend{blobs: s3, verdicts: verdict.NewDocumentStore(s3, cfg.Store.CacheKey)}, nil
	default:
		files := blobstore.NewFile(cfg.Store.Dir)
		log.Debug("store opened", logging.String("backend", "file"), logging.String("dir", cfg.Store.Dir))
		return &backend{blobs: files, verdicts: verdict.NewDocumentStore(files, cfg.Store.CacheKey)}, nil
	}
}

func newCalendarSource(cfg *config.Config, logger *slog.Logger) *calendar.ICSSource {
	return calendar.NewICSSource(calendar.ICSOptions{
		Location:   cfg.Calendar.ICSURL,
		TimeZone:   cfg.Location(),
		MaxResults: cfg.Calendar.MaxResults,
		Client: services.NewHTTPClient(services.HTTPOptions{
			Timeout:    time.Duration(cfg.Calendar.RequestTimeout) * time.Second,
			MaxRetries: 2,
			Logger:     logger,
		}),
		Logger: logger,
	})
}

func newOracleClient(cfg *config.Config, logger *slog.Logger) *llm.Client {
	return llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		MaxRetries:     cfg.LLM.MaxRetries,
	}, llm.WithRateLimit(cfg.LLM.RequestsPerMinute), llm.WithLogger(logger))
}

func newPlacesClient(cfg *config.Config, logger *slog.Logger) *places.Client {
	return places.NewClient(places.Config{
		APIKey:            cfg.Geocoding.APIKey,
		BaseURL:           cfg.Geocoding.BaseURL,
		TimeoutSeconds:    cfg.Geocoding.TimeoutSeconds,
		MaxRetries:        cfg.Geocoding.MaxRetries,
		RequestsPerSecond: cfg.Geocoding.RequestsPerSecond,
	}, places.WithLogger(logger))
}

func newRunner(cfg *config.Config, b *backend, logger *slog.Logger) (*runner.Runner, error) {
	if err := cfg.ValidateRun(); err != nil {
		return nil, err
	}
	decider := pipeline.New(
		heuristic.FromConfig(cfg.Heuristics),
		classify.New(newOracleClient(cfg, logger), logger),
		geocode.New(newPlacesClient(cfg, logger), logger),
		pipeline.Options{Concurrency: cfg.Pipeline.Concurrency, Logger: logger},
	)
	return runner.New(runner.Deps{
		Source:    newCalendarSource(cfg, logger),
		Store:     b.verdicts,
		Decider:   decider,
		Publisher: publish.New(b.blobs, cfg.Store.StatusKey, logger),
		Logger:    logger,
	}, runner.Options{
		Lookahead:                 cfg.Lookahead(),
		Lookback:                  cfg.Lookback(),
		Location:                  cfg.Location(),
		AllowIncrementalDecisions: cfg.Pipeline.IncrementalAllowLLM,
		Placeholder:               cfg.Publish.Placeholder,
		LockPath:                  cfg.Store.LockPath,
	})
}
