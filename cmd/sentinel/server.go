package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/plantops/sentinel/pkg/api"
	"github.com/plantops/sentinel/pkg/compliance"
	"github.com/plantops/sentinel/pkg/config"
	"github.com/plantops/sentinel/pkg/corpus"
	"github.com/plantops/sentinel/pkg/features"
	"github.com/plantops/sentinel/pkg/observability"
	"github.com/plantops/sentinel/pkg/scoring"
)

// corpusStore is the persistence surface both store backends satisfy.
type corpusStore interface {
	Save(ctx context.Context, ix *corpus.Index) error
	Load(ctx context.Context) (*corpus.Index, error)
	Close() error
}

func runServer(errOut io.Writer) int {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)
	logger := slog.Default()
	ctx := context.Background()

	obs, err := observability.New(ctx, &observability.Config{
		ServiceName:    "sentinel",
		ServiceVersion: "1.0.0",
		Environment:    getenvDefault("ENVIRONMENT", "development"),
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     1.0,
		BatchTimeout:   5 * time.Second,
		Enabled:        cfg.OTLPEndpoint != "",
		Insecure:       true,
	})
	if err != nil {
		fmt.Fprintf(errOut, "observability init failed: %v\n", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()

	store, err := openCorpusStore(cfg.CorpusDriver, cfg.CorpusDBPath, cfg.CorpusDSN)
	if err != nil {
		fmt.Fprintf(errOut, "corpus store: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	index, err := loadOrBuildIndex(ctx, cfg, store, obs, logger)
	if err != nil {
		fmt.Fprintf(errOut, "corpus init failed: %v\n", err)
		return 1
	}
	snapshot := corpus.NewSnapshot(index)
	logger.Info("corpus ready", "rules", index.Len(), "version", index.Version())

	service, limiter, err := buildService(cfg, snapshot, obs)
	if err != nil {
		fmt.Fprintf(errOut, "engine init failed: %v\n", err)
		return 1
	}

	handler := obs.HTTPMiddleware(service.Routes(limiter))
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(errOut, "server failed: %v\n", err)
			return 1
		}
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(errOut, "shutdown failed: %v\n", err)
			return 1
		}
	}
	return 0
}

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN", "WARNING":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// loadOrBuildIndex restores the persisted corpus, falling back to building
// from the pack directory when the store is empty.
func loadOrBuildIndex(ctx context.Context, cfg *config.Config, store corpusStore, obs *observability.Provider, logger *slog.Logger) (*corpus.Index, error) {
	ctx, finish := obs.TrackOperation(ctx, "corpus.load")

	index, err := store.Load(ctx)
	if err == nil {
		observability.AddSpanEvent(ctx, "corpus.restored",
			observability.CorpusOperation(index.Version(), index.Len())...)
		finish(nil)
		return index, nil
	}
	logger.Info("corpus store not usable, building from packs", "reason", err, "pack_dir", cfg.PackDir)

	entries, err := corpus.LoadEntries(corpus.DirSource{Dir: cfg.PackDir})
	if err != nil {
		finish(err)
		return nil, err
	}
	index, err = corpus.BuildIndex(entries, time.Now().UTC().Format("2006-01-02"))
	if err != nil {
		finish(err)
		return nil, err
	}
	if err := store.Save(ctx, index); err != nil {
		err = fmt.Errorf("persist corpus: %w", err)
		finish(err)
		return nil, err
	}
	observability.AddSpanEvent(ctx, "corpus.built",
		observability.CorpusOperation(index.Version(), index.Len())...)
	finish(nil)
	return index, nil
}

func buildService(cfg *config.Config, snapshot *corpus.Snapshot, obs *observability.Provider) (*api.Service, *api.GlobalRateLimiter, error) {
	modelProfile := scoring.DefaultModelProfile()
	if cfg.ModelProfilePath != "" {
		var err error
		modelProfile, err = scoring.LoadModelProfile(cfg.ModelProfilePath)
		if err != nil {
			return nil, nil, err
		}
	}

	engineProfile := config.DefaultEngineProfile()
	if cfg.EngineProfile != "" {
		var err error
		engineProfile, err = config.LoadEngineProfile(cfg.EngineProfile)
		if err != nil {
			return nil, nil, err
		}
	}

	normalizerCfg, err := modelProfile.NormalizerConfig()
	if err != nil {
		return nil, nil, err
	}
	normalizer, err := features.NewNormalizer(normalizerCfg)
	if err != nil {
		return nil, nil, err
	}
	model, err := modelProfile.Model()
	if err != nil {
		return nil, nil, err
	}
	advisor, err := scoring.NewAdvisor(engineProfile.Severity)
	if err != nil {
		return nil, nil, err
	}
	matcher, err := compliance.NewMatcher(snapshot, engineProfile.Compliance)
	if err != nil {
		return nil, nil, err
	}

	service, err := api.NewService(normalizer, model, advisor, matcher)
	if err != nil {
		return nil, nil, err
	}
	service = service.WithObservability(obs)

	limiter := api.NewGlobalRateLimiter(20, 40)
	if cfg.RedisAddr != "" {
		limiter = limiter.WithStore(api.NewRedisLimiterStore(cfg.RedisAddr, 20, 40))
	}
	return service, limiter, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
