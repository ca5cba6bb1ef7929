// Command presetsync publishes a preset tree and its audio previews into
// blob storage and the catalog. Runs are idempotent; with --watch it keeps
// running and re-syncs when the trees change.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"presetcore/internal/blob"
	"presetcore/internal/catalog"
	"presetcore/internal/config"
	"presetcore/internal/match"
	"presetcore/internal/syncer"
)

const watchDebounce = 2 * time.Second

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "presetsync: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	flags := pflag.NewFlagSet("presetsync", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to YAML config file")
	presetRoot := flags.String("presets", "", "preset tree root (overrides config)")
	previewRoot := flags.String("previews", "", "preview tree root (overrides config)")
	workers := flags.Int("workers", 0, "parallel asset pipelines (overrides config)")
	watch := flags.Bool("watch", false, "keep running and re-sync on tree changes")
	metricsAddr := flags.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9100)")
	logLevel := flags.String("log-level", "info", "log level: debug, info, warn, error")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unknown arguments: %v", flags.Args())
	}

	logger, err := newLogger(*logLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *presetRoot != "" {
		cfg.PresetRoot = *presetRoot
	}
	if *previewRoot != "" {
		cfg.PreviewRoot = *previewRoot
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	presets, err := blob.Open(ctx, cfg.BlobConfig(), cfg.PresetBucket)
	if err != nil {
		return fmt.Errorf("open preset bucket: %w", err)
	}
	previews, err := blob.Open(ctx, cfg.BlobConfig(), cfg.PreviewBucket)
	if err != nil {
		return fmt.Errorf("open preview bucket: %w", err)
	}
	cat, err := catalog.Open(ctx, cfg.CatalogConfig())
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = cat.Close() }()

	registry := prometheus.NewRegistry()
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", "addr", *metricsAddr)
	}

	orch, err := syncer.New(syncer.Options{
		PresetRoot: cfg.PresetRoot,
		Matcher:    match.New(cfg.PreviewRoot, match.Config{}),
		Presets:    presets,
		Previews:   previews,
		Catalog:    cat,
		Workers:    cfg.Workers,
		Logger:     logger,
		Metrics:    syncer.NewMetrics(registry),
	})
	if err != nil {
		return err
	}

	if err := runOnce(ctx, orch, logger); err != nil {
		return err
	}
	if !*watch {
		return nil
	}
	return watchLoop(ctx, orch, logger, cfg.PresetRoot, cfg.PreviewRoot)
}

func runOnce(ctx context.Context, orch *syncer.Orchestrator, logger *slog.Logger) error {
	summary, err := orch.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("sync complete",
		"processed", summary.Processed,
		"published", summary.Published,
		"unmatched", summary.Unmatched,
		"failed", summary.Failed)
	fmt.Printf("processed %d, published %d, unmatched %d, failed %d\n",
		summary.Processed, summary.Published, summary.Unmatched, summary.Failed)
	for _, f := range summary.Failures {
		fmt.Printf("  failed %s (%s): %v\n", f.Path, f.Stage, f.Err)
	}
	return nil
}

// watchLoop re-syncs after filesystem events settle. fsnotify does not watch
// recursively, so every directory under both roots is registered, and new
// directories are picked up on the rescan that follows each sync.
func watchLoop(ctx context.Context, orch *syncer.Orchestrator, logger *slog.Logger, roots ...string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()
	if err := addTrees(w, roots); err != nil {
		return err
	}
	logger.Info("watching for changes", "roots", roots)

	deb := newDebouncer(watchDebounce)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Errors:
			logger.Warn("watch error", "error", err)
		case ev := <-w.Events:
			logger.Debug("tree changed", "path", ev.Name, "op", ev.Op.String())
			deb.Bump()
		case <-deb.C():
			if err := runOnce(ctx, orch, logger); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Error("sync failed", "error", err)
			}
			if err := addTrees(w, roots); err != nil {
				logger.Warn("rescan watch dirs", "error", err)
			}
		}
	}
}

func addTrees(w *fsnotify.Watcher, roots []string) error {
	for _, root := range roots {
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return err
			}
			return w.Add(p)
		})
		if err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
	}
	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      lvl,
		TimeFormat: time.TimeOnly,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})), nil
}
