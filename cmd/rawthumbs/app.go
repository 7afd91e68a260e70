package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stmtc233/rawviewer/internal/config"
	"github.com/stmtc233/rawviewer/internal/decode"
	"github.com/stmtc233/rawviewer/internal/events"
	"github.com/stmtc233/rawviewer/internal/imaging"
	"github.com/stmtc233/rawviewer/internal/platform/rawtool"
	"github.com/stmtc233/rawviewer/internal/service"
	"github.com/stmtc233/rawviewer/internal/task"
)

// application holds the wired-up engine components for one run.
type application struct {
	config    *config.Config
	logger    *slog.Logger
	scheduler *task.Scheduler
	service   service.ThumbnailService
}

// newApplication builds the component graph: decoder, scheduler, event
// emitter, and the thumbnail service on top of them.
func newApplication(cfg *config.Config, log *slog.Logger) (*application, error) {
	decoder, err := rawtool.NewDecoder(rawtool.Config{
		Tool:    cfg.Decoder.Tool,
		Timeout: time.Duration(cfg.Decoder.TimeoutSeconds) * time.Second,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	scheduler, err := task.NewScheduler(decoder, task.SchedulerConfig{
		WorkerCount: cfg.Pool.WorkerCount,
		QueueSize:   cfg.Pool.QueueSize,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(&progressHandler{logger: log})

	svc, err := service.NewThumbnailService(scheduler, service.NewArtifactCache(cfg.Cache.MaxBytes), emitter, log)
	if err != nil {
		scheduler.Close()
		return nil, fmt.Errorf("failed to create thumbnail service: %w", err)
	}

	return &application{
		config:    cfg,
		logger:    log,
		scheduler: scheduler,
		service:   svc,
	}, nil
}

// cleanup stops the scheduler and resolves anything still pending.
func (a *application) cleanup() {
	a.scheduler.Close()
}

// prewarmDirectory schedules a low-priority decode for every RAW file in
// inputDir and exports the artifacts to outputDir as they finish. A file
// that fails to decode is logged and skipped; it does not abort the batch.
func (a *application) prewarmDirectory(
	ctx context.Context,
	inputDir, outputDir string,
	kind decode.Kind,
	halfSize bool,
) error {
	sources, err := findRAWFiles(inputDir)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		a.logger.Info("no RAW files found", "dir", inputDir)
		return nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	a.logger.Info("pre-warming artifacts",
		"files", len(sources),
		"kind", kind.String(),
		"workers", a.config.Pool.WorkerCount)

	g, ctx := errgroup.WithContext(ctx)
	for _, source := range sources {
		source := source
		req := decode.Request{Source: source, Kind: kind, HalfSize: halfSize}

		h, err := a.service.Prewarm(req)
		if err != nil {
			if errors.Is(err, service.ErrAlreadyCached) {
				continue
			}
			return fmt.Errorf("failed to schedule %s: %w", source, err)
		}

		g.Go(func() error {
			artifact, err := h.Result(ctx)
			if err != nil {
				if ctx.Err() != nil {
					h.Cancel()
					return ctx.Err()
				}
				a.logger.Warn("decode failed", "source", source, "error", err)
				return nil
			}
			return exportArtifact(outputDir, source, artifact)
		})
	}

	err = g.Wait()

	bytes, entries := a.service.CacheStats()
	a.logger.Info("pre-warm finished",
		"cache_bytes", bytes,
		"cache_entries", entries)

	return err
}

// exportArtifact renders the artifact into a displayable container and
// writes it next to its siblings in outputDir, named after the source.
func exportArtifact(outputDir, source string, artifact *decode.Artifact) error {
	data, err := imaging.Render(artifact)
	if err != nil {
		return fmt.Errorf("failed to render artifact for %s: %w", source, err)
	}

	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	dest := filepath.Join(outputDir, base+"."+imaging.FileExt(artifact.Format))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

// rawExtensions lists the RAW container extensions rawthumbs scans for.
var rawExtensions = map[string]bool{
	".arw": true,
	".cr2": true,
	".cr3": true,
	".dng": true,
	".nef": true,
	".nrw": true,
	".orf": true,
	".pef": true,
	".raf": true,
	".raw": true,
	".rw2": true,
	".srw": true,
}

// findRAWFiles returns the RAW files directly inside dir, sorted by name.
func findRAWFiles(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var sources []string
	for _, e := range dirEntries {
		if e.IsDir() {
			continue
		}
		if rawExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			sources = append(sources, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(sources)
	return sources, nil
}

// progressHandler logs each artifact as it lands in the cache.
type progressHandler struct {
	logger *slog.Logger
}

func (h *progressHandler) HandleEvent(_ context.Context, event *events.ArtifactEvent) error {
	h.logger.Info("artifact ready",
		"source", event.Source,
		"kind", event.Kind.String(),
		"size_bytes", event.SizeBytes)
	return nil
}
