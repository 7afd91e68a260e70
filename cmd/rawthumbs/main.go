// Package main implements rawthumbs, a command-line tool that pre-warms
// decoded artifacts for a directory of RAW files and exports them as
// viewable images. It is a caller of the engine: the same scheduler,
// cache, and decoder a viewer UI would sit on top of.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/stmtc233/rawviewer/internal/config"
	"github.com/stmtc233/rawviewer/internal/decode"
	"github.com/stmtc233/rawviewer/internal/platform/logger"
)

func main() {
	inputDir := flag.String("in", ".", "directory to scan for RAW files")
	outputDir := flag.String("out", "thumbs", "directory decoded artifacts are written to")
	kindName := flag.String("kind", "thumbnail", "artifact to produce: thumbnail or preview")
	halfSize := flag.Bool("half", false, "render previews at half resolution")
	flag.Parse()

	if err := run(*inputDir, *outputDir, *kindName, *halfSize); err != nil {
		fmt.Fprintf(os.Stderr, "rawthumbs: %v\n", err)
		os.Exit(1)
	}
}

func run(inputDir, outputDir, kindName string, halfSize bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Logging)

	kind, err := parseKind(kindName)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.prewarmDirectory(ctx, inputDir, outputDir, kind, halfSize)
}

// parseKind maps the -kind flag onto a decode.Kind.
func parseKind(name string) (decode.Kind, error) {
	switch strings.ToLower(name) {
	case "thumbnail":
		return decode.KindThumbnail, nil
	case "preview":
		return decode.KindPreview, nil
	default:
		return 0, fmt.Errorf("unknown artifact kind %q, want thumbnail or preview", name)
	}
}
