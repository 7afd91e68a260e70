package rawtool

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/stmtc233/rawviewer/internal/decode"
)

// jpegMagic is the SOI marker opening every JPEG stream.
var jpegMagic = []byte{0xff, 0xd8}

// Config holds settings for the external decode tool.
type Config struct {
	// Tool is the dcraw-compatible executable to invoke. It must accept
	// -e -c for embedded thumbnail extraction and -c [-h] for PPM
	// rendering.
	Tool string

	// Timeout bounds a single tool invocation. Zero selects a default of
	// 30 seconds.
	Timeout time.Duration
}

// runFunc executes the tool and returns its standard output. Tests inject
// their own to avoid spawning processes.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Decoder produces artifacts by invoking an external RAW conversion tool
// once per request. It holds no mutable state, so one instance serves all
// workers concurrently.
type Decoder struct {
	tool    string
	timeout time.Duration
	logger  *slog.Logger
	run     runFunc
}

// Ensure Decoder implements the decode.Decoder interface.
var _ decode.Decoder = (*Decoder)(nil)

// NewDecoder creates a Decoder that shells out to the configured tool.
func NewDecoder(cfg Config, logger *slog.Logger) (*Decoder, error) {
	if cfg.Tool == "" {
		return nil, fmt.Errorf("%w: tool path cannot be empty", decode.ErrInvalidConfig)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("%w: timeout cannot be negative", decode.ErrInvalidConfig)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", decode.ErrInvalidConfig)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Decoder{
		tool:    cfg.Tool,
		timeout: timeout,
		logger:  logger.With("component", "rawtool_decoder"),
		run:     runCommand,
	}, nil
}

// Decode produces the artifact described by req by invoking the external
// tool. Each call is bounded by the configured timeout on top of whatever
// deadline ctx already carries.
func (d *Decoder) Decode(ctx context.Context, req decode.Request) (*decode.Artifact, error) {
	if req.Source == "" {
		return nil, fmt.Errorf("%w: empty source path", decode.ErrInvalidRequest)
	}
	if _, err := os.Stat(req.Source); err != nil {
		return nil, fmt.Errorf("%w: %v", decode.ErrOpenFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	switch req.Kind {
	case decode.KindThumbnail:
		return d.decodeThumbnail(ctx, req.Source)
	case decode.KindPreview:
		return d.renderPreview(ctx, req.Source, req.HalfSize)
	default:
		return nil, fmt.Errorf("%w: unknown artifact kind %d", decode.ErrInvalidRequest, req.Kind)
	}
}

// decodeThumbnail extracts the thumbnail embedded in the RAW file. Sources
// without one, or with one in a format we cannot hand to a display layer,
// fall back to a half-size render: slower, but it works for every file the
// tool can demosaic.
func (d *Decoder) decodeThumbnail(ctx context.Context, source string) (*decode.Artifact, error) {
	out, err := d.run(ctx, d.tool, "-e", "-c", source)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		d.logger.Debug("thumbnail extraction failed, falling back to half-size render",
			"source", source,
			"error", err)
		return d.renderPreview(ctx, source, true)
	}

	switch {
	case bytes.HasPrefix(out, jpegMagic):
		return &decode.Artifact{Data: out, Format: decode.FormatJPEG}, nil
	case bytes.HasPrefix(out, []byte("P6")):
		return parsePPM(out)
	default:
		d.logger.Debug("embedded thumbnail has unusable format, falling back to half-size render",
			"source", source)
		return d.renderPreview(ctx, source, true)
	}
}

// renderPreview demosaics the sensor data into an RGB bitmap.
func (d *Decoder) renderPreview(ctx context.Context, source string, halfSize bool) (*decode.Artifact, error) {
	args := []string{"-c"}
	if halfSize {
		args = append(args, "-h")
	}
	args = append(args, source)

	out, err := d.run(ctx, d.tool, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", decode.ErrDecodeFailed, err)
	}

	return parsePPM(out)
}

// runCommand is the production runFunc. The tool's standard error ends up
// in the returned error so decode failures carry the tool's own diagnosis.
func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w", msg, err)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
