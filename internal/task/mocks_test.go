package task

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stmtc233/rawviewer/internal/decode"
)

// stubDecoder is a controllable decode.Decoder for tests. Decodes record
// their source in start order. When started is set, each decode announces
// its source on it before continuing; when release is set, decodes block
// until it is closed or fed a token. outcomeFn, when set, supplies the
// return value per request.
type stubDecoder struct {
	mu        sync.Mutex
	calls     []string
	started   chan string
	release   chan struct{}
	outcomeFn func(req decode.Request) (*decode.Artifact, error)
}

func (d *stubDecoder) Decode(ctx context.Context, req decode.Request) (*decode.Artifact, error) {
	d.mu.Lock()
	d.calls = append(d.calls, req.Source)
	d.mu.Unlock()

	if d.started != nil {
		select {
		case d.started <- req.Source:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if d.release != nil {
		select {
		case <-d.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if d.outcomeFn != nil {
		return d.outcomeFn(req)
	}
	return &decode.Artifact{Data: []byte(req.Source), Format: decode.FormatJPEG}, nil
}

// decoded returns the sources decoded so far, in the order their decodes
// began.
func (d *stubDecoder) decoded() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// awaitStart waits for the stub decoder to begin decoding the given source.
func awaitStart(t *testing.T, started <-chan string, want string) {
	t.Helper()
	select {
	case got := <-started:
		if got != want {
			t.Fatalf("expected decode of %q to start, got %q", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for decode of %q to start", want)
	}
}
