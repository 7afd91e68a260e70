package rawtool

import (
	"fmt"
	"strconv"

	"github.com/stmtc233/rawviewer/internal/decode"
)

// parsePPM converts a binary PPM (P6) stream into a bitmap artifact. The
// header is "P6", width, height and maxval as whitespace-separated tokens
// with optional #-comments, then a single whitespace byte, then width ×
// height × 3 bytes of interleaved RGB. That is exactly the pixel layout
// FormatBitmapRGB declares, so the data passes through unconverted.
func parsePPM(data []byte) (*decode.Artifact, error) {
	magic, pos, err := nextToken(data, 0)
	if err != nil || magic != "P6" {
		return nil, fmt.Errorf("%w: output is not a binary PPM stream", decode.ErrDecodeFailed)
	}

	width, pos, err := nextIntToken(data, pos)
	if err != nil {
		return nil, fmt.Errorf("%w: bad PPM width: %v", decode.ErrDecodeFailed, err)
	}
	height, pos, err := nextIntToken(data, pos)
	if err != nil {
		return nil, fmt.Errorf("%w: bad PPM height: %v", decode.ErrDecodeFailed, err)
	}
	maxval, pos, err := nextIntToken(data, pos)
	if err != nil {
		return nil, fmt.Errorf("%w: bad PPM maxval: %v", decode.ErrDecodeFailed, err)
	}

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid PPM dimensions %dx%d", decode.ErrDecodeFailed, width, height)
	}
	if maxval != 255 {
		// 16-bit output means the tool was invoked with unexpected flags.
		return nil, fmt.Errorf("%w: PPM maxval %d, want 255", decode.ErrUnsupported, maxval)
	}

	// One whitespace byte separates the header from the pixel data.
	pos++
	want := width * height * 3
	if len(data)-pos < want {
		return nil, fmt.Errorf("%w: PPM holds %d pixel bytes, want %d",
			decode.ErrDecodeFailed, len(data)-pos, want)
	}

	return &decode.Artifact{
		Data:   data[pos : pos+want],
		Width:  width,
		Height: height,
		Format: decode.FormatBitmapRGB,
	}, nil
}

// nextToken returns the next whitespace-delimited header token starting at
// pos, skipping #-to-end-of-line comments, and the offset just past it.
func nextToken(data []byte, pos int) (string, int, error) {
	for pos < len(data) {
		switch c := data[pos]; {
		case c == '#':
			for pos < len(data) && data[pos] != '\n' {
				pos++
			}
		case isPPMSpace(c):
			pos++
		default:
			start := pos
			for pos < len(data) && !isPPMSpace(data[pos]) && data[pos] != '#' {
				pos++
			}
			return string(data[start:pos]), pos, nil
		}
	}
	return "", pos, fmt.Errorf("unexpected end of PPM header")
}

func nextIntToken(data []byte, pos int) (int, int, error) {
	tok, pos, err := nextToken(data, pos)
	if err != nil {
		return 0, pos, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, pos, err
	}
	return n, pos, nil
}

func isPPMSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
