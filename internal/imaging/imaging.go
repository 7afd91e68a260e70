package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/bmp"

	"github.com/stmtc233/rawviewer/internal/decode"
)

// Common errors returned by the imaging package
var (
	// ErrNilArtifact is returned when the artifact is nil
	ErrNilArtifact = errors.New("artifact cannot be nil")

	// ErrMalformedArtifact is returned when the artifact's data does not
	// match its declared format or dimensions
	ErrMalformedArtifact = errors.New("artifact data does not match its format")

	// ErrUnknownFormat is returned for artifact formats this package
	// cannot render
	ErrUnknownFormat = errors.New("unknown artifact format")
)

// Render returns displayable container bytes for the artifact. JPEG
// artifacts are returned as-is; raw RGB bitmaps are wrapped in a BMP
// container so any image viewer can open them.
func Render(a *decode.Artifact) ([]byte, error) {
	if a == nil {
		return nil, ErrNilArtifact
	}

	switch a.Format {
	case decode.FormatJPEG:
		return a.Data, nil

	case decode.FormatBitmapRGB:
		return wrapBitmap(a)

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, a.Format)
	}
}

// FileExt returns the conventional file extension for artifacts of the
// given format, without the leading dot.
func FileExt(f decode.Format) string {
	if f == decode.FormatJPEG {
		return "jpg"
	}
	return "bmp"
}

// Dimensions returns the pixel width and height of the artifact. Bitmap
// artifacts carry their dimensions directly; for JPEG artifacts the stream
// header is probed without decoding the pixels.
func Dimensions(a *decode.Artifact) (int, int, error) {
	if a == nil {
		return 0, 0, ErrNilArtifact
	}

	switch a.Format {
	case decode.FormatJPEG:
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(a.Data))
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %v", ErrMalformedArtifact, err)
		}
		return cfg.Width, cfg.Height, nil

	case decode.FormatBitmapRGB:
		if a.Width <= 0 || a.Height <= 0 {
			return 0, 0, fmt.Errorf("%w: bitmap dimensions %dx%d", ErrMalformedArtifact, a.Width, a.Height)
		}
		return a.Width, a.Height, nil

	default:
		return 0, 0, fmt.Errorf("%w: %d", ErrUnknownFormat, a.Format)
	}
}

// wrapBitmap converts interleaved 8-bit RGB pixels into a BMP container.
func wrapBitmap(a *decode.Artifact) ([]byte, error) {
	if a.Width <= 0 || a.Height <= 0 {
		return nil, fmt.Errorf("%w: bitmap dimensions %dx%d", ErrMalformedArtifact, a.Width, a.Height)
	}
	if len(a.Data) != a.Width*a.Height*3 {
		return nil, fmt.Errorf("%w: %d bytes of pixel data for %dx%d bitmap",
			ErrMalformedArtifact, len(a.Data), a.Width, a.Height)
	}

	img := image.NewNRGBA(image.Rect(0, 0, a.Width, a.Height))
	for i := 0; i < a.Width*a.Height; i++ {
		img.Pix[i*4+0] = a.Data[i*3+0]
		img.Pix[i*4+1] = a.Data[i*3+1]
		img.Pix[i*4+2] = a.Data[i*3+2]
		img.Pix[i*4+3] = 0xff
	}

	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode bitmap: %w", err)
	}
	return buf.Bytes(), nil
}
