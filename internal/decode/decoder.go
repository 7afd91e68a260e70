package decode

import "context"

// Kind selects which artifact a request should produce.
type Kind int

const (
	// KindThumbnail requests the quickest artifact available, preferring the
	// thumbnail embedded in the RAW file over a full demosaic render.
	KindThumbnail Kind = iota

	// KindPreview requests a rendered preview of the source image.
	KindPreview
)

// String returns a human-readable name for the kind, suitable for logging
// and cache key construction.
func (k Kind) String() string {
	switch k {
	case KindThumbnail:
		return "thumbnail"
	case KindPreview:
		return "preview"
	default:
		return "unknown"
	}
}

// Format identifies the encoding of an artifact's pixel data.
type Format int

const (
	// FormatJPEG means the artifact holds a complete JPEG stream, typically
	// an embedded camera thumbnail passed through unchanged.
	FormatJPEG Format = iota

	// FormatBitmapRGB means the artifact holds raw 8-bit interleaved RGB
	// pixels with no container; Width and Height describe the layout.
	FormatBitmapRGB
)

// String returns a human-readable name for the format.
func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatBitmapRGB:
		return "bitmap_rgb"
	default:
		return "unknown"
	}
}

// Request describes one decode operation.
type Request struct {
	// Source is the path to the RAW file on disk.
	Source string

	// Kind selects the artifact to produce.
	Kind Kind

	// HalfSize renders previews at half resolution, trading detail for
	// speed. It has no effect on thumbnail requests.
	HalfSize bool
}

// Artifact is the displayable result of a decode operation.
type Artifact struct {
	// Data holds the encoded payload. Its interpretation depends on Format.
	Data []byte

	// Width and Height are the pixel dimensions of the artifact. They are
	// zero for JPEG artifacts, whose dimensions live inside the stream.
	Width  int
	Height int

	// Format identifies the encoding of Data.
	Format Format
}

// SizeBytes returns the resident size of the artifact's payload. It is the
// unit the artifact cache accounts in.
func (a *Artifact) SizeBytes() int64 {
	if a == nil {
		return 0
	}
	return int64(len(a.Data))
}

// Decoder defines the interface for producing artifacts from RAW files.
// Implementations may take seconds per call; they must honor context
// cancellation where the underlying tool allows it.
//
// Decoder implementations must be safe for concurrent use, since the
// scheduling layer invokes Decode from multiple workers at once.
type Decoder interface {
	// Decode produces the artifact described by req, or an error from
	// errors.go identifying which stage failed.
	Decode(ctx context.Context, req Request) (*Artifact, error)
}
