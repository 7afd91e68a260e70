package decode_test

import (
	"testing"

	"github.com/stmtc233/rawviewer/internal/decode"
	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "thumbnail", decode.KindThumbnail.String())
	assert.Equal(t, "preview", decode.KindPreview.String())
	assert.Equal(t, "unknown", decode.Kind(99).String())
}

func TestFormatString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "jpeg", decode.FormatJPEG.String())
	assert.Equal(t, "bitmap_rgb", decode.FormatBitmapRGB.String())
	assert.Equal(t, "unknown", decode.Format(99).String())
}

func TestArtifactSizeBytes(t *testing.T) {
	t.Parallel()

	t.Run("nil artifact has zero size", func(t *testing.T) {
		t.Parallel()

		var a *decode.Artifact
		assert.Equal(t, int64(0), a.SizeBytes())
	})

	t.Run("size tracks payload length", func(t *testing.T) {
		t.Parallel()

		a := &decode.Artifact{Data: make([]byte, 1024)}
		assert.Equal(t, int64(1024), a.SizeBytes())
	})

	t.Run("empty payload", func(t *testing.T) {
		t.Parallel()

		a := &decode.Artifact{}
		assert.Equal(t, int64(0), a.SizeBytes())
	})
}
