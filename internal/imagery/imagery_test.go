package imagery

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/espview/hub/internal/config"
	"github.com/espview/hub/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestFrame(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 10 {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestCompressBoundsLargeFrames(t *testing.T) {
	c := NewCompressor(config.ImageConfig{MaxDimension: 640, JPEGQuality: 80})

	out, err := c.Compress(encodeTestFrame(t, 1600, 1200))
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	size := decoded.Bounds().Size()
	assert.Equal(t, 640, size.X)
	assert.LessOrEqual(t, size.Y, 640)
}

func TestCompressKeepsSmallFrames(t *testing.T) {
	c := NewCompressor(config.ImageConfig{MaxDimension: 640, JPEGQuality: 80})

	out, err := c.Compress(encodeTestFrame(t, 320, 240))
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	size := decoded.Bounds().Size()
	assert.Equal(t, 320, size.X)
	assert.Equal(t, 240, size.Y)
}

func TestCompressBoundsPortraitFrames(t *testing.T) {
	c := NewCompressor(config.ImageConfig{MaxDimension: 640, JPEGQuality: 80})

	out, err := c.Compress(encodeTestFrame(t, 600, 1200))
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	size := decoded.Bounds().Size()
	assert.Equal(t, 640, size.Y)
	assert.LessOrEqual(t, size.X, 640)
}

func TestCompressRejectsGarbage(t *testing.T) {
	c := NewCompressor(config.ImageConfig{MaxDimension: 640, JPEGQuality: 80})

	_, err := c.Compress([]byte("definitely not a jpeg"))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}
