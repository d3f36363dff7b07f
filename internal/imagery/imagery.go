// FilePath: internal/imagery/imagery.go
package imagery

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/espview/hub/internal/config"
	"github.com/espview/hub/internal/errors"
)

// Compressor bounds uploaded camera frames to a maximum dimension and
// re-encodes them as JPEG at a configured quality, keeping stored artifacts
// size-capped.
type Compressor struct {
	maxDimension int
	jpegQuality  int
}

// NewCompressor creates a compressor from the image configuration.
func NewCompressor(cfg config.ImageConfig) *Compressor {
	return &Compressor{
		maxDimension: cfg.MaxDimension,
		jpegQuality:  cfg.JPEGQuality,
	}
}

// Compress decodes raw image bytes, downscales the longer side to the
// configured maximum (never upscales) and re-encodes as JPEG. Returns a
// validation error for bytes that do not decode as an image.
func (c *Compressor) Compress(raw []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.NewValidationError("invalid image data", err)
	}

	img = c.bound(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(c.jpegQuality)); err != nil {
		return nil, errors.NewInternalError("failed to encode image", err)
	}
	return buf.Bytes(), nil
}

func (c *Compressor) bound(img image.Image) image.Image {
	size := img.Bounds().Size()
	if size.X <= c.maxDimension && size.Y <= c.maxDimension {
		return img
	}
	if size.X >= size.Y {
		return imaging.Resize(img, c.maxDimension, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, c.maxDimension, imaging.Lanczos)
}
