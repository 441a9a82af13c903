// Package imaging implements the core's ImageDecoder port on top of the
// standard image registry, with jpeg, png, gif and webp support.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/mitraverify/mitraverify/internal/core"
	"go.uber.org/zap"
)

// Decoder decodes raw image payloads into pixel buffers plus metadata
type Decoder struct {
	logger *zap.Logger
}

// NewDecoder creates a new image decoder
func NewDecoder(logger *zap.Logger) *Decoder {
	return &Decoder{logger: logger}
}

// Decode decodes the payload using the registered image formats
func (d *Decoder) Decode(data []byte) (image.Image, core.ImageMetadata, error) {
	if len(data) == 0 {
		return nil, core.ImageMetadata{}, fmt.Errorf("%w: empty image payload", core.ErrInvalidInput)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, core.ImageMetadata{}, fmt.Errorf("%w: %v", core.ErrUnsupportedFormat, err)
	}

	bounds := img.Bounds()
	metadata := core.ImageMetadata{
		Format:    format,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		ColorMode: colorMode(img.ColorModel()),
	}

	if metadata.Width == 0 || metadata.Height == 0 {
		return nil, core.ImageMetadata{}, fmt.Errorf("%w: zero-size image", core.ErrInvalidInput)
	}

	d.logger.Debug("Image decoded",
		zap.String("format", format),
		zap.Int("width", metadata.Width),
		zap.Int("height", metadata.Height))

	return img, metadata, nil
}

func colorMode(model color.Model) string {
	switch model {
	case color.RGBAModel:
		return "RGBA"
	case color.NRGBAModel:
		return "NRGBA"
	case color.GrayModel, color.Gray16Model:
		return "grayscale"
	case color.YCbCrModel:
		return "YCbCr"
	case color.CMYKModel:
		return "CMYK"
	default:
		if _, ok := model.(color.Palette); ok {
			return "paletted"
		}
		return "unknown"
	}
}
