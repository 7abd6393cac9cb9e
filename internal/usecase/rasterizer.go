package usecase

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"certificate-generator/internal/compose"
	"certificate-generator/internal/domain"
)

const DefaultScale = 2.0

// Raster is the captured certificate. Image holds the decoded pixels, PNG the
// encoded bytes handed to the serializer.
type Raster struct {
	PNG           []byte
	Image         *image.NRGBA
	Width         int
	Height        int
	LogicalWidth  int
	LogicalHeight int
}

// Aspect is the logical aspect ratio the raster was captured at.
func (r *Raster) Aspect() float64 {
	return float64(r.LogicalWidth) / float64(r.LogicalHeight)
}

type Rasterizer struct {
	scale float64
}

func NewRasterizer(scale float64) *Rasterizer {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Rasterizer{scale: scale}
}

func (r *Rasterizer) Scale() float64 { return r.scale }

// Rasterize captures the mounted document at its logical size times the
// oversampling factor.
func (r *Rasterizer) Rasterize(ctx context.Context, c Capturer, doc *compose.Document) (*Raster, error) {
	png, err := c.Capture(ctx, doc.Width, doc.Height, r.scale)
	if err != nil {
		return nil, fmt.Errorf("%w: capture: %v", domain.ErrRasterizationFailure, err)
	}
	if len(png) == 0 {
		return nil, fmt.Errorf("%w: empty capture", domain.ErrRasterizationFailure)
	}

	img, err := imaging.Decode(bytes.NewReader(png))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrRasterizationFailure, err)
	}

	wantW := int(math.Round(float64(doc.Width) * r.scale))
	wantH := int(math.Round(float64(doc.Height) * r.scale))
	b := img.Bounds()
	if b.Dx() != wantW || b.Dy() != wantH {
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d", domain.ErrRasterizationFailure, b.Dx(), b.Dy(), wantW, wantH)
	}

	return &Raster{
		PNG:           png,
		Image:         imaging.Clone(img),
		Width:         wantW,
		Height:        wantH,
		LogicalWidth:  doc.Width,
		LogicalHeight: doc.Height,
	}, nil
}
