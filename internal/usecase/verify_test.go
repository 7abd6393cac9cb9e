package usecase

import (
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"

	"certificate-generator/internal/compose"
)

func TestVerifierBlank(t *testing.T) {
	img := imaging.New(40, 30, color.White)
	v := Verifier{}.Verify(&Raster{Image: img, Width: 40, Height: 30}, &compose.Document{HTML: "<html></html>"})
	assert.True(t, v.Blank)
	assert.Equal(t, 40, v.Width)
	assert.Equal(t, 30, v.Height)
	assert.Equal(t, 13, v.ContentLength)
}

func TestVerifierSinglePixel(t *testing.T) {
	img := imaging.New(40, 30, color.White)
	img.Set(39, 29, color.NRGBA{R: 0xfe, G: 0xff, B: 0xff, A: 0xff})
	v := Verifier{}.Verify(&Raster{Image: img, Width: 40, Height: 30}, nil)
	assert.False(t, v.Blank)
}
