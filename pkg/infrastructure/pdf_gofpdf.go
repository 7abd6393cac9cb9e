package infrastructure

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"certificate-generator/internal/usecase"
)

const certificateImage = "certificate"

// Placement is an image rectangle on the page, in mm.
type Placement struct {
	X, Y, W, H float64
}

// FitPlacement returns the largest rectangle with the given aspect ratio
// that fits the page, centred with symmetric margins.
func FitPlacement(pageW, pageH, aspect float64) Placement {
	w := pageW
	h := pageW / aspect
	if h > pageH {
		h = pageH
		w = pageH * aspect
	}
	return Placement{X: (pageW - w) / 2, Y: (pageH - h) / 2, W: w, H: h}
}

// GofpdfSerializer writes the raster onto a single A4 landscape page.
type GofpdfSerializer struct{}

func NewGofpdfSerializer() *GofpdfSerializer { return &GofpdfSerializer{} }

func (GofpdfSerializer) Serialize(raster *usecase.Raster, meta usecase.DocumentMeta) ([]byte, error) {
	if raster == nil || len(raster.PNG) == 0 {
		return nil, fmt.Errorf("serialize: empty raster")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetSubject(meta.Subject, true)
	pdf.SetCreator(meta.Creator, true)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(certificateImage, opts, bytes.NewReader(raster.PNG))

	pageW, pageH := pdf.GetPageSize()
	p := FitPlacement(pageW, pageH, raster.Aspect())
	pdf.ImageOptions(certificateImage, p.X, p.Y, p.W, p.H, false, opts, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	return buf.Bytes(), nil
}
