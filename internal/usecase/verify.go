package usecase

import "certificate-generator/internal/compose"

// Verdict is the outcome of the blank-output check.
type Verdict struct {
	Blank         bool
	Width         int
	Height        int
	ContentLength int
}

// Verifier flags rasters that are entirely white. It walks every pixel, so it
// runs once per rendered certificate and never on previews.
type Verifier struct{}

func (Verifier) Verify(r *Raster, doc *compose.Document) Verdict {
	v := Verdict{Width: r.Width, Height: r.Height}
	if doc != nil {
		v.ContentLength = len(doc.HTML)
	}
	v.Blank = allWhite(r)
	return v
}

func allWhite(r *Raster) bool {
	img := r.Image
	if img == nil {
		return false
	}
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			if row[i] != 0xff || row[i+1] != 0xff || row[i+2] != 0xff {
				return false
			}
		}
	}
	return true
}
