package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/disintegration/imaging"
)

// fakeHost hands out fakeSurfaces and counts the ones still attached.
type fakeHost struct {
	mu       sync.Mutex
	attached int
	acquired int
	newSurf  func() *fakeSurface
	last     *fakeSurface
}

func (h *fakeHost) Acquire(ctx context.Context) (RenderSurface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := &fakeSurface{}
	if h.newSurf != nil {
		s = h.newSurf()
	}
	s.host = h
	h.mu.Lock()
	h.attached++
	h.acquired++
	s.id = fmt.Sprintf("surface-%d", h.acquired)
	h.last = s
	h.mu.Unlock()
	return s, nil
}

func (h *fakeHost) Attached() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.attached
}

type fakeSurface struct {
	host *fakeHost
	id   string

	mountErr   error
	fontsBlock bool
	// images maps an index to its outcome; a nil entry never settles.
	images     []*bool
	captureErr error
	fill       color.Color
	// sizeDelta skews the captured raster to provoke a size mismatch.
	sizeDelta int

	mounted  string
	releases int
}

func (s *fakeSurface) ID() string { return s.id }

func (s *fakeSurface) Mount(_ context.Context, html string) error {
	if s.mountErr != nil {
		return s.mountErr
	}
	s.mounted = html
	return nil
}

func (s *fakeSurface) FontsReady(ctx context.Context) error {
	if s.fontsBlock {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (s *fakeSurface) ImageCount(context.Context) (int, error) { return len(s.images), nil }

func (s *fakeSurface) ImageSettled(ctx context.Context, i int) (bool, error) {
	if s.images[i] == nil {
		<-ctx.Done()
		return false, ctx.Err()
	}
	return *s.images[i], nil
}

func (s *fakeSurface) Capture(_ context.Context, width, height int, scale float64) ([]byte, error) {
	if s.captureErr != nil {
		return nil, s.captureErr
	}
	fill := s.fill
	if fill == nil {
		fill = color.NRGBA{R: 0x1e, G: 0x40, B: 0xaf, A: 0xff}
	}
	w := int(math.Round(float64(width)*scale)) + s.sizeDelta
	h := int(math.Round(float64(height)*scale)) + s.sizeDelta
	return encodePNG(imaging.New(w, h, fill))
}

func (s *fakeSurface) Release() error {
	if s.host == nil {
		return errors.New("surface not attached")
	}
	s.releases++
	if s.releases == 1 {
		s.host.mu.Lock()
		s.host.attached--
		s.host.mu.Unlock()
	}
	return nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type fakeSerializer struct {
	got  *Raster
	meta DocumentMeta
	err  error
}

func (f *fakeSerializer) Serialize(r *Raster, meta DocumentMeta) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.got = r
	f.meta = meta
	return []byte("%PDF-1.3\n%fake\n"), nil
}

func boolPtr(v bool) *bool { return &v }
