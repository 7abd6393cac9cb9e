package usecase

import (
	"context"

	"certificate-generator/internal/domain"
)

// ResourceProbe exposes the sub-resource signals the readiness barrier waits
// on. Every method must return once ctx is done.
type ResourceProbe interface {
	// FontsReady blocks until the surface reports that font loading finished.
	FontsReady(ctx context.Context) error
	// ImageCount returns the number of images embedded in the mounted document.
	ImageCount(ctx context.Context) (int, error)
	// ImageSettled blocks until image i has loaded or errored and reports which.
	ImageSettled(ctx context.Context, i int) (loaded bool, err error)
}

// Capturer produces a PNG of the mounted document at width x height logical
// pixels, oversampled by scale.
type Capturer interface {
	Capture(ctx context.Context, width, height int, scale float64) ([]byte, error)
}

// RenderSurface is one isolated off-screen area owned by a single invocation.
type RenderSurface interface {
	ResourceProbe
	Capturer
	ID() string
	Mount(ctx context.Context, html string) error
	// Release tears the surface down. It is safe to call more than once.
	Release() error
}

// RenderHost hands out render surfaces. Implementations serialize access to
// any shared rendering context, so Acquire may block until the previous
// surface is released.
type RenderHost interface {
	Acquire(ctx context.Context) (RenderSurface, error)
}

// Serializer turns a raster into the delivered binary document.
type Serializer interface {
	Serialize(raster *Raster, meta DocumentMeta) ([]byte, error)
}

// DocumentMeta is written into the serialized document's info dictionary.
type DocumentMeta struct {
	Title   string
	Author  string
	Subject string
	Creator string
}

// CertificateSource loads certificate data recorded by the hackathon
// application flow.
type CertificateSource interface {
	LoadCertificate(ctx context.Context, applicationID, email string) (domain.CertificateData, error)
	AssignCertificateURLs(ctx context.Context, applicationID, baseURL string) (int, error)
}
