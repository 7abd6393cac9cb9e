package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"certificate-generator/internal/compose"
	"certificate-generator/internal/domain"
)

const (
	DefaultMountTimeout  = 15 * time.Second
	DefaultRenderTimeout = 60 * time.Second
)

type GeneratorConfig struct {
	Barrier BarrierConfig
	Scale   float64
	// MountTimeout bounds loading the composed HTML into the surface.
	MountTimeout time.Duration
	// RenderTimeout bounds one whole invocation, waiting for the host included.
	RenderTimeout time.Duration
}

// Generator runs the certificate pipeline for one CertificateData at a time
// per render host: compose, mount, wait for resources, capture, check,
// serialize. The surface is always released before Generate returns.
type Generator struct {
	composer   *compose.Composer
	host       RenderHost
	barrier    *Barrier
	rasterizer *Rasterizer
	verifier   Verifier
	serializer Serializer
	cfg        GeneratorConfig
	logger     *zap.Logger
}

func NewGenerator(c *compose.Composer, host RenderHost, s Serializer, cfg GeneratorConfig, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MountTimeout <= 0 {
		cfg.MountTimeout = DefaultMountTimeout
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = DefaultRenderTimeout
	}
	return &Generator{
		composer:   c,
		host:       host,
		barrier:    NewBarrier(cfg.Barrier, logger.Named("barrier")),
		rasterizer: NewRasterizer(cfg.Scale),
		serializer: s,
		cfg:        cfg,
		logger:     logger,
	}
}

func (g *Generator) Brand() string { return g.composer.Brand() }

func (g *Generator) Templates() []compose.Template { return g.composer.Registry().List() }

// Preview composes the certificate without touching the render host.
func (g *Generator) Preview(data domain.CertificateData) (*compose.Document, error) {
	return g.composer.Compose(data)
}

// Generate renders data into a PDF. The first fatal error is returned after
// the surface has been released; release failures are only logged.
func (g *Generator) Generate(ctx context.Context, data domain.CertificateData) (_ *domain.RenderedDocument, err error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.RenderTimeout)
	defer cancel()

	log := g.logger.With(zap.String("invocation", uuid.NewString()))
	start := time.Now()

	composed, err := g.composer.Compose(data)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("template", string(composed.Style)), zap.String("code", composed.Code))

	surface, err := g.host.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire render surface: %w", err)
	}
	log = log.With(zap.String("surface", surface.ID()))
	defer func() {
		if rerr := surface.Release(); rerr != nil {
			log.Error("release render surface", zap.Error(rerr))
		}
		if err != nil {
			log.Error("certificate generation failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		}
	}()

	mctx, mcancel := context.WithTimeout(ctx, g.cfg.MountTimeout)
	err = surface.Mount(mctx, composed.HTML)
	mcancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderSurfaceMissing, err)
	}

	report, err := g.barrier.Await(ctx, surface)
	if err != nil {
		return nil, fmt.Errorf("await resources: %w", err)
	}
	if timedOut := report.TimedOut(); len(timedOut) > 0 {
		log.Warn("rendering without some images", zap.Ints("images", timedOut), zap.Error(domain.ErrImageLoadTimeout))
	}

	raster, err := g.rasterizer.Rasterize(ctx, surface, composed)
	if err != nil {
		return nil, err
	}

	verdict := g.verifier.Verify(raster, composed)
	if verdict.Blank {
		log.Warn("rendered certificate is blank",
			zap.Error(domain.ErrBlankOutputDetected),
			zap.Int("width", verdict.Width),
			zap.Int("height", verdict.Height),
			zap.Int("content_length", verdict.ContentLength),
		)
	}

	pdf, err := g.serializer.Serialize(raster, DocumentMeta{
		Title:   fmt.Sprintf("%s - %s", composed.Title, composed.Honoree),
		Author:  g.Brand(),
		Subject: composed.Code,
		Creator: g.Brand() + " certificate generator",
	})
	if err != nil {
		return nil, fmt.Errorf("serialize certificate: %w", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		return nil, errors.New("serialize certificate: output is not a PDF")
	}

	log.Info("certificate generated",
		zap.Duration("elapsed", time.Since(start)),
		zap.Duration("waited", report.Waited),
		zap.Int("bytes", len(pdf)),
		zap.Bool("blank", verdict.Blank),
	)

	return &domain.RenderedDocument{
		PDF:             pdf,
		FileName:        FileName(g.Brand(), data.HackathonTitle, composed.Honoree),
		CertificateCode: composed.Code,
		Template:        composed.Style,
		Blank:           verdict.Blank,
		RasterWidth:     raster.Width,
		RasterHeight:    raster.Height,
	}, nil
}
