package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"certificate-generator/internal/domain"
)

const (
	DefaultFontTimeout  = 5 * time.Second
	DefaultImageTimeout = 3 * time.Second
	DefaultSettleDelay  = time.Second
)

type BarrierConfig struct {
	FontTimeout  time.Duration
	ImageTimeout time.Duration
	SettleDelay  time.Duration
}

func (c BarrierConfig) withDefaults() BarrierConfig {
	if c.FontTimeout <= 0 {
		c.FontTimeout = DefaultFontTimeout
	}
	if c.ImageTimeout <= 0 {
		c.ImageTimeout = DefaultImageTimeout
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = 0
	}
	return c
}

// MaxWait is the longest Await can take before returning.
func (c BarrierConfig) MaxWait() time.Duration {
	c = c.withDefaults()
	return c.FontTimeout + c.ImageTimeout + c.SettleDelay
}

// ImageStatus is the terminal state of one embedded image.
type ImageStatus struct {
	Index  int
	Loaded bool
	Err    error
}

type ReadinessReport struct {
	FontsErr error
	Images   []ImageStatus
	Waited   time.Duration
}

// TimedOut returns the indexes of images that hit their timeout.
func (r ReadinessReport) TimedOut() []int {
	var out []int
	for _, s := range r.Images {
		if errors.Is(s.Err, domain.ErrImageLoadTimeout) {
			out = append(out, s.Index)
		}
	}
	return out
}

// Barrier waits for fonts, then images, then a fixed settle delay. Only the
// parent context can make it fail; slow resources are logged and skipped.
type Barrier struct {
	cfg    BarrierConfig
	logger *zap.Logger
}

func NewBarrier(cfg BarrierConfig, logger *zap.Logger) *Barrier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Barrier{cfg: cfg.withDefaults(), logger: logger}
}

func (b *Barrier) Config() BarrierConfig { return b.cfg }

func (b *Barrier) Await(ctx context.Context, probe ResourceProbe) (ReadinessReport, error) {
	start := time.Now()
	var report ReadinessReport

	fctx, cancel := context.WithTimeout(ctx, b.cfg.FontTimeout)
	err := probe.FontsReady(fctx)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.FontsErr = err
		b.logger.Warn("fonts not ready, continuing", zap.Duration("timeout", b.cfg.FontTimeout), zap.Error(err))
	}

	n, err := probe.ImageCount(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		b.logger.Warn("could not count images, skipping image wait", zap.Error(err))
		n = 0
	}

	report.Images = make([]ImageStatus, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			report.Images[i] = b.awaitImage(gctx, probe, i)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	for _, s := range report.Images {
		if s.Err != nil {
			b.logger.Warn("image not ready, continuing without it", zap.Int("image", s.Index), zap.Error(s.Err))
		}
	}

	if b.cfg.SettleDelay > 0 {
		t := time.NewTimer(b.cfg.SettleDelay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return report, ctx.Err()
		}
	}

	report.Waited = time.Since(start)
	return report, nil
}

func (b *Barrier) awaitImage(ctx context.Context, probe ResourceProbe, i int) ImageStatus {
	ictx, cancel := context.WithTimeout(ctx, b.cfg.ImageTimeout)
	defer cancel()

	loaded, err := probe.ImageSettled(ictx, i)
	switch {
	case err == nil:
		return ImageStatus{Index: i, Loaded: loaded}
	case ctx.Err() == nil && errors.Is(ictx.Err(), context.DeadlineExceeded):
		return ImageStatus{Index: i, Err: fmt.Errorf("image %d after %s: %w", i, b.cfg.ImageTimeout, domain.ErrImageLoadTimeout)}
	default:
		return ImageStatus{Index: i, Err: fmt.Errorf("image %d: %w", i, err)}
	}
}
