package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"certificate-generator/internal/usecase"
)

const certificateRoot = "#certificate-content"

type HostOptions struct {
	// ChromePath overrides the browser binary; empty uses chromedp's lookup.
	ChromePath string
	// TempDir is where per-surface directories are created.
	TempDir string
	// StartTimeout bounds launching the browser.
	StartTimeout time.Duration
}

// ChromedpHost owns one headless Chrome shared by every render. Surfaces are
// handed out one at a time; Acquire blocks until the previous one is
// released.
type ChromedpHost struct {
	opts   HostOptions
	logger *zap.Logger
	lock   *renderLock

	mu            sync.Mutex
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc

	attached atomic.Int32
}

func NewChromedpHost(opts HostOptions, logger *zap.Logger) *ChromedpHost {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = 60 * time.Second
	}
	return &ChromedpHost{opts: opts, logger: logger, lock: newRenderLock()}
}

// Attached reports how many surfaces are currently open.
func (h *ChromedpHost) Attached() int { return int(h.attached.Load()) }

// browser starts Chrome on first use and again if it has died since.
func (h *ChromedpHost) browser() (context.Context, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.browserCtx != nil && h.browserCtx.Err() == nil {
		return h.browserCtx, nil
	}
	h.stopLocked()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if h.opts.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(h.opts.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// the first Run launches Chrome and must not be tied to a request context
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(browserCtx) }()
	select {
	case err := <-started:
		if err != nil {
			cancelBrowser()
			cancelAlloc()
			return nil, fmt.Errorf("start chrome: %w", err)
		}
	case <-time.After(h.opts.StartTimeout):
		cancelBrowser()
		cancelAlloc()
		<-started
		return nil, fmt.Errorf("start chrome: timed out after %s", h.opts.StartTimeout)
	}

	h.browserCtx, h.cancelBrowser, h.cancelAlloc = browserCtx, cancelBrowser, cancelAlloc
	h.logger.Info("chrome started", zap.String("exec", h.opts.ChromePath))
	return browserCtx, nil
}

func (h *ChromedpHost) stopLocked() {
	if h.cancelBrowser != nil {
		h.cancelBrowser()
	}
	if h.cancelAlloc != nil {
		h.cancelAlloc()
	}
	h.browserCtx, h.cancelBrowser, h.cancelAlloc = nil, nil, nil
}

// Close stops Chrome. Surfaces still attached become unusable.
func (h *ChromedpHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
	return nil
}

// Acquire takes the render lock and opens a fresh tab with its own temp
// directory.
func (h *ChromedpHost) Acquire(ctx context.Context) (usecase.RenderSurface, error) {
	unlock, err := h.lock.hold(ctx)
	if err != nil {
		return nil, err
	}

	browserCtx, err := h.browser()
	if err != nil {
		unlock()
		return nil, err
	}

	id := uuid.NewString()
	dir, err := os.MkdirTemp(h.opts.TempDir, "certificate-"+id[:8]+"-")
	if err != nil {
		unlock()
		return nil, fmt.Errorf("create surface dir: %w", err)
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		_ = os.RemoveAll(dir)
		unlock()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	h.attached.Add(1)
	return &chromedpSurface{host: h, id: id, dir: dir, tabCtx: tabCtx, cancelTab: cancelTab, unlock: unlock}, nil
}

type chromedpSurface struct {
	host      *ChromedpHost
	id        string
	dir       string
	tabCtx    context.Context
	cancelTab context.CancelFunc
	unlock    func()

	releaseOnce sync.Once
	releaseErr  error
}

func (s *chromedpSurface) ID() string { return s.id }

// bind derives a context on the tab that also ends when ctx does.
func (s *chromedpSurface) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithCancel(s.tabCtx)
	if dl, ok := ctx.Deadline(); ok {
		var cancelDl context.CancelFunc
		opCtx, cancelDl = context.WithDeadline(opCtx, dl)
		parent := cancel
		cancel = func() { cancelDl(); parent() }
	}
	stop := context.AfterFunc(ctx, cancel)
	return opCtx, func() { stop(); cancel() }
}

func (s *chromedpSurface) Mount(ctx context.Context, html string) error {
	path := filepath.Join(s.dir, "index.html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return err
	}

	opCtx, cancel := s.bind(ctx)
	defer cancel()
	return chromedp.Run(opCtx,
		chromedp.Navigate("file://"+path),
		chromedp.WaitReady(certificateRoot, chromedp.ByQuery),
	)
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

func (s *chromedpSurface) FontsReady(ctx context.Context) error {
	opCtx, cancel := s.bind(ctx)
	defer cancel()
	var ok bool
	return chromedp.Run(opCtx, chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &ok, awaitPromise))
}

func (s *chromedpSurface) ImageCount(ctx context.Context) (int, error) {
	opCtx, cancel := s.bind(ctx)
	defer cancel()
	var n int
	err := chromedp.Run(opCtx, chromedp.Evaluate(
		fmt.Sprintf(`document.querySelectorAll(%q).length`, certificateRoot+" img"), &n))
	return n, err
}

const imageSettledJS = `new Promise((resolve) => {
	const img = document.querySelectorAll(%q)[%d];
	if (!img) { resolve(false); return; }
	if (img.complete) { resolve(img.naturalWidth > 0); return; }
	img.addEventListener('load', () => resolve(true), { once: true });
	img.addEventListener('error', () => resolve(false), { once: true });
})`

func (s *chromedpSurface) ImageSettled(ctx context.Context, i int) (bool, error) {
	opCtx, cancel := s.bind(ctx)
	defer cancel()
	var loaded bool
	err := chromedp.Run(opCtx, chromedp.Evaluate(
		fmt.Sprintf(imageSettledJS, certificateRoot+" img", i), &loaded, awaitPromise))
	return loaded, err
}

// preCaptureJS undoes anything that would hide the certificate from the
// screenshot: every descendant is made visible and opaque and both wrappers
// return to normal flow at the page origin.
const preCaptureJS = `(() => {
	const root = document.querySelector(%q);
	if (!root) { return false; }
	for (const el of [document.getElementById('render-surface'), root]) {
		if (!el) { continue; }
		el.style.position = 'relative';
		el.style.left = '0';
		el.style.top = '0';
		el.style.transform = 'none';
		el.style.visibility = 'visible';
		el.style.opacity = '1';
	}
	root.querySelectorAll('*').forEach((el) => {
		el.style.visibility = 'visible';
		el.style.opacity = '1';
	});
	window.scrollTo(0, 0);
	return true;
})()`

func (s *chromedpSurface) Capture(ctx context.Context, width, height int, scale float64) ([]byte, error) {
	opCtx, cancel := s.bind(ctx)
	defer cancel()

	var found bool
	var buf []byte
	err := chromedp.Run(opCtx,
		emulation.SetDeviceMetricsOverride(int64(width), int64(height), scale, false),
		chromedp.Evaluate(fmt.Sprintf(preCaptureJS, certificateRoot), &found),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if !found {
				return fmt.Errorf("%s not found", certificateRoot)
			}
			var err error
			buf, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithClip(&page.Viewport{X: 0, Y: 0, Width: float64(width), Height: float64(height), Scale: 1}).
				WithCaptureBeyondViewport(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Release closes the tab, removes the surface directory and frees the render
// lock. Later calls return the first call's result.
func (s *chromedpSurface) Release() error {
	s.releaseOnce.Do(func() {
		// close the tab gracefully, then drop the context
		cctx, cancel := context.WithTimeout(s.tabCtx, 5*time.Second)
		if err := chromedp.Cancel(cctx); err != nil {
			s.host.logger.Debug("close tab", zap.String("surface", s.id), zap.Error(err))
		}
		cancel()
		s.cancelTab()

		if err := os.RemoveAll(s.dir); err != nil {
			s.releaseErr = fmt.Errorf("remove surface dir: %w", err)
		}
		s.host.attached.Add(-1)
		s.unlock()
	})
	return s.releaseErr
}
