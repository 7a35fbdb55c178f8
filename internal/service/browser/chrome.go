// Package browser loads pages for analysis, either in headless Chrome or
// over plain HTTP.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	"github.com/chynybekuuludastan/cro_optimizer/internal/models"
	"github.com/chynybekuuludastan/cro_optimizer/internal/service/parser"
)

// Defaults for Chrome sessions.
const (
	DefaultFetchTimeout   = 15 * time.Second
	DefaultMeasureTimeout = 30 * time.Second
	DefaultTabRate        = 4 // tabs opened per second
	loadSettleTimeout     = 5 * time.Second
)

// navigationTimingJS reads the Navigation Timing of the current document.
// Times are relative to navigationStart, transferSize is in bytes.
const navigationTimingJS = `(() => {
	const t = window.performance.timing;
	const nav = window.performance.getEntriesByType('navigation')[0];
	return {
		loadTime: t.loadEventEnd - t.navigationStart,
		domContentLoadedTime: t.domContentLoadedEventEnd - t.navigationStart,
		transferSize: nav ? nav.transferSize : 0
	};
})()`

type navigationTiming struct {
	LoadTime             float64 `json:"loadTime"`
	DOMContentLoadedTime float64 `json:"domContentLoadedTime"`
	TransferSize         float64 `json:"transferSize"`
}

// ChromeOptions configures the shared Chrome instance.
type ChromeOptions struct {
	ExecPath       string
	Headless       bool
	UserAgent      string
	TabRate        float64
	FetchTimeout   time.Duration
	MeasureTimeout time.Duration
}

// DefaultChromeOptions returns options for a headless Chrome found on PATH.
func DefaultChromeOptions() ChromeOptions {
	return ChromeOptions{
		Headless:       true,
		TabRate:        DefaultTabRate,
		FetchTimeout:   DefaultFetchTimeout,
		MeasureTimeout: DefaultMeasureTimeout,
	}
}

// Chrome drives one headless Chrome process and opens a fresh tab for every
// fetch or measurement. It is safe for concurrent use.
type Chrome struct {
	browserCtx     context.Context
	cancel         context.CancelFunc
	limiter        *rate.Limiter
	fetchTimeout   time.Duration
	measureTimeout time.Duration
	logger         *slog.Logger
}

// NewChrome starts Chrome and returns once the browser is ready.
func NewChrome(opts ChromeOptions, logger *slog.Logger) (*Chrome, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TabRate <= 0 {
		opts.TabRate = DefaultTabRate
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.MeasureTimeout <= 0 {
		opts.MeasureTimeout = DefaultMeasureTimeout
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.DisableGPU,
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			logger.Debug("chrome", slog.String("detail", fmt.Sprintf(format, args...)))
		}),
	)
	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}

	// Run with no actions launches the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	return &Chrome{
		browserCtx:     browserCtx,
		cancel:         cancel,
		limiter:        rate.NewLimiter(rate.Limit(opts.TabRate), max(1, int(opts.TabRate))),
		fetchTimeout:   opts.FetchTimeout,
		measureTimeout: opts.MeasureTimeout,
		logger:         logger,
	}, nil
}

// Close shuts the browser down.
func (c *Chrome) Close() error {
	c.cancel()
	return nil
}

// FetchPageSignals renders url and extracts its CRO signals.
func (c *Chrome) FetchPageSignals(ctx context.Context, url string) (models.PageSignals, error) {
	tabCtx, done, err := c.openTab(ctx, c.fetchTimeout)
	if err != nil {
		return models.PageSignals{}, err
	}
	defer done()

	var title, html string
	err = chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return models.PageSignals{}, fmt.Errorf("load %s: %w", url, tabErr(tabCtx, err))
	}

	return parser.ExtractSignals(html, title)
}

// MeasurePerformance loads url with the cache disabled and reads its
// Navigation Timing. A zero transfer size is reported as unknown.
func (c *Chrome) MeasurePerformance(ctx context.Context, url string) (models.PerformanceSignals, error) {
	tabCtx, done, err := c.openTab(ctx, c.measureTimeout)
	if err != nil {
		return models.PerformanceSignals{}, err
	}
	defer done()

	var (
		loaded bool
		timing navigationTiming
	)
	err = chromedp.Run(tabCtx,
		network.Enable(),
		network.SetCacheDisabled(true),
		chromedp.Navigate(url),
		chromedp.Poll(`window.performance.timing.loadEventEnd > 0`, &loaded,
			chromedp.WithPollingTimeout(loadSettleTimeout)),
		chromedp.Evaluate(navigationTimingJS, &timing),
	)
	if err != nil {
		return models.PerformanceSignals{}, fmt.Errorf("measure %s: %w", url, tabErr(tabCtx, err))
	}

	signals := models.PerformanceSignals{
		LoadTimeMS:         max(timing.LoadTime, 0),
		DOMContentLoadedMS: max(timing.DOMContentLoadedTime, 0),
	}
	if timing.TransferSize > 0 {
		signals.PageSizeKB = models.Float64Ptr(timing.TransferSize / 1024)
	}
	c.logger.Debug("performance measured",
		slog.String("url", url),
		slog.Float64("load_ms", signals.LoadTimeMS),
		slog.Float64("dcl_ms", signals.DOMContentLoadedMS),
	)
	return signals, nil
}

// openTab waits for the tab rate limiter and opens a tab bounded by timeout
// and by the caller's context.
func (c *Chrome) openTab(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("wait for browser tab: %w", err)
	}

	tabCtx, cancelTab := chromedp.NewContext(c.browserCtx)
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	stop := context.AfterFunc(ctx, cancelTimeout)

	return tabCtx, func() {
		stop()
		cancelTimeout()
		cancelTab()
	}, nil
}

// tabErr reports the tab deadline instead of the transport error chromedp
// surfaces when the tab is torn down mid-action.
func tabErr(tabCtx context.Context, err error) error {
	if ctxErr := tabCtx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	return err
}
