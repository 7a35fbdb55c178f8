package browser

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/chynybekuuludastan/cro_optimizer/internal/models"
	"github.com/chynybekuuludastan/cro_optimizer/internal/service/parser"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; CROOptimizer/1.0)"

// Static loads pages over plain HTTP without executing scripts. Its timings
// approximate the browser ones: DOMContentLoaded is the time to response
// headers and load is the time to the full body.
type Static struct {
	timeout   time.Duration
	userAgent string
	transport http.RoundTripper
}

// StaticOption configures a Static loader.
type StaticOption func(*Static)

// WithTransport replaces the HTTP transport of every request.
func WithTransport(rt http.RoundTripper) StaticOption {
	return func(s *Static) {
		s.transport = rt
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) StaticOption {
	return func(s *Static) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// NewStatic creates a plain HTTP loader with a per-request timeout.
func NewStatic(timeout time.Duration, opts ...StaticOption) *Static {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	s := &Static{
		timeout:   timeout,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchPageSignals downloads url and extracts its CRO signals.
func (s *Static) FetchPageSignals(ctx context.Context, url string) (models.PageSignals, error) {
	c, err := s.collector(ctx)
	if err != nil {
		return models.PageSignals{}, err
	}

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := c.Visit(url); err != nil {
		return models.PageSignals{}, fmt.Errorf("load %s: %w", url, err)
	}
	return parser.ExtractSignals(string(body), "")
}

// MeasurePerformance times a plain download of url.
func (s *Static) MeasurePerformance(ctx context.Context, url string) (models.PerformanceSignals, error) {
	c, err := s.collector(ctx)
	if err != nil {
		return models.PerformanceSignals{}, err
	}

	var (
		start     time.Time
		headersAt time.Duration
		size      int
	)
	c.OnRequest(func(*colly.Request) {
		start = time.Now()
	})
	c.OnResponseHeaders(func(*colly.Response) {
		headersAt = time.Since(start)
	})
	c.OnResponse(func(r *colly.Response) {
		size = len(r.Body)
	})

	if err := c.Visit(url); err != nil {
		return models.PerformanceSignals{}, fmt.Errorf("measure %s: %w", url, err)
	}
	total := time.Since(start)

	signals := models.PerformanceSignals{
		LoadTimeMS:         float64(total.Microseconds()) / 1000,
		DOMContentLoadedMS: float64(headersAt.Microseconds()) / 1000,
	}
	if size > 0 {
		signals.PageSizeKB = models.Float64Ptr(float64(size) / 1024)
	}
	return signals, nil
}

// collector builds a synchronous single-page collector whose request timeout
// never outlives ctx.
func (s *Static) collector(ctx context.Context) (*colly.Collector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	c := colly.NewCollector(
		colly.UserAgent(s.userAgent),
		colly.MaxDepth(1),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(timeout)
	if s.transport != nil {
		c.WithTransport(s.transport)
	}
	return c, nil
}
