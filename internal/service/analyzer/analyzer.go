// Package analyzer scores pages for conversion rate optimisation and
// performance, and compares several pages side by side.
package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chynybekuuludastan/cro_optimizer/internal/metrics"
	"github.com/chynybekuuludastan/cro_optimizer/internal/models"
)

// PageFetcher loads a page and extracts its structural signals.
type PageFetcher interface {
	FetchPageSignals(ctx context.Context, url string) (models.PageSignals, error)
}

// PerformanceMeter loads a page and reports its timing and size profile.
type PerformanceMeter interface {
	MeasurePerformance(ctx context.Context, url string) (models.PerformanceSignals, error)
}

// Analyzer runs the per-URL pipeline: fetch and measure concurrently, then score.
type Analyzer struct {
	fetcher PageFetcher
	meter   PerformanceMeter
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger used for degraded measurements.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics sets the Prometheus collectors. Nil disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Analyzer) {
		a.metrics = m
	}
}

// New creates an Analyzer on top of the given collaborators.
func New(fetcher PageFetcher, meter PerformanceMeter, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher: fetcher,
		meter:   meter,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze scores one URL. A fetch failure is returned as *FetchError.
// A failed measurement is logged and the analysis is returned without
// performance metrics or performance recommendations.
func (a *Analyzer) Analyze(ctx context.Context, url string, includePerformance bool) (*models.CROAnalysis, error) {
	start := time.Now()

	page, err := a.collect(ctx, url, includePerformance)
	if err != nil {
		a.metrics.ObserveAnalysis(metrics.ModeStandalone, outcomeFailed, time.Since(start))
		return nil, err
	}

	score, breakdown, recs := ScoreContent(page.signals)
	analysis := &models.CROAnalysis{
		URL:             url,
		Score:           score,
		Breakdown:       breakdown,
		Recommendations: recs,
	}

	if includePerformance && page.measureErr == nil {
		perf := NewPerformanceMetrics(page.performance)
		analysis.Performance = &perf
		analysis.Recommendations = append(analysis.Recommendations, PerformanceRecommendations(perf)...)
	}

	a.metrics.ObserveAnalysis(metrics.ModeStandalone, page.outcome(), time.Since(start))
	return analysis, nil
}

// AnalyzeCombined scores one URL for a comparison. Performance is always
// measured; when the measurement fails an all-zero record stands in for it.
// The returned result is not ranked yet.
func (a *Analyzer) AnalyzeCombined(ctx context.Context, url string) (models.ComparisonResult, error) {
	start := time.Now()

	page, err := a.collect(ctx, url, true)
	if err != nil {
		a.metrics.ObserveAnalysis(metrics.ModeCombined, outcomeFailed, time.Since(start))
		return models.ComparisonResult{}, err
	}

	score, breakdown, _ := ScoreContent(page.signals)
	result := models.ComparisonResult{
		URL:       url,
		Score:     score,
		Breakdown: breakdown,
	}
	if page.measureErr == nil {
		result.Performance = NewPerformanceMetrics(page.performance)
	}

	a.metrics.ObserveAnalysis(metrics.ModeCombined, page.outcome(), time.Since(start))
	return result, nil
}

const (
	outcomeOK       = "ok"
	outcomeDegraded = "degraded"
	outcomeFailed   = "failed"
)

type pageData struct {
	signals     models.PageSignals
	performance models.PerformanceSignals
	measureErr  error
}

func (p pageData) outcome() string {
	if p.measureErr != nil {
		return outcomeDegraded
	}
	return outcomeOK
}

// collect runs the fetch and, if requested, the measurement side by side.
// Neither branch cancels the other; only the fetch error is returned.
func (a *Analyzer) collect(ctx context.Context, url string, measure bool) (pageData, error) {
	var (
		g    errgroup.Group
		page pageData
	)

	g.Go(func() error {
		signals, err := a.fetcher.FetchPageSignals(ctx, url)
		if err != nil {
			return a.fetchFailed(url, err)
		}
		page.signals = signals
		return nil
	})

	if measure {
		g.Go(func() error {
			perf, err := a.meter.MeasurePerformance(ctx, url)
			if err != nil {
				page.measureErr = a.measureFailed(url, err)
				return nil
			}
			page.performance = perf
			return nil
		})
	}

	err := g.Wait()
	return page, err
}

func (a *Analyzer) fetchFailed(url string, err error) error {
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		fetchErr = &FetchError{URL: url, Err: err, Timeout: IsTimeout(err)}
	}
	a.metrics.IncFetchFailure(errorKind(fetchErr))
	a.logger.Error("page fetch failed",
		slog.String("url", url),
		slog.Bool("timeout", fetchErr.Timeout),
		slog.Any("error", err),
	)
	return fetchErr
}

func (a *Analyzer) measureFailed(url string, err error) error {
	measureErr := &MeasurementError{URL: url, Err: err, Timeout: IsTimeout(err)}
	a.metrics.IncMeasureFailure()
	a.logger.Warn("performance measurement failed, continuing without it",
		slog.String("url", url),
		slog.Bool("timeout", measureErr.Timeout),
		slog.Any("error", err),
	)
	return measureErr
}
