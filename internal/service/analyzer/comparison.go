package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chynybekuuludastan/cro_optimizer/internal/models"
)

// Accepted number of URLs per comparison.
const (
	MinCompareURLs = 2
	MaxCompareURLs = 10
)

const (
	spreadWarningPoints = 30
	slowAverageLoadMS   = 3000
	maxFailedInInsight  = 3
)

// Progress event types.
const (
	EventURLStarted   = "url_started"
	EventURLCompleted = "url_completed"
	EventURLFailed    = "url_failed"
)

// ProgressEvent describes the state change of one URL in a comparison.
type ProgressEvent struct {
	Type          string `json:"type"`
	URL           string `json:"url"`
	Index         int    `json:"index"`
	Total         int    `json:"total"`
	CombinedScore int    `json:"combined_score,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ProgressFunc receives progress events. It is called from several
// goroutines at once and must not block for long.
type ProgressFunc func(ProgressEvent)

type urlOutcome struct {
	result models.ComparisonResult
	err    error
}

// Compare analyses 2 to 10 URLs concurrently and ranks the ones that succeed.
func (a *Analyzer) Compare(ctx context.Context, urls []string) (*models.ComparisonAnalysis, error) {
	return a.CompareWithProgress(ctx, urls, nil)
}

// CompareWithProgress is Compare with per-URL progress reporting.
//
// A failing URL never aborts its siblings. The call fails with
// *ValidationError when the URL count is out of range and with
// *AllFailedError when no URL could be analysed.
func (a *Analyzer) CompareWithProgress(ctx context.Context, urls []string, progress ProgressFunc) (*models.ComparisonAnalysis, error) {
	total := len(urls)
	if total < MinCompareURLs || total > MaxCompareURLs {
		a.metrics.ObserveComparison("invalid", total)
		return nil, &ValidationError{Count: total, Min: MinCompareURLs, Max: MaxCompareURLs}
	}
	notify := func(ev ProgressEvent) {
		if progress != nil {
			progress(ev)
		}
	}

	outcomes := make([]urlOutcome, total)
	var g errgroup.Group
	for i, url := range urls {
		g.Go(func() error {
			notify(ProgressEvent{Type: EventURLStarted, URL: url, Index: i, Total: total})

			result, err := a.AnalyzeCombined(ctx, url)
			if err != nil {
				outcomes[i].err = err
				notify(ProgressEvent{Type: EventURLFailed, URL: url, Index: i, Total: total, Error: err.Error()})
				return nil
			}
			outcomes[i].result = result
			notify(ProgressEvent{Type: EventURLCompleted, URL: url, Index: i, Total: total, CombinedScore: result.CombinedScore()})
			return nil
		})
	}
	_ = g.Wait() // branches record their own errors

	results := make([]models.ComparisonResult, 0, total)
	var failed []FailedURL
	for i, o := range outcomes {
		if o.err != nil {
			failed = append(failed, FailedURL{URL: urls[i], Err: o.err})
			continue
		}
		results = append(results, o.result)
	}

	if len(results) == 0 {
		a.metrics.ObserveComparison("all_failed", total)
		return nil, &AllFailedError{Failed: failed}
	}

	rank(results)

	outcome := "ok"
	if len(failed) > 0 {
		outcome = "partial"
	}
	a.metrics.ObserveComparison(outcome, total)
	a.logger.Info("comparison finished",
		slog.Int("requested", total),
		slog.Int("analyzed", len(results)),
		slog.Int("failed", len(failed)),
	)

	return &models.ComparisonAnalysis{
		Timestamp:     time.Now().UTC(),
		TotalAnalyzed: len(results),
		Results:       results,
		Winners:       pickWinners(results),
		Insights:      buildInsights(results, failed),
	}, nil
}

// rank orders results by combined score, best first, keeping input order
// among equal scores, and numbers them from 1.
func rank(results []models.ComparisonResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CombinedScore() > results[j].CombinedScore()
	})
	for i := range results {
		results[i].Rank = i + 1
	}
}

func pickWinners(results []models.ComparisonResult) map[string]string {
	winners := make(map[string]string, 3+len(models.Categories()))
	winners[models.WinnerOverall] = bestBy(results, models.ComparisonResult.CombinedScore)
	winners[models.WinnerCROScore] = bestBy(results, func(r models.ComparisonResult) int { return r.Score })
	winners[models.WinnerPerformance] = bestBy(results, func(r models.ComparisonResult) int { return r.Performance.PerformanceScore })
	for _, category := range models.Categories() {
		winners[category] = bestBy(results, func(r models.ComparisonResult) int { return r.Breakdown.Value(category) })
	}
	return winners
}

// bestBy returns the URL of the first result with the highest key.
func bestBy(results []models.ComparisonResult, key func(models.ComparisonResult) int) string {
	best := 0
	for i := 1; i < len(results); i++ {
		if key(results[i]) > key(results[best]) {
			best = i
		}
	}
	return results[best].URL
}

// buildInsights expects results already ranked.
func buildInsights(results []models.ComparisonResult, failed []FailedURL) []string {
	n := float64(len(results))
	var (
		croSum, perfSum, loadSum float64
		croMin, croMax           = results[0].Score, results[0].Score
		perfMin, perfMax         = results[0].Performance.PerformanceScore, results[0].Performance.PerformanceScore
	)
	for _, r := range results {
		croSum += float64(r.Score)
		perfSum += float64(r.Performance.PerformanceScore)
		loadSum += r.Performance.LoadTimeMS
		croMin, croMax = min(croMin, r.Score), max(croMax, r.Score)
		perfMin, perfMax = min(perfMin, r.Performance.PerformanceScore), max(perfMax, r.Performance.PerformanceScore)
	}

	insights := []string{
		fmt.Sprintf("📊 Average CRO score: %.1f/100, average performance score: %.1f/100.", croSum/n, perfSum/n),
	}

	top := results[0]
	insights = append(insights, fmt.Sprintf("🏆 Top performer: %s with a combined score of %d/200.", top.URL, top.CombinedScore()))

	if len(results) > 1 {
		gap := top.CombinedScore() - results[len(results)-1].CombinedScore()
		insights = append(insights, fmt.Sprintf("📈 Score gap between the best and the worst page: %d points.", gap))
	}
	if spread := croMax - croMin; spread > spreadWarningPoints {
		insights = append(insights, fmt.Sprintf(
			"⚠️ High CRO score variance (%d points). The weaker pages are missing key conversion elements.", spread))
	}
	if spread := perfMax - perfMin; spread > spreadWarningPoints {
		insights = append(insights, fmt.Sprintf(
			"⚠️ High performance variance (%d points). Align the slower pages with the fastest one.", spread))
	}

	avgLoadMS := loadSum / n
	insights = append(insights, fmt.Sprintf("⏱️ Average load time: %.2fs.", avgLoadMS/1000))
	if avgLoadMS > slowAverageLoadMS {
		insights = append(insights, "🐢 Average load time is above 3s. Performance optimization should be a priority across all pages.")
	}

	if len(failed) > 0 {
		shown := make([]string, 0, maxFailedInInsight)
		for _, f := range failed[:min(len(failed), maxFailedInInsight)] {
			shown = append(shown, f.URL)
		}
		msg := fmt.Sprintf("❌ Failed to analyze %d URL(s): %s", len(failed), strings.Join(shown, ", "))
		if extra := len(failed) - len(shown); extra > 0 {
			msg += fmt.Sprintf(" and %d more", extra)
		}
		insights = append(insights, msg+".")
	}

	insights = append(insights, "💡 Study the winner of each category and apply its strengths to the other pages.")
	return insights
}
