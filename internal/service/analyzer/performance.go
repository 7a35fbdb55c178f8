package analyzer

import (
	"fmt"
	"math"

	"github.com/chynybekuuludastan/cro_optimizer/internal/models"
)

// Performance score bands. Times are in milliseconds, sizes in kilobytes.
// Every band is an exclusive upper bound.
const (
	loadFastMS     = 2000
	loadModerateMS = 3000
	loadSlowMS     = 5000
	loadVerySlowMS = 7000

	domFastMS     = 1000
	domModerateMS = 2000
	domSlowMS     = 3000

	sizeSmallKB  = 500
	sizeMediumKB = 1024
	sizeLargeKB  = 2048

	unknownSizePoints = 15
	maxPerformance    = 100
)

// PerformanceScore rates raw performance signals on a 0-100 scale.
func PerformanceScore(s models.PerformanceSignals) int {
	score := 0

	// Load time (40)
	switch {
	case s.LoadTimeMS < loadFastMS:
		score += 40
	case s.LoadTimeMS < loadModerateMS:
		score += 30
	case s.LoadTimeMS < loadSlowMS:
		score += 20
	case s.LoadTimeMS < loadVerySlowMS:
		score += 10
	}

	// DOMContentLoaded (30)
	switch {
	case s.DOMContentLoadedMS < domFastMS:
		score += 30
	case s.DOMContentLoadedMS < domModerateMS:
		score += 20
	case s.DOMContentLoadedMS < domSlowMS:
		score += 10
	}

	// Page size (30)
	if s.PageSizeKB == nil {
		score += unknownSizePoints
	} else {
		switch size := *s.PageSizeKB; {
		case size < sizeSmallKB:
			score += 30
		case size < sizeMediumKB:
			score += 20
		case size < sizeLargeKB:
			score += 10
		}
	}

	return min(score, maxPerformance)
}

// NewPerformanceMetrics scores the raw signals and rounds them for reporting.
// A zero or unknown transfer size is reported as absent.
func NewPerformanceMetrics(s models.PerformanceSignals) models.PerformanceMetrics {
	metrics := models.PerformanceMetrics{
		LoadTimeMS:         round2(s.LoadTimeMS),
		DOMContentLoadedMS: round2(s.DOMContentLoadedMS),
		PerformanceScore:   PerformanceScore(s),
	}
	if s.PageSizeKB != nil && *s.PageSizeKB > 0 {
		metrics.PageSizeKB = models.Float64Ptr(round2(*s.PageSizeKB))
	}
	return metrics
}

// PerformanceRecommendations turns rounded metrics into advice: specific
// warnings first, then one general remark chosen by score.
func PerformanceRecommendations(m models.PerformanceMetrics) []string {
	var recs []string

	switch loadSec := m.LoadTimeMS / 1000; {
	case m.LoadTimeMS >= loadSlowMS:
		recs = append(recs, fmt.Sprintf(
			"⚠️ Page load time is slow (%.2fs). Target: < 3s for optimal user experience.", loadSec))
	case m.LoadTimeMS >= loadModerateMS:
		recs = append(recs, fmt.Sprintf(
			"⚡ Page load time is moderate (%.2fs). Consider optimization to get under 2s.", loadSec))
	}

	if m.DOMContentLoadedMS >= domModerateMS {
		recs = append(recs, fmt.Sprintf(
			"⚠️ DOM Content Loaded time is high (%.2fs). Optimize critical rendering path.", m.DOMContentLoadedMS/1000))
	}

	if m.PageSizeKB != nil {
		switch size := *m.PageSizeKB; {
		case size >= sizeLargeKB:
			recs = append(recs, fmt.Sprintf(
				"📦 Page size is large (%.0fKB). Compress images, minify CSS/JS, use lazy loading.", size))
		case size >= sizeMediumKB:
			recs = append(recs, fmt.Sprintf(
				"📦 Page size is moderate (%.0fKB). Consider additional optimization.", size))
		}
	}

	switch {
	case m.PerformanceScore < 50:
		recs = append(recs, "🚀 Critical: Implement CDN, enable compression, optimize images, and minimize render-blocking resources.")
	case m.PerformanceScore < 75:
		recs = append(recs, "💡 Consider: Browser caching, code splitting, and async loading of non-critical resources.")
	default:
		recs = append(recs, "✅ Great performance! Maintain current optimization practices.")
	}

	return recs
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
