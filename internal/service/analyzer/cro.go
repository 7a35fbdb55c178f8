package analyzer

import (
	"fmt"
	"unicode/utf8"

	"github.com/chynybekuuludastan/cro_optimizer/internal/models"
)

// Rubric thresholds.
const (
	titleMinLength       = 30
	titleMaxLength       = 60
	metaMinLength        = 120
	metaMaxLength        = 160
	contentMinLength     = 1800 // roughly 300 words
	charactersPerWord    = 6
	excellentScoreFloor  = 80
	goodScoreFloor       = 60
	excellentScoreRemark = "🎉 Excellent! Your page follows most CRO best practices."
	goodScoreRemark      = "👍 Good job! A few improvements can make your page even better."
)

// ScoreContent applies the CRO rubric to the page signals and returns the
// total score, its per-category breakdown and the recommendations.
func ScoreContent(signals models.PageSignals) (int, models.CROBreakdown, []string) {
	var breakdown models.CROBreakdown
	recommendations := make([]string, 0, 8)

	// Title (20)
	if title := textOf(signals.Title); title != "" {
		breakdown.Title += 10
		length := utf8.RuneCountInString(title)
		switch {
		case length >= titleMinLength && length <= titleMaxLength:
			breakdown.Title += 10
		case length < titleMinLength:
			recommendations = append(recommendations, fmt.Sprintf(
				"Title is too short (%d characters). Recommended: 30-60 characters for better SEO.", length))
		default:
			recommendations = append(recommendations, fmt.Sprintf(
				"Title is too long (%d characters). Recommended: 30-60 characters for better SEO.", length))
		}
	} else {
		recommendations = append(recommendations, "Add a title tag to your page for better SEO and user experience.")
	}

	// Meta description (15)
	if meta := textOf(signals.MetaDescription); meta != "" {
		breakdown.MetaDescription += 10
		length := utf8.RuneCountInString(meta)
		switch {
		case length >= metaMinLength && length <= metaMaxLength:
			breakdown.MetaDescription += 5
		case length < metaMinLength:
			recommendations = append(recommendations, fmt.Sprintf(
				"Meta description is too short (%d characters). Recommended: 120-160 characters.", length))
		default:
			recommendations = append(recommendations, fmt.Sprintf(
				"Meta description is too long (%d characters). Recommended: 120-160 characters.", length))
		}
	} else {
		recommendations = append(recommendations, "Add a meta description to improve search engine results and click-through rates.")
	}

	// H1 tags (15)
	switch h1Count := len(signals.H1Tags); {
	case h1Count == 1:
		breakdown.H1Tags += 15
	case h1Count > 1:
		breakdown.H1Tags += 10
		recommendations = append(recommendations, fmt.Sprintf(
			"Multiple H1 tags detected (%d). Stick to one H1 tag for better SEO.", h1Count))
	default:
		recommendations = append(recommendations, "Add an H1 tag to clearly define your page's main heading.")
	}

	// CTAs (25)
	switch ctaCount := len(signals.CTATexts); {
	case ctaCount >= 2:
		breakdown.CTAs += 25
	case ctaCount == 1:
		breakdown.CTAs += 15
		recommendations = append(recommendations,
			"Consider adding more CTA buttons to increase conversion opportunities (currently: 1).")
	default:
		recommendations = append(recommendations, "Add clear call-to-action buttons to guide users toward conversion.")
	}

	// Forms (15)
	if signals.HasForms {
		breakdown.Forms += 15
	} else {
		recommendations = append(recommendations, "Consider adding a form to capture leads or enable user interaction.")
	}

	// Content length (10)
	if signals.ContentLength > contentMinLength {
		breakdown.Content += 10
	} else {
		recommendations = append(recommendations, fmt.Sprintf(
			"Add more content to your page (current: ~%d words, recommended: 300+ words).",
			signals.ContentLength/charactersPerWord))
	}

	score := breakdown.Total()
	switch {
	case score >= excellentScoreFloor:
		recommendations = append([]string{excellentScoreRemark}, recommendations...)
	case score >= goodScoreFloor:
		recommendations = append([]string{goodScoreRemark}, recommendations...)
	}

	return score, breakdown, recommendations
}

// textOf treats a missing and an empty string alike.
func textOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
