// Package models defines the records exchanged between the page collaborators,
// the scoring core and the API.
package models

import "time"

// Category keys of the CRO rubric.
const (
	CategoryTitle           = "title"
	CategoryMetaDescription = "meta_description"
	CategoryH1Tags          = "h1_tags"
	CategoryCTAs            = "ctas"
	CategoryForms           = "forms"
	CategoryContent         = "content"
)

// Maximum points per rubric category. They sum to 100.
const (
	MaxTitle           = 20
	MaxMetaDescription = 15
	MaxH1Tags          = 15
	MaxCTAs            = 25
	MaxForms           = 15
	MaxContent         = 10
)

// Extraction limits.
const (
	MaxCTATexts   = 5    // CTA texts kept per page
	MaxTextLength = 5000 // visible text kept for prompts, in characters
)

// PageSignals is the structural snapshot of a page produced by a fetcher.
type PageSignals struct {
	Title           *string  `json:"title"`
	MetaDescription *string  `json:"meta_description"`
	H1Tags          []string `json:"h1_tags"`
	CTATexts        []string `json:"cta_texts"`
	HasForms        bool     `json:"has_forms"`
	ContentLength   int      `json:"content_length"`

	// Text is the leading part of the visible text, used for AI prompts.
	Text string `json:"-"`
}

// PerformanceSignals is the raw timing/size profile produced by a meter.
// PageSizeKB is nil when the transfer size could not be measured.
type PerformanceSignals struct {
	LoadTimeMS         float64  `json:"load_time_ms"`
	DOMContentLoadedMS float64  `json:"dom_content_loaded_ms"`
	PageSizeKB         *float64 `json:"page_size_kb"`
}

// CROBreakdown holds the points awarded per rubric category.
type CROBreakdown struct {
	Title           int `json:"title"`
	MetaDescription int `json:"meta_description"`
	H1Tags          int `json:"h1_tags"`
	CTAs            int `json:"ctas"`
	Forms           int `json:"forms"`
	Content         int `json:"content"`
}

// Categories returns the rubric category keys in their fixed order.
func Categories() []string {
	return []string{
		CategoryTitle,
		CategoryMetaDescription,
		CategoryH1Tags,
		CategoryCTAs,
		CategoryForms,
		CategoryContent,
	}
}

// CategoryMax returns the maximum points of a category, or 0 for unknown keys.
func CategoryMax(category string) int {
	switch category {
	case CategoryTitle:
		return MaxTitle
	case CategoryMetaDescription:
		return MaxMetaDescription
	case CategoryH1Tags:
		return MaxH1Tags
	case CategoryCTAs:
		return MaxCTAs
	case CategoryForms:
		return MaxForms
	case CategoryContent:
		return MaxContent
	}
	return 0
}

// Value returns the points of one category, or 0 for unknown keys.
func (b CROBreakdown) Value(category string) int {
	switch category {
	case CategoryTitle:
		return b.Title
	case CategoryMetaDescription:
		return b.MetaDescription
	case CategoryH1Tags:
		return b.H1Tags
	case CategoryCTAs:
		return b.CTAs
	case CategoryForms:
		return b.Forms
	case CategoryContent:
		return b.Content
	}
	return 0
}

// Total is the CRO score: always the sum of the six categories.
func (b CROBreakdown) Total() int {
	return b.Title + b.MetaDescription + b.H1Tags + b.CTAs + b.Forms + b.Content
}

// PerformanceMetrics is the rounded, scored form of PerformanceSignals.
type PerformanceMetrics struct {
	LoadTimeMS         float64  `json:"load_time_ms"`
	DOMContentLoadedMS float64  `json:"dom_content_loaded_ms"`
	PageSizeKB         *float64 `json:"page_size_kb"`
	PerformanceScore   int      `json:"performance_score"`
}

// CROAnalysis is the result of analysing one URL.
type CROAnalysis struct {
	URL             string              `json:"url"`
	Score           int                 `json:"score"`
	Breakdown       CROBreakdown        `json:"breakdown"`
	Recommendations []string            `json:"recommendations"`
	Performance     *PerformanceMetrics `json:"performance,omitempty"`
}

// ComparisonResult is one ranked entry of a comparison.
type ComparisonResult struct {
	URL         string             `json:"url"`
	Score       int                `json:"score"`
	Breakdown   CROBreakdown       `json:"breakdown"`
	Performance PerformanceMetrics `json:"performance"`
	Rank        int                `json:"rank"`
}

// CombinedScore is the CRO score plus the performance score (0-200).
func (r ComparisonResult) CombinedScore() int {
	return r.Score + r.Performance.PerformanceScore
}

// ComparisonAnalysis is the aggregate outcome of comparing several URLs.
type ComparisonAnalysis struct {
	Timestamp     time.Time          `json:"timestamp"`
	TotalAnalyzed int                `json:"total_analyzed"`
	Results       []ComparisonResult `json:"results"`
	Winners       map[string]string  `json:"winners"`
	Insights      []string           `json:"insights"`
}

// Winner keys beyond the six rubric categories.
const (
	WinnerOverall     = "overall"
	WinnerCROScore    = "cro_score"
	WinnerPerformance = "performance"
)

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 {
	return &f
}
