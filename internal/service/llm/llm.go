// Package llm produces AI-written CRO suggestions and falls back to the
// rubric recommendations whenever the model is unavailable.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/chynybekuuludastan/cro_optimizer/internal/models"
	"github.com/chynybekuuludastan/cro_optimizer/internal/service/analyzer"
)

// Recommendation sources.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// MaxSuggestions caps how many AI suggestions are kept.
const MaxSuggestions = 5

// Common errors
var (
	ErrNoAdvisor     = errors.New("no AI advisor configured")
	ErrEmptyResponse = errors.New("advisor returned no suggestions")
)

// Advisor asks a language model for CRO suggestions about a scored page.
type Advisor interface {
	Suggest(ctx context.Context, signals models.PageSignals, analysis *models.CROAnalysis) ([]string, error)
	Name() string
}

// Result is the outcome of a recommendation request.
type Result struct {
	URL             string              `json:"url"`
	Source          string              `json:"source"`
	Provider        string              `json:"provider,omitempty"`
	Score           int                 `json:"score"`
	Breakdown       models.CROBreakdown `json:"breakdown"`
	Recommendations []string            `json:"recommendations"`
}

// Service combines a page fetcher, the CRO rubric and an optional advisor.
type Service struct {
	fetcher analyzer.PageFetcher
	advisor Advisor
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// ServiceOptions contains configuration for the recommendation service
type ServiceOptions struct {
	// Advisor may be nil, in which case every result is a fallback.
	Advisor   Advisor
	RateLimit rate.Limit
	RateBurst int
	Timeout   time.Duration
	Logger    *slog.Logger
}

// NewService creates a recommendation service with the specified options
func NewService(fetcher analyzer.PageFetcher, opts ServiceOptions) *Service {
	if opts.RateLimit == 0 {
		opts.RateLimit = rate.Limit(2)
	}
	if opts.RateBurst == 0 {
		opts.RateBurst = 1
	}
	if opts.Timeout == 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Service{
		fetcher: fetcher,
		advisor: opts.Advisor,
		limiter: rate.NewLimiter(opts.RateLimit, opts.RateBurst),
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
}

// Recommend fetches url, scores it and asks the advisor for suggestions.
// Only a fetch failure is returned as an error; advisor failures degrade to
// the rubric recommendations.
func (s *Service) Recommend(ctx context.Context, url string) (*Result, error) {
	signals, err := s.fetcher.FetchPageSignals(ctx, url)
	if err != nil {
		var fetchErr *analyzer.FetchError
		if errors.As(err, &fetchErr) {
			return nil, err
		}
		return nil, &analyzer.FetchError{URL: url, Err: err, Timeout: analyzer.IsTimeout(err)}
	}

	score, breakdown, recs := analyzer.ScoreContent(signals)
	analysis := &models.CROAnalysis{URL: url, Score: score, Breakdown: breakdown, Recommendations: recs}
	result := &Result{
		URL:             url,
		Source:          SourceFallback,
		Score:           score,
		Breakdown:       breakdown,
		Recommendations: recs,
	}

	suggestions, err := s.suggest(ctx, signals, analysis)
	if err != nil {
		s.logger.Warn("AI recommendations unavailable, using rubric",
			slog.String("url", url),
			slog.Any("error", err),
		)
		return result, nil
	}

	result.Source = SourceAI
	result.Provider = s.advisor.Name()
	result.Recommendations = suggestions
	return result, nil
}

func (s *Service) suggest(ctx context.Context, signals models.PageSignals, analysis *models.CROAnalysis) ([]string, error) {
	if s.advisor == nil {
		return nil, ErrNoAdvisor
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	suggestions, err := s.advisor.Suggest(ctx, signals, analysis)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.advisor.Name(), err)
	}
	if len(suggestions) == 0 {
		return nil, ErrEmptyResponse
	}
	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}
	return suggestions, nil
}

var (
	codeBlockRegex = regexp.MustCompile("(?s)```(?:json)?(.+?)```")
	listItemRegex  = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+(.+)$`)
)

// CleanCodeBlocks removes markdown code fences from text
func CleanCodeBlocks(text string) string {
	if matches := codeBlockRegex.FindStringSubmatch(text); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return strings.TrimSpace(text)
}

// ExtractListItems pulls bullet or numbered list items out of free text.
func ExtractListItems(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		if matches := listItemRegex.FindStringSubmatch(line); len(matches) > 1 {
			if item := strings.TrimSpace(matches[1]); item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}
