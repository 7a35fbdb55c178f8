package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/chynybekuuludastan/cro_optimizer/internal/models"
	"github.com/chynybekuuludastan/cro_optimizer/internal/service/analyzer"
)

type stubFetcher struct {
	signals models.PageSignals
	err     error
}

func (s stubFetcher) FetchPageSignals(context.Context, string) (models.PageSignals, error) {
	return s.signals, s.err
}

type stubAdvisor struct {
	suggestions []string
	err         error
	calls       int
}

func (a *stubAdvisor) Name() string { return "stub" }

func (a *stubAdvisor) Suggest(context.Context, models.PageSignals, *models.CROAnalysis) ([]string, error) {
	a.calls++
	return a.suggestions, a.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bareSignals() models.PageSignals {
	return models.PageSignals{ContentLength: 100}
}

func TestRecommendFallsBackWithoutAdvisor(t *testing.T) {
	svc := NewService(stubFetcher{signals: bareSignals()}, ServiceOptions{Logger: quietLogger()})

	res, err := svc.Recommend(context.Background(), "https://a.test")
	if err != nil {
		t.Fatalf("Recommend returned error: %v", err)
	}
	if res.Source != SourceFallback || res.Provider != "" {
		t.Fatalf("source = %q provider = %q, want fallback", res.Source, res.Provider)
	}
	_, _, want := analyzer.ScoreContent(bareSignals())
	if len(res.Recommendations) != len(want) || res.Recommendations[0] != want[0] {
		t.Fatalf("recommendations = %v, want rubric %v", res.Recommendations, want)
	}
}

func TestRecommendFallsBackOnAdvisorError(t *testing.T) {
	advisor := &stubAdvisor{err: errors.New("quota exceeded")}
	svc := NewService(stubFetcher{signals: bareSignals()}, ServiceOptions{Advisor: advisor, Logger: quietLogger()})

	res, err := svc.Recommend(context.Background(), "https://a.test")
	if err != nil {
		t.Fatalf("Recommend returned error: %v", err)
	}
	if advisor.calls != 1 {
		t.Fatalf("advisor calls = %d, want 1", advisor.calls)
	}
	if res.Source != SourceFallback {
		t.Fatalf("source = %q, want fallback", res.Source)
	}
}

func TestRecommendUsesAdvisor(t *testing.T) {
	advisor := &stubAdvisor{suggestions: []string{"a", "b", "c", "d", "e", "f", "g"}}
	svc := NewService(stubFetcher{signals: bareSignals()}, ServiceOptions{Advisor: advisor, Logger: quietLogger()})

	res, err := svc.Recommend(context.Background(), "https://a.test")
	if err != nil {
		t.Fatalf("Recommend returned error: %v", err)
	}
	if res.Source != SourceAI || res.Provider != "stub" {
		t.Fatalf("source = %q provider = %q", res.Source, res.Provider)
	}
	if len(res.Recommendations) != MaxSuggestions {
		t.Fatalf("got %d suggestions, want %d", len(res.Recommendations), MaxSuggestions)
	}
	if res.Score != res.Breakdown.Total() {
		t.Fatalf("score %d does not match breakdown total %d", res.Score, res.Breakdown.Total())
	}
}

func TestRecommendFetchError(t *testing.T) {
	advisor := &stubAdvisor{}
	svc := NewService(stubFetcher{err: context.DeadlineExceeded}, ServiceOptions{Advisor: advisor, Logger: quietLogger()})

	_, err := svc.Recommend(context.Background(), "https://a.test")
	var fetchErr *analyzer.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want *analyzer.FetchError", err)
	}
	if !fetchErr.Timeout {
		t.Fatalf("deadline exceeded should be reported as timeout")
	}
	if advisor.calls != 0 {
		t.Fatalf("advisor must not be called when the fetch fails")
	}
}

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    []string
		wantErr bool
	}{
		{name: "json array", reply: `["Shorten the title", "Add a form"]`, want: []string{"Shorten the title", "Add a form"}},
		{name: "fenced json", reply: "```json\n[\"Add a CTA\"]\n```", want: []string{"Add a CTA"}},
		{name: "bullets", reply: "Here you go:\n- First\n* Second\n1. Third", want: []string{"First", "Second", "Third"}},
		{name: "blank entries dropped", reply: `["  ", "Keep"]`, want: []string{"Keep"}},
		{name: "prose", reply: "Looks fine to me.", wantErr: true},
		{name: "empty array", reply: `[]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSuggestions(tt.reply)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	signals := models.PageSignals{
		Title:    models.StringPtr("Buy shoes"),
		H1Tags:   []string{"Shoes"},
		CTATexts: []string{"Buy now"},
		Text:     "Great shoes for everyone",
	}
	score, breakdown, recs := analyzer.ScoreContent(signals)
	prompt := BuildPrompt(signals, &models.CROAnalysis{URL: "https://a.test", Score: score, Breakdown: breakdown, Recommendations: recs})

	for _, want := range []string{
		"https://a.test",
		`"Buy shoes"`,
		"Meta description: (none)",
		`"Buy now"`,
		"ctas: ",
		"Great shoes for everyone",
		"JSON array",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt is missing %q", want)
		}
	}
}

func TestOpenAIAdvisor(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("POST", "https://llm.test/v1/chat", func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("authorization header = %q", req.Header.Get("Authorization"))
		}
		return httpmock.NewStringResponse(200,
			`{"choices":[{"message":{"content":"[\"Add testimonials\",\"Use one CTA\"]"},"finish_reason":"stop"}]}`), nil
	})

	advisor, err := NewOpenAIAdvisor("key", "", "https://llm.test/v1/chat", &http.Client{Transport: transport})
	if err != nil {
		t.Fatalf("NewOpenAIAdvisor: %v", err)
	}

	got, err := advisor.Suggest(context.Background(), bareSignals(), &models.CROAnalysis{URL: "https://a.test"})
	if err != nil {
		t.Fatalf("Suggest returned error: %v", err)
	}
	if len(got) != 2 || got[0] != "Add testimonials" {
		t.Fatalf("suggestions = %v", got)
	}
}

func TestOpenAIAdvisorHTTPError(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("POST", "https://llm.test/v1/chat", httpmock.NewStringResponder(429, `{"error":{"message":"rate limited"}}`))

	advisor, _ := NewOpenAIAdvisor("key", "", "https://llm.test/v1/chat", &http.Client{Transport: transport})
	if _, err := advisor.Suggest(context.Background(), bareSignals(), &models.CROAnalysis{}); err == nil {
		t.Fatalf("expected error for 429 response")
	}
}

func TestNewAdvisorsRequireKey(t *testing.T) {
	if _, err := NewOpenAIAdvisor("", "", "", nil); err == nil {
		t.Errorf("NewOpenAIAdvisor accepted an empty key")
	}
	if _, err := NewGeminiAdvisor(context.Background(), "", "", nil); err == nil {
		t.Errorf("NewGeminiAdvisor accepted an empty key")
	}
}
