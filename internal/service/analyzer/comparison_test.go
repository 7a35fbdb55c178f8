package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chynybekuuludastan/cro_optimizer/internal/models"
)

func TestCompareRejectsURLCount(t *testing.T) {
	a := newTestAnalyzer(newFakePages())

	for _, n := range []int{0, 1, 11} {
		urls := make([]string, n)
		for i := range urls {
			urls[i] = fmt.Sprintf("https://%d.test", i)
		}
		_, err := a.Compare(context.Background(), urls)
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("%d URLs: error = %v, want *ValidationError", n, err)
		}
		if validation.Count != n {
			t.Fatalf("%d URLs: validation count = %d", n, validation.Count)
		}
	}
}

func TestCompareAcceptsBoundaryCounts(t *testing.T) {
	pages := newFakePages()
	a := newTestAnalyzer(pages)

	for _, n := range []int{MinCompareURLs, MaxCompareURLs} {
		urls := make([]string, n)
		for i := range urls {
			urls[i] = fmt.Sprintf("https://%d.test", i)
		}
		got, err := a.Compare(context.Background(), urls)
		if err != nil {
			t.Fatalf("%d URLs: %v", n, err)
		}
		if got.TotalAnalyzed != n || len(got.Results) != n {
			t.Fatalf("%d URLs: analyzed %d, results %d", n, got.TotalAnalyzed, len(got.Results))
		}
	}
}

func TestCompareAllFailed(t *testing.T) {
	pages := newFakePages()
	urls := []string{"https://a.test", "https://b.test", "https://c.test"}
	for _, u := range urls {
		pages.fetchErrs[u] = errors.New("unreachable")
	}

	_, err := newTestAnalyzer(pages).Compare(context.Background(), urls)
	var allFailed *AllFailedError
	if !errors.As(err, &allFailed) {
		t.Fatalf("error = %v, want *AllFailedError", err)
	}
	if got := allFailed.URLs(); strings.Join(got, ",") != strings.Join(urls, ",") {
		t.Fatalf("failed URLs = %v, want %v", got, urls)
	}
}

func TestComparePartialFailure(t *testing.T) {
	pages := newFakePages()
	pages.signals["https://a.test"] = fullSignals()
	pages.signals["https://c.test"] = models.PageSignals{}
	pages.fetchErrs["https://b.test"] = context.DeadlineExceeded

	got, err := newTestAnalyzer(pages).Compare(context.Background(), []string{"https://a.test", "https://b.test", "https://c.test"})
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if got.TotalAnalyzed != 2 || len(got.Results) != 2 {
		t.Fatalf("analyzed %d, results %d, want 2", got.TotalAnalyzed, len(got.Results))
	}

	var failedInsights []string
	for _, insight := range got.Insights {
		if strings.Contains(insight, "Failed to analyze") {
			failedInsights = append(failedInsights, insight)
		}
	}
	if len(failedInsights) != 1 || !strings.Contains(failedInsights[0], "1 URL(s): https://b.test.") {
		t.Fatalf("failed insights = %q", failedInsights)
	}
}

func TestCompareRanksStablyByCombinedScore(t *testing.T) {
	pages := newFakePages()
	// A and C: CRO 100 + perf 50 = 150. B: CRO 60 + perf 30 = 90.
	slow := models.PerformanceSignals{LoadTimeMS: 4000, DOMContentLoadedMS: 1500, PageSizeKB: models.Float64Ptr(1500)}
	pages.signals["A"] = fullSignals()
	pages.perf["A"] = slow
	pages.signals["C"] = fullSignals()
	pages.perf["C"] = slow

	weak := fullSignals()
	weak.HasForms = false
	weak.CTATexts = nil
	pages.signals["B"] = weak
	pages.perf["B"] = models.PerformanceSignals{LoadTimeMS: 6000, DOMContentLoadedMS: 2500, PageSizeKB: models.Float64Ptr(1500)}

	got, err := newTestAnalyzer(pages).Compare(context.Background(), []string{"A", "B", "C"})
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}

	combined := map[string]int{}
	for _, r := range got.Results {
		combined[r.URL] = r.CombinedScore()
	}
	if combined["A"] != 150 || combined["B"] != 90 || combined["C"] != 150 {
		t.Fatalf("combined scores = %v", combined)
	}

	wantOrder := []string{"A", "C", "B"}
	for i, r := range got.Results {
		if r.URL != wantOrder[i] || r.Rank != i+1 {
			t.Fatalf("result %d = %s rank %d, want %s rank %d", i, r.URL, r.Rank, wantOrder[i], i+1)
		}
	}

	if got.Winners[models.WinnerOverall] != "A" {
		t.Fatalf("overall winner = %q, want first maximum A", got.Winners[models.WinnerOverall])
	}
}

func TestCompareRankingIsStableAcrossRuns(t *testing.T) {
	pages := newFakePages()
	urls := []string{"u0", "u1", "u2", "u3", "u4", "u5"}
	for _, u := range urls {
		pages.signals[u] = fullSignals()
		pages.perf[u] = fastPerf
	}
	a := newTestAnalyzer(pages)

	for run := 0; run < 20; run++ {
		got, err := a.Compare(context.Background(), urls)
		if err != nil {
			t.Fatalf("Compare returned error: %v", err)
		}
		for i, r := range got.Results {
			if r.URL != urls[i] {
				t.Fatalf("run %d: position %d = %s, want %s", run, i, r.URL, urls[i])
			}
		}
	}
}

func TestCompareWinnersCoverEveryCategory(t *testing.T) {
	pages := newFakePages()
	strongTitle := models.PageSignals{Title: models.StringPtr(strings.Repeat("t", 40))}
	strongForms := models.PageSignals{HasForms: true, CTATexts: []string{"a", "b"}}
	pages.signals["title.test"] = strongTitle
	pages.signals["forms.test"] = strongForms
	pages.perf["title.test"] = fastPerf
	pages.perf["forms.test"] = models.PerformanceSignals{LoadTimeMS: 9000, DOMContentLoadedMS: 9000, PageSizeKB: models.Float64Ptr(5000)}

	got, err := newTestAnalyzer(pages).Compare(context.Background(), []string{"title.test", "forms.test"})
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if len(got.Winners) != 9 {
		t.Fatalf("winners has %d keys, want 9: %v", len(got.Winners), got.Winners)
	}

	// title.test: CRO 20 + perf 100 = 120. forms.test: CRO 40 + perf 0 = 40.
	// Ties go to the first ranked result.
	want := map[string]string{
		models.WinnerOverall:           "title.test",
		models.WinnerCROScore:          "forms.test",
		models.WinnerPerformance:       "title.test",
		models.CategoryTitle:           "title.test",
		models.CategoryMetaDescription: "title.test",
		models.CategoryH1Tags:          "title.test",
		models.CategoryCTAs:            "forms.test",
		models.CategoryForms:           "forms.test",
		models.CategoryContent:         "title.test",
	}

	for key, url := range want {
		if got.Winners[key] != url {
			t.Fatalf("winner %q = %q, want %q", key, got.Winners[key], url)
		}
	}
}

func TestCompareInsights(t *testing.T) {
	pages := newFakePages()
	pages.signals["good.test"] = fullSignals()
	pages.perf["good.test"] = fastPerf
	pages.signals["bad.test"] = models.PageSignals{}
	pages.perf["bad.test"] = models.PerformanceSignals{LoadTimeMS: 12000, DOMContentLoadedMS: 8000, PageSizeKB: models.Float64Ptr(4000)}
	for i := 0; i < 4; i++ {
		pages.fetchErrs[fmt.Sprintf("https://down%d.test", i)] = errors.New("unreachable")
	}

	urls := []string{"good.test", "https://down0.test", "bad.test", "https://down1.test", "https://down2.test", "https://down3.test"}
	got, err := newTestAnalyzer(pages).Compare(context.Background(), urls)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}

	want := []string{
		"📊 Average CRO score: 50.0/100, average performance score: 50.0/100.",
		"🏆 Top performer: good.test with a combined score of 200/200.",
		"📈 Score gap between the best and the worst page: 200 points.",
		"⚠️ High CRO score variance (100 points).",
		"⚠️ High performance variance (100 points).",
		"⏱️ Average load time: 6.75s.",
		"🐢 Average load time is above 3s.",
		"❌ Failed to analyze 4 URL(s): https://down0.test, https://down1.test, https://down2.test and 1 more.",
		"💡",
	}
	if len(got.Insights) != len(want) {
		t.Fatalf("got %d insights %q, want %d", len(got.Insights), got.Insights, len(want))
	}
	for i, prefix := range want {
		if !strings.HasPrefix(got.Insights[i], prefix) {
			t.Fatalf("insight %d = %q, want prefix %q", i, got.Insights[i], prefix)
		}
	}
}

func TestCompareInsightsMinimal(t *testing.T) {
	pages := newFakePages()
	pages.signals["a.test"] = fullSignals()
	pages.perf["a.test"] = fastPerf
	pages.fetchErrs["b.test"] = errors.New("unreachable")

	got, err := newTestAnalyzer(pages).Compare(context.Background(), []string{"a.test", "b.test"})
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	// average, top performer, load time, failed, closing. No gap for a single result.
	if len(got.Insights) != 5 {
		t.Fatalf("insights = %q", got.Insights)
	}
	for _, insight := range got.Insights {
		if strings.Contains(insight, "Score gap") || strings.Contains(insight, "variance") {
			t.Fatalf("unexpected insight %q", insight)
		}
	}
}

func TestCompareTimestampIsUTC(t *testing.T) {
	got, err := newTestAnalyzer(newFakePages()).Compare(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if got.Timestamp.Location() != time.UTC {
		t.Fatalf("timestamp location = %v, want UTC", got.Timestamp.Location())
	}
}

func TestCompareWithProgressReportsEveryURL(t *testing.T) {
	pages := newFakePages()
	pages.fetchErrs["b.test"] = errors.New("unreachable")

	var (
		mu     sync.Mutex
		events = map[string][]string{}
	)
	progress := func(ev ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events[ev.URL] = append(events[ev.URL], ev.Type)
		if ev.Total != 3 {
			t.Errorf("event total = %d, want 3", ev.Total)
		}
	}

	_, err := newTestAnalyzer(pages).CompareWithProgress(context.Background(), []string{"a.test", "b.test", "c.test"}, progress)
	if err != nil {
		t.Fatalf("CompareWithProgress returned error: %v", err)
	}

	want := map[string]string{"a.test": EventURLCompleted, "b.test": EventURLFailed, "c.test": EventURLCompleted}
	for url, last := range want {
		got := events[url]
		if len(got) != 2 || got[0] != EventURLStarted || got[1] != last {
			t.Fatalf("events for %s = %v, want [%s %s]", url, got, EventURLStarted, last)
		}
	}
}
