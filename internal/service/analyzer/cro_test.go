package analyzer

import (
	"strings"
	"testing"

	"github.com/chynybekuuludastan/cro_optimizer/internal/models"
)

func fullSignals() models.PageSignals {
	return models.PageSignals{
		Title:           models.StringPtr(strings.Repeat("t", 45)),
		MetaDescription: models.StringPtr(strings.Repeat("m", 140)),
		H1Tags:          []string{"Main heading"},
		CTATexts:        []string{"Buy now", "Sign up"},
		HasForms:        true,
		ContentLength:   2500,
	}
}

func TestScoreContentPerfectPage(t *testing.T) {
	score, breakdown, recs := ScoreContent(fullSignals())

	if score != 100 {
		t.Fatalf("score = %d, want 100", score)
	}
	want := models.CROBreakdown{Title: 20, MetaDescription: 15, H1Tags: 15, CTAs: 25, Forms: 15, Content: 10}
	if breakdown != want {
		t.Fatalf("breakdown = %+v, want %+v", breakdown, want)
	}
	if len(recs) != 1 || recs[0] != excellentScoreRemark {
		t.Fatalf("recommendations = %q, want only the excellent remark", recs)
	}
}

func TestScoreContentEmptyPage(t *testing.T) {
	score, breakdown, recs := ScoreContent(models.PageSignals{})

	if score != 0 {
		t.Fatalf("score = %d, want 0", score)
	}
	if breakdown != (models.CROBreakdown{}) {
		t.Fatalf("breakdown = %+v, want zero", breakdown)
	}
	if len(recs) != 6 {
		t.Fatalf("got %d recommendations, want 6: %q", len(recs), recs)
	}
	if !strings.Contains(recs[5], "current: ~0 words") {
		t.Fatalf("content recommendation = %q", recs[5])
	}
}

func TestScoreContentEmptyStringsCountAsAbsent(t *testing.T) {
	signals := fullSignals()
	signals.Title = models.StringPtr("")
	signals.MetaDescription = models.StringPtr("")

	_, breakdown, recs := ScoreContent(signals)
	if breakdown.Title != 0 || breakdown.MetaDescription != 0 {
		t.Fatalf("breakdown = %+v, want no title or meta points", breakdown)
	}
	if !containsText(recs, "Add a title tag") || !containsText(recs, "Add a meta description") {
		t.Fatalf("missing add recommendations: %q", recs)
	}
}

func TestScoreContentTitleLength(t *testing.T) {
	tests := []struct {
		length  int
		points  int
		wantRec string
	}{
		{length: 29, points: 10, wantRec: "Title is too short (29 characters)"},
		{length: 30, points: 20},
		{length: 60, points: 20},
		{length: 61, points: 10, wantRec: "Title is too long (61 characters)"},
	}

	for _, tt := range tests {
		signals := fullSignals()
		signals.Title = models.StringPtr(strings.Repeat("a", tt.length))

		_, breakdown, recs := ScoreContent(signals)
		if breakdown.Title != tt.points {
			t.Fatalf("title length %d: points = %d, want %d", tt.length, breakdown.Title, tt.points)
		}
		if tt.wantRec != "" && !containsText(recs, tt.wantRec) {
			t.Fatalf("title length %d: recommendations %q missing %q", tt.length, recs, tt.wantRec)
		}
		if tt.wantRec == "" && containsText(recs, "Title is too") {
			t.Fatalf("title length %d: unexpected length recommendation in %q", tt.length, recs)
		}
	}
}

func TestScoreContentCountsCodePoints(t *testing.T) {
	signals := fullSignals()
	// 30 runes, 60 bytes.
	signals.Title = models.StringPtr(strings.Repeat("é", 30))

	_, breakdown, _ := ScoreContent(signals)
	if breakdown.Title != 20 {
		t.Fatalf("title points = %d, want 20", breakdown.Title)
	}
}

func TestScoreContentMetaDescriptionLength(t *testing.T) {
	tests := []struct {
		length int
		points int
	}{
		{119, 10}, {120, 15}, {160, 15}, {161, 10},
	}

	for _, tt := range tests {
		signals := fullSignals()
		signals.MetaDescription = models.StringPtr(strings.Repeat("m", tt.length))
		if _, breakdown, _ := ScoreContent(signals); breakdown.MetaDescription != tt.points {
			t.Fatalf("meta length %d: points = %d, want %d", tt.length, breakdown.MetaDescription, tt.points)
		}
	}
}

func TestScoreContentH1Tags(t *testing.T) {
	tests := []struct {
		name    string
		h1      []string
		points  int
		wantRec string
	}{
		{name: "none", h1: nil, points: 0, wantRec: "Add an H1 tag"},
		{name: "one", h1: []string{"a"}, points: 15},
		{name: "two", h1: []string{"a", "b"}, points: 10, wantRec: "Multiple H1 tags detected (2)"},
		{name: "three", h1: []string{"a", "b", "c"}, points: 10, wantRec: "Multiple H1 tags detected (3)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := fullSignals()
			signals.H1Tags = tt.h1

			_, breakdown, recs := ScoreContent(signals)
			if breakdown.H1Tags != tt.points {
				t.Fatalf("h1 points = %d, want %d", breakdown.H1Tags, tt.points)
			}
			if tt.wantRec != "" && !containsText(recs, tt.wantRec) {
				t.Fatalf("recommendations %q missing %q", recs, tt.wantRec)
			}
		})
	}
}

func TestScoreContentCTAs(t *testing.T) {
	tests := []struct {
		ctas   []string
		points int
	}{
		{nil, 0},
		{[]string{"Buy"}, 15},
		{[]string{"Buy", "Try"}, 25},
		{[]string{"1", "2", "3", "4", "5"}, 25},
	}

	for _, tt := range tests {
		signals := fullSignals()
		signals.CTATexts = tt.ctas
		if _, breakdown, _ := ScoreContent(signals); breakdown.CTAs != tt.points {
			t.Fatalf("%d CTAs: points = %d, want %d", len(tt.ctas), breakdown.CTAs, tt.points)
		}
	}
}

func TestScoreContentContentLength(t *testing.T) {
	signals := fullSignals()

	signals.ContentLength = 1800
	_, breakdown, recs := ScoreContent(signals)
	if breakdown.Content != 0 {
		t.Fatalf("content 1800: points = %d, want 0", breakdown.Content)
	}
	if !containsText(recs, "current: ~300 words") {
		t.Fatalf("content 1800: recommendations %q missing word estimate", recs)
	}

	signals.ContentLength = 1801
	if _, breakdown, _ = ScoreContent(signals); breakdown.Content != 10 {
		t.Fatalf("content 1801: points = %d, want 10", breakdown.Content)
	}
}

func TestScoreContentPrefixMessages(t *testing.T) {
	// 100 - forms(15) = 85
	excellent := fullSignals()
	excellent.HasForms = false
	if _, _, recs := ScoreContent(excellent); recs[0] != excellentScoreRemark {
		t.Fatalf("score 85: first recommendation = %q", recs[0])
	}

	// 100 - forms(15) - ctas(25) = 60
	good := fullSignals()
	good.HasForms = false
	good.CTATexts = nil
	if score, _, recs := ScoreContent(good); score != 60 || recs[0] != goodScoreRemark {
		t.Fatalf("score %d: first recommendation = %q", score, recs[0])
	}

	// 60 - content(10) = 50
	poor := good
	poor.ContentLength = 0
	score, _, recs := ScoreContent(poor)
	if score != 50 {
		t.Fatalf("score = %d, want 50", score)
	}
	if recs[0] == excellentScoreRemark || recs[0] == goodScoreRemark {
		t.Fatalf("score 50 should have no prefix, got %q", recs[0])
	}
}

func TestScoreContentScoreIsBreakdownSum(t *testing.T) {
	titles := []*string{nil, models.StringPtr("short"), models.StringPtr(strings.Repeat("x", 40)), models.StringPtr(strings.Repeat("x", 90))}
	h1s := [][]string{nil, {"a"}, {"a", "b"}}
	ctas := [][]string{nil, {"a"}, {"a", "b", "c"}}
	lengths := []int{0, 1800, 1801, 10000}

	for _, title := range titles {
		for _, h1 := range h1s {
			for _, cta := range ctas {
				for _, length := range lengths {
					for _, forms := range []bool{false, true} {
						signals := models.PageSignals{Title: title, H1Tags: h1, CTATexts: cta, ContentLength: length, HasForms: forms}
						score, breakdown, _ := ScoreContent(signals)
						if score != breakdown.Total() {
							t.Fatalf("score %d != breakdown sum %d for %+v", score, breakdown.Total(), signals)
						}
						for _, category := range models.Categories() {
							if v := breakdown.Value(category); v < 0 || v > models.CategoryMax(category) {
								t.Fatalf("%s = %d out of range for %+v", category, v, signals)
							}
						}
					}
				}
			}
		}
	}
}

func containsText(recs []string, substr string) bool {
	for _, r := range recs {
		if strings.Contains(r, substr) {
			return true
		}
	}
	return false
}
