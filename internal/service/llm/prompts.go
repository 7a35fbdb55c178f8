package llm

import (
	"fmt"
	"strings"

	"github.com/chynybekuuludastan/cro_optimizer/internal/models"
)

const promptTextLimit = 1500 // characters of page text sent to the model

// BuildPrompt creates the CRO suggestion prompt for a scored page.
func BuildPrompt(signals models.PageSignals, analysis *models.CROAnalysis) string {
	var sb strings.Builder

	sb.WriteString("You are an expert in conversion rate optimization.\n\n")
	sb.WriteString(fmt.Sprintf("The page %s scored %d/100 on a CRO checklist.\n", analysis.URL, analysis.Score))

	sb.WriteString("\nCurrent page elements:\n")
	sb.WriteString(fmt.Sprintf("- Title: %s\n", valueOrNone(signals.Title)))
	sb.WriteString(fmt.Sprintf("- Meta description: %s\n", valueOrNone(signals.MetaDescription)))
	sb.WriteString(fmt.Sprintf("- H1 headings: %s\n", listOrNone(signals.H1Tags)))
	sb.WriteString(fmt.Sprintf("- Call-to-action texts: %s\n", listOrNone(signals.CTATexts)))
	sb.WriteString(fmt.Sprintf("- Has a form: %t\n", signals.HasForms))
	sb.WriteString(fmt.Sprintf("- Visible text length: %d characters\n", signals.ContentLength))

	sb.WriteString("\nScore breakdown:\n")
	for _, category := range models.Categories() {
		sb.WriteString(fmt.Sprintf("- %s: %d/%d\n", category, analysis.Breakdown.Value(category), models.CategoryMax(category)))
	}

	if len(analysis.Recommendations) > 0 {
		sb.WriteString("\nChecklist findings:\n")
		for _, rec := range analysis.Recommendations {
			sb.WriteString("- " + rec + "\n")
		}
	}

	if text := strings.TrimSpace(signals.Text); text != "" {
		runes := []rune(text)
		if len(runes) > promptTextLimit {
			text = string(runes[:promptTextLimit]) + "..."
		}
		sb.WriteString("\nPage text excerpt:\n")
		sb.WriteString(text + "\n")
	}

	sb.WriteString(fmt.Sprintf(
		"\nSuggest up to %d concrete, page-specific changes that would raise conversions. "+
			"Rewrite weak titles, headings or CTA texts where useful. "+
			"Respond only with a JSON array of strings.", MaxSuggestions))

	return sb.String()
}

func valueOrNone(s *string) string {
	if s == nil || *s == "" {
		return "(none)"
	}
	return fmt.Sprintf("%q", *s)
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return strings.Join(quoted, ", ")
}
