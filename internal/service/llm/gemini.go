package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/chynybekuuludastan/cro_optimizer/internal/models"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiAdvisor implements Advisor on top of Google's Gemini API
type GeminiAdvisor struct {
	modelName string
	client    *genai.Client
	logger    *slog.Logger
}

// NewGeminiAdvisor creates a Gemini advisor using the official client
func NewGeminiAdvisor(ctx context.Context, apiKey, modelName string, logger *slog.Logger) (*GeminiAdvisor, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &GeminiAdvisor{
		modelName: modelName,
		client:    client,
		logger:    logger,
	}, nil
}

// Name returns the provider name
func (g *GeminiAdvisor) Name() string {
	return "gemini"
}

// Close releases the underlying client
func (g *GeminiAdvisor) Close() error {
	return g.client.Close()
}

// Suggest implements Advisor
func (g *GeminiAdvisor) Suggest(ctx context.Context, signals models.PageSignals, analysis *models.CROAnalysis) ([]string, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(0.4)
	model.SetMaxOutputTokens(1024)
	model.ResponseMIMEType = "application/json"

	prompt := BuildPrompt(signals, analysis)
	g.logger.Debug("sending prompt to gemini", slog.String("url", analysis.URL), slog.Int("prompt_len", len(prompt)))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return nil, fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return ParseSuggestions(sb.String())
}

// ParseSuggestions reads a model reply: a JSON array of strings, possibly
// fenced as markdown, or failing that a bullet list.
func ParseSuggestions(reply string) ([]string, error) {
	cleaned := CleanCodeBlocks(reply)

	var suggestions []string
	if err := json.Unmarshal([]byte(cleaned), &suggestions); err != nil {
		suggestions = ExtractListItems(cleaned)
		if len(suggestions) == 0 {
			return nil, fmt.Errorf("parse suggestions: %w", err)
		}
	}

	out := suggestions[:0]
	for _, s := range suggestions {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyResponse
	}
	return out, nil
}
