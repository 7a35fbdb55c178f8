package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chynybekuuludastan/cro_optimizer/internal/models"
)

const (
	OpenAIAPIURL       = "https://api.openai.com/v1/chat/completions"
	DefaultOpenAIModel = "gpt-4o-mini"
)

const systemPrompt = "You are a conversion rate optimization expert who gives short, actionable advice."

// OpenAIAdvisor implements Advisor using OpenAI's chat completion API
type OpenAIAdvisor struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// Message represents a single message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string    `json:"model"`
	Messages       []Message `json:"messages"`
	Temperature    float64   `json:"temperature"`
	MaxTokens      int       `json:"max_tokens,omitempty"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewOpenAIAdvisor creates a new OpenAI advisor. An empty endpoint selects the
// public API; a nil client gets a 30 second timeout.
func NewOpenAIAdvisor(apiKey, model, endpoint string, httpClient *http.Client) (*OpenAIAdvisor, error) {
	if apiKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	if endpoint == "" {
		endpoint = OpenAIAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &OpenAIAdvisor{
		apiKey:     apiKey,
		model:      model,
		endpoint:   endpoint,
		httpClient: httpClient,
	}, nil
}

// Name returns the provider name
func (c *OpenAIAdvisor) Name() string {
	return "openai"
}

// Suggest implements Advisor
func (c *OpenAIAdvisor) Suggest(ctx context.Context, signals models.PageSignals, analysis *models.CROAnalysis) ([]string, error) {
	req := chatCompletionRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(signals, analysis)},
		},
		Temperature: 0.4,
		MaxTokens:   1024,
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("OpenAI API error: %s - %s", resp.Status, string(body))
	}

	var result chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if result.Error != nil {
		return nil, fmt.Errorf("OpenAI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return ParseSuggestions(result.Choices[0].Message.Content)
}
