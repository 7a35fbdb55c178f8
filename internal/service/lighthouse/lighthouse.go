// Package lighthouse measures page performance through the PageSpeed
// Insights API, for deployments that cannot run a local browser.
package lighthouse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/chynybekuuludastan/cro_optimizer/internal/models"
)

// Constants for API configuration
const (
	DefaultBaseURL   = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"
	DefaultTimeout   = 60 * time.Second
	DefaultRetries   = 2
	DefaultRateLimit = 1 // Requests per second
)

// Strategy is the device profile PageSpeed emulates.
type Strategy string

const (
	StrategyMobile  Strategy = "mobile"
	StrategyDesktop Strategy = "desktop"
)

// Client is a PageSpeed Insights client implementing a performance meter.
type Client struct {
	baseURL    string
	apiKey     string
	strategy   Strategy
	httpClient *http.Client
	limiter    *rate.Limiter
	retries    int
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client for the PageSpeed client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithStrategy sets the emulated device
func WithStrategy(strategy Strategy) ClientOption {
	return func(c *Client) {
		if strategy == StrategyDesktop || strategy == StrategyMobile {
			c.strategy = strategy
		}
	}
}

// WithRetries sets the number of retries for server errors
func WithRetries(retries int) ClientOption {
	return func(c *Client) {
		c.retries = retries
	}
}

// WithRateLimit sets the rate limit for API requests
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps*2)))
	}
}

// NewClient creates a new PageSpeed client. An empty baseURL selects the
// public Google endpoint.
func NewClient(baseURL, apiKey string, options ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		strategy:   StrategyDesktop,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		retries:    DefaultRetries,
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit*2),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// APIError is an error reported by the PageSpeed API itself.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pagespeed: status %d: %s", e.StatusCode, e.Message)
}

type psiResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	LighthouseResult struct {
		Audits map[string]json.RawMessage `json:"audits"`
	} `json:"lighthouseResult"`
}

// metricsAudit is the "metrics" audit; its first item carries the observed
// navigation timings in milliseconds.
type metricsAudit struct {
	Details struct {
		Items []struct {
			ObservedLoad             float64 `json:"observedLoad"`
			ObservedDomContentLoaded float64 `json:"observedDomContentLoaded"`
		} `json:"items"`
	} `json:"details"`
}

type numericAudit struct {
	NumericValue float64 `json:"numericValue"`
}

// MeasurePerformance runs a PageSpeed performance audit of targetURL.
func (c *Client) MeasurePerformance(ctx context.Context, targetURL string) (models.PerformanceSignals, error) {
	reqURL, err := c.buildRequestURL(targetURL)
	if err != nil {
		return models.PerformanceSignals{}, err
	}

	body, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return models.PerformanceSignals{}, err
	}

	return parseResponse(body)
}

// buildRequestURL builds the request URL for the PageSpeed API
func (c *Client) buildRequestURL(targetURL string) (string, error) {
	apiURL, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	q := apiURL.Query()
	q.Set("url", targetURL)
	q.Set("category", "performance")
	q.Set("strategy", string(c.strategy))
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	apiURL.RawQuery = q.Encode()
	return apiURL.String(), nil
}

// doRequest performs a GET with retries on server errors
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var (
		resp *http.Response
		err  error
	)
	for attempt := 0; attempt <= c.retries; attempt++ {
		var req *http.Request
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err = c.httpClient.Do(req)
		if err == nil && resp.StatusCode < 500 {
			break
		}
		if resp != nil {
			resp.Body.Close()
			resp = nil
		}

		if attempt < c.retries {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("pagespeed request: %w", err)
	}
	if resp == nil {
		return nil, &APIError{StatusCode: http.StatusBadGateway, Message: "server error after retries"}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: apiMessage(body)}
	}
	return body, nil
}

func apiMessage(body []byte) string {
	var r psiResponse
	if err := json.Unmarshal(body, &r); err == nil && r.Error != nil {
		return r.Error.Message
	}
	return http.StatusText(http.StatusBadRequest)
}

func parseResponse(body []byte) (models.PerformanceSignals, error) {
	var r psiResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return models.PerformanceSignals{}, fmt.Errorf("parse pagespeed response: %w", err)
	}
	if r.Error != nil {
		return models.PerformanceSignals{}, &APIError{StatusCode: http.StatusOK, Message: r.Error.Message}
	}

	raw, ok := r.LighthouseResult.Audits["metrics"]
	if !ok {
		return models.PerformanceSignals{}, errors.New("pagespeed response has no metrics audit")
	}
	var metrics metricsAudit
	if err := json.Unmarshal(raw, &metrics); err != nil {
		return models.PerformanceSignals{}, fmt.Errorf("parse metrics audit: %w", err)
	}
	if len(metrics.Details.Items) == 0 {
		return models.PerformanceSignals{}, errors.New("pagespeed metrics audit is empty")
	}

	observed := metrics.Details.Items[0]
	signals := models.PerformanceSignals{
		LoadTimeMS:         observed.ObservedLoad,
		DOMContentLoadedMS: observed.ObservedDomContentLoaded,
	}

	if raw, ok := r.LighthouseResult.Audits["total-byte-weight"]; ok {
		var weight numericAudit
		if err := json.Unmarshal(raw, &weight); err == nil && weight.NumericValue > 0 {
			signals.PageSizeKB = models.Float64Ptr(weight.NumericValue / 1024)
		}
	}
	return signals, nil
}
