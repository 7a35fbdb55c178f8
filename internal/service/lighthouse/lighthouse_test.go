package lighthouse

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
)

const psiBody = `{
  "lighthouseResult": {
    "audits": {
      "metrics": {
        "details": {
          "type": "debugdata",
          "items": [{"observedLoad": 2345.6, "observedDomContentLoaded": 1234.5, "firstContentfulPaint": 900}]
        }
      },
      "total-byte-weight": {"numericValue": 1048576},
      "screenshot-thumbnails": {"details": {"items": [{"timing": 300, "data": "..."}]}}
    }
  }
}`

func newTestClient(transport http.RoundTripper) *Client {
	return NewClient("https://psi.test/run", "secret",
		WithHTTPClient(&http.Client{Transport: transport}),
		WithRetries(0),
		WithRateLimit(100),
	)
}

func TestMeasurePerformance(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://psi.test/run", func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		if q.Get("url") != "https://shop.test" || q.Get("key") != "secret" || q.Get("category") != "performance" || q.Get("strategy") != "desktop" {
			t.Errorf("unexpected query %q", req.URL.RawQuery)
		}
		return httpmock.NewStringResponse(200, psiBody), nil
	})

	perf, err := newTestClient(transport).MeasurePerformance(context.Background(), "https://shop.test")
	if err != nil {
		t.Fatalf("MeasurePerformance returned error: %v", err)
	}
	if perf.LoadTimeMS != 2345.6 || perf.DOMContentLoadedMS != 1234.5 {
		t.Fatalf("timings = %+v", perf)
	}
	if perf.PageSizeKB == nil || *perf.PageSizeKB != 1024 {
		t.Fatalf("page size = %v, want 1024", perf.PageSizeKB)
	}
}

func TestMeasurePerformanceWithoutByteWeight(t *testing.T) {
	body := `{"lighthouseResult":{"audits":{"metrics":{"details":{"items":[{"observedLoad":100,"observedDomContentLoaded":50}]}}}}}`
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://psi.test/run", httpmock.NewStringResponder(200, body))

	perf, err := newTestClient(transport).MeasurePerformance(context.Background(), "https://shop.test")
	if err != nil {
		t.Fatalf("MeasurePerformance returned error: %v", err)
	}
	if perf.PageSizeKB != nil {
		t.Fatalf("page size = %v, want nil", *perf.PageSizeKB)
	}
}

func TestMeasurePerformanceAPIError(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://psi.test/run",
		httpmock.NewStringResponder(400, `{"error":{"code":400,"message":"Lighthouse returned error: FAILED_DOCUMENT_REQUEST"}}`))

	_, err := newTestClient(transport).MeasurePerformance(context.Background(), "https://shop.test")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != 400 || !strings.Contains(apiErr.Message, "FAILED_DOCUMENT_REQUEST") {
		t.Fatalf("api error = %+v", apiErr)
	}
}

func TestMeasurePerformanceServerError(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://psi.test/run", httpmock.NewStringResponder(503, "unavailable"))

	_, err := newTestClient(transport).MeasurePerformance(context.Background(), "https://shop.test")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("error = %v, want bad gateway APIError", err)
	}
	if n := transport.GetTotalCallCount(); n != 1 {
		t.Fatalf("calls = %d, want 1 with retries disabled", n)
	}
}

func TestMeasurePerformanceMissingMetrics(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://psi.test/run", httpmock.NewStringResponder(200, `{"lighthouseResult":{"audits":{}}}`))

	if _, err := newTestClient(transport).MeasurePerformance(context.Background(), "https://shop.test"); err == nil {
		t.Fatalf("expected error for response without metrics audit")
	}
}
