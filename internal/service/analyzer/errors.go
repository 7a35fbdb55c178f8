package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ValidationError reports a comparison request with an unsupported URL count.
type ValidationError struct {
	Count int
	Min   int
	Max   int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: between %d and %d URLs are required, got %d", e.Min, e.Max, e.Count)
}

// FetchError reports that the content of a page could not be obtained.
// It is fatal for the analysis of that URL.
type FetchError struct {
	URL     string
	Err     error
	Timeout bool
}

func (e *FetchError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("fetch %s: timeout while loading the page: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: failed to extract content: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// MeasurementError reports that performance timing could not be measured.
// Callers degrade the result instead of failing.
type MeasurementError struct {
	URL     string
	Err     error
	Timeout bool
}

func (e *MeasurementError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("measure %s: timeout while measuring performance: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("measure %s: %v", e.URL, e.Err)
}

func (e *MeasurementError) Unwrap() error {
	return e.Err
}

// FailedURL pairs a URL with the reason its analysis failed.
type FailedURL struct {
	URL string `json:"url"`
	Err error  `json:"-"`
}

// AllFailedError reports a comparison in which no URL could be analysed.
type AllFailedError struct {
	Failed []FailedURL
}

func (e *AllFailedError) Error() string {
	urls := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		urls = append(urls, f.URL)
	}
	return fmt.Sprintf("all %d URLs failed to analyze: %s", len(e.Failed), strings.Join(urls, ", "))
}

// URLs returns the failed URLs in input order.
func (e *AllFailedError) URLs() []string {
	urls := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		urls = append(urls, f.URL)
	}
	return urls
}

// IsTimeout reports whether err stems from a deadline or a network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func errorKind(err error) string {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.Timeout {
			return "timeout"
		}
		return "fetch"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if IsTimeout(err) {
		return "timeout"
	}
	return "other"
}
