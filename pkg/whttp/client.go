// package whttp provides the reusable outbound HTTP client. The single
// interesting bit is the logging round tripper, which traces every call
// without ever writing credentials or image payloads to the logs.
package whttp

import (
	"log/slog"
	"net/http"
	"time"
)

type LoggingRoundTripper struct {
	Proxied http.RoundTripper
}

func (lrt LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	t0 := time.Now()

	res, err := lrt.Proxied.RoundTrip(req)
	if err != nil {
		slog.ErrorContext(req.Context(), "outbound request failed",
			"http.request.method", req.Method,
			"http.request.url", req.URL.Redacted(),
			"error", err.Error())
		return res, err
	}

	slog.InfoContext(req.Context(), "outbound request",
		"http.request.method", req.Method,
		"http.request.url", req.URL.Redacted(),
		"http.request.duration_ms", time.Since(t0).Milliseconds(),
		"http.response.status", res.StatusCode)

	return res, nil
}

// NewLoggingClient returns an http.Client suited for vision-inference calls:
// they routinely run for tens of seconds, so the timeout is generous and the
// per-request context is the real cancellation lever.
func NewLoggingClient() *http.Client {
	return &http.Client{
		Transport: LoggingRoundTripper{Proxied: http.DefaultTransport},
		Timeout:   90 * time.Second,
	}
}
