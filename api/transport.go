package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request id the remote can log.
const RequestIDHeader = "X-Request-ID"

type loggerTransport struct {
	transport http.RoundTripper
	logger    *log.Logger
}

func (l *loggerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := req.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, id)
	}

	l.logger.Debug("HTTP Request",
		"method", req.Method,
		"url", req.URL.String(),
		"request_id", id,
	)

	startTime := time.Now()
	resp, err := l.transport.RoundTrip(req)
	if err != nil {
		l.logger.Error("HTTP Request failed", "error", err, "request_id", id)
		return nil, err
	}
	duration := time.Since(startTime)

	l.logger.Debug("HTTP Response",
		"status", resp.Status,
		"duration", duration,
		"url", req.URL.String(),
		"method", req.Method,
		"request_id", id,
	)

	return resp, nil
}

func newLoggingTransport(transport http.RoundTripper, logger *log.Logger) http.RoundTripper {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &loggerTransport{transport: transport, logger: logger}
}
