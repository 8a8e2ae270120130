package client

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/attaxia/meltano/pkg/infrastructure/metrics"
)

// requestIDTransport stamps every request with a unique X-Request-Id so
// backend logs can be correlated with client logs.
type requestIDTransport struct {
	next http.RoundTripper
}

func newRequestIDTransport(next http.RoundTripper) http.RoundTripper {
	return &requestIDTransport{next: next}
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("X-Request-Id", uuid.NewString())
	return t.next.RoundTrip(req)
}

// authTransport attaches a bearer token to every request. When the token
// parses as a JWT with an expiry in the past, a warning is logged once;
// the request is still sent so the backend stays the authority.
type authTransport struct {
	next   http.RoundTripper
	token  string
	exp    *time.Time
	logger zerolog.Logger
	warn   sync.Once
}

func newAuthTransport(next http.RoundTripper, token string, logger zerolog.Logger) http.RoundTripper {
	t := &authTransport{
		next:   next,
		token:  token,
		logger: logger,
	}
	if claims := parseJWTClaims(token); claims != nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			t.exp = &exp.Time
		}
	}
	return t
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.exp != nil && time.Now().After(*t.exp) {
		t.warn.Do(func() {
			t.logger.Warn().
				Time("expired_at", *t.exp).
				Msg("API token is expired, requests will likely be rejected")
		})
	}

	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	return t.next.RoundTrip(req)
}

// parseJWTClaims decodes a token's claims without verifying the
// signature. Opaque (non-JWT) tokens return nil.
func parseJWTClaims(token string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

// loggingTransport logs each request at debug level and failures at
// error level.
type loggingTransport struct {
	next   http.RoundTripper
	logger zerolog.Logger
}

func newLoggingTransport(next http.RoundTripper, logger zerolog.Logger) http.RoundTripper {
	return &loggingTransport{next: next, logger: logger}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	t.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", req.Header.Get("X-Request-Id")).
		Msg("API request")

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.logger.Error().
			Err(err).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("API request failed")
		return nil, err
	}

	event := t.logger.Debug()
	if resp.StatusCode >= 400 {
		event = t.logger.Warn()
	}
	event.
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API response")

	return resp, nil
}

// metricsTransport records request counts, in-flight requests, and
// latency for every round trip.
type metricsTransport struct {
	next      http.RoundTripper
	collector metrics.Collector
}

func newMetricsTransport(next http.RoundTripper, collector metrics.Collector) http.RoundTripper {
	return &metricsTransport{next: next, collector: collector}
}

func (t *metricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.collector.AddGauge("api_client_requests_in_flight", 1)
	timer := t.collector.StartTimer("api_client_request_duration")

	resp, err := t.next.RoundTrip(req)

	timer.Stop()
	t.collector.AddGauge("api_client_requests_in_flight", -1)

	if err != nil {
		t.collector.IncrementCounter("api_client_requests_total", "method", req.Method, "status", "error")
		return nil, err
	}

	t.collector.IncrementCounter("api_client_requests_total",
		"method", req.Method,
		"status", strconv.Itoa(resp.StatusCode))
	return resp, nil
}
