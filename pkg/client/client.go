// Package client provides the API client for the Meltano semantic-layer
// backend. Each operation maps 1:1 onto a backend HTTP endpoint, issues
// exactly one request, and propagates failures to the caller unchanged.
// The client holds no state between calls; no retries, no caching.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/attaxia/meltano/pkg/errors"
	"github.com/attaxia/meltano/pkg/infrastructure/metrics"
	"github.com/attaxia/meltano/pkg/models"
)

// Config represents the client configuration.
type Config struct {
	// BaseURL is the root of the backend API, e.g. "http://localhost:5000/api/v1/".
	BaseURL string

	// Token is an optional bearer token attached to every request.
	Token string

	// Timeout bounds each request end to end. Zero means no client-side
	// timeout; callers can still cancel via context.
	Timeout time.Duration

	// Transport overrides the underlying HTTP transport. Nil uses
	// http.DefaultTransport.
	Transport http.RoundTripper
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New(errors.CodeInvalidRequest, "base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidRequest, "invalid base URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(errors.CodeInvalidRequest, fmt.Sprintf("unsupported base URL scheme: %q", u.Scheme))
	}
	return nil
}

// Client talks to the Meltano semantic-layer API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  zerolog.Logger
	metrics metrics.Collector
}

// New creates a new API client. A nil collector disables metrics.
func New(cfg Config, logger zerolog.Logger, collector metrics.Collector) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if collector == nil {
		collector = metrics.NewNoOpCollector()
	}

	baseURL, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidRequest, "invalid base URL")
	}

	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	// Transport chain, outermost first: request ID, auth, logging, metrics.
	transport := base
	transport = newMetricsTransport(transport, collector)
	transport = newLoggingTransport(transport, logger)
	if cfg.Token != "" {
		transport = newAuthTransport(transport, cfg.Token, logger)
	}
	transport = newRequestIDTransport(transport)

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		logger:  logger,
		metrics: collector,
	}, nil
}

// GetDesign fetches a design definition from a model.
// GET repos/designs/{model}/{design}
func (c *Client) GetDesign(ctx context.Context, model, design string) (*models.Design, error) {
	timer := c.metrics.StartTimer("api_get_design")
	defer timer.Stop()

	if err := requireIdents("model", model, "design", design); err != nil {
		return nil, err
	}

	c.logger.Debug().Str("model", model).Str("design", design).Msg("Fetching design")

	var out models.Design
	if err := c.get(ctx, &out, "repos", "designs", model, design); err != nil {
		c.metrics.IncrementCounter("api_errors", "operation", "get_design")
		return nil, err
	}
	return &out, nil
}

// GetTable fetches a table definition.
// GET repos/tables/{table}
func (c *Client) GetTable(ctx context.Context, table string) (*models.Table, error) {
	timer := c.metrics.StartTimer("api_get_table")
	defer timer.Stop()

	if err := requireIdents("table", table); err != nil {
		return nil, err
	}

	c.logger.Debug().Str("table", table).Msg("Fetching table")

	var out models.Table
	if err := c.get(ctx, &out, "repos", "tables", table); err != nil {
		c.metrics.IncrementCounter("api_errors", "operation", "get_table")
		return nil, err
	}
	return &out, nil
}

// ListModels fetches the index of available models.
// GET repos/models
func (c *Client) ListModels(ctx context.Context) (models.ModelIndex, error) {
	timer := c.metrics.StartTimer("api_list_models")
	defer timer.Stop()

	var out models.ModelIndex
	if err := c.get(ctx, &out, "repos", "models"); err != nil {
		c.metrics.IncrementCounter("api_errors", "operation", "list_models")
		return nil, err
	}
	return out, nil
}

// SaveReport persists a report definition and returns the saved report.
// POST repos/reports/save
func (c *Client) SaveReport(ctx context.Context, report *models.Report) (*models.Report, error) {
	timer := c.metrics.StartTimer("api_save_report")
	defer timer.Stop()

	if report == nil {
		return nil, errors.New(errors.CodeInvalidRequest, "report must not be nil")
	}

	c.logger.Debug().Str("name", report.Name).Str("model", report.Model).Str("design", report.Design).Msg("Saving report")

	var out models.Report
	if err := c.post(ctx, report, &out, "repos", "reports", "save"); err != nil {
		c.metrics.IncrementCounter("api_errors", "operation", "save_report")
		return nil, err
	}
	return &out, nil
}

// UpdateReport updates an existing report definition.
// POST repos/reports/update
func (c *Client) UpdateReport(ctx context.Context, report *models.Report) (*models.Report, error) {
	timer := c.metrics.StartTimer("api_update_report")
	defer timer.Stop()

	if report == nil {
		return nil, errors.New(errors.CodeInvalidRequest, "report must not be nil")
	}

	c.logger.Debug().Str("slug", report.Slug).Msg("Updating report")

	var out models.Report
	if err := c.post(ctx, report, &out, "repos", "reports", "update"); err != nil {
		c.metrics.IncrementCounter("api_errors", "operation", "update_report")
		return nil, err
	}
	return &out, nil
}

// ListReports fetches all saved reports.
// GET repos/reports
func (c *Client) ListReports(ctx context.Context) ([]models.Report, error) {
	timer := c.metrics.StartTimer("api_list_reports")
	defer timer.Stop()

	var out []models.Report
	if err := c.get(ctx, &out, "repos", "reports"); err != nil {
		c.metrics.IncrementCounter("api_errors", "operation", "list_reports")
		return nil, err
	}
	return out, nil
}

// GetSQL asks the backend to render a query payload to SQL for a design,
// running it when the payload requests that.
// POST sql/get/{model}/{design}
func (c *Client) GetSQL(ctx context.Context, model, design string, payload *models.QueryPayload) (*models.SQLResult, error) {
	timer := c.metrics.StartTimer("api_get_sql")
	defer timer.Stop()

	if err := requireIdents("model", model, "design", design); err != nil {
		return nil, err
	}

	c.logger.Debug().Str("model", model).Str("design", design).Msg("Computing SQL")

	var out models.SQLResult
	if err := c.post(ctx, payload, &out, "sql", "get", model, design); err != nil {
		c.metrics.IncrementCounter("api_errors", "operation", "get_sql")
		return nil, err
	}
	return &out, nil
}

// GetDialect fetches the SQL dialect the backend targets for a model.
// GET sql/get/{model}/dialect
func (c *Client) GetDialect(ctx context.Context, model string) (*models.DialectResult, error) {
	timer := c.metrics.StartTimer("api_get_dialect")
	defer timer.Stop()

	if err := requireIdents("model", model); err != nil {
		return nil, err
	}

	var out models.DialectResult
	if err := c.get(ctx, &out, "sql", "get", model, "dialect"); err != nil {
		c.metrics.IncrementCounter("api_errors", "operation", "get_dialect")
		return nil, err
	}
	return &out, nil
}

// GetDistinct fetches the distinct values observed for a field within a
// design's result set. The backend's response is returned verbatim.
// POST sql/distinct/{model}/{design}
func (c *Client) GetDistinct(ctx context.Context, model, design, field string) (json.RawMessage, error) {
	timer := c.metrics.StartTimer("api_get_distinct")
	defer timer.Stop()

	if err := requireIdents("model", model, "design", design, "field", field); err != nil {
		return nil, err
	}

	c.logger.Debug().Str("model", model).Str("design", design).Str("field", field).Msg("Fetching distinct values")

	body, err := c.do(ctx, http.MethodPost, models.DistinctRequest{Field: field}, "sql", "distinct", model, design)
	if err != nil {
		c.metrics.IncrementCounter("api_errors", "operation", "get_distinct")
		return nil, err
	}
	return json.RawMessage(body), nil
}

// get issues a GET request and decodes the response into out.
func (c *Client) get(ctx context.Context, out interface{}, segments ...string) error {
	body, err := c.do(ctx, http.MethodGet, nil, segments...)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// post issues a POST request with a JSON body and decodes the response
// into out.
func (c *Client) post(ctx context.Context, in, out interface{}, segments ...string) error {
	body, err := c.do(ctx, http.MethodPost, in, segments...)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// do issues a single HTTP request and returns the raw response body.
// Non-2xx responses become errors carrying the status and the backend's
// error body verbatim.
func (c *Client) do(ctx context.Context, method string, in interface{}, segments ...string) ([]byte, error) {
	// JoinPath expects escaped elements; identifiers must stay single
	// path segments even when they contain slashes.
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = url.PathEscape(segment)
	}
	endpoint := c.baseURL.JoinPath(escaped...)

	var reqBody io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidRequest, "encode request body")
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reqBody)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTransportFailed, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.FromStatus(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// decode unmarshals a response body, tolerating empty bodies.
func decode(body []byte, out interface{}) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, errors.CodeDecodeFailed, "decode response body")
	}
	return nil
}

// transportError maps a failed round trip to an APIError, distinguishing
// caller cancellation from genuine transport failure.
func transportError(ctx context.Context, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		return errors.Wrap(err, errors.CodeCanceled, "request canceled")
	case context.DeadlineExceeded:
		return errors.Wrap(err, errors.CodeDeadlineExceeded, "request deadline exceeded")
	}
	return errors.Wrap(err, errors.CodeTransportFailed, "request failed")
}

// requireIdents rejects empty identifiers before any request is issued.
// Arguments alternate name, value.
func requireIdents(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return errors.New(errors.CodeInvalidRequest, fmt.Sprintf("%s must not be empty", pairs[i]))
		}
	}
	return nil
}
