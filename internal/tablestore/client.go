// Package tablestore is a thin client for the hosted table-store HTTP API.
// Every table is exposed at /rest/v1/<table> and speaks JSON; reads are
// range-paginated GETs, writes are POST (insert) and PATCH (update).
package tablestore

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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"servicelog/internal/config"
	"servicelog/internal/observability"
	contextutils "servicelog/internal/utils"
)

// restPathPrefix is the table API path prefix on the store host.
const restPathPrefix = "/rest/v1/"

// Client talks to the hosted table store. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *observability.Logger
}

// NewClient creates a store client from configuration.
func NewClient(cfg *config.TableStoreConfig, logger *observability.Logger) *Client {
	return NewClientWithURL(cfg, logger, cfg.URL)
}

// NewClientWithURL creates a store client against a custom base URL (for testing).
func NewClientWithURL(cfg *config.TableStoreConfig, logger *observability.Logger, baseURL string) *Client {
	timeout := time.Duration(cfg.TimeoutSecondsOrDefault()) * time.Second
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
			),
		},
		logger: logger,
	}
}

// Query is a single read request against one table. Build it with
// Client.Table, refine with Select, Eq, and Range, then run Execute.
type Query struct {
	client  *Client
	table   string
	columns string
	filters url.Values
	start   int
	end     int
	ranged  bool
}

// Table starts a query against the named table.
func (c *Client) Table(name string) *Query {
	return &Query{
		client:  c,
		table:   name,
		columns: "*",
		filters: url.Values{},
	}
}

// Select restricts the returned columns. The default is every column.
func (q *Query) Select(columns string) *Query {
	if columns != "" {
		q.columns = columns
	}
	return q
}

// Eq adds an equality filter on a column.
func (q *Query) Eq(column, value string) *Query {
	q.filters.Add(column, "eq."+value)
	return q
}

// Range limits the query to the inclusive row window [start, end].
func (q *Query) Range(start, end int) *Query {
	q.start = start
	q.end = end
	q.ranged = true
	return q
}

// Execute runs the query and decodes the JSON array response into dest,
// which must be a pointer to a slice.
func (q *Query) Execute(ctx context.Context, dest interface{}) error {
	ctx, span := observability.TraceStoreFunction(ctx, "query",
		observability.AttributeTable(q.table),
	)
	defer observability.FinishSpan(span, nil)

	reqURL, err := q.buildURL()
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrInvalidInput, "invalid store query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to build store request: %w", err)
	}
	q.client.setAuthHeaders(req)
	if q.ranged {
		req.Header.Set("Range-Unit", "items")
		req.Header.Set("Range", fmt.Sprintf("%d-%d", q.start, q.end))
	}

	body, err := q.client.do(req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return contextutils.WrapErrorf(contextutils.ErrStoreResponse,
			"failed to decode rows from table %s: %w", q.table, err)
	}

	span.SetAttributes(attribute.Int("store.response_bytes", len(body)))
	return nil
}

func (q *Query) buildURL() (string, error) {
	u, err := url.Parse(q.client.baseURL + restPathPrefix + q.table)
	if err != nil {
		return "", err
	}
	params := url.Values{}
	params.Set("select", q.columns)
	for column, values := range q.filters {
		for _, v := range values {
			params.Add(column, v)
		}
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// Insert writes one or more rows into the named table. row is marshaled as
// the JSON request body; a struct inserts a single row, a slice inserts many.
func (c *Client) Insert(ctx context.Context, table string, row interface{}) error {
	ctx, span := observability.TraceStoreFunction(ctx, "insert",
		observability.AttributeTable(table),
	)
	defer observability.FinishSpan(span, nil)

	return c.write(ctx, http.MethodPost, table, nil, row)
}

// Update patches every row of the named table matching the filters. filters
// maps column name to the required value.
func (c *Client) Update(ctx context.Context, table string, filters map[string]string, changes interface{}) error {
	ctx, span := observability.TraceStoreFunction(ctx, "update",
		observability.AttributeTable(table),
	)
	defer observability.FinishSpan(span, nil)

	if len(filters) == 0 {
		return contextutils.NewAppError(contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityError, "refusing unfiltered update", "table "+table)
	}
	return c.write(ctx, http.MethodPatch, table, filters, changes)
}

func (c *Client) write(ctx context.Context, method, table string, filters map[string]string, body interface{}) error {
	u, err := url.Parse(c.baseURL + restPathPrefix + table)
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrInvalidInput, "invalid store table URL: %w", err)
	}
	params := url.Values{}
	for column, value := range filters {
		params.Add(column, "eq."+value)
	}
	u.RawQuery = params.Encode()

	payload, err := json.Marshal(body)
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to encode store payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(payload))
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to build store request: %w", err)
	}
	c.setAuthHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	_, err = c.do(req)
	return err
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
}

// do sends the request and returns the response body, mapping transport and
// HTTP-level failures to the error taxonomy.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrTimeout, "store request canceled: %w", err)
		}
		return nil, contextutils.WrapErrorf(contextutils.ErrStoreConnection, "store request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && c.logger != nil {
			c.logger.Warn(req.Context(), "Failed to close store response body", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrStoreResponse, "failed to read store response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := contextutils.ErrorCodeStoreQuery
		if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusBadGateway {
			code = contextutils.ErrorCodeServiceUnavailable
		}
		return nil, contextutils.NewAppError(code, contextutils.SeverityError,
			fmt.Sprintf("store returned HTTP %d", resp.StatusCode),
			truncateBody(body))
	}

	return body, nil
}

// truncateBody keeps error detail payloads small enough to log.
func truncateBody(body []byte) string {
	const max = 512
	s := string(body)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
