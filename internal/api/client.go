// Package api talks to the restaurant REST API. Response envelopes vary per
// endpoint; every tolerance for them lives in this package so callers only
// ever see typed values.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"storefront/internal/logger"
	"storefront/internal/metric"
	"storefront/internal/trace"
)

const defaultTimeout = 10 * time.Second

// TokenSource supplies the bearer token of the current session, "" for none
type TokenSource interface {
	Token() string
}

// StaticToken fixed token
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
	tokens     TokenSource
	tracer     oteltrace.Tracer
}

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: hc,
		log:        logger.OrNop(opts.Logger).Named("api"),
		tracer:     otel.Tracer("storefront/api"),
	}
}

// WithTokenSource returns a copy sending the tokens of ts
func (c *Client) WithTokenSource(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

func (c *Client) WithToken(token string) *Client {
	return c.WithTokenSource(StaticToken(token))
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// doJSON sends body encoded as JSON (nil for none) and returns the raw response
func (c *Client) doJSON(ctx context.Context, op, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	contentType := ""
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode: %w", op, err)
		}
		reader = bytes.NewReader(buf)
		contentType = "application/json"
	}
	return c.do(ctx, op, method, path, contentType, reader)
}

func (c *Client) do(ctx context.Context, op, method, path, contentType string, body io.Reader) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "api."+op, oteltrace.WithSpanKind(oteltrace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("http.method", method), attribute.String("api.path", path))

	start := time.Now()
	status := 0
	defer func() { metric.ObserveAPI(op, status, time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.log.Warn("request failed", zap.String("op", op), zap.Error(err), trace.Field(ctx))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode
	span.SetAttributes(attribute.Int("http.status_code", status))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}

	if status < 200 || status >= 300 {
		apiErr := &Error{Op: op, Status: status, Message: errorMessage(respBody)}
		span.SetStatus(codes.Error, apiErr.Error())
		c.log.Debug("api error", zap.String("op", op), zap.Int("status", status), trace.Field(ctx))
		return nil, apiErr
	}
	return respBody, nil
}

// errorMessage best effort read of {"message": "..."}
func errorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &e)
	return e.Message
}
