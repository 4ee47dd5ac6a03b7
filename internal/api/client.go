// Package api is the HTTP client for the past-year questions REST API.
package api

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

	"go.uber.org/zap"
)

// Question endpoints.
const (
	questionsPath         = "/questions"
	randomQuestionsPath   = "/questions/random"
	questionsMetadataPath = "/questions/metadata"
	incorrectQuestionPath = "/incorrect-question"
)

const maxErrorBody = 64 << 10

// Endpoints holds the authentication paths, which differ between deployments.
type Endpoints struct {
	Login   string
	SignUp  string
	Refresh string
	Logout  string
}

// DefaultEndpoints returns the auth paths served by the reference backend.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:   "/login",
		SignUp:  "/signup",
		Refresh: "/login/refresh",
		Logout:  "/login/logout",
	}
}

// Client talks to the questions API. It performs no retries.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	logger    *zap.Logger
	metrics   *Metrics
	endpoints Endpoints
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.logger = l } }
func WithMetrics(m *Metrics) Option { return func(c *Client) { c.metrics = m } }
func WithEndpoints(e Endpoints) Option { return func(c *Client) { c.endpoints = e } }

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL:   u,
		http:      &http.Client{Timeout: 30 * time.Second},
		logger:    zap.NewNop(),
		endpoints: DefaultEndpoints(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type tokenKey struct{}

// WithAccessToken attaches a bearer token to requests made with ctx.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// call is one request to the API.
type call struct {
	op     string
	method string
	path   []string
	query  string
	body   any
}

// do sends the request and returns the raw response body on a 2xx status.
func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	u := c.baseURL.JoinPath(cl.path...)
	u.RawQuery = cl.query

	var reader io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", cl.op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := ctx.Value(tokenKey{}).(string); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(cl.op, outcomeFor(0, err), time.Since(started))
		c.logger.Warn("api request failed",
			zap.String("op", cl.op),
			zap.String("url", u.Redacted()),
			zap.Error(err),
		)
		return nil, &NetworkError{Op: cl.op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		c.metrics.observe(cl.op, outcomeFor(resp.StatusCode, nil), time.Since(started))
		se := statusError(cl.op, resp)
		c.logger.Info("api error response",
			zap.String("op", cl.op),
			zap.Int("status", se.StatusCode),
			zap.String("request_id", se.RequestID),
		)
		return nil, se
	}

	data, err := io.ReadAll(resp.Body)
	c.metrics.observe(cl.op, outcomeFor(resp.StatusCode, err), time.Since(started))
	if err != nil {
		return nil, &NetworkError{Op: cl.op, Err: err}
	}
	c.logger.Debug("api request",
		zap.String("op", cl.op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, cl call, out any) error {
	data, err := c.do(ctx, cl)
	if err != nil {
		return err
	}
	if err := decodeCamel(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", cl.op, err)
	}
	return nil
}

func statusError(op string, resp *http.Response) *StatusError {
	se := &StatusError{
		Op:         op,
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get(RequestIDHeader),
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return se
	}
	var problem struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if json.Unmarshal(body, &problem) == nil {
		se.Title = problem.Title
		se.Description = problem.Description
	}
	return se
}
