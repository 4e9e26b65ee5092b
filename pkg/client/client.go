package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/metagrowth/growth-agent/pkg/models/api"
	"github.com/metagrowth/growth-agent/pkg/session"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 64 * 1024
)

var (
	// ErrUnauthorized is returned on HTTP 401; the session token is cleared.
	ErrUnauthorized = errors.New("unauthorized - please login again")
	// ErrUnavailable wraps transport failures: refused connections, DNS,
	// timeouts and bodies cut off mid-read.
	ErrUnavailable = errors.New("backend not available")
	// ErrMalformedResponse is a 2xx answer whose body is not the expected JSON
	ErrMalformedResponse = errors.New("malformed backend response")
)

// APIError is a non-2xx answer from the backend
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Detail)
}

// IsNotReady reports whether err means the report may still appear later:
// the backend answered 404 or could not be reached at all.
func IsNotReady(err error) bool {
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to the growth agent REST API
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Session
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Session    *session.Session
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if opts.Session == nil {
		opts.Session = session.New(nil)
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    opts.HTTPClient,
		session: opts.Session,
	}
}

func (c *Client) Session() *session.Session {
	return c.session
}

func (c *Client) Login(ctx context.Context, email, password string) (*api.LoginResponse, error) {
	var resp api.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", api.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	if err := c.session.SetToken(resp.AccessToken); err != nil {
		return &resp, err
	}
	return &resp, nil
}

func (c *Client) Logout() error {
	return c.session.ClearToken()
}

func (c *Client) RefreshReport(ctx context.Context, accountID string, priority bool) error {
	var resp api.StatusResponse
	return c.do(ctx, http.MethodPost, "/reports/"+url.PathEscape(accountID)+"/refresh",
		api.RefreshRequest{Priority: priority}, &resp)
}

func (c *Client) GetReport(ctx context.Context, accountID string) (*api.ReportSummary, error) {
	var resp api.ReportResponse
	if err := c.do(ctx, http.MethodGet, "/reports/"+url.PathEscape(accountID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Report, nil
}

func (c *Client) GetAlerts(ctx context.Context) ([]api.AlertResponse, error) {
	var resp []api.AlertResponse
	if err := c.do(ctx, http.MethodGet, "/alerts", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Traffic(ctx context.Context, domain string) (*api.TrafficData, error) {
	var resp api.TrafficData
	if err := c.do(ctx, http.MethodGet, "/traffic/"+url.PathEscape(domain), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", ErrMalformedResponse, method, path, err)
	}
	return nil
}

// send issues the request and maps every failure to ErrUnavailable,
// ErrUnauthorized or *APIError. On success the caller owns resp.Body.
func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		_ = c.session.ClearToken()
		return nil, ErrUnauthorized
	}

	detail := "Request failed"
	var errBody api.ErrorResponse
	if data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); readErr == nil {
		if json.Unmarshal(data, &errBody) == nil && errBody.Detail != "" {
			detail = errBody.Detail
		}
	}
	return nil, &APIError{Status: resp.StatusCode, Detail: detail}
}
