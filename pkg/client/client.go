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

	"go.uber.org/zap"

	v1 "github.com/kubev2v/task-scheduler/api/v1"
	serviceErrs "github.com/kubev2v/task-scheduler/pkg/errors"
)

const (
	apiV1PoolsPath      = "/api/v1/pools"
	apiV1EfficiencyPath = "/api/v1/efficiency"
	apiV1HistoryPath    = "/api/v1/history"
	apiV1RecorderPath   = "/api/v1/recorder"
)

// APIError is returned for every non 2xx response. It unwraps to the typed
// error of pkg/errors when the status maps to one.
type APIError struct {
	StatusCode int
	Message    string
	err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.err
}

// StatusCode returns the HTTP status carried by err, 0 when err is not an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// NewClient creates a client for the scheduler API at baseURL. A non empty
// jwt is sent as bearer token.
func NewClient(baseURL string, jwt string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      jwt,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of the client sending jwt.
func (c *Client) WithToken(jwt string) *Client {
	cp := *c
	cp.token = jwt
	return &cp
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListPools calls GET /api/v1/pools
func (c *Client) ListPools(ctx context.Context) (*v1.PoolList, error) {
	var out v1.PoolList
	return &out, c.do(ctx, http.MethodGet, apiV1PoolsPath, "", nil, &out)
}

// GetPool calls GET /api/v1/pools/{name}
func (c *Client) GetPool(ctx context.Context, name string) (*v1.Pool, error) {
	var out v1.Pool
	return &out, c.do(ctx, http.MethodGet, poolPath(name), name, nil, &out)
}

// CreatePool calls POST /api/v1/pools. An empty ordering keeps the server default.
func (c *Client) CreatePool(ctx context.Context, name string, workers int, ordering v1.PoolOrdering) (*v1.Pool, error) {
	body := v1.CreatePoolRequest{Name: name, Workers: &workers}
	if ordering != "" {
		body.Ordering = &ordering
	}
	var out v1.Pool
	return &out, c.do(ctx, http.MethodPost, apiV1PoolsPath, name, body, &out)
}

// ResizePool calls PUT /api/v1/pools/{name}/size
func (c *Client) ResizePool(ctx context.Context, name string, workers int) (*v1.Pool, error) {
	var out v1.Pool
	return &out, c.do(ctx, http.MethodPut, poolPath(name)+"/size", name, v1.ResizePoolRequest{Workers: &workers}, &out)
}

func (c *Client) PausePool(ctx context.Context, name string) (*v1.Pool, error) {
	var out v1.Pool
	return &out, c.do(ctx, http.MethodPost, poolPath(name)+"/pause", name, nil, &out)
}

func (c *Client) ResumePool(ctx context.Context, name string) (*v1.Pool, error) {
	var out v1.Pool
	return &out, c.do(ctx, http.MethodPost, poolPath(name)+"/resume", name, nil, &out)
}

func (c *Client) DeletePool(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, poolPath(name), name, nil, nil)
}

func (c *Client) Efficiency(ctx context.Context) (*v1.Efficiency, error) {
	var out v1.Efficiency
	return &out, c.do(ctx, http.MethodGet, apiV1EfficiencyPath, "", nil, &out)
}

// History calls GET /api/v1/history, optionally filtered to pools.
func (c *Client) History(ctx context.Context, pools ...string) (*v1.HistoryListResponse, error) {
	q := url.Values{}
	for _, p := range pools {
		q.Add("pool", p)
	}
	path := apiV1HistoryPath
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out v1.HistoryListResponse
	return &out, c.do(ctx, http.MethodGet, path, "", nil, &out)
}

func (c *Client) RecorderStatus(ctx context.Context) (*v1.RecorderStatus, error) {
	var out v1.RecorderStatus
	return &out, c.do(ctx, http.MethodGet, apiV1RecorderPath, "", nil, &out)
}

// do sends the request and decodes a 2xx body into out. pool names the
// addressed pool so 404 and 409 map to typed errors.
func (c *Client) do(ctx context.Context, method, path, pool string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	zap.S().Named("client").Debugw("request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach scheduler: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr v1.Error
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error, err: typedError(resp.StatusCode, pool)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func typedError(status int, pool string) error {
	switch {
	case status == http.StatusUnauthorized:
		return serviceErrs.NewUnauthorizedError()
	case status == http.StatusNotFound && pool != "":
		return serviceErrs.NewPoolNotFoundError(pool)
	case status == http.StatusConflict && pool != "":
		return serviceErrs.NewPoolExistsError(pool)
	case status == http.StatusServiceUnavailable:
		return serviceErrs.NewSchedulerClosedError()
	default:
		return nil
	}
}

func poolPath(name string) string {
	return apiV1PoolsPath + "/" + url.PathEscape(name)
}
