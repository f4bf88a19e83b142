package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/cloudbox/internal/client/models"
	"github.com/dmitrijs2005/cloudbox/internal/common"
	"github.com/dmitrijs2005/cloudbox/internal/logging"
)

// maxErrorBody caps how much of a failed response is kept as error detail.
const maxErrorBody = 64 << 10

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HTTPClient talks to the cloudbox REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithTimeout bounds every non-streaming request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// NewHTTPClient validates baseURL (e.g. "http://localhost:8080/api") and
// returns a client bound to it.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("api base url %q: missing host", baseURL)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL resolves an endpoint against the base URL.
func (c *HTTPClient) URL(endpoint string) string {
	return c.baseURL + endpoint
}

// HTTP exposes the transport so the upload path can share connections.
func (c *HTTPClient) HTTP() *http.Client {
	return c.http
}

func (c *HTTPClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// send performs the request and returns the response only for 2xx statuses.
// The caller owns the response body.
func (c *HTTPClient) send(ctx context.Context, method, endpoint string, body any, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(endpoint), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerValue(token))
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "api request failed", "method", method, "endpoint", endpoint, "error", err)
		return nil, networkError(err)
	}
	c.logger.Debug(ctx, "api request", "method", method, "endpoint", endpoint,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, statusError(resp.StatusCode, string(b))
	}

	return resp, nil
}

// Request sends body as JSON and returns the decoded JSON value when the
// response is declared as application/json, or the raw text otherwise.
func (c *HTTPClient) Request(ctx context.Context, endpoint, method string, body any, token string) (any, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.send(ctx, method, endpoint, body, token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeBody(resp)
}

func decodeBody(resp *http.Response) (any, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}

	if !isJSON(resp.Header.Get("Content-Type")) {
		return string(data), nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return v, nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

// Register creates an account. The response body is ignored.
func (c *HTTPClient) Register(ctx context.Context, username string, password []byte) error {
	_, err := c.Request(ctx, EndpointRegister, http.MethodPost,
		credentials{Username: username, Password: string(password)}, "")
	return err
}

// Login exchanges credentials for a bearer token.
func (c *HTTPClient) Login(ctx context.Context, username string, password []byte) (string, error) {
	v, err := c.Request(ctx, EndpointLogin, http.MethodPost,
		credentials{Username: username, Password: string(password)}, "")
	if err != nil {
		return "", err
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: login response is not a JSON object", ErrMalformedResponse)
	}
	token, _ := obj["token"].(string)
	if token == "" {
		return "", fmt.Errorf("%w: login response has no token", ErrMalformedResponse)
	}
	return token, nil
}

// ListFiles returns the user's files in server order.
func (c *HTTPClient) ListFiles(ctx context.Context, token string) (models.Collection, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.send(ctx, http.MethodGet, EndpointFiles, nil, token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	files := models.Collection{}
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return nil, fmt.Errorf("%w: decode file list: %v", ErrMalformedResponse, err)
	}
	return files, nil
}

// DeleteFile removes a file by id. The text confirmation is discarded.
func (c *HTTPClient) DeleteFile(ctx context.Context, id int64, token string) error {
	_, err := c.Request(ctx, fmt.Sprintf("%s/%d", EndpointFiles, id), http.MethodDelete, nil, token)
	return err
}

// Download opens the file body as a stream. size is -1 when unknown. The
// request is bounded only by ctx so large files are not cut off.
func (c *HTTPClient) Download(ctx context.Context, fileName, token string) (io.ReadCloser, int64, error) {
	resp, err := c.send(ctx, http.MethodGet, EndpointFiles+"/"+url.PathEscape(fileName), nil, token)
	if err != nil {
		return nil, 0, err
	}
	return resp.Body, resp.ContentLength, nil
}
