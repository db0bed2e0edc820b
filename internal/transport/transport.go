// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/staranto/procurectl/internal/version"
)

// Caller is the single entry point every API module uses to reach the server.
type Caller interface {
	Call(ctx context.Context, service, path, method string, body any) ([]byte, error)
}

// Client resolves service names to base URLs, adds auth headers, encodes
// bodies and normalizes errors. Reads are retried on transient failures;
// writes are sent exactly once.
type Client struct {
	services map[string]string
	token    string
	retry    *retryablehttp.Client
	once     *http.Client
}

var _ Caller = (*Client)(nil)

type options struct {
	services   map[string]string
	token      string
	retryMax   int
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*options)

// WithService maps a service name to its base URL.
func WithService(name, baseURL string) Option {
	return func(o *options) { o.services[name] = strings.TrimRight(baseURL, "/") }
}

// WithServices maps several service names at once.
func WithServices(m map[string]string) Option {
	return func(o *options) {
		for name, u := range m {
			o.services[name] = strings.TrimRight(u, "/")
		}
	}
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

// WithRetryMax sets how many times a read is retried. Defaults to 2.
func WithRetryMax(n int) Option {
	return func(o *options) { o.retryMax = n }
}

// WithHTTPClient replaces the pooled cleanhttp client, mostly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// New constructs a Client.
func New(opts ...Option) *Client {
	o := options{services: make(map[string]string), retryMax: 2} //nolint:mnd
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = cleanhttp.DefaultPooledClient()
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = o.httpClient
	rc.RetryMax = o.retryMax
	rc.Logger = apexLogger{}
	// Keep the final response so its status and body can be normalized.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		services: o.services,
		token:    o.token,
		retry:    rc,
		once:     o.httpClient,
	}
}

// BaseURL returns the base URL of a service.
func (c *Client) BaseURL(service string) (string, error) {
	u, ok := c.services[service]
	if !ok {
		return "", fmt.Errorf("%s: %w", service, ErrUnknownService)
	}
	if u == "" {
		return "", fmt.Errorf("%s: %w", service, ErrNoBaseURL)
	}
	return u, nil
}

// Call sends method path to service. body, when non-nil, is JSON encoded. The
// raw response body is returned for 2xx responses; anything else is an
// *Error.
func (c *Client) Call(ctx context.Context, service, path, method string, body any) ([]byte, error) {
	base, err := c.BaseURL(service)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	url := base + path

	var payload []byte
	if body != nil {
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	log.Debugf("%s %s", method, url)

	var resp *http.Response
	if method == http.MethodGet || method == http.MethodHead {
		req, rerr := retryablehttp.NewRequestWithContext(ctx, method, url, payload)
		if rerr != nil {
			return nil, fmt.Errorf("failed to create request: %w", rerr)
		}
		c.decorate(req.Header, payload != nil)
		resp, err = c.retry.Do(req)
	} else {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, rerr := http.NewRequestWithContext(ctx, method, url, reader)
		if rerr != nil {
			return nil, fmt.Errorf("failed to create request: %w", rerr)
		}
		c.decorate(req.Header, payload != nil)
		resp, err = c.once.Do(req)
	}
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, &Error{Service: service, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, &Error{Service: service, Method: method, Path: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		te := &Error{
			Service: service,
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: extractMessage(resp.StatusCode, doc.Bytes()),
		}
		log.Debugf("%s %s: %d %s", method, url, te.Status, te.Message)
		return nil, te
	}

	return doc.Bytes(), nil
}

func (c *Client) decorate(h http.Header, hasBody bool) {
	h.Set("Accept", "application/json")
	h.Set("User-Agent", "procurectl/"+version.Version)
	if hasBody {
		h.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
}

// apexLogger adapts apex/log to retryablehttp.LeveledLogger.
type apexLogger struct{}

func fields(keysAndValues []interface{}) log.Fields {
	f := log.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}

func (apexLogger) Error(msg string, kv ...interface{}) { log.WithFields(fields(kv)).Error(msg) }
func (apexLogger) Info(msg string, kv ...interface{})  { log.WithFields(fields(kv)).Info(msg) }
func (apexLogger) Debug(msg string, kv ...interface{}) { log.WithFields(fields(kv)).Debug(msg) }
func (apexLogger) Warn(msg string, kv ...interface{})  { log.WithFields(fields(kv)).Warn(msg) }
