// Package apiclient is a thin JSON-over-HTTP client for the firm's backend
// (contacts, projects, services). Every response body is an envelope.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/kientrucanlac/anlac/pkg/envelope"
	"github.com/kientrucanlac/anlac/pkg/version"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

// Option customises a Client.
type Option func(*Client)

// WithBaseTransport sets the RoundTripper under the interceptors, so
// per-visitor clients can share one connection pool.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

// WithLogger overrides the default component logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client talks to the backend on behalf of one Session.
type Client struct {
	baseURL    *url.URL
	userAgent  string
	base       http.RoundTripper
	httpClient *http.Client
	logger     *slog.Logger

	Contacts *Resource[Contact]
	Projects *ProjectResource
	Services *Resource[Service]
}

// New creates a Client bound to session. The session is consulted on every
// request for the bearer token and notified on HTTP 401.
func New(cfg Config, session Session, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base URL: %w", err)
	}
	if session == nil {
		session = Anonymous{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = version.Full()
	}

	c := &Client{
		baseURL:   base,
		userAgent: ua,
		logger:    slog.With("component", "apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = &http.Client{
		Timeout:   timeout,
		Transport: chain(c.base, session, c.logger),
	}

	c.Contacts = &Resource[Contact]{client: c, path: "/contacts"}
	c.Projects = &ProjectResource{Resource: Resource[Project]{client: c, path: "/projects"}}
	c.Services = &Resource[Service]{client: c, path: "/services"}
	return c, nil
}

// Get issues GET path and decodes the envelope.
func Get[T any](ctx context.Context, c *Client, path string) (*envelope.Envelope[T], error) {
	return doJSON[T](ctx, c, http.MethodGet, path, nil)
}

// Post issues POST path with a JSON body.
func Post[T any](ctx context.Context, c *Client, path string, body any) (*envelope.Envelope[T], error) {
	return doJSON[T](ctx, c, http.MethodPost, path, body)
}

// Put issues PUT path with a JSON body.
func Put[T any](ctx context.Context, c *Client, path string, body any) (*envelope.Envelope[T], error) {
	return doJSON[T](ctx, c, http.MethodPut, path, body)
}

// Delete issues DELETE path.
func Delete[T any](ctx context.Context, c *Client, path string) (*envelope.Envelope[T], error) {
	return doJSON[T](ctx, c, http.MethodDelete, path, nil)
}

// File is one part of a multipart upload.
type File struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Upload posts fields and files as multipart/form-data.
func Upload[T any](ctx context.Context, c *Client, path string, fields map[string]string, files ...File) (*envelope.Envelope[T], error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", k, err)
		}
	}
	for _, f := range files {
		if f.Content == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoContent, f.Filename)
		}
		part, err := mw.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, fmt.Errorf("create form file %s: %w", f.Filename, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("copy form file %s: %w", f.Filename, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}
	return do[T](ctx, c, http.MethodPost, path, &buf, mw.FormDataContentType())
}

func doJSON[T any](ctx context.Context, c *Client, method, path string, body any) (*envelope.Envelope[T], error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	return do[T](ctx, c, method, path, reader, "application/json")
}

func do[T any](ctx context.Context, c *Client, method, path string, body io.Reader, contentType string) (*envelope.Envelope[T], error) {
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respErr := &ResponseError{Method: method, Path: path, StatusCode: resp.StatusCode}
		var env envelope.Envelope[json.RawMessage]
		if json.Unmarshal(data, &env) == nil {
			respErr.Message = env.Message
		}
		c.logger.Debug("Backend error response", "method", method, "path", path, "status", resp.StatusCode)
		return nil, respErr
	}

	var env envelope.Envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode response from %s %s: %w", method, path, err)
	}
	return &env, nil
}

func (c *Client) resolve(path string) string {
	u := *c.baseURL
	rel, err := url.Parse(path)
	if err != nil {
		u.Path += "/" + strings.TrimLeft(path, "/")
		return u.String()
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(rel.Path, "/")
	u.RawQuery = rel.RawQuery
	return u.String()
}
