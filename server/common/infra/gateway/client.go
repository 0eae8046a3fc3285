package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

// NoTimeout leaves outbound gateway calls bounded only by the caller's context.
const NoTimeout time.Duration = 0

// Assertion is a bearer credential that can re-sign itself.
type Assertion interface {
	Refresh() error
	Token() string
}

type callObserver interface {
	ObserveGatewayCall(method string, status int)
}

// MultipartFile is one part of a multipart/form-data upload.
type MultipartFile struct {
	Field       string
	Filename    string
	ContentType string
	Content     io.Reader
}

// Client issues authorized calls against the gateway. Any HTTP status comes back as a
// Response; the returned error covers only credential, request-building and transport failures.
type Client struct {
	http     *http.Client
	observer callObserver
}

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.http.Timeout = timeout }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithObserver(o callObserver) Option {
	return func(c *Client) { c.observer = o }
}

func NewClient(opts ...Option) *Client {
	c := &Client{http: &http.Client{Timeout: NoTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Get(ctx context.Context, creds Assertion, url string) (*Response, error) {
	return c.do(ctx, creds, http.MethodGet, url, nil, jsonHeaders())
}

func (c *Client) Delete(ctx context.Context, creds Assertion, url string) (*Response, error) {
	return c.do(ctx, creds, http.MethodDelete, url, nil, jsonHeaders())
}

func (c *Client) PostJSON(ctx context.Context, creds Assertion, url string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return c.do(ctx, creds, http.MethodPost, url, body, jsonHeaders())
}

// PostMultipart sends files as multipart/form-data. The outbound request carries
// Access-Control-Allow-Origin: * as the upload function's callers always have.
func (c *Client) PostMultipart(ctx context.Context, creds Assertion, url string, files ...MultipartFile) (*Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("create multipart part %s: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("write multipart part %s: %w", f.Field, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	headers := http.Header{}
	headers.Set("Access-Control-Allow-Origin", "*")
	headers.Set("Content-Type", mw.FormDataContentType())
	return c.do(ctx, creds, http.MethodPost, url, buf.Bytes(), headers)
}

func (c *Client) do(ctx context.Context, creds Assertion, method, url string, body []byte, headers http.Header) (*Response, error) {
	if creds == nil {
		return nil, fmt.Errorf("gateway %s %s: no credentials", method, url)
	}
	// Refresh unconditionally so the bearer token is always freshly signed.
	if err := creds.Refresh(); err != nil {
		return nil, fmt.Errorf("refresh credentials: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Authorization", "Bearer "+creds.Token())

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, 0)
		return nil, fmt.Errorf("gateway %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(method, 0)
		return nil, fmt.Errorf("read gateway response %s %s: %w", method, url, err)
	}
	c.observe(method, resp.StatusCode)
	return &Response{Method: method, URL: url, StatusCode: resp.StatusCode, Header: resp.Header, Body: payload}, nil
}

func (c *Client) observe(method string, status int) {
	if c.observer != nil {
		c.observer.ObserveGatewayCall(method, status)
	}
}

func jsonHeaders() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return h
}

// JoinURL appends path segments to base. Each segment is escaped as a single path
// element, so "/", "?", "#" and "%" inside an id never change the route. Empty segments
// are skipped; dot segments are percent-encoded so no hop can walk up the path.
func JoinURL(base string, segments ...string) string {
	out := strings.TrimRight(strings.TrimSpace(base), "/")
	for _, s := range segments {
		if s == "" {
			continue
		}
		out += "/" + escapeSegment(s)
	}
	return out
}

func escapeSegment(s string) string {
	switch s {
	case ".":
		return "%2E"
	case "..":
		return "%2E%2E"
	}
	return url.PathEscape(s)
}
