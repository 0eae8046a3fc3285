package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// ErrUpstream marks a gateway call that completed with a non-2xx status.
var ErrUpstream = errors.New("upstream request failed")

type Response struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Err returns nil for 2xx and an ErrUpstream-wrapped error otherwise.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	if r == nil {
		return fmt.Errorf("%w: no response", ErrUpstream)
	}
	return &UpstreamError{Method: r.Method, URL: r.URL, StatusCode: r.StatusCode, Body: snippet(r.Body)}
}

func (r *Response) DecodeJSON(out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", r.Method, r.URL, err)
	}
	return nil
}

func (r *Response) Text() string {
	return string(r.Body)
}

type UpstreamError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gateway %s %s returned %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

const snippetBytes = 256

// snippet trims body to at most snippetBytes, cutting on a rune boundary.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= snippetBytes {
		return s
	}
	cut := snippetBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
