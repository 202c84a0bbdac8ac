// Package api wraps the commerce backend REST API with typed, stateless
// request builders. Adapters attach the bearer token, serialize bodies and
// normalize error shapes; retries, idempotency and timeouts beyond the
// client deadline are the caller's and server's responsibility.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// FieldError is a field-level validation message from the backend.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the normalized failure shape every adapter call returns for
// non-2xx responses.
type Error struct {
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: request failed with status %d", e.Status)
}

// IsUnauthorized reports whether err is a 401 from the backend. Callers use
// it as the global session-expiry signal.
func IsUnauthorized(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404, rendered by pages as a dedicated
// not-found state rather than a fatal error.
func IsNotFound(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

// Client is the shared request builder all typed adapters build on. It is
// immutable; WithToken returns a copy bound to a bearer token.
type Client struct {
	base  string
	http  *http.Client
	token string
}

func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithToken returns a shallow copy that sends Authorization: Bearer <token>.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// WithHTTPClient swaps the underlying transport. Tests inject httptest
// servers through this.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	cp := *c
	cp.http = h
	return &cp
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.doWith(ctx, method, path, nil, body, out)
}

func (c *Client) doWith(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: marshal body: %w", err)
		}
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.send(req, out)
}

// upload posts multipart form data. Content-Type is left to the multipart
// writer so the boundary is set correctly.
func (c *Client) upload(ctx context.Context, method, path string, fields map[string]string, fileField, fileName string, file io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("api: multipart field %s: %w", k, err)
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile(fileField, fileName)
		if err != nil {
			return err
		}
		if _, err := io.Copy(fw, file); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return c.send(req, out)
}

// raw fetches a response body verbatim (report downloads). The returned
// content type is whatever the backend produced.
func (c *Client) raw(ctx context.Context, path string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, "", err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", decodeError(resp.StatusCode, data)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (c *Client) send(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	ae := &Error{Status: status}
	// Best effort: the backend sends {message, errors[]} but proxies may not.
	_ = json.Unmarshal(data, ae)
	ae.Status = status
	if ae.Message == "" {
		ae.Message = http.StatusText(status)
	}
	return ae
}
