// Package api wraps outbound HTTP calls to the Teen Tech platform.
// It attaches the bearer token from the session store, speaks JSON, binary,
// and multipart, and classifies every failure into exactly one error kind so
// the flows above never inspect transport details themselves.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"teentech/internal/logging"
)

// DefaultTimeout bounds a single request end to end.
const DefaultTimeout = 30 * time.Second

// SessionStore is the credential source consulted on every request.
// Clear is invoked when the server rejects the credential.
type SessionStore interface {
	Get() string
	Clear() error
}

// Part is one field of a multipart submission: either a plain string value or
// a file payload (FileName non-empty).
type Part struct {
	Value    string
	FileName string
	Data     []byte
}

// FilePart builds a binary part.
func FilePart(name string, data []byte) Part {
	return Part{FileName: name, Data: data}
}

// FieldPart builds a plain string part.
func FieldPart(value string) Part {
	return Part{Value: value}
}

// Client talks to the platform API.
type Client struct {
	baseURL string
	http    *http.Client
	session SessionStore
	log     *logging.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying transport, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a Client for the given base URL. store may not be nil; an
// unauthenticated client is simply a store holding no token.
func New(baseURL string, store SessionStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		session: store,
		log:     logging.Get(logging.CategoryAPI),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON performs an authenticated GET and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// PostJSON performs a POST with a JSON body, decoding the response into out
// when out is non-nil.
func (c *Client) PostJSON(ctx context.Context, path string, body, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

// GetBinary performs an authenticated GET and returns the raw response bytes,
// for file downloads.
func (c *Client) GetBinary(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &Error{Kind: KindUnexpected, Message: "could not build request", cause: err}
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindUnexpected, Message: "could not read response", cause: err}
	}
	return data, nil
}

// PostMultipart performs an authenticated multipart POST. Parts are a flat
// mapping of field name to string or file payload. The multipart boundary is
// whatever the writer picks; no content type is forced beyond that.
func (c *Client) PostMultipart(ctx context.Context, path string, parts map[string]Part, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, p := range parts {
		if p.FileName != "" {
			fw, err := w.CreateFormFile(name, p.FileName)
			if err != nil {
				return &Error{Kind: KindUnexpected, Message: "could not build upload body", cause: err}
			}
			if _, err := fw.Write(p.Data); err != nil {
				return &Error{Kind: KindUnexpected, Message: "could not build upload body", cause: err}
			}
			continue
		}
		if err := w.WriteField(name, p.Value); err != nil {
			return &Error{Kind: KindUnexpected, Message: "could not build upload body", cause: err}
		}
	}
	if err := w.Close(); err != nil {
		return &Error{Kind: KindUnexpected, Message: "could not build upload body", cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return &Error{Kind: KindUnexpected, Message: "could not build request", cause: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeInto(resp.Body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindUnexpected, Message: "could not encode request", cause: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Kind: KindUnexpected, Message: "could not build request", cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeInto(resp.Body, out)
}

// do sends the request, attaching credentials, and converts any failure into
// a classified *Error. A non-nil response is always 2xx.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	if token := c.session.Get(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("[req:%s] %s %s: no response: %v", reqID, req.Method, req.URL.Path, err)
		return nil, &Error{Kind: KindNoResponse, Message: "could not reach the server, check your connection", cause: err}
	}

	c.log.Info("[req:%s] %s %s -> %d (%v)", reqID, req.Method, req.URL.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		// Session teardown is the client's job so every page gets the same
		// expired-session behavior.
		if err := c.session.Clear(); err != nil {
			c.log.Error("[req:%s] clearing session after auth failure: %v", reqID, err)
		}
		return nil, &Error{
			Kind:    KindUnauthorized,
			Message: "session expired, log in again",
			Status:  resp.StatusCode,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := serverMessage(resp.Body)
		resp.Body.Close()
		return nil, &Error{Kind: KindServerRejected, Message: msg, Status: resp.StatusCode}
	}

	return resp, nil
}

// serverMessage pulls a human message out of an error body. The platform
// answers {"error": "..."}; some endpoints use {"message": "..."}.
func serverMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err == nil {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &payload) == nil {
			if payload.Error != "" {
				return payload.Error
			}
			if payload.Message != "" {
				return payload.Message
			}
		}
	}
	return "the server rejected the request"
}

func decodeInto(body io.Reader, out interface{}) error {
	if out == nil {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, body)
		return nil
	}
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return &Error{Kind: KindUnexpected, Message: "could not decode server response", cause: err}
	}
	return nil
}

// BaseURL returns the configured backend address, for display.
func (c *Client) BaseURL() string { return c.baseURL }

// String implements fmt.Stringer for debug output.
func (c *Client) String() string {
	return fmt.Sprintf("api.Client(%s)", c.baseURL)
}
