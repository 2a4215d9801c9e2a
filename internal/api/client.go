package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

const (
	apiPrefix      = "/api"
	requestTimeout = 10 * time.Second
	maxConcurrent  = 8
	userAgent      = "campusevents/1.0"
)

// Client talks to the events backend. Authentication rides on the
// HTTP-only session cookie the backend sets at login, so every request
// goes through the same cookie jar.
type Client struct {
	baseURL string
	http    *http.Client
	jar     *cookiejar.Jar
	log     *slog.Logger
}

// NewClient creates a client for the backend at serverURL
// (e.g. "http://localhost:5000"). Requests go to serverURL + "/api".
func NewClient(serverURL string, logger *slog.Logger) *Client {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL: strings.TrimRight(serverURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: requestTimeout,
		},
		jar: jar,
		log: logger,
	}
}

// BaseURL returns the server URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
	Method  string
	Path    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.Status)
}

// IsUnauthorized reports whether err is a 401 from the backend, which is
// what a request made before the session cookie is recognized returns.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// errorBody is the error envelope. Most routes fill "message",
// event creation fills "error".
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", dst)
}

func (c *Client) postJSON(ctx context.Context, path string, body, dst any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		r = bytes.NewReader(data)
	}
	return c.do(ctx, http.MethodPost, path, r, "application/json", dst)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil)
}

// do performs a request and decodes a JSON response into dst (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, dst any) error {
	url := c.baseURL + apiPrefix + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get("X-Request-ID"),
		"elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		apiErr := &Error{Status: resp.StatusCode, Method: method, Path: path}
		var eb errorBody
		if err := json.Unmarshal(data, &eb); err == nil {
			apiErr.Message = eb.Message
			if apiErr.Message == "" {
				apiErr.Message = eb.Error
			}
		}
		return apiErr
	}

	if dst == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}
