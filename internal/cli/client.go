package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is an HTTP client for the API
type Client struct {
	baseURL    string
	httpClient *http.Client
	trace      io.Writer
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetTrace makes the client log each request and response status to w
func (c *Client) SetTrace(w io.Writer) {
	c.trace = w
}

// APIError represents an error response from the API
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func (e *APIError) String() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Do performs an HTTP request and decodes a JSON response into result
func (c *Client) Do(method, path string, body, result any) error {
	respBody, err := c.do(method, path, body)
	if err != nil {
		return err
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// DoText performs an HTTP request whose success body is plain text
func (c *Client) DoText(method, path string, body any) (string, error) {
	respBody, err := c.do(method, path, body)
	if err != nil {
		return "", err
	}
	return string(respBody), nil
}

func (c *Client) do(method, path string, body any) ([]byte, error) {
	endpoint := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if c.trace != nil {
		_, _ = fmt.Fprintf(c.trace, "> %s %s\n", method, endpoint)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if c.trace != nil {
		_, _ = fmt.Fprintf(c.trace, "< %s (request %s)\n", resp.Status, resp.Header.Get("X-Request-ID"))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Check for error responses
	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return nil, fmt.Errorf("%s", errResp.Error.String())
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// Get performs a GET request
func (c *Client) Get(path string, result any) error {
	return c.Do(http.MethodGet, path, nil, result)
}

// Post performs a POST request
func (c *Client) Post(path string, body, result any) error {
	return c.Do(http.MethodPost, path, body, result)
}

// PostText performs a POST request with a plain text response
func (c *Client) PostText(path string, body any) (string, error) {
	return c.DoText(http.MethodPost, path, body)
}

// PatchText performs a PATCH request with a plain text response
func (c *Client) PatchText(path string, body any) (string, error) {
	return c.DoText(http.MethodPatch, path, body)
}

// segment escapes a user-supplied path segment
func segment(s string) string {
	return url.PathEscape(s)
}
