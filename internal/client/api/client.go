package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"llmchess/internal/client/display"
)

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Body       ErrorResponse
}

func (e *StatusError) Error() string {
	if e.Body.Detail != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Body.Detail)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

type Client struct {
	BaseURL    string
	APIKey     string // sent as X-API-Key when set
	AdminToken string
	HTTPClient *http.Client
	Verbose    bool
	Out        io.Writer
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		Out: os.Stdout,
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

func (c *Client) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Client) doRequest(method, path string, body any, result any) error {
	var bodyReader io.Reader
	var bodyStr string
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonData)
		bodyStr = string(jsonData)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}
	if c.AdminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AdminToken)
	}

	c.printf("\n%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	if bodyStr != "" && c.Verbose {
		c.printf("%sRequest Body:%s\n%s\n", display.Cyan, display.Reset, display.Indent(bodyStr))
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.printf("%s[ERROR] %s%s\n", display.Red, err.Error(), display.Reset)
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	statusColor := display.Green
	if resp.StatusCode >= 400 {
		statusColor = display.Red
	}
	c.printf("%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)

	if c.Verbose && len(respBody) > 0 {
		c.printf("%sResponse Body:%s\n%s\n", display.Cyan, display.Reset, display.Indent(string(respBody)))
	}

	if resp.StatusCode >= 400 {
		se := &StatusError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, &se.Body); err != nil {
			se.Body.Detail = strings.TrimSpace(string(respBody))
		}
		return se
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			c.printf("%sRaw response: %s%s\n", display.Green, string(respBody), display.Reset)
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// API Methods

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest(http.MethodGet, "/health", nil, &resp)
	return &resp, err
}

func (c *Client) Move(fen, model string) (*MoveResponse, error) {
	var resp MoveResponse
	err := c.doRequest(http.MethodPost, "/move", &MoveRequest{FEN: fen, Model: model}, &resp)
	return &resp, err
}

func (c *Client) Models() ([]string, error) {
	var resp []string
	err := c.doRequest(http.MethodGet, "/config/models", nil, &resp)
	return resp, err
}

// SetAPIKey asks the server to validate and store key process-wide
func (c *Client) SetAPIKey(key string) (*StatusResponse, error) {
	var resp StatusResponse
	err := c.doRequest(http.MethodPost, "/config/api-key", &APIKeyRequest{APIKey: key}, &resp)
	return &resp, err
}

func (c *Client) ClearAPIKey() (*StatusResponse, error) {
	var resp StatusResponse
	err := c.doRequest(http.MethodDelete, "/config/api-key", nil, &resp)
	return &resp, err
}

// RawRequest performs a raw HTTP request for debugging purposes
func (c *Client) RawRequest(method, path string, body string) error {
	var bodyData any
	if body != "" {
		if err := json.Unmarshal([]byte(body), &bodyData); err != nil {
			bodyData = body
		}
	}
	var out any
	if err := c.doRequest(method, path, bodyData, &out); err != nil {
		return err
	}
	if out != nil && !c.Verbose {
		b, _ := json.Marshal(out)
		c.printf("%s\n", display.Indent(string(b)))
	}
	return nil
}
