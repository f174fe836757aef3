package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"modelcore/pkg/types"
)

// APIError is a non-2xx response from the daemon.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon returned %d", e.Status)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// Client talks to a running daemon over its HTTP surface.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient accepts "host:port", ":port" or a full URL.
func NewClient(addr string) *Client {
	return &Client{BaseURL: baseURL(addr), HTTP: &http.Client{Timeout: 2 * time.Minute}}
}

func baseURL(addr string) string {
	addr = strings.TrimRight(strings.TrimSpace(addr), "/")
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("reach daemon: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var er types.ErrorResponse
		if json.Unmarshal(raw, &er) == nil && er.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: er.Error}
		}
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	switch v := out.(type) {
	case nil:
		return nil
	case *string:
		*v = string(raw)
		return nil
	default:
		return json.Unmarshal(raw, out)
	}
}

func (c *Client) Load(ctx context.Context, name string, replace bool) (types.ModelSummary, error) {
	var m types.ModelSummary
	err := c.do(ctx, http.MethodPost, "/models", types.LoadRequest{Name: name, Replace: replace}, &m)
	return m, err
}

func (c *Client) Unload(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/models/"+escapeName(name), nil, nil)
}

func (c *Client) Infer(ctx context.Context, model, prompt string) (types.InferResponse, error) {
	var r types.InferResponse
	err := c.do(ctx, http.MethodPost, "/infer", types.InferRequest{Model: model, Prompt: prompt}, &r)
	return r, err
}

func (c *Client) Models(ctx context.Context) (types.ModelsResponse, error) {
	var r types.ModelsResponse
	err := c.do(ctx, http.MethodGet, "/models", nil, &r)
	return r, err
}

// Proc reads one of the /proc/ai text files.
func (c *Client) Proc(ctx context.Context, file string) (string, error) {
	var s string
	err := c.do(ctx, http.MethodGet, "/proc/ai/"+file, nil, &s)
	return s, err
}

// escapeName escapes each path segment but keeps '/' separators.
func escapeName(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
