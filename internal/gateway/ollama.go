package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"modelcore/internal/registry"
)

// DefaultOllamaURL is where a local Ollama daemon listens.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaCompute forwards prompts to an Ollama /api/generate endpoint.
type OllamaCompute struct {
	BaseURL string
	HTTP    *http.Client
}

// NewOllamaCompute returns a client for baseURL. A zero timeout means none.
func NewOllamaCompute(baseURL string, timeout time.Duration) *OllamaCompute {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	return &OllamaCompute{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Compute sends one non-streaming generate request for model.Name.
func (c *OllamaCompute) Compute(ctx context.Context, model registry.Record, input string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: model.Name, Prompt: input})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return "", fmt.Errorf("%w: generate status=%d %s", ErrUpstream, res.StatusCode, strings.TrimSpace(string(msg)))
	}
	var out generateResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrUpstream, out.Error)
	}
	return out.Response, nil
}
