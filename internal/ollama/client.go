// Package ollama is a minimal client for the Ollama /api/generate endpoint,
// covering the two call shapes this service needs: a non-streaming JSON-mode
// completion and a streaming completion whose raw line-delimited body is
// handed back to the caller.
package ollama

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"resty.dev/v3"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "llama3.2"

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Format string `json:"format,omitempty"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Client talks to a single Ollama generate endpoint.
type Client struct {
	http    *resty.Client
	url     string
	model   string
	timeout time.Duration
}

// New creates a Client for the given generate URL and model. The timeout
// bounds non-streaming calls only; streaming calls stay open for as long as
// the model keeps producing output.
func New(url, model string, timeout time.Duration) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		http:    resty.New(),
		url:     url,
		model:   model,
		timeout: timeout,
	}
}

// Generate runs a non-streaming JSON-mode completion and returns the model's
// response text, which is expected to be a single JSON object.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(generateRequest{
			Model:  c.model,
			Prompt: prompt,
			Format: "json",
			Stream: false,
		}).
		SetResult(&body).
		Post(c.url)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return body.Response, nil
}

// GenerateStream runs a streaming completion and returns the raw response
// body. Ollama emits one JSON chunk per line; the caller forwards lines
// verbatim and owns closing the body.
func (c *Client) GenerateStream(ctx context.Context, prompt string) (io.ReadCloser, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept-Encoding", "identity").
		SetDoNotParseResponse(true).
		SetBody(generateRequest{
			Model:  c.model,
			Prompt: prompt,
			Stream: true,
		}).
		Post(c.url)
	if err != nil {
		return nil, err
	}
	if resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return nil, fmt.Errorf("ollama returned an empty response body")
	}
	if resp.IsError() {
		defer resp.RawResponse.Body.Close()
		payload, _ := io.ReadAll(resp.RawResponse.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode(), strings.TrimSpace(string(payload)))
	}
	return resp.RawResponse.Body, nil
}
