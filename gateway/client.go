// Package gateway is the HTTP client for the Genesiss generation
// service: chat, code execution, graph/image generation, document
// composition and the memory index. Every call is a POST carrying the
// instance API key; the service itself is a black box that returns
// rendered text or a resource URL.
package gateway

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// timeout is the timeout for generation requests. Generation calls are
// slow; 120 seconds matches the upstream service limit.
var timeout = 120 * time.Second

// GenerationError reports a failed generation call. The turn aborts on
// the first generation failure; only the edit planner retries (once).
type GenerationError struct {
	Endpoint   string
	StatusCode int
	Cause      error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return "generation call " + e.Endpoint + " failed: " + e.Cause.Error()
	}
	return "generation call " + e.Endpoint + " failed"
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// Client talks to the Genesiss generation API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a generation API client. baseURL is the API root,
// e.g. "https://genesiss.tech/api".
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ChatParams carries a full chat-pipeline request.
type ChatParams struct {
	Message   string   `json:"message"`
	ChatID    string   `json:"chatID,omitempty"`
	BrainIDs  []string `json:"brainID,omitempty"`
	Images    []string `json:"images,omitempty"`    // base64 data URLs
	Documents []string `json:"documents,omitempty"` // base64 data URLs
	Internet  bool     `json:"internet"`
	Format    string   `json:"format"` // json, markdown or text
}

// ChatResult is the chat pipeline response.
type ChatResult struct {
	ChatID  string `json:"chatID"`
	Message string `json:"message"`
}

// Chat runs the full chat pipeline (with optional internet access,
// attachments and memory brains).
func (c *Client) Chat(ctx context.Context, params ChatParams) (*ChatResult, error) {
	payload := struct {
		AK string `json:"ak"`
		ChatParams
	}{AK: c.apiKey, ChatParams: params}

	result := &ChatResult{}
	if err := c.post(ctx, "/chat", payload, result); err != nil {
		return nil, err
	}
	return result, nil
}

// RanCode is one executed snippet of a code-agent run.
type RanCode struct {
	Code   string `json:"code"`
	Stdout string `json:"stdout"`
}

// CodeResult is the code execution agent response.
type CodeResult struct {
	RanCode    []RanCode `json:"ranCode"`
	Conclusion string    `json:"conclusion"`
}

// Code asks the service to write and execute code for the prompt.
func (c *Client) Code(ctx context.Context, prompt string) (*CodeResult, error) {
	result := &CodeResult{}
	if err := c.post(ctx, "/code", c.promptPayload(prompt), result); err != nil {
		return nil, err
	}
	return result, nil
}

// GraphGen generates a chart for the prompt and returns its URL.
func (c *Client) GraphGen(ctx context.Context, prompt string) (string, error) {
	result := struct {
		GraphURL string `json:"graphURL"`
	}{}
	if err := c.post(ctx, "/graphgen", c.promptPayload(prompt), &result); err != nil {
		return "", err
	}
	return result.GraphURL, nil
}

// ImageGen generates an image for the prompt and returns its URL.
func (c *Client) ImageGen(ctx context.Context, prompt string) (string, error) {
	result := struct {
		ImageURL string `json:"imageURL"`
	}{}
	if err := c.post(ctx, "/imagegen", c.promptPayload(prompt), &result); err != nil {
		return "", err
	}
	return result.ImageURL, nil
}

// DocuComp composes a document for the prompt and returns its URL.
func (c *Client) DocuComp(ctx context.Context, prompt string) (string, error) {
	result := struct {
		DocumentURL string `json:"documentURL"`
	}{}
	if err := c.post(ctx, "/docucomp", c.promptPayload(prompt), &result); err != nil {
		return "", err
	}
	return result.DocumentURL, nil
}

// MemoryHit is one scored result of a memory query.
type MemoryHit struct {
	Content string
	Score   float64
}

// MemoryAdd stores content in the memory index of brainID.
func (c *Client) MemoryAdd(ctx context.Context, brainID, content string) error {
	payload := struct {
		AK      string `json:"ak"`
		BrainID string `json:"brainID"`
		Task    string `json:"task"`
		Content string `json:"content"`
	}{AK: c.apiKey, BrainID: brainID, Task: "add", Content: content}

	return c.post(ctx, "/memory", payload, &struct{}{})
}

// MemoryQuery searches the memory index of brainID.
func (c *Client) MemoryQuery(ctx context.Context, brainID, query string) ([]MemoryHit, error) {
	payload := struct {
		AK      string `json:"ak"`
		BrainID string `json:"brainID"`
		Task    string `json:"task"`
		Content string `json:"content"`
	}{AK: c.apiKey, BrainID: brainID, Task: "query", Content: query}

	// The service returns one result group per sub-query.
	result := struct {
		Results [][]struct {
			Metadata struct {
				BrainID string `json:"brainID"`
				Content string `json:"content"`
			} `json:"metadata"`
			Score float64 `json:"score"`
		} `json:"results"`
	}{}
	if err := c.post(ctx, "/memory", payload, &result); err != nil {
		return nil, err
	}

	var hits []MemoryHit
	for _, group := range result.Results {
		for _, r := range group {
			hits = append(hits, MemoryHit{Content: r.Metadata.Content, Score: r.Score})
		}
	}
	return hits, nil
}

// SimpleChat runs a bare single-prompt completion.
func (c *Client) SimpleChat(ctx context.Context, prompt string) (string, error) {
	result := struct {
		Response string `json:"response"`
	}{}
	if err := c.post(ctx, "/schat", c.promptPayload(prompt), &result); err != nil {
		return "", err
	}
	return result.Response, nil
}

func (c *Client) promptPayload(prompt string) any {
	return struct {
		AK     string `json:"ak"`
		Prompt string `json:"prompt"`
	}{AK: c.apiKey, Prompt: prompt}
}

func (c *Client) post(ctx context.Context, endpoint string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &GenerationError{Endpoint: endpoint, Cause: errors.Wrap(err, "failed to marshal request")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return &GenerationError{Endpoint: endpoint, Cause: errors.Wrap(err, "failed to construct request")}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &GenerationError{Endpoint: endpoint, Cause: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return &GenerationError{Endpoint: endpoint, StatusCode: resp.StatusCode, Cause: errors.Wrap(err, "failed to read response")}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &GenerationError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Cause:      errors.Errorf("status code %d, response body: %s", resp.StatusCode, b),
		}
	}

	if err := json.Unmarshal(b, result); err != nil {
		return &GenerationError{Endpoint: endpoint, StatusCode: resp.StatusCode, Cause: errors.Wrap(err, "failed to unmarshal response")}
	}
	return nil
}
