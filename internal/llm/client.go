// Package llm is a minimal client for an OpenAI-compatible chat-completion
// endpoint.
//
// The contract this application consumes is deliberately narrow: send an
// ordered list of role-tagged messages, get back one completion with at
// least one choice. No retries, no streaming, no rate-limit handling — a
// failure here propagates and aborts the caller's request.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Message is one role-tagged entry in a chat-completion conversation.
// Role is one of "system", "user", or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Content is the sum of shapes a completion message's content can take:
// a plain text string, some structured value (tool calls, content parts),
// or absent. Text() applies the one mapping rule this application uses —
// anything that is not a text string is treated as empty text.
type Content struct {
	raw json.RawMessage
}

// UnmarshalJSON keeps the raw value so Text can decide its shape later.
func (c *Content) UnmarshalJSON(data []byte) error {
	c.raw = append(c.raw[:0], data...)
	return nil
}

// Text returns the content as a string if and only if the wire value was a
// JSON string. Structured or absent content maps to "". This is an explicit
// rule, not a coercion: callers that care can check IsText first.
func (c Content) Text() string {
	var s string
	if err := json.Unmarshal(c.raw, &s); err != nil {
		return ""
	}
	return s
}

// IsText reports whether the wire value was a JSON string.
func (c Content) IsText() bool {
	var s string
	return json.Unmarshal(c.raw, &s) == nil
}

// ChatCompletion is the part of the completion response we consume.
type ChatCompletion struct {
	Choices []Choice `json:"choices"`
}

// Choice is one candidate completion.
type Choice struct {
	Message struct {
		Role    string  `json:"role"`
		Content Content `json:"content"`
	} `json:"message"`
}

// FirstText extracts the text of the first choice, or "" when the response
// carries no choices or non-text content.
func (c *ChatCompletion) FirstText() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Content.Text()
}

// Client calls the chat-completions endpoint of one configured provider.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// New creates a Client. baseURL is the API root (e.g.
// "https://api.openai.com/v1"); a trailing slash is tolerated. The zero
// http.Client is used deliberately: no timeout is configured anywhere on
// the completion path, so a hung provider hangs the request.
func New(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{},
	}
}

// chatRequest is the wire shape of a completion call.
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// CreateChatCompletion sends the messages and returns the completion.
//
// Call shape mirrors the rest of this codebase's outbound HTTP: marshal a
// narrow request struct, POST, check the status, decode a narrow response
// struct. Non-2xx responses include a slice of the body in the error so the
// provider's own message surfaces in the logs.
func (c *Client) CreateChatCompletion(ctx context.Context, messages []Message) (*ChatCompletion, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("llm: at least one message is required")
	}

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("llm: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm: calling completion endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("llm: completion endpoint returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var completion ChatCompletion
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("llm: decoding completion response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("llm: completion response contained no choices")
	}

	return &completion, nil
}
