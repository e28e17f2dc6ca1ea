// Package llm provides the language model collaborator used for intent
// classification and reply phrasing. The client is an injected capability
// object; nothing in this package holds global state.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrUnavailable indicates the model returned no usable text.
var ErrUnavailable = errors.New("model unavailable")

// Model defines the text generation capability the engine consumes.
type Model interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Config holds Gemini client configuration.
type Config struct {
	APIKey  string
	Model   string // e.g. "gemini-2.0-flash-lite"
	Timeout time.Duration
}

// GeminiClient implements Model against the Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

// NewGeminiClient creates a new Gemini-backed model client.
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash-lite"
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   client.GenerativeModel(cfg.Model),
		timeout: cfg.Timeout,
	}, nil
}

// GenerateText sends a prompt and returns the concatenated candidate text.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrUnavailable
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", ErrUnavailable
	}
	return out, nil
}

// Close releases the underlying client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// StripCodeFence removes leading/trailing markdown fence markers from raw
// model output. Models wrap JSON in ```json fences despite instructions.
func StripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.Trim(t, "`")
	// Drop the language tag line left after trimming backticks.
	if idx := strings.IndexByte(t, '\n'); idx >= 0 {
		t = t[idx+1:]
	} else {
		t = strings.TrimPrefix(t, "json")
	}
	return strings.TrimSpace(t)
}

// MockModel is a deterministic Model for tests. Responses are matched by
// substring against the prompt, in insertion order; Default is returned when
// nothing matches and Err when set.
type MockModel struct {
	Err     error
	Default string
	rules   []mockRule
}

type mockRule struct {
	contains string
	reply    string
}

// NewMockModel creates an empty mock.
func NewMockModel() *MockModel {
	return &MockModel{}
}

// Reply registers a canned reply for prompts containing the given substring.
func (m *MockModel) Reply(promptContains, reply string) *MockModel {
	m.rules = append(m.rules, mockRule{contains: promptContains, reply: reply})
	return m
}

// GenerateText returns the first matching canned reply.
func (m *MockModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	for _, r := range m.rules {
		if strings.Contains(prompt, r.contains) {
			return r.reply, nil
		}
	}
	if m.Default != "" {
		return m.Default, nil
	}
	return "", ErrUnavailable
}

// Ensure implementations satisfy the interface.
var (
	_ Model = (*GeminiClient)(nil)
	_ Model = (*MockModel)(nil)
)
