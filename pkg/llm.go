package pkg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaRawResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

type ollamaApiCall struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   map[string]any  `json:"format,omitempty"`
	Options  map[string]any  `json:"options"`
}

// OllamaClient calls the /api/chat endpoint of an Ollama server with a JSON
// schema constraining the answer.
type OllamaClient struct {
	http   *resty.Client
	model  string
	schema map[string]any
}

func NewOllamaClient(host, model string, schema map[string]any, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		http: resty.New().
			SetBaseURL(strings.TrimRight(host, "/")).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		model:  model,
		schema: schema,
	}
}

// Generate returns the raw content of the model message.
func (slf *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	call := ollamaApiCall{
		Model:    slf.model,
		Messages: []ollamaMessage{{Role: "user", Content: prompt}},
		Stream:   false,
		Format:   slf.schema,
		Options: map[string]any{
			"temperature": 0,
		},
	}

	var raw ollamaRawResponse
	resp, err := slf.http.R().
		SetContext(ctx).
		SetBody(call).
		SetResult(&raw).
		Post("/api/chat")
	if err != nil {
		return "", fmt.Errorf("ollama call failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("ollama returned %s", resp.Status())
	}
	if !raw.Done {
		return "", fmt.Errorf("ollama call not done")
	}
	return raw.Message.Content, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig map[string]any  `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

// GeminiClient calls generateContent with a JSON response mime type.
type GeminiClient struct {
	http  *resty.Client
	model string
}

func NewGeminiClient(host, model, apiKey string, timeout time.Duration) *GeminiClient {
	if host == "" {
		host = "https://generativelanguage.googleapis.com"
	}
	return &GeminiClient{
		http: resty.New().
			SetBaseURL(strings.TrimRight(host, "/")).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetQueryParam("key", apiKey),
		model: model,
	}
}

func (slf *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: map[string]any{
			"responseMimeType": "application/json",
			"temperature":      0,
		},
	}

	var raw geminiResponse
	resp, err := slf.http.R().
		SetContext(ctx).
		SetPathParam("model", slf.model).
		SetBody(body).
		SetResult(&raw).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("gemini returned %s", resp.Status())
	}
	if len(raw.Candidates) == 0 || len(raw.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range raw.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}
