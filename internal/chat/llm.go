package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// ParsedIntent is the fixed schema the generative parser must emit. ID is a
// pointer because "update without an id" is meaningful: the router answers
// it with a prompt for the id rather than guessing.
type ParsedIntent struct {
	Action   string         `json:"action"`
	Target   string         `json:"target,omitempty"`
	ID       *int           `json:"id,omitempty"`
	Name     string         `json:"name,omitempty"`
	Fields   map[string]any `json:"fields,omitempty"`
	Response string         `json:"response,omitempty"`
}

// IntentParser is the optional generative parsing capability. Implementations
// must treat every failure as their own: the router skips the shortcut on any
// error and never surfaces parser problems to the user.
type IntentParser interface {
	Parse(ctx context.Context, text string) (*ParsedIntent, error)
}

const parserSystemPrompt = `You are a strict JSON-only parser for a hospital chatbot. When given a user message, output valid JSON with one of the following structures (no extra text):
1) {"action": "show", "target": "patient"|"staff", "id": <int>|null, "name": <string>|null }
2) {"action": "update", "target": "patient"|"staff", "id": <int>|null, "fields": {<field>: <value>, ...} }
3) {"action": "add", "target": "patient"|"staff", "fields": {<field>: <value>, ...} }
4) {"action": "text", "response": <string> }
Only output JSON. If the user asks for an update but no id is provided, try to extract a name and set id to null. Do not include any explanatory text.`

// OpenAIParser parses messages through an OpenAI-compatible chat completions
// endpoint.
type OpenAIParser struct {
	client *resty.Client
	model  string
	logger zerolog.Logger
}

func NewOpenAIParser(apiKey, baseURL, model string, logger zerolog.Logger) *OpenAIParser {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(15 * time.Second)
	return &OpenAIParser{client: client, model: model, logger: logger}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *OpenAIParser) Parse(ctx context.Context, text string) (*ParsedIntent, error) {
	req := completionRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: parserSystemPrompt},
			{Role: "user", Content: text},
		},
		MaxTokens:   300,
		Temperature: 0,
	}

	var out completionResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("call completion endpoint: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("completion endpoint returned %s", resp.Status())
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("completion response has no choices")
	}

	content := strings.TrimSpace(out.Choices[0].Message.Content)
	intent, err := decodeIntent(content)
	if err != nil {
		p.logger.Debug().Str("content", content).Msg("unparseable model output")
		return nil, err
	}
	return intent, nil
}

var jsonBlockRe = regexp.MustCompile(`\{[\s\S]*\}`)

// decodeIntent parses the model output as JSON, tolerating surrounding prose
// by falling back to the first {...} block.
func decodeIntent(content string) (*ParsedIntent, error) {
	var intent ParsedIntent
	if err := json.Unmarshal([]byte(content), &intent); err == nil {
		return &intent, nil
	}
	block := jsonBlockRe.FindString(content)
	if block == "" {
		return nil, fmt.Errorf("no JSON object in model output")
	}
	if err := json.Unmarshal([]byte(block), &intent); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	return &intent, nil
}
