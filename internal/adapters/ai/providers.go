package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ollama/ollama/api"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

var errNoChoices = errors.New("no choices in response")

// ---- gemini ----

type geminiLLM struct {
	c     *genai.Client
	model string
}

var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"sentiment": {
			Type:        genai.TypeString,
			Enum:        []string{"Positive", "Negative", "Neutral"},
			Description: "The overall sentiment of the review.",
		},
		"intent": {
			Type:        genai.TypeString,
			Description: "A short phrase describing the primary topic or purpose of the review.",
		},
	},
	Required: []string{"sentiment", "intent"},
}

func newGemini(ctx context.Context, cfg Config) (*geminiLLM, error) {
	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &geminiLLM{c: c, model: model}, nil
}

func (g *geminiLLM) complete(ctx context.Context, prompt string, jsonOut bool) (string, error) {
	var gc *genai.GenerateContentConfig
	if jsonOut {
		gc = &genai.GenerateContentConfig{ResponseMIMEType: "application/json", ResponseSchema: analysisSchema}
	}
	resp, err := g.c.Models.GenerateContent(ctx, g.model, genai.Text(prompt), gc)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// ---- openai ----

type openaiLLM struct {
	c     *openai.Client
	model string
}

func newOpenAI(cfg Config) *openaiLLM {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &openaiLLM{c: openai.NewClientWithConfig(oc), model: model}
}

func (o *openaiLLM) complete(ctx context.Context, prompt string, jsonOut bool) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		Temperature: 0.3,
	}
	if jsonOut {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}
	resp, err := o.c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

// ---- anthropic ----

type anthropicLLM struct {
	c     anthropic.Client
	model string
}

func newAnthropic(cfg Config) *anthropicLLM {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &anthropicLLM{c: anthropic.NewClient(opts...), model: model}
}

func (a *anthropicLLM) complete(ctx context.Context, prompt string, _ bool) (string, error) {
	resp, err := a.c.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1024,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
	})
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}

// ---- ollama ----

type ollamaLLM struct {
	c     *api.Client
	model string
}

func newOllama(cfg Config, hc *http.Client) (*ollamaLLM, error) {
	base := cfg.BaseURL
	if base == "" {
		base = "http://localhost:11434"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	model := cfg.Model
	if model == "" {
		model = "llama3"
	}
	return &ollamaLLM{c: api.NewClient(u, hc), model: model}, nil
}

func (o *ollamaLLM) complete(ctx context.Context, prompt string, jsonOut bool) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    o.model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   &stream,
	}
	if jsonOut {
		req.Format = json.RawMessage(`"json"`)
	}
	var b strings.Builder
	err := o.c.Chat(ctx, req, func(resp api.ChatResponse) error {
		b.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
