// Package gemini backs the Completer and Comprehender ports with the
// Google GenAI API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/moviops/movi/pkg/domain"
	"github.com/moviops/movi/pkg/ports"
)

// DefaultModel handles both completion and multimodal comprehension.
const DefaultModel = "gemini-2.0-flash"

// Client implements ports.Completer and ports.Comprehender.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures the Client.
type Option func(*Client)

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// New creates a GenAI-backed client.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	inner, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	c := &Client{client: inner, model: DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Complete sends one structured instruction and returns the raw text.
func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSONOutput {
		cfg.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.User, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI completion failed: %w", err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("GenAI returned an empty completion")
	}
	return text, nil
}

const comprehendSystemPrompt = `You convert operator input for a transit operations assistant into a structured reading.
The input may be text, a voice note, a screenshot or a short clip.
Respond with a single JSON object and nothing else:
{"gloss": "<what the operator wants, as one plain sentence>",
 "entities": {"trip": "...", "vehicle": "...", "stop": "...", "path": "...", "route": "..."},
 "action_hint": "<the verb of the request, e.g. remove, assign, status>",
 "confidence": "high|medium|low"}
Omit entity keys that do not apply. Use "low" confidence when the input is unclear or inaudible.`

// comprehension mirrors the JSON the model is asked for.
type comprehension struct {
	Gloss      string            `json:"gloss"`
	Entities   map[string]string `json:"entities"`
	ActionHint string            `json:"action_hint"`
	Confidence string            `json:"confidence"`
}

// Comprehend reads text plus optional media into a comprehension record.
// Callers treat an error as a degraded comprehension, not a failed turn.
func (c *Client) Comprehend(ctx context.Context, input ports.ComprehensionInput) (*domain.Comprehension, error) {
	parts := []*genai.Part{}
	if input.PageContext != "" {
		parts = append(parts, genai.NewPartFromText("The operator is currently looking at: "+input.PageContext))
	}
	if input.Text != "" {
		parts = append(parts, genai.NewPartFromText(input.Text))
	}
	for _, m := range input.Media {
		parts = append(parts, genai.NewPartFromBytes(m.Data, m.MIMEType))
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("nothing to comprehend")
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(0.1)),
		SystemInstruction: genai.NewContentFromText(comprehendSystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("GenAI comprehension failed: %w", err)
	}

	var parsed comprehension
	if err := json.Unmarshal([]byte(strings.TrimSpace(result.Text())), &parsed); err != nil {
		return nil, fmt.Errorf("unparseable comprehension output: %w", err)
	}

	rec := &domain.Comprehension{
		Modality:   modalityOf(input),
		Gloss:      parsed.Gloss,
		ActionHint: parsed.ActionHint,
		Confidence: confidenceOf(parsed.Confidence),
	}
	if len(parsed.Entities) > 0 {
		rec.Entities = make(map[string]any, len(parsed.Entities))
		for k, v := range parsed.Entities {
			rec.Entities[k] = v
		}
	}
	return rec, nil
}

func modalityOf(input ports.ComprehensionInput) domain.Modality {
	for _, m := range input.Media {
		switch {
		case strings.HasPrefix(m.MIMEType, "audio/"):
			return domain.ModalityAudio
		case strings.HasPrefix(m.MIMEType, "image/"):
			return domain.ModalityImage
		case strings.HasPrefix(m.MIMEType, "video/"):
			return domain.ModalityVideo
		}
	}
	return domain.ModalityText
}

func confidenceOf(s string) domain.Confidence {
	switch strings.ToLower(s) {
	case "high":
		return domain.ConfidenceHigh
	case "medium":
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
