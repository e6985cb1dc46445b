package classifier

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/skilllink/marketplace/internal/config"
	"github.com/skilllink/marketplace/internal/domain"
)

// GeminiGenerator calls the Gemini API with a structured response schema.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGemini returns nil without error when no API key is configured.
func NewGemini(ctx context.Context, cfg config.ClassifierConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiGenerator{client: client, model: cfg.Model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	})
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("no response from gemini")
	}
	return text, nil
}

func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"category":       {Type: genai.TypeString, Enum: append(domain.Categories(), domain.CategoryOther)},
			"reason":         {Type: genai.TypeString},
			"estimatedPrice": {Type: genai.TypeNumber},
		},
		Required: []string{"category", "reason", "estimatedPrice"},
	}
}

// NewFromConfig wires a Gemini-backed classifier, or an unavailable one when
// no API key is set.
func NewFromConfig(ctx context.Context, cfg config.ClassifierConfig, logger *zap.Logger) (*Classifier, error) {
	gemini, err := NewGemini(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if gemini == nil {
		return New(nil, logger, cfg.Timeout()), nil
	}
	return New(gemini, logger, cfg.Timeout()), nil
}
