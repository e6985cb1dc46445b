package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skilllink/marketplace/internal/domain"
	apperrors "github.com/skilllink/marketplace/pkg/util/errorutil"
)

const (
	ReasonUnavailable = "AI service unavailable"
	ReasonFailed      = "Could not analyze request."
)

// Suggestion is the classifier's answer for a free-text request.
type Suggestion struct {
	Category       string `json:"category"`
	Reason         string `json:"reason"`
	EstimatedPrice int64  `json:"estimatedPrice"`
}

// Generator returns the model's raw JSON answer for prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Classifier maps free text to a service category. It never fails; outages
// degrade to an "Other" suggestion.
type Classifier struct {
	gen     Generator
	logger  *zap.Logger
	timeout time.Duration
}

// New builds a classifier. A nil generator means no API key is configured.
func New(gen Generator, logger *zap.Logger, timeout time.Duration) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{gen: gen, logger: logger, timeout: timeout}
}

// Available reports whether a model backend is configured.
func (c *Classifier) Available() bool {
	return c.gen != nil
}

// Analyze suggests a category, a short reason and an hourly price.
func (c *Classifier) Analyze(ctx context.Context, query string) Suggestion {
	if c.gen == nil {
		c.logger.Warn("classifier unavailable",
			zap.Error(apperrors.NewExternalServiceUnavailable("classifier", errors.New("no API key configured"))))
		return Suggestion{Category: domain.CategoryOther, Reason: ReasonUnavailable}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	raw, err := c.gen.Generate(ctx, Prompt(query))
	if err != nil {
		return c.failed(err)
	}
	suggestion, err := parse(raw)
	if err != nil {
		return c.failed(err)
	}
	return suggestion
}

func (c *Classifier) failed(err error) Suggestion {
	c.logger.Error("classifier call failed", zap.Error(apperrors.NewExternalServiceUnavailable("classifier", err)))
	return Suggestion{Category: domain.CategoryOther, Reason: ReasonFailed}
}

// Prompt renders the instruction sent to the model.
func Prompt(query string) string {
	return fmt.Sprintf(`User request: %q.
Available categories: %s.
Determine the most suitable category for this request.
Estimate a fair hourly price (number only) for this work.
Provide a very short reason.`, query, strings.Join(domain.Categories(), ", "))
}

type modelAnswer struct {
	Category       string  `json:"category"`
	Reason         string  `json:"reason"`
	EstimatedPrice float64 `json:"estimatedPrice"`
}

func parse(raw string) (Suggestion, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Suggestion{}, errors.New("empty model response")
	}
	var answer modelAnswer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		return Suggestion{}, fmt.Errorf("decode model response: %w", err)
	}

	category := answer.Category
	if !domain.IsCategory(category) {
		category = domain.CategoryOther
	}
	price := int64(math.Round(answer.EstimatedPrice))
	if price < 0 {
		price = 0
	}
	return Suggestion{Category: category, Reason: answer.Reason, EstimatedPrice: price}, nil
}
