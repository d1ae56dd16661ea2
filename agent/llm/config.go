package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/pattarin/BankPilot-Conversational-Banking/agent/contract"
	openrouterx "github.com/pattarin/BankPilot-Conversational-Banking/pkg/openrouter"
)

// Role names the two model-backed collaborators.
type Role string

const (
	RoleClassifier Role = "classifier"
	RoleResponder  Role = "responder"
)

type Config struct {
	BaseURL             string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey              string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model               string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionTokens int           `envconfig:"MAX_COMPLETION_TOKENS" split_words:"true" default:"2000"`
	Temperature         float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout             time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL             string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName            string        `envconfig:"SITE_NAME" split_words:"true"`

	ClassifierModel       string  `envconfig:"CLASSIFIER_MODEL" split_words:"true"`
	ResponderModel        string  `envconfig:"RESPONDER_MODEL" split_words:"true"`
	ClassifierTemperature float32 `envconfig:"CLASSIFIER_TEMPERATURE" split_words:"true" default:"-1"`
	ResponderTemperature  float32 `envconfig:"RESPONDER_TEMPERATURE" split_words:"true" default:"-1"`

	// ConfidenceThreshold below which the classifier verdict forces a
	// clarification question.
	ConfidenceThreshold float64 `envconfig:"CONFIDENCE_THRESHOLD" split_words:"true" default:"0.6"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: model api key is required", contractx.ErrConfiguration)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrConfiguration)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidence threshold must be in [0,1]", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the per-role model configuration, falling back
// to the shared defaults when a role override is unset.
func (c Config) OpenRouterFor(role Role) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch role {
	case RoleClassifier:
		if v := strings.TrimSpace(c.ClassifierModel); v != "" {
			modelName = v
		}
		if c.ClassifierTemperature >= 0 {
			temp = c.ClassifierTemperature
		}
	case RoleResponder:
		if v := strings.TrimSpace(c.ResponderModel); v != "" {
			modelName = v
		}
		if c.ResponderTemperature >= 0 {
			temp = c.ResponderTemperature
		}
	}

	maxTokens := c.MaxCompletionTokens
	return openrouterx.Config{
		BaseURL:             strings.TrimSpace(c.BaseURL),
		APIKey:              strings.TrimSpace(c.APIKey),
		Model:               modelName,
		MaxCompletionTokens: &maxTokens,
		Temperature:         temp,
		Timeout:             c.Timeout,
		SiteURL:             strings.TrimSpace(c.SiteURL),
		SiteName:            strings.TrimSpace(c.SiteName),
	}
}
