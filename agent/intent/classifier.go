package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/pattarin/BankPilot-Conversational-Banking/agent/contract"
	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
	taskx "github.com/pattarin/BankPilot-Conversational-Banking/agent/task"
)

type classifierImpl struct {
	runner    compose.Runnable[map[string]any, classifierLLMOutput]
	catalog   *taskx.Catalog
	threshold float64
}

type classifierLLMOutput struct {
	Intent                string         `json:"intent"`
	Confidence            float64        `json:"confidence"`
	Entities              map[string]any `json:"entities,omitempty"`
	ClarificationNeeded   bool           `json:"clarification_needed,omitempty"`
	ClarificationQuestion string         `json:"clarification_question,omitempty"`
}

var _ contractx.Classifier = (*classifierImpl)(nil)

// New builds a classifier backed by a structured-output model graph.
func New(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	catalog *taskx.Catalog,
	threshold float64,
) (contractx.Classifier, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: task catalog is required", contractx.ErrValidation)
	}
	runner, err := compileClassifierGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile classifier graph: %v", contractx.ErrModelCall, err)
	}
	return &classifierImpl{
		runner:    runner,
		catalog:   catalog,
		threshold: threshold,
	}, nil
}

func (c *classifierImpl) Classify(ctx context.Context, req contractx.ClassifyRequest) (contractx.IntentClassification, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return contractx.IntentClassification{}, fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"user_message": req.UserMessage,
		"active_task":  req.ActiveTask,
		"collected":    renderEntities(req.Collected),
		"history":      renderHistory(req.History),
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return contractx.IntentClassification{}, fmt.Errorf("%w: marshal classifier payload: %v", contractx.ErrValidation, err)
	}

	out, err := c.runner.Invoke(ctx, map[string]any{"input": string(input)})
	if err != nil {
		return contractx.IntentClassification{}, fmt.Errorf("%w: classifier invoke: %v", contractx.ErrModelCall, err)
	}

	return Normalize(out.Intent, out.Confidence, out.Entities, out.ClarificationNeeded, out.ClarificationQuestion, c.threshold, c.catalog), nil
}

// Normalize fixes the classifier post-processing contract: confidence
// clamped to [0,1], intents outside the catalog mapped to unknown, and
// clarification forced below the threshold or on model-flagged
// ambiguity. Pure so the contract is testable without a model.
func Normalize(
	intent string,
	confidence float64,
	entities map[string]any,
	flagged bool,
	question string,
	threshold float64,
	catalog *taskx.Catalog,
) contractx.IntentClassification {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	label := strings.TrimSpace(strings.ToLower(intent))
	if _, known := catalog.Resolve(label); !known {
		label = string(taskx.TypeUnknown)
	}

	needed := flagged || confidence < threshold || label == string(taskx.TypeUnknown)

	return contractx.IntentClassification{
		Intent:                label,
		Confidence:            confidence,
		Entities:              statex.EntitiesFromAny(entities),
		ClarificationNeeded:   needed,
		ClarificationQuestion: strings.TrimSpace(question),
	}
}

func renderEntities(in map[string]statex.EntityValue) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v.String()
	}
	return out
}

func renderHistory(msgs []statex.Message) []map[string]string {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]map[string]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, map[string]string{
			"role":    string(m.Role),
			"content": m.Content,
		})
	}
	return out
}
