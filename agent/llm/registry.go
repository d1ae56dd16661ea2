package llm

import (
	"context"
	"fmt"

	contractx "github.com/pattarin/BankPilot-Conversational-Banking/agent/contract"
	intentx "github.com/pattarin/BankPilot-Conversational-Banking/agent/intent"
	promptx "github.com/pattarin/BankPilot-Conversational-Banking/agent/prompt"
	responderx "github.com/pattarin/BankPilot-Conversational-Banking/agent/responder"
	taskx "github.com/pattarin/BankPilot-Conversational-Banking/agent/task"
)

type registryImpl struct {
	classifier contractx.Classifier
	responder  contractx.Responder
}

func (r *registryImpl) Classifier() contractx.Classifier {
	return r.classifier
}

func (r *registryImpl) Responder() contractx.Responder {
	return r.responder
}

// NewRegistry builds the model-backed collaborators. A missing
// credential fails here as ErrConfiguration, before any turn runs.
func NewRegistry(ctx context.Context, cfg Config, catalog *taskx.Catalog) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()

	classifierCfg := cfg.OpenRouterFor(RoleClassifier)
	classifierModel, err := classifierCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("create classifier model: %w", err)
	}
	responderCfg := cfg.OpenRouterFor(RoleResponder)
	responderModel, err := responderCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("create responder model: %w", err)
	}

	classifier, err := intentx.New(ctx, classifierModel, prompts.Classifier, catalog, cfg.ConfidenceThreshold)
	if err != nil {
		return nil, err
	}
	responder, err := responderx.New(ctx, responderModel, prompts.Responder)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		classifier: classifier,
		responder:  responder,
	}, nil
}
