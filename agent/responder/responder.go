package responder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/pattarin/BankPilot-Conversational-Banking/agent/contract"
	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
)

type responderImpl struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.Responder = (*responderImpl)(nil)

// New builds the reply composer: a plain prompt -> model graph whose
// text output becomes the assistant reply.
func New(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (contractx.Responder, error) {
	runner, err := compileResponderGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile responder graph: %v", contractx.ErrModelCall, err)
	}
	return &responderImpl{runner: runner}, nil
}

func (r *responderImpl) Compose(ctx context.Context, req contractx.ComposeRequest) (string, error) {
	payload := map[string]any{
		"phase":         string(req.Phase),
		"user_message":  req.UserMessage,
		"task":          req.TaskType,
		"collected":     renderEntities(req.Collected),
		"next_question": req.NextQuestion,
		"tool_calls":    renderToolCalls(req.ToolCalls),
		"history":       renderHistory(req.History),
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal responder payload: %v", contractx.ErrValidation, err)
	}

	msg, err := r.runner.Invoke(ctx, map[string]any{"input": string(input)})
	if err != nil {
		return "", fmt.Errorf("%w: responder invoke: %v", contractx.ErrModelCall, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: responder returned an empty message", contractx.ErrSchemaViolation)
	}
	return strings.TrimSpace(msg.Content), nil
}

func compileResponderGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add responder prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add responder model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add responder edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add responder edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add responder edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("responder.compose_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile responder graph: %w", err)
	}
	return runner, nil
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

func renderToolCalls(calls []statex.ToolCall) []map[string]any {
	if len(calls) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(calls))
	for _, c := range calls {
		entry := map[string]any{
			"tool":   c.Tool,
			"status": string(c.Status),
		}
		if c.Result != nil {
			entry["result"] = c.Result
		}
		if c.Err != nil {
			entry["error"] = c.Err.Message
		}
		out = append(out, entry)
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
