package tool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	contractx "github.com/pattarin/BankPilot-Conversational-Banking/agent/contract"
	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
)

const defaultInvokeTimeout = 15 * time.Second

// Tool is one executable capability. Execute runs at most once per
// ToolCall; errors it returns are captured by the gateway.
type Tool interface {
	Name() string
	Execute(ctx context.Context, params map[string]statex.EntityValue) (any, error)
}

// Gateway dispatches tool invocations through a name→tool table built
// once at startup. Every invocation produces a settled ToolCall; errors
// land on the call as status=error and are never propagated.
type Gateway struct {
	tools   map[string]Tool
	timeout time.Duration
	seq     atomic.Int64
	now     func() time.Time
}

var _ contractx.ToolGateway = (*Gateway)(nil)

func NewGateway(timeout time.Duration, tools ...Tool) (*Gateway, error) {
	if timeout <= 0 {
		timeout = defaultInvokeTimeout
	}
	table := make(map[string]Tool, len(tools))
	for _, t := range tools {
		if t == nil || t.Name() == "" {
			return nil, errors.New("tool with empty name")
		}
		if _, dup := table[t.Name()]; dup {
			return nil, fmt.Errorf("duplicate tool name %q", t.Name())
		}
		table[t.Name()] = t
	}
	return &Gateway{
		tools:   table,
		timeout: timeout,
		now:     time.Now,
	}, nil
}

// Invoke executes one named tool with a per-invoke timeout. No retry at
// this layer; retry policy, if any, belongs to the caller.
func (g *Gateway) Invoke(ctx context.Context, name string, params map[string]statex.EntityValue) statex.ToolCall {
	call := statex.NewToolCall(g.nextID(name), name, params, g.now())

	t, ok := g.tools[name]
	if !ok {
		_ = call.Fail("unknown_tool", fmt.Sprintf("tool %q is not registered", name), g.now())
		return *call
	}

	execCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := t.Execute(execCtx, params)
	if err != nil {
		_ = call.Fail(failureCode(err), err.Error(), g.now())
		return *call
	}
	_ = call.Complete(result, g.now())
	return *call
}

func (g *Gateway) nextID(name string) string {
	return fmt.Sprintf("%s#%d", name, g.seq.Add(1))
}

func failureCode(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, contractx.ErrRetrieval):
		return "retrieval_error"
	case errors.Is(err, contractx.ErrValidation):
		return "bad_params"
	default:
		return "execution_error"
	}
}
