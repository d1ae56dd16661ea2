package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/pattarin/BankPilot-Conversational-Banking/agent/contract"
	nodex "github.com/pattarin/BankPilot-Conversational-Banking/agent/nodes"
	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
	taskx "github.com/pattarin/BankPilot-Conversational-Banking/agent/task"
)

const defaultHistoryWindow = 12

// BusyReply is the boundary's "task in progress" response when a turn
// is rejected because another turn for the same conversation is in
// flight.
const BusyReply = "I'm still working on your previous message — one moment please."

type Config struct {
	// HistoryWindow bounds the log entries passed to model calls.
	HistoryWindow int
}

// Result is the outcome of one processed message.
type Result struct {
	Reply   string
	Context statex.ConversationContext
}

// Orchestrator drives the per-conversation dialogue state machine. Each
// conversation admits at most one in-flight turn; a concurrent second
// call for the same id fails with ErrConversationBusy (callers answer
// with BusyReply). This rejection policy is applied consistently — no
// queueing.
type Orchestrator struct {
	sessions *statex.Registry
	models   contractx.Registry
	tools    contractx.ToolGateway
	catalog  *taskx.Catalog

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	historyWindow int
	now           func() time.Time
}

func New(
	sessions *statex.Registry,
	models contractx.Registry,
	tools contractx.ToolGateway,
	catalog *taskx.Catalog,
	cfg Config,
) (*Orchestrator, error) {
	if sessions == nil {
		return nil, errors.New("session registry is required")
	}
	if models == nil {
		return nil, errors.New("model registry is required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}
	if catalog == nil {
		return nil, errors.New("task catalog is required")
	}

	historyWindow := cfg.HistoryWindow
	if historyWindow <= 0 {
		historyWindow = defaultHistoryWindow
	}

	o := &Orchestrator{
		sessions:      sessions,
		models:        models,
		tools:         tools,
		catalog:       catalog,
		historyWindow: historyWindow,
		now:           time.Now,
	}

	graphRunner, err := o.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// ProcessMessage performs exactly one phase-appropriate step for the
// conversation and returns the reply plus a context snapshot. Empty
// arguments fail with ErrValidation before the turn starts.
func (o *Orchestrator) ProcessMessage(ctx context.Context, conversationID, userID, message string) (Result, error) {
	conversationID = strings.TrimSpace(conversationID)
	userID = strings.TrimSpace(userID)
	message = strings.TrimSpace(message)
	if conversationID == "" {
		return Result{}, fmt.Errorf("%w: conversation id is empty", contractx.ErrValidation)
	}
	if userID == "" {
		return Result{}, fmt.Errorf("%w: user id is empty", contractx.ErrValidation)
	}
	if message == "" {
		return Result{}, fmt.Errorf("%w: message is empty", contractx.ErrValidation)
	}

	// A session observed between our GetOrCreate and Begin may have been
	// deleted concurrently; one re-resolve picks up a fresh context.
	for attempt := 0; attempt < 2; attempt++ {
		sess := o.sessions.GetOrCreate(conversationID, userID)
		if err := sess.Begin(); err != nil {
			if errors.Is(err, contractx.ErrConversationGone) {
				continue
			}
			return Result{}, err
		}

		out, err := o.runTurn(ctx, sess, message)
		sess.End()
		if err != nil {
			return Result{}, err
		}
		log.Debug().
			Str("conversation_id", conversationID).
			Str("phase", string(out.Snapshot.State.Phase)).
			Msg("turn completed")
		return Result{Reply: out.Reply, Context: out.Snapshot}, nil
	}
	return Result{}, contractx.ErrConversationGone
}

func (o *Orchestrator) runTurn(ctx context.Context, sess *statex.Session, message string) (nodex.GraphOutput, error) {
	return o.graphRunner.Invoke(ctx, nodex.GraphInput{
		Context: sess.Context(),
		Text:    message,
		Now:     o.now(),
	})
}

// ClearConversation removes a conversation. Idempotent: clearing an
// unknown id is a no-op. An in-flight turn finishes against the context
// it captured; its write-back is discarded with the session.
func (o *Orchestrator) ClearConversation(conversationID string) {
	o.sessions.Delete(conversationID)
}
