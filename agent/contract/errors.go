package contract

import (
	"errors"
	"fmt"

	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrConfiguration   = errors.New("configuration missing")
	ErrModelCall       = errors.New("model call failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrToolExecution   = errors.New("tool execution failed")

	// Session admission errors originate in the state registry; they
	// are re-exported so boundary callers only depend on this package.
	ErrConversationBusy = statex.ErrConversationBusy
	ErrConversationGone = statex.ErrConversationGone
)

// ErrRetrieval is a variant of ErrToolExecution:
// errors.Is(ErrRetrieval, ErrToolExecution) holds.
var ErrRetrieval = fmt.Errorf("%w: retrieval backend", ErrToolExecution)
