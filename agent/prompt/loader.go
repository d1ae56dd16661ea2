package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/classifier.txt
	classifierRaw string

	//go:embed template/responder.txt
	responderRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Classifier string
	Responder  string
}

// LoadPromptSet returns the embedded prompts, trimmed. Safe to call
// concurrently.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Classifier: strings.TrimSpace(classifierRaw),
		Responder:  strings.TrimSpace(responderRaw),
	}
}
