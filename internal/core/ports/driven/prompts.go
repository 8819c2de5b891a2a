package driven

import "fmt"

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptExtraction asks for the structured fields of one document.
	// The template expects %s (file name), %s (MIME type) and %s (document text).
	PromptExtraction = "extraction"

	// PromptAnswerSystem is the system prompt of the document assistant.
	// This prompt has no format placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptAnswer wraps a question and its retrieved context.
	// The template expects %s (question) and %s (context).
	PromptAnswer = "answer"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	SetPromptStore(store PromptStore)
}

// FormatPrompt fills template with args, one %s per argument (%% is a
// literal percent). A template with any other verb or another number of
// placeholders is replaced by fallback and ok is false.
func FormatPrompt(template, fallback string, args ...any) (prompt string, ok bool) {
	if placeholders(template) != len(args) {
		return fmt.Sprintf(fallback, args...), false
	}
	return fmt.Sprintf(template, args...), true
}

// placeholders counts %s verbs, or returns -1 for any other verb.
func placeholders(template string) int {
	n := 0
	for i := 0; i < len(template); i++ {
		if template[i] != '%' {
			continue
		}
		if i+1 == len(template) {
			return -1
		}
		switch template[i+1] {
		case '%':
		case 's':
			n++
		default:
			return -1
		}
		i++
	}
	return n
}
