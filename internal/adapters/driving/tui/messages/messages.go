// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/megafile/internal/core/domain"
)

// QuestionSubmitted is sent when the user submits a question.
type QuestionSubmitted struct {
	Request domain.SearchRequest
}

// AnswerCompleted carries the assistant answer back to the chat.
type AnswerCompleted struct {
	// MessageID is the transcript ID reserved for the reply.
	MessageID string
	Answer    *domain.Answer
	Err       error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the assistant transcript with its input.
	ViewChat ViewType = iota
	// ViewOperations lists recent operations.
	ViewOperations
	// ViewOperation shows one operation with its documents.
	ViewOperation
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewOperations:
		return "operations"
	case ViewOperation:
		return "operation"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// OperationsLoaded carries the list of recent operations.
type OperationsLoaded struct {
	Operations []domain.Operation
	Err        error
}

// OperationRequested asks the app to open one operation.
type OperationRequested struct {
	ID string
}

// OperationLoaded carries one operation with its documents.
type OperationLoaded struct {
	Operation *domain.Operation
	Err       error
}

// ReprocessQueued signals an extraction job was submitted.
type ReprocessQueued struct {
	Job *domain.ExtractionJob
	Err error
}

// StatusMessage is a transient note for the status bar.
type StatusMessage struct {
	Text string
}

// ChatScoped restricts the chat to one operation; an empty ID clears it.
type ChatScoped struct {
	OperationID string
}
