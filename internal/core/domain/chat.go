package domain

import "time"

// ChatRole is the discriminant of a ChatMessage.
type ChatRole string

// Chat roles.
const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of an assistant conversation.
// Role decides which payload is meaningful: user messages only carry
// Text, assistant messages also carry Matches and Source.
type ChatMessage struct {
	ID        string
	Role      ChatRole
	Text      string
	CreatedAt time.Time

	// Assistant-only payload.
	Matches []PublicMatch
	Source  AnswerSource
}

// UserMessage builds a user turn.
func UserMessage(id, text string) ChatMessage {
	return ChatMessage{ID: id, Role: ChatRoleUser, Text: text, CreatedAt: time.Now()}
}

// AssistantMessage builds an assistant turn from an answer.
func AssistantMessage(id string, answer Answer) ChatMessage {
	return ChatMessage{
		ID:        id,
		Role:      ChatRoleAssistant,
		Text:      answer.Text,
		CreatedAt: time.Now(),
		Matches:   answer.Matches,
		Source:    answer.Source,
	}
}

// IsAssistant reports whether the message carries an answer payload.
func (m ChatMessage) IsAssistant() bool {
	return m.Role == ChatRoleAssistant
}
