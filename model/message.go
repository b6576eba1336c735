package model

// Role values used by the backend. "thinking" appears only in
// persisted history, never as a live transcript entry.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleThinking  = "thinking"
)

// StreamingID marks an assistant message that is still receiving
// chunks. It is replaced with the server id on response_complete.
const StreamingID = "streaming"

// ChatMessage is a single message in a conversation.
type ChatMessage struct {
	MessageID string         `json:"message_id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp string         `json:"timestamp"` // ISO-8601, as sent by the server
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Streaming reports whether the message is still being assembled
// from response chunks.
func (m ChatMessage) Streaming() bool {
	return m.MessageID == StreamingID
}

// ThinkingStep is a transient status line shown while the server
// works on a response. The whole list is cleared on completion or
// error.
type ThinkingStep struct {
	Step      string
	Timestamp string
	Completed bool
	Failed    bool
}
