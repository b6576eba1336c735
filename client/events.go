// Package client speaks the rank-predictor backend's protocol: a
// WebSocket stream of typed JSON events plus a small REST session
// API. Event decoding narrows on the type discriminator; unknown
// types surface as errors so the connection layer can log and skip
// them instead of silently ignoring malformed traffic.
package client

import (
	"encoding/json"
	"fmt"

	"github.com/sathvik-kandimala-2003/major-project/model"
)

// Event is a server-pushed message, one concrete type per "type"
// discriminator value.
type Event interface {
	eventType() string
}

// Welcome greets a fresh session.
type Welcome struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// Thinking is a transient progress line.
type Thinking struct {
	Step      string `json:"step"`
	Timestamp string `json:"timestamp"`
}

// Tool call statuses.
const (
	ToolStarted   = "started"
	ToolCompleted = "completed"
	ToolFailed    = "failed"
)

// ToolCall reports a backend tool invocation status change.
type ToolCall struct {
	ToolName   string         `json:"tool_name"`
	Parameters map[string]any `json:"parameters"`
	Status     string         `json:"status"`
}

// ResponseChunk carries one streamed piece of the assistant reply.
type ResponseChunk struct {
	Content string `json:"content"`
	IsFinal bool   `json:"is_final"`
}

// ResponseComplete finalizes the streamed reply. FullContent is
// authoritative over the accumulated chunks.
type ResponseComplete struct {
	MessageID   string `json:"message_id"`
	FullContent string `json:"full_content"`
}

// ErrorEvent surfaces a server-side failure. Details is only set
// when the backend runs in debug mode.
type ErrorEvent struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// History replaces the conversation wholesale when resuming.
type History struct {
	Messages []model.ChatMessage `json:"messages"`
}

func (Welcome) eventType() string          { return "welcome" }
func (Thinking) eventType() string         { return "thinking" }
func (ToolCall) eventType() string         { return "tool_call" }
func (ResponseChunk) eventType() string    { return "response_chunk" }
func (ResponseComplete) eventType() string { return "response_complete" }
func (ErrorEvent) eventType() string       { return "error" }
func (History) eventType() string          { return "history" }

// DecodeEvent parses a server frame into its concrete event type.
func DecodeEvent(data []byte) (Event, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	var ev Event
	switch probe.Type {
	case "welcome":
		ev = &Welcome{}
	case "thinking":
		ev = &Thinking{}
	case "tool_call":
		ev = &ToolCall{}
	case "response_chunk":
		ev = &ResponseChunk{}
	case "response_complete":
		ev = &ResponseComplete{}
	case "error":
		ev = &ErrorEvent{}
	case "history":
		ev = &History{}
	default:
		return nil, fmt.Errorf("unknown event type %q", probe.Type)
	}
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("decode %s event: %w", probe.Type, err)
	}
	return deref(ev), nil
}

// deref returns the value form so callers can type-switch without
// pointer cases.
func deref(ev Event) Event {
	switch v := ev.(type) {
	case *Welcome:
		return *v
	case *Thinking:
		return *v
	case *ToolCall:
		return *v
	case *ResponseChunk:
		return *v
	case *ResponseComplete:
		return *v
	case *ErrorEvent:
		return *v
	case *History:
		return *v
	}
	return ev
}

// outbound is the client-to-server frame shape.
type outbound struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}
