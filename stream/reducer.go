// Package stream folds the ordered server event stream into the
// visible conversation state. The reducer is synchronous and keeps
// no buffer beyond the last list element; correctness relies on the
// single WebSocket delivering events in server-send order.
package stream

import (
	"time"

	"github.com/google/uuid"

	"github.com/sathvik-kandimala-2003/major-project/client"
	"github.com/sathvik-kandimala-2003/major-project/model"
)

// Phase is the session's logical state as seen by the UI.
type Phase int

const (
	PhaseDisconnected Phase = iota
	PhaseConnecting
	PhaseIdle
	PhaseAwaiting
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseIdle:
		return "idle"
	case PhaseAwaiting:
		return "awaiting response"
	default:
		return "disconnected"
	}
}

// Reducer accumulates messages and thinking steps for one session.
type Reducer struct {
	messages      []model.ChatMessage
	thinking      []model.ThinkingStep
	phase         Phase
	lastError     string
	historyLoaded bool

	now func() time.Time
}

// New returns a reducer in the connecting phase.
func New() *Reducer {
	return &Reducer{phase: PhaseConnecting, now: time.Now}
}

// Messages returns the ordered conversation.
func (r *Reducer) Messages() []model.ChatMessage { return r.messages }

// Thinking returns the transient progress steps.
func (r *Reducer) Thinking() []model.ThinkingStep { return r.thinking }

// Phase returns the current session phase.
func (r *Reducer) Phase() Phase { return r.phase }

// LastError returns the most recent server error message, empty when
// none is pending.
func (r *Reducer) LastError() string { return r.lastError }

// ClearError dismisses the pending error banner.
func (r *Reducer) ClearError() { r.lastError = "" }

// CanSend reports whether the input surface should accept a message.
func (r *Reducer) CanSend() bool { return r.phase == PhaseIdle }

// SendUser appends the user's message optimistically with a
// client-assigned id and moves the session to awaiting-response.
// The caller still transmits the text over the socket.
func (r *Reducer) SendUser(text string) model.ChatMessage {
	msg := model.ChatMessage{
		MessageID: uuid.NewString(),
		Role:      model.RoleUser,
		Content:   text,
		Timestamp: r.now().Format(time.RFC3339),
	}
	r.messages = append(r.messages, msg)
	r.lastError = ""
	r.phase = PhaseAwaiting
	return msg
}

// Apply folds one server event into the state.
func (r *Reducer) Apply(ev client.Event) {
	switch ev := ev.(type) {
	case client.Welcome:
		// History, when present, is authoritative over the greeting.
		if !r.historyLoaded {
			r.messages = []model.ChatMessage{{
				MessageID: uuid.NewString(),
				Role:      model.RoleAssistant,
				Content:   ev.Message,
				Timestamp: r.now().Format(time.RFC3339),
			}}
		}
		r.phase = PhaseIdle

	case client.Thinking:
		r.thinking = append(r.thinking, model.ThinkingStep{
			Step:      ev.Step,
			Timestamp: ev.Timestamp,
		})

	case client.ToolCall:
		r.applyToolCall(ev)

	case client.ResponseChunk:
		last := r.lastMessage()
		if last != nil && last.Role == model.RoleAssistant && last.Streaming() {
			last.Content += ev.Content
		} else {
			r.messages = append(r.messages, model.ChatMessage{
				MessageID: model.StreamingID,
				Role:      model.RoleAssistant,
				Content:   ev.Content,
				Timestamp: r.now().Format(time.RFC3339),
			})
		}
		r.phase = PhaseAwaiting

	case client.ResponseComplete:
		last := r.lastMessage()
		if last != nil && last.Streaming() {
			last.MessageID = ev.MessageID
			last.Content = ev.FullContent
		} else {
			// Completion without any chunk still yields a message.
			r.messages = append(r.messages, model.ChatMessage{
				MessageID: ev.MessageID,
				Role:      model.RoleAssistant,
				Content:   ev.FullContent,
				Timestamp: r.now().Format(time.RFC3339),
			})
		}
		r.thinking = nil
		r.phase = PhaseIdle

	case client.ErrorEvent:
		r.lastError = ev.Message
		r.thinking = nil
		r.phase = PhaseIdle

	case client.History:
		r.messages = append([]model.ChatMessage(nil), ev.Messages...)
		r.historyLoaded = true
	}
}

// applyToolCall updates the most recently appended thinking step:
// positional, last-wins, no lookup by tool name. A start emits a new
// step so the user sees the tool run.
func (r *Reducer) applyToolCall(ev client.ToolCall) {
	switch ev.Status {
	case client.ToolStarted:
		r.thinking = append(r.thinking, model.ThinkingStep{
			Step:      "Running " + ev.ToolName,
			Timestamp: r.now().Format(time.RFC3339),
		})
	case client.ToolCompleted:
		if n := len(r.thinking); n > 0 {
			r.thinking[n-1].Completed = true
		}
	case client.ToolFailed:
		if n := len(r.thinking); n > 0 {
			r.thinking[n-1].Failed = true
		}
	}
}

// ApplyStatus folds a connection state change into the phase.
func (r *Reducer) ApplyStatus(st client.Status) {
	switch st.State {
	case client.StateConnecting:
		r.phase = PhaseConnecting
	case client.StateConnected:
		r.phase = PhaseIdle
	case client.StateDisconnected:
		r.phase = PhaseDisconnected
		if st.Err != nil {
			r.lastError = st.Err.Error()
		}
	}
}

func (r *Reducer) lastMessage() *model.ChatMessage {
	if len(r.messages) == 0 {
		return nil
	}
	return &r.messages[len(r.messages)-1]
}
