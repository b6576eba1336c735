package stream

import (
	"testing"

	"github.com/sathvik-kandimala-2003/major-project/client"
	"github.com/sathvik-kandimala-2003/major-project/model"
)

func TestWelcome_SeedsGreeting(t *testing.T) {
	r := New()
	r.Apply(client.Welcome{Message: "Hello! Tell me your rank.", SessionID: "s1"})

	msgs := r.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Role != model.RoleAssistant || msgs[0].Content != "Hello! Tell me your rank." {
		t.Fatalf("unexpected greeting: %+v", msgs[0])
	}
	if r.Phase() != PhaseIdle {
		t.Fatalf("expected idle, got %v", r.Phase())
	}
}

func TestWelcome_DoesNotClobberHistory(t *testing.T) {
	r := New()
	r.Apply(client.History{Messages: []model.ChatMessage{
		{MessageID: "m1", Role: model.RoleUser, Content: "my rank is 5000"},
		{MessageID: "m2", Role: model.RoleAssistant, Content: "noted"},
	}})
	r.Apply(client.Welcome{Message: "Hello!", SessionID: "s1"})

	if len(r.Messages()) != 2 {
		t.Fatalf("welcome replaced loaded history: %+v", r.Messages())
	}
}

func TestStreamingScenario(t *testing.T) {
	r := New()
	events := []client.Event{
		client.Welcome{Message: "Hi", SessionID: "s1"},
		client.Thinking{Step: "Analyzing rank", Timestamp: "t1"},
		client.Thinking{Step: "Querying cutoffs", Timestamp: "t2"},
		client.ResponseChunk{Content: "Here "},
		client.ResponseChunk{Content: "are your "},
		client.ResponseChunk{Content: "colleges."},
		client.ToolCall{ToolName: "get_colleges_by_rank", Status: client.ToolCompleted},
		client.ResponseComplete{MessageID: "srv-42", FullContent: "Here are your colleges, ranked."},
	}
	for _, ev := range events {
		r.Apply(ev)
	}

	var assistants []model.ChatMessage
	for _, m := range r.Messages() {
		if m.Role == model.RoleAssistant {
			assistants = append(assistants, m)
		}
	}
	// greeting plus exactly one streamed response
	if len(assistants) != 2 {
		t.Fatalf("expected 2 assistant messages, got %d", len(assistants))
	}
	final := assistants[1]
	if final.MessageID != "srv-42" {
		t.Fatalf("expected finalized id, got %q", final.MessageID)
	}
	// server full_content wins over the accumulated chunks
	if final.Content != "Here are your colleges, ranked." {
		t.Fatalf("unexpected content: %q", final.Content)
	}
	if len(r.Thinking()) != 0 {
		t.Fatalf("thinking list should be cleared, got %+v", r.Thinking())
	}
	if r.Phase() != PhaseIdle {
		t.Fatalf("expected idle, got %v", r.Phase())
	}
}

func TestResponseChunk_AppendsInPlace(t *testing.T) {
	r := New()
	r.Apply(client.ResponseChunk{Content: "part one"})
	r.Apply(client.ResponseChunk{Content: " part two"})

	msgs := r.Messages()
	if len(msgs) != 1 {
		t.Fatalf("chunks should mutate one provisional message, got %d", len(msgs))
	}
	if !msgs[0].Streaming() {
		t.Fatalf("expected streaming id, got %q", msgs[0].MessageID)
	}
	if msgs[0].Content != "part one part two" {
		t.Fatalf("unexpected content: %q", msgs[0].Content)
	}
	if r.Phase() != PhaseAwaiting {
		t.Fatalf("expected awaiting, got %v", r.Phase())
	}
}

func TestResponseChunk_AfterFinalizedStartsNewMessage(t *testing.T) {
	r := New()
	r.Apply(client.ResponseChunk{Content: "first"})
	r.Apply(client.ResponseComplete{MessageID: "m1", FullContent: "first"})
	r.Apply(client.ResponseChunk{Content: "second"})

	msgs := r.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if !msgs[1].Streaming() {
		t.Fatalf("new chunk should open a provisional message")
	}
}

func TestResponseComplete_WithoutChunks(t *testing.T) {
	r := New()
	r.Apply(client.ResponseComplete{MessageID: "m9", FullContent: "done"})

	msgs := r.Messages()
	if len(msgs) != 1 || msgs[0].MessageID != "m9" || msgs[0].Content != "done" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}

func TestToolCall_MarksLastStep(t *testing.T) {
	r := New()
	r.Apply(client.Thinking{Step: "one", Timestamp: "t1"})
	r.Apply(client.Thinking{Step: "two", Timestamp: "t2"})
	r.Apply(client.ToolCall{ToolName: "search", Status: client.ToolCompleted})

	steps := r.Thinking()
	if steps[0].Completed {
		t.Fatal("first step should be untouched")
	}
	if !steps[1].Completed {
		t.Fatal("last step should be completed")
	}
}

func TestToolCall_StartAppendsStep(t *testing.T) {
	r := New()
	r.Apply(client.ToolCall{ToolName: "get_cutoff_trends", Status: client.ToolStarted})
	r.Apply(client.ToolCall{ToolName: "get_cutoff_trends", Status: client.ToolFailed})

	steps := r.Thinking()
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	if !steps[0].Failed {
		t.Fatal("step should be marked failed")
	}
}

func TestError_ClearsThinkingAndUnblocks(t *testing.T) {
	r := New()
	r.SendUser("my rank is 5000")
	r.Apply(client.Thinking{Step: "working", Timestamp: "t1"})
	r.Apply(client.ErrorEvent{Message: "something went wrong"})

	if r.LastError() != "something went wrong" {
		t.Fatalf("unexpected error: %q", r.LastError())
	}
	if len(r.Thinking()) != 0 {
		t.Fatal("thinking should be cleared on error")
	}
	if !r.CanSend() {
		t.Fatal("user must be able to retry after an error")
	}

	r.ClearError()
	if r.LastError() != "" {
		t.Fatal("error should be dismissed")
	}
}

func TestHistory_ReplacesWholesale(t *testing.T) {
	r := New()
	r.Apply(client.Welcome{Message: "Hi", SessionID: "s1"})
	r.SendUser("hello")
	r.Apply(client.History{Messages: []model.ChatMessage{
		{MessageID: "h1", Role: model.RoleUser, Content: "old question"},
	}})

	msgs := r.Messages()
	if len(msgs) != 1 || msgs[0].MessageID != "h1" {
		t.Fatalf("history should replace the list, got %+v", msgs)
	}
}

func TestSendUser_OptimisticAppend(t *testing.T) {
	r := New()
	r.Apply(client.Welcome{Message: "Hi", SessionID: "s1"})
	msg := r.SendUser("what about ECE?")

	if msg.Role != model.RoleUser || msg.Content != "what about ECE?" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.MessageID == "" || msg.MessageID == model.StreamingID {
		t.Fatalf("user message needs a client id, got %q", msg.MessageID)
	}
	if r.Phase() != PhaseAwaiting {
		t.Fatalf("expected awaiting, got %v", r.Phase())
	}
	if r.CanSend() {
		t.Fatal("input should be disabled while awaiting")
	}
}

func TestApplyStatus(t *testing.T) {
	r := New()
	if r.Phase() != PhaseConnecting {
		t.Fatalf("fresh reducer should be connecting, got %v", r.Phase())
	}

	r.ApplyStatus(client.Status{State: client.StateConnected})
	if r.Phase() != PhaseIdle {
		t.Fatalf("expected idle, got %v", r.Phase())
	}

	r.ApplyStatus(client.Status{State: client.StateConnecting, Attempt: 1})
	if r.Phase() != PhaseConnecting {
		t.Fatalf("expected connecting, got %v", r.Phase())
	}
	if r.CanSend() {
		t.Fatal("input should be disabled while reconnecting")
	}

	r.ApplyStatus(client.Status{State: client.StateDisconnected})
	if r.Phase() != PhaseDisconnected {
		t.Fatalf("expected disconnected, got %v", r.Phase())
	}
}
