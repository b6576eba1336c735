package tui

import (
	"io"
	"log/slog"
	"testing"

	"github.com/sathvik-kandimala-2003/major-project/client"
	"github.com/sathvik-kandimala-2003/major-project/config"
	"github.com/sathvik-kandimala-2003/major-project/model"
)

func testModel(messages []model.ChatMessage) Model {
	session := model.SessionInfo{SessionID: "sess-1", Messages: messages}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewModel(&config.Config{}, nil, session, nil, log)
}

func TestSyncHistoryCmd_FiresOnEveryConnect(t *testing.T) {
	m := testModel(nil)

	tests := []struct {
		name string
		st   client.Status
		want bool
	}{
		{"initial connect", client.Status{State: client.StateConnected}, true},
		{"reconnect", client.Status{State: client.StateConnected, Attempt: 2}, true},
		{"connecting", client.Status{State: client.StateConnecting, Attempt: 1}, false},
		{"disconnected", client.Status{State: client.StateDisconnected}, false},
	}
	for _, tt := range tests {
		got := m.syncHistoryCmd(tt.st) != nil
		if got != tt.want {
			t.Errorf("%s: history sync = %v, want %v", tt.name, got, tt.want)
		}
	}
}

const tableMessage = "Here are your options:\n" +
	"## Top Colleges\n" +
	"| College | Branch | Cutoff Rank |\n" +
	"|---|---|---|\n" +
	"| RVCE | CSE | 8,603 |\n" +
	"| BMSCE | CSE | 290 |\n" +
	"| MSRIT | ECE | 462 |"

func TestRebuildTranscript_KeepsTableState(t *testing.T) {
	m := testModel([]model.ChatMessage{{
		MessageID: "msg-1",
		Role:      model.RoleAssistant,
		Content:   tableMessage,
		Timestamp: "2026-08-30T10:00:00Z",
	}})
	m.rebuildTranscript()

	if len(m.tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(m.tables))
	}
	v := m.tables[0].view
	v.SortBy("cutoff_rank")
	v.SetQuery("cse")

	// a streaming chunk arrives while the table overlay is open
	m.red.Apply(client.ResponseChunk{Content: "Let me also check"})
	m.rebuildTranscript()

	if len(m.tables) != 1 {
		t.Fatalf("expected 1 table after rebuild, got %d", len(m.tables))
	}
	if m.tables[0].view != v {
		t.Fatal("rebuild replaced the view for an unchanged table")
	}
	field, asc := m.tables[0].view.SortState()
	if field != "cutoff_rank" || !asc {
		t.Fatalf("sort state lost: field=%q asc=%v", field, asc)
	}
	if got := m.tables[0].view.Query(); got != "cse" {
		t.Fatalf("query lost: %q", got)
	}
}

func TestRebuildTranscript_ChangedTableGetsFreshView(t *testing.T) {
	m := testModel([]model.ChatMessage{{
		MessageID: "msg-1",
		Role:      model.RoleAssistant,
		Content:   tableMessage,
		Timestamp: "2026-08-30T10:00:00Z",
	}})
	m.rebuildTranscript()
	v := m.tables[0].view
	v.SortBy("cutoff_rank")

	// a history replay rewrites the same message with different rows
	m.red.Apply(client.History{Messages: []model.ChatMessage{{
		MessageID: "msg-1",
		Role:      model.RoleAssistant,
		Content:   "## Top Colleges\n| College | Cutoff Rank |\n|---|---|\n| PESU | 1,200 |",
		Timestamp: "2026-08-30T10:00:00Z",
	}}})
	m.rebuildTranscript()

	if len(m.tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(m.tables))
	}
	if m.tables[0].view == v {
		t.Fatal("rebuild reused a view whose table content changed")
	}
	if field, _ := m.tables[0].view.SortState(); field != "" {
		t.Fatalf("fresh view should start unsorted, got field=%q", field)
	}
}
