package client

import (
	"testing"
	"time"
)

func TestBackoffDelay(t *testing.T) {
	base := 500 * time.Millisecond
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, time.Second},
		{3, 2 * time.Second},
		{4, 4 * time.Second},
	}
	for _, tc := range cases {
		if got := backoffDelay(base, tc.attempt); got != tc.want {
			t.Fatalf("attempt %d: expected %v, got %v", tc.attempt, tc.want, got)
		}
	}
}

func TestBackoffDelay_Capped(t *testing.T) {
	if got := backoffDelay(time.Second, 10); got != 30*time.Second {
		t.Fatalf("expected 30s cap, got %v", got)
	}
}

func TestChatSocketURL(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"http://localhost:8000", "ws://localhost:8000/chat/ws/s1"},
		{"https://api.example.com", "wss://api.example.com/chat/ws/s1"},
		{"http://localhost:8000/", "ws://localhost:8000/chat/ws/s1"},
	}
	for _, tc := range cases {
		got, err := chatSocketURL(tc.base, "s1")
		if err != nil {
			t.Fatalf("%s: unexpected err: %v", tc.base, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.base, tc.want, got)
		}
	}
}

func TestChatSocketURL_BadScheme(t *testing.T) {
	if _, err := chatSocketURL("ftp://host", "s1"); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}
