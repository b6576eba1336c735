package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sathvik-kandimala-2003/major-project/client"
)

func TestBootstrapSession_ResumeFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/chat/sessions/") {
			http.Error(w, `{"detail":"Session not found"}`, http.StatusNotFound)
			return
		}
		t.Errorf("unexpected fallback request: %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	rest := client.NewREST(srv.URL)
	_, err := bootstrapSession(context.Background(), rest, "missing-id")
	if err == nil {
		t.Fatal("expected an error resuming an unknown session")
	}
	if !strings.Contains(err.Error(), "resume session missing-id") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBootstrapSession_CreatesWhenUnconfigured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/chat/sessions" {
			fmt.Fprint(w, `{"session_id":"fresh-1","created_at":"2026-08-30T00:00:00Z","message_count":1}`)
			return
		}
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	rest := client.NewREST(srv.URL)
	session, err := bootstrapSession(context.Background(), rest, "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if session.SessionID != "fresh-1" {
		t.Fatalf("unexpected session id: %s", session.SessionID)
	}
}
