package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sathvik-kandimala-2003/major-project/client"
	"github.com/sathvik-kandimala-2003/major-project/config"
	"github.com/sathvik-kandimala-2003/major-project/model"
	"github.com/sathvik-kandimala-2003/major-project/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, logFile, err := setupLogger(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	rest := client.NewREST(cfg.ServerURL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	session, err := bootstrapSession(ctx, rest, cfg.SessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// --history: print the transcript as plain text (for scripting)
	if len(os.Args) > 1 && os.Args[1] == "--history" {
		for _, msg := range session.Messages {
			fmt.Printf("%-9s │ %s │ %s\n", msg.Role, msg.Timestamp, msg.Content)
		}
		return
	}

	conn, err := client.DialSession(cfg.ServerURL, session.SessionID, client.ConnOptions{
		MaxRetries: cfg.ReconnectMax,
		BaseDelay:  cfg.ReconnectDelay,
		Logger:     logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	logger.Info("connected", "session", session.SessionID, "server", cfg.ServerURL)

	m := tui.NewModel(cfg, rest, session, conn, logger)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrapSession resumes the configured session or creates a fresh
// one. A configured id that fails to resolve is an error, never a
// silent fallback to a new session.
func bootstrapSession(ctx context.Context, rest *client.REST, sessionID string) (model.SessionInfo, error) {
	if sessionID != "" {
		session, err := rest.GetSession(ctx, sessionID)
		if err != nil {
			return model.SessionInfo{}, fmt.Errorf("resume session %s: %w", sessionID, err)
		}
		return session, nil
	}
	session, err := rest.CreateSession(ctx)
	if err != nil {
		return model.SessionInfo{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// setupLogger writes structured logs to a file; the TUI owns the
// terminal.
func setupLogger(path string) (*slog.Logger, *os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, nil)), f, nil
}
