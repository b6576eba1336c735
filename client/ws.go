package client

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// State is the connection lifecycle state surfaced to the UI.
type State int

const (
	StateConnecting State = iota
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Status is a connection state change, with the final error once the
// retry ceiling is exhausted.
type Status struct {
	State   State
	Attempt int
	Err     error
}

// ConnOptions configure a chat connection.
type ConnOptions struct {
	MaxRetries int           // reconnect attempts before giving up
	BaseDelay  time.Duration // first reconnect delay, doubled per attempt
	Logger     *slog.Logger
}

// Conn is one WebSocket chat connection for a single session. The
// read loop pushes decoded events to Events; lifecycle changes go to
// Status. Both channels close when the connection is finished, either
// by Close or after the reconnect ceiling is exceeded.
type Conn struct {
	url     string
	log     *slog.Logger
	retries int
	delay   time.Duration

	events chan Event
	status chan Status

	mu     sync.Mutex
	ws     *websocket.Conn
	closed bool
	done   chan struct{}
}

// DialSession connects to the chat endpoint for sessionID. The
// initial dial is synchronous so a mount either gets a live
// connection or an error; reconnects after that are automatic.
func DialSession(baseURL, sessionID string, opts ConnOptions) (*Conn, error) {
	wsURL, err := chatSocketURL(baseURL, sessionID)
	if err != nil {
		return nil, err
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 5
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 500 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c := &Conn{
		url:     wsURL,
		log:     opts.Logger,
		retries: opts.MaxRetries,
		delay:   opts.BaseDelay,
		events:  make(chan Event, 32),
		status:  make(chan Status, 8),
		done:    make(chan struct{}),
	}

	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}
	c.ws = ws
	c.status <- Status{State: StateConnected}

	go c.run()
	return c, nil
}

// chatSocketURL turns the REST base URL into the websocket endpoint
// for a session: http(s)://host -> ws(s)://host/chat/ws/{id}.
func chatSocketURL(baseURL, sessionID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/chat/ws/" + sessionID
	return u.String(), nil
}

// Events delivers decoded server events in arrival order.
func (c *Conn) Events() <-chan Event { return c.events }

// Status delivers connection state changes.
func (c *Conn) Status() <-chan Status { return c.status }

// run reads frames until the connection dies, then reconnects with
// bounded exponential backoff. Exits when Close was called or the
// ceiling is exceeded.
func (c *Conn) run() {
	defer close(c.events)
	defer close(c.status)

	for {
		err := c.readLoop()
		if c.isClosed() {
			return
		}
		c.log.Warn("websocket read failed", "err", err)

		if !c.reconnect() {
			return
		}
	}
}

func (c *Conn) readLoop() error {
	for {
		c.mu.Lock()
		ws := c.ws
		c.mu.Unlock()
		if ws == nil {
			return fmt.Errorf("connection gone")
		}

		_, data, err := ws.ReadMessage()
		if err != nil {
			return err
		}
		ev, err := DecodeEvent(data)
		if err != nil {
			// Unknown or malformed frames are logged and skipped;
			// the stream stays up.
			c.log.Warn("skipping event", "err", err)
			continue
		}
		c.events <- ev
	}
}

// reconnect retries the dial with doubling delays. Returns false
// when the ceiling is exceeded or the conn was closed while waiting.
func (c *Conn) reconnect() bool {
	for attempt := 1; attempt <= c.retries; attempt++ {
		delay := backoffDelay(c.delay, attempt)
		c.status <- Status{State: StateConnecting, Attempt: attempt}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-c.done:
			timer.Stop()
			return false
		}

		ws, _, err := websocket.DefaultDialer.Dial(c.url, nil)
		if err != nil {
			c.log.Warn("reconnect failed", "attempt", attempt, "err", err)
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			ws.Close()
			return false
		}
		c.ws = ws
		c.mu.Unlock()

		c.status <- Status{State: StateConnected, Attempt: attempt}
		c.log.Info("reconnected", "attempt", attempt)
		return true
	}

	c.status <- Status{
		State: StateDisconnected,
		Err:   fmt.Errorf("gave up after %d reconnect attempts", c.retries),
	}
	return false
}

// backoffDelay is base doubled per attempt, capped at 30s.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	d := base << uint(attempt-1)
	if max := 30 * time.Second; d > max {
		return max
	}
	return d
}

// SendChat transmits a user message.
func (c *Conn) SendChat(text string) error {
	return c.write(outbound{Type: "chat_message", Message: text})
}

// RequestHistory asks the server to replay the session transcript.
func (c *Conn) RequestHistory() error {
	return c.write(outbound{Type: "get_history"})
}

func (c *Conn) write(msg outbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.ws == nil {
		return fmt.Errorf("connection closed")
	}
	if err := c.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	return nil
}

// Close tears down the socket. Any pending reconnect gives up on its
// next wakeup. Safe to call more than once.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	if c.ws != nil {
		c.ws.Close()
	}
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
