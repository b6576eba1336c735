package model

// SessionInfo is the session envelope returned by the REST API.
type SessionInfo struct {
	SessionID    string        `json:"session_id"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at,omitempty"`
	MessageCount int           `json:"message_count,omitempty"`
	Messages     []ChatMessage `json:"messages,omitempty"`
}

// ShortID returns a compact session id for titles: first4..last4.
func (s SessionInfo) ShortID() string {
	id := s.SessionID
	if len(id) <= 10 {
		return id
	}
	return id[:4] + ".." + id[len(id)-4:]
}
