// Package domain contains the core types shared across the service.
package domain

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat message. Messages are immutable once created.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is the caller-owned conversation state for one request.
// The service never persists it beyond the request that carries it.
type Session struct {
	ID      string
	History []Message
}

// LastRole returns the role of the final message, or "" for an empty history.
func (s *Session) LastRole() Role {
	if len(s.History) == 0 {
		return ""
	}
	return s.History[len(s.History)-1].Role
}
