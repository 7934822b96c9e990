// Package session holds per-conversation mutable state and the stores
// that own it.
package session

import (
	"sort"
	"time"

	"persona-agent/content"

	"github.com/google/uuid"
)

// Role identifies who produced a history entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one history entry. UnitID and UsedRemote are only set on
// assistant entries.
type Message struct {
	ID         string    `json:"id"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	UnitID     string    `json:"unit_id,omitempty"`
	UsedRemote bool      `json:"used_remote,omitempty"`
}

// Session is the state of one conversation. History is append-only.
type Session struct {
	ID          string                  `json:"id"`
	CurrentUnit string                  `json:"current_unit,omitempty"`
	Visited     []string                `json:"visited"`
	History     []Message               `json:"history"`
	Flags       map[content.Flag]string `json:"flags"`
	Topics      map[string]bool         `json:"topics"`
	CreatedAt   time.Time               `json:"created_at"`
	LastActive  time.Time               `json:"last_active"`
}

// New returns an empty session.
func New(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         id,
		Visited:    []string{},
		History:    []Message{},
		Flags:      make(map[content.Flag]string),
		Topics:     make(map[string]bool),
		CreatedAt:  now,
		LastActive: now,
	}
}

// GenerateMessageID creates a unique message identifier using UUID v4.
func GenerateMessageID() string {
	return uuid.New().String()
}

// Clone returns a deep copy so callers can mutate it without touching
// the stored value.
func (s *Session) Clone() *Session {
	c := *s
	c.Visited = append([]string(nil), s.Visited...)
	c.History = append([]Message(nil), s.History...)
	c.Flags = make(map[content.Flag]string, len(s.Flags))
	for k, v := range s.Flags {
		c.Flags[k] = v
	}
	c.Topics = make(map[string]bool, len(s.Topics))
	for k, v := range s.Topics {
		c.Topics[k] = v
	}
	return &c
}

// AppendMessage adds a history entry stamped with the current time.
func (s *Session) AppendMessage(role Role, text, unitID string, usedRemote bool) Message {
	msg := Message{
		ID:         GenerateMessageID(),
		Role:       role,
		Content:    text,
		Timestamp:  time.Now().UTC(),
		UnitID:     unitID,
		UsedRemote: usedRemote,
	}
	s.History = append(s.History, msg)
	s.LastActive = msg.Timestamp
	return msg
}

// Visit records unitID as the current unit. Repeats are kept because
// recency scoring reads the tail of the list.
func (s *Session) Visit(unitID string) {
	s.Visited = append(s.Visited, unitID)
	s.CurrentUnit = unitID
}

// RecentlyVisited reports whether unitID is among the last window visits.
func (s *Session) RecentlyVisited(unitID string, window int) bool {
	start := len(s.Visited) - window
	if start < 0 {
		start = 0
	}
	for _, id := range s.Visited[start:] {
		if id == unitID {
			return true
		}
	}
	return false
}

// RecentAssistantReplies returns up to n of the latest assistant texts, newest last.
func (s *Session) RecentAssistantReplies(n int) []string {
	var out []string
	for i := len(s.History) - 1; i >= 0 && len(out) < n; i-- {
		if s.History[i].Role == RoleAssistant {
			out = append(out, s.History[i].Content)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// RecentHistory returns the last n history entries.
func (s *Session) RecentHistory(n int) []Message {
	if n <= 0 {
		return nil
	}
	start := len(s.History) - n
	if start < 0 {
		start = 0
	}
	return append([]Message(nil), s.History[start:]...)
}

// SetFlag sets a context flag.
func (s *Session) SetFlag(f content.Flag, value string) {
	if s.Flags == nil {
		s.Flags = make(map[content.Flag]string)
	}
	s.Flags[f] = value
}

// HasFlag reports whether a context flag is set.
func (s *Session) HasFlag(f content.Flag) bool {
	_, ok := s.Flags[f]
	return ok
}

// AddTopic marks a topic as discussed and reports whether it was new.
func (s *Session) AddTopic(id string) bool {
	if s.Topics == nil {
		s.Topics = make(map[string]bool)
	}
	if s.Topics[id] {
		return false
	}
	s.Topics[id] = true
	return true
}

// TopicIDs returns the discussed topic ids, sorted.
func (s *Session) TopicIDs() []string {
	ids := make([]string, 0, len(s.Topics))
	for id := range s.Topics {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
