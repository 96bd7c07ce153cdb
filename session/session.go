// Package session provides in-memory chat sessions with bounded history
// and idle expiry. Sessions are identified by random UUIDs and are safe
// for concurrent use.
package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Lokesh-Kollepara/studyhint/hint"
)

// ErrNotFound is returned when a session id is unknown or expired.
var ErrNotFound = errors.New("session: not found")

// Config holds session manager limits.
type Config struct {
	MaxHistory int           // messages kept per session
	Timeout    time.Duration // idle time before a session expires
}

// Info is a snapshot of session metadata.
type Info struct {
	SessionID    string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	MessageCount int       `json:"message_count"`
}

type sessionData struct {
	createdAt    time.Time
	lastActivity time.Time
	messages     []hint.Message
}

// Manager tracks active sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*sessionData
	cfg      Config
	now      func() time.Time
}

// NewManager creates a session manager. Zero config values get the
// defaults of 20 messages and a 60 minute idle timeout.
func NewManager(cfg Config) *Manager {
	if cfg.MaxHistory == 0 {
		cfg.MaxHistory = 20
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Minute
	}
	return &Manager{
		sessions: make(map[string]*sessionData),
		cfg:      cfg,
		now:      time.Now,
	}
}

// Create starts a new session and returns its id.
func (m *Manager) Create() string {
	id := uuid.NewString()
	now := m.now()

	m.mu.Lock()
	m.sessions[id] = &sessionData{createdAt: now, lastActivity: now}
	m.mu.Unlock()

	slog.Debug("session: created", "session_id", id)
	return id
}

// Exists reports whether the session is known and not expired.
func (m *Manager) Exists(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return ok && !m.expired(s)
}

// AddMessage appends a message and trims history to the configured cap,
// dropping the oldest messages first.
func (m *Manager) AddMessage(id, role, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || m.expired(s) {
		return ErrNotFound
	}

	s.messages = append(s.messages, hint.Message{Role: role, Content: content})
	if len(s.messages) > m.cfg.MaxHistory {
		s.messages = s.messages[len(s.messages)-m.cfg.MaxHistory:]
	}
	s.lastActivity = m.now()
	return nil
}

// History returns a copy of the full message history.
func (m *Manager) History(id string) ([]hint.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || m.expired(s) {
		return nil, ErrNotFound
	}
	out := make([]hint.Message, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

// RecentHistory returns up to count of the newest messages.
func (m *Manager) RecentHistory(id string, count int) ([]hint.Message, error) {
	msgs, err := m.History(id)
	if err != nil {
		return nil, err
	}
	if count > 0 && len(msgs) > count {
		msgs = msgs[len(msgs)-count:]
	}
	return msgs, nil
}

// Clear empties a session's history but keeps the session alive.
func (m *Manager) Clear(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || m.expired(s) {
		return ErrNotFound
	}
	s.messages = nil
	s.lastActivity = m.now()
	return nil
}

// Delete removes a session entirely.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Info returns metadata for a session.
func (m *Manager) Info(id string) (*Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || m.expired(s) {
		return nil, ErrNotFound
	}
	return &Info{
		SessionID:    id,
		CreatedAt:    s.createdAt,
		LastActivity: s.lastActivity,
		MessageCount: len(s.messages),
	}, nil
}

// Count returns the number of live sessions, expired ones included
// until the next cleanup.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CleanupExpired removes idle sessions and returns how many were dropped.
func (m *Manager) CleanupExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("session: cleaned up expired sessions", "removed", removed)
	}
	return removed
}

func (m *Manager) expired(s *sessionData) bool {
	return m.now().Sub(s.lastActivity) > m.cfg.Timeout
}
