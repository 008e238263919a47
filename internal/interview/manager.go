package interview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pathforge/coach-backend/internal/live"
	"github.com/pathforge/coach-backend/internal/transport"
)

// Manager enforces the single-active-session rule: each user has at most one
// live interview, and starting a new one tears the old one down first.
type Manager struct {
	dialer  live.Dialer
	clock   Clock
	history HistoryAppender
	speech  SpeechStopper
	store   *Store
	log     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	byUser   map[string]string
}

type ManagerConfig struct {
	Dialer  live.Dialer
	Clock   Clock
	History HistoryAppender
	Speech  SpeechStopper
	Store   *Store
	Log     *slog.Logger
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = NewClock()
	}
	return &Manager{
		dialer:   cfg.Dialer,
		clock:    cfg.Clock,
		history:  cfg.History,
		speech:   cfg.Speech,
		store:    cfg.Store,
		log:      cfg.Log.With("component", "interview_manager"),
		sessions: make(map[string]*Session),
		byUser:   make(map[string]string),
	}
}

type StartOptions struct {
	Track       string
	Difficulty  string
	ResumeFocus string
	Prompt      live.SessionOptions
}

// CreateSession builds and starts a session for the connection. Any session
// the same user already has is fully torn down before new resources are
// acquired.
func (m *Manager) CreateSession(ctx context.Context, conn transport.Connection, user *transport.UserContext, opts StartOptions) (*Session, error) {
	userKey := ""
	if user != nil {
		userKey = user.Email
	}

	if userKey != "" {
		m.mu.Lock()
		prevID, ok := m.byUser[userKey]
		prev := m.sessions[prevID]
		m.mu.Unlock()
		if ok && prev != nil {
			m.log.Info("tearing down prior session before starting a new one",
				"session_id", prevID, "user", userKey)
			prev.Close()
		}
	}

	session := NewSession(conn, SessionConfig{
		User:    user,
		Track:   opts.Track,
		Prompt:  opts.Prompt,
		Dialer:  m.dialer,
		Clock:   m.clock,
		History: m.history,
		Speech:  m.speech,
		OnClose: m.remove,
		Log:     m.log,
	})

	m.mu.Lock()
	m.sessions[session.SessionID()] = session
	if userKey != "" {
		m.byUser[userKey] = session.SessionID()
	}
	m.mu.Unlock()

	if err := session.Start(); err != nil {
		if m.store != nil {
			if merr := m.store.IncrementErrors(ctx); merr != nil {
				m.log.Error("failed to record session error", "error", merr)
			}
		}
		return nil, err
	}

	if m.store != nil {
		record := &Record{
			ID:     session.SessionID(),
			UserID: userKey,
			Track:  opts.Track,
		}
		if err := m.store.CreateRecord(ctx, record); err != nil {
			m.log.Error("failed to create session record", "error", err)
		}
	}

	m.log.Info("interview session started",
		"session_id", session.SessionID(), "user", userKey, "track", opts.Track)
	return session, nil
}

func (m *Manager) GetSession(sessionID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

func (m *Manager) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ActiveFor reports the active session ID for a user, if any.
func (m *Manager) ActiveFor(userEmail string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byUser[userEmail]
	return id, ok
}

func (m *Manager) remove(sessionID string) {
	m.mu.Lock()
	session := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	for user, id := range m.byUser {
		if id == sessionID {
			delete(m.byUser, user)
		}
	}
	m.mu.Unlock()

	if m.store != nil && session != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.store.FinishRecord(ctx, sessionID, session.Turns()); err != nil {
			m.log.Error("failed to finish session record", "error", err)
		}
	}
}

// Close tears down every active session, for server shutdown.
func (m *Manager) Close() error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	return nil
}
