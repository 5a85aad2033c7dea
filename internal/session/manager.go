package session

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/fredrikfh/Quizzma/internal/domain"
	"github.com/fredrikfh/Quizzma/internal/logging"
	"github.com/fredrikfh/Quizzma/internal/metrics"
	"github.com/fredrikfh/Quizzma/internal/ws"
)

const (
	defaultIDLow       = 1000
	defaultIDHigh      = 9999
	defaultMaxAttempts = 100

	killReason = "Session killed by owner"
)

// ManagerConfig carries the dependencies shared by all sessions.
type ManagerConfig struct {
	Clock         clockwork.Clock
	Preprocessor  domain.Preprocessor
	Sentiment     SentimentFunc
	BatchInterval time.Duration

	// Id allocation bounds, overridable for tests. Zero values select the
	// default 4-digit space with 100 attempts.
	IDLow       int
	IDHigh      int
	MaxAttempts int
}

// Manager is the process-wide registry of live sessions. It owns creation,
// lookup, teardown and broadcast fan-out; no other component may remove a
// session from the registry.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	clock         clockwork.Clock
	preprocessor  domain.Preprocessor
	sentiment     SentimentFunc
	batchInterval time.Duration

	idLow       int
	idHigh      int
	maxAttempts int
}

func NewManager(cfg ManagerConfig) *Manager {
	m := &Manager{
		sessions:      make(map[string]*Session),
		clock:         cfg.Clock,
		preprocessor:  cfg.Preprocessor,
		sentiment:     cfg.Sentiment,
		batchInterval: cfg.BatchInterval,
		idLow:         cfg.IDLow,
		idHigh:        cfg.IDHigh,
		maxAttempts:   cfg.MaxAttempts,
	}
	if m.idLow == 0 && m.idHigh == 0 {
		m.idLow = defaultIDLow
		m.idHigh = defaultIDHigh
	}
	if m.maxAttempts == 0 {
		m.maxAttempts = defaultMaxAttempts
	}
	return m
}

// CreateSession allocates a short numeric id not currently in the registry
// and starts the session's background worker. Allocation samples the id
// space and rejects collisions; after maxAttempts collisions it fails with
// ErrIDSpaceExhausted rather than looping forever.
func (m *Manager) CreateSession(ownerID string, quizID uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var id string
	for attempt := 0; ; attempt++ {
		if attempt >= m.maxAttempts {
			return nil, domain.ErrIDSpaceExhausted
		}
		id = fmt.Sprintf("%d", m.idLow+rand.IntN(m.idHigh-m.idLow+1))
		if _, taken := m.sessions[id]; !taken {
			break
		}
	}

	session := newSession(id, ownerID, quizID, m.clock, m.preprocessor, m.sentiment, m.batchInterval)
	session.StartWorker()
	m.sessions[id] = session

	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	logging.WithQuiz(quizID.String()).Info("New session created", "session_id", id)

	return session, nil
}

// GetSession retrieves a session by id, or nil if it does not exist.
func (m *Manager) GetSession(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// GetSessionByQuiz retrieves the live session for a quiz, or nil. Linear
// scan; session counts are small and short-lived.
func (m *Manager) GetSessionByQuiz(quizID uuid.UUID) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, session := range m.sessions {
		if session.QuizID == quizID {
			return session
		}
	}
	return nil
}

// KillSession stops the session's worker, closes every connection with an
// explicit reason and removes the session from the registry. Killing an
// already-removed session is a no-op.
func (m *Manager) KillSession(session *Session) {
	if session == nil {
		return
	}

	m.mu.Lock()
	_, present := m.sessions[session.ID]
	delete(m.sessions, session.ID)
	count := len(m.sessions)
	m.mu.Unlock()

	session.Shutdown(killReason)

	if present {
		metrics.ActiveSessions.Set(float64(count))
		logging.WithSession(session.ID).Debug("Session killed", "owner_id", session.OwnerID)
	}
}

// KillAll tears down every live session, used on process shutdown.
func (m *Manager) KillAll(reason string) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Shutdown(reason)
	}
	metrics.ActiveSessions.Set(0)
}

// JoinSession registers a connection with a session.
func (m *Manager) JoinSession(id string, conn ws.Conn) (*Session, error) {
	session := m.GetSession(id)
	if session == nil {
		logging.WithSession(id).Debug("Tried connecting to a non-existent session")
		return nil, domain.ErrSessionNotFound
	}

	session.RegisterConnection(conn)
	metrics.ConnectedClients.Inc()
	logging.WithSession(id).Debug("New connection added to session")
	return session, nil
}

// LeaveSession removes a connection from a session. A connection that is
// already gone is tolerated silently.
func (m *Manager) LeaveSession(id string, conn ws.Conn) {
	session := m.GetSession(id)
	if session == nil {
		return
	}

	if session.RemoveConnection(conn) {
		metrics.ConnectedClients.Dec()
		logging.WithSession(id).Debug("Removed connection from session")
	}
}

// Broadcast pushes the session's current public snapshot to every
// registered connection. Each send is independent: a failure to deliver to
// one connection never prevents delivery to the others.
func (m *Manager) Broadcast(session *Session, msgType ws.ServerMessageType, errPayload *ws.ErrorPayload) {
	data, err := ws.EncodeServerMessage(session.Snapshot(), msgType, errPayload)
	if err != nil {
		logging.WithSession(session.ID).Error("Failed to marshal broadcast message", "error", err)
		return
	}

	for _, conn := range session.Connections() {
		if err := conn.Send(data); err != nil {
			metrics.BroadcastSendFailuresTotal.Inc()
			logging.WithSession(session.ID).Warn("Broadcast send failed, connection skipped", "error", err)
		}
	}

	metrics.BroadcastsTotal.WithLabelValues(string(msgType)).Inc()
}
