package core

import (
	"log/slog"
	"time"

	"streammeter/internal/metrics"
)

// Readiness reports whether the external publishing dependency has
// completed initialization. Session starts are refused until it has.
type Readiness interface {
	Ready() bool
}

// SessionManager implements the session lifecycle operations against
// the registry and ledger. It never mutates either outside of a single
// synchronous call.
type SessionManager struct {
	registry       *Registry
	ledger         *Ledger
	readiness      Readiness
	pricePerSecond float64
	logger         *slog.Logger
}

// NewSessionManager creates a new session manager
func NewSessionManager(registry *Registry, ledger *Ledger, readiness Readiness, pricePerSecond float64, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		registry:       registry,
		ledger:         ledger,
		readiness:      readiness,
		pricePerSecond: pricePerSecond,
		logger:         logger,
	}
}

// StartResult is returned from a successful session start
type StartResult struct {
	SessionID      string
	PricePerSecond float64
	StartTime      int64 // milliseconds since epoch
}

// StopResult is returned from a successful session stop
type StopResult struct {
	SessionID        string
	SessionSeconds   int64
	SessionCost      float64
	UserTotalSeconds int64
	PricePerSecond   float64
}

// SessionStatus is a read-only projection of one active session
type SessionStatus struct {
	SessionID      string  `json:"sessionId"`
	UserID         string  `json:"userId"`
	ContentID      string  `json:"contentId"`
	StartTime      int64   `json:"startTime"`
	SecondsElapsed int64   `json:"secondsElapsed"`
	CurrentCost    float64 `json:"currentCost"`
	PricePerSecond float64 `json:"pricePerSecond"`
	Status         string  `json:"status"`
}

// StartSession opens a new watch session for the user and content and
// seeds the user's ledger entry
func (m *SessionManager) StartSession(userID, contentID string) (*StartResult, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if contentID == "" {
		return nil, ErrMissingContentID
	}
	if !m.readiness.Ready() {
		return nil, ErrPublisherNotReady
	}

	session := m.registry.Create(userID, contentID)
	m.ledger.EnsureEntry(userID)

	metrics.SessionsStarted.Inc()
	m.logger.Info("Session started",
		"session_id", session.ID,
		"user_id", userID,
		"content_id", contentID)

	return &StartResult{
		SessionID:      session.ID,
		PricePerSecond: m.pricePerSecond,
		StartTime:      session.StartTime.UnixMilli(),
	}, nil
}

// StopSession closes a session owned by the given user and returns its
// final duration and cost. The ledger is not mutated here: the next
// aggregation tick already reflects the loss of this session.
func (m *SessionManager) StopSession(sessionID, userID string) (*StopResult, error) {
	if sessionID == "" {
		return nil, ErrMissingSessionID
	}
	if userID == "" {
		return nil, ErrMissingUserID
	}

	session, ok := m.registry.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}

	session, ok = m.registry.Remove(sessionID)
	if !ok {
		// Lost a race with the reaper or a concurrent stop
		return nil, ErrSessionNotFound
	}

	now := time.Now()
	sessionSeconds := session.ElapsedSeconds(now)

	var userTotal int64
	if entry, ok := m.ledger.Get(userID); ok {
		userTotal = entry.TotalSeconds
	}

	metrics.SessionsStopped.Inc()
	m.logger.Info("Session stopped",
		"session_id", session.ID,
		"user_id", userID,
		"session_seconds", sessionSeconds)

	return &StopResult{
		SessionID:        session.ID,
		SessionSeconds:   sessionSeconds,
		SessionCost:      float64(sessionSeconds) * m.pricePerSecond,
		UserTotalSeconds: userTotal,
		PricePerSecond:   m.pricePerSecond,
	}, nil
}

// SessionStatus returns a live projection of a single session without
// mutating any state
func (m *SessionManager) SessionStatus(sessionID string) (*SessionStatus, error) {
	session, ok := m.registry.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	status := m.projectSession(session, time.Now())
	return &status, nil
}

// ListActive returns status projections for all active sessions
func (m *SessionManager) ListActive() []SessionStatus {
	now := time.Now()
	sessions := m.registry.ListActive()

	statuses := make([]SessionStatus, 0, len(sessions))
	for _, session := range sessions {
		statuses = append(statuses, m.projectSession(session, now))
	}
	return statuses
}

// ActiveSessions returns the number of currently open sessions
func (m *SessionManager) ActiveSessions() int {
	return m.registry.Count()
}

// Ready reports whether the publishing dependency is initialized
func (m *SessionManager) Ready() bool {
	return m.readiness.Ready()
}

// PricePerSecond returns the configured metering rate
func (m *SessionManager) PricePerSecond() float64 {
	return m.pricePerSecond
}

func (m *SessionManager) projectSession(session *Session, now time.Time) SessionStatus {
	elapsed := session.ElapsedSeconds(now)
	return SessionStatus{
		SessionID:      session.ID,
		UserID:         session.UserID,
		ContentID:      session.ContentID,
		StartTime:      session.StartTime.UnixMilli(),
		SecondsElapsed: elapsed,
		CurrentCost:    float64(elapsed) * m.pricePerSecond,
		PricePerSecond: m.pricePerSecond,
		Status:         "active",
	}
}
