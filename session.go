package rft

import (
	"context"
	"time"
)

// sessionSweepInterval is how often expired sessions are swept.
const sessionSweepInterval = 5 * time.Minute

// Session tracks one observer's activity window in memory.
type Session struct {
	ObserverID string
	StartedAt  time.Time
	LastActive time.Time
}

// TouchSession marks the observer active, creating the session on first
// contact.
func (engine *Engine) TouchSession(observerID string) {
	now := engine.now()

	engine.sessionsMu.Lock()
	defer engine.sessionsMu.Unlock()

	session, ok := engine.sessions[observerID]
	if !ok {
		engine.sessions[observerID] = &Session{
			ObserverID: observerID,
			StartedAt:  now,
			LastActive: now,
		}
		return
	}
	session.LastActive = now
}

// ActiveSessions returns a snapshot of the sessions that have not expired.
func (engine *Engine) ActiveSessions() []Session {
	now := engine.now()
	timeout := engine.sessionTimeout()

	engine.sessionsMu.RLock()
	defer engine.sessionsMu.RUnlock()

	active := make([]Session, 0, len(engine.sessions))
	for _, session := range engine.sessions {
		if now.Sub(session.LastActive) <= timeout {
			active = append(active, *session)
		}
	}
	return active
}

// sweepSessions removes expired sessions on a fixed interval until the
// context is cancelled.
func (engine *Engine) sweepSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			engine.expireSessions()
		}
	}
}

func (engine *Engine) expireSessions() {
	now := engine.now()
	timeout := engine.sessionTimeout()

	engine.sessionsMu.Lock()
	defer engine.sessionsMu.Unlock()

	for observerID, session := range engine.sessions {
		if now.Sub(session.LastActive) > timeout {
			delete(engine.sessions, observerID)
		}
	}
}

func (engine *Engine) sessionTimeout() time.Duration {
	if engine.Config != nil && engine.Config.SessionTimeoutMinutes > 0 {
		return time.Duration(engine.Config.SessionTimeoutMinutes) * time.Minute
	}
	return time.Hour
}
