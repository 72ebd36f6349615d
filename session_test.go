package rft

import (
	"testing"
	"time"
)

func TestSessions(t *testing.T) {
	t.Run("should create and refresh sessions", func(t *testing.T) {
		now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
		engine := statusEngine(newMockRepository(), &now)

		engine.TouchSession("observer-1")
		started := now

		now = now.Add(10 * time.Minute)
		engine.TouchSession("observer-1")

		active := engine.ActiveSessions()
		if len(active) != 1 {
			t.Fatalf("\nwanted:\n1 session\ngot:\n%d", len(active))
		}
		if !active[0].StartedAt.Equal(started) {
			t.Errorf("\nwanted:\nstart %v\ngot:\n%v", started, active[0].StartedAt)
		}
		if !active[0].LastActive.Equal(now) {
			t.Errorf("\nwanted:\nlast active %v\ngot:\n%v", now, active[0].LastActive)
		}
	})

	t.Run("should exclude idle sessions from the active snapshot", func(t *testing.T) {
		now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
		engine := statusEngine(newMockRepository(), &now)

		engine.TouchSession("observer-1")
		engine.TouchSession("observer-2")

		now = now.Add(30 * time.Minute)
		engine.TouchSession("observer-2")

		now = now.Add(45 * time.Minute) // observer-1 idle 75m, observer-2 idle 45m
		active := engine.ActiveSessions()
		if len(active) != 1 {
			t.Fatalf("\nwanted:\n1 active session\ngot:\n%d", len(active))
		}
		if active[0].ObserverID != "observer-2" {
			t.Errorf("\nwanted:\nobserver-2\ngot:\n%v", active[0].ObserverID)
		}
	})

	t.Run("should sweep expired sessions out of the map", func(t *testing.T) {
		now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
		engine := statusEngine(newMockRepository(), &now)

		engine.TouchSession("observer-1")
		now = now.Add(2 * time.Hour)
		engine.expireSessions()

		engine.sessionsMu.RLock()
		defer engine.sessionsMu.RUnlock()
		if len(engine.sessions) != 0 {
			t.Fatalf("\nwanted:\nempty session map\ngot:\n%d entries", len(engine.sessions))
		}
	})

	t.Run("should honor the configured timeout", func(t *testing.T) {
		now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
		engine := statusEngine(newMockRepository(), &now)
		engine.Config.SessionTimeoutMinutes = 5

		engine.TouchSession("observer-1")
		now = now.Add(10 * time.Minute)

		if active := engine.ActiveSessions(); len(active) != 0 {
			t.Fatalf("\nwanted:\n0 active sessions\ngot:\n%d", len(active))
		}
	})
}
