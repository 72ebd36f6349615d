package domain

import "time"

// Observer is the persisted state of one submitting identity. BaseCoherence
// is seeded once when the observer is first seen and never changes;
// SyncLevel and the counters evolve with each interaction.
type Observer struct {
	ID            string
	BaseCoherence float64
	SyncLevel     float64
	Interactions  int64
	Successes     int64
	FirstSeen     time.Time
	LastSeen      time.Time
}

// SuccessRate returns the fraction of interactions that produced a frame.
func (observer *Observer) SuccessRate() float64 {
	if observer.Interactions == 0 {
		return 0
	}
	return float64(observer.Successes) / float64(observer.Interactions)
}

// ObserverRepository persists observer state.
type ObserverRepository interface {
	// GetObserver returns nil without error when the observer is unknown.
	GetObserver(id string) (*Observer, error)
	UpsertObserver(observer *Observer) error
	GetObservers() ([]*Observer, error)
	CountObservers() (int, error)
}
