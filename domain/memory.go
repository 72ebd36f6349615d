package domain

import (
	"time"

	"github.com/google/uuid"
)

// Fingerprint is a hashed summary of the bucketed features of one challenge,
// kept per observer so successive submissions can be compared.
type Fingerprint struct {
	ID         uuid.UUID
	ObserverID string
	Hash       string
	Features   map[string]any
	// Similarity is the positional match ratio against the observer's
	// previous fingerprint, 1.0 for the first one.
	Similarity float64
	CreatedAt  time.Time
}

// GetType is used to process items on the engine write channel.
func (fingerprint *Fingerprint) GetType() string {
	return "FINGERPRINT"
}

// MemoryRepository persists fingerprint history.
type MemoryRepository interface {
	InsertFingerprint(fingerprint *Fingerprint) error
	// LatestFingerprint returns nil without error when the observer has no
	// fingerprints yet.
	LatestFingerprint(observerID string) (*Fingerprint, error)
	GetFingerprints(observerID string, limit int) ([]*Fingerprint, error)
	CountFingerprints() (int, error)
	// PruneFingerprints deletes the oldest fingerprints of one observer
	// beyond keep.
	PruneFingerprints(observerID string, keep int) error
}
