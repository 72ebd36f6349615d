package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/omegalab/rft/domain"
)

var _ domain.MemoryRepository = (*Repository)(nil)

// dbFingerprint represents a fingerprint as stored in the database.
type dbFingerprint struct {
	ID         uuid.UUID `db:"id"`          // Unique identifier for the fingerprint.
	ObserverID string    `db:"observer_id"` // The observer the fingerprint belongs to.
	Hash       string    `db:"hash"`        // SHA-256 hash over the bucketed features.
	Features   Metadata  `db:"features"`    // The bucketed features the hash was computed from.
	Similarity float64   `db:"similarity"`  // Match ratio against the previous fingerprint.
	CreatedAt  time.Time `db:"created_at"`  // The time the fingerprint was recorded.
}

// toDomainFingerprint converts a dbFingerprint to a domain.Fingerprint.
func toDomainFingerprint(dbFp *dbFingerprint) *domain.Fingerprint {
	return &domain.Fingerprint{
		ID:         dbFp.ID,
		ObserverID: dbFp.ObserverID,
		Hash:       dbFp.Hash,
		Features:   map[string]any(dbFp.Features),
		Similarity: dbFp.Similarity,
		CreatedAt:  dbFp.CreatedAt,
	}
}

// fromDomainFingerprint converts a domain.Fingerprint to a dbFingerprint.
func fromDomainFingerprint(fingerprint *domain.Fingerprint) *dbFingerprint {
	return &dbFingerprint{
		ID:         fingerprint.ID,
		ObserverID: fingerprint.ObserverID,
		Hash:       fingerprint.Hash,
		Features:   Metadata(fingerprint.Features),
		Similarity: fingerprint.Similarity,
		CreatedAt:  fingerprint.CreatedAt,
	}
}

// InsertFingerprint saves a new fingerprint to the database.
func (repo *Repository) InsertFingerprint(fingerprint *domain.Fingerprint) error {
	dbFp := fromDomainFingerprint(fingerprint)
	query := `INSERT INTO fingerprints (id, observer_id, hash, features, similarity, created_at)
	          VALUES (:id, :observer_id, :hash, :features, :similarity, :created_at)`

	_, err := repo.dbConn.NamedExec(query, dbFp)
	if err != nil {
		return fmt.Errorf("inserting fingerprint %s: %w", fingerprint.ID, err)
	}

	return nil
}

// LatestFingerprint retrieves the most recent fingerprint of one observer.
// It returns nil without an error when the observer has no fingerprints yet.
func (repo *Repository) LatestFingerprint(observerID string) (*domain.Fingerprint, error) {
	var dbFp dbFingerprint
	query := `SELECT * FROM fingerprints WHERE observer_id = ? ORDER BY created_at DESC LIMIT 1`

	err := repo.dbConn.Get(&dbFp, query, observerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching latest fingerprint for observer %s: %w", observerID, err)
	}

	return toDomainFingerprint(&dbFp), nil
}

// GetFingerprints retrieves the most recent fingerprints of one observer, newest first.
func (repo *Repository) GetFingerprints(observerID string, limit int) ([]*domain.Fingerprint, error) {
	var dbFps []*dbFingerprint
	query := `SELECT * FROM fingerprints WHERE observer_id = ? ORDER BY created_at DESC LIMIT ?`

	err := repo.dbConn.Select(&dbFps, query, observerID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching fingerprints for observer %s: %w", observerID, err)
	}

	fingerprints := make([]*domain.Fingerprint, len(dbFps))
	for i, dbFp := range dbFps {
		fingerprints[i] = toDomainFingerprint(dbFp)
	}

	return fingerprints, nil
}

// CountFingerprints returns the total number of stored fingerprints.
func (repo *Repository) CountFingerprints() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM fingerprints`

	err := repo.dbConn.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("getting fingerprint count: %w", err)
	}

	return count, nil
}

// PruneFingerprints deletes the oldest fingerprints of one observer beyond keep.
func (repo *Repository) PruneFingerprints(observerID string, keep int) error {
	query := `DELETE FROM fingerprints WHERE observer_id = ? AND id NOT IN (
	              SELECT id FROM fingerprints WHERE observer_id = ? ORDER BY created_at DESC LIMIT ?
	          )`

	_, err := repo.dbConn.Exec(query, observerID, observerID, keep)
	if err != nil {
		return fmt.Errorf("pruning fingerprints for observer %s: %w", observerID, err)
	}

	return nil
}
