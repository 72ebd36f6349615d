package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/omegalab/rft/domain"
)

var _ domain.ObserverRepository = (*Repository)(nil)

// dbObserver represents an observer as stored in the database.
type dbObserver struct {
	ID            string    `db:"id"`             // External identity of the observer.
	BaseCoherence float64   `db:"base_coherence"` // Seeded base coherence, fixed at first sight.
	SyncLevel     float64   `db:"sync_level"`     // Current synchronization level.
	Interactions  int64     `db:"interactions"`   // Total number of submissions.
	Successes     int64     `db:"successes"`      // Number of submissions that produced a frame.
	FirstSeen     time.Time `db:"first_seen"`     // When the observer was first seen.
	LastSeen      time.Time `db:"last_seen"`      // When the observer last submitted.
}

// toDomainObserver converts a dbObserver to a domain.Observer.
func toDomainObserver(dbObs *dbObserver) *domain.Observer {
	return &domain.Observer{
		ID:            dbObs.ID,
		BaseCoherence: dbObs.BaseCoherence,
		SyncLevel:     dbObs.SyncLevel,
		Interactions:  dbObs.Interactions,
		Successes:     dbObs.Successes,
		FirstSeen:     dbObs.FirstSeen,
		LastSeen:      dbObs.LastSeen,
	}
}

// fromDomainObserver converts a domain.Observer to a dbObserver.
func fromDomainObserver(observer *domain.Observer) *dbObserver {
	return &dbObserver{
		ID:            observer.ID,
		BaseCoherence: observer.BaseCoherence,
		SyncLevel:     observer.SyncLevel,
		Interactions:  observer.Interactions,
		Successes:     observer.Successes,
		FirstSeen:     observer.FirstSeen,
		LastSeen:      observer.LastSeen,
	}
}

// GetObserver retrieves a single observer by ID. It returns nil without an
// error when the observer is unknown.
func (repo *Repository) GetObserver(id string) (*domain.Observer, error) {
	var dbObs dbObserver
	query := `SELECT * FROM observers WHERE id = ?`

	err := repo.dbConn.Get(&dbObs, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching observer %s: %w", id, err)
	}

	return toDomainObserver(&dbObs), nil
}

// UpsertObserver inserts an observer or updates its mutable state.
// BaseCoherence and FirstSeen are fixed once the observer exists.
func (repo *Repository) UpsertObserver(observer *domain.Observer) error {
	dbObs := fromDomainObserver(observer)
	query := `INSERT INTO observers (id, base_coherence, sync_level, interactions, successes, first_seen, last_seen)
	          VALUES (:id, :base_coherence, :sync_level, :interactions, :successes, :first_seen, :last_seen)
	          ON CONFLICT(id) DO UPDATE SET
	              sync_level = excluded.sync_level,
	              interactions = excluded.interactions,
	              successes = excluded.successes,
	              last_seen = excluded.last_seen`

	_, err := repo.dbConn.NamedExec(query, dbObs)
	if err != nil {
		return fmt.Errorf("upserting observer %s: %w", observer.ID, err)
	}

	return nil
}

// GetObservers retrieves all known observers ordered by last activity.
func (repo *Repository) GetObservers() ([]*domain.Observer, error) {
	var dbObservers []*dbObserver
	query := `SELECT * FROM observers ORDER BY last_seen DESC`

	err := repo.dbConn.Select(&dbObservers, query)
	if err != nil {
		return nil, fmt.Errorf("fetching all observers: %w", err)
	}

	observers := make([]*domain.Observer, len(dbObservers))
	for i, dbObs := range dbObservers {
		observers[i] = toDomainObserver(dbObs)
	}

	return observers, nil
}

// CountObservers returns the total number of known observers.
func (repo *Repository) CountObservers() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM observers`

	err := repo.dbConn.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("getting observer count: %w", err)
	}

	return count, nil
}
