package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/omegalab/rft/domain"
)

var _ domain.LogRepository = (*Repository)(nil)

// dbLog represents a log entry as stored in the database.
type dbLog struct {
	ID          uuid.UUID      `db:"id"`           // Unique identifier for the log entry.
	Timestamp   time.Time      `db:"timestamp"`    // The time at which the log entry was created.
	Level       string         `db:"level"`        // The severity level of the log.
	Message     string         `db:"message"`      // The main content of the log message.
	Context     Metadata       `db:"context"`      // A map of additional key-value data for structured logging.
	ObserverID  sql.NullString `db:"observer_id"`  // An optional ID of an associated observer.
	RenderingID sql.NullString `db:"rendering_id"` // An optional ID of an associated rendering.
	ExtensionID sql.NullString `db:"extension_id"` // An optional ID of an associated extension.
}

// toDomainLog converts a dbLog to a domain.Log.
func toDomainLog(dbLog *dbLog) *domain.Log {
	log := &domain.Log{
		ID:        dbLog.ID,
		Timestamp: dbLog.Timestamp,
		Level:     dbLog.Level,
		Message:   dbLog.Message,
		Context:   map[string]any(dbLog.Context),
	}

	if dbLog.ObserverID.Valid {
		observerID := dbLog.ObserverID.String
		log.ObserverID = &observerID
	}

	if dbLog.RenderingID.Valid {
		if id, err := uuid.Parse(dbLog.RenderingID.String); err == nil {
			log.RenderingID = &id
		}
	}

	if dbLog.ExtensionID.Valid {
		if id, err := uuid.Parse(dbLog.ExtensionID.String); err == nil {
			log.ExtensionID = &id
		}
	}

	return log
}

// fromDomainLog converts a domain.Log to a dbLog.
func fromDomainLog(log *domain.Log) *dbLog {
	dbLog := &dbLog{
		ID:        log.ID,
		Timestamp: log.Timestamp,
		Level:     log.Level,
		Message:   log.Message,
		Context:   Metadata(log.Context),
	}

	if log.ObserverID != nil {
		dbLog.ObserverID = sql.NullString{String: *log.ObserverID, Valid: true}
	}

	if log.RenderingID != nil {
		dbLog.RenderingID = sql.NullString{String: log.RenderingID.String(), Valid: true}
	}

	if log.ExtensionID != nil {
		dbLog.ExtensionID = sql.NullString{String: log.ExtensionID.String(), Valid: true}
	}

	return dbLog
}

// InsertLog saves a new log entry to the database.
func (repo *Repository) InsertLog(log *domain.Log) error {
	dbLog := fromDomainLog(log)
	query := `INSERT INTO logs (id, level, timestamp, message, context, observer_id, rendering_id, extension_id)
	          VALUES (:id, :level, :timestamp, :message, :context, :observer_id, :rendering_id, :extension_id)`

	_, err := repo.dbConn.NamedExec(query, dbLog)
	if err != nil {
		return fmt.Errorf("inserting log %s: %w", log.ID, err)
	}

	return err
}

// GetLogs retrieves the most recent log entries from the database, newest first.
func (repo *Repository) GetLogs(limit int) ([]*domain.Log, error) {
	var dbLogs []*dbLog
	query := `SELECT * FROM logs ORDER BY timestamp DESC LIMIT ?`

	err := repo.dbConn.Select(&dbLogs, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching logs: %w", err)
	}

	domainLogs := make([]*domain.Log, len(dbLogs))
	for i, dbLog := range dbLogs {
		domainLogs[i] = toDomainLog(dbLog)
	}

	return domainLogs, nil
}

// GetLogsByLevel retrieves the most recent log entries of one level, newest first.
func (repo *Repository) GetLogsByLevel(level string, limit int) ([]*domain.Log, error) {
	var dbLogs []*dbLog
	query := `SELECT * FROM logs WHERE level = ? ORDER BY timestamp DESC LIMIT ?`

	err := repo.dbConn.Select(&dbLogs, query, level, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching %s logs: %w", level, err)
	}

	domainLogs := make([]*domain.Log, len(dbLogs))
	for i, dbLog := range dbLogs {
		domainLogs[i] = toDomainLog(dbLog)
	}

	return domainLogs, nil
}

// CountLogsByLevel returns the number of log entries of one level.
func (repo *Repository) CountLogsByLevel(level string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM logs WHERE level = ?`

	err := repo.dbConn.Get(&count, query, level)
	if err != nil {
		return 0, fmt.Errorf("counting %s logs: %w", level, err)
	}

	return count, nil
}

// PruneLogs deletes the oldest log entries of one level beyond keep.
func (repo *Repository) PruneLogs(level string, keep int) error {
	query := `DELETE FROM logs WHERE level = ? AND id NOT IN (
	              SELECT id FROM logs WHERE level = ? ORDER BY timestamp DESC LIMIT ?
	          )`

	_, err := repo.dbConn.Exec(query, level, level, keep)
	if err != nil {
		return fmt.Errorf("pruning %s logs: %w", level, err)
	}

	return nil
}
