package domain

import (
	"time"

	"github.com/google/uuid"
)

// LogRepository defines the interface for managing engine logs.
// It provides methods for persisting, retrieving, and pruning log entries.
type LogRepository interface {
	// InsertLog saves a new log entry to the repository.
	InsertLog(log *Log) error
	// GetLogs retrieves the most recent log entries, newest first.
	GetLogs(limit int) ([]*Log, error)
	// GetLogsByLevel retrieves the most recent entries of one level.
	GetLogsByLevel(level string, limit int) ([]*Log, error)
	// CountLogsByLevel returns the number of entries of one level.
	CountLogsByLevel(level string) (int, error)
	// PruneLogs deletes the oldest entries of the given level beyond keep.
	PruneLogs(level string, keep int) error
}

// Log represents a single log entry, containing information about an event that occurred in the engine.
type Log struct {
	ID          uuid.UUID      // Unique identifier for the log entry.
	Timestamp   time.Time      // The time at which the log entry was created.
	Level       string         // The severity level of the log (e.g., DEBUG, INFO, WARN, ERROR, FATAL).
	Message     string         // The main content of the log message.
	Context     map[string]any // A map of additional key-value data for structured logging.
	ObserverID  *string        // An optional ID of an associated observer, for context.
	RenderingID *uuid.UUID     // An optional ID of an associated rendering, for context.
	ExtensionID *uuid.UUID     // An optional ID of an associated extension, for context.
}

// GetType identifies log entries on the engine write channel.
func (log *Log) GetType() string {
	return "LOG"
}
