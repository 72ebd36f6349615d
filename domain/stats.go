package domain

// StatsRepository defines the interface for retrieving various statistics about the engine's data.
// It provides methods for counting different types of entities within the repository.
type StatsRepository interface {
	// CountRenderings returns the total number of stored renderings.
	CountRenderings() (int, error)
	// CountObservers returns the total number of known observers.
	CountObservers() (int, error)
	// CountFingerprints returns the total number of stored fingerprints.
	CountFingerprints() (int, error)
	// CountAlerts returns the total number of renderings flagged by a watchdog.
	CountAlerts() (int, error)
	// CountRejections returns the total number of recorded validation rejections.
	CountRejections() (int, error)
}
