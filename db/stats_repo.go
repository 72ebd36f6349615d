package db

import (
	"fmt"

	"github.com/omegalab/rft/domain"
)

var _ domain.StatsRepository = (*Repository)(nil)

// CountAlerts returns the total number of renderings flagged by a watchdog.
func (repo *Repository) CountAlerts() (int, error) {
	var count int
	query := `SELECT COUNT(*)
              FROM renderings
              WHERE json_extract(metadata, '$.alert') IS NOT NULL`

	err := repo.dbConn.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("getting alert count: %w", err)
	}

	return count, nil
}

// CountRejections returns the total number of recorded validation rejections.
func (repo *Repository) CountRejections() (int, error) {
	var count int
	query := `SELECT COUNT(*)
              FROM logs
              WHERE json_extract(context, '$.rejected') = true`

	err := repo.dbConn.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("getting rejection count: %w", err)
	}

	return count, nil
}
