package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"footfall_service/internal/domain/model"
)

// PostgresObservationRecorder writes generated or imported observations
// into Postgres so later training runs can reuse them.
type PostgresObservationRecorder struct {
	db *sqlx.DB
}

// NewPostgresObservationRecorder wraps an existing connection.
func NewPostgresObservationRecorder(db *sqlx.DB) *PostgresObservationRecorder {
	return &PostgresObservationRecorder{db: db}
}

// SaveObservations inserts a batch inside one transaction. Existing
// (center, date) rows are overwritten: a re-import of corrected data
// must win over stale values.
func (r *PostgresObservationRecorder) SaveObservations(ctx context.Context, observations []model.Observation) error {
	const query = `
		INSERT INTO observations (location_code, observed_on, footfall)
		VALUES ($1, $2, $3)
		ON CONFLICT (location_code, observed_on) DO UPDATE SET
			footfall = EXCLUDED.footfall`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, obs := range observations {
		if _, err := tx.ExecContext(ctx, query, obs.LocationCode, obs.Date, obs.Footfall); err != nil {
			return fmt.Errorf("failed to save observation %s/%s: %w",
				obs.LocationCode, obs.Date.Format("2006-01-02"), err)
		}
	}

	return tx.Commit()
}
