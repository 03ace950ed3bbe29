package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"footfall_service/internal/domain/model"
)

// PostgresStore persists the catalog and the footfall series in Postgres.
type PostgresStore struct {
	DB *sqlx.DB
}

// NewPostgresStore connects to Postgres and returns the store.
func NewPostgresStore(connStr string) *PostgresStore {
	db := sqlx.MustConnect("postgres", connStr)
	return &PostgresStore{DB: db}
}

// EnsureSchema creates the tables if they do not exist.
func (r *PostgresStore) EnsureSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS centers (
			location_code TEXT PRIMARY KEY,
			district      TEXT NOT NULL,
			state         TEXT NOT NULL,
			category      TEXT NOT NULL,
			base_footfall DOUBLE PRECISION NOT NULL
		);
		CREATE TABLE IF NOT EXISTS holidays (
			holiday_on DATE PRIMARY KEY
		);
		CREATE TABLE IF NOT EXISTS observations (
			location_code TEXT NOT NULL,
			observed_on   DATE NOT NULL,
			footfall      INTEGER NOT NULL CHECK (footfall >= 0),
			PRIMARY KEY (location_code, observed_on)
		);`
	if _, err := r.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// LoadCatalog reads the full center and holiday reference data.
func (r *PostgresStore) LoadCatalog(ctx context.Context) ([]model.Center, []time.Time, error) {
	var centers []model.Center
	const centersQuery = `
		SELECT location_code, district, state, category, base_footfall
		FROM centers
		ORDER BY location_code`
	if err := r.DB.SelectContext(ctx, &centers, centersQuery); err != nil {
		return nil, nil, fmt.Errorf("failed to query centers: %w", err)
	}

	var holidays []time.Time
	const holidaysQuery = `SELECT holiday_on FROM holidays ORDER BY holiday_on`
	if err := r.DB.SelectContext(ctx, &holidays, holidaysQuery); err != nil {
		return nil, nil, fmt.Errorf("failed to query holidays: %w", err)
	}

	return centers, holidays, nil
}

// SaveCenters upserts the full center set.
func (r *PostgresStore) SaveCenters(ctx context.Context, centers []model.Center) error {
	const query = `
		INSERT INTO centers (location_code, district, state, category, base_footfall)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (location_code) DO UPDATE SET
			district = EXCLUDED.district,
			state = EXCLUDED.state,
			category = EXCLUDED.category,
			base_footfall = EXCLUDED.base_footfall`
	for _, c := range centers {
		if _, err := r.DB.ExecContext(ctx, query,
			c.LocationCode, c.District, c.State, c.Category, c.BaseFootfall,
		); err != nil {
			return fmt.Errorf("failed to save center %s: %w", c.LocationCode, err)
		}
	}
	return nil
}

// SaveHolidays upserts holiday dates.
func (r *PostgresStore) SaveHolidays(ctx context.Context, holidays []time.Time) error {
	const query = `INSERT INTO holidays (holiday_on) VALUES ($1) ON CONFLICT DO NOTHING`
	for _, h := range holidays {
		if _, err := r.DB.ExecContext(ctx, query, h); err != nil {
			return fmt.Errorf("failed to save holiday %s: %w", h.Format("2006-01-02"), err)
		}
	}
	return nil
}

// History returns the per-center observations in [before-days, before),
// ordered by date ascending.
func (r *PostgresStore) History(ctx context.Context, code string, before time.Time, days int) ([]model.Observation, error) {
	const query = `
		SELECT location_code, observed_on, footfall
		FROM observations
		WHERE location_code = $1
		AND observed_on < $2
		AND observed_on >= $3
		ORDER BY observed_on`
	from := before.AddDate(0, 0, -days)

	var observations []model.Observation
	if err := r.DB.SelectContext(ctx, &observations, query, code, before, from); err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", code, err)
	}
	return observations, nil
}

// All returns every observation ordered by (location code, date).
// The feature builder depends on this ordering.
func (r *PostgresStore) All(ctx context.Context) ([]model.Observation, error) {
	const query = `
		SELECT location_code, observed_on, footfall
		FROM observations
		ORDER BY location_code, observed_on`

	var observations []model.Observation
	if err := r.DB.SelectContext(ctx, &observations, query); err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	return observations, nil
}
