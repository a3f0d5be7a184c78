package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"building_energy/internal/models"
)

type BuildingSQLite struct {
	db *sql.DB
}

func NewBuildingSQLite(db *sql.DB) *BuildingSQLite {
	return &BuildingSQLite{db: db}
}

var _ BuildingRepo = (*BuildingSQLite)(nil)

const (
	upsertBuildingSQL = `
		INSERT INTO buildings (id, name, hvac_kw, lighting_kw, mode, last_price, last_duration_min, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			hvac_kw=excluded.hvac_kw,
			lighting_kw=excluded.lighting_kw,
			mode=excluded.mode,
			last_price=excluded.last_price,
			last_duration_min=excluded.last_duration_min,
			updated_at=excluded.updated_at
	`

	selectBuildingColumns = `SELECT id, name, hvac_kw, lighting_kw, mode, last_price, last_duration_min, created_at, updated_at FROM buildings`

	selectBuildingSQL  = selectBuildingColumns + ` WHERE id = ?`
	selectBuildingsSQL = selectBuildingColumns + ` ORDER BY created_at ASC, id ASC`
	deleteBuildingSQL  = `DELETE FROM buildings WHERE id = ?`
)

// utcOrNow returns t in UTC, or the current UTC time when t is zero.
func utcOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// Save inserts or updates the building row keyed by ID.
func (r *BuildingSQLite) Save(ctx context.Context, b models.BuildingState) error {
	if b.ID == "" {
		return errors.New("save building: empty id")
	}
	updated := utcOrNow(b.UpdatedAt)
	created := b.CreatedAt
	if created.IsZero() {
		created = updated
	}

	_, err := conn(ctx, r.db).ExecContext(ctx, upsertBuildingSQL,
		b.ID,
		b.Name,
		float64(b.HVACPowerKW),
		float64(b.LightingPowerKW),
		b.Mode.String(),
		float64(b.LastPrice),
		int64(b.LastDurationMinutes),
		created.UTC(),
		updated,
	)
	if err != nil {
		return fmt.Errorf("save building %q: %w", b.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBuilding(row rowScanner) (models.BuildingState, error) {
	var (
		b    models.BuildingState
		mode string
	)
	if err := row.Scan(
		&b.ID,
		&b.Name,
		&b.HVACPowerKW,
		&b.LightingPowerKW,
		&mode,
		&b.LastPrice,
		&b.LastDurationMinutes,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return models.BuildingState{}, err
	}
	m, err := models.ParseMode(mode)
	if err != nil {
		return models.BuildingState{}, err
	}
	b.Mode = m
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

// Get fetches one building. Returns ErrNotFound when no row matches.
func (r *BuildingSQLite) Get(ctx context.Context, id string) (models.BuildingState, error) {
	b, err := scanBuilding(conn(ctx, r.db).QueryRowContext(ctx, selectBuildingSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.BuildingState{}, ErrNotFound
		}
		return models.BuildingState{}, fmt.Errorf("select building %q: %w", id, err)
	}
	return b, nil
}

// List returns every building, oldest first.
func (r *BuildingSQLite) List(ctx context.Context) ([]models.BuildingState, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, selectBuildingsSQL)
	if err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}
	defer rows.Close()

	out := make([]models.BuildingState, 0, 16)
	for rows.Next() {
		b, err := scanBuilding(rows)
		if err != nil {
			return nil, fmt.Errorf("scan building: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes one building. Returns ErrNotFound when no row matches.
func (r *BuildingSQLite) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, deleteBuildingSQL, id)
	if err != nil {
		return fmt.Errorf("delete building %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for building %q: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
