package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"building_energy/internal/models"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("not found")

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
}

type BuildingRepo interface {
	Save(ctx context.Context, b models.BuildingState) error
	Get(ctx context.Context, id string) (models.BuildingState, error)
	List(ctx context.Context) ([]models.BuildingState, error)
	Delete(ctx context.Context, id string) error
}

// EventFilter narrows List results. Zero values mean "no constraint".
type EventFilter struct {
	From       time.Time
	To         time.Time
	Type       string
	BuildingID string
}

type EventRepo interface {
	Append(ctx context.Context, e models.ControlEvent) error
	List(ctx context.Context, f EventFilter) ([]models.ControlEvent, error)
}

type Repository struct {
	Tx        Transactor
	Buildings BuildingRepo
	Events    EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Tx:        NewSQLTransactor(db),
		Buildings: NewBuildingSQLite(db),
		Events:    NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
