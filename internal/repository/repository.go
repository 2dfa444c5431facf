package repository

import (
	"context"
	"database/sql"
	"time"

	"hvac/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

type StateRepo interface {
	Save(ctx context.Context, s models.ControllerState) error
	Load(ctx context.Context) (models.ControllerState, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.ControllerEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.ControllerEvent, error)
}

type Repository struct {
	StateRepo StateRepo
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo: NewStateSQLite(db),
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
