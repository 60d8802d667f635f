package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lahn92/AquaTimer/internal/models"
)

// Prefs is a namespaced key-value store, the shape the firmware's
// Preferences API had. Reads fall back to the provided default when the
// key is absent or unreadable; writes report their error so callers can
// log or retry.
type Prefs interface {
	GetString(ctx context.Context, namespace, key, def string) string
	PutString(ctx context.Context, namespace, key, value string) error
	GetInt(ctx context.Context, namespace, key string, def int) int
	PutInt(ctx context.Context, namespace, key string, value int) error
}

type EventRepo interface {
	Append(ctx context.Context, e models.LightEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.LightEvent, error)
}

type Repository struct {
	Prefs  Prefs
	Events EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Prefs:  NewPrefsSQLite(db),
		Events: NewEventSQLite(db),
	}
}
