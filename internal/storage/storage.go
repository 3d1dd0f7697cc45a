package storage

import (
	"context"
	"errors"

	"github.com/xaenox/school-bot/internal/models"
)

// ErrUserNotFound is returned by GetUser when no profile is registered for the id.
var ErrUserNotFound = errors.New("user not found")

// Storage is the user registry. A successful UpsertUser must be visible to the
// next GetUser for the same id. Implementations must be safe for concurrent use.
type Storage interface {
	GetUser(ctx context.Context, id string) (*models.UserProfile, error)
	UpsertUser(ctx context.Context, id string, grade, classNumber int) error
	Ping(ctx context.Context) error
	Close() error
}
