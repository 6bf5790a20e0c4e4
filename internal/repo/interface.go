package repo

import (
	"context"
	"time"

	"github.com/Homme-Noir/Taskflow/internal/model"
)

// TaskRepository is the owner-scoped task store. Every operation that reads
// or mutates an existing task takes the requesting owner and must not touch
// tasks belonging to anyone else; an ownership mismatch is reported as
// ErrorNotFound, indistinguishable from a missing id.
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id int64, owner string) (model.Task, error)
	List(ctx context.Context, owner, search string) ([]model.Task, error)
	Update(ctx context.Context, t model.Task) (model.Task, error)
	SetStatus(ctx context.Context, id int64, owner string, status model.Status) (model.Task, error)
	Delete(ctx context.Context, id int64, owner string) error
	Stats(ctx context.Context, owner string, today time.Time) (model.Stats, error)
	SaveIdempotencyKey(ctx context.Context, key, owner string, resourceID int64) error
	GetIdempotencyKey(ctx context.Context, key, owner string) (int64, error)
	DeleteStaleIdempotencyKeys(ctx context.Context, before time.Time) (int64, error)
}

// UserRepository stores user accounts.
type UserRepository interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	Get(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// SessionRepository stores refresh sessions.
type SessionRepository interface {
	Create(ctx context.Context, s model.Session) error
	Get(ctx context.Context, token string) (model.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
