package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Homme-Noir/Taskflow/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

const taskColumns = "id, owner_id, title, description, status, priority, due_date, created_at"

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{
		pool: pool,
	}
}

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(
		&t.ID, &t.Owner, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt,
	)
	return t, err
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	created, err := scanTask(r.pool.QueryRow(ctx, `
		INSERT INTO tasks (owner_id, title, description, status, priority, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+taskColumns+`
	`, t.Owner, t.Title, t.Description, t.Status, t.Priority, t.DueDate))
	return created, r.mapError(err)
}

func (r *TaskRepo) Get(ctx context.Context, id int64, owner string) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`, id, owner))

	if err == pgx.ErrNoRows {
		return t, ErrorNotFound
	}
	return t, err
}

// escapeLike escapes pattern metacharacters so the term matches as a literal
// substring inside ILIKE, not as a wildcard.
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

// List returns the owner's tasks ordered ascending by due date, ties broken
// by insertion order. A non-empty search narrows to tasks whose title or
// description contains the term case-insensitively.
func (r *TaskRepo) List(ctx context.Context, owner, search string) ([]model.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE owner_id = $1
		  AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		ORDER BY due_date ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, owner, escapeLike(search))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update replaces all mutable fields in one statement. There is no version
// check: concurrent updates to the same id are last-write-wins.
func (r *TaskRepo) Update(ctx context.Context, t model.Task) (model.Task, error) {
	updated, err := scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = $3, description = $4, status = $5, priority = $6, due_date = $7
		WHERE id = $1 AND owner_id = $2
		RETURNING `+taskColumns+`
	`, t.ID, t.Owner, t.Title, t.Description, t.Status, t.Priority, t.DueDate))

	if err == pgx.ErrNoRows {
		return updated, ErrorNotFound
	}
	return updated, err
}

func (r *TaskRepo) SetStatus(ctx context.Context, id int64, owner string, status model.Status) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET status = $3
		WHERE id = $1 AND owner_id = $2
		RETURNING `+taskColumns+`
	`, id, owner, status))

	if err == pgx.ErrNoRows {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) Delete(ctx context.Context, id int64, owner string) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1 AND owner_id = $2", id, owner)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *TaskRepo) Stats(ctx context.Context, owner string, today time.Time) (model.Stats, error) {
	stats := model.Stats{ByStatus: make(map[model.Status]int)}

	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM tasks
		WHERE owner_id = $1
		GROUP BY status
	`, owner)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var s model.Status
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return stats, err
		}
		stats.ByStatus[s] = n
		stats.Total += n
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM tasks
		WHERE owner_id = $1 AND due_date < $2 AND status <> 'DONE'
	`, owner, model.DateOf(today)).Scan(&stats.Overdue)
	return stats, err
}

func (r *TaskRepo) SaveIdempotencyKey(ctx context.Context, key, owner string, resourceID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (key, owner_id, resource_id) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO NOTHING
	`, key, owner, resourceID)
	return err
}

func (r *TaskRepo) GetIdempotencyKey(ctx context.Context, key, owner string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		SELECT resource_id FROM idempotency_keys WHERE key = $1 AND owner_id = $2
	`, key, owner).Scan(&id)

	if err == pgx.ErrNoRows {
		return 0, ErrorNotFound
	}
	return id, err
}

// DeleteStaleIdempotencyKeys removes keys recorded before the cutoff. Called
// by the janitor; keys only matter for the retry window of one create.
func (r *TaskRepo) DeleteStaleIdempotencyKeys(ctx context.Context, before time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM idempotency_keys WHERE created_at < $1", before)
	return cmd.RowsAffected(), err
}

func (r *TaskRepo) mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return ErrorConflict
		}
	}
	return err
}
