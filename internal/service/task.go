package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Homme-Noir/Taskflow/internal/model"
	"github.com/Homme-Noir/Taskflow/internal/repo"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
)

type TaskService struct {
	repo repo.TaskRepository
	now  func() time.Time
}

// NewTaskService wires the store and a clock. The clock is injected so the
// "today" used for due-date defaulting and overdue checks is fixable in tests;
// pass nil for wall-clock time.
func NewTaskService(r repo.TaskRepository, now func() time.Time) *TaskService {
	if now == nil {
		now = time.Now
	}
	return &TaskService{repo: r, now: now}
}

func (s *TaskService) Create(ctx context.Context, owner string, in model.TaskInput, idempKey string) (model.Task, error) {
	t, err := s.normalize(owner, in)
	if err != nil {
		return t, err
	}

	if idempKey != "" {
		if existingID, err := s.repo.GetIdempotencyKey(ctx, idempKey, owner); err == nil {
			return s.repo.Get(ctx, existingID, owner)
		}
	}

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return created, err
	}

	if idempKey != "" {
		s.repo.SaveIdempotencyKey(ctx, idempKey, owner, created.ID)
	}

	return created, nil
}

func (s *TaskService) Get(ctx context.Context, id int64, owner string) (model.Task, error) {
	return s.repo.Get(ctx, id, owner)
}

// Update replaces all mutable fields of the task in one atomic write.
func (s *TaskService) Update(ctx context.Context, id int64, owner string, in model.TaskInput) (model.Task, error) {
	t, err := s.normalize(owner, in)
	if err != nil {
		return t, err
	}
	t.ID = id
	return s.repo.Update(ctx, t)
}

// SetStatus moves a task to any of the three valid states, regardless of its
// current state. An unrecognized target status is a silent no-op: the task is
// returned unchanged with no error, which keeps retried transitions from the
// UI harmless.
func (s *TaskService) SetStatus(ctx context.Context, id int64, owner string, status model.Status) (model.Task, error) {
	if !status.Valid() {
		return s.repo.Get(ctx, id, owner)
	}
	return s.repo.SetStatus(ctx, id, owner, status)
}

func (s *TaskService) Delete(ctx context.Context, id int64, owner string) error {
	return s.repo.Delete(ctx, id, owner)
}

// Board lists the owner's tasks, optionally narrowed by search, and
// partitions them by status. Partitioning is a stable filter: each group
// keeps the due-date order of the underlying list.
func (s *TaskService) Board(ctx context.Context, owner, search string) (model.Board, error) {
	search = strings.TrimSpace(search)

	board := model.Board{
		Todo:  []model.Task{},
		Doing: []model.Task{},
		Done:  []model.Task{},
		Today: model.DateOf(s.now()),
		Query: search,
	}

	tasks, err := s.repo.List(ctx, owner, search)
	if err != nil {
		return board, err
	}

	for _, t := range tasks {
		switch t.Status {
		case model.StatusTodo:
			board.Todo = append(board.Todo, t)
		case model.StatusDoing:
			board.Doing = append(board.Doing, t)
		case model.StatusDone:
			board.Done = append(board.Done, t)
		}
	}

	board.TodoCount = len(board.Todo)
	board.DoingCount = len(board.Doing)
	board.DoneCount = len(board.Done)
	return board, nil
}

func (s *TaskService) Stats(ctx context.Context, owner string) (model.Stats, error) {
	return s.repo.Stats(ctx, owner, s.now())
}

// normalize validates the input and applies the documented defaults:
// status TODO, priority MEDIUM, due date today.
func (s *TaskService) normalize(owner string, in model.TaskInput) (model.Task, error) {
	t := model.Task{
		Owner:       owner,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
	}

	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.DueDate.IsZero() {
		t.DueDate = model.DateOf(s.now())
	}

	if t.Title == "" {
		return t, ErrValidation
	}
	if !t.Status.Valid() || !t.Priority.Valid() {
		return t, ErrValidation
	}
	return t, nil
}
