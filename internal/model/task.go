package model

import "time"

// Status is the lifecycle stage of a task on the board.
type Status string

const (
	StatusTodo  Status = "TODO"
	StatusDoing Status = "DOING"
	StatusDone  Status = "DONE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

// Priority is a display hint only, it has no scheduling effect.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          int64     `json:"id"`
	Owner       string    `json:"owner,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	DueDate     time.Time `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// Overdue reports whether the task's due date has passed relative to today.
// Done tasks are never overdue. Comparison is at date granularity.
func (t Task) Overdue(today time.Time) bool {
	return DateOf(t.DueDate).Before(DateOf(today)) && t.Status != StatusDone
}

// TaskInput carries the mutable fields for create and update. Zero values
// for status, priority and due date mean "apply the default".
type TaskInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	DueDate     time.Time `json:"due_date"`
}

// Board is the three-way partition of an owner's tasks by status.
// Group order mirrors the due-date ordering of the underlying list.
type Board struct {
	Todo  []Task `json:"todo"`
	Doing []Task `json:"doing"`
	Done  []Task `json:"done"`

	TodoCount  int       `json:"todo_count"`
	DoingCount int       `json:"doing_count"`
	DoneCount  int       `json:"done_count"`
	Today      time.Time `json:"today"`
	Query      string    `json:"query,omitempty"`
}

// Stats summarizes one owner's tasks for the stats endpoint.
type Stats struct {
	ByStatus map[Status]int `json:"by_status"`
	Overdue  int            `json:"overdue"`
	Total    int            `json:"total"`
}

// DateOf truncates a timestamp to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
