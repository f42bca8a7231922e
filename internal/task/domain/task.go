package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Statuses en el orden en que se documentan.
func Statuses() []string {
	return []string{string(TaskPending), string(TaskCompleted), string(TaskFailed)}
}

type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  uuid.UUID  `json:"assignee_id"`
	Status      TaskStatus `json:"status"`
	Priority    int        `json:"priority"`
	BeginAt     *time.Time `json:"begin_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask crea una tarea pendiente. beginAt puede ser nil.
func NewTask(title, description string, assigneeID uuid.UUID, priority int, beginAt *time.Time, now time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if priority < 0 {
		return nil, fmt.Errorf("%w: priority must be positive", ErrInvalidTask)
	}

	now = now.UTC()
	t := &Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		AssigneeID:  assigneeID,
		Status:      TaskPending,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if beginAt != nil {
		b := beginAt.UTC()
		t.BeginAt = &b
	}
	return t, nil
}

// --- Métodos de dominio ---

// Complete solo es válido desde pending.
func (t *Task) Complete(now time.Time) error {
	if t.Status != TaskPending {
		return ErrTaskCannotComplete
	}
	now = now.UTC()
	t.Status = TaskCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	return nil
}

func (t *Task) Fail(now time.Time) {
	t.Status = TaskFailed
	t.UpdatedAt = now.UTC()
}
