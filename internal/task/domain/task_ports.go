package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/davicafu/hexaquery/internal/shared/query"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskAlreadyExists  = errors.New("task already exists")
	ErrInvalidTask        = errors.New("invalid task")
	ErrTaskCannotComplete = errors.New("task cannot be marked as completed")
)

// --- Repositorio de Tasks ---
type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	// Debe devolver ErrTaskNotFound si no existe.
	Update(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	// List ejecuta el scope; el scope vacío devuelve una lista vacía.
	List(ctx context.Context, scope query.Scope, page query.Page) ([]*Task, error)
}
