package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/davicafu/hexaquery/internal/shared/query"
)

// ---------- Errores de dominio ----------
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidUser       = errors.New("invalid user")
)

// ---------- Interfaces (Ports) ----------

// UserRepository define las operaciones persistentes para User.
type UserRepository interface {
	// Debe devolver ErrUserAlreadyExists si el id o el login ya existen.
	Create(ctx context.Context, u *User) error

	// Debe devolver ErrUserNotFound si no existe.
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// List traduce el scope a la consulta del backend. Un scope vacío
	// (query.Scope.Empty) devuelve una lista vacía sin tocar la base de datos.
	List(ctx context.Context, scope query.Scope, page query.Page) ([]*User, error)
}
