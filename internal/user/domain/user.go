package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User representa un usuario del sistema.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Login     string     `json:"login"`
	Email     string     `json:"email"`
	Age       int        `json:"age"`
	Admin     bool       `json:"admin"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	BannedAt  *time.Time `json:"banned_at,omitempty"`
}

// NewUser valida los datos de alta y fija ID y timestamps en UTC.
func NewUser(login, email string, age int, admin bool, now time.Time) (*User, error) {
	login = strings.TrimSpace(login)
	email = strings.TrimSpace(email)

	switch {
	case login == "":
		return nil, fmt.Errorf("%w: login is required", ErrInvalidUser)
	case !strings.Contains(email, "@"):
		return nil, fmt.Errorf("%w: email %q is not valid", ErrInvalidUser, email)
	case age < 0:
		return nil, fmt.Errorf("%w: age must be positive", ErrInvalidUser)
	}

	now = now.UTC()
	return &User{
		ID:        uuid.New(),
		Login:     login,
		Email:     email,
		Age:       age,
		Admin:     admin,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Banned indica si el usuario tiene baneo activo.
func (u *User) Banned() bool {
	return u.BannedAt != nil
}

// Ban marca el baneo y actualiza updated_at.
func (u *User) Ban(at time.Time) {
	at = at.UTC()
	u.BannedAt = &at
	u.UpdatedAt = at
}
