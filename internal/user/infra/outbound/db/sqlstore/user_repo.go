package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	sharedDB "github.com/davicafu/hexaquery/internal/shared/infra/platform/db"
	"github.com/davicafu/hexaquery/internal/shared/infra/platform/db/sqlbuilder"
	"github.com/davicafu/hexaquery/internal/shared/query"
	"github.com/davicafu/hexaquery/internal/user/domain"
)

const userColumns = "id, login, email, age, admin, created_at, updated_at, banned_at"

// UserRepoSQL sirve para SQLite y PostgreSQL; solo cambian los placeholders
// y el DDL.
type UserRepoSQL struct {
	db      *sql.DB
	builder sqlbuilder.Builder
}

var _ domain.UserRepository = (*UserRepoSQL)(nil)

func NewUserRepoSQL(db *sql.DB, dialect sqlbuilder.Dialect) *UserRepoSQL {
	return &UserRepoSQL{db: db, builder: sqlbuilder.New(dialect, domain.UserTable)}
}

func (r *UserRepoSQL) placeholders(n int) string {
	holders := make([]string, n)
	for i := range holders {
		holders[i] = r.builder.Dialect.Placeholder(i + 1)
	}
	return strings.Join(holders, ",")
}

// ------------------ Métodos ------------------

func (r *UserRepoSQL) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO users (%s) VALUES (%s)`, userColumns, r.placeholders(8)),
		u.ID.String(), u.Login, u.Email, u.Age, u.Admin, u.CreatedAt, u.UpdatedAt, u.BannedAt,
	)
	if err != nil {
		if sharedDB.IsUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *UserRepoSQL) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM users WHERE id = %s`, userColumns, r.builder.Dialect.Placeholder(1)),
		id.String(),
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// List ejecuta el scope. El scope vacío no llega a la base de datos.
func (r *UserRepoSQL) List(ctx context.Context, scope query.Scope, page query.Page) ([]*domain.User, error) {
	users := []*domain.User{}
	if scope.Empty() {
		return users, nil
	}

	stmt, args, err := r.builder.Select("SELECT "+userColumns+" FROM users", scope, page)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ------------------ Helpers ------------------

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(s scanner) (*domain.User, error) {
	var (
		u        domain.User
		idStr    string
		bannedAt sql.NullTime
	)
	if err := s.Scan(&idStr, &u.Login, &u.Email, &u.Age, &u.Admin, &u.CreatedAt, &u.UpdatedAt, &bannedAt); err != nil {
		return nil, err
	}

	parsedID, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in DB: %w", err)
	}
	u.ID = parsedID
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	if bannedAt.Valid {
		t := bannedAt.Time.UTC()
		u.BannedAt = &t
	}
	return &u, nil
}
