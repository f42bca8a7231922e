package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	sharedDB "github.com/davicafu/hexaquery/internal/shared/infra/platform/db"
	"github.com/davicafu/hexaquery/internal/shared/infra/platform/db/sqlbuilder"
	"github.com/davicafu/hexaquery/internal/shared/query"
	taskDomain "github.com/davicafu/hexaquery/internal/task/domain"
)

const taskColumns = "id, title, description, assignee_id, status, priority, begin_at, completed_at, created_at, updated_at"

// TaskRepoSQL implementa TaskRepository para SQLite y PostgreSQL.
type TaskRepoSQL struct {
	db      *sql.DB
	builder sqlbuilder.Builder
}

var _ taskDomain.TaskRepository = (*TaskRepoSQL)(nil)

func NewTaskRepoSQL(db *sql.DB, dialect sqlbuilder.Dialect) *TaskRepoSQL {
	return &TaskRepoSQL{db: db, builder: sqlbuilder.New(dialect, taskDomain.TaskTable)}
}

func (r *TaskRepoSQL) ph(n int) string {
	return r.builder.Dialect.Placeholder(n)
}

// ------------------ CRUD ------------------

func (r *TaskRepoSQL) Create(ctx context.Context, t *taskDomain.Task) error {
	holders := make([]string, 10)
	for i := range holders {
		holders[i] = r.ph(i + 1)
	}
	_, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO tasks (%s) VALUES (%s)`, taskColumns, strings.Join(holders, ", ")),
		t.ID.String(), t.Title, t.Description, t.AssigneeID.String(), string(t.Status), t.Priority,
		t.BeginAt, t.CompletedAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if sharedDB.IsUniqueViolation(err) {
			return taskDomain.ErrTaskAlreadyExists
		}
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// Update reescribe los campos mutables de la tarea.
func (r *TaskRepoSQL) Update(ctx context.Context, t *taskDomain.Task) error {
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE tasks SET title = %s, description = %s, status = %s, priority = %s,
		 begin_at = %s, completed_at = %s, updated_at = %s WHERE id = %s`,
			r.ph(1), r.ph(2), r.ph(3), r.ph(4), r.ph(5), r.ph(6), r.ph(7), r.ph(8)),
		t.Title, t.Description, string(t.Status), t.Priority, t.BeginAt, t.CompletedAt, t.UpdatedAt, t.ID.String(),
	)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return taskDomain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepoSQL) GetByID(ctx context.Context, id uuid.UUID) (*taskDomain.Task, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM tasks WHERE id = %s`, taskColumns, r.ph(1)), id.String())
	t, err := ScanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, taskDomain.ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TaskRepoSQL) List(ctx context.Context, scope query.Scope, page query.Page) ([]*taskDomain.Task, error) {
	return ListTasks(ctx, r.db, r.builder, "SELECT "+taskColumns+" FROM tasks", scope, page)
}

// ------------------ Helpers compartidos ------------------

// Scanner lo cumplen *sql.Row y *sql.Rows.
type Scanner interface {
	Scan(dest ...interface{}) error
}

// ScanTask lee una fila con el orden de columnas de taskColumns.
func ScanTask(s Scanner) (*taskDomain.Task, error) {
	var (
		t                    taskDomain.Task
		idStr, assigneeStr   string
		status               string
		priority             int64
		beginAt, completedAt sql.NullTime
	)
	if err := s.Scan(&idStr, &t.Title, &t.Description, &assigneeStr, &status, &priority,
		&beginAt, &completedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if t.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid UUID in DB: %w", err)
	}
	if t.AssigneeID, err = uuid.Parse(assigneeStr); err != nil {
		return nil, fmt.Errorf("invalid assignee UUID in DB: %w", err)
	}
	t.Status = taskDomain.TaskStatus(status)
	t.Priority = int(priority)
	t.BeginAt = utcPtr(beginAt)
	t.CompletedAt = utcPtr(completedAt)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

// ListTasks ejecuta base + scope + página. El scope vacío no consulta.
func ListTasks(ctx context.Context, db *sql.DB, b sqlbuilder.Builder, base string, scope query.Scope, page query.Page) ([]*taskDomain.Task, error) {
	tasks := []*taskDomain.Task{}
	if scope.Empty() {
		return tasks, nil
	}

	stmt, args, err := b.Select(base, scope, page)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		t, err := ScanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func utcPtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// ------------------ Inicialización de DB ------------------

// InitSchema crea la tabla tasks si no existe.
func InitSchema(ctx context.Context, db *sql.DB, dialect sqlbuilder.Dialect) error {
	timeType := "DATETIME"
	if dialect == sqlbuilder.Postgres {
		timeType = "TIMESTAMPTZ"
	}
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS tasks (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            assignee_id TEXT NOT NULL,
            status TEXT NOT NULL,
            priority INTEGER NOT NULL DEFAULT 0,
            begin_at %[1]s,
            completed_at %[1]s,
            created_at %[1]s NOT NULL,
            updated_at %[1]s NOT NULL
        )`, timeType))
	return err
}
