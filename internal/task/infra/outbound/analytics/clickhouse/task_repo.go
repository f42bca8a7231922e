package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/davicafu/hexaquery/internal/shared/infra/platform/db/sqlbuilder"
	"github.com/davicafu/hexaquery/internal/shared/query"
	taskDomain "github.com/davicafu/hexaquery/internal/task/domain"
	"github.com/davicafu/hexaquery/internal/task/infra/outbound/db/sqlstore"
)

const taskColumns = "id, title, description, assignee_id, status, priority, begin_at, completed_at, created_at, updated_at"

// TaskRepoClickHouse guarda cada versión de una tarea como una fila nueva.
// La tabla es ReplacingMergeTree(updated_at) y las lecturas usan FINAL, así
// que solo se ve la última versión de cada id.
type TaskRepoClickHouse struct {
	db      *sql.DB
	builder sqlbuilder.Builder
}

var _ taskDomain.TaskRepository = (*TaskRepoClickHouse)(nil)

// NewTaskRepoClickHouse es el constructor. db se abre con db.OpenClickHouse.
func NewTaskRepoClickHouse(db *sql.DB) *TaskRepoClickHouse {
	return &TaskRepoClickHouse{db: db, builder: sqlbuilder.New(sqlbuilder.ClickHouse, taskDomain.TaskTable)}
}

func (r *TaskRepoClickHouse) insert(ctx context.Context, t *taskDomain.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.Title, t.Description, t.AssigneeID.String(), string(t.Status), int64(t.Priority),
		t.BeginAt, t.CompletedAt, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// Create no puede apoyarse en una clave única: comprueba antes de insertar.
func (r *TaskRepoClickHouse) Create(ctx context.Context, t *taskDomain.Task) error {
	if _, err := r.GetByID(ctx, t.ID); err == nil {
		return taskDomain.ErrTaskAlreadyExists
	} else if !errors.Is(err, taskDomain.ErrTaskNotFound) {
		return err
	}
	if err := r.insert(ctx, t); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// Update inserta una versión nueva.
func (r *TaskRepoClickHouse) Update(ctx context.Context, t *taskDomain.Task) error {
	if _, err := r.GetByID(ctx, t.ID); err != nil {
		return err
	}
	if err := r.insert(ctx, t); err != nil {
		return fmt.Errorf("failed to insert task version: %w", err)
	}
	return nil
}

func (r *TaskRepoClickHouse) GetByID(ctx context.Context, id uuid.UUID) (*taskDomain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks FINAL WHERE id = ?`, id.String())
	t, err := sqlstore.ScanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, taskDomain.ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TaskRepoClickHouse) List(ctx context.Context, scope query.Scope, page query.Page) ([]*taskDomain.Task, error) {
	return sqlstore.ListTasks(ctx, r.db, r.builder, "SELECT "+taskColumns+" FROM tasks FINAL", scope, page)
}

// InitSchema crea la tabla en ClickHouse si no existe.
func (r *TaskRepoClickHouse) InitSchema(ctx context.Context) error {
	// Se particiona por mes de creación y se ordena por id para que
	// ReplacingMergeTree colapse las versiones.
	query := `
		CREATE TABLE IF NOT EXISTS tasks (
			id           String,
			title        String,
			description  String,
			assignee_id  String,
			status       LowCardinality(String),
			priority     Int64,
			begin_at     Nullable(DateTime64(3, 'UTC')),
			completed_at Nullable(DateTime64(3, 'UTC')),
			created_at   DateTime64(3, 'UTC'),
			updated_at   DateTime64(3, 'UTC')
		) ENGINE = ReplacingMergeTree(updated_at)
		PARTITION BY toYYYYMM(created_at)
		ORDER BY id
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}
