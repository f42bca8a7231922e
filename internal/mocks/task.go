package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/davicafu/hexaquery/internal/shared/infra/platform/db/memory"
	"github.com/davicafu/hexaquery/internal/shared/query"
	taskDomain "github.com/davicafu/hexaquery/internal/task/domain"
	"github.com/davicafu/hexaquery/internal/task/infra/outbound/filesystem"
)

// InMemoryTaskRepo simula TaskRepository sobre un slice.
type InMemoryTaskRepo struct {
	Tasks   []*taskDomain.Task
	Lists   int
	matcher memory.Matcher
	mu      sync.Mutex
}

var _ taskDomain.TaskRepository = (*InMemoryTaskRepo)(nil)

func NewInMemoryTaskRepo() *InMemoryTaskRepo {
	return &InMemoryTaskRepo{matcher: memory.NewMatcher(taskDomain.TaskTable)}
}

// --- Implementación de la interfaz TaskRepository ---

func (r *InMemoryTaskRepo) Create(ctx context.Context, t *taskDomain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index(t.ID) >= 0 {
		return taskDomain.ErrTaskAlreadyExists
	}
	r.Tasks = append(r.Tasks, t)
	return nil
}

func (r *InMemoryTaskRepo) Update(ctx context.Context, t *taskDomain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(t.ID)
	if i < 0 {
		return taskDomain.ErrTaskNotFound
	}
	r.Tasks[i] = t
	return nil
}

func (r *InMemoryTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*taskDomain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return nil, taskDomain.ErrTaskNotFound
	}
	// copia para que el llamador no mute el almacenado
	cp := *r.Tasks[i]
	return &cp, nil
}

func (r *InMemoryTaskRepo) List(ctx context.Context, scope query.Scope, page query.Page) ([]*taskDomain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lists++
	return memory.Select(r.matcher, r.Tasks, scope, page, filesystem.TaskRecord)
}

func (r *InMemoryTaskRepo) index(id uuid.UUID) int {
	for i, t := range r.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// MockTaskRepository permite programar errores con testify/mock.
type MockTaskRepository struct {
	mock.Mock
}

var _ taskDomain.TaskRepository = (*MockTaskRepository)(nil)

func (m *MockTaskRepository) Create(ctx context.Context, t *taskDomain.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, t *taskDomain.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*taskDomain.Task, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*taskDomain.Task)
	return t, args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, scope query.Scope, page query.Page) ([]*taskDomain.Task, error) {
	args := m.Called(ctx, scope, page)
	tasks, _ := args.Get(0).([]*taskDomain.Task)
	return tasks, args.Error(1)
}
