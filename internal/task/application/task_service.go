package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/hexaquery/internal/shared/domain"
	sharedCache "github.com/davicafu/hexaquery/internal/shared/infra/platform/cache"
	sharedUtils "github.com/davicafu/hexaquery/internal/shared/infra/utils"
	"github.com/davicafu/hexaquery/internal/shared/query"
	taskDomain "github.com/davicafu/hexaquery/internal/task/domain"
)

const (
	retryAttempts = 3
	retryDelay    = 100 * time.Millisecond
	taskCacheTTL  = 120
)

// TaskService define los casos de uso relacionados con Task.
// Incorpora repositorio, scopes de consulta, caché y logger.
type TaskService struct {
	repo   taskDomain.TaskRepository
	scopes *query.Scopes
	cache  sharedCache.Cache
	lists  *sharedCache.ListCache
	log    *zap.Logger
	now    func() time.Time
}

// NewTaskService es el constructor para el servicio de tareas. cache puede ser nil.
func NewTaskService(repo taskDomain.TaskRepository, scopes *query.Scopes, cache sharedCache.Cache, listTTL time.Duration, log *zap.Logger) *TaskService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &TaskService{
		repo:   repo,
		scopes: scopes,
		cache:  cache,
		log:    log,
		now:    time.Now,
	}
	if cache != nil {
		s.lists = sharedCache.NewListCache(cache, listTTL, log)
	}
	return s
}

func transient(err error) bool {
	return !errors.Is(err, taskDomain.ErrTaskNotFound) &&
		!errors.Is(err, query.ErrInvalidParam) &&
		!errors.Is(err, context.Canceled)
}

type CreateTaskInput struct {
	Title       string
	Description string
	AssigneeID  uuid.UUID
	Priority    int
	BeginAt     *time.Time
}

// CreateTask crea una tarea pendiente y actualiza la caché.
func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput) (*taskDomain.Task, error) {
	task, err := taskDomain.NewTask(in.Title, in.Description, in.AssigneeID, in.Priority, in.BeginAt, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, task); err != nil {
		s.log.Error("Failed to create task", zap.Error(err))
		return nil, err
	}
	s.written(ctx, task)
	return task, nil
}

// CompleteTask marca la tarea como completada. Solo desde pending.
func (s *TaskService) CompleteTask(ctx context.Context, id uuid.UUID) (*taskDomain.Task, error) {
	return s.transition(ctx, id, func(t *taskDomain.Task) error {
		return t.Complete(s.now())
	})
}

// FailTask marca la tarea como fallida.
func (s *TaskService) FailTask(ctx context.Context, id uuid.UUID) (*taskDomain.Task, error) {
	return s.transition(ctx, id, func(t *taskDomain.Task) error {
		t.Fail(s.now())
		return nil
	})
}

// transition lee siempre del repositorio, nunca de la caché. Si la tarea ya
// no existe o la escritura falla, se descarta la entrada por id.
func (s *TaskService) transition(ctx context.Context, id uuid.UUID, apply func(*taskDomain.Task) error) (*taskDomain.Task, error) {
	task, err := s.fetch(ctx, id)
	if err != nil {
		if errors.Is(err, taskDomain.ErrTaskNotFound) {
			s.forget(ctx, id)
		}
		return nil, err
	}
	if err := apply(task); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, task); err != nil {
		s.log.Error("Failed to update task", zap.String("task_id", id.String()), zap.Error(err))
		s.forget(ctx, id)
		return nil, err
	}
	s.written(ctx, task)
	return task, nil
}

// GetTask obtiene una tarea, usando el patrón cache-aside con reintentos.
func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*taskDomain.Task, error) {
	// 1. Intentar obtener de la caché
	if s.cache != nil {
		var t taskDomain.Task
		if hit, _ := s.cache.Get(ctx, cacheKeyByID(id), &t); hit {
			return &t, nil
		}
	}

	// 2. Si es 'miss', ir al repositorio con reintentos
	task, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3. Actualizar caché en segundo plano para la próxima vez
	sharedCache.AsyncCacheSet(ctx, s.cache, cacheKeyByID(task.ID), task, taskCacheTTL, s.log)
	return task, nil
}

func (s *TaskService) fetch(ctx context.Context, id uuid.UUID) (*taskDomain.Task, error) {
	var task *taskDomain.Task
	err := sharedUtils.Retry(ctx, retryAttempts, retryDelay, transient, func() error {
		var err error
		task, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, taskDomain.ErrTaskNotFound) {
			s.log.Warn("Task not found", zap.String("task_id", id.String()))
		} else {
			s.log.Error("Failed to fetch task", zap.String("task_id", id.String()), zap.Error(err))
		}
		return nil, err
	}
	return task, nil
}

// ListTasks aplica los parámetros de consulta sobre todas las tareas.
func (s *TaskService) ListTasks(ctx context.Context, params query.RawParams, page query.Page) ([]*taskDomain.Task, error) {
	return s.list(ctx, query.NewScope(taskDomain.Resource), params, page)
}

// ListTasksForUser parte del scope de las tareas asignadas al usuario.
func (s *TaskService) ListTasksForUser(ctx context.Context, userID uuid.UUID, params query.RawParams, page query.Page) ([]*taskDomain.Task, error) {
	base := query.NewScope(taskDomain.Resource).Where(sharedDomain.Eq("assignee_id", userID.String()))
	return s.list(ctx, base, params, page)
}

func (s *TaskService) list(ctx context.Context, base query.Collection, params query.RawParams, page query.Page) ([]*taskDomain.Task, error) {
	c, err := s.scopes.Apply(base, params)
	if err != nil {
		s.log.Warn("Rejected tasks query", zap.Any("params", params), zap.Error(err))
		return nil, err
	}
	scope, err := query.AsScope(c)
	if err != nil {
		return nil, err
	}
	page = page.Normalize()

	var key string
	if s.lists != nil {
		key = s.lists.Key(ctx, taskDomain.Resource, scope.Key(), fmt.Sprintf("limit=%d&offset=%d", page.Limit, page.Offset))
		var cached []*taskDomain.Task
		if s.lists.Get(ctx, key, &cached) {
			return cached, nil
		}
	}

	var tasks []*taskDomain.Task
	err = sharedUtils.Retry(ctx, retryAttempts, retryDelay, transient, func() error {
		var err error
		tasks, err = s.repo.List(ctx, scope, page)
		return err
	})
	if err != nil {
		s.log.Error("Failed to list tasks", zap.Stringer("scope", scope), zap.Error(err))
		return nil, err
	}

	if s.lists != nil {
		s.lists.Put(ctx, key, tasks)
	}
	return tasks, nil
}

// DescribeQueries documenta las capacidades de listado de /tasks.
func (s *TaskService) DescribeQueries() []query.Description {
	return s.scopes.Describe()
}

// ---------- Helpers ----------

// written invalida los listados y refresca la entrada por id.
func (s *TaskService) written(ctx context.Context, t *taskDomain.Task) {
	if s.lists != nil {
		s.lists.Invalidate(ctx, taskDomain.Resource)
	}
	sharedCache.AsyncCacheSet(ctx, s.cache, cacheKeyByID(t.ID), t, taskCacheTTL, s.log)
}

// forget borra la entrada por id de forma síncrona.
func (s *TaskService) forget(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyByID(id)); err != nil {
		s.log.Warn("Failed to drop cached task", zap.String("task_id", id.String()), zap.Error(err))
	}
}

func cacheKeyByID(id uuid.UUID) string {
	return fmt.Sprintf("task:id:%s", id.String())
}
