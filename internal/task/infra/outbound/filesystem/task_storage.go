package filesystem

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/davicafu/hexaquery/internal/shared/infra/platform/db/memory"
	"github.com/davicafu/hexaquery/internal/shared/query"
	taskDomain "github.com/davicafu/hexaquery/internal/task/domain"
)

// JSONTaskStorage es un adaptador outbound que guarda las tareas en un fichero JSON.
// Los listados cargan el fichero y evalúan el scope con memory.Matcher.
type JSONTaskStorage struct {
	filePath string
	matcher  memory.Matcher
	mu       sync.Mutex // Mutex para evitar race conditions al leer/escribir el archivo.
}

var _ taskDomain.TaskRepository = (*JSONTaskStorage)(nil)

// NewJSONTaskStorage es el constructor.
func NewJSONTaskStorage(filePath string) *JSONTaskStorage {
	return &JSONTaskStorage{
		filePath: filePath,
		matcher:  memory.NewMatcher(taskDomain.TaskTable),
	}
}

// Create añade una nueva tarea al fichero JSON.
// Si el fichero no existe, lo crea.
func (s *JSONTaskStorage) Create(ctx context.Context, task *taskDomain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.getAllTasksFromFile()
	if err != nil {
		return err
	}
	if index(tasks, task.ID) >= 0 {
		return taskDomain.ErrTaskAlreadyExists
	}
	return s.writeAll(append(tasks, task))
}

// Update reemplaza la tarea con el mismo ID.
func (s *JSONTaskStorage) Update(ctx context.Context, task *taskDomain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.getAllTasksFromFile()
	if err != nil {
		return err
	}
	i := index(tasks, task.ID)
	if i < 0 {
		return taskDomain.ErrTaskNotFound
	}
	tasks[i] = task
	return s.writeAll(tasks)
}

func (s *JSONTaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*taskDomain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.getAllTasksFromFile()
	if err != nil {
		return nil, err
	}
	if i := index(tasks, id); i >= 0 {
		return tasks[i], nil
	}
	return nil, taskDomain.ErrTaskNotFound // Reutilizamos el error de dominio
}

func (s *JSONTaskStorage) List(ctx context.Context, scope query.Scope, page query.Page) ([]*taskDomain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.getAllTasksFromFile()
	if err != nil {
		return nil, err
	}
	return memory.Select(s.matcher, tasks, scope, page, TaskRecord)
}

// TaskRecord proyecta una Task a sus columnas.
func TaskRecord(t *taskDomain.Task) memory.Record {
	return memory.Record{
		"id":           t.ID,
		"title":        t.Title,
		"description":  t.Description,
		"assignee_id":  t.AssigneeID,
		"status":       string(t.Status),
		"priority":     t.Priority,
		"begin_at":     t.BeginAt,
		"completed_at": t.CompletedAt,
		"created_at":   t.CreatedAt,
		"updated_at":   t.UpdatedAt,
	}
}

// ---------- Helpers no concurrentes ----------

func index(tasks []*taskDomain.Task, id uuid.UUID) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *JSONTaskStorage) writeAll(tasks []*taskDomain.Task) error {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return err
	}
	// Escribir (sobrescribiendo) el fichero completo.
	return os.WriteFile(s.filePath, data, 0644)
}

func (s *JSONTaskStorage) getAllTasksFromFile() ([]*taskDomain.Task, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		// Si el fichero no existe, devolvemos una lista vacía sin error.
		if os.IsNotExist(err) {
			return []*taskDomain.Task{}, nil
		}
		return nil, err
	}

	// Si el fichero está vacío, también devolvemos una lista vacía.
	if len(data) == 0 {
		return []*taskDomain.Task{}, nil
	}

	var tasks []*taskDomain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}
