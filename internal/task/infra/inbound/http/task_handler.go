package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/hexaquery/internal/shared/infra/inbound/httpquery"
	"github.com/davicafu/hexaquery/internal/shared/query"
	"github.com/davicafu/hexaquery/internal/task/application"
	taskDomain "github.com/davicafu/hexaquery/internal/task/domain"
	"github.com/davicafu/hexaquery/pkg/utils"
)

// TaskHandler encapsula los endpoints HTTP relacionados con Task.
type TaskHandler struct {
	service *application.TaskService
}

// NewTaskHandler crea un nuevo TaskHandler.
func NewTaskHandler(service *application.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// --- Handlers CRUD ---

// CreateTask endpoint POST /tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		AssigneeID  uuid.UUID  `json:"assignee_id" binding:"required"`
		Priority    int        `json:"priority" binding:"gte=0"`
		BeginAt     *time.Time `json:"begin_at"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	task, err := h.service.CreateTask(c.Request.Context(), application.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		Priority:    req.Priority,
		BeginAt:     req.BeginAt,
	})
	if err != nil {
		sendTaskError(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusCreated, task)
}

// GetTask endpoint GET /tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.service.GetTask(c.Request.Context(), id)
	if err != nil {
		sendTaskError(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusOK, task)
}

// CompleteTask endpoint POST /tasks/:id/complete
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.service.CompleteTask(c.Request.Context(), id)
	if err != nil {
		sendTaskError(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusOK, task)
}

// FailTask endpoint POST /tasks/:id/fail
func (h *TaskHandler) FailTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.service.FailTask(c.Request.Context(), id)
	if err != nil {
		sendTaskError(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusOK, task)
}

// --- Listados ---

// ListTasks endpoint GET /tasks?filter[status]=pending&range[window]=2024-01-01,2024-02-01&sort=-priority
func (h *TaskHandler) ListTasks(c *gin.Context) {
	h.list(c, func(params query.RawParams, page query.Page) ([]*taskDomain.Task, error) {
		return h.service.ListTasks(c.Request.Context(), params, page)
	})
}

// ListUserTasks endpoint GET /users/:id/tasks, mismos parámetros que /tasks.
func (h *TaskHandler) ListUserTasks(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid user id")
		return
	}
	h.list(c, func(params query.RawParams, page query.Page) ([]*taskDomain.Task, error) {
		return h.service.ListTasksForUser(c.Request.Context(), userID, params, page)
	})
}

func (h *TaskHandler) list(c *gin.Context, run func(query.RawParams, query.Page) ([]*taskDomain.Task, error)) {
	params, err := httpquery.Extract(c)
	if err != nil {
		utils.SendError(c, httpquery.StatusFor(err), err.Error())
		return
	}
	page, err := httpquery.PageFrom(c)
	if err != nil {
		utils.SendError(c, httpquery.StatusFor(err), err.Error())
		return
	}

	tasks, err := run(params, page)
	if err != nil {
		utils.SendError(c, httpquery.StatusFor(err), err.Error())
		return
	}

	page = page.Normalize()
	utils.SendList(c, tasks, utils.ListMeta{Count: len(tasks), Limit: page.Limit, Offset: page.Offset})
}

// DescribeTasks endpoint GET /meta/tasks
func (h *TaskHandler) DescribeTasks(c *gin.Context) {
	utils.SendSuccess(c, http.StatusOK, gin.H{
		"resource":     taskDomain.Resource,
		"capabilities": h.service.DescribeQueries(),
		"max_limit":    query.MaxLimit,
	})
}

// ---------------- Helpers ----------------

func taskID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid task id")
		return uuid.Nil, false
	}
	return id, true
}

func sendTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, taskDomain.ErrInvalidTask):
		utils.SendBadRequest(c, err.Error())
	case errors.Is(err, taskDomain.ErrTaskNotFound):
		utils.SendNotFound(c, "task not found")
	case errors.Is(err, taskDomain.ErrTaskAlreadyExists), errors.Is(err, taskDomain.ErrTaskCannotComplete):
		utils.SendConflict(c, err.Error())
	default:
		utils.SendInternalServerError(c, err.Error())
	}
}
