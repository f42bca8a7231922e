package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/hexaquery/internal/mocks"
	"github.com/davicafu/hexaquery/internal/task/application"
	taskDomain "github.com/davicafu/hexaquery/internal/task/domain"
)

type taskHTTPResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

type listResponse struct {
	Data []taskHTTPResponse `json:"data"`
	Meta struct {
		Count int `json:"count"`
		Limit int `json:"limit"`
	} `json:"meta"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

var alice = uuid.MustParse("7d7c6a43-1b2c-4b8e-9a51-2f8e1c0f1a01")

func newRouter(t *testing.T) (*gin.Engine, *mocks.InMemoryTaskRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := mocks.NewInMemoryTaskRepo()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seeds := []struct {
		title    string
		assignee uuid.UUID
		priority int
	}{
		{"Write docs", alice, 1},
		{"Deploy api", uuid.New(), 3},
		{"Fix login", alice, 5},
	}
	for i, s := range seeds {
		task, err := taskDomain.NewTask(s.title, "", s.assignee, s.priority, nil, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		require.NoError(t, repo.Create(context.Background(), task))
	}

	scopes, err := taskDomain.CompileQueries()
	require.NoError(t, err)
	service := application.NewTaskService(repo, scopes, nil, time.Minute, zap.NewNop())

	r := gin.New()
	RegisterTaskRoutes(r, NewTaskHandler(service))
	return r, repo
}

func do(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestListTasks_HTTP(t *testing.T) {
	r, _ := newRouter(t)

	tests := []struct {
		name     string
		target   string
		expected []string
	}{
		{"sin parámetros", "/tasks", []string{"Fix login", "Deploy api", "Write docs"}},
		{"estado y orden", "/tasks?filter[status]=pending&sort=title", []string{"Deploy api", "Fix login", "Write docs"}},
		{"rango", "/tasks?range[priority]=2,5&sort=-priority", []string{"Fix login", "Deploy api"}},
		{"búsqueda", "/tasks?search[title]=LOG", []string{"Fix login"}},
		{"por usuario", "/users/" + alice.String() + "/tasks?sort=priority", []string{"Write docs", "Fix login"}},
		{"paginación", "/tasks?sort=priority&limit=1&offset=2", []string{"Fix login"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, http.MethodGet, tt.target, "")

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var resp listResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			got := make([]string, len(resp.Data))
			for i, task := range resp.Data {
				got[i] = task.Title
			}
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, len(tt.expected), resp.Meta.Count)
		})
	}
}

func TestListTasks_HTTP_BadRequest(t *testing.T) {
	r, repo := newRouter(t)

	tests := []struct {
		name    string
		target  string
		message string
	}{
		{"estado no permitido", "/tasks?filter[status]=archived", "value archived is not allowed for filter status"},
		{"ventana inválida", "/tasks?range[window]=yesterday,today", "unable to create a range between values 'yesterday' and 'today' for window"},
		{"campo no ordenable", "/tasks?sort=description", `the "description" field is not sortable`},
		{"usuario inválido", "/users/nope/tasks", "invalid user id"},
		{"prioridad no numérica", "/tasks?filter[priority]=high", "invalid value 'high' for filter priority"},
		{"asignado no uuid", "/tasks?filter[assignee_id]=bob", "invalid value 'bob' for filter assignee_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, http.MethodGet, tt.target, "")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error.Message, tt.message)
		})
	}
	assert.Zero(t, repo.Lists)
}

func TestCreateAndCompleteTask_HTTP(t *testing.T) {
	// Arrange
	r, _ := newRouter(t)
	body := `{"title":"Ship it","assignee_id":"` + alice.String() + `","priority":2,"begin_at":"2024-03-01T09:00:00Z"}`

	// Act
	rec := do(r, http.MethodPost, "/tasks", body)

	// Assert
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Data taskHTTPResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "pending", created.Data.Status)

	rec = do(r, http.MethodPost, "/tasks/"+created.Data.ID+"/complete", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var completed struct {
		Data taskHTTPResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &completed))
	assert.Equal(t, "completed", completed.Data.Status)

	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/tasks/"+created.Data.ID+"/complete", "").Code)
}

func TestTask_HTTP_Errors(t *testing.T) {
	r, _ := newRouter(t)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/tasks", `{"description":"no title"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/tasks/not-a-uuid", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/tasks/"+uuid.NewString(), "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/tasks/"+uuid.NewString()+"/complete", "").Code)
}

func TestDescribeTasks_HTTP(t *testing.T) {
	r, _ := newRouter(t)

	rec := do(r, http.MethodGet, "/meta/tasks", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Resource     string `json:"resource"`
			Capabilities []struct {
				Capability string   `json:"capability"`
				Fields     []string `json:"fields"`
				Predicates []struct {
					Name          string   `json:"name"`
					AllowedValues []string `json:"allowed_values"`
				} `json:"predicates"`
			} `json:"capabilities"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tasks", resp.Data.Resource)
	require.NotEmpty(t, resp.Data.Capabilities)
	filter := resp.Data.Capabilities[0]
	assert.Equal(t, "filter", filter.Capability)
	assert.Contains(t, filter.Fields, "priority")
	require.NotEmpty(t, filter.Predicates)
	assert.Equal(t, "status", filter.Predicates[0].Name)
	assert.Equal(t, []string{"pending", "completed", "failed"}, filter.Predicates[0].AllowedValues)
}
