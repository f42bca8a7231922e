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
	"github.com/davicafu/hexaquery/internal/user/application"
	"github.com/davicafu/hexaquery/internal/user/domain"
)

// userHTTPResponse define el formato que esperamos en las respuestas JSON
type userHTTPResponse struct {
	ID    string `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

type listResponse struct {
	Data []userHTTPResponse `json:"data"`
	Meta struct {
		Count  int `json:"count"`
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	} `json:"meta"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func newRouter(t *testing.T) (*gin.Engine, *mocks.InMemoryUserRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := mocks.NewInMemoryUserRepo()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, login := range []string{"ana", "bob", "carla"} {
		u, err := domain.NewUser(login, login+"@example.com", 20+i*10, i == 0, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		require.NoError(t, repo.Create(context.Background(), u))
	}

	scopes, err := domain.CompileQueries()
	require.NoError(t, err)
	service := application.NewUserService(repo, scopes, nil, time.Minute, zap.NewNop())

	r := gin.New()
	RegisterUserRoutes(r, NewUserHandler(service))
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

func TestListUsers_HTTP(t *testing.T) {
	r, _ := newRouter(t)

	tests := []struct {
		name     string
		target   string
		expected []string
	}{
		{"sin parámetros", "/users", []string{"carla", "bob", "ana"}},
		{"filtro multi-valor", "/users?filter[login]=ana,bob&sort=login", []string{"ana", "bob"}},
		{"filtro escapado", "/users?filter%5Badmin%5D=true", []string{"ana"}},
		{"búsqueda y rango", "/users?search[email]=example&range[age]=25,40&sort=-age", []string{"carla", "bob"}},
		{"fuzzy", "/users?fuzzy=carl", []string{"carla"}},
		{"paginación", "/users?sort=login&limit=1&offset=1", []string{"bob"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			rec := do(r, http.MethodGet, tt.target, "")

			// Assert
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var resp listResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			got := make([]string, len(resp.Data))
			for i, u := range resp.Data {
				got[i] = u.Login
			}
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, len(tt.expected), resp.Meta.Count)
		})
	}
}

func TestListUsers_HTTP_BadRequest(t *testing.T) {
	r, repo := newRouter(t)

	tests := []struct {
		name    string
		target  string
		message string
	}{
		{"campo desconocido", "/users?filter[password]=x", "attributes password doesn't exist or isn't filterable. Available filter fields are: "},
		{"sort inválido", "/users?sort=-password", `the "password" field is not sortable`},
		{"rango sin coma", "/users?range[age]=18", "invalid range format for age: begin and end must be separated by a comma (,)"},
		{"valor custom no permitido", "/users?filter[active]=maybe", "value maybe is not allowed for filter active, can be true and false"},
		{"límites de rango inválidos", "/users?range[age]=a,b", "unable to create a range between values 'a' and 'b' for age"},
		{"entero inválido", "/users?filter[age]=abc", "invalid value 'abc' for filter age"},
		{"fecha inválida", "/users?filter[created_at]=yesterday", "invalid value 'yesterday' for filter created_at"},
		{"paginación inválida", "/users?limit=-1", "limit and offset must be non-negative integers"},
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

func TestCreateAndGetUser_HTTP(t *testing.T) {
	// Arrange
	r, _ := newRouter(t)

	// Act
	rec := do(r, http.MethodPost, "/users", `{"login":"dani","email":"dani@example.com","age":40}`)

	// Assert
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Data userHTTPResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "dani", created.Data.Login)

	rec = do(r, http.MethodGet, "/users/"+created.Data.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(r, http.MethodPost, "/users", `{"login":"dani","email":"dani@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(r, http.MethodPost, "/users", `{"login":"eva","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUser_HTTP_Errors(t *testing.T) {
	r, _ := newRouter(t)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/users/not-a-uuid", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/users/"+uuid.NewString(), "").Code)
}

func TestDescribeUsers_HTTP(t *testing.T) {
	r, _ := newRouter(t)

	rec := do(r, http.MethodGet, "/meta/users", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Resource     string `json:"resource"`
			Capabilities []struct {
				Capability string   `json:"capability"`
				Fields     []string `json:"fields"`
				Predicates []struct {
					Name string `json:"name"`
				} `json:"predicates"`
				Default string `json:"default"`
			} `json:"capabilities"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "users", resp.Data.Resource)
	require.Len(t, resp.Data.Capabilities, 5)
	assert.Equal(t, "filter", resp.Data.Capabilities[0].Capability)
	assert.Contains(t, resp.Data.Capabilities[0].Fields, "login")
	require.NotEmpty(t, resp.Data.Capabilities[0].Predicates)
	assert.Equal(t, "active", resp.Data.Capabilities[0].Predicates[0].Name)
	assert.Equal(t, "-created_at", resp.Data.Capabilities[4].Default)
}
