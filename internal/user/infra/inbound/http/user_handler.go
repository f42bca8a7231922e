package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/hexaquery/internal/shared/infra/inbound/httpquery"
	"github.com/davicafu/hexaquery/internal/shared/query"
	"github.com/davicafu/hexaquery/internal/user/application"
	"github.com/davicafu/hexaquery/internal/user/domain"
	"github.com/davicafu/hexaquery/pkg/utils"
)

// UserHandler encapsula los endpoints HTTP relacionados con User
type UserHandler struct {
	service *application.UserService
}

// NewUserHandler crea un nuevo UserHandler
func NewUserHandler(service *application.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// ---------------- Handlers ----------------

// CreateUser endpoint POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req struct {
		Login string `json:"login" binding:"required"`
		Email string `json:"email" binding:"required,email"`
		Age   int    `json:"age" binding:"gte=0"`
		Admin bool   `json:"admin"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), application.CreateUserInput{
		Login: req.Login,
		Email: req.Email,
		Age:   req.Age,
		Admin: req.Admin,
	})
	switch {
	case err == nil:
		utils.SendSuccess(c, http.StatusCreated, user)
	case errors.Is(err, domain.ErrInvalidUser):
		utils.SendBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrUserAlreadyExists):
		utils.SendConflict(c, err.Error())
	default:
		utils.SendInternalServerError(c, err.Error())
	}
}

// GetUser endpoint GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid user id")
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			utils.SendNotFound(c, "user not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, user)
}

// ListUsers endpoint GET /users?filter[login]=a,b&search[email]=x&range[age]=18,30&sort=-age&fuzzy=ana
func (h *UserHandler) ListUsers(c *gin.Context) {
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

	users, err := h.service.ListUsers(c.Request.Context(), params, page)
	if err != nil {
		utils.SendError(c, httpquery.StatusFor(err), err.Error())
		return
	}

	page = page.Normalize()
	utils.SendList(c, users, utils.ListMeta{Count: len(users), Limit: page.Limit, Offset: page.Offset})
}

// DescribeUsers endpoint GET /meta/users: campos y predicados custom por capacidad.
func (h *UserHandler) DescribeUsers(c *gin.Context) {
	utils.SendSuccess(c, http.StatusOK, gin.H{
		"resource":     domain.Resource,
		"capabilities": h.service.DescribeQueries(),
		"max_limit":    query.MaxLimit,
	})
}
