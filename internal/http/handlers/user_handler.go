package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/watersafe-backend/internal/http/handlers/common"
	"github.com/ignatzorin/watersafe-backend/internal/service"
	"github.com/ignatzorin/watersafe-backend/internal/validation"
)

// UserHandler ведёт справочник пользователей.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler создаёт хэндлер.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Upsert обрабатывает POST /users.
func (h *UserHandler) Upsert(c *gin.Context) {
	var req validation.UpsertUserRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	user, err := h.users.Upsert(c.Request.Context(), req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// List обрабатывает GET /users.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
