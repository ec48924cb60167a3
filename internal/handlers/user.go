package handlers

import (
	"authbase/internal/logger"
	"authbase/internal/models"
	"authbase/internal/services"
	"authbase/internal/utils/helpers"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type UserHandler struct {
	authService *services.AuthService
}

func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// GetUsers godoc
// @Summary Список пользователей
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} models.PublicUser
// @Router /api/users [get]
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.GetAllUsers(r.Context())
	if err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка получения пользователей", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	helpers.JSON(w, http.StatusOK, out)
}

// GetUserByID godoc
// @Summary Пользователь по ID
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID пользователя"
// @Success 200 {object} models.PublicUser
// @Failure 400 {string} string "Невалидный ID"
// @Failure 404 {string} string "Пользователь не найден"
// @Router /api/users/{id} [get]
func (h *UserHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("Невалидный ID пользователя", zap.String("id", idStr))
		helpers.Error(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			helpers.Error(w, http.StatusNotFound, err.Error())
			return
		}
		logger.WithCtx(r.Context()).Error("Ошибка получения пользователя", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}

	helpers.JSON(w, http.StatusOK, user.Public())
}
