package handlers

import (
	"authbase/internal/logger"
	"authbase/internal/middleware"
	"authbase/internal/models"
	"authbase/internal/services"
	"authbase/internal/utils/helpers"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *services.AuthService
	jwtSecret   string
	sessionTTL  time.Duration
}

func NewAuthHandler(authService *services.AuthService, jwtSecret string, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   jwtSecret,
		sessionTTL:  sessionTTL,
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupResponse struct {
	Message string            `json:"message"`
	User    models.PublicUser `json:"user"`
}

type loginResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    models.PublicUser `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Signup godoc
// @Summary Регистрация нового пользователя
// @Tags auth
// @Accept json
// @Produce json
// @Param input body signupRequest true "Данные регистрации"
// @Success 201 {object} signupResponse
// @Failure 400 {string} string "Ошибка валидации или email занят"
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithCtx(r.Context()).Warn("Невалидный JSON в Signup", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		logger.WithCtx(r.Context()).Warn("Пустые обязательные поля в Signup")
		helpers.Error(w, http.StatusBadRequest, "Name, email, and password are required")
		return
	}

	user := &models.User{
		Name:  req.Name,
		Email: req.Email,
	}

	err := h.authService.RegisterUser(r.Context(), user, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			helpers.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.WithCtx(r.Context()).Error("Ошибка регистрации пользователя", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "An error occurred during signup")
		return
	}

	// Приветственное письмо — некритичное, уходит через очередь
	services.EmailQueue <- services.EmailJob{
		To:      []string{user.Email},
		Subject: "Welcome",
		Body:    fmt.Sprintf("Hi %s, your account has been created.", user.Name),
	}

	helpers.JSON(w, http.StatusCreated, signupResponse{
		Message: "User created successfully",
		User:    user.Public(),
	})
}

// Login godoc
// @Summary Вход по email и паролю
// @Tags auth
// @Accept json
// @Produce json
// @Param input body loginRequest true "Данные для входа"
// @Success 200 {object} loginResponse
// @Failure 401 {string} string "Неверный email или пароль"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithCtx(r.Context()).Warn("Невалидный JSON в Login", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	token, user, err := h.authService.LoginUser(r.Context(), req.Email, req.Password, h.jwtSecret, h.sessionTTL)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			helpers.Error(w, http.StatusUnauthorized, err.Error())
			return
		}
		logger.WithCtx(r.Context()).Error("Ошибка входа", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "An error occurred during login")
		return
	}

	helpers.JSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   token,
		User:    user.Public(),
	})
}

// Me godoc
// @Summary Профиль текущего пользователя
// @Tags profile
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} map[string]models.PublicUser
// @Failure 404 {string} string "Пользователь не найден"
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		// Валидный токен может указывать на уже удалённый аккаунт
		if errors.Is(err, services.ErrUserNotFound) {
			helpers.Error(w, http.StatusNotFound, err.Error())
			return
		}
		logger.WithCtx(r.Context()).Error("Ошибка получения профиля", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Failed to fetch user data")
		return
	}

	helpers.JSON(w, http.StatusOK, map[string]models.PublicUser{"user": user.Public()})
}

// Update godoc
// @Summary Частичное обновление профиля
// @Tags profile
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body models.UpdateUserRequest true "Что обновить"
// @Success 200 {object} signupResponse
// @Failure 500 {string} string "Ошибка обновления"
// @Router /auth/update [put]
func (h *AuthHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var input models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logger.WithCtx(r.Context()).Warn("Невалидный JSON в Update", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.authService.UpdateUser(r.Context(), userID, &input)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			helpers.Error(w, http.StatusNotFound, err.Error())
			return
		}
		logger.WithCtx(r.Context()).Error("Ошибка обновления профиля", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	helpers.JSON(w, http.StatusOK, signupResponse{
		Message: "Profile updated successfully",
		User:    user.Public(),
	})
}

// Delete godoc
// @Summary Удаление профиля
// @Tags profile
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} messageResponse
// @Failure 500 {string} string "Ошибка удаления"
// @Router /auth/delete [delete]
func (h *AuthHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.authService.DeleteUserByID(r.Context(), userID); err != nil {
		// Повторное удаление по живому токену — 404, не тихий успех
		if errors.Is(err, services.ErrUserNotFound) {
			helpers.Error(w, http.StatusNotFound, err.Error())
			return
		}
		logger.WithCtx(r.Context()).Error("Ошибка удаления профиля", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Failed to delete profile")
		return
	}

	helpers.JSON(w, http.StatusOK, messageResponse{Message: "Profile deleted successfully"})
}
