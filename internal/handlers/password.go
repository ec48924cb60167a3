package handlers

import (
	"authbase/internal/logger"
	"authbase/internal/services"
	"authbase/internal/utils/helpers"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type PasswordHandler struct {
	svc *services.PasswordService
}

func NewPasswordHandler(svc *services.PasswordService) *PasswordHandler {
	return &PasswordHandler{svc: svc}
}

type lostPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// LostPassword godoc
// @Summary Запрос токена сброса пароля
// @Description Выпускает токен сброса (15 минут) и отправляет его на почту.
// @Tags password
// @Accept json
// @Produce json
// @Param input body lostPasswordRequest true "Email пользователя"
// @Success 200 {object} messageResponse
// @Failure 404 {string} string "Email не найден"
// @Failure 500 {string} string "Письмо не отправлено"
// @Router /auth/lost-password [post]
func (h *PasswordHandler) LostPassword(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req lostPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		log.Warn("Невалидный payload в LostPassword")
		helpers.Error(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.svc.RequestReset(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			helpers.Error(w, http.StatusNotFound, "Email not found")
		case errors.Is(err, services.ErrMailDelivery):
			// Токен уже сохранён; повторный запрос выпустит новый
			helpers.Error(w, http.StatusInternalServerError, "Failed to send reset token")
		default:
			log.Error("Сбой при запросе сброса пароля", zap.Error(err))
			helpers.Error(w, http.StatusInternalServerError, "Failed to send reset token")
		}
		return
	}

	helpers.JSON(w, http.StatusOK, messageResponse{Message: "Reset token sent to your email"})
}

// ResetPassword godoc
// @Summary Сброс пароля по токену
// @Description Устанавливает новый пароль по токену из письма. Токен одноразовый.
// @Tags password
// @Accept json
// @Produce json
// @Param input body resetPasswordRequest true "Токен и новый пароль"
// @Success 200 {object} messageResponse
// @Failure 403 {string} string "Невалидный или просроченный токен"
// @Router /auth/reset-password [post]
func (h *PasswordHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Token) == "" || req.NewPassword == "" {
		log.Warn("Невалидный payload в ResetPassword")
		helpers.Error(w, http.StatusBadRequest, "Token and new password are required")
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrInvalidResetToken) {
			log.Warn("Не удалось сбросить пароль по токену", zap.Error(err))
			helpers.Error(w, http.StatusForbidden, "Invalid or expired token")
			return
		}
		log.Error("Сбой при сбросе пароля", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	helpers.JSON(w, http.StatusOK, messageResponse{Message: "Password reset successfully"})
}
