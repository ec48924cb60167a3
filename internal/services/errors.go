package services

import "errors"

// Сентинельные ошибки сервисного слоя. Хендлеры переводят их в HTTP-статусы,
// всё остальное уходит наружу как 500 с нейтральным текстом.
var (
	ErrEmailTaken         = errors.New("email is already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidResetToken  = errors.New("invalid or expired token")
	ErrMailDelivery       = errors.New("failed to send reset token")
)
