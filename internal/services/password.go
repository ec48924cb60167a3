package services

import (
	"authbase/internal/logger"
	"authbase/internal/utils"
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PasswordService struct {
	repo        UserRepo
	emailSender EmailSender // интерфейс отправки писем
	jwtSecret   string
	tokenTTL    time.Duration
}

type EmailSender interface {
	SendPasswordReset(ctx context.Context, to, token string, ttl time.Duration) error
}

func NewPasswordService(repo UserRepo, emailSender EmailSender, jwtSecret string, tokenTTL time.Duration) *PasswordService {
	return &PasswordService{
		repo:        repo,
		emailSender: emailSender,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
	}
}

// RequestReset выпускает токен сброса (JWT, 15 минут), сохраняет его вместе
// с абсолютным сроком на записи пользователя и шлёт на почту.
// Повторный запрос затирает предыдущий токен — действует только последний.
// Если письмо не ушло, токен остаётся в базе: ретрай просто выпустит новый.
func (s *PasswordService) RequestReset(ctx context.Context, email string) error {
	logger.Log.Info("Запрос на сброс пароля", zap.String("email", email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Log.Warn("Email не найден при запросе сброса", zap.String("email", email))
			return ErrUserNotFound
		}
		return err
	}

	token, err := utils.GenerateToken(s.jwtSecret, user.ID, s.tokenTTL)
	if err != nil {
		logger.Log.Error("Ошибка генерации токена сброса", zap.Error(err), zap.Int64("user_id", user.ID))
		return err
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	if err := s.repo.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		logger.Log.Error("Ошибка сохранения токена сброса",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
		return err
	}

	if err := s.emailSender.SendPasswordReset(ctx, user.Email, token, s.tokenTTL); err != nil {
		logger.Log.Error("Ошибка отправки письма для сброса пароля",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
		// Токен уже в базе — откатывать нечего, повторный запрос его заменит
		return ErrMailDelivery
	}

	logger.Log.Info("Токен сброса пароля отправлен",
		zap.Int64("user_id", user.ID),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}

// ResetPassword подтверждает токен и устанавливает новый пароль.
// Любая причина отказа (битая подпись, чужой/затёртый токен, истёкший срок,
// несуществующий пользователь) наружу выглядит одинаково — ErrInvalidResetToken.
func (s *PasswordService) ResetPassword(ctx context.Context, token, newPassword string) error {
	logger.Log.Info("Попытка сброса пароля по токену")

	claims, err := utils.ParseToken(s.jwtSecret, token)
	if err != nil {
		logger.Log.Warn("Невалидная подпись или истёкший токен при сбросе пароля", zap.Error(err))
		return ErrInvalidResetToken
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		logger.Log.Warn("Пользователь из токена сброса не найден", zap.Int64("user_id", claims.UserID), zap.Error(err))
		return ErrInvalidResetToken
	}

	// Токен должен совпадать с сохранённым: повторный запрос сброса
	// заменяет токен, и предыдущий перестаёт действовать
	if user.ResetToken == nil || *user.ResetToken != token {
		logger.Log.Warn("Предъявлен не последний токен сброса", zap.Int64("user_id", user.ID))
		return ErrInvalidResetToken
	}

	// Сверка с сохранённым сроком — вторая линия обороны поверх exp в подписи
	if user.ResetTokenExpiresAt == nil || time.Now().After(*user.ResetTokenExpiresAt) {
		logger.Log.Warn("Срок токена сброса истёк", zap.Int64("user_id", user.ID))
		return ErrInvalidResetToken
	}

	pwHash, err := utils.HashPassword(newPassword)
	if err != nil {
		logger.Log.Error("Ошибка генерации хеша пароля", zap.Error(err), zap.Int64("user_id", user.ID))
		return err
	}

	if err := s.repo.ConsumePasswordReset(ctx, user.ID, pwHash); err != nil {
		logger.Log.Error("Ошибка обновления пароля пользователя",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Пароль успешно сброшен", zap.Int64("user_id", user.ID))
	return nil
}
