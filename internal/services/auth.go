package services

import (
	"authbase/internal/logger"
	"authbase/internal/models"
	"authbase/internal/utils"
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type AuthService struct {
	repo UserRepo
}

func NewAuthService(repo UserRepo) *AuthService {
	return &AuthService{repo: repo}
}

type UserRepo interface {
	IsEmailTaken(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateUserFields(ctx context.Context, id int64, input *models.UpdateUserRequest, passwordHash *string) error
	DeleteUserByID(ctx context.Context, id int64) error
	SetResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	ConsumePasswordReset(ctx context.Context, userID int64, passwordHash string) error
}

func (s *AuthService) RegisterUser(ctx context.Context, input *models.User, plainPassword string) error {
	logger.Log.Info("Регистрация пользователя (service)", zap.String("email", input.Email))
	if exists, err := s.repo.IsEmailTaken(ctx, input.Email); exists || err != nil {
		if err != nil {
			logger.Log.Error("Ошибка проверки email", zap.Error(err))
			return err
		}
		return ErrEmailTaken
	}

	hashed, err := utils.HashPassword(plainPassword)
	if err != nil {
		logger.Log.Error("Ошибка хеширования пароля", zap.Error(err))
		return err
	}

	input.PasswordHash = hashed

	if err := s.repo.CreateUser(ctx, input); err != nil {
		logger.Log.Error("Ошибка создания пользователя", zap.Error(err))
		return err
	}
	logger.Log.Info("Пользователь зарегистрирован (service)", zap.Int64("user_id", input.ID))
	return nil
}

// LoginUser проверяет пару email/пароль и выдаёт сессионный токен.
// "Не найден" и "неверный пароль" наружу неразличимы — одна и та же ошибка,
// чтобы нельзя было перебирать зарегистрированные адреса.
func (s *AuthService) LoginUser(
	ctx context.Context,
	email, password, jwtSecret string,
	sessionTTL time.Duration,
) (string, *models.User, error) {
	logger.Log.Info("Попытка входа (service)", zap.String("email", email))
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		logger.Log.Warn("Пользователь не найден (service)", zap.String("email", email), zap.Error(err))
		return "", nil, ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.Log.Warn("Неверный пароль (service)", zap.Int64("user_id", user.ID))
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(jwtSecret, user.ID, sessionTTL)
	if err != nil {
		logger.Log.Error("Ошибка генерации сессионного токена", zap.Error(err))
		return "", nil, err
	}

	logger.Log.Info("Вход выполнен (service)", zap.Int64("user_id", user.ID))
	return token, user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	logger.Log.Debug("Получение пользователя по ID (service)", zap.Int64("user_id", id))
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		// Токен может пережить удаление аккаунта — тогда здесь "не найден"
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Log.Warn("Пользователь не найден по ID (service)", zap.Int64("user_id", id))
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

// UpdateUser частично обновляет профиль. Если пришёл новый пароль —
// хеширует его здесь, в репозиторий попадает только хеш.
func (s *AuthService) UpdateUser(ctx context.Context, id int64, input *models.UpdateUserRequest) (*models.User, error) {
	logger.Log.Info("Обновление пользователя (service)", zap.Int64("user_id", id))

	var passwordHash *string
	if input.NewPassword != nil && *input.NewPassword != "" {
		hashed, err := utils.HashPassword(*input.NewPassword)
		if err != nil {
			logger.Log.Error("Ошибка хеширования нового пароля (service)", zap.Error(err), zap.Int64("user_id", id))
			return nil, err
		}
		passwordHash = &hashed
	}

	if err := s.repo.UpdateUserFields(ctx, id, input, passwordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logger.Log.Error("Ошибка при обновлении пользователя (service)", zap.Error(err), zap.Int64("user_id", id))
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	logger.Log.Info("Пользователь обновлён (service)", zap.Int64("user_id", id))
	return user, nil
}

func (s *AuthService) DeleteUserByID(ctx context.Context, id int64) error {
	logger.Log.Info("Удаление пользователя (service)", zap.Int64("user_id", id))
	err := s.repo.DeleteUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		logger.Log.Error("Ошибка удаления пользователя (service)", zap.Int64("user_id", id), zap.Error(err))
	}
	return err
}
