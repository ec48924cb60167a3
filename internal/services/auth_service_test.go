package services

import (
	"authbase/internal/logger"
	"authbase/internal/models"
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// Мок-репозиторий (заглушка)
type mockUserRepo struct {
	users  map[int64]*models.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*models.User), nextID: 1}
}

func (m *mockUserRepo) IsEmailTaken(_ context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *models.User) error {
	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockUserRepo) GetAllUsers(_ context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepo) UpdateUserFields(_ context.Context, id int64, input *models.UpdateUserRequest, passwordHash *string) error {
	u, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if input.Name != nil {
		u.Name = *input.Name
	}
	if input.Email != nil {
		u.Email = *input.Email
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (m *mockUserRepo) DeleteUserByID(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) SetResetToken(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	u, ok := m.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	t := token
	e := expiresAt
	u.ResetToken = &t
	u.ResetTokenExpiresAt = &e
	return nil
}

func (m *mockUserRepo) ConsumePasswordReset(_ context.Context, userID int64, passwordHash string) error {
	u, ok := m.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetTokenExpiresAt = nil
	return nil
}

const testSecret = "test-secret"

func TestRegisterUser(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	user := &models.User{Name: "Test User", Email: "test@example.com"}

	err := service.RegisterUser(context.Background(), user, "secret")
	if err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}

	if user.ID == 0 || user.PasswordHash == "" {
		t.Fatal("пароль не захеширован или пользователь не сохранён")
	}
	if user.PasswordHash == "secret" {
		t.Fatal("в поле пароля сохранён открытый текст")
	}
}

func TestRegisterUser_EmailTaken(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	first := &models.User{Name: "First", Email: "dup@example.com"}
	if err := service.RegisterUser(context.Background(), first, "pass1"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}

	second := &models.User{Name: "Second", Email: "dup@example.com"}
	err := service.RegisterUser(context.Background(), second, "pass2")
	if err != ErrEmailTaken {
		t.Fatalf("ожидалась ErrEmailTaken, получено: %v", err)
	}
}

func TestLoginUser_Success(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	user := &models.User{Name: "Test User", Email: "test@example.com"}
	if err := service.RegisterUser(context.Background(), user, "secret"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}

	token, got, err := service.LoginUser(context.Background(), "test@example.com", "secret", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("ошибка логина: %v", err)
	}
	if token == "" {
		t.Fatal("токен не сгенерирован")
	}
	if got.ID != user.ID {
		t.Fatalf("вернулся не тот пользователь: %d != %d", got.ID, user.ID)
	}
}

func TestLoginUser_SameErrorForBadEmailAndBadPassword(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	user := &models.User{Name: "Test User", Email: "test@example.com"}
	if err := service.RegisterUser(context.Background(), user, "secret"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}

	_, _, errNoUser := service.LoginUser(context.Background(), "unknown@example.com", "secret", testSecret, time.Hour)
	_, _, errBadPass := service.LoginUser(context.Background(), "test@example.com", "wrong", testSecret, time.Hour)

	if errNoUser != ErrInvalidCredentials || errBadPass != ErrInvalidCredentials {
		t.Fatalf("обе ошибки должны быть ErrInvalidCredentials: %v / %v", errNoUser, errBadPass)
	}
	if errNoUser.Error() != errBadPass.Error() {
		t.Fatal("тексты ошибок различаются — утечка информации о наличии email")
	}
}

func TestUpdateUser_PasswordChange(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	user := &models.User{Name: "Test User", Email: "test@example.com"}
	if err := service.RegisterUser(context.Background(), user, "oldpass"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}

	newPass := "newpass"
	if _, err := service.UpdateUser(context.Background(), user.ID, &models.UpdateUserRequest{NewPassword: &newPass}); err != nil {
		t.Fatalf("ошибка обновления: %v", err)
	}

	// Старый пароль больше не работает, новый — работает
	if _, _, err := service.LoginUser(context.Background(), "test@example.com", "oldpass", testSecret, time.Hour); err != ErrInvalidCredentials {
		t.Fatalf("вход по старому паролю должен быть отклонён, получено: %v", err)
	}
	if _, _, err := service.LoginUser(context.Background(), "test@example.com", "newpass", testSecret, time.Hour); err != nil {
		t.Fatalf("вход по новому паролю должен пройти: %v", err)
	}
}

func TestDeleteUser_SecondDeleteNotFound(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	user := &models.User{Name: "Test User", Email: "test@example.com"}
	if err := service.RegisterUser(context.Background(), user, "secret"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}

	if err := service.DeleteUserByID(context.Background(), user.ID); err != nil {
		t.Fatalf("ошибка удаления: %v", err)
	}

	// Повторное удаление — не тихий успех
	if err := service.DeleteUserByID(context.Background(), user.ID); err != ErrUserNotFound {
		t.Fatalf("ожидалась ErrUserNotFound, получено: %v", err)
	}

	// Профиль удалённого пользователя тоже "не найден"
	if _, err := service.GetUserByID(context.Background(), user.ID); err != ErrUserNotFound {
		t.Fatalf("ожидалась ErrUserNotFound, получено: %v", err)
	}
}
