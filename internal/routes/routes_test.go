package routes

import (
	"authbase/internal/handlers"
	"authbase/internal/logger"
	"authbase/internal/models"
	"authbase/internal/services"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

const testSecret = "routes-test-secret"

// Репозиторий в памяти — достаточно для прогона всего HTTP-стека без Postgres.
type memUserRepo struct {
	users  map[int64]*models.User
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int64]*models.User), nextID: 1}
}

func (m *memUserRepo) IsEmailTaken(_ context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserRepo) CreateUser(_ context.Context, user *models.User) error {
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (m *memUserRepo) GetAllUsers(_ context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUserRepo) UpdateUserFields(_ context.Context, id int64, input *models.UpdateUserRequest, passwordHash *string) error {
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
	return nil
}

func (m *memUserRepo) DeleteUserByID(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) SetResetToken(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	u, ok := m.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	t, e := token, expiresAt
	u.ResetToken = &t
	u.ResetTokenExpiresAt = &e
	return nil
}

func (m *memUserRepo) ConsumePasswordReset(_ context.Context, userID int64, passwordHash string) error {
	u, ok := m.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetTokenExpiresAt = nil
	return nil
}

type memSender struct {
	tokens []string
}

func (s *memSender) SendPasswordReset(_ context.Context, _, token string, _ time.Duration) error {
	s.tokens = append(s.tokens, token)
	return nil
}

func newTestRouter(t *testing.T) (*mux.Router, *memSender) {
	t.Helper()
	repo := newMemUserRepo()
	sender := &memSender{}

	authService := services.NewAuthService(repo)
	passwordService := services.NewPasswordService(repo, sender, testSecret, 15*time.Minute)

	authHandler := handlers.NewAuthHandler(authService, testSecret, time.Hour)
	passwordHandler := handlers.NewPasswordHandler(passwordService)
	userHandler := handlers.NewUserHandler(authService)

	router := mux.NewRouter()
	InitRoutes(router, testSecret, authHandler, passwordHandler, userHandler)
	return router, sender
}

func doJSON(t *testing.T, router *mux.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func signupAndLogin(t *testing.T, router *mux.Router, email, password string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "Test User", "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestSignupLoginMe(t *testing.T) {
	router, _ := newTestRouter(t)
	token := signupAndLogin(t, router, "test@example.com", "secret")

	rec := doJSON(t, router, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		User models.PublicUser `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "test@example.com", resp.User.Email)

	// Хеш пароля наружу не уходит ни в каком виде
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	router, _ := newTestRouter(t)
	signupAndLogin(t, router, "test@example.com", "secret")

	rec := doJSON(t, router, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "Other", "email": "test@example.com", "password": "different",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignup_MissingFields(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "test@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdate_RequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	// Без токена мутирующий маршрут профиля недоступен
	rec := doJSON(t, router, http.MethodPut, "/auth/update", "", map[string]string{"name": "Hacker"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdate_ChangesPassword(t *testing.T) {
	router, _ := newTestRouter(t)
	token := signupAndLogin(t, router, "test@example.com", "oldpass")

	rec := doJSON(t, router, http.MethodPut, "/auth/update", token, map[string]string{
		"new_password": "newpass",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "test@example.com", "password": "oldpass",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "test@example.com", "password": "newpass",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDelete_ThenMeIsNotFound(t *testing.T) {
	router, _ := newTestRouter(t)
	token := signupAndLogin(t, router, "test@example.com", "secret")

	rec := doJSON(t, router, http.MethodDelete, "/auth/delete", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Токен криптографически валиден, но аккаунта уже нет
	rec = doJSON(t, router, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Повторное удаление — 404
	rec = doJSON(t, router, http.MethodDelete, "/auth/delete", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLostAndResetPassword(t *testing.T) {
	router, sender := newTestRouter(t)
	signupAndLogin(t, router, "test@example.com", "oldpass")

	rec := doJSON(t, router, http.MethodPost, "/auth/lost-password", "", map[string]string{
		"email": "test@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, sender.tokens, 1)

	rec = doJSON(t, router, http.MethodPost, "/auth/reset-password", "", map[string]string{
		"token": sender.tokens[0], "new_password": "resetpass",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "test@example.com", "password": "resetpass",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLostPassword_UnknownEmail(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/lost-password", "", map[string]string{
		"email": "nobody@example.com",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResetPassword_BadToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/reset-password", "", map[string]string{
		"token": "garbage", "new_password": "x",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUsersList_RequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := signupAndLogin(t, router, "test@example.com", "secret")
	rec = doJSON(t, router, http.MethodGet, "/api/users", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
