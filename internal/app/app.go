package app

import (
	"authbase/internal/config"
	"authbase/internal/db"
	"authbase/internal/handlers"
	"authbase/internal/repository"
	"authbase/internal/routes"
	"authbase/internal/services"
	"context"
	"time"

	"github.com/gorilla/mux"
)

func InitApp(cfg *config.Config) (*mux.Router, error) {
	if err := db.RunMigrations(context.Background(), cfg); err != nil {
		return nil, err
	}

	conn, err := db.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}

	sessionTTL, err := time.ParseDuration(cfg.SessionTokenTTL)
	if err != nil {
		sessionTTL = time.Hour
	}
	resetTTL, err := time.ParseDuration(cfg.ResetTokenTTL)
	if err != nil {
		resetTTL = 15 * time.Minute
	}

	// Репозитории
	userRepo := repository.NewUserRepository(conn)

	// Сервисы
	authService := services.NewAuthService(userRepo)
	emailService := services.NewEmailService(cfg)
	passwordService := services.NewPasswordService(userRepo, emailService, cfg.JWTSecret, resetTTL)

	// Хендлеры
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecret, sessionTTL)
	passwordHandler := handlers.NewPasswordHandler(passwordService)
	userHandler := handlers.NewUserHandler(authService)

	// Воркеры очереди писем
	for i := 0; i < 3; i++ {
		services.StartEmailWorker(emailService)
	}

	// Маршруты
	router := mux.NewRouter()
	routes.InitRoutes(router, cfg.JWTSecret, authHandler, passwordHandler, userHandler)

	return router, nil
}
