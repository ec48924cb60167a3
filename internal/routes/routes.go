package routes

import (
	"authbase/internal/handlers"
	"authbase/internal/middleware"

	"github.com/gorilla/mux"
)

func InitRoutes(
	router *mux.Router,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	passwordHandler *handlers.PasswordHandler,
	userHandler *handlers.UserHandler,
) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Logging)

	auth := router.PathPrefix("/auth").Subrouter()

	// --- Публичные маршруты ---
	auth.HandleFunc("/signup", authHandler.Signup).Methods("POST")
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")
	auth.HandleFunc("/lost-password", passwordHandler.LostPassword).Methods("POST")
	auth.HandleFunc("/reset-password", passwordHandler.ResetPassword).Methods("POST")

	// --- Защищённые JWT ---
	// Все мутирующие маршруты профиля требуют токен, включая /update
	protected := auth.PathPrefix("").Subrouter()
	protected.Use(middleware.JWTAuth(jwtSecret))
	protected.HandleFunc("/me", authHandler.Me).Methods("GET")
	protected.HandleFunc("/update", authHandler.Update).Methods("PUT")
	protected.HandleFunc("/delete", authHandler.Delete).Methods("DELETE")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuth(jwtSecret))
	api.HandleFunc("/users", userHandler.GetUsers).Methods("GET")
	api.HandleFunc("/users/{id:[0-9]+}", userHandler.GetUserByID).Methods("GET")
}
