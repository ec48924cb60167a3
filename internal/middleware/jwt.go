package middleware

import (
	"authbase/internal/logger"
	"authbase/internal/reqctx"
	"authbase/internal/utils"
	"authbase/internal/utils/helpers"
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// JWTAuth проверяет заголовок Authorization: Bearer <token>.
// Нет токена — 401. Токен есть, но подпись/срок невалидны — 403.
// Валидный токен кладёт user_id в контекст, в БД не ходим.
func JWTAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				logger.WithCtx(r.Context()).Warn("JWTAuth: отсутствует access token")
				helpers.Error(w, http.StatusUnauthorized, "Отсутствует access token")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := utils.ParseToken(jwtSecret, tokenString)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("JWTAuth: неверный или просроченный токен",
					zap.Error(err))
				helpers.Error(w, http.StatusForbidden, "Неверный или просроченный токен")
				return
			}

			ctx := context.WithValue(r.Context(), ContextUserID, claims.UserID)
			ctx = reqctx.WithUserID(ctx, claims.UserID)

			logger.WithCtx(ctx).Debug("JWTAuth: токен валиден",
				zap.Int64("user_id", claims.UserID))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
