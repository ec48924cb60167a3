package utils

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("secret", 42, time.Hour)
	if err != nil {
		t.Fatalf("ошибка генерации токена: %v", err)
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("ошибка разбора токена: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("user_id не совпадает: %d", claims.UserID)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatal("отсутствуют exp/iat")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", 1, time.Hour)
	if err != nil {
		t.Fatalf("ошибка генерации токена: %v", err)
	}

	if _, err := ParseToken("other-secret", token); err != ErrInvalidToken {
		t.Fatalf("ожидалась ErrInvalidToken, получено: %v", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken("secret", 1, -time.Minute)
	if err != nil {
		t.Fatalf("ошибка генерации токена: %v", err)
	}

	if _, err := ParseToken("secret", token); err != ErrInvalidToken {
		t.Fatalf("просроченный токен должен быть отклонён, получено: %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := ParseToken("secret", "not-a-token"); err != ErrInvalidToken {
		t.Fatalf("ожидалась ErrInvalidToken, получено: %v", err)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("ошибка хеширования: %v", err)
	}
	if hash == "secret" {
		t.Fatal("хеш совпадает с открытым текстом")
	}
	if !CheckPasswordHash("secret", hash) {
		t.Fatal("верный пароль не прошёл проверку")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Fatal("неверный пароль прошёл проверку")
	}
}
