// internal/users/service.go
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"stock-sim-backend/pkg/logger"
)

// ErrInvalidToken возвращается при неуспешной проверке JWT
var ErrInvalidToken = errors.New("invalid token")

// Service - сервис аутентификации: регистрация, вход, профиль
type Service struct {
	repo      UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewService создает сервис аутентификации
func NewService(repo UserRepository, jwtSecret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &Service{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// Signup регистрирует нового пользователя и возвращает токен.
// ErrUserExists - если email уже занят.
func (s *Service) Signup(ctx context.Context, username, email, password string) (string, error) {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return "", ErrUserExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Balance:      0,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return "", err
	}

	logger.Info("👤 Зарегистрирован пользователь %s (id %d)", user.Email, user.ID)
	return s.issueToken(user.ID)
}

// Login проверяет учетные данные и возвращает токен.
// ErrInvalidCredentials - и для неизвестного email, и для неверного пароля.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	logger.Info("🔑 Вход пользователя %s", user.Email)
	return s.issueToken(user.ID)
}

// Profile возвращает пользователя по id из токена
func (s *Service) Profile(ctx context.Context, userID int) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

// issueToken выпускает JWT с userId в claims
func (s *Service) issueToken(userID int) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"iat":    now.Unix(),
		"exp":    now.Add(s.tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken проверяет JWT и возвращает userId
func (s *Service) VerifyToken(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	userID, ok := claims["userId"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}

	return int(userID), nil
}
