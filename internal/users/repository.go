// internal/users/repository.go
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UserRepository - интерфейс для работы с данными пользователей
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
}

// UserRepositoryImpl - реализация репозитория на PostgreSQL
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository создает репозиторий пользователей
func NewUserRepository(db *sqlx.DB) *UserRepositoryImpl {
	return &UserRepositoryImpl{db: db}
}

// Create создает нового пользователя и проставляет его id
func (r *UserRepositoryImpl) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (username, email, password_hash, balance, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Balance,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail ищет пользователя по email
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	query := `
		SELECT id, username, email, password_hash, balance, created_at
		FROM users
		WHERE email = $1
	`

	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

// FindByID ищет пользователя по id
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id int) (*User, error) {
	var user User
	query := `
		SELECT id, username, email, password_hash, balance, created_at
		FROM users
		WHERE id = $1
	`

	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return &user, nil
}
