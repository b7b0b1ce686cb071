package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"visa-advisory-portal/config"
	"visa-advisory-portal/internal/model"
)

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// CreateUser : inserts a user, duplicate email maps to a conflict
func (r *UserRepository) CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, password_hash, role, is_active, created_at
	`

	var created model.User
	err := sqlx.GetContext(ctx, exec, &created, query, user.ID, user.Email, user.PasswordHash, user.Role, user.IsActive)
	if err != nil {
		return nil, mapError("[UserRepo] insert user", err)
	}

	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*model.User, error) {
	query := `SELECT id, email, password_hash, role, is_active, created_at FROM users WHERE id = $1`
	var user model.User
	if err := sqlx.GetContext(ctx, exec, &user, query, id); err != nil {
		return nil, mapError("[UserRepo] find user by id", err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error) {
	query := `SELECT id, email, password_hash, role, is_active, created_at FROM users WHERE lower(email) = lower($1)`
	var user model.User
	if err := sqlx.GetContext(ctx, exec, &user, query, email); err != nil {
		return nil, mapError("[UserRepo] find user by email", err)
	}
	return &user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`
	if err := sqlx.GetContext(ctx, exec, &exists, query, email); err != nil {
		return false, mapError("[UserRepo] check email", err)
	}
	return exists, nil
}

func (r *UserRepository) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	return beginTX(ctx, r.Database)
}
