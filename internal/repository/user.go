package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/digital-store/internal/model"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/db"
)

const (
	UsernameUniqueConstraint = "users_username_key"
	EmailUniqueConstraint    = "users_email_key"
)

type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	Role         model.Role
}

type UpdateUserProfileParams struct {
	FirstName *string
	LastName  *string
}

type UserRepository interface {
	WithDB(db db.DB) UserRepository
	CreateUser(ctx context.Context, params CreateUserParams) (model.User, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateUserProfile(ctx context.Context, id int64, params UpdateUserProfileParams) (model.User, error)
}

type userRepository struct {
	db db.DB
}

func NewUserRepository(db db.DB) UserRepository {
	return &userRepository{db: db}
}

func (r userRepository) WithDB(db db.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `user_id, username, email, password_hash, first_name, last_name, role, created_at, updated_at`

func (r userRepository) CreateUser(ctx context.Context, params CreateUserParams) (model.User, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		params.Username, params.Email, params.PasswordHash, string(params.Role),
	)
	if err != nil {
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}

	return u, nil
}

func (r userRepository) GetUser(ctx context.Context, id int64) (model.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id)
}

func (r userRepository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r userRepository) getUser(ctx context.Context, sql string, arg any) (model.User, error) {
	rows, err := r.db.Query(ctx, sql, arg)
	if err != nil {
		return model.User{}, fmt.Errorf("query user: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("collect user: %w", err)
	}

	return u, nil
}

func (r userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}

	return exists, nil
}

func (r userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return exists, nil
}

func (r userRepository) UpdateUserProfile(ctx context.Context, id int64, params UpdateUserProfileParams) (model.User, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE users
		SET first_name = $1, last_name = $2, updated_at = NOW()
		WHERE user_id = $3
		RETURNING `+userColumns,
		params.FirstName, params.LastName, id,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("update user profile: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("update user profile: %w", err)
	}

	return u, nil
}

func scanUser(row pgx.CollectableRow) (model.User, error) {
	var (
		u    model.User
		role string
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &role,
		&u.CreatedAt, &u.UpdatedAt,
	)
	u.Role = model.Role(role)
	return u, err
}
