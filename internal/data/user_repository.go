package data

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// UserRepository handles database operations for users.
type UserRepository struct {
	DB *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// GetByID finds a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	var u User
	if err := r.DB.GetContext(ctx, &u, "SELECT id, username, nickname, email, avatar, created_time FROM users WHERE id = ?", id); err != nil {
		return nil, wrapGet(err, fmt.Sprintf("user %d", id))
	}
	return &u, nil
}

// Create inserts a user and sets its ID.
func (r *UserRepository) Create(ctx context.Context, u *User) error {
	u.CreatedAt = time.Now().UTC()
	res, err := r.DB.NamedExecContext(ctx,
		`INSERT INTO users (username, nickname, email, avatar, created_time)
		 VALUES (:username, :nickname, :email, :avatar, :created_time)`, u)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

// UpdateAvatar stores the avatar location of a user.
func (r *UserRepository) UpdateAvatar(ctx context.Context, id int64, avatar string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET avatar = ? WHERE id = ?", avatar, id)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}
