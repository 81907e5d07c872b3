package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/PBeekay/TesPITAI/internal/domain"
)

// CreateUserParams contains the fields for inserting a user row.
type CreateUserParams struct {
	Username     string
	PasswordHash string
	Name         string
	Role         string
}

// CreateUser inserts a new user and returns it with storage defaults applied.
func (q *Queries) CreateUser(ctx context.Context, params CreateUserParams) (*domain.User, error) {
	result, err := q.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, name, role) VALUES (?, ?, ?, ?)`,
		params.Username, params.PasswordHash, params.Name, params.Role,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return q.GetUserByID(ctx, id)
}

// GetUserByID fetches a user by row key.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, name, role, created_at, last_login
		 FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByUsername fetches a user by username.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, name, role, created_at, last_login
		 FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// UpdateLastLogin stamps the user's last successful login time.
func (q *Queries) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET last_login = ? WHERE username = ?`, at, username)
	return err
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var name sql.NullString
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &name, &u.Role, &u.CreatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}
	u.Name = domain.NullStringValue(name)
	u.LastLogin = domain.NullTimeValue(lastLogin)
	return &u, nil
}
