package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// ==========================
// UserRepo (Postgres)
// ==========================
type UserRepo struct {
	DB *sql.DB
}

var _ UserStore = (*UserRepo)(nil)

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Load Users
// ==========================
func (r *UserRepo) LoadUsers(ctx context.Context) (map[string]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT username, password FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make(map[string]string)
	for rows.Next() {
		var username, password string
		if err := rows.Scan(&username, &password); err != nil {
			return nil, err
		}
		users[username] = password
	}
	return users, rows.Err()
}

// ==========================
// Save User
// ==========================
func (r *UserRepo) SaveUser(ctx context.Context, username, password string) error {
	query := `
		INSERT INTO users (username, password)
		VALUES ($1, $2)
	`
	_, err := r.DB.ExecContext(ctx, query, username, password)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrUserExists
		}
		return err
	}
	return nil
}
