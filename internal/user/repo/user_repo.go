package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-bookshelf/pkg/utilities"
)

// UserRepo provides data access for users table using sqlx.
// Queries are written with `?` and rebound for the active driver.
type UserRepo struct {
	db  *sqlx.DB
	ids *utilities.IDGenerator
}

func NewUserRepo(db *sqlx.DB, ids *utilities.IDGenerator) *UserRepo {
	return &UserRepo{db: db, ids: ids}
}

// EnsureTable creates the users table if not exists (idempotent).
// The DDL is shared by PostgreSQL and SQLite.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id BIGINT PRIMARY KEY,
  name VARCHAR(100) NOT NULL,
  email VARCHAR(50) NOT NULL UNIQUE,
  phone VARCHAR(12) NOT NULL,
  password VARCHAR(100) NOT NULL,
  created_at TIMESTAMP NOT NULL,
  preferred_authors VARCHAR(500),
  preferred_genres VARCHAR(500)
)`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new user inside its own transaction and returns the new ID.
// A duplicate email surfaces as the driver's unique-violation error and
// nothing is committed.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) (int64, error) {
	u.ID = r.ids.Next()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO users (id, name, email, phone, password, created_at, preferred_authors, preferred_genres)
		VALUES (:id, :name, :email, :phone, :password, :created_at, :preferred_authors, :preferred_genres)`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, q, u); err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return u.ID, nil
}

// GetByEmail returns the user with exactly this email or sql.ErrNoRows.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	q := r.db.Rebind(`SELECT id, name, email, phone, password, created_at, preferred_authors, preferred_genres
		FROM users WHERE email = ?`)
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, email); err != nil {
		return nil, err
	}
	return &u, nil
}

// Count returns the number of rows in users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`)
	return n, err
}

// UpdatePreferences overwrites both preference columns in one transaction and
// returns the number of rows touched.
func (r *UserRepo) UpdatePreferences(ctx context.Context, id int64, authors, genres string) (int64, error) {
	q := r.db.Rebind(`UPDATE users SET preferred_authors = ?, preferred_genres = ? WHERE id = ?`)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, q, authors, genres, id)
	if err != nil {
		return 0, fmt.Errorf("update preferences: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}
