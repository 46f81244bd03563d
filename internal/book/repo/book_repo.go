package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/book/entity"
	"github.com/ovaphlow/pitchfork/service-bookshelf/pkg/utilities"
)

// BookRepo provides read access to the catalog and the bulk insert used by
// the seed import.
type BookRepo struct {
	db  *sqlx.DB
	ids *utilities.IDGenerator
}

func NewBookRepo(db *sqlx.DB, ids *utilities.IDGenerator) *BookRepo {
	return &BookRepo{db: db, ids: ids}
}

// EnsureTable creates the books table if it does not already exist.
func (r *BookRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS books (
  id BIGINT PRIMARY KEY,
  title VARCHAR(100) NOT NULL,
  author VARCHAR(100) NOT NULL,
  description VARCHAR(200) NOT NULL,
  genre VARCHAR(50) NOT NULL,
  created_at TIMESTAMP NOT NULL
)`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return err
	}
	const idx = `CREATE INDEX IF NOT EXISTS idx_books_author ON books (author)`
	if _, err := r.db.ExecContext(ctx, idx); err != nil {
		return err
	}
	const idxGenre = `CREATE INDEX IF NOT EXISTS idx_books_genre ON books (genre)`
	_, err := r.db.ExecContext(ctx, idxGenre)
	return err
}

// List returns every book ordered by id.
func (r *BookRepo) List(ctx context.Context) ([]entity.Summary, error) {
	out := []entity.Summary{}
	if err := r.db.SelectContext(ctx, &out, `SELECT title, author, genre FROM books ORDER BY id`); err != nil {
		return nil, err
	}
	return out, nil
}

// DistinctGenres returns each genre once, sorted.
func (r *BookRepo) DistinctGenres(ctx context.Context) ([]string, error) {
	out := []string{}
	if err := r.db.SelectContext(ctx, &out, `SELECT DISTINCT genre FROM books ORDER BY genre`); err != nil {
		return nil, err
	}
	return out, nil
}

// DistinctAuthors returns each author once, sorted.
func (r *BookRepo) DistinctAuthors(ctx context.Context) ([]string, error) {
	out := []string{}
	if err := r.db.SelectContext(ctx, &out, `SELECT DISTINCT author FROM books ORDER BY author`); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMatching returns books whose author is in authors OR whose genre is in
// genres, in one query so a row matching both appears once. Empty sets
// contribute no predicate.
func (r *BookRepo) ListMatching(ctx context.Context, authors, genres []string) ([]entity.Summary, error) {
	out := []entity.Summary{}
	var preds []string
	var args []any
	if len(authors) > 0 {
		preds = append(preds, "author IN (?)")
		args = append(args, authors)
	}
	if len(genres) > 0 {
		preds = append(preds, "genre IN (?)")
		args = append(args, genres)
	}
	if len(preds) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`SELECT title, author, genre FROM books WHERE `+strings.Join(preds, " OR ")+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of rows in books.
func (r *BookRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM books`)
	return n, err
}

// CreateMany inserts all books in a single transaction; on any failure
// nothing is committed.
func (r *BookRepo) CreateMany(ctx context.Context, books []*entity.Book) error {
	const q = `INSERT INTO books (id, title, author, description, genre, created_at)
		VALUES (:id, :title, :author, :description, :genre, :created_at)`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, b := range books {
		b.ID = r.ids.Next()
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if _, err := stmt.ExecContext(ctx, b); err != nil {
			return fmt.Errorf("insert book %d (%q): %w", i, b.Title, err)
		}
	}
	return tx.Commit()
}
