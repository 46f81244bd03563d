// Package schema creates the tables the service needs.
package schema

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	bookrepo "github.com/ovaphlow/pitchfork/service-bookshelf/internal/book/repo"
	userrepo "github.com/ovaphlow/pitchfork/service-bookshelf/internal/user/repo"
)

// Ensure creates the users and books tables and their indexes when missing.
// It is safe to run repeatedly.
func Ensure(ctx context.Context, db *sqlx.DB) error {
	if err := userrepo.NewUserRepo(db, nil).EnsureTable(ctx); err != nil {
		return fmt.Errorf("ensure users: %w", err)
	}
	if err := bookrepo.NewBookRepo(db, nil).EnsureTable(ctx); err != nil {
		return fmt.Errorf("ensure books: %w", err)
	}
	return nil
}
