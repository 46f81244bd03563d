package book

import (
	"context"
	"fmt"

	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/book/entity"
	bookrepo "github.com/ovaphlow/pitchfork/service-bookshelf/internal/book/repo"
	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/validation"
)

// PreferenceSource resolves an identity to the author and genre sets used
// for matching. It returns an apperr not-found error for unknown identities.
type PreferenceSource interface {
	PreferenceFilter(ctx context.Context, email string) (authors []string, genres []string, err error)
}

// Service serves the catalog and the preference-based recommendation filter.
type Service struct {
	repo  *bookrepo.BookRepo
	prefs PreferenceSource
}

func NewService(r *bookrepo.BookRepo, prefs PreferenceSource) *Service {
	return &Service{repo: r, prefs: prefs}
}

// ListBooks returns the whole catalog.
func (s *Service) ListBooks(ctx context.Context) ([]entity.Summary, error) {
	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Unexpected(err)
	}
	return books, nil
}

// ListFields returns the distinct genres and authors of the catalog.
func (s *Service) ListFields(ctx context.Context) (*entity.Fields, error) {
	genres, err := s.repo.DistinctGenres(ctx)
	if err != nil {
		return nil, apperr.Unexpected(err)
	}
	authors, err := s.repo.DistinctAuthors(ctx)
	if err != nil {
		return nil, apperr.Unexpected(err)
	}
	return &entity.Fields{Genres: genres, Authors: authors}, nil
}

// ListRecommended returns the books matching the account's preferred authors
// OR preferred genres.
func (s *Service) ListRecommended(ctx context.Context, email string) ([]entity.Summary, error) {
	authors, genres, err := s.prefs.PreferenceFilter(ctx, email)
	if err != nil {
		return nil, err
	}
	books, err := s.repo.ListMatching(ctx, authors, genres)
	if err != nil {
		return nil, apperr.Unexpected(err)
	}
	return books, nil
}

// Import validates every record and inserts them all in one transaction.
// It returns the number of books written.
func (s *Service) Import(ctx context.Context, books []*entity.Book) (int, error) {
	for i, b := range books {
		if verr := validation.ValidateStruct(b); verr != nil {
			return 0, apperr.Validation(fmt.Sprintf("record %d: %s", i, verr.Error()))
		}
	}
	if len(books) == 0 {
		return 0, nil
	}
	if err := s.repo.CreateMany(ctx, books); err != nil {
		return 0, apperr.Unexpected(err)
	}
	return len(books), nil
}
