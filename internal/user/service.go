package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-bookshelf/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/validation"
	"github.com/ovaphlow/pitchfork/service-bookshelf/pkg/database"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// TokenIssuer signs a bearer token for an identity.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

const (
	// maxListColumn is the width of the preferred_* columns.
	maxListColumn = 500
	// maxPasswordBytes is the bcrypt input limit; validator's max counts runes.
	maxPasswordBytes = 72
)

const passwordTooLong = "password must be at most 72 bytes"

// SignupInput is the signup payload.
type SignupInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,max=50"`
	Phone    string `json:"phone" validate:"required,max=12"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// PreferencesInput replaces both preference lists. A missing or null list is
// rejected; an empty list clears it.
type PreferencesInput struct {
	PreferredAuthors []string `json:"preferred_authors" validate:"required"`
	PreferredGenres  []string `json:"preferred_genres" validate:"required"`
}

// UserService orchestrates account and preference flows.
type UserService struct {
	repo   *userrepo.UserRepo
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewUserService(r *userrepo.UserRepo, hasher PasswordHasher, tokens TokenIssuer) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	return &UserService{repo: r, hasher: hasher, tokens: tokens}
}

// Register validates the payload, stores the account with a bcrypt hash and
// returns its public fields.
func (s *UserService) Register(ctx context.Context, in SignupInput) (*entity.Profile, error) {
	if verr := validation.ValidateStruct(&in); verr != nil {
		if verr.Missing() {
			return nil, apperr.Validation("Missing required fields")
		}
		return nil, apperr.Validation(verr.Error())
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, apperr.Validation(passwordTooLong)
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.Validation(passwordTooLong)
		}
		return nil, apperr.Unexpected(fmt.Errorf("hash password: %w", err))
	}
	u := &entity.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
	}
	if _, err := s.repo.Create(ctx, u); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("Email already in use", err)
		}
		return nil, apperr.Unexpected(err)
	}
	p := u.Profile()
	return &p, nil
}

// Login checks the password and returns a signed bearer token bound to the
// account's email.
func (s *UserService) Login(ctx context.Context, in LoginInput) (string, error) {
	if verr := validation.ValidateStruct(&in); verr != nil {
		return "", apperr.Validation("Missing email or password")
	}
	u, err := s.lookup(ctx, in.Email)
	if err != nil {
		return "", err
	}
	if !s.hasher.Verify(u.PasswordHash, in.Password) {
		return "", apperr.Auth("Invalid password", nil)
	}
	token, err := s.tokens.Issue(u.Email)
	if err != nil {
		return "", apperr.Unexpected(fmt.Errorf("issue token: %w", err))
	}
	return token, nil
}

// GetPreferences returns the decoded preference lists of the account.
func (s *UserService) GetPreferences(ctx context.Context, email string) (*entity.Preferences, error) {
	u, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	p := u.Preferences()
	return &p, nil
}

// SetPreferences overwrites both preference lists. Entries are not checked
// against the catalog.
func (s *UserService) SetPreferences(ctx context.Context, email string, in PreferencesInput) error {
	u, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	if verr := validation.ValidateStruct(&in); verr != nil {
		return apperr.Validation("Missing preferred_authors or preferred_genres in request")
	}
	// an empty entry would be stored as "" and read back as no entry at all
	if slices.Contains(in.PreferredAuthors, "") {
		return apperr.Validation("preferred_authors must not contain empty entries")
	}
	if slices.Contains(in.PreferredGenres, "") {
		return apperr.Validation("preferred_genres must not contain empty entries")
	}
	authors := entity.EncodeList(in.PreferredAuthors)
	genres := entity.EncodeList(in.PreferredGenres)
	if len(authors) > maxListColumn {
		return apperr.Validation(fmt.Sprintf("preferred_authors must be at most %d characters", maxListColumn))
	}
	if len(genres) > maxListColumn {
		return apperr.Validation(fmt.Sprintf("preferred_genres must be at most %d characters", maxListColumn))
	}
	n, err := s.repo.UpdatePreferences(ctx, u.ID, authors, genres)
	if err != nil {
		return apperr.Unexpected(err)
	}
	if n == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

// PreferenceFilter returns the author and genre sets used to match catalog
// rows for the account.
func (s *UserService) PreferenceFilter(ctx context.Context, email string) ([]string, []string, error) {
	u, err := s.lookup(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	f := u.PreferenceFilter()
	return f.Authors, f.Genres, nil
}

func (s *UserService) lookup(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Unexpected(err)
	}
	return u, nil
}
