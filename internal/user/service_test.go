package user

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/auth"
	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/testinfra"
	userrepo "github.com/ovaphlow/pitchfork/service-bookshelf/internal/user/repo"
)

type fixture struct {
	svc    *UserService
	repo   *userrepo.UserRepo
	tokens *auth.TokenService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	r := userrepo.NewUserRepo(testinfra.SQLiteDB(t), testinfra.IDs(t))
	require.NoError(t, r.EnsureTable(context.Background()))
	tokens, err := auth.NewTokenService(auth.Config{Secret: "test-secret", Issuer: "test"})
	require.NoError(t, err)
	return fixture{
		svc:    NewUserService(r, BcryptHasher{Cost: bcrypt.MinCost}, tokens),
		repo:   r,
		tokens: tokens,
	}
}

func ann() SignupInput {
	return SignupInput{Name: "Ann", Email: "ann@example.com", Phone: "5550100", Password: "hunter2"}
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Register(ctx, ann())
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.Name)
	assert.Equal(t, "ann@example.com", p.Email)
	assert.Equal(t, "5550100", p.Phone)

	stored, err := f.repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", stored.PasswordHash)
	assert.NotContains(t, stored.PasswordHash, "hunter2")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter2")))
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	missing := ann()
	missing.Password = ""
	_, err := f.svc.Register(ctx, missing)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Missing required fields", apperr.Message(err))

	long := ann()
	long.Phone = strings.Repeat("9", 13)
	_, err = f.svc.Register(ctx, long)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "phone must be at most 12 characters", apperr.Message(err))

	// 40 runes pass the rune count but are 80 bytes for bcrypt
	multibyte := ann()
	multibyte.Password = strings.Repeat("é", 40)
	_, err = f.svc.Register(ctx, multibyte)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "password must be at most 72 bytes", apperr.Message(err))

	n, err := f.repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	exact := ann()
	exact.Password = strings.Repeat("é", 36)
	_, err = f.svc.Register(ctx, exact)
	assert.NoError(t, err, "72 bytes is accepted")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, ann())
	require.NoError(t, err)

	dup := ann()
	dup.Name = "Other"
	dup.Password = "different"
	_, err = f.svc.Register(ctx, dup)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Email already in use", apperr.Message(err))

	// the first account is untouched
	_, err = f.svc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "hunter2"})
	assert.NoError(t, err)
	stored, err := f.repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", stored.Name)
}

func TestRegisterConcurrentSameEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 6
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Register(ctx, ann())
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperr.KindOf(err) == apperr.KindConflict:
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, ann())
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginInput{Email: "ann@example.com"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Missing email or password", apperr.Message(err))

	_, err = f.svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperr.ErrAuth)
	assert.Equal(t, "Invalid password", apperr.Message(err))

	token, err := f.svc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "hunter2"})
	require.NoError(t, err)
	email, err := f.tokens.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", email)
}

func TestPreferencesRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, ann())
	require.NoError(t, err)

	prefs, err := f.svc.GetPreferences(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{}, prefs.Authors)
	assert.Equal(t, []string{}, prefs.Genres)

	cases := []PreferencesInput{
		{PreferredAuthors: []string{"Stephen King", "Terry Pratchett"}, PreferredGenres: []string{"Horror"}},
		{PreferredAuthors: []string{}, PreferredGenres: []string{"Comedy", "Fantasy"}},
		{PreferredAuthors: []string{}, PreferredGenres: []string{}},
	}
	for _, in := range cases {
		require.NoError(t, f.svc.SetPreferences(ctx, "ann@example.com", in))
		got, err := f.svc.GetPreferences(ctx, "ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, in.PreferredAuthors, got.Authors)
		assert.Equal(t, in.PreferredGenres, got.Genres)
	}
}

func TestSetPreferencesErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.SetPreferences(ctx, "ghost@example.com", PreferencesInput{PreferredAuthors: []string{}, PreferredGenres: []string{}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.Register(ctx, ann())
	require.NoError(t, err)

	err = f.svc.SetPreferences(ctx, "ann@example.com", PreferencesInput{PreferredAuthors: []string{"X"}})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	err = f.svc.SetPreferences(ctx, "ann@example.com", PreferencesInput{
		PreferredAuthors: []string{strings.Repeat("a", 501)},
		PreferredGenres:  []string{},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	err = f.svc.SetPreferences(ctx, "ann@example.com", PreferencesInput{
		PreferredAuthors: []string{""},
		PreferredGenres:  []string{"x"},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "preferred_authors must not contain empty entries", apperr.Message(err))

	err = f.svc.SetPreferences(ctx, "ann@example.com", PreferencesInput{
		PreferredAuthors: []string{"X"},
		PreferredGenres:  []string{"Horror", ""},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	p, err := f.svc.GetPreferences(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Empty(t, p.Authors, "rejected updates leave the stored lists unchanged")
	assert.Empty(t, p.Genres)

	_, err = f.svc.GetPreferences(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPreferenceFilterUnset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, ann())
	require.NoError(t, err)

	authors, genres, err := f.svc.PreferenceFilter(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{""}, authors)
	assert.Equal(t, []string{""}, genres)

	_, _, err = f.svc.PreferenceFilter(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
