package entity

import (
	"database/sql"
	"strings"
	"time"
)

// ListSeparator joins preference lists into a single column value.
const ListSeparator = ","

// User represents an account row in the `users` table.
type User struct {
	ID               int64          `db:"id"`
	Name             string         `db:"name"`
	Email            string         `db:"email"`
	Phone            string         `db:"phone"`
	PasswordHash     string         `db:"password"`
	CreatedAt        time.Time      `db:"created_at"`
	PreferredAuthors sql.NullString `db:"preferred_authors"`
	PreferredGenres  sql.NullString `db:"preferred_genres"`
}

// Profile is the public projection returned after signup. It never carries
// the password hash.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (u *User) Profile() Profile {
	return Profile{Name: u.Name, Email: u.Email, Phone: u.Phone}
}

// Preferences is a decoded pair of preference lists.
type Preferences struct {
	Authors []string `json:"preferredAuthors"`
	Genres  []string `json:"preferredGenres"`
}

// Preferences decodes the stored lists for display: an unset or empty column
// gives an empty list.
func (u *User) Preferences() Preferences {
	return Preferences{
		Authors: DecodeList(u.PreferredAuthors),
		Genres:  DecodeList(u.PreferredGenres),
	}
}

// PreferenceFilter decodes the stored lists for catalog matching. Unlike
// Preferences it splits unconditionally, so an unset column yields [""].
func (u *User) PreferenceFilter() Preferences {
	return Preferences{
		Authors: strings.Split(u.PreferredAuthors.String, ListSeparator),
		Genres:  strings.Split(u.PreferredGenres.String, ListSeparator),
	}
}

// DecodeList splits a stored list; NULL and "" both decode to an empty slice.
func DecodeList(v sql.NullString) []string {
	if !v.Valid || v.String == "" {
		return []string{}
	}
	return strings.Split(v.String, ListSeparator)
}

// EncodeList joins items for storage.
func EncodeList(items []string) string {
	return strings.Join(items, ListSeparator)
}
