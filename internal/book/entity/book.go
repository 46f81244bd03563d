package entity

import "time"

// Book represents a row of the `books` table.
type Book struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title" validate:"required,max=100"`
	Author      string    `db:"author" json:"author" validate:"required,max=100"`
	Description string    `db:"description" json:"description" validate:"max=200"`
	Genre       string    `db:"genre" json:"genre" validate:"max=50"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Summary is the listing projection.
type Summary struct {
	Title  string `db:"title" json:"title"`
	Author string `db:"author" json:"author"`
	Genre  string `db:"genre" json:"genre"`
}

// Fields holds the distinct genre and author values of the catalog.
type Fields struct {
	Genres  []string `json:"genres"`
	Authors []string `json:"authors"`
}
