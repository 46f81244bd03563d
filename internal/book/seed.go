package book

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/book/entity"
)

// seedRecord is one element of the seed file.
type seedRecord struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
}

// DecodeSeed reads a JSON array of {title, author, description, genre}.
func DecodeSeed(r io.Reader) ([]*entity.Book, error) {
	var records []seedRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	books := make([]*entity.Book, 0, len(records))
	for _, rec := range records {
		books = append(books, &entity.Book{
			Title:       rec.Title,
			Author:      rec.Author,
			Description: rec.Description,
			Genre:       rec.Genre,
		})
	}
	return books, nil
}

// LoadSeedFile opens path and decodes it with DecodeSeed.
func LoadSeedFile(path string) ([]*entity.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeSeed(f)
}
