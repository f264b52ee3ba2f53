package domain

import (
	"strings"
	"time"
)

// Book is a shared catalog entry. It is created lazily the first time any
// user adds a book with that identity and referenced by every link that
// points to it.
type Book struct {
	ID            string    `json:"id"`
	CatalogID     string    `json:"catalog_id,omitempty"` // external catalog volume id
	Title         string    `json:"title"`
	Author        string    `json:"author,omitempty"`
	ISBN13        string    `json:"isbn13,omitempty"`
	PublishedYear int       `json:"published_year,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewBook carries the identity of a catalog entry to find or create.
// Dedupe priority: CatalogID, then ISBN13, then case-insensitive
// (title, author).
type NewBook struct {
	Title         string
	Author        string
	CatalogID     string
	ISBN13        string
	PublishedYear int
}

// Normalize trims the free-text fields. Title is required; returns false
// if it is empty after trimming.
func (nb *NewBook) Normalize() bool {
	nb.Title = strings.TrimSpace(nb.Title)
	nb.Author = strings.TrimSpace(nb.Author)
	nb.CatalogID = strings.TrimSpace(nb.CatalogID)
	nb.ISBN13 = strings.TrimSpace(nb.ISBN13)
	return nb.Title != ""
}
