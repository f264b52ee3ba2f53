// Package store defines the persistence contract for the book bot core and
// the error sentinels shared by its implementations.
package store

import (
	"context"

	"github.com/Nickwheeler93/discord-book-bot/internal/domain"
)

// ProfileSummary is the read model for a user's profile: either the
// not-found shape (Exists=false, nothing else populated) or the full shape
// with counts for every status, zero-filled.
type ProfileSummary struct {
	Exists      bool                  `json:"exists"`
	ExternalID  string                `json:"external_id"`
	DisplayName string                `json:"display_name,omitempty"`
	ProfileURL  string                `json:"profile_url,omitempty"`
	Counts      map[domain.Status]int `json:"counts,omitempty"`
}

// Store is the persistence contract consumed by the services. All operations
// are keyed by the platform-assigned external user identity; every write is
// a single transaction.
type Store interface {
	// Users.
	UpsertUser(ctx context.Context, externalID, displayName string) (*domain.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	SetProfileURL(ctx context.Context, externalID, url string) error

	// Catalog.
	FindOrCreateBook(ctx context.Context, nb domain.NewBook) (*domain.Book, error)
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	SearchBooks(ctx context.Context, query string, limit int) ([]*domain.Book, error)

	// Links.
	LinkUserBook(ctx context.Context, externalID string, nb domain.NewBook, status domain.Status, progressPct int) (*domain.ReadingLink, bool, error)
	ListLinks(ctx context.Context, externalID string, statusFilter *domain.Status, limit int) ([]domain.LinkedBook, error)
	GetLink(ctx context.Context, externalID, bookID string) (*domain.LinkedBook, error)
	UpdateProgress(ctx context.Context, externalID, bookID string, upd domain.ProgressUpdate) error
	UpdateStatus(ctx context.Context, externalID, bookID string, status domain.Status) error
	SetLastMilestone(ctx context.Context, externalID, bookID string, threshold int) error
	SetRating(ctx context.Context, externalID, bookID string, rating int) error
	SetNotes(ctx context.Context, externalID, bookID, notes string) error

	// Profiles.
	ProfileSummary(ctx context.Context, externalID string) (*ProfileSummary, error)
}
