package domain

import "time"

// ReadingLink is the per-user relationship to a catalog book: status,
// progress, and milestone bookkeeping. One row per (user, book) pair.
type ReadingLink struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	BookID      string     `json:"book_id"`
	Status      Status     `json:"status"`
	ProgressPct int        `json:"progress_pct"`
	CurrentPage *int       `json:"current_page,omitempty"`
	TotalPages  *int       `json:"total_pages,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Rating      *int       `json:"rating,omitempty"`
	Notes       string     `json:"notes,omitempty"`

	// LastMilestone is the highest milestone threshold already announced
	// for this link. Monotonic: milestone detection only ever raises it.
	LastMilestone int `json:"last_milestone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LinkedBook is a link joined with its catalog entry, as returned by list
// queries. Ordering is newest-updated first; resolution indexes into this
// exact order.
type LinkedBook struct {
	ReadingLink
	Title         string `json:"title"`
	Author        string `json:"author,omitempty"`
	ISBN13        string `json:"isbn13,omitempty"`
	CatalogID     string `json:"catalog_id,omitempty"`
	PublishedYear int    `json:"published_year,omitempty"`
}
