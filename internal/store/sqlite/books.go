package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Nickwheeler93/discord-book-bot/internal/domain"
	"github.com/Nickwheeler93/discord-book-bot/internal/id"
	"github.com/Nickwheeler93/discord-book-bot/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, catalog_id, title, author, isbn13, published_year, created_at`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		catalogID sql.NullString
		author    sql.NullString
		isbn13    sql.NullString
		year      sql.NullInt64
		createdAt string
	)

	err := scanner.Scan(
		&b.ID,
		&catalogID,
		&b.Title,
		&author,
		&isbn13,
		&year,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	b.CatalogID = catalogID.String
	b.Author = author.String
	b.ISBN13 = isbn13.String
	b.PublishedYear = int(year.Int64)

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// findOrCreateBookTx resolves a catalog entry inside an open transaction.
// Dedupe priority: external catalog id, then ISBN-13, then case-insensitive
// (title, author). Inserts a new row only when nothing matched.
func findOrCreateBookTx(ctx context.Context, q querier, nb domain.NewBook, now time.Time) (*domain.Book, error) {
	if !nb.Normalize() {
		return nil, store.ErrInvalidInput.WithCause(nil)
	}

	if nb.CatalogID != "" {
		row := q.QueryRowContext(ctx,
			`SELECT `+bookColumns+` FROM books WHERE catalog_id = ?`, nb.CatalogID)
		b, err := scanBook(row)
		if err == nil {
			return b, nil
		}
		if err != sql.ErrNoRows {
			return nil, err
		}
	}

	if nb.ISBN13 != "" {
		row := q.QueryRowContext(ctx,
			`SELECT `+bookColumns+` FROM books WHERE isbn13 = ?`, nb.ISBN13)
		b, err := scanBook(row)
		if err == nil {
			return b, nil
		}
		if err != sql.ErrNoRows {
			return nil, err
		}
	}

	row := q.QueryRowContext(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE lower(title) = lower(?) AND lower(COALESCE(author, '')) = lower(?)`,
		nb.Title, nb.Author)
	b, err := scanBook(row)
	if err == nil {
		return b, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	bookID, err := id.Generate("bk")
	if err != nil {
		return nil, err
	}

	b = &domain.Book{
		ID:            bookID,
		CatalogID:     nb.CatalogID,
		Title:         nb.Title,
		Author:        nb.Author,
		ISBN13:        nb.ISBN13,
		PublishedYear: nb.PublishedYear,
		CreatedAt:     now.Truncate(time.Second),
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO books (id, catalog_id, title, author, isbn13, published_year, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		nullString(b.CatalogID),
		b.Title,
		nullString(b.Author),
		nullString(b.ISBN13),
		nullYear(b.PublishedYear),
		formatTime(b.CreatedAt),
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// FindOrCreateBook returns the catalog entry matching the given identity,
// creating it if absent. Idempotent: the same identity always resolves to
// the same row. Returns store.ErrInvalidInput on an empty title.
func (s *Store) FindOrCreateBook(ctx context.Context, nb domain.NewBook) (*domain.Book, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	b, err := findOrCreateBookTx(ctx, tx, nb, s.now())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBook retrieves a catalog entry by internal ID.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, bookID)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// SearchBooks does a substring search over the local catalog by title or
// author, ordered by title.
func (s *Store) SearchBooks(ctx context.Context, query string, limit int) ([]*domain.Book, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + query + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE title LIKE ? OR author LIKE ?
		ORDER BY title ASC
		LIMIT ?`,
		pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}
