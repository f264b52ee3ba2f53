package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Nickwheeler93/discord-book-bot/internal/domain"
	"github.com/Nickwheeler93/discord-book-bot/internal/id"
	"github.com/Nickwheeler93/discord-book-bot/internal/store"
)

// linkColumns is the ordered list of user_books columns selected in link
// queries. Must match the scan order in scanReadingLink.
const linkColumns = `ub.id, ub.user_id, ub.book_id, ub.status, ub.progress_pct,
	ub.current_page, ub.total_pages, ub.started_at, ub.finished_at,
	ub.rating, ub.notes, ub.last_milestone, ub.created_at, ub.updated_at`

// linkedBookColumns extends linkColumns with the joined catalog fields.
// Must match the scan order in scanLinkedBook.
const linkedBookColumns = linkColumns + `,
	b.title, b.author, b.isbn13, b.catalog_id, b.published_year`

// scanReadingLink scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.ReadingLink.
func scanReadingLink(scanner interface{ Scan(dest ...any) error }) (*domain.ReadingLink, error) {
	var link domain.ReadingLink

	var (
		status      string
		currentPage sql.NullInt64
		totalPages  sql.NullInt64
		startedAt   sql.NullString
		finishedAt  sql.NullString
		rating      sql.NullInt64
		notes       sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&link.ID,
		&link.UserID,
		&link.BookID,
		&status,
		&link.ProgressPct,
		&currentPage,
		&totalPages,
		&startedAt,
		&finishedAt,
		&rating,
		&notes,
		&link.LastMilestone,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	link.Status = domain.Status(status)
	link.CurrentPage = intPtrFromNull(currentPage)
	link.TotalPages = intPtrFromNull(totalPages)
	link.Rating = intPtrFromNull(rating)
	link.Notes = notes.String

	link.StartedAt, err = parseNullableTime(startedAt)
	if err != nil {
		return nil, err
	}
	link.FinishedAt, err = parseNullableTime(finishedAt)
	if err != nil {
		return nil, err
	}
	link.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	link.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &link, nil
}

// scanLinkedBook scans a joined link+book row into a domain.LinkedBook.
func scanLinkedBook(scanner interface{ Scan(dest ...any) error }) (*domain.LinkedBook, error) {
	var lb domain.LinkedBook

	var (
		status      string
		currentPage sql.NullInt64
		totalPages  sql.NullInt64
		startedAt   sql.NullString
		finishedAt  sql.NullString
		rating      sql.NullInt64
		notes       sql.NullString
		createdAt   string
		updatedAt   string
		author      sql.NullString
		isbn13      sql.NullString
		catalogID   sql.NullString
		year        sql.NullInt64
	)

	err := scanner.Scan(
		&lb.ID,
		&lb.UserID,
		&lb.BookID,
		&status,
		&lb.ProgressPct,
		&currentPage,
		&totalPages,
		&startedAt,
		&finishedAt,
		&rating,
		&notes,
		&lb.LastMilestone,
		&createdAt,
		&updatedAt,
		&lb.Title,
		&author,
		&isbn13,
		&catalogID,
		&year,
	)
	if err != nil {
		return nil, err
	}

	lb.Status = domain.Status(status)
	lb.CurrentPage = intPtrFromNull(currentPage)
	lb.TotalPages = intPtrFromNull(totalPages)
	lb.Rating = intPtrFromNull(rating)
	lb.Notes = notes.String
	lb.Author = author.String
	lb.ISBN13 = isbn13.String
	lb.CatalogID = catalogID.String
	lb.PublishedYear = int(year.Int64)

	lb.StartedAt, err = parseNullableTime(startedAt)
	if err != nil {
		return nil, err
	}
	lb.FinishedAt, err = parseNullableTime(finishedAt)
	if err != nil {
		return nil, err
	}
	lb.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	lb.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &lb, nil
}

// userIDByExternal resolves the surrogate user id for a platform identity.
// Returns store.ErrNotFound for an unknown identity.
func userIDByExternal(ctx context.Context, q querier, externalID string) (string, error) {
	var userID string
	err := q.QueryRowContext(ctx,
		`SELECT id FROM users WHERE external_id = ?`, externalID).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// LinkUserBook links a user to a catalog entry in a single transaction,
// creating the user and the book as needed. If the link already exists, its
// status and progress are updated in place and created=false is returned.
// Returns store.ErrInvalidStatus for a status outside the enum.
func (s *Store) LinkUserBook(ctx context.Context, externalID string, nb domain.NewBook, status domain.Status, progressPct int) (*domain.ReadingLink, bool, error) {
	if !status.Valid() {
		return nil, false, store.ErrInvalidStatus
	}
	progressPct = min(100, max(0, progressPct))

	now := s.now().Truncate(time.Second)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	user, err := upsertUserTx(ctx, tx, externalID, "", now)
	if err != nil {
		return nil, false, err
	}
	book, err := findOrCreateBookTx(ctx, tx, nb, now)
	if err != nil {
		return nil, false, err
	}

	row := tx.QueryRowContext(ctx, `
		SELECT `+linkColumns+` FROM user_books ub
		WHERE ub.user_id = ? AND ub.book_id = ?`,
		user.ID, book.ID)
	link, err := scanReadingLink(row)
	if err != nil && err != sql.ErrNoRows {
		return nil, false, err
	}

	if link != nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE user_books
			SET status = ?, progress_pct = ?, updated_at = ?
			WHERE id = ?`,
			string(status), progressPct, formatTime(now), link.ID)
		if err != nil {
			return nil, false, err
		}
		if err := tx.Commit(); err != nil {
			return nil, false, err
		}
		link.Status = status
		link.ProgressPct = progressPct
		link.UpdatedAt = now
		return link, false, nil
	}

	linkID, err := id.Generate("lnk")
	if err != nil {
		return nil, false, err
	}

	link = &domain.ReadingLink{
		ID:          linkID,
		UserID:      user.ID,
		BookID:      book.ID,
		Status:      status,
		ProgressPct: progressPct,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// Initial timestamps follow the initial status.
	if status == domain.StatusReading {
		link.StartedAt = &now
	}
	if status == domain.StatusFinished {
		link.FinishedAt = &now
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_books (
			id, user_id, book_id, status, progress_pct,
			current_page, total_pages, started_at, finished_at,
			rating, notes, last_milestone, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, NULL, NULL, ?, ?, NULL, NULL, 0, ?, ?)`,
		link.ID,
		link.UserID,
		link.BookID,
		string(link.Status),
		link.ProgressPct,
		nullTimeString(link.StartedAt),
		nullTimeString(link.FinishedAt),
		formatTime(link.CreatedAt),
		formatTime(link.UpdatedAt),
	)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return link, true, nil
}

// ListLinks returns the user's links joined with their catalog entries,
// newest-updated first. An unknown user yields an empty slice, not an error.
// Returns store.ErrInvalidStatus for a filter outside the enum.
func (s *Store) ListLinks(ctx context.Context, externalID string, statusFilter *domain.Status, limit int) ([]domain.LinkedBook, error) {
	if statusFilter != nil && !statusFilter.Valid() {
		return nil, store.ErrInvalidStatus
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + linkedBookColumns + `
		FROM user_books ub
		JOIN books b ON b.id = ub.book_id
		JOIN users u ON u.id = ub.user_id
		WHERE u.external_id = ?`
	args := []any{externalID}

	if statusFilter != nil {
		query += ` AND ub.status = ?`
		args = append(args, string(*statusFilter))
	}

	// created_at breaks updated_at ties so the order is deterministic;
	// resolution indexes into this exact sequence.
	query += ` ORDER BY ub.updated_at DESC, ub.created_at DESC, ub.id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []domain.LinkedBook{}
	for rows.Next() {
		lb, err := scanLinkedBook(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *lb)
	}
	return links, rows.Err()
}

// GetLink retrieves a single joined link row for a (user, book) pair.
// Returns store.ErrNotLinked if the pair has no link.
func (s *Store) GetLink(ctx context.Context, externalID, bookID string) (*domain.LinkedBook, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+linkedBookColumns+`
		FROM user_books ub
		JOIN books b ON b.id = ub.book_id
		JOIN users u ON u.id = ub.user_id
		WHERE u.external_id = ? AND ub.book_id = ?`,
		externalID, bookID)

	lb, err := scanLinkedBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotLinked
	}
	if err != nil {
		return nil, err
	}
	return lb, nil
}

// UpdateProgress applies a partial progress update: supplied fields
// overwrite, omitted fields are kept (coalesce semantics). Returns
// store.ErrNotLinked if the pair has no link and store.ErrInvalidInput if a
// non-positive total page count is supplied.
func (s *Store) UpdateProgress(ctx context.Context, externalID, bookID string, upd domain.ProgressUpdate) error {
	if upd.TotalPages != nil && *upd.TotalPages <= 0 {
		return store.ErrInvalidInput
	}
	if upd.CurrentPage != nil && *upd.CurrentPage < 0 {
		return store.ErrInvalidInput
	}

	now := s.now().Truncate(time.Second)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	userID, err := userIDByExternal(ctx, tx, externalID)
	if err == store.ErrNotFound {
		return store.ErrNotLinked
	}
	if err != nil {
		return err
	}

	row := tx.QueryRowContext(ctx, `
		SELECT `+linkColumns+` FROM user_books ub
		WHERE ub.user_id = ? AND ub.book_id = ?`,
		userID, bookID)
	link, err := scanReadingLink(row)
	if err == sql.ErrNoRows {
		return store.ErrNotLinked
	}
	if err != nil {
		return err
	}

	// Merge explicitly rather than in SQL so the semantics stay visible.
	pct := link.ProgressPct
	if upd.Percent != nil {
		pct = min(100, max(0, *upd.Percent))
	}
	currentPage := domain.CoalesceInt(link.CurrentPage, upd.CurrentPage)
	totalPages := domain.CoalesceInt(link.TotalPages, upd.TotalPages)

	_, err = tx.ExecContext(ctx, `
		UPDATE user_books
		SET progress_pct = ?, current_page = ?, total_pages = ?, updated_at = ?
		WHERE id = ?`,
		pct,
		nullIntPtr(currentPage),
		nullIntPtr(totalPages),
		formatTime(now),
		link.ID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateStatus transitions a link's status. The started/finished timestamps
// are set to now only when transitioning into reading/finished respectively
// and only if not already set (first write wins). Returns
// store.ErrNotLinked if the pair has no link.
func (s *Store) UpdateStatus(ctx context.Context, externalID, bookID string, status domain.Status) error {
	if !status.Valid() {
		return store.ErrInvalidStatus
	}

	now := s.now().Truncate(time.Second)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	userID, err := userIDByExternal(ctx, tx, externalID)
	if err == store.ErrNotFound {
		return store.ErrNotLinked
	}
	if err != nil {
		return err
	}

	row := tx.QueryRowContext(ctx, `
		SELECT `+linkColumns+` FROM user_books ub
		WHERE ub.user_id = ? AND ub.book_id = ?`,
		userID, bookID)
	link, err := scanReadingLink(row)
	if err == sql.ErrNoRows {
		return store.ErrNotLinked
	}
	if err != nil {
		return err
	}

	startedAt := link.StartedAt
	finishedAt := link.FinishedAt
	if status == domain.StatusReading {
		startedAt = domain.FirstWriteTime(startedAt, &now)
	}
	if status == domain.StatusFinished {
		finishedAt = domain.FirstWriteTime(finishedAt, &now)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE user_books
		SET status = ?, started_at = ?, finished_at = ?, updated_at = ?
		WHERE id = ?`,
		string(status),
		nullTimeString(startedAt),
		nullTimeString(finishedAt),
		formatTime(now),
		link.ID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// SetLastMilestone unconditionally overwrites the last announced milestone
// threshold. Returns store.ErrNotLinked if the pair has no link.
func (s *Store) SetLastMilestone(ctx context.Context, externalID, bookID string, threshold int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE user_books
		SET last_milestone = ?, updated_at = ?
		WHERE user_id = (SELECT id FROM users WHERE external_id = ?)
		  AND book_id = ?`,
		threshold, formatTime(s.now()), externalID, bookID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotLinked
	}
	return nil
}

// SetRating sets the user's 1-5 star rating for a linked book.
func (s *Store) SetRating(ctx context.Context, externalID, bookID string, rating int) error {
	if rating < 1 || rating > 5 {
		return store.ErrInvalidInput
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE user_books
		SET rating = ?, updated_at = ?
		WHERE user_id = (SELECT id FROM users WHERE external_id = ?)
		  AND book_id = ?`,
		rating, formatTime(s.now()), externalID, bookID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotLinked
	}
	return nil
}

// SetNotes replaces the user's notes for a linked book.
func (s *Store) SetNotes(ctx context.Context, externalID, bookID, notes string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE user_books
		SET notes = ?, updated_at = ?
		WHERE user_id = (SELECT id FROM users WHERE external_id = ?)
		  AND book_id = ?`,
		nullString(notes), formatTime(s.now()), externalID, bookID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotLinked
	}
	return nil
}
