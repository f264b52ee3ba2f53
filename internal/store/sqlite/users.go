package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Nickwheeler93/discord-book-bot/internal/domain"
	"github.com/Nickwheeler93/discord-book-bot/internal/id"
	"github.com/Nickwheeler93/discord-book-bot/internal/store"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx,
// letting the find/create helpers run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, external_id, display_name, profile_url, created_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		displayName sql.NullString
		profileURL  sql.NullString
		createdAt   string
	)

	err := scanner.Scan(
		&u.ID,
		&u.ExternalID,
		&displayName,
		&profileURL,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	u.DisplayName = displayName.String
	u.ProfileURL = profileURL.String

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// upsertUserTx inserts the user if absent; on conflict the display name is
// merged with coalesce semantics (an empty supplied name preserves the
// stored one). Profile URL is never touched here.
func upsertUserTx(ctx context.Context, q querier, externalID, displayName string, now time.Time) (*domain.User, error) {
	displayName = strings.TrimSpace(displayName)

	row := q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE external_id = ?`, externalID)
	u, err := scanUser(row)
	if err == nil {
		merged := domain.CoalesceString(u.DisplayName, displayName)
		if merged != u.DisplayName {
			if _, err := q.ExecContext(ctx,
				`UPDATE users SET display_name = ? WHERE id = ?`, merged, u.ID); err != nil {
				return nil, err
			}
			u.DisplayName = merged
		}
		return u, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	userID, err := id.Generate("usr")
	if err != nil {
		return nil, err
	}

	u = &domain.User{
		ID:          userID,
		ExternalID:  externalID,
		DisplayName: displayName,
		CreatedAt:   now.Truncate(time.Second),
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO users (id, external_id, display_name, profile_url, created_at)
		VALUES (?, ?, ?, NULL, ?)`,
		u.ID,
		u.ExternalID,
		nullString(u.DisplayName),
		formatTime(u.CreatedAt),
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpsertUser inserts a user row keyed by external identity, or merges the
// display name into the existing row. Idempotent.
func (s *Store) UpsertUser(ctx context.Context, externalID, displayName string) (*domain.User, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, store.ErrInvalidInput.WithCause(nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	u, err := upsertUserTx(ctx, tx, externalID, displayName, s.now())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByExternalID retrieves a user by platform identity.
// Returns store.ErrNotFound if no such user exists.
func (s *Store) GetUserByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE external_id = ?`, externalID)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// SetProfileURL sets or clears the user's profile link.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) SetProfileURL(ctx context.Context, externalID, url string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET profile_url = ? WHERE external_id = ?`,
		nullString(strings.TrimSpace(url)), externalID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
