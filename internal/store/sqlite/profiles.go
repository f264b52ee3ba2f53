package sqlite

import (
	"context"
	"errors"

	"github.com/Nickwheeler93/discord-book-bot/internal/domain"
	"github.com/Nickwheeler93/discord-book-bot/internal/store"
)

// ProfileSummary returns the user's profile fields plus per-status link
// counts from a single grouped aggregation. Every status key is present,
// zero-filled. An unknown user yields the Exists=false shape with no
// partial data mixed in.
func (s *Store) ProfileSummary(ctx context.Context, externalID string) (*store.ProfileSummary, error) {
	u, err := s.GetUserByExternalID(ctx, externalID)
	if errors.Is(err, store.ErrNotFound) {
		return &store.ProfileSummary{Exists: false, ExternalID: externalID}, nil
	}
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Status]int, len(domain.AllStatuses))
	for _, st := range domain.AllStatuses {
		counts[st] = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM user_books
		WHERE user_id = ?
		GROUP BY status`,
		u.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		if st := domain.Status(status); st.Valid() {
			counts[st] = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &store.ProfileSummary{
		Exists:      true,
		ExternalID:  u.ExternalID,
		DisplayName: u.DisplayName,
		ProfileURL:  u.ProfileURL,
		Counts:      counts,
	}, nil
}
