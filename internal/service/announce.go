package service

import (
	"context"
	"log/slog"

	"github.com/Nickwheeler93/discord-book-bot/internal/domain"
)

// Announcer receives the events the bot broadcasts to the server. The core
// never renders user-facing text; implementations own the wording and the
// delivery channel.
type Announcer interface {
	// Welcome fires once when a member's profile is first created.
	Welcome(ctx context.Context, user *domain.User)

	// Milestone fires once per newly crossed threshold, in ascending order.
	Milestone(ctx context.Context, user *domain.User, book *domain.LinkedBook, threshold int)
}

// NoopAnnouncer discards all announcements. Used in tests and in deployments
// that disable broadcasts.
type NoopAnnouncer struct{}

func (NoopAnnouncer) Welcome(context.Context, *domain.User) {}

func (NoopAnnouncer) Milestone(context.Context, *domain.User, *domain.LinkedBook, int) {}

// LogAnnouncer writes announcements to the structured log. It stands in for
// the chat transport in development and doubles as an audit trail behind a
// real delivery implementation.
type LogAnnouncer struct {
	logger *slog.Logger
}

// NewLogAnnouncer creates an announcer backed by the given logger.
func NewLogAnnouncer(logger *slog.Logger) *LogAnnouncer {
	return &LogAnnouncer{logger: logger}
}

func (a *LogAnnouncer) Welcome(_ context.Context, user *domain.User) {
	a.logger.Info("welcome announcement",
		"external_id", user.ExternalID,
		"display_name", user.DisplayName,
	)
}

func (a *LogAnnouncer) Milestone(_ context.Context, user *domain.User, book *domain.LinkedBook, threshold int) {
	a.logger.Info("milestone announcement",
		"external_id", user.ExternalID,
		"book_id", book.BookID,
		"title", book.Title,
		"threshold", threshold,
	)
}
