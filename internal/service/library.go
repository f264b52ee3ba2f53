// Package service provides the business logic layer for the book bot:
// member registration, shelf management, progress tracking, and catalog
// search. Services orchestrate the pure domain logic against the store and
// hand announcements to an Announcer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Nickwheeler93/discord-book-bot/internal/domain"
	domainerrors "github.com/Nickwheeler93/discord-book-bot/internal/errors"
	"github.com/Nickwheeler93/discord-book-bot/internal/store"
)

// LibraryService orchestrates shelf operations: resolution, progress
// reconciliation, store writes, and milestone detection, in that order.
type LibraryService struct {
	store     store.Store
	announcer Announcer
	logger    *slog.Logger
}

// NewLibraryService creates a new library service.
func NewLibraryService(st store.Store, announcer Announcer, logger *slog.Logger) *LibraryService {
	if announcer == nil {
		announcer = NoopAnnouncer{}
	}
	return &LibraryService{
		store:     st,
		announcer: announcer,
		logger:    logger,
	}
}

// ProgressReport is the outcome of a progress update: the refreshed link and
// the milestone thresholds newly crossed by it, ascending.
type ProgressReport struct {
	Book              *domain.LinkedBook `json:"book"`
	CrossedMilestones []int              `json:"crossed_milestones,omitempty"`
}

// RegisterMember upserts the member's profile and fires a welcome
// announcement on first contact. Returns the profile and whether it was
// newly created.
func (s *LibraryService) RegisterMember(ctx context.Context, externalID, displayName string) (*domain.User, bool, error) {
	if externalID == "" {
		return nil, false, domainerrors.Validation("external id is required")
	}

	_, err := s.store.GetUserByExternalID(ctx, externalID)
	created := errors.Is(err, store.ErrNotFound)
	if err != nil && !created {
		return nil, false, fmt.Errorf("lookup user: %w", err)
	}

	user, err := s.store.UpsertUser(ctx, externalID, displayName)
	if err != nil {
		return nil, false, mapStoreError(err)
	}

	if created {
		s.logger.Info("member registered", "external_id", externalID)
		s.announcer.Welcome(ctx, user)
	}
	return user, created, nil
}

// SetProfileURL updates the member's profile link.
func (s *LibraryService) SetProfileURL(ctx context.Context, externalID, url string) error {
	if err := s.store.SetProfileURL(ctx, externalID, url); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.UnknownUser("no profile for this member")
		}
		return mapStoreError(err)
	}
	return nil
}

// AddBook puts a book on the member's shelf with the given status, creating
// the member profile and the catalog entry as needed. A second call for the
// same (member, book) pair updates the existing link in place.
func (s *LibraryService) AddBook(ctx context.Context, externalID string, nb domain.NewBook, status domain.Status) (*domain.LinkedBook, bool, error) {
	link, created, err := s.store.LinkUserBook(ctx, externalID, nb, status, 0)
	if err != nil {
		return nil, false, mapStoreError(err)
	}

	s.logger.Info("book linked",
		"external_id", externalID,
		"book_id", link.BookID,
		"status", status,
		"created", created,
	)

	full, err := s.store.GetLink(ctx, externalID, link.BookID)
	if err != nil {
		return nil, false, mapStoreError(err)
	}
	return full, created, nil
}

// StartBook is AddBook with status reading, the common "I started X" path.
func (s *LibraryService) StartBook(ctx context.Context, externalID string, nb domain.NewBook) (*domain.LinkedBook, bool, error) {
	return s.AddBook(ctx, externalID, nb, domain.StatusReading)
}

// BrowseCatalog searches books other members have already added, by title or
// author substring. It never calls out to the external catalog.
func (s *LibraryService) BrowseCatalog(ctx context.Context, query string, limit int) ([]*domain.Book, error) {
	books, err := s.store.SearchBooks(ctx, query, limit)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return books, nil
}

// ListBooks returns the member's shelf, newest-updated first, optionally
// filtered to one status. An unknown member gets an empty shelf, not an
// error.
func (s *LibraryService) ListBooks(ctx context.Context, externalID string, statusFilter *domain.Status, limit int) ([]domain.LinkedBook, error) {
	links, err := s.store.ListLinks(ctx, externalID, statusFilter, limit)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return links, nil
}

// ResolveBook maps a member-supplied token (1-based index, exact title, or
// title fragment) to a single shelf entry within the given status scope.
// Ambiguity comes back as a coded error carrying the candidate list so the
// caller can re-prompt with indices.
func (s *LibraryService) ResolveBook(ctx context.Context, externalID, token string, scope *domain.Status) (*domain.LinkedBook, error) {
	scoped, err := s.store.ListLinks(ctx, externalID, scope, 0)
	if err != nil {
		return nil, mapStoreError(err)
	}

	all := scoped
	if scope != nil {
		all, err = s.store.ListLinks(ctx, externalID, nil, 0)
		if err != nil {
			return nil, mapStoreError(err)
		}
	}

	res := domain.ResolveBook(scoped, all, token)
	switch res.Outcome {
	case domain.ResolveFound:
		return res.Book, nil
	case domain.ResolveNone:
		return nil, domainerrors.NotLinked("no books in scope")
	case domain.ResolveAmbiguous:
		return nil, domainerrors.Ambiguous("several books match", res.Candidates)
	default:
		return nil, domainerrors.NotFound("no book matches that token")
	}
}

// UpdateProgress resolves bookToken against the member's reading scope,
// reconciles the raw progress token ("40%", "120/500", or a bare page
// number) into a partial update, writes it, and runs milestone detection
// over the result. Newly crossed thresholds are announced and recorded.
func (s *LibraryService) UpdateProgress(ctx context.Context, externalID, bookToken, rawProgress string) (*ProgressReport, error) {
	token, err := domain.ParseProgressToken(rawProgress)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	reading := domain.StatusReading
	link, err := s.ResolveBook(ctx, externalID, bookToken, &reading)
	if err != nil {
		return nil, err
	}

	upd, err := token.Reconcile(link.TotalPages)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	if err := s.store.UpdateProgress(ctx, externalID, link.BookID, upd); err != nil {
		return nil, mapStoreError(err)
	}

	after, err := s.store.GetLink(ctx, externalID, link.BookID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	crossed, newLast := domain.CrossedMilestones(link.LastMilestone, after.ProgressPct)
	if len(crossed) > 0 {
		if err := s.store.SetLastMilestone(ctx, externalID, link.BookID, newLast); err != nil {
			return nil, mapStoreError(err)
		}
		after.LastMilestone = newLast

		user, err := s.store.GetUserByExternalID(ctx, externalID)
		if err != nil {
			return nil, mapStoreError(err)
		}
		for _, threshold := range crossed {
			s.announcer.Milestone(ctx, user, after, threshold)
		}
	}

	s.logger.Info("progress updated",
		"external_id", externalID,
		"book_id", link.BookID,
		"percent", after.ProgressPct,
		"crossed", crossed,
	)

	return &ProgressReport{Book: after, CrossedMilestones: crossed}, nil
}

// SetStatus resolves bookToken against the member's full shelf and moves the
// link to the given status. Started/finished timestamps follow first-write
// semantics in the store.
func (s *LibraryService) SetStatus(ctx context.Context, externalID, bookToken string, rawStatus string) (*domain.LinkedBook, error) {
	status, ok := domain.ParseStatus(rawStatus)
	if !ok {
		return nil, domainerrors.Validationf("unknown status %q", rawStatus)
	}

	link, err := s.ResolveBook(ctx, externalID, bookToken, nil)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateStatus(ctx, externalID, link.BookID, status); err != nil {
		return nil, mapStoreError(err)
	}

	s.logger.Info("status changed",
		"external_id", externalID,
		"book_id", link.BookID,
		"status", status,
	)

	return s.refreshLink(ctx, externalID, link.BookID)
}

// FinishBook marks the resolved book finished.
func (s *LibraryService) FinishBook(ctx context.Context, externalID, bookToken string) (*domain.LinkedBook, error) {
	return s.SetStatus(ctx, externalID, bookToken, string(domain.StatusFinished))
}

// Rate attaches a 1-5 rating and optional notes to the resolved book.
func (s *LibraryService) Rate(ctx context.Context, externalID, bookToken string, rating int, notes string) (*domain.LinkedBook, error) {
	link, err := s.ResolveBook(ctx, externalID, bookToken, nil)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetRating(ctx, externalID, link.BookID, rating); err != nil {
		return nil, mapStoreError(err)
	}
	if notes != "" {
		if err := s.store.SetNotes(ctx, externalID, link.BookID, notes); err != nil {
			return nil, mapStoreError(err)
		}
	}

	return s.refreshLink(ctx, externalID, link.BookID)
}

// Profile returns the member's profile summary with zero-filled counts per
// status, or the exists=false shape for an unknown member.
func (s *LibraryService) Profile(ctx context.Context, externalID string) (*store.ProfileSummary, error) {
	summary, err := s.store.ProfileSummary(ctx, externalID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return summary, nil
}

func (s *LibraryService) refreshLink(ctx context.Context, externalID, bookID string) (*domain.LinkedBook, error) {
	link, err := s.store.GetLink(ctx, externalID, bookID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return link, nil
}

// mapStoreError translates store sentinels into coded domain errors so the
// command layer sees one error vocabulary.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotLinked):
		return domainerrors.NotLinked("that book is not on the shelf").WithCause(err)
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound("not found").WithCause(err)
	case errors.Is(err, store.ErrInvalidStatus), errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Validation(err.Error())
	default:
		return domainerrors.Internal("storage failure").WithCause(err)
	}
}
