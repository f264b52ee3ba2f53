package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Nickwheeler93/discord-book-bot/internal/domain"
	"github.com/Nickwheeler93/discord-book-bot/internal/store"
)

func intPtr(n int) *int { return &n }

func linkTestBook(title string) domain.NewBook {
	return domain.NewBook{Title: title, Author: "Test Author"}
}

func TestLinkUserBook_Creates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	link, created, err := s.LinkUserBook(ctx, "discord-1", linkTestBook("Dune"), domain.StatusReading, 0)
	if err != nil {
		t.Fatalf("LinkUserBook: %v", err)
	}
	if !created {
		t.Error("expected created=true")
	}
	if link.Status != domain.StatusReading {
		t.Errorf("Status: got %s", link.Status)
	}
	if link.StartedAt == nil {
		t.Error("expected StartedAt set for initial reading status")
	}
	if link.FinishedAt != nil {
		t.Error("expected FinishedAt unset")
	}
	if link.LastMilestone != 0 {
		t.Errorf("LastMilestone: got %d, want 0", link.LastMilestone)
	}
}

func TestLinkUserBook_SecondCallUpdatesInPlace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, created, err := s.LinkUserBook(ctx, "discord-2", linkTestBook("Dune"), domain.StatusPlanToRead, 0)
	if err != nil {
		t.Fatalf("first LinkUserBook: %v", err)
	}
	if !created {
		t.Fatal("expected created=true on first call")
	}

	second, created, err := s.LinkUserBook(ctx, "discord-2", linkTestBook("Dune"), domain.StatusReading, 10)
	if err != nil {
		t.Fatalf("second LinkUserBook: %v", err)
	}
	if created {
		t.Error("expected created=false on second call")
	}
	if second.ID != first.ID {
		t.Errorf("expected same link row, got %q and %q", second.ID, first.ID)
	}
	if second.Status != domain.StatusReading {
		t.Errorf("Status: got %s", second.Status)
	}
	if second.ProgressPct != 10 {
		t.Errorf("ProgressPct: got %d", second.ProgressPct)
	}

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM user_books").Scan(&n); err != nil {
		t.Fatalf("count links: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 link row, got %d", n)
	}
}

func TestLinkUserBook_InvalidStatus(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.LinkUserBook(context.Background(), "discord-3", linkTestBook("Dune"), domain.Status("rereading"), 0)
	if !errors.Is(err, store.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestListLinks_NewestUpdatedFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Control the clock so updated_at ordering is deterministic at second
	// precision.
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for _, title := range []string{"First", "Second", "Third"} {
		if _, _, err := s.LinkUserBook(ctx, "discord-4", linkTestBook(title), domain.StatusReading, 0); err != nil {
			t.Fatalf("LinkUserBook %q: %v", title, err)
		}
	}

	links, err := s.ListLinks(ctx, "discord-4", nil, 50)
	if err != nil {
		t.Fatalf("ListLinks: %v", err)
	}
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(links))
	}
	if links[0].Title != "Third" || links[2].Title != "First" {
		t.Errorf("unexpected order: %q, %q, %q", links[0].Title, links[1].Title, links[2].Title)
	}

	// Touching the oldest moves it to the front.
	first := links[2]
	if err := s.UpdateProgress(ctx, "discord-4", first.BookID, domain.ProgressUpdate{Percent: intPtr(5)}); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	links, err = s.ListLinks(ctx, "discord-4", nil, 50)
	if err != nil {
		t.Fatalf("ListLinks after touch: %v", err)
	}
	if links[0].Title != "First" {
		t.Errorf("expected First on top after update, got %q", links[0].Title)
	}
}

func TestListLinks_StatusFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, _, err := s.LinkUserBook(ctx, "discord-5", linkTestBook("A"), domain.StatusReading, 0); err != nil {
		t.Fatalf("LinkUserBook: %v", err)
	}
	if _, _, err := s.LinkUserBook(ctx, "discord-5", linkTestBook("B"), domain.StatusFinished, 100); err != nil {
		t.Fatalf("LinkUserBook: %v", err)
	}

	reading := domain.StatusReading
	links, err := s.ListLinks(ctx, "discord-5", &reading, 50)
	if err != nil {
		t.Fatalf("ListLinks: %v", err)
	}
	if len(links) != 1 || links[0].Title != "A" {
		t.Errorf("expected only A, got %+v", links)
	}
}

func TestListLinks_InvalidFilter(t *testing.T) {
	s := newTestStore(t)

	bad := domain.Status("abandoned")
	_, err := s.ListLinks(context.Background(), "discord-5", &bad, 50)
	if !errors.Is(err, store.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestListLinks_UnknownUserEmpty(t *testing.T) {
	s := newTestStore(t)

	links, err := s.ListLinks(context.Background(), "discord-nobody", nil, 50)
	if err != nil {
		t.Fatalf("ListLinks: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("expected empty slice, got %d links", len(links))
	}
}

func TestUpdateProgress_PercentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	link, _, err := s.LinkUserBook(ctx, "discord-6", linkTestBook("Dune"), domain.StatusReading, 0)
	if err != nil {
		t.Fatalf("LinkUserBook: %v", err)
	}

	for _, pct := range []int{0, 1, 24, 50, 99, 100} {
		if err := s.UpdateProgress(ctx, "discord-6", link.BookID, domain.ProgressUpdate{Percent: intPtr(pct)}); err != nil {
			t.Fatalf("UpdateProgress(%d): %v", pct, err)
		}
		got, err := s.GetLink(ctx, "discord-6", link.BookID)
		if err != nil {
			t.Fatalf("GetLink: %v", err)
		}
		if got.ProgressPct != pct {
			t.Errorf("ProgressPct: got %d, want %d", got.ProgressPct, pct)
		}
	}
}

func TestUpdateProgress_PartialCoalesce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	link, _, err := s.LinkUserBook(ctx, "discord-7", linkTestBook("Dune"), domain.StatusReading, 0)
	if err != nil {
		t.Fatalf("LinkUserBook: %v", err)
	}

	if err := s.UpdateProgress(ctx, "discord-7", link.BookID, domain.ProgressUpdate{
		Percent:     intPtr(24),
		CurrentPage: intPtr(120),
		TotalPages:  intPtr(500),
	}); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}

	// Percent-only update must leave the page fields untouched.
	if err := s.UpdateProgress(ctx, "discord-7", link.BookID, domain.ProgressUpdate{Percent: intPtr(30)}); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}

	got, err := s.GetLink(ctx, "discord-7", link.BookID)
	if err != nil {
		t.Fatalf("GetLink: %v", err)
	}
	if got.ProgressPct != 30 {
		t.Errorf("ProgressPct: got %d, want 30", got.ProgressPct)
	}
	if got.CurrentPage == nil || *got.CurrentPage != 120 {
		t.Errorf("CurrentPage: got %v, want 120", got.CurrentPage)
	}
	if got.TotalPages == nil || *got.TotalPages != 500 {
		t.Errorf("TotalPages: got %v, want 500", got.TotalPages)
	}
}

func TestUpdateProgress_NotLinked(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Known user, unlinked book.
	if _, err := s.UpsertUser(ctx, "discord-8", "erin"); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	err := s.UpdateProgress(ctx, "discord-8", "bk-missing", domain.ProgressUpdate{Percent: intPtr(50)})
	if !errors.Is(err, store.ErrNotLinked) {
		t.Fatalf("expected ErrNotLinked, got %v", err)
	}

	// Unknown user entirely.
	err = s.UpdateProgress(ctx, "discord-nobody", "bk-missing", domain.ProgressUpdate{Percent: intPtr(50)})
	if !errors.Is(err, store.ErrNotLinked) {
		t.Fatalf("expected ErrNotLinked, got %v", err)
	}
}

func TestUpdateProgress_InvalidTotal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	link, _, err := s.LinkUserBook(ctx, "discord-9", linkTestBook("Dune"), domain.StatusReading, 0)
	if err != nil {
		t.Fatalf("LinkUserBook: %v", err)
	}

	err = s.UpdateProgress(ctx, "discord-9", link.BookID, domain.ProgressUpdate{TotalPages: intPtr(0)})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	// The failed call must leave the row unchanged.
	got, err := s.GetLink(ctx, "discord-9", link.BookID)
	if err != nil {
		t.Fatalf("GetLink: %v", err)
	}
	if got.TotalPages != nil {
		t.Errorf("TotalPages: expected nil, got %v", *got.TotalPages)
	}
}

func TestUpdateStatus_FirstWriteWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	link, _, err := s.LinkUserBook(ctx, "discord-10", linkTestBook("Dune"), domain.StatusReading, 0)
	if err != nil {
		t.Fatalf("LinkUserBook: %v", err)
	}

	if err := s.UpdateStatus(ctx, "discord-10", link.BookID, domain.StatusFinished); err != nil {
		t.Fatalf("UpdateStatus finished: %v", err)
	}
	first, err := s.GetLink(ctx, "discord-10", link.BookID)
	if err != nil {
		t.Fatalf("GetLink: %v", err)
	}
	if first.FinishedAt == nil {
		t.Fatal("FinishedAt not set")
	}

	// Away and back: the original finished_at must survive.
	if err := s.UpdateStatus(ctx, "discord-10", link.BookID, domain.StatusReading); err != nil {
		t.Fatalf("UpdateStatus reading: %v", err)
	}
	if err := s.UpdateStatus(ctx, "discord-10", link.BookID, domain.StatusFinished); err != nil {
		t.Fatalf("UpdateStatus finished again: %v", err)
	}

	second, err := s.GetLink(ctx, "discord-10", link.BookID)
	if err != nil {
		t.Fatalf("GetLink: %v", err)
	}
	if second.FinishedAt == nil {
		t.Fatal("FinishedAt lost")
	}
	if !second.FinishedAt.Equal(*first.FinishedAt) {
		t.Errorf("FinishedAt changed: %v -> %v", first.FinishedAt, second.FinishedAt)
	}
	// StartedAt was set at link time and must be untouched too.
	if !second.StartedAt.Equal(*link.StartedAt) {
		t.Errorf("StartedAt changed: %v -> %v", link.StartedAt, second.StartedAt)
	}
}

func TestUpdateStatus_NotLinked(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateStatus(context.Background(), "discord-nobody", "bk-x", domain.StatusReading)
	if !errors.Is(err, store.ErrNotLinked) {
		t.Fatalf("expected ErrNotLinked, got %v", err)
	}
}

func TestSetLastMilestone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	link, _, err := s.LinkUserBook(ctx, "discord-11", linkTestBook("Dune"), domain.StatusReading, 0)
	if err != nil {
		t.Fatalf("LinkUserBook: %v", err)
	}

	if err := s.SetLastMilestone(ctx, "discord-11", link.BookID, 50); err != nil {
		t.Fatalf("SetLastMilestone: %v", err)
	}
	got, err := s.GetLink(ctx, "discord-11", link.BookID)
	if err != nil {
		t.Fatalf("GetLink: %v", err)
	}
	if got.LastMilestone != 50 {
		t.Errorf("LastMilestone: got %d, want 50", got.LastMilestone)
	}

	if err := s.SetLastMilestone(ctx, "discord-11", "bk-missing", 50); !errors.Is(err, store.ErrNotLinked) {
		t.Errorf("expected ErrNotLinked, got %v", err)
	}
}

func TestSetRatingAndNotes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	link, _, err := s.LinkUserBook(ctx, "discord-12", linkTestBook("Dune"), domain.StatusFinished, 100)
	if err != nil {
		t.Fatalf("LinkUserBook: %v", err)
	}

	if err := s.SetRating(ctx, "discord-12", link.BookID, 5); err != nil {
		t.Fatalf("SetRating: %v", err)
	}
	if err := s.SetRating(ctx, "discord-12", link.BookID, 6); !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for rating 6, got %v", err)
	}
	if err := s.SetNotes(ctx, "discord-12", link.BookID, "sandworms!"); err != nil {
		t.Fatalf("SetNotes: %v", err)
	}

	got, err := s.GetLink(ctx, "discord-12", link.BookID)
	if err != nil {
		t.Fatalf("GetLink: %v", err)
	}
	if got.Rating == nil || *got.Rating != 5 {
		t.Errorf("Rating: got %v, want 5", got.Rating)
	}
	if got.Notes != "sandworms!" {
		t.Errorf("Notes: got %q", got.Notes)
	}
}

func TestDeleteUserCascadesLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	link, _, err := s.LinkUserBook(ctx, "discord-13", linkTestBook("Dune"), domain.StatusReading, 0)
	if err != nil {
		t.Fatalf("LinkUserBook: %v", err)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE external_id = ?`, "discord-13"); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM user_books WHERE id = ?`, link.ID).Scan(&n); err != nil {
		t.Fatalf("count links: %v", err)
	}
	if n != 0 {
		t.Errorf("expected cascade delete, %d link rows remain", n)
	}
}
