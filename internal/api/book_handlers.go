package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/Nickwheeler93/discord-book-bot/internal/domain"
	"github.com/Nickwheeler93/discord-book-bot/internal/http/response"
)

// AddBookRequest identifies a catalog entry to put on the shelf. Title is
// the only required field; the rest sharpen dedupe.
type AddBookRequest struct {
	Title         string `json:"title" validate:"required,max=512"`
	Author        string `json:"author" validate:"max=256"`
	CatalogID     string `json:"catalog_id" validate:"max=64"`
	ISBN13        string `json:"isbn13" validate:"max=13"`
	PublishedYear int    `json:"published_year" validate:"gte=0"`
	Status        string `json:"status" validate:"omitempty,oneof=plan_to_read reading finished dnf paused"`
}

// LinkResponse wraps a shelf entry plus whether this call created it.
type LinkResponse struct {
	Book    *domain.LinkedBook `json:"book"`
	Created bool               `json:"created"`
}

func (s *Server) handleAddBook(w http.ResponseWriter, r *http.Request) {
	s.addBook(w, r, domain.StatusPlanToRead)
}

func (s *Server) handleStartBook(w http.ResponseWriter, r *http.Request) {
	s.addBook(w, r, domain.StatusReading)
}

func (s *Server) addBook(w http.ResponseWriter, r *http.Request, defaultStatus domain.Status) {
	ctx := r.Context()

	var req AddBookRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	status := defaultStatus
	if req.Status != "" {
		status, _ = domain.ParseStatus(req.Status)
	}

	nb := domain.NewBook{
		Title:         req.Title,
		Author:        req.Author,
		CatalogID:     req.CatalogID,
		ISBN13:        req.ISBN13,
		PublishedYear: req.PublishedYear,
	}

	link, created, err := s.library.AddBook(ctx, memberID(ctx), nb, status)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	resp := LinkResponse{Book: link, Created: created}
	if created {
		response.Created(w, resp, s.logger)
		return
	}
	response.Success(w, resp, s.logger)
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var statusFilter *domain.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := domain.ParseStatus(raw)
		if !ok {
			response.BadRequest(w, "unknown status "+strconv.Quote(raw), s.logger)
			return
		}
		statusFilter = &status
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(w, "limit must be a non-negative integer", s.logger)
			return
		}
		limit = n
	}

	links, err := s.library.ListBooks(ctx, memberID(ctx), statusFilter, limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, links, s.logger)
}

func (s *Server) handleBrowseCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("q")
	if query == "" {
		response.BadRequest(w, "q query parameter is required", s.logger)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(w, "limit must be a non-negative integer", s.logger)
			return
		}
		limit = n
	}

	books, err := s.library.BrowseCatalog(ctx, query, limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, books, s.logger)
}

// ProgressRequest is the body for POST /books/progress. Book is the
// resolution token (index, title, or fragment) and may be empty when the
// member has a single book in flight.
type ProgressRequest struct {
	Book     string `json:"book" validate:"max=512"`
	Progress string `json:"progress" validate:"required,max=32"`
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ProgressRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	report, err := s.library.UpdateProgress(ctx, memberID(ctx), req.Book, req.Progress)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, report, s.logger)
}

// StatusRequest is the body for POST /books/status.
type StatusRequest struct {
	Book   string `json:"book" validate:"max=512"`
	Status string `json:"status" validate:"required,oneof=plan_to_read reading finished dnf paused"`
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req StatusRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	link, err := s.library.SetStatus(ctx, memberID(ctx), req.Book, req.Status)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, link, s.logger)
}

// FinishRequest is the body for POST /books/finish.
type FinishRequest struct {
	Book string `json:"book" validate:"max=512"`
}

func (s *Server) handleFinishBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req FinishRequest
	if r.ContentLength != 0 {
		if err := json.UnmarshalRead(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid request body", s.logger)
			return
		}
	}

	link, err := s.library.FinishBook(ctx, memberID(ctx), req.Book)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, link, s.logger)
}

// RateRequest is the body for POST /books/rating.
type RateRequest struct {
	Book   string `json:"book" validate:"max=512"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Notes  string `json:"notes" validate:"max=2000"`
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RateRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	link, err := s.library.Rate(ctx, memberID(ctx), req.Book, req.Rating, req.Notes)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, link, s.logger)
}
