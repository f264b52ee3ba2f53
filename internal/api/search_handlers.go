package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/Nickwheeler93/discord-book-bot/internal/domain"
	"github.com/Nickwheeler93/discord-book-bot/internal/http/response"
	"github.com/Nickwheeler93/discord-book-bot/internal/service"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
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

	results, err := s.search.Search(ctx, memberID(ctx), query, limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, results, s.logger)
}

// PickResultRequest picks one entry from the member's last search by its
// 1-based index and shelves it.
type PickResultRequest struct {
	Index  int    `json:"index" validate:"required,gte=1"`
	Status string `json:"status" validate:"omitempty,oneof=plan_to_read reading finished dnf paused"`
}

func (s *Server) handlePickResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PickResultRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	result, err := s.search.PickCached(memberID(ctx), req.Index)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	status := domain.StatusPlanToRead
	if req.Status != "" {
		status, _ = domain.ParseStatus(req.Status)
	}

	link, created, err := s.library.AddBook(ctx, memberID(ctx), service.NewBookFromResult(result), status)
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
