package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/Nickwheeler93/discord-book-bot/internal/http/response"
)

// RegisterMemberRequest is the body for POST /members.
type RegisterMemberRequest struct {
	DisplayName string `json:"display_name" validate:"max=256"`
}

// RegisterMemberResponse reports the member profile and whether it was just
// created (which is when the welcome announcement fired).
type RegisterMemberResponse struct {
	Member  any  `json:"member"`
	Created bool `json:"created"`
}

func (s *Server) handleRegisterMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterMemberRequest
	if r.ContentLength != 0 {
		if err := json.UnmarshalRead(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid request body", s.logger)
			return
		}
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	user, created, err := s.library.RegisterMember(ctx, memberID(ctx), req.DisplayName)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	resp := RegisterMemberResponse{Member: user, Created: created}
	if created {
		response.Created(w, resp, s.logger)
		return
	}
	response.Success(w, resp, s.logger)
}

// SetProfileURLRequest is the body for PUT /members/me/profile-url.
type SetProfileURLRequest struct {
	URL string `json:"url" validate:"required,url"`
}

func (s *Server) handleSetProfileURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SetProfileURLRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.library.SetProfileURL(ctx, memberID(ctx), req.URL); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := s.library.Profile(ctx, memberID(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, summary, s.logger)
}
