package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/Nickwheeler93/discord-book-bot/internal/http/response"
)

// memberIDHeader carries the opaque platform identity of the member issuing
// the command. The chat transport sets it from the message author.
const memberIDHeader = "X-Member-ID"

type contextKey string

const memberIDKey contextKey = "member_id"

// requireMember rejects requests without a member identity header and puts
// the identity on the request context for handlers.
func (s *Server) requireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		externalID := strings.TrimSpace(r.Header.Get(memberIDHeader))
		if externalID == "" {
			response.Unauthorized(w, "missing "+memberIDHeader+" header", s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), memberIDKey, externalID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// memberID returns the member identity placed on the context by
// requireMember, or "" outside that middleware.
func memberID(ctx context.Context) string {
	id, _ := ctx.Value(memberIDKey).(string)
	return id
}

// rateLimitByMember throttles commands per member identity. Runs after
// requireMember so the key is always present.
func (s *Server) rateLimitByMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(memberID(r.Context())) {
			s.logger.Warn("rate limit exceeded",
				"external_id", memberID(r.Context()),
				"path", r.URL.Path,
			)
			response.TooManyRequests(w, "Too many commands. Slow down.", s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}
