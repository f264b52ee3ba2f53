package domain

import (
	"strconv"
	"strings"
)

// ResolveOutcome is the tagged result of book resolution. Ambiguity is a
// normal control-flow outcome (the caller re-prompts with the candidate
// list), not a failure.
type ResolveOutcome string

const (
	ResolveFound     ResolveOutcome = "found"
	ResolveNone      ResolveOutcome = "none"      // scope is empty
	ResolveAmbiguous ResolveOutcome = "ambiguous" // no token, several candidates
	ResolveNotFound  ResolveOutcome = "not_found" // token matched nothing
)

// ResolveResult carries the outcome of resolving a user token to one book.
// Candidates is populated on ResolveAmbiguous, in scope order, so the caller
// can list them with 1-based indices matching later index tokens.
type ResolveResult struct {
	Outcome    ResolveOutcome
	Book       *LinkedBook
	Candidates []LinkedBook
}

// ResolveBook maps a user-supplied token to a single book within scope.
// scope is the user's links filtered to one status, in the exact order the
// store returned them (newest-updated first); all is the user's full link
// list used as the substring-match fallback.
//
// Resolution order:
//  1. Exactly one link in scope: that link, token ignored.
//  2. Empty scope: none.
//  3. No token with several links: ambiguous.
//  4. Positive-integer token: 1-based index into the scope order.
//  5. Exact case-insensitive title match in scope, then substring match in
//     scope, then substring match across the full list. First hit wins.
func ResolveBook(scope, all []LinkedBook, token string) ResolveResult {
	token = strings.TrimSpace(token)

	if len(scope) == 1 {
		return ResolveResult{Outcome: ResolveFound, Book: &scope[0]}
	}
	if len(scope) == 0 {
		return ResolveResult{Outcome: ResolveNone}
	}
	if token == "" {
		return ResolveResult{Outcome: ResolveAmbiguous, Candidates: scope}
	}

	if idx, err := strconv.Atoi(token); err == nil && idx > 0 {
		if idx > len(scope) {
			return ResolveResult{Outcome: ResolveNotFound}
		}
		return ResolveResult{Outcome: ResolveFound, Book: &scope[idx-1]}
	}

	lower := strings.ToLower(token)

	for i := range scope {
		if strings.ToLower(scope[i].Title) == lower {
			return ResolveResult{Outcome: ResolveFound, Book: &scope[i]}
		}
	}
	for i := range scope {
		if strings.Contains(strings.ToLower(scope[i].Title), lower) {
			return ResolveResult{Outcome: ResolveFound, Book: &scope[i]}
		}
	}
	for i := range all {
		if strings.Contains(strings.ToLower(all[i].Title), lower) {
			return ResolveResult{Outcome: ResolveFound, Book: &all[i]}
		}
	}

	return ResolveResult{Outcome: ResolveNotFound}
}
