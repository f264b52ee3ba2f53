package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linked(bookID, title string) LinkedBook {
	return LinkedBook{
		ReadingLink: ReadingLink{BookID: bookID, Status: StatusReading},
		Title:       title,
	}
}

func TestResolveBook_SingleLinkIgnoresToken(t *testing.T) {
	scope := []LinkedBook{linked("bk-1", "Project Hail Mary")}

	res := ResolveBook(scope, scope, "totally unrelated")

	require.Equal(t, ResolveFound, res.Outcome)
	assert.Equal(t, "bk-1", res.Book.BookID)
}

func TestResolveBook_EmptyScope(t *testing.T) {
	res := ResolveBook(nil, nil, "anything")
	assert.Equal(t, ResolveNone, res.Outcome)
}

func TestResolveBook_NoTokenSeveralLinks(t *testing.T) {
	scope := []LinkedBook{linked("bk-1", "A"), linked("bk-2", "B")}

	res := ResolveBook(scope, scope, "")

	require.Equal(t, ResolveAmbiguous, res.Outcome)
	// Candidates keep scope order so the caller's 1-based listing matches
	// later index tokens.
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "bk-1", res.Candidates[0].BookID)
	assert.Equal(t, "bk-2", res.Candidates[1].BookID)
}

func TestResolveBook_IndexToken(t *testing.T) {
	scope := []LinkedBook{linked("bk-1", "A"), linked("bk-2", "B"), linked("bk-3", "C")}

	res := ResolveBook(scope, scope, "2")

	require.Equal(t, ResolveFound, res.Outcome)
	assert.Equal(t, "bk-2", res.Book.BookID)
}

func TestResolveBook_IndexOutOfRange(t *testing.T) {
	scope := []LinkedBook{linked("bk-1", "A"), linked("bk-2", "B")}

	res := ResolveBook(scope, scope, "7")
	assert.Equal(t, ResolveNotFound, res.Outcome)
}

func TestResolveBook_ExactTitleBeatsSubstring(t *testing.T) {
	scope := []LinkedBook{
		linked("bk-1", "Dune Messiah"),
		linked("bk-2", "Dune"),
	}

	res := ResolveBook(scope, scope, "dune")

	require.Equal(t, ResolveFound, res.Outcome)
	assert.Equal(t, "bk-2", res.Book.BookID)
}

func TestResolveBook_SubstringMatch(t *testing.T) {
	scope := []LinkedBook{
		linked("bk-1", "The Left Hand of Darkness"),
		linked("bk-2", "A Memory Called Empire"),
		linked("bk-3", "Dune Messiah"),
	}

	res := ResolveBook(scope, scope, "dune")

	require.Equal(t, ResolveFound, res.Outcome)
	assert.Equal(t, "bk-3", res.Book.BookID)
}

func TestResolveBook_FallsBackToFullList(t *testing.T) {
	scope := []LinkedBook{
		linked("bk-1", "A"),
		linked("bk-2", "B"),
	}
	all := append(scope, linked("bk-9", "Finished Long Ago"))

	res := ResolveBook(scope, all, "long ago")

	require.Equal(t, ResolveFound, res.Outcome)
	assert.Equal(t, "bk-9", res.Book.BookID)
}

func TestResolveBook_NothingMatches(t *testing.T) {
	scope := []LinkedBook{linked("bk-1", "A"), linked("bk-2", "B")}

	res := ResolveBook(scope, scope, "zzz")
	assert.Equal(t, ResolveNotFound, res.Outcome)
}
