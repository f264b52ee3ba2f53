package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidProgress reports a malformed or out-of-range progress token.
var ErrInvalidProgress = errors.New("invalid progress input")

// ProgressUpdate is a partial update to a link's progress fields. Nil fields
// are left untouched by the store (coalesce semantics).
type ProgressUpdate struct {
	Percent     *int
	CurrentPage *int
	TotalPages  *int
}

// Empty reports whether the update carries no fields at all.
func (u ProgressUpdate) Empty() bool {
	return u.Percent == nil && u.CurrentPage == nil && u.TotalPages == nil
}

// ProgressToken is a parsed raw progress argument: a percent ("40%"), a
// current/total pair ("120/500"), or a bare page number ("120").
type ProgressToken struct {
	Percent     *int
	CurrentPage *int
	TotalPages  *int
}

// ParseProgressToken parses the raw argument a user typed after a progress
// command. It performs no clamping or derivation; Reconcile does that.
func ParseProgressToken(raw string) (ProgressToken, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ProgressToken{}, fmt.Errorf("%w: empty token", ErrInvalidProgress)
	}

	if pct, ok := strings.CutSuffix(raw, "%"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(pct))
		if err != nil {
			return ProgressToken{}, fmt.Errorf("%w: bad percent %q", ErrInvalidProgress, raw)
		}
		return ProgressToken{Percent: &n}, nil
	}

	if current, total, ok := strings.Cut(raw, "/"); ok {
		cur, err := strconv.Atoi(strings.TrimSpace(current))
		if err != nil || cur < 0 {
			return ProgressToken{}, fmt.Errorf("%w: bad page count %q", ErrInvalidProgress, raw)
		}
		tot, err := strconv.Atoi(strings.TrimSpace(total))
		if err != nil {
			return ProgressToken{}, fmt.Errorf("%w: bad total %q", ErrInvalidProgress, raw)
		}
		if tot <= 0 {
			return ProgressToken{}, fmt.Errorf("%w: total pages must be > 0", ErrInvalidProgress)
		}
		return ProgressToken{CurrentPage: &cur, TotalPages: &tot}, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return ProgressToken{}, fmt.Errorf("%w: bad page number %q", ErrInvalidProgress, raw)
	}
	return ProgressToken{CurrentPage: &n}, nil
}

// Reconcile converts a parsed token into the partial update written to the
// store, deriving whichever of percent/page is missing when enough is known.
// knownTotal is the total page count already stored on the link, or nil.
//
//   - Percent token: percent clamped to [0,100]. If a total is already known,
//     the current page is derived as round(percent/100 * total).
//   - Current/total pair: percent = round(current/total * 100), clamped.
//   - Bare page: percent is derived only when a total is already known;
//     otherwise the update carries the page alone and the stored percent
//     stands. Percent supplied independently of pages is accepted as-is.
func (t ProgressToken) Reconcile(knownTotal *int) (ProgressUpdate, error) {
	var upd ProgressUpdate

	switch {
	case t.Percent != nil:
		pct := clampPercent(*t.Percent)
		upd.Percent = &pct
		if knownTotal != nil && *knownTotal > 0 {
			page := int(math.Round(float64(pct) / 100 * float64(*knownTotal)))
			upd.CurrentPage = &page
		}

	case t.TotalPages != nil:
		if *t.TotalPages <= 0 {
			return ProgressUpdate{}, fmt.Errorf("%w: total pages must be > 0", ErrInvalidProgress)
		}
		pct := clampPercent(derivePercent(*t.CurrentPage, *t.TotalPages))
		upd.Percent = &pct
		upd.CurrentPage = t.CurrentPage
		upd.TotalPages = t.TotalPages

	case t.CurrentPage != nil:
		upd.CurrentPage = t.CurrentPage
		if knownTotal != nil && *knownTotal > 0 {
			pct := clampPercent(derivePercent(*t.CurrentPage, *knownTotal))
			upd.Percent = &pct
		}

	default:
		return ProgressUpdate{}, fmt.Errorf("%w: empty token", ErrInvalidProgress)
	}

	return upd, nil
}

// derivePercent computes round(current/total * 100). Callers clamp.
func derivePercent(current, total int) int {
	return int(math.Round(float64(current) / float64(total) * 100))
}

// clampPercent clamps to [0,100].
func clampPercent(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
