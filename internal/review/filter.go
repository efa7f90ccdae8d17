// Package review implements the pure filtering logic behind the admin review
// console. Given the full application list and two knobs — a status filter and
// a free-text search term — it derives the displayed subset and a shown/total
// count pair. The composition is recomputed from scratch on every call; at the
// expected scale (hundreds of applications) that is cheaper than maintaining
// incremental indexes.
package review

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/guaianases/go-recruiting-backend/internal/domain"
)

// StatusAll disables status filtering and matches every application.
const StatusAll = "all"

// Counts reports how many applications survived the filter versus how many
// exist in total, for the "showing X of Y" console readout.
type Counts struct {
	Shown int `json:"shown"`
	Total int `json:"total"`
}

// foldCaser lowercases with full Unicode case folding so that a search for
// "joão" matches "João". Caser values are not safe for concurrent use, so a
// fresh one is taken per Filter call.
func foldCaser() cases.Caser { return cases.Fold() }

// Filter applies both knobs to apps and returns the surviving subset in the
// original order, plus counts.
//
// Semantics:
//   - status: exact match against the enum value, or StatusAll ("" is treated
//     the same) to match everything.
//   - term: case-insensitive substring match against full_name, id_game and
//     phone; an application survives when ANY of the three fields contains
//     the term. A blank term matches everything.
//
// Both knobs compose with AND. The input slice is never mutated.
func Filter(apps []domain.Application, status string, term string) ([]domain.Application, Counts) {
	caser := foldCaser()
	needle := caser.String(strings.TrimSpace(term))

	out := make([]domain.Application, 0, len(apps))
	for _, app := range apps {
		if !matchStatus(app, status) {
			continue
		}
		if needle != "" && !matchTerm(caser, app, needle) {
			continue
		}
		out = append(out, app)
	}

	return out, Counts{Shown: len(out), Total: len(apps)}
}

// matchStatus reports whether app passes the status knob.
func matchStatus(app domain.Application, status string) bool {
	if status == "" || status == StatusAll {
		return true
	}
	return app.Status == domain.Status(status)
}

// matchTerm reports whether any identifying field contains the folded needle.
func matchTerm(caser cases.Caser, app domain.Application, needle string) bool {
	return strings.Contains(caser.String(app.FullName), needle) ||
		strings.Contains(app.IDGame, needle) ||
		strings.Contains(app.Phone, needle)
}
