// Package visibility computes which questions of a form are currently
// shown, given the answer context.
package visibility

import (
	"fmt"
	"strings"

	"github.com/ormasoftchile/qaform/pkg/expr"
	"github.com/ormasoftchile/qaform/pkg/spec"
)

// Map holds one visibility decision per question id. Recomputed on
// every call, never persisted.
type Map map[string]bool

// Mode selects what an indeterminate visible_if resolves to.
type Mode int

const (
	// ModeVisible defaults indeterminate questions to shown.
	ModeVisible Mode = iota
	// ModeHidden defaults indeterminate questions to hidden.
	ModeHidden
	// ModeError resolves indeterminate questions as shown, but records
	// them so ResolveStrict can surface the condition as an error
	// instead of a silent default.
	ModeError
)

// Resolution is the full result of a visibility pass.
type Resolution struct {
	Visible Map
	// Indeterminate lists questions whose visible_if did not evaluate
	// to a definite boolean. Only populated under ModeError.
	Indeterminate []string
}

// Resolve computes the visibility map for every question in spec order.
// The output always has exactly one entry per question.
func Resolve(s *spec.FormSpec, answers any, mode Mode) Map {
	return resolve(s, answers, mode).Visible
}

// ResolveStrict behaves like Resolve under ModeError but returns an
// error naming the questions whose conditions were indeterminate.
func ResolveStrict(s *spec.FormSpec, answers any) (Map, error) {
	res := resolve(s, answers, ModeError)
	if len(res.Indeterminate) > 0 {
		return res.Visible, fmt.Errorf("indeterminate visibility for question(s): %s",
			strings.Join(res.Indeterminate, ", "))
	}
	return res.Visible, nil
}

func resolve(s *spec.FormSpec, answers any, mode Mode) Resolution {
	res := Resolution{Visible: make(Map, len(s.Questions))}
	ctx := map[string]any{"answers": answers}

	for i := range s.Questions {
		q := &s.Questions[i]
		visible := true
		if q.VisibleIf != nil {
			switch q.VisibleIf.Eval(ctx) {
			case expr.True:
				visible = true
			case expr.False:
				visible = false
			default:
				switch mode {
				case ModeHidden:
					visible = false
				case ModeError:
					visible = true
					res.Indeterminate = append(res.Indeterminate, q.ID)
				default:
					visible = true
				}
			}
		}
		res.Visible[q.ID] = visible
	}
	return res
}

// Count returns how many questions are currently visible.
func (m Map) Count() int {
	n := 0
	for _, visible := range m {
		if visible {
			n++
		}
	}
	return n
}
