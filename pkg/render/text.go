package render

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxValueWidth bounds how much of a current value the text renderer
// shows before truncating with an ellipsis.
const maxValueWidth = 48

// Text renders the payload as human-friendly text.
func Text(p *Payload) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Form: %s (%s)", p.FormTitle, p.FormID))
	lines = append(lines, fmt.Sprintf("Status: %s (%d/%d)", p.Status, p.Progress.Answered, p.Progress.Total))
	if p.Help != "" {
		lines = append(lines, "Help: "+p.Help)
	}

	if p.NextQuestionID != "" {
		lines = append(lines, "Next question: "+p.NextQuestionID)
		if q := p.question(p.NextQuestionID); q != nil {
			lines = append(lines, "  Title: "+q.Title)
			if q.Description != "" {
				lines = append(lines, "  Description: "+q.Description)
			}
			if q.Required {
				lines = append(lines, "  Required: yes")
			}
			if q.Default != nil {
				lines = append(lines, fmt.Sprintf("  Default: %v", q.Default))
			}
			if q.HasValue {
				lines = append(lines, "  Current value: "+displayValue(q))
			}
		}
	} else {
		lines = append(lines, "All visible questions are answered.")
	}

	lines = append(lines, "Visible questions:")
	idWidth := 0
	for i := range p.Questions {
		if p.Questions[i].Visible {
			if w := runewidth.StringWidth(p.Questions[i].ID); w > idWidth {
				idWidth = w
			}
		}
	}
	for i := range p.Questions {
		q := &p.Questions[i]
		if !q.Visible {
			continue
		}
		entry := fmt.Sprintf(" - %s (%s)", runewidth.FillRight(q.ID, idWidth), q.Title)
		if q.Required {
			entry += " [required]"
		}
		if q.HasValue {
			entry += " = " + displayValue(q)
		}
		lines = append(lines, entry)
	}

	return strings.Join(lines, "\n")
}

// displayValue formats a current value for text output. Secret values
// are masked; long values are truncated.
func displayValue(q *Question) string {
	if q.Secret {
		return "********"
	}
	var text string
	switch v := q.CurrentValue.(type) {
	case string:
		text = v
	default:
		text = fmt.Sprintf("%v", v)
	}
	return runewidth.Truncate(text, maxValueWidth, "…")
}

func (p *Payload) question(id string) *Question {
	for i := range p.Questions {
		if p.Questions[i].ID == id {
			return &p.Questions[i]
		}
	}
	return nil
}
