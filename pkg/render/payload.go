// Package render aggregates visibility, navigation, and schema
// generation into one payload consumed by the text, JSON-UI, and
// Adaptive Card formatters. The formatters contain no decision logic;
// everything they show comes from the payload.
package render

import (
	"encoding/json"

	"github.com/ormasoftchile/qaform/pkg/progress"
	"github.com/ormasoftchile/qaform/pkg/spec"
	"github.com/ormasoftchile/qaform/pkg/visibility"
)

// Status labels returned by the renderers.
type Status string

const (
	// StatusNeedInput means more input is required.
	StatusNeedInput Status = "need_input"
	// StatusComplete means all visible questions are filled.
	StatusComplete Status = "complete"
	// StatusError is produced only by the submission workflow when
	// validation fails; Build never returns it.
	StatusError Status = "error"
)

// Progress counters exposed to renderers.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// Question describes a single question for render outputs.
type Question struct {
	ID           string
	Title        string
	Description  string
	Type         spec.QuestionType
	Required     bool
	Default      any
	Secret       bool
	Visible      bool
	CurrentValue any
	HasValue     bool
	Choices      []string
}

// Payload is the collected snapshot used by all renderers. Built fresh
// per call and never mutated after construction.
type Payload struct {
	FormID         string
	FormTitle      string
	FormVersion    string
	Status         Status
	NextQuestionID string
	Progress       Progress
	Help           string
	Questions      []Question
	Schema         json.RawMessage
}

// VisibleCount returns how many payload questions are visible.
func (p *Payload) VisibleCount() int {
	n := 0
	for i := range p.Questions {
		if p.Questions[i].Visible {
			n++
		}
	}
	return n
}

// Build assembles the renderer payload from the spec, the caller
// context, and the answers.
func Build(s *spec.FormSpec, ctx map[string]any, answers any) Payload {
	vis := visibility.Resolve(s, answers, visibility.ModeVisible)
	pc := progress.NewContext(answers, ctx)
	next := progress.Next(s, pc, vis)

	answersMap, _ := answers.(map[string]any)
	evalCtx := map[string]any{"answers": answersMap}

	questions := make([]Question, 0, len(s.Questions))
	for i := range s.Questions {
		q := &s.Questions[i]
		view := Question{
			ID:          q.ID,
			Title:       q.Title,
			Description: q.Description,
			Type:        q.Type,
			Required:    q.Required,
			Default:     q.DefaultValue,
			Secret:      q.Secret,
			Visible:     vis[q.ID],
			Choices:     q.Choices,
		}
		if val, ok := answersMap[q.ID]; ok {
			view.CurrentValue = val
			view.HasValue = true
		} else if q.Computed != nil {
			// Surface the computed value when nothing overrides it.
			if result := q.Computed.Expr.Eval(evalCtx); result.Known() {
				view.CurrentValue = result.Bool()
				view.HasValue = true
			}
		}
		questions = append(questions, view)
	}

	help := s.Description
	if s.Presentation != nil && s.Presentation.Intro != "" {
		help = s.Presentation.Intro
	}

	status := StatusComplete
	if next != "" {
		status = StatusNeedInput
	}

	schemaBytes, err := json.Marshal(AnswersSchema(s, vis))
	if err != nil {
		schemaBytes = []byte("{}")
	}

	return Payload{
		FormID:         s.ID,
		FormTitle:      s.Title,
		FormVersion:    s.Version,
		Status:         status,
		NextQuestionID: next,
		Progress: Progress{
			Answered: pc.AnsweredCount(s, vis),
			Total:    vis.Count(),
		},
		Help:      help,
		Questions: questions,
		Schema:    schemaBytes,
	}
}
