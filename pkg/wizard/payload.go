package wizard

import (
	"encoding/json"
	"fmt"
)

// payload is the wizard's view of the engine's JSON UI output.
type payload struct {
	FormTitle      string     `json:"form_title"`
	Status         string     `json:"status"`
	NextQuestionID string     `json:"next_question_id"`
	Progress       progress   `json:"progress"`
	Help           string     `json:"help"`
	Questions      []question `json:"questions"`
}

type progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

type question struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Type         string   `json:"type"`
	Required     bool     `json:"required"`
	Default      any      `json:"default"`
	CurrentValue any      `json:"current_value"`
	Choices      []string `json:"choices"`
	Visible      bool     `json:"visible"`
	Secret       bool     `json:"secret"`
}

func (p *payload) question(id string) *question {
	for i := range p.Questions {
		if p.Questions[i].ID == id {
			return &p.Questions[i]
		}
	}
	return nil
}

func (p *payload) visibleCount() int {
	n := 0
	for i := range p.Questions {
		if p.Questions[i].Visible {
			n++
		}
	}
	return n
}

// parsePayload decodes an engine response, surfacing boundary error
// payloads as Go errors.
func parsePayload(raw string) (*payload, error) {
	var probe struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, fmt.Errorf("decode engine response: %w", err)
	}
	if probe.Error != nil {
		return nil, fmt.Errorf("engine: %s", *probe.Error)
	}
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("decode engine response: %w", err)
	}
	return &p, nil
}

// submission is the wizard's view of a submit_patch response.
type submission struct {
	Status         string   `json:"status"`
	NextQuestionID string   `json:"next_question_id"`
	Progress       progress `json:"progress"`
	Validation     *struct {
		Errors []struct {
			QuestionID string `json:"question_id"`
			Message    string `json:"message"`
			Code       string `json:"code"`
		} `json:"errors"`
		MissingRequired []string `json:"missing_required"`
	} `json:"validation"`
}

func parseSubmission(raw string) (*submission, error) {
	var probe struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, fmt.Errorf("decode submit response: %w", err)
	}
	if probe.Error != nil {
		return nil, fmt.Errorf("engine: %s", *probe.Error)
	}
	var s submission
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode submit response: %w", err)
	}
	return &s, nil
}
