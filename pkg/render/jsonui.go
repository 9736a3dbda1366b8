package render

import "encoding/json"

// JSONUI renders the payload as a structured JSON-friendly value.
func JSONUI(p *Payload) map[string]any {
	questions := make([]any, 0, len(p.Questions))
	for i := range p.Questions {
		q := &p.Questions[i]
		entry := map[string]any{
			"id":       q.ID,
			"title":    q.Title,
			"type":     string(q.Type),
			"required": q.Required,
			"visible":  q.Visible,
			"secret":   q.Secret,
		}
		// Description is always present, null when unset, matching the
		// card/json consumers that key off its presence.
		if q.Description != "" {
			entry["description"] = q.Description
		} else {
			entry["description"] = nil
		}
		if q.Default != nil {
			entry["default"] = q.Default
		}
		if q.HasValue {
			entry["current_value"] = q.CurrentValue
		}
		if q.Choices != nil {
			choices := make([]any, len(q.Choices))
			for j, choice := range q.Choices {
				choices[j] = choice
			}
			entry["choices"] = choices
		}
		questions = append(questions, entry)
	}

	// Schema comes from AnswersSchema; a malformed document degrades to
	// null instead of corrupting the envelope.
	var schema any
	if len(p.Schema) > 0 {
		if err := json.Unmarshal(p.Schema, &schema); err != nil {
			schema = nil
		}
	}

	var next any
	if p.NextQuestionID != "" {
		next = p.NextQuestionID
	}
	var help any
	if p.Help != "" {
		help = p.Help
	}

	return map[string]any{
		"form_id":          p.FormID,
		"form_title":       p.FormTitle,
		"form_version":     p.FormVersion,
		"status":           string(p.Status),
		"next_question_id": next,
		"progress": map[string]any{
			"answered": p.Progress.Answered,
			"total":    p.Progress.Total,
		},
		"help":      help,
		"questions": questions,
		"schema":    schema,
	}
}
