package render

import (
	"fmt"

	"github.com/ormasoftchile/qaform/pkg/spec"
)

// Card renders the payload as an Adaptive Card v1.3 document.
func Card(p *Payload) map[string]any {
	var body []any

	body = append(body, map[string]any{
		"type":   "TextBlock",
		"text":   p.FormTitle,
		"weight": "Bolder",
		"size":   "Large",
		"wrap":   true,
	})

	if p.Help != "" {
		body = append(body, map[string]any{
			"type": "TextBlock",
			"text": p.Help,
			"wrap": true,
		})
	}

	body = append(body, map[string]any{
		"type": "FactSet",
		"facts": []any{
			map[string]any{"title": "Answered", "value": fmt.Sprintf("%d", p.Progress.Answered)},
			map[string]any{"title": "Total", "value": fmt.Sprintf("%d", p.Progress.Total)},
		},
	})

	var actions []any

	if p.NextQuestionID != "" {
		if q := p.question(p.NextQuestionID); q != nil {
			items := []any{
				map[string]any{
					"type":   "TextBlock",
					"text":   q.Title,
					"weight": "Bolder",
					"wrap":   true,
				},
			}
			if q.Description != "" {
				items = append(items, map[string]any{
					"type":    "TextBlock",
					"text":    q.Description,
					"wrap":    true,
					"spacing": "Small",
				})
			}
			items = append(items, questionInput(q))

			body = append(body, map[string]any{
				"type":  "Container",
				"items": items,
			})

			actions = append(actions, map[string]any{
				"type":  "Action.Submit",
				"title": "Next ➡️",
				"data": map[string]any{
					"qa": map[string]any{
						"formId":     p.FormID,
						"mode":       "patch",
						"questionId": q.ID,
						"field":      "answer",
					},
				},
			})
		}
	} else {
		body = append(body, map[string]any{
			"type": "TextBlock",
			"text": "All visible questions are answered.",
			"wrap": true,
		})
	}

	if actions == nil {
		actions = []any{}
	}

	return map[string]any{
		"$schema": "http://adaptivecards.io/schemas/adaptive-card.json",
		"type":    "AdaptiveCard",
		"version": "1.3",
		"body":    body,
		"actions": actions,
	}
}

// questionInput maps a question type to its Adaptive Card input element.
func questionInput(q *Question) map[string]any {
	switch q.Type {
	case spec.TypeBoolean:
		input := map[string]any{
			"type":       "Input.Toggle",
			"id":         q.ID,
			"title":      q.Title,
			"isRequired": q.Required,
			"valueOn":    "true",
			"valueOff":   "false",
		}
		if q.HasValue {
			if q.CurrentValue == true {
				input["value"] = "true"
			} else {
				input["value"] = "false"
			}
		}
		return input

	case spec.TypeEnum:
		choices := make([]any, 0, len(q.Choices))
		for _, choice := range q.Choices {
			choices = append(choices, map[string]any{
				"title": choice,
				"value": choice,
			})
		}
		input := map[string]any{
			"type":       "Input.ChoiceSet",
			"id":         q.ID,
			"style":      "compact",
			"isRequired": q.Required,
			"choices":    choices,
		}
		if q.HasValue {
			input["value"] = cardValue(q.CurrentValue)
		}
		return input

	default:
		input := map[string]any{
			"type":       "Input.Text",
			"id":         q.ID,
			"isRequired": q.Required,
		}
		if q.HasValue {
			input["value"] = cardValue(q.CurrentValue)
		}
		return input
	}
}

func cardValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
