package render

import (
	"github.com/ormasoftchile/qaform/pkg/spec"
	"github.com/ormasoftchile/qaform/pkg/visibility"
)

// ExampleAnswers produces one plausible value per visible question.
// Defaults win; otherwise the value is derived from the question type.
func ExampleAnswers(s *spec.FormSpec, vis visibility.Map) map[string]any {
	examples := make(map[string]any)
	for i := range s.Questions {
		q := &s.Questions[i]
		if !vis[q.ID] {
			continue
		}
		examples[q.ID] = exampleValue(q)
	}
	return examples
}

func exampleValue(q *spec.QuestionSpec) any {
	if q.DefaultValue != nil {
		return q.DefaultValue
	}
	switch q.Type {
	case spec.TypeBoolean:
		return false
	case spec.TypeInteger:
		return 0
	case spec.TypeNumber:
		return 0.0
	case spec.TypeEnum:
		if len(q.Choices) > 0 {
			return q.Choices[0]
		}
		return ""
	case spec.TypeList:
		return []any{exampleItem(q.List)}
	default:
		return "example-" + q.ID
	}
}

func exampleItem(list *spec.ListSpec) map[string]any {
	item := make(map[string]any)
	if list == nil {
		return item
	}
	for _, f := range list.Fields {
		switch f.Type {
		case spec.TypeBoolean:
			item[f.ID] = false
		case spec.TypeInteger:
			item[f.ID] = 0
		case spec.TypeNumber:
			item[f.ID] = 0.0
		default:
			item[f.ID] = "example-" + f.ID
		}
	}
	return item
}
