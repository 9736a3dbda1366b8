package render

import (
	"encoding/json"
	"strconv"

	"github.com/invopop/jsonschema"

	"github.com/ormasoftchile/qaform/pkg/spec"
	"github.com/ormasoftchile/qaform/pkg/visibility"
)

// AnswersSchema generates a JSON-Schema-shaped description of the
// answer object, scoped to visible questions: properties in spec order,
// required listing visible required questions.
func AnswersSchema(s *spec.FormSpec, vis visibility.Map) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Title:      s.Title,
		Properties: jsonschema.NewProperties(),
	}
	schema.AdditionalProperties = jsonschema.FalseSchema

	for i := range s.Questions {
		q := &s.Questions[i]
		if !vis[q.ID] {
			continue
		}
		schema.Properties.Set(q.ID, questionSchema(q))
		if q.Required {
			schema.Required = append(schema.Required, q.ID)
		}
	}
	return schema
}

func questionSchema(q *spec.QuestionSpec) *jsonschema.Schema {
	qs := &jsonschema.Schema{}
	if q.Title != "" {
		qs.Title = q.Title
	}
	if q.Description != "" {
		qs.Description = q.Description
	}
	if q.DefaultValue != nil {
		qs.Default = q.DefaultValue
	}

	switch q.Type {
	case spec.TypeString:
		qs.Type = "string"
		applyStringConstraint(qs, q.Constraint)
	case spec.TypeEnum:
		qs.Type = "string"
		for _, choice := range q.Choices {
			qs.Enum = append(qs.Enum, choice)
		}
	case spec.TypeBoolean:
		qs.Type = "boolean"
	case spec.TypeInteger:
		qs.Type = "integer"
		applyNumericConstraint(qs, q.Constraint)
	case spec.TypeNumber:
		qs.Type = "number"
		applyNumericConstraint(qs, q.Constraint)
	case spec.TypeList:
		qs.Type = "array"
		qs.Items = listItemSchema(q.List)
		minItems, maxItems := q.ItemBounds()
		if minItems != nil {
			qs.MinItems = uintPtr(*minItems)
		}
		if maxItems != nil {
			qs.MaxItems = uintPtr(*maxItems)
		}
	}
	return qs
}

func listItemSchema(list *spec.ListSpec) *jsonschema.Schema {
	item := &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}
	item.AdditionalProperties = jsonschema.FalseSchema
	if list == nil {
		return item
	}
	for _, f := range list.Fields {
		fs := &jsonschema.Schema{Type: string(f.Type)}
		if f.Title != "" {
			fs.Title = f.Title
		}
		item.Properties.Set(f.ID, fs)
		if f.Required {
			item.Required = append(item.Required, f.ID)
		}
	}
	return item
}

func applyStringConstraint(qs *jsonschema.Schema, c *spec.Constraint) {
	if c == nil {
		return
	}
	if c.Pattern != "" {
		qs.Pattern = c.Pattern
	}
	if c.MinLen != nil {
		qs.MinLength = uintPtr(*c.MinLen)
	}
	if c.MaxLen != nil {
		qs.MaxLength = uintPtr(*c.MaxLen)
	}
}

func applyNumericConstraint(qs *jsonschema.Schema, c *spec.Constraint) {
	if c == nil {
		return
	}
	if c.Min != nil {
		qs.Minimum = jsonNumber(*c.Min)
	}
	if c.Max != nil {
		qs.Maximum = jsonNumber(*c.Max)
	}
}

func jsonNumber(f float64) json.Number {
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64))
}

func uintPtr(n int) *uint64 {
	if n < 0 {
		n = 0
	}
	v := uint64(n)
	return &v
}
