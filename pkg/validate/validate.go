// Package validate checks an answer set against a form spec. Only
// questions that are currently visible are checked; hidden questions
// are never reported missing, even when required.
package validate

import (
	"fmt"
	"math"
	"regexp"
	"sort"

	"github.com/ormasoftchile/qaform/pkg/expr"
	"github.com/ormasoftchile/qaform/pkg/spec"
	"github.com/ormasoftchile/qaform/pkg/visibility"
)

// Error is one validation failure attributed to a question and path.
type Error struct {
	QuestionID string `json:"question_id,omitempty"`
	Path       string `json:"path,omitempty"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
}

// Result is the full validation verdict. Valid is true iff errors,
// missing_required, and unknown_fields are all empty.
type Result struct {
	Valid           bool     `json:"valid"`
	Errors          []Error  `json:"errors"`
	MissingRequired []string `json:"missing_required"`
	UnknownFields   []string `json:"unknown_fields"`
}

// Validate checks the answer set against the spec.
func Validate(s *spec.FormSpec, answers any) Result {
	vis := visibility.Resolve(s, answers, visibility.ModeVisible)
	answersMap, _ := answers.(map[string]any)

	result := Result{
		Errors:          []Error{},
		MissingRequired: []string{},
		UnknownFields:   []string{},
	}

	for i := range s.Questions {
		q := &s.Questions[i]
		if !vis[q.ID] {
			continue
		}
		value, ok := answersMap[q.ID]
		if !ok {
			if q.Required {
				result.MissingRequired = append(result.MissingRequired, q.ID)
			}
			continue
		}
		result.Errors = append(result.Errors, validateValue(q, value)...)
	}

	known := make(map[string]bool, len(s.Questions))
	for i := range s.Questions {
		known[s.Questions[i].ID] = true
	}
	for _, key := range sortedKeys(answersMap) {
		if !known[key] {
			result.UnknownFields = append(result.UnknownFields, key)
		}
	}

	result.Errors = append(result.Errors, crossField(s, answersMap)...)

	result.Valid = len(result.Errors) == 0 &&
		len(result.MissingRequired) == 0 &&
		len(result.UnknownFields) == 0
	return result
}

// crossField evaluates every cross-field rule against the full answer
// context. Only a definite false fails; indeterminate conditions pass.
func crossField(s *spec.FormSpec, answers map[string]any) []Error {
	var errs []Error
	ctx := map[string]any{"answers": anyMap(answers)}
	for i := range s.Validations {
		cf := &s.Validations[i]
		if cf.Condition.Eval(ctx) != expr.False {
			continue
		}
		message := cf.Message
		if message == "" {
			message = "cross-field validation failed"
		}
		if len(cf.Fields) == 0 {
			errs = append(errs, Error{Message: message, Code: cf.Code})
			continue
		}
		for _, field := range cf.Fields {
			errs = append(errs, Error{
				QuestionID: field,
				Path:       "/" + field,
				Message:    message,
				Code:       cf.Code,
			})
		}
	}
	return errs
}

func anyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func validateValue(q *spec.QuestionSpec, value any) []Error {
	if q.Type == spec.TypeList {
		return validateList(q, value)
	}

	if !matchesType(q.Type, value) {
		return []Error{baseError(q, "type mismatch", "type_mismatch")}
	}

	if q.Constraint != nil {
		if err := enforceConstraint(q, value, q.Constraint); err != nil {
			return []Error{*err}
		}
	}

	if q.Type == spec.TypeEnum {
		text, _ := value.(string)
		if !contains(q.Choices, text) {
			return []Error{baseError(q, "invalid enum option", "enum_mismatch")}
		}
	}

	return nil
}

// matchesType applies the scalar type rules: string/enum need a string,
// boolean a bool, integer an exact whole number, number any numeric.
func matchesType(t spec.QuestionType, value any) bool {
	switch t {
	case spec.TypeString, spec.TypeEnum:
		_, ok := value.(string)
		return ok
	case spec.TypeBoolean:
		_, ok := value.(bool)
		return ok
	case spec.TypeInteger:
		f, ok := value.(float64)
		return ok && f == math.Trunc(f)
	case spec.TypeNumber:
		_, ok := value.(float64)
		return ok
	}
	return false
}

func enforceConstraint(q *spec.QuestionSpec, value any, c *spec.Constraint) *Error {
	if text, ok := value.(string); ok {
		if c.Pattern != "" {
			re, err := regexp.Compile(c.Pattern)
			if err == nil && !re.MatchString(text) {
				e := baseError(q, "value does not match pattern", "pattern_mismatch")
				return &e
			}
		}
		if c.MinLen != nil && len(text) < *c.MinLen {
			e := baseError(q, "string shorter than min length", "min_length")
			return &e
		}
		if c.MaxLen != nil && len(text) > *c.MaxLen {
			e := baseError(q, "string longer than max length", "max_length")
			return &e
		}
	}

	if num, ok := value.(float64); ok {
		if c.Min != nil && num < *c.Min {
			e := baseError(q, "value below minimum", "min")
			return &e
		}
		if c.Max != nil && num > *c.Max {
			e := baseError(q, "value above maximum", "max")
			return &e
		}
	}

	return nil
}

// validateList checks the array shape, the item-count bounds (declared
// on the list metadata or the constraint), and each item's fields
// against the list's field specs. Item keys without a matching field
// spec are ignored rather than reported unknown.
func validateList(q *spec.QuestionSpec, value any) []Error {
	items, ok := value.([]any)
	if !ok {
		return []Error{baseError(q, "type mismatch", "type_mismatch")}
	}

	var errs []Error
	minItems, maxItems := q.ItemBounds()
	if minItems != nil && len(items) < *minItems {
		errs = append(errs, baseError(q, "too few items", "min_items"))
	}
	if maxItems != nil && len(items) > *maxItems {
		errs = append(errs, baseError(q, "too many items", "max_items"))
	}
	if q.List != nil {
		for idx, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				errs = append(errs, itemError(q, idx, "", "list item must be an object", "type_mismatch"))
				continue
			}
			for _, f := range q.List.Fields {
				fieldVal, present := obj[f.ID]
				if !present {
					if f.Required {
						errs = append(errs, itemError(q, idx, f.ID, "required list field missing", "missing_required"))
					}
					continue
				}
				if !matchesType(f.Type, fieldVal) {
					errs = append(errs, itemError(q, idx, f.ID, "type mismatch", "type_mismatch"))
				}
			}
		}
	}
	return errs
}

func baseError(q *spec.QuestionSpec, message, code string) Error {
	return Error{
		QuestionID: q.ID,
		Path:       "/" + q.ID,
		Message:    message,
		Code:       code,
	}
}

func itemError(q *spec.QuestionSpec, index int, field, message, code string) Error {
	path := fmt.Sprintf("/%s/%d", q.ID, index)
	if field != "" {
		path = fmt.Sprintf("%s/%s", path, field)
	}
	return Error{
		QuestionID: q.ID,
		Path:       path,
		Message:    message,
		Code:       code,
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// sortedKeys gives unknown-field reporting a deterministic order
// regardless of map iteration.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
