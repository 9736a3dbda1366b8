package spec

import (
	"fmt"
	"regexp"
)

// ValidationError is a single spec validation error with location
// context.
type ValidationError struct {
	Phase    string `json:"phase"` // structural, semantic, domain
	Path     string `json:"path"`  // JSON-path-like location (e.g. "questions[2].choices")
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

func domainErr(path, format string, args ...any) *ValidationError {
	return &ValidationError{
		Phase:    "domain",
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
		Severity: "error",
	}
}

// ValidateDomain checks the form invariants that JSON Schema cannot
// express: unique question ids, enum choices, list layouts, constraint
// patterns, expression shapes, store targets, and cross-field field
// references.
func ValidateDomain(s *FormSpec) []*ValidationError {
	var errs []*ValidationError

	if s.ID == "" {
		errs = append(errs, domainErr("id", "form id must not be empty"))
	}

	seen := make(map[string]bool, len(s.Questions))
	for i, q := range s.Questions {
		loc := fmt.Sprintf("questions[%d]", i)
		if q.ID == "" {
			errs = append(errs, domainErr(loc+".id", "question id must not be empty"))
		}
		if seen[q.ID] {
			errs = append(errs, domainErr(loc+".id", "duplicate question id %q", q.ID))
		}
		seen[q.ID] = true

		if !q.Type.Valid() {
			errs = append(errs, domainErr(loc+".type", "unknown question type %q", q.Type))
		}
		if q.Type == TypeEnum && len(q.Choices) == 0 {
			errs = append(errs, domainErr(loc+".choices", "enum question %q requires non-empty choices", q.ID))
		}
		if q.Type != TypeEnum && len(q.Choices) > 0 {
			errs = append(errs, domainErr(loc+".choices", "choices are only valid on enum questions"))
		}
		if q.Type == TypeList {
			errs = append(errs, validateList(loc, &q)...)
		} else if q.List != nil {
			errs = append(errs, domainErr(loc+".list", "list metadata is only valid on list questions"))
		}
		if q.Constraint != nil {
			errs = append(errs, validateConstraint(loc, q.Constraint)...)
			if q.Type != TypeList && (q.Constraint.MinItems != nil || q.Constraint.MaxItems != nil) {
				errs = append(errs, domainErr(loc+".constraint", "item bounds are only valid on list questions"))
			}
		}
		if q.VisibleIf != nil {
			if err := q.VisibleIf.Validate(); err != nil {
				errs = append(errs, domainErr(loc+".visible_if", "%v", err))
			}
		}
		if q.Computed != nil {
			if err := q.Computed.Expr.Validate(); err != nil {
				errs = append(errs, domainErr(loc+".computed.expr", "%v", err))
			}
		}
	}

	for i, op := range s.Store {
		loc := fmt.Sprintf("store[%d]", i)
		if !op.Target.Valid() {
			errs = append(errs, domainErr(loc+".target", "unknown store target %q", op.Target))
		}
		if op.Path == "" {
			errs = append(errs, domainErr(loc+".path", "store op path must not be empty"))
		}
	}

	for i, cf := range s.Validations {
		loc := fmt.Sprintf("validations[%d]", i)
		if err := cf.Condition.Validate(); err != nil {
			errs = append(errs, domainErr(loc+".condition", "%v", err))
		}
		for _, field := range cf.Fields {
			if !seen[field] {
				errs = append(errs, domainErr(loc+".fields", "unknown question id %q", field))
			}
		}
	}

	return errs
}

func validateList(loc string, q *QuestionSpec) []*ValidationError {
	var errs []*ValidationError
	if q.List == nil || len(q.List.Fields) == 0 {
		errs = append(errs, domainErr(loc+".list.fields", "list question %q requires at least one field", q.ID))
		return errs
	}
	if q.Constraint != nil {
		if q.List.MinItems != nil && q.Constraint.MinItems != nil && *q.List.MinItems != *q.Constraint.MinItems {
			errs = append(errs, domainErr(loc, "min_items %d in list conflicts with %d in constraint", *q.List.MinItems, *q.Constraint.MinItems))
		}
		if q.List.MaxItems != nil && q.Constraint.MaxItems != nil && *q.List.MaxItems != *q.Constraint.MaxItems {
			errs = append(errs, domainErr(loc, "max_items %d in list conflicts with %d in constraint", *q.List.MaxItems, *q.Constraint.MaxItems))
		}
	}
	if minItems, maxItems := q.ItemBounds(); minItems != nil && maxItems != nil && *minItems > *maxItems {
		errs = append(errs, domainErr(loc+".list", "min_items %d exceeds max_items %d", *minItems, *maxItems))
	}
	fieldSeen := make(map[string]bool, len(q.List.Fields))
	for j, f := range q.List.Fields {
		floc := fmt.Sprintf("%s.list.fields[%d]", loc, j)
		if f.ID == "" {
			errs = append(errs, domainErr(floc+".id", "list field id must not be empty"))
		}
		if fieldSeen[f.ID] {
			errs = append(errs, domainErr(floc+".id", "duplicate list field id %q", f.ID))
		}
		fieldSeen[f.ID] = true
		if f.Type == TypeList {
			errs = append(errs, domainErr(floc+".type", "list fields cannot themselves be lists"))
		} else if !f.Type.Valid() {
			errs = append(errs, domainErr(floc+".type", "unknown list field type %q", f.Type))
		}
	}
	return errs
}

func validateConstraint(loc string, c *Constraint) []*ValidationError {
	var errs []*ValidationError
	if c.Pattern != "" {
		if _, err := regexp.Compile(c.Pattern); err != nil {
			errs = append(errs, domainErr(loc+".constraint.pattern", "invalid pattern: %v", err))
		}
	}
	if c.MinLen != nil && c.MaxLen != nil && *c.MinLen > *c.MaxLen {
		errs = append(errs, domainErr(loc+".constraint", "min_len %d exceeds max_len %d", *c.MinLen, *c.MaxLen))
	}
	if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		errs = append(errs, domainErr(loc+".constraint", "min %v exceeds max %v", *c.Min, *c.Max))
	}
	if c.MinItems != nil && c.MaxItems != nil && *c.MinItems > *c.MaxItems {
		errs = append(errs, domainErr(loc+".constraint", "min_items %d exceeds max_items %d", *c.MinItems, *c.MaxItems))
	}
	return errs
}
