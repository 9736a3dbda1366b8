// Package spec defines the Go struct types for declarative form
// documents and provides strict JSON/YAML parsing, domain validation,
// and JSON Schema export.
package spec

import (
	"github.com/ormasoftchile/qaform/pkg/expr"
)

// QuestionType enumerates the value types a question may take.
type QuestionType string

const (
	TypeString  QuestionType = "string"
	TypeBoolean QuestionType = "boolean"
	TypeInteger QuestionType = "integer"
	TypeNumber  QuestionType = "number"
	TypeEnum    QuestionType = "enum"
	TypeList    QuestionType = "list"
)

// Valid reports whether the type is one of the closed set.
func (t QuestionType) Valid() bool {
	switch t {
	case TypeString, TypeBoolean, TypeInteger, TypeNumber, TypeEnum, TypeList:
		return true
	}
	return false
}

// FormSpec is the top-level form definition.
type FormSpec struct {
	ID             string                 `json:"id"                        yaml:"id"             jsonschema:"required"`
	Title          string                 `json:"title"                     yaml:"title"          jsonschema:"required"`
	Version        string                 `json:"version"                   yaml:"version"        jsonschema:"required"`
	Description    string                 `json:"description,omitempty"     yaml:"description,omitempty"`
	Presentation   *Presentation          `json:"presentation,omitempty"    yaml:"presentation,omitempty"`
	ProgressPolicy *ProgressPolicy        `json:"progress_policy,omitempty" yaml:"progress_policy,omitempty"`
	SecretsPolicy  *SecretsPolicy         `json:"secrets_policy,omitempty"  yaml:"secrets_policy,omitempty"`
	Store          []StoreOp              `json:"store,omitempty"           yaml:"store,omitempty"`
	Questions      []QuestionSpec         `json:"questions"                 yaml:"questions"      jsonschema:"required"`
	Validations    []CrossFieldValidation `json:"validations,omitempty"     yaml:"validations,omitempty"`
}

// Question returns the question with the given id, or nil.
func (s *FormSpec) Question(id string) *QuestionSpec {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}

// Presentation carries display hints for hosts that render the form.
type Presentation struct {
	Intro string `json:"intro,omitempty" yaml:"intro,omitempty"`
	Theme string `json:"theme,omitempty" yaml:"theme,omitempty"`
}

// ProgressPolicy tunes navigation. SkipAnswered defaults to true when
// unset, which is why it is a pointer rather than a plain bool.
type ProgressPolicy struct {
	SkipAnswered           *bool `json:"skip_answered,omitempty"             yaml:"skip_answered,omitempty"`
	AutofillDefaults       bool  `json:"autofill_defaults,omitempty"         yaml:"autofill_defaults,omitempty"`
	TreatDefaultAsAnswered bool  `json:"treat_default_as_answered,omitempty" yaml:"treat_default_as_answered,omitempty"`
}

// SecretsPolicy gates reads and writes of the secrets namespace.
// Patterns are glob-style over /-delimited path segments.
type SecretsPolicy struct {
	Enabled      bool     `json:"enabled"                 yaml:"enabled"`
	ReadEnabled  bool     `json:"read_enabled,omitempty"  yaml:"read_enabled,omitempty"`
	WriteEnabled bool     `json:"write_enabled,omitempty" yaml:"write_enabled,omitempty"`
	Allow        []string `json:"allow,omitempty"         yaml:"allow,omitempty"`
	Deny         []string `json:"deny,omitempty"          yaml:"deny,omitempty"`
}

// StoreTarget names one of the three store namespaces.
type StoreTarget string

const (
	TargetAnswers StoreTarget = "answers"
	TargetState   StoreTarget = "state"
	TargetSecrets StoreTarget = "secrets"
)

// Valid reports whether the target is one of the closed set.
func (t StoreTarget) Valid() bool {
	switch t {
	case TargetAnswers, TargetState, TargetSecrets:
		return true
	}
	return false
}

// StoreOp writes a value at a JSON-pointer path within one namespace.
// String values containing {{ }} are rendered as templates against the
// store context before being written.
type StoreOp struct {
	Target StoreTarget `json:"target" yaml:"target" jsonschema:"required,enum=answers,enum=state,enum=secrets"`
	Path   string      `json:"path"   yaml:"path"   jsonschema:"required"`
	Value  any         `json:"value"  yaml:"value"`
}

// Constraint restricts a scalar answer value.
type Constraint struct {
	Pattern  string   `json:"pattern,omitempty"  yaml:"pattern,omitempty"`
	MinLen   *int     `json:"min_len,omitempty"  yaml:"min_len,omitempty"`
	MaxLen   *int     `json:"max_len,omitempty"  yaml:"max_len,omitempty"`
	Min      *float64 `json:"min,omitempty"      yaml:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"      yaml:"max,omitempty"`
	MinItems *int     `json:"min_items,omitempty" yaml:"min_items,omitempty"`
	MaxItems *int     `json:"max_items,omitempty" yaml:"max_items,omitempty"`
}

// ListField describes one field of a list question's items. List fields
// cannot themselves be lists.
type ListField struct {
	ID       string       `json:"id"                 yaml:"id"    jsonschema:"required"`
	Type     QuestionType `json:"type"               yaml:"type"  jsonschema:"required"`
	Title    string       `json:"title,omitempty"    yaml:"title,omitempty"`
	Required bool         `json:"required,omitempty" yaml:"required,omitempty"`
}

// ListSpec carries the item layout for list questions.
type ListSpec struct {
	MinItems *int        `json:"min_items,omitempty" yaml:"min_items,omitempty"`
	MaxItems *int        `json:"max_items,omitempty" yaml:"max_items,omitempty"`
	Fields   []ListField `json:"fields"              yaml:"fields" jsonschema:"required"`
}

// ComputedSpec derives a question's value from an expression. When
// Overridable is set an explicit answer takes precedence.
type ComputedSpec struct {
	Expr        expr.Expr `json:"expr"                  yaml:"expr" jsonschema:"required"`
	Overridable bool      `json:"overridable,omitempty" yaml:"overridable,omitempty"`
}

// QuestionSpec is a single question definition.
type QuestionSpec struct {
	ID           string        `json:"id"                      yaml:"id"    jsonschema:"required"`
	Type         QuestionType  `json:"type"                    yaml:"type"  jsonschema:"required,enum=string,enum=boolean,enum=integer,enum=number,enum=enum,enum=list"`
	Title        string        `json:"title"                   yaml:"title" jsonschema:"required"`
	Description  string        `json:"description,omitempty"   yaml:"description,omitempty"`
	Required     bool          `json:"required,omitempty"      yaml:"required,omitempty"`
	Choices      []string      `json:"choices,omitempty"       yaml:"choices,omitempty"`
	DefaultValue any           `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	Secret       bool          `json:"secret,omitempty"        yaml:"secret,omitempty"`
	VisibleIf    *expr.Expr    `json:"visible_if,omitempty"    yaml:"visible_if,omitempty"`
	Constraint   *Constraint   `json:"constraint,omitempty"    yaml:"constraint,omitempty"`
	List         *ListSpec     `json:"list,omitempty"          yaml:"list,omitempty"`
	Computed     *ComputedSpec `json:"computed,omitempty"      yaml:"computed,omitempty"`
}

// ItemBounds resolves the item-count bounds of a list question. Both
// the list metadata and the constraint may carry them; whichever sets a
// bound wins, and domain validation rejects conflicting values.
func (q *QuestionSpec) ItemBounds() (minItems, maxItems *int) {
	if q.List != nil {
		minItems, maxItems = q.List.MinItems, q.List.MaxItems
	}
	if q.Constraint != nil {
		if minItems == nil {
			minItems = q.Constraint.MinItems
		}
		if maxItems == nil {
			maxItems = q.Constraint.MaxItems
		}
	}
	return minItems, maxItems
}

// CrossFieldValidation is a rule spanning multiple questions. A definite
// false condition fails validation with the configured message.
type CrossFieldValidation struct {
	Condition expr.Expr `json:"condition"         yaml:"condition" jsonschema:"required"`
	Fields    []string  `json:"fields,omitempty"  yaml:"fields,omitempty"`
	Message   string    `json:"message,omitempty" yaml:"message,omitempty"`
	Code      string    `json:"code,omitempty"    yaml:"code,omitempty"`
}
