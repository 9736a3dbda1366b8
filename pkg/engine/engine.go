// Package engine is the call boundary of the form interpretation
// engine. Every call takes and returns UTF-8 strings carrying JSON; all
// failures are recovered into an {"error": "..."} payload rather than
// escaping as errors or panics. The engine keeps no state between
// calls: each invocation recomputes visibility, progress, and
// validation from the supplied spec, context, and answers.
package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ormasoftchile/qaform/pkg/render"
	"github.com/ormasoftchile/qaform/pkg/spec"
	"github.com/ormasoftchile/qaform/pkg/store"
	"github.com/ormasoftchile/qaform/pkg/validate"
	"github.com/ormasoftchile/qaform/pkg/visibility"
)

// ErrorKind classifies boundary failures.
type ErrorKind int

const (
	// KindConfigParse covers malformed spec, config, or answer JSON.
	KindConfigParse ErrorKind = iota
	// KindFormUnavailable means the requested id does not match the
	// loaded spec.
	KindFormUnavailable
	// KindJSONEncode covers internal serialization failures.
	KindJSONEncode
	// KindStore wraps store application failures.
	KindStore
)

// Error is a boundary-level failure surfaced as an error payload.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func configParseErr(err error) *Error {
	return &Error{Kind: KindConfigParse, Msg: fmt.Sprintf("failed to parse config: %v", err)}
}

func formUnavailableErr(formID string) *Error {
	return &Error{Kind: KindFormUnavailable, Msg: fmt.Sprintf("form '%s' is not available", formID)}
}

func jsonEncodeErr(err error) *Error {
	return &Error{Kind: KindJSONEncode, Msg: fmt.Sprintf("json encode error: %v", err)}
}

func storeErr(err error) *Error {
	return &Error{Kind: KindStore, Msg: fmt.Sprintf("store apply failed: %v", err)}
}

// Options configures an Engine.
type Options struct {
	// DefaultSpec is the raw JSON of the form spec used when a call
	// supplies no embedded spec. Injected rather than compiled in so
	// the engine stays testable in isolation.
	DefaultSpec []byte
}

// Engine exposes the boundary calls. Safe for concurrent use: it holds
// only the immutable default spec bytes.
type Engine struct {
	defaultSpec []byte
}

// New creates an engine with the given options.
func New(opts Options) *Engine {
	return &Engine{defaultSpec: opts.DefaultSpec}
}

// config is the shape of the spec-config argument.
type config struct {
	FormSpecJSON string `json:"form_spec_json"`
}

// loadSpec resolves the spec-config to a FormSpec: embedded verbatim
// when present, the injected default otherwise.
func (e *Engine) loadSpec(configJSON string) (*spec.FormSpec, *Error) {
	var cfg config
	if strings.TrimSpace(configJSON) != "" {
		if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
			return nil, configParseErr(err)
		}
	}

	raw := []byte(cfg.FormSpecJSON)
	if len(raw) == 0 {
		if len(e.defaultSpec) == 0 {
			return nil, configParseErr(fmt.Errorf("no form spec supplied and no default configured"))
		}
		raw = e.defaultSpec
	}

	s, err := spec.ParseJSON(raw)
	if err != nil {
		return nil, configParseErr(err)
	}
	return s, nil
}

// ensureForm loads the spec and checks the requested form id.
func (e *Engine) ensureForm(formID, configJSON string) (*spec.FormSpec, *Error) {
	s, cerr := e.loadSpec(configJSON)
	if cerr != nil {
		return nil, cerr
	}
	if s.ID != formID {
		return nil, formUnavailableErr(formID)
	}
	return s, nil
}

// parseContext decodes the context document leniently: anything that is
// not a JSON object becomes an empty one.
func parseContext(ctxJSON string) map[string]any {
	var v any
	if err := json.Unmarshal([]byte(ctxJSON), &v); err == nil {
		if obj, ok := v.(map[string]any); ok {
			return obj
		}
	}
	return map[string]any{}
}

// parseAnswers decodes the answers document leniently, like parseContext.
func parseAnswers(answersJSON string) map[string]any {
	return parseContext(answersJSON)
}

// contextAnswers pulls the answers namespace out of a context document.
func contextAnswers(ctx map[string]any) map[string]any {
	if a, ok := ctx["answers"].(map[string]any); ok {
		return a
	}
	return map[string]any{}
}

// secretsHostAvailable reads the host capability flag, top-level or
// nested under config.
func secretsHostAvailable(ctx map[string]any) bool {
	if b, ok := ctx["secrets_host_available"].(bool); ok {
		return b
	}
	if cfg, ok := ctx["config"].(map[string]any); ok {
		if b, ok := cfg["secrets_host_available"].(bool); ok {
			return b
		}
	}
	return false
}

// respond marshals a successful value, or the error, into the boundary
// payload.
func respond(value any, callErr *Error) string {
	if callErr != nil {
		return errorJSON(callErr.Msg)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return errorJSON(jsonEncodeErr(err).Msg)
	}
	return string(data)
}

func errorJSON(msg string) string {
	data, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return `{"error":"json encode failure"}`
	}
	return string(data)
}

// Describe returns the full form spec.
func (e *Engine) Describe(formID, configJSON string) string {
	s, cerr := e.ensureForm(formID, configJSON)
	if cerr != nil {
		return respond(nil, cerr)
	}
	return respond(s, nil)
}

// AnswerSchema returns the JSON-Schema-shaped answer description scoped
// to visible questions.
func (e *Engine) AnswerSchema(formID, configJSON, ctxJSON string) string {
	s, cerr := e.ensureForm(formID, configJSON)
	if cerr != nil {
		return respond(nil, cerr)
	}
	ctx := parseContext(ctxJSON)
	answers := contextAnswers(ctx)
	vis := visibility.Resolve(s, answers, visibility.ModeVisible)
	return respond(render.AnswersSchema(s, vis), nil)
}

// ExampleAnswers returns one plausible value per visible question.
func (e *Engine) ExampleAnswers(formID, configJSON, ctxJSON string) string {
	s, cerr := e.ensureForm(formID, configJSON)
	if cerr != nil {
		return respond(nil, cerr)
	}
	ctx := parseContext(ctxJSON)
	answers := contextAnswers(ctx)
	vis := visibility.Resolve(s, answers, visibility.ModeVisible)
	return respond(render.ExampleAnswers(s, vis), nil)
}

// ValidateAnswers validates an answer set. Malformed answer JSON is a
// boundary error; validation failures are ordinary result data.
func (e *Engine) ValidateAnswers(formID, configJSON, answersJSON string) string {
	s, cerr := e.ensureForm(formID, configJSON)
	if cerr != nil {
		return respond(nil, cerr)
	}
	var answers any
	if err := json.Unmarshal([]byte(answersJSON), &answers); err != nil {
		return respond(nil, configParseErr(err))
	}
	return respond(validate.Validate(s, answers), nil)
}

// Next reports the next unanswered visible question and the progress
// counters. The spec-config travels inside the context document.
func (e *Engine) Next(formID, ctxJSON, answersJSON string) string {
	s, cerr := e.ensureForm(formID, ctxJSON)
	if cerr != nil {
		return respond(nil, cerr)
	}
	ctx := parseContext(ctxJSON)
	answers := parseAnswers(answersJSON)
	payload := render.Build(s, ctx, answers)

	return respond(map[string]any{
		"status":           string(payload.Status),
		"next_question_id": nullableID(payload.NextQuestionID),
		"progress":         payload.Progress,
	}, nil)
}

// ApplyStore applies the spec's store operations to the context and
// returns the updated store document.
func (e *Engine) ApplyStore(formID, ctxJSON, answersJSON string) string {
	s, cerr := e.ensureForm(formID, ctxJSON)
	if cerr != nil {
		return respond(nil, cerr)
	}
	ctx := parseContext(ctxJSON)
	answers := parseAnswers(answersJSON)

	storeCtx := store.FromValue(map[string]any(ctx))
	storeCtx.Answers = answers
	if err := storeCtx.Apply(s.Store, s.SecretsPolicy, secretsHostAvailable(ctx)); err != nil {
		return respond(nil, storeErr(err))
	}
	return respond(storeCtx.ToValue(), nil)
}

// RenderText renders the form as human-friendly text.
func (e *Engine) RenderText(formID, configJSON, ctxJSON, answersJSON string) string {
	payload, cerr := e.buildPayload(formID, configJSON, ctxJSON, answersJSON)
	if cerr != nil {
		return errorJSON(cerr.Msg)
	}
	return render.Text(payload)
}

// RenderJSONUI renders the form as a structured JSON UI document.
func (e *Engine) RenderJSONUI(formID, configJSON, ctxJSON, answersJSON string) string {
	payload, cerr := e.buildPayload(formID, configJSON, ctxJSON, answersJSON)
	if cerr != nil {
		return errorJSON(cerr.Msg)
	}
	return respond(render.JSONUI(payload), nil)
}

// RenderCard renders the form as an Adaptive Card v1.3 document.
func (e *Engine) RenderCard(formID, configJSON, ctxJSON, answersJSON string) string {
	payload, cerr := e.buildPayload(formID, configJSON, ctxJSON, answersJSON)
	if cerr != nil {
		return errorJSON(cerr.Msg)
	}
	return respond(render.Card(payload), nil)
}

func (e *Engine) buildPayload(formID, configJSON, ctxJSON, answersJSON string) (*render.Payload, *Error) {
	s, cerr := e.ensureForm(formID, configJSON)
	if cerr != nil {
		return nil, cerr
	}
	ctx := parseContext(ctxJSON)
	answers := parseAnswers(answersJSON)
	payload := render.Build(s, ctx, answers)
	return &payload, nil
}

func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
