package engine

import (
	"encoding/json"

	"github.com/ormasoftchile/qaform/pkg/render"
	"github.com/ormasoftchile/qaform/pkg/spec"
	"github.com/ormasoftchile/qaform/pkg/store"
	"github.com/ormasoftchile/qaform/pkg/validate"
)

// SubmitPatch merges one answer into the answer set, validates, and on
// success applies the spec's store operations. Invalid submissions
// return status "error" with the validation result; they never reach
// the store.
func (e *Engine) SubmitPatch(formID, configJSON, ctxJSON, answersJSON, questionID, valueJSON string) string {
	s, cerr := e.ensureForm(formID, configJSON)
	if cerr != nil {
		return respond(nil, cerr)
	}

	var value any
	if err := json.Unmarshal([]byte(valueJSON), &value); err != nil {
		return respond(nil, configParseErr(err))
	}

	answers := parseAnswers(answersJSON)
	answers[questionID] = value

	return e.submit(s, ctxJSON, answers, false)
}

// SubmitAll validates the entire answer set at once and applies the
// store operations when valid.
func (e *Engine) SubmitAll(formID, configJSON, ctxJSON, answersJSON string) string {
	s, cerr := e.ensureForm(formID, configJSON)
	if cerr != nil {
		return respond(nil, cerr)
	}
	return e.submit(s, ctxJSON, parseAnswers(answersJSON), true)
}

// submit runs validation and, when the set passes, the store batch.
// Patch submissions tolerate missing required questions, since partial
// sets are their normal state; only a full submission enforces
// completeness.
func (e *Engine) submit(s *spec.FormSpec, ctxJSON string, answers map[string]any, requireComplete bool) string {
	ctx := parseContext(ctxJSON)
	result := validate.Validate(s, answers)
	payload := render.Build(s, ctx, answers)

	invalid := len(result.Errors) > 0 || len(result.UnknownFields) > 0 ||
		(requireComplete && len(result.MissingRequired) > 0)
	if invalid {
		return respond(map[string]any{
			"status":           string(render.StatusError),
			"next_question_id": nullableID(payload.NextQuestionID),
			"progress":         payload.Progress,
			"answers":          answers,
			"validation":       result,
		}, nil)
	}

	storeCtx := store.FromValue(map[string]any(ctx))
	storeCtx.Answers = answers
	if err := storeCtx.Apply(s.Store, s.SecretsPolicy, secretsHostAvailable(ctx)); err != nil {
		return respond(nil, storeErr(err))
	}

	return respond(map[string]any{
		"status":           string(payload.Status),
		"next_question_id": nullableID(payload.NextQuestionID),
		"progress":         payload.Progress,
		"answers":          answers,
		"store":            storeCtx.ToValue(),
	}, nil)
}
