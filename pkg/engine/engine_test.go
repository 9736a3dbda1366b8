package engine

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ormasoftchile/qaform/pkg/forms"
)

func testEngine() *Engine {
	return New(Options{DefaultSpec: forms.Default})
}

func decode(t *testing.T, payload string) map[string]any {
	t.Helper()
	var v map[string]any
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		t.Fatalf("boundary payload is not JSON: %v\n%s", err, payload)
	}
	return v
}

func mustBeError(t *testing.T, payload, fragment string) {
	t.Helper()
	v := decode(t, payload)
	msg, ok := v["error"].(string)
	if !ok {
		t.Fatalf("expected error payload, got %s", payload)
	}
	if fragment != "" && !strings.Contains(msg, fragment) {
		t.Errorf("error = %q, want fragment %q", msg, fragment)
	}
}

func TestDescribe_ReturnsSpec(t *testing.T) {
	v := decode(t, testEngine().Describe("example-form", ""))
	if v["id"] != "example-form" {
		t.Errorf("id = %v", v["id"])
	}
	questions := v["questions"].([]any)
	if len(questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(questions))
	}
	q1 := questions[0].(map[string]any)
	if q1["id"] != "q1" || q1["required"] != true {
		t.Errorf("q1 = %v", q1)
	}
}

func TestDescribe_UnknownForm(t *testing.T) {
	mustBeError(t, testEngine().Describe("nope", ""), "form 'nope' is not available")
}

func TestDescribe_MalformedConfig(t *testing.T) {
	mustBeError(t, testEngine().Describe("example-form", "{not json"), "failed to parse config")
}

func TestDescribe_EmbeddedSpecOverridesDefault(t *testing.T) {
	custom := `{"id": "custom", "title": "Custom", "version": "2.0.0",
	            "questions": [{"id": "only", "type": "string", "title": "Only"}]}`
	cfg, _ := json.Marshal(map[string]string{"form_spec_json": custom})

	v := decode(t, testEngine().Describe("custom", string(cfg)))
	if v["id"] != "custom" || v["version"] != "2.0.0" {
		t.Errorf("spec = %v", v)
	}
}

func TestAnswerSchema_VisibleQuestions(t *testing.T) {
	v := decode(t, testEngine().AnswerSchema("example-form", "", "{}"))
	props := v["properties"].(map[string]any)
	if _, ok := props["q1"]; !ok {
		t.Errorf("properties = %v, want q1", props)
	}
	q1 := props["q1"].(map[string]any)
	if q1["type"] != "string" {
		t.Errorf("q1 schema = %v", q1)
	}
	required := v["required"].([]any)
	if len(required) != 2 {
		t.Errorf("required = %v", required)
	}
}

func TestExampleAnswers_Default(t *testing.T) {
	v := decode(t, testEngine().ExampleAnswers("example-form", "", "{}"))
	if v["q1"] != "example-q1" {
		t.Errorf("q1 example = %v", v["q1"])
	}
	if v["q2"] != false {
		t.Errorf("q2 example = %v", v["q2"])
	}
}

func TestValidateAnswers_Verdicts(t *testing.T) {
	eng := testEngine()

	v := decode(t, eng.ValidateAnswers("example-form", "", `{"q1": "Acme", "q2": true}`))
	if v["valid"] != true {
		t.Errorf("valid set rejected: %v", v)
	}

	v = decode(t, eng.ValidateAnswers("example-form", "", `{"q1": 42, "q2": true}`))
	if v["valid"] != false {
		t.Fatalf("invalid set accepted: %v", v)
	}
	errs := v["errors"].([]any)
	first := errs[0].(map[string]any)
	if first["code"] != "type_mismatch" || first["question_id"] != "q1" {
		t.Errorf("error = %v", first)
	}

	// Malformed answers JSON is a boundary error, not a verdict.
	mustBeError(t, eng.ValidateAnswers("example-form", "", "{oops"), "failed to parse config")
}

func TestNext_ProgressWalk(t *testing.T) {
	eng := testEngine()

	v := decode(t, eng.Next("example-form", "{}", "{}"))
	if v["status"] != "need_input" || v["next_question_id"] != "q1" {
		t.Errorf("empty: %v", v)
	}
	progress := v["progress"].(map[string]any)
	if progress["answered"] != float64(0) || progress["total"] != float64(2) {
		t.Errorf("progress = %v", progress)
	}

	v = decode(t, eng.Next("example-form", "{}", `{"q1": "Acme"}`))
	if v["next_question_id"] != "q2" {
		t.Errorf("after q1: %v", v)
	}

	v = decode(t, eng.Next("example-form", "{}", `{"q1": "Acme", "q2": false}`))
	if v["status"] != "complete" || v["next_question_id"] != nil {
		t.Errorf("complete: %v", v)
	}
}

func TestNext_SpecConfigInContext(t *testing.T) {
	custom := `{"id": "one-q", "title": "One", "version": "1",
	            "questions": [{"id": "only", "type": "string", "title": "Only", "required": true}]}`
	ctx, _ := json.Marshal(map[string]string{"form_spec_json": custom})

	v := decode(t, testEngine().Next("one-q", string(ctx), "{}"))
	if v["next_question_id"] != "only" {
		t.Errorf("embedded spec ignored: %v", v)
	}
}

func TestApplyStore_WritesNamespaces(t *testing.T) {
	custom := `{"id": "s", "title": "S", "version": "1",
	            "secrets_policy": {"enabled": true, "write_enabled": true, "allow": ["aws/*"]},
	            "store": [
	              {"target": "state", "path": "/done", "value": true},
	              {"target": "secrets", "path": "/aws/key", "value": "{{ .answers.key }}"}
	            ],
	            "questions": [{"id": "key", "type": "string", "title": "Key"}]}`
	ctx := map[string]any{"form_spec_json": custom, "secrets_host_available": true}
	ctxJSON, _ := json.Marshal(ctx)

	v := decode(t, testEngine().ApplyStore("s", string(ctxJSON), `{"key": "abc123"}`))
	state := v["state"].(map[string]any)
	if state["done"] != true {
		t.Errorf("state = %v", state)
	}
	secretsNS := v["secrets"].(map[string]any)
	if secretsNS["aws"].(map[string]any)["key"] != "abc123" {
		t.Errorf("secrets = %v", secretsNS)
	}
	answers := v["answers"].(map[string]any)
	if answers["key"] != "abc123" {
		t.Errorf("answers = %v", answers)
	}
}

func TestApplyStore_DeniedWriteIsBoundaryError(t *testing.T) {
	custom := `{"id": "s", "title": "S", "version": "1",
	            "store": [{"target": "secrets", "path": "/aws/key", "value": "x"}],
	            "questions": [{"id": "q", "type": "string", "title": "Q"}]}`
	ctx := map[string]any{"form_spec_json": custom, "secrets_host_available": true}
	ctxJSON, _ := json.Marshal(ctx)

	mustBeError(t, testEngine().ApplyStore("s", string(ctxJSON), "{}"), "store apply failed")
}

func TestRenderText_Smoke(t *testing.T) {
	out := testEngine().RenderText("example-form", "", "{}", `{"q1": "Acme"}`)
	if !strings.Contains(out, "Form: Example Form (example-form)") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "Next question: q2") {
		t.Errorf("missing next question:\n%s", out)
	}
}

func TestRenderJSONUI_Envelope(t *testing.T) {
	v := decode(t, testEngine().RenderJSONUI("example-form", "", "{}", "{}"))
	if v["form_id"] != "example-form" || v["status"] != "need_input" {
		t.Errorf("envelope = %v", v)
	}
	if v["schema"] == nil {
		t.Error("schema missing")
	}
	if len(v["questions"].([]any)) != 2 {
		t.Errorf("questions = %v", v["questions"])
	}
}

func TestRenderCard_Envelope(t *testing.T) {
	v := decode(t, testEngine().RenderCard("example-form", "", "{}", "{}"))
	if v["type"] != "AdaptiveCard" || v["version"] != "1.3" {
		t.Errorf("card = %v", v)
	}
	actions := v["actions"].([]any)
	qa := actions[0].(map[string]any)["data"].(map[string]any)["qa"].(map[string]any)
	if qa["formId"] != "example-form" || qa["questionId"] != "q1" || qa["mode"] != "patch" {
		t.Errorf("qa = %v", qa)
	}
}

func TestSubmitPatch_Advances(t *testing.T) {
	eng := testEngine()

	v := decode(t, eng.SubmitPatch("example-form", "", "{}", "{}", "q1", `"Acme"`))
	if v["status"] != "need_input" || v["next_question_id"] != "q2" {
		t.Errorf("after q1: %v", v)
	}
	answers := v["answers"].(map[string]any)
	if answers["q1"] != "Acme" {
		t.Errorf("answers = %v", answers)
	}
	if _, ok := v["store"]; !ok {
		t.Error("successful submit should include the store document")
	}

	v = decode(t, eng.SubmitPatch("example-form", "", "{}", `{"q1": "Acme"}`, "q2", "true"))
	if v["status"] != "complete" || v["next_question_id"] != nil {
		t.Errorf("after q2: %v", v)
	}
}

func TestSubmitPatch_InvalidValue(t *testing.T) {
	v := decode(t, testEngine().SubmitPatch("example-form", "", "{}", "{}", "q1", "42"))
	if v["status"] != "error" {
		t.Fatalf("status = %v, want error", v["status"])
	}
	validation := v["validation"].(map[string]any)
	errs := validation["errors"].([]any)
	first := errs[0].(map[string]any)
	if first["code"] != "type_mismatch" {
		t.Errorf("code = %v", first["code"])
	}
	if _, ok := v["store"]; ok {
		t.Error("invalid submit must not run the store batch")
	}
}

func TestSubmitPatch_MalformedValueJSON(t *testing.T) {
	mustBeError(t, testEngine().SubmitPatch("example-form", "", "{}", "{}", "q1", "{oops"), "failed to parse config")
}

func TestSubmitAll_EnforcesCompleteness(t *testing.T) {
	eng := testEngine()

	v := decode(t, eng.SubmitAll("example-form", "", "{}", `{"q1": "Acme", "q2": true}`))
	if v["status"] != "complete" {
		t.Errorf("full set: %v", v)
	}

	// A partial set passes patch but fails a full submission.
	v = decode(t, eng.SubmitAll("example-form", "", "{}", `{"q1": "Acme"}`))
	if v["status"] != "error" {
		t.Fatalf("partial set: %v", v)
	}
	validation := v["validation"].(map[string]any)
	missing := validation["missing_required"].([]any)
	if len(missing) != 1 || missing[0] != "q2" {
		t.Errorf("missing_required = %v", missing)
	}
}

func TestEngine_NoDefaultSpec(t *testing.T) {
	eng := New(Options{})
	mustBeError(t, eng.Describe("example-form", ""), "no form spec supplied")
}
