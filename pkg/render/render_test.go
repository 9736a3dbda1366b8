package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ormasoftchile/qaform/pkg/expr"
	"github.com/ormasoftchile/qaform/pkg/spec"
	"github.com/ormasoftchile/qaform/pkg/visibility"
)

func intPtr(n int) *int { return &n }

func profileForm() *spec.FormSpec {
	return &spec.FormSpec{
		ID:           "profile",
		Title:        "Company Profile",
		Version:      "1.0.0",
		Description:  "Collects a company profile.",
		Presentation: &spec.Presentation{Intro: "Answer a few questions."},
		Questions: []spec.QuestionSpec{
			{
				ID: "name", Type: spec.TypeString, Title: "Company name", Required: true,
				Constraint: &spec.Constraint{Pattern: "^[a-z]+$", MinLen: intPtr(2), MaxLen: intPtr(20)},
			},
			{ID: "env", Type: spec.TypeEnum, Title: "Environment", Choices: []string{"dev", "prod"}, DefaultValue: "dev"},
			{ID: "subscribe", Type: spec.TypeBoolean, Title: "Subscribe?", Required: true},
			{
				ID: "token", Type: spec.TypeString, Title: "API token", Secret: true,
				VisibleIf: &expr.Expr{Op: expr.OpVar, Path: "/answers/subscribe"},
			},
		},
	}
}

func TestBuild_StatusAndNext(t *testing.T) {
	s := profileForm()

	p := Build(s, nil, map[string]any{})
	if p.Status != StatusNeedInput || p.NextQuestionID != "name" {
		t.Errorf("empty: status=%s next=%q", p.Status, p.NextQuestionID)
	}
	// subscribe is unanswered, so token's condition is indeterminate and
	// the default mode keeps it visible.
	if p.Progress.Total != 4 {
		t.Errorf("total = %d, want 4", p.Progress.Total)
	}

	p = Build(s, nil, map[string]any{"name": "acme", "env": "dev", "subscribe": false})
	if p.Status != StatusComplete || p.NextQuestionID != "" {
		t.Errorf("filled: status=%s next=%q", p.Status, p.NextQuestionID)
	}
	if p.Progress.Answered != 3 {
		t.Errorf("answered = %d, want 3", p.Progress.Answered)
	}
}

func TestBuild_HelpPrefersIntro(t *testing.T) {
	s := profileForm()
	p := Build(s, nil, map[string]any{})
	if p.Help != "Answer a few questions." {
		t.Errorf("help = %q, want the presentation intro", p.Help)
	}

	s.Presentation = nil
	p = Build(s, nil, map[string]any{})
	if p.Help != "Collects a company profile." {
		t.Errorf("help = %q, want the description fallback", p.Help)
	}
}

func TestBuild_ComputedValueSurfaced(t *testing.T) {
	s := &spec.FormSpec{
		ID: "c", Title: "C", Version: "1",
		Questions: []spec.QuestionSpec{
			{ID: "name", Type: spec.TypeString, Title: "Name"},
			{
				ID: "has_name", Type: spec.TypeBoolean, Title: "Has name",
				Computed: &spec.ComputedSpec{Expr: expr.Expr{Op: expr.OpIsSet, Path: "/answers/name"}},
			},
		},
	}
	p := Build(s, nil, map[string]any{"name": "acme"})
	q := p.question("has_name")
	if q == nil || !q.HasValue || q.CurrentValue != true {
		t.Errorf("computed question = %+v, want current value true", q)
	}
}

func TestAnswersSchema_ScopedAndOrdered(t *testing.T) {
	s := profileForm()
	vis := visibility.Resolve(s, map[string]any{"subscribe": false}, visibility.ModeVisible)

	schema := AnswersSchema(s, vis)
	raw, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	text := string(raw)

	// Hidden questions never appear.
	if strings.Contains(text, "token") {
		t.Errorf("hidden question leaked into schema:\n%s", text)
	}
	// Property order follows spec order.
	if strings.Index(text, `"name"`) > strings.Index(text, `"env"`) {
		t.Errorf("properties out of spec order:\n%s", text)
	}

	var decoded struct {
		Type                 string   `json:"type"`
		Required             []string `json:"required"`
		AdditionalProperties bool     `json:"additionalProperties"`
		Properties           map[string]struct {
			Type      string   `json:"type"`
			Pattern   string   `json:"pattern"`
			MinLength *int     `json:"minLength"`
			MaxLength *int     `json:"maxLength"`
			Enum      []string `json:"enum"`
			Default   any      `json:"default"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Type != "object" || decoded.AdditionalProperties {
		t.Errorf("schema envelope wrong: type=%q additionalProperties=%v", decoded.Type, decoded.AdditionalProperties)
	}
	if len(decoded.Required) != 2 || decoded.Required[0] != "name" || decoded.Required[1] != "subscribe" {
		t.Errorf("required = %v, want [name subscribe]", decoded.Required)
	}
	name := decoded.Properties["name"]
	if name.Type != "string" || name.Pattern != "^[a-z]+$" || name.MinLength == nil || *name.MinLength != 2 {
		t.Errorf("name schema = %+v", name)
	}
	env := decoded.Properties["env"]
	if len(env.Enum) != 2 || env.Default != "dev" {
		t.Errorf("env schema = %+v", env)
	}
}

func TestAnswersSchema_ListQuestion(t *testing.T) {
	s := &spec.FormSpec{
		ID: "l", Title: "L", Version: "1",
		Questions: []spec.QuestionSpec{{
			ID: "admins", Type: spec.TypeList, Title: "Admins",
			Constraint: &spec.Constraint{MaxItems: intPtr(4)},
			List: &spec.ListSpec{
				MinItems: intPtr(1),
				Fields: []spec.ListField{
					{ID: "email", Type: spec.TypeString, Required: true},
					{ID: "owner", Type: spec.TypeBoolean},
				},
			},
		}},
	}
	vis := visibility.Resolve(s, map[string]any{}, visibility.ModeVisible)
	raw, err := json.Marshal(AnswersSchema(s, vis))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded struct {
		Properties map[string]struct {
			Type     string `json:"type"`
			MinItems *int   `json:"minItems"`
			MaxItems *int   `json:"maxItems"`
			Items    struct {
				Type     string   `json:"type"`
				Required []string `json:"required"`
			} `json:"items"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	admins := decoded.Properties["admins"]
	if admins.Type != "array" || admins.MinItems == nil || *admins.MinItems != 1 {
		t.Errorf("admins schema = %+v", admins)
	}
	if admins.MaxItems == nil || *admins.MaxItems != 4 {
		t.Errorf("constraint max_items not exported: %+v", admins)
	}
	if admins.Items.Type != "object" || len(admins.Items.Required) != 1 || admins.Items.Required[0] != "email" {
		t.Errorf("item schema = %+v", admins.Items)
	}
}

func TestExampleAnswers_PerType(t *testing.T) {
	s := profileForm()
	vis := visibility.Resolve(s, map[string]any{"subscribe": false}, visibility.ModeVisible)

	examples := ExampleAnswers(s, vis)
	if examples["name"] != "example-name" {
		t.Errorf("name = %v", examples["name"])
	}
	if examples["env"] != "dev" {
		t.Errorf("env = %v, want the default to win", examples["env"])
	}
	if examples["subscribe"] != false {
		t.Errorf("subscribe = %v", examples["subscribe"])
	}
	if _, present := examples["token"]; present {
		t.Error("hidden questions get no example")
	}
}

func TestText_Layout(t *testing.T) {
	s := profileForm()
	p := Build(s, nil, map[string]any{"name": "acme"})
	out := Text(&p)

	if !strings.Contains(out, "Form: Company Profile (profile)") {
		t.Errorf("missing form header:\n%s", out)
	}
	if !strings.Contains(out, "Status: need_input (1/4)") {
		t.Errorf("missing status line:\n%s", out)
	}
	if !strings.Contains(out, "Next question: env") {
		t.Errorf("missing next question:\n%s", out)
	}
	if !strings.Contains(out, "[required]") {
		t.Errorf("missing required marker:\n%s", out)
	}
	if !strings.Contains(out, "= acme") {
		t.Errorf("missing current value:\n%s", out)
	}

	p = Build(s, nil, map[string]any{"name": "acme", "env": "dev", "subscribe": false})
	out = Text(&p)
	if !strings.Contains(out, "All visible questions are answered.") {
		t.Errorf("missing completion line:\n%s", out)
	}
}

func TestText_MasksSecrets(t *testing.T) {
	s := profileForm()
	p := Build(s, nil, map[string]any{
		"name": "acme", "subscribe": true, "token": "super-secret-token",
	})
	out := Text(&p)
	if strings.Contains(out, "super-secret-token") {
		t.Errorf("secret value leaked:\n%s", out)
	}
	if !strings.Contains(out, "********") {
		t.Errorf("missing mask:\n%s", out)
	}
}

func TestText_TruncatesLongValues(t *testing.T) {
	s := profileForm()
	long := strings.Repeat("x", 100)
	p := Build(s, nil, map[string]any{"name": long})
	out := Text(&p)
	if strings.Contains(out, long) {
		t.Error("long value should be truncated")
	}
	if !strings.Contains(out, "…") {
		t.Errorf("missing ellipsis:\n%s", out)
	}
}

func TestJSONUI_Shape(t *testing.T) {
	s := profileForm()
	p := Build(s, nil, map[string]any{"name": "acme"})
	ui := JSONUI(&p)

	if ui["form_id"] != "profile" || ui["status"] != "need_input" {
		t.Errorf("envelope = %v", ui)
	}
	if ui["next_question_id"] != "env" {
		t.Errorf("next_question_id = %v", ui["next_question_id"])
	}
	progress := ui["progress"].(map[string]any)
	if progress["answered"] != 1 || progress["total"] != 4 {
		t.Errorf("progress = %v", progress)
	}

	questions := ui["questions"].([]any)
	if len(questions) != 4 {
		t.Fatalf("questions = %d, want all 4 (visibility flagged, not filtered)", len(questions))
	}
	first := questions[0].(map[string]any)
	if first["id"] != "name" || first["current_value"] != "acme" {
		t.Errorf("first question = %v", first)
	}
	if _, ok := first["description"]; !ok {
		t.Error("description key must always be present")
	}
	if ui["schema"] == nil {
		t.Error("schema must be embedded")
	}

	// Complete forms have a null next id.
	p = Build(s, nil, map[string]any{"name": "acme", "env": "dev", "subscribe": false})
	ui = JSONUI(&p)
	if ui["next_question_id"] != nil {
		t.Errorf("complete next_question_id = %v, want nil", ui["next_question_id"])
	}
}

func TestJSONUI_MalformedSchemaDegradesToNull(t *testing.T) {
	p := Payload{
		FormID:    "broken",
		FormTitle: "Broken",
		Status:    StatusComplete,
		Schema:    json.RawMessage(`{not json`),
	}
	ui := JSONUI(&p)
	if ui["schema"] != nil {
		t.Errorf("schema = %v, want nil for undecodable bytes", ui["schema"])
	}
}

func TestCard_NeedInput(t *testing.T) {
	s := profileForm()
	p := Build(s, nil, map[string]any{})
	card := Card(&p)

	if card["type"] != "AdaptiveCard" || card["version"] != "1.3" {
		t.Errorf("card envelope = %v", card)
	}

	actions := card["actions"].([]any)
	if len(actions) != 1 {
		t.Fatalf("actions = %d, want 1", len(actions))
	}
	submit := actions[0].(map[string]any)
	if submit["type"] != "Action.Submit" {
		t.Errorf("action type = %v", submit["type"])
	}
	qa := submit["data"].(map[string]any)["qa"].(map[string]any)
	if qa["formId"] != "profile" || qa["mode"] != "patch" || qa["questionId"] != "name" || qa["field"] != "answer" {
		t.Errorf("qa payload = %v", qa)
	}
}

func TestCard_InputsPerType(t *testing.T) {
	s := profileForm()

	findInput := func(card map[string]any) map[string]any {
		for _, item := range card["body"].([]any) {
			m := item.(map[string]any)
			if m["type"] == "Container" {
				items := m["items"].([]any)
				return items[len(items)-1].(map[string]any)
			}
		}
		return nil
	}

	// name is first: Input.Text.
	p := Build(s, nil, map[string]any{})
	input := findInput(Card(&p))
	if input["type"] != "Input.Text" || input["isRequired"] != true {
		t.Errorf("string input = %v", input)
	}

	// env next: Input.ChoiceSet.
	p = Build(s, nil, map[string]any{"name": "acme"})
	input = findInput(Card(&p))
	if input["type"] != "Input.ChoiceSet" || input["style"] != "compact" {
		t.Errorf("enum input = %v", input)
	}
	if choices := input["choices"].([]any); len(choices) != 2 {
		t.Errorf("choices = %v", choices)
	}

	// subscribe: Input.Toggle.
	p = Build(s, nil, map[string]any{"name": "acme", "env": "dev"})
	input = findInput(Card(&p))
	if input["type"] != "Input.Toggle" || input["valueOn"] != "true" || input["valueOff"] != "false" {
		t.Errorf("boolean input = %v", input)
	}
}

func TestCard_Complete(t *testing.T) {
	s := profileForm()
	p := Build(s, nil, map[string]any{"name": "acme", "env": "dev", "subscribe": false})
	card := Card(&p)

	if actions := card["actions"].([]any); len(actions) != 0 {
		t.Errorf("complete card actions = %v, want empty", actions)
	}
	found := false
	for _, item := range card["body"].([]any) {
		if m := item.(map[string]any); m["text"] == "All visible questions are answered." {
			found = true
		}
	}
	if !found {
		t.Error("complete card should say all questions answered")
	}
}
