package expr

import (
	"encoding/json"
	"testing"
)

func ctx(answers map[string]any) map[string]any {
	return map[string]any{"answers": answers}
}

func TestLiteral_BoolOnly(t *testing.T) {
	e := Expr{Op: OpLiteral, Value: true}
	if got := e.Eval(ctx(nil)); got != True {
		t.Errorf("literal true = %v, want True", got)
	}
	e = Expr{Op: OpLiteral, Value: false}
	if got := e.Eval(ctx(nil)); got != False {
		t.Errorf("literal false = %v, want False", got)
	}
	// Non-boolean literals have no truth value.
	e = Expr{Op: OpLiteral, Value: "yes"}
	if got := e.Eval(ctx(nil)); got != Indeterminate {
		t.Errorf("literal string = %v, want Indeterminate", got)
	}
}

func TestVar_ResolvesBool(t *testing.T) {
	e := Expr{Op: OpVar, Path: "/answers/enabled"}

	if got := e.Eval(ctx(map[string]any{"enabled": true})); got != True {
		t.Errorf("bool true = %v, want True", got)
	}
	if got := e.Eval(ctx(map[string]any{"enabled": false})); got != False {
		t.Errorf("bool false = %v, want False", got)
	}
	if got := e.Eval(ctx(map[string]any{})); got != Indeterminate {
		t.Errorf("missing path = %v, want Indeterminate", got)
	}
	if got := e.Eval(ctx(map[string]any{"enabled": "yes"})); got != Indeterminate {
		t.Errorf("non-bool value = %v, want Indeterminate", got)
	}
}

func TestIsSet_AlwaysKnown(t *testing.T) {
	e := Expr{Op: OpIsSet, Path: "/answers/name"}

	if got := e.Eval(ctx(map[string]any{"name": "acme"})); got != True {
		t.Errorf("present = %v, want True", got)
	}
	if got := e.Eval(ctx(map[string]any{})); got != False {
		t.Errorf("absent = %v, want False", got)
	}
	// Explicit null counts as not set.
	if got := e.Eval(ctx(map[string]any{"name": nil})); got != False {
		t.Errorf("null = %v, want False", got)
	}
}

func TestEq_DeepAndNumericEquality(t *testing.T) {
	c := map[string]any{
		"answers": map[string]any{"a": float64(3), "b": 3, "s": "x", "list": []any{"1", "2"}},
		"expect":  map[string]any{"list": []any{"1", "2"}},
	}

	e := Expr{Op: OpEq, Left: "/answers/a", Right: "/answers/b"}
	if got := e.Eval(c); got != True {
		t.Errorf("float64(3) == int(3) = %v, want True", got)
	}
	e = Expr{Op: OpEq, Left: "/answers/list", Right: "/expect/list"}
	if got := e.Eval(c); got != True {
		t.Errorf("deep equal lists = %v, want True", got)
	}
	e = Expr{Op: OpNe, Left: "/answers/a", Right: "/answers/s"}
	if got := e.Eval(c); got != True {
		t.Errorf("3 != \"x\" = %v, want True", got)
	}
}

func TestComparison_MissingOperandIndeterminate(t *testing.T) {
	e := Expr{Op: OpEq, Left: "/answers/missing", Right: "/answers/also_missing"}
	if got := e.Eval(ctx(map[string]any{})); got != Indeterminate {
		t.Errorf("missing operands = %v, want Indeterminate", got)
	}
}

func TestOrdering_NumbersAndStrings(t *testing.T) {
	c := map[string]any{"answers": map[string]any{
		"n1": float64(2), "n2": float64(5),
		"s1": "apple", "s2": "banana",
		"b": true,
	}}

	cases := []struct {
		op          Op
		left, right string
		want        Result
	}{
		{OpLt, "/answers/n1", "/answers/n2", True},
		{OpLte, "/answers/n1", "/answers/n1", True},
		{OpGt, "/answers/n2", "/answers/n1", True},
		{OpGte, "/answers/n1", "/answers/n2", False},
		{OpLt, "/answers/s1", "/answers/s2", True},
		{OpGt, "/answers/s1", "/answers/s2", False},
		// Mixed and unordered types are indeterminate.
		{OpLt, "/answers/n1", "/answers/s1", Indeterminate},
		{OpLt, "/answers/b", "/answers/b", Indeterminate},
	}
	for _, tc := range cases {
		e := Expr{Op: tc.op, Left: tc.left, Right: tc.right}
		if got := e.Eval(c); got != tc.want {
			t.Errorf("%s %s %s = %v, want %v", tc.left, tc.op, tc.right, got, tc.want)
		}
	}
}

func TestAnd_ShortCircuitAndTaint(t *testing.T) {
	missing := Expr{Op: OpVar, Path: "/answers/missing"}
	yes := Expr{Op: OpLiteral, Value: true}
	no := Expr{Op: OpLiteral, Value: false}

	e := Expr{Op: OpAnd, Expressions: []Expr{yes, no, missing}}
	if got := e.Eval(ctx(nil)); got != False {
		t.Errorf("and with definite false = %v, want False", got)
	}
	e = Expr{Op: OpAnd, Expressions: []Expr{yes, missing}}
	if got := e.Eval(ctx(nil)); got != Indeterminate {
		t.Errorf("and with indeterminate = %v, want Indeterminate", got)
	}
	e = Expr{Op: OpAnd, Expressions: []Expr{yes, yes}}
	if got := e.Eval(ctx(nil)); got != True {
		t.Errorf("and all true = %v, want True", got)
	}
}

func TestOr_SymmetricWithAnd(t *testing.T) {
	missing := Expr{Op: OpVar, Path: "/answers/missing"}
	yes := Expr{Op: OpLiteral, Value: true}
	no := Expr{Op: OpLiteral, Value: false}

	e := Expr{Op: OpOr, Expressions: []Expr{no, yes, missing}}
	if got := e.Eval(ctx(nil)); got != True {
		t.Errorf("or with definite true = %v, want True", got)
	}
	// A definite true is never blocked by an indeterminate sibling, but
	// false-or-unknown stays unknown.
	e = Expr{Op: OpOr, Expressions: []Expr{no, missing}}
	if got := e.Eval(ctx(nil)); got != Indeterminate {
		t.Errorf("or false+indeterminate = %v, want Indeterminate", got)
	}
	e = Expr{Op: OpOr, Expressions: []Expr{no, no}}
	if got := e.Eval(ctx(nil)); got != False {
		t.Errorf("or all false = %v, want False", got)
	}
}

func TestNot_PreservesIndeterminate(t *testing.T) {
	missing := Expr{Op: OpVar, Path: "/answers/missing"}
	yes := Expr{Op: OpLiteral, Value: true}

	e := Expr{Op: OpNot, Expression: &yes}
	if got := e.Eval(ctx(nil)); got != False {
		t.Errorf("not true = %v, want False", got)
	}
	e = Expr{Op: OpNot, Expression: &missing}
	if got := e.Eval(ctx(nil)); got != Indeterminate {
		t.Errorf("not indeterminate = %v, want Indeterminate", got)
	}
}

func TestWhen_CompiledCondition(t *testing.T) {
	c := map[string]any{"answers": map[string]any{"environment": "prod", "replicas": 3}}

	e := Expr{Op: OpWhen, When: `answers.environment == "prod" and answers.replicas >= 2`}
	if got := e.Eval(c); got != True {
		t.Errorf("when true = %v, want True", got)
	}
	e = Expr{Op: OpWhen, When: `answers.replicas > 10`}
	if got := e.Eval(c); got != False {
		t.Errorf("when false = %v, want False", got)
	}
	// Broken source or a run-time failure never errors out.
	e = Expr{Op: OpWhen, When: `answers.environment ==`}
	if got := e.Eval(c); got != Indeterminate {
		t.Errorf("when parse failure = %v, want Indeterminate", got)
	}
}

func TestEval_DepthBound(t *testing.T) {
	// Build a not-chain deeper than MaxDepth.
	inner := &Expr{Op: OpLiteral, Value: true}
	for i := 0; i < MaxDepth+5; i++ {
		inner = &Expr{Op: OpNot, Expression: inner}
	}
	if got := inner.Eval(ctx(nil)); got != Indeterminate {
		t.Errorf("over-deep tree = %v, want Indeterminate", got)
	}
}

func TestValidate_ShapePerOp(t *testing.T) {
	bad := []Expr{
		{Op: "bogus"},
		{Op: OpVar},
		{Op: OpIsSet},
		{Op: OpEq, Left: "/a"},
		{Op: OpAnd},
		{Op: OpNot},
		{Op: OpWhen},
	}
	for _, e := range bad {
		if err := e.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", e)
		}
	}

	good := Expr{Op: OpAnd, Expressions: []Expr{
		{Op: OpIsSet, Path: "/answers/a"},
		{Op: OpNot, Expression: &Expr{Op: OpVar, Path: "/answers/b"}},
	}}
	if err := good.Validate(); err != nil {
		t.Errorf("Validate(good) = %v, want nil", err)
	}
}

func TestExpr_DecodesFromJSON(t *testing.T) {
	raw := `{"op": "and", "expressions": [
		{"op": "var", "path": "/answers/use_aws"},
		{"op": "eq", "left": "/answers/env", "right": "/expect/env"}
	]}`
	var e Expr
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Op != OpAnd || len(e.Expressions) != 2 {
		t.Fatalf("decoded shape wrong: %+v", e)
	}
	if e.Expressions[1].Left != "/answers/env" {
		t.Errorf("left = %q, want /answers/env", e.Expressions[1].Left)
	}
	if err := e.Validate(); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}
}

func TestResult_Helpers(t *testing.T) {
	if Indeterminate.Known() {
		t.Error("Indeterminate.Known() = true")
	}
	if !True.Known() || !False.Known() {
		t.Error("definite results should be known")
	}
	if Indeterminate.Bool() {
		t.Error("Indeterminate.Bool() = true, want false")
	}
	if !True.Bool() {
		t.Error("True.Bool() = false")
	}
}
