// Package expr defines the condition expression AST used by visible_if,
// computed fields, and cross-field validation rules, and evaluates it
// against an answer context with three-valued logic.
package expr

import (
	"encoding/json"
	"fmt"
	"reflect"

	elang "github.com/expr-lang/expr"

	"github.com/ormasoftchile/qaform/pkg/jsonptr"
)

// MaxDepth bounds expression nesting. Trees deeper than this evaluate to
// Indeterminate instead of recursing further.
const MaxDepth = 32

// Op discriminates the expression variants. The set is closed; unknown
// ops are rejected during spec validation.
type Op string

const (
	OpLiteral Op = "literal"
	OpVar     Op = "var"
	OpIsSet   Op = "is_set"
	OpEq      Op = "eq"
	OpNe      Op = "ne"
	OpLt      Op = "lt"
	OpLte     Op = "lte"
	OpGt      Op = "gt"
	OpGte     Op = "gte"
	OpAnd     Op = "and"
	OpOr      Op = "or"
	OpNot     Op = "not"
	// OpWhen holds a free-form condition string compiled with expr-lang
	// and run against the context as its environment.
	OpWhen Op = "when"
)

var comparisonOps = map[Op]bool{
	OpEq: true, OpNe: true, OpLt: true, OpLte: true, OpGt: true, OpGte: true,
}

// Expr is one node of the expression tree. Exactly the fields relevant
// to Op are populated; Validate enforces the shape.
type Expr struct {
	Op Op `json:"op" yaml:"op" jsonschema:"required"`

	// Literal value (op=literal).
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// Context path (op=var, op=is_set), JSON-pointer style.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Operand paths (comparison ops).
	Left  string `json:"left,omitempty" yaml:"left,omitempty"`
	Right string `json:"right,omitempty" yaml:"right,omitempty"`

	// Children (op=and, op=or).
	Expressions []Expr `json:"expressions,omitempty" yaml:"expressions,omitempty"`

	// Child (op=not).
	Expression *Expr `json:"expression,omitempty" yaml:"expression,omitempty"`

	// Condition source (op=when).
	When string `json:"expr,omitempty" yaml:"expr,omitempty"`
}

// Result is the three-valued outcome of evaluating an expression.
// A comparison over an unresolvable path is Indeterminate, not false.
type Result int

const (
	False Result = iota
	True
	Indeterminate
)

// Known reports whether the result is a definite boolean.
func (r Result) Known() bool { return r != Indeterminate }

// Bool collapses the result, treating Indeterminate as false.
func (r Result) Bool() bool { return r == True }

func boolResult(b bool) Result {
	if b {
		return True
	}
	return False
}

// Validate checks that the node (and its subtree) uses a known op with
// the fields that op requires.
func (e *Expr) Validate() error {
	switch e.Op {
	case OpLiteral:
		// any JSON value allowed, including null
	case OpVar, OpIsSet:
		if e.Path == "" {
			return fmt.Errorf("op %q requires a path", e.Op)
		}
	case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte:
		if e.Left == "" || e.Right == "" {
			return fmt.Errorf("op %q requires left and right paths", e.Op)
		}
	case OpAnd, OpOr:
		if len(e.Expressions) == 0 {
			return fmt.Errorf("op %q requires at least one sub-expression", e.Op)
		}
		for i := range e.Expressions {
			if err := e.Expressions[i].Validate(); err != nil {
				return err
			}
		}
	case OpNot:
		if e.Expression == nil {
			return fmt.Errorf("op %q requires a sub-expression", e.Op)
		}
		return e.Expression.Validate()
	case OpWhen:
		if e.When == "" {
			return fmt.Errorf("op %q requires an expr string", e.Op)
		}
	default:
		return fmt.Errorf("unknown expression op %q", e.Op)
	}
	return nil
}

// Eval evaluates the expression against a context document. The context
// is a decoded JSON object exposing at least an "answers" member; paths
// resolve as JSON pointers into it.
func (e *Expr) Eval(ctx map[string]any) Result {
	return e.eval(ctx, 0)
}

func (e *Expr) eval(ctx map[string]any, depth int) Result {
	if depth > MaxDepth {
		return Indeterminate
	}

	switch e.Op {
	case OpLiteral:
		if b, ok := e.Value.(bool); ok {
			return boolResult(b)
		}
		return Indeterminate

	case OpVar:
		val, ok := jsonptr.Resolve(ctx, e.Path)
		if !ok {
			return Indeterminate
		}
		if b, ok := val.(bool); ok {
			return boolResult(b)
		}
		return Indeterminate

	case OpIsSet:
		val, ok := jsonptr.Resolve(ctx, e.Path)
		return boolResult(ok && val != nil)

	case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte:
		left, ok := jsonptr.Resolve(ctx, e.Left)
		if !ok {
			return Indeterminate
		}
		right, ok := jsonptr.Resolve(ctx, e.Right)
		if !ok {
			return Indeterminate
		}
		return compare(e.Op, left, right)

	case OpAnd:
		// Short-circuit on definite false; indeterminate children taint
		// an otherwise-true conjunction.
		sawIndeterminate := false
		for i := range e.Expressions {
			switch e.Expressions[i].eval(ctx, depth+1) {
			case False:
				return False
			case Indeterminate:
				sawIndeterminate = true
			}
		}
		if sawIndeterminate {
			return Indeterminate
		}
		return True

	case OpOr:
		// Mirrors and's propagation: a definite true wins, otherwise any
		// indeterminate child makes the disjunction indeterminate.
		sawIndeterminate := false
		for i := range e.Expressions {
			switch e.Expressions[i].eval(ctx, depth+1) {
			case True:
				return True
			case Indeterminate:
				sawIndeterminate = true
			}
		}
		if sawIndeterminate {
			return Indeterminate
		}
		return False

	case OpNot:
		switch e.Expression.eval(ctx, depth+1) {
		case True:
			return False
		case False:
			return True
		}
		return Indeterminate

	case OpWhen:
		return evalWhen(e.When, ctx)
	}

	return Indeterminate
}

// compare applies a comparison op to two resolved values. eq/ne use deep
// JSON equality; the ordering ops compare numbers numerically and
// strings lexicographically. Anything else is Indeterminate.
func compare(op Op, left, right any) Result {
	switch op {
	case OpEq:
		return boolResult(jsonEqual(left, right))
	case OpNe:
		return boolResult(!jsonEqual(left, right))
	}

	if lf, lok := asFloat(left); lok {
		rf, rok := asFloat(right)
		if !rok {
			return Indeterminate
		}
		return boolResult(ordered(op, lf < rf, lf == rf))
	}
	if ls, lok := left.(string); lok {
		rs, rok := right.(string)
		if !rok {
			return Indeterminate
		}
		return boolResult(ordered(op, ls < rs, ls == rs))
	}
	return Indeterminate
}

func ordered(op Op, less, equal bool) bool {
	switch op {
	case OpLt:
		return less
	case OpLte:
		return less || equal
	case OpGt:
		return !less && !equal
	case OpGte:
		return !less
	}
	return false
}

// jsonEqual compares two decoded JSON values, normalizing numbers so
// that int and float64 forms of the same number compare equal.
func jsonEqual(a, b any) bool {
	if af, ok := asFloat(a); ok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// evalWhen compiles and runs an expr-lang condition with the context as
// its environment. Compile or run failures, and non-boolean programs,
// are Indeterminate rather than errors: a when condition over answers
// that do not exist yet behaves like any other unresolvable expression.
func evalWhen(src string, ctx map[string]any) Result {
	env := map[string]any(ctx)
	if env == nil {
		env = map[string]any{}
	}
	program, err := elang.Compile(src, elang.Env(env), elang.AsBool(), elang.AllowUndefinedVariables())
	if err != nil {
		return Indeterminate
	}
	out, err := elang.Run(program, env)
	if err != nil {
		return Indeterminate
	}
	b, ok := out.(bool)
	if !ok {
		return Indeterminate
	}
	return boolResult(b)
}
