// Package progress decides which question to ask next and how far the
// caller is through a form. It is the only component that defines
// "complete": a nil next question means every visible question is
// answered.
package progress

import (
	"github.com/ormasoftchile/qaform/pkg/spec"
	"github.com/ormasoftchile/qaform/pkg/visibility"
)

// Context bundles the answer map with the wider evaluation context so
// computed expressions can see both.
type Context struct {
	Answers map[string]any
	Ctx     map[string]any
}

// NewContext builds a progress context from a decoded answers value and
// the caller's context document. Non-object answers count as empty.
func NewContext(answers any, ctx map[string]any) *Context {
	m, _ := answers.(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	evalCtx := map[string]any{"answers": m}
	for k, v := range ctx {
		if k != "answers" {
			evalCtx[k] = v
		}
	}
	return &Context{Answers: m, Ctx: evalCtx}
}

// Answered reports whether a question counts as answered:
// an explicit non-null answer; or a default value when the policy says
// defaults satisfy; or a computed expression that is not overridden.
func (c *Context) Answered(q *spec.QuestionSpec, policy *spec.ProgressPolicy) bool {
	val, explicit := c.Answers[q.ID]
	if explicit && val != nil {
		return true
	}
	if policy != nil && policy.TreatDefaultAsAnswered && q.DefaultValue != nil && !explicit {
		return true
	}
	if q.Computed != nil {
		// Computed fields satisfy progress unless overridable and the
		// caller supplied an explicit value (handled above).
		return true
	}
	return false
}

// AnsweredCount counts visible questions that are answered.
func (c *Context) AnsweredCount(s *spec.FormSpec, vis visibility.Map) int {
	n := 0
	for i := range s.Questions {
		q := &s.Questions[i]
		if vis[q.ID] && c.Answered(q, s.ProgressPolicy) {
			n++
		}
	}
	return n
}

// skipAnswered defaults to true when the policy or its flag is absent.
func skipAnswered(policy *spec.ProgressPolicy) bool {
	if policy == nil || policy.SkipAnswered == nil {
		return true
	}
	return *policy.SkipAnswered
}

// Next returns the id of the next question to ask, or "" when every
// visible question is answered. With skip_answered disabled the first
// visible question is returned regardless of prior answers.
func Next(s *spec.FormSpec, c *Context, vis visibility.Map) string {
	skip := skipAnswered(s.ProgressPolicy)
	for i := range s.Questions {
		q := &s.Questions[i]
		if !vis[q.ID] {
			continue
		}
		if !skip {
			return q.ID
		}
		if !c.Answered(q, s.ProgressPolicy) {
			return q.ID
		}
	}
	return ""
}
