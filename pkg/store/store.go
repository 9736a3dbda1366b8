// Package store applies a form's store operations to a context of
// three independent JSON namespaces: answers, state, and secrets.
// Batches are all-or-nothing; a denied secret write leaves every
// namespace untouched.
package store

import (
	"fmt"
	"strconv"

	"github.com/ormasoftchile/qaform/pkg/jsonptr"
	"github.com/ormasoftchile/qaform/pkg/secrets"
	"github.com/ormasoftchile/qaform/pkg/spec"
)

// ErrorKind classifies store failures.
type ErrorKind string

const (
	SecretsDisabled ErrorKind = "secrets_disabled"
	WriteDenied     ErrorKind = "write_denied"
	HostUnavailable ErrorKind = "host_unavailable"
	InvalidPath     ErrorKind = "invalid_path"
)

// Error identifies the op that failed and why. The whole batch is
// abandoned when any op fails.
type Error struct {
	Kind    ErrorKind
	OpIndex int
	Target  spec.StoreTarget
	Path    string
	Reason  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("store op %d (%s %s): %s", e.OpIndex, e.Target, e.Path, e.Reason)
}

// Context holds the three store namespaces. Each is a decoded JSON
// value, normally an object.
type Context struct {
	Answers any
	State   any
	Secrets any
}

// FromValue extracts the three namespaces from a context document.
// Missing namespaces become empty objects.
func FromValue(v any) *Context {
	c := &Context{
		Answers: map[string]any{},
		State:   map[string]any{},
		Secrets: map[string]any{},
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return c
	}
	if a, ok := obj["answers"]; ok && a != nil {
		c.Answers = a
	}
	if s, ok := obj["state"]; ok && s != nil {
		c.State = s
	}
	if s, ok := obj["secrets"]; ok && s != nil {
		c.Secrets = s
	}
	return c
}

// ToValue serializes the context to one JSON object with the three
// top-level namespace keys, suitable for lossless round-tripping.
func (c *Context) ToValue() map[string]any {
	return map[string]any{
		"answers": c.Answers,
		"state":   c.State,
		"secrets": c.Secrets,
	}
}

// Apply runs the ops in list order against a copy of the context and
// commits only when every op succeeds.
func (c *Context) Apply(ops []spec.StoreOp, policy *spec.SecretsPolicy, hostAvailable bool) error {
	answers := copyValue(c.Answers)
	state := copyValue(c.State)
	secretsNS := copyValue(c.Secrets)

	templateData := func() map[string]any {
		return map[string]any{
			"answers": answers,
			"state":   state,
			"secrets": secretsNS,
		}
	}

	for i, op := range ops {
		if op.Target == spec.TargetSecrets {
			decision := secrets.Evaluate(secrets.Write, op.Path, policy, hostAvailable)
			if !decision.Allowed {
				return &Error{
					Kind:    denialKind(decision.Reason),
					OpIndex: i,
					Target:  op.Target,
					Path:    op.Path,
					Reason:  decision.Reason,
				}
			}
		}

		value, err := renderValue(op.Value, templateData())
		if err != nil {
			return &Error{
				Kind:    InvalidPath,
				OpIndex: i,
				Target:  op.Target,
				Path:    op.Path,
				Reason:  err.Error(),
			}
		}

		var target *any
		switch op.Target {
		case spec.TargetAnswers:
			target = &answers
		case spec.TargetState:
			target = &state
		case spec.TargetSecrets:
			target = &secretsNS
		default:
			return &Error{
				Kind:    InvalidPath,
				OpIndex: i,
				Target:  op.Target,
				Path:    op.Path,
				Reason:  fmt.Sprintf("unknown target %q", op.Target),
			}
		}

		if err := write(target, op.Path, value); err != nil {
			return &Error{
				Kind:    InvalidPath,
				OpIndex: i,
				Target:  op.Target,
				Path:    op.Path,
				Reason:  err.Error(),
			}
		}
	}

	c.Answers = answers
	c.State = state
	c.Secrets = secretsNS
	return nil
}

func denialKind(reason string) ErrorKind {
	switch reason {
	case secrets.ReasonDisabled:
		return SecretsDisabled
	case secrets.ReasonHostUnavailable:
		return HostUnavailable
	default:
		return WriteDenied
	}
}

// write sets value at a JSON pointer inside doc, creating intermediate
// objects as needed. Array tokens must be an existing index or "-" to
// append.
func write(doc *any, pointer string, value any) error {
	tokens, err := jsonptr.Parse(pointer)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		*doc = value
		return nil
	}
	if *doc == nil {
		*doc = map[string]any{}
	}
	return writeTokens(doc, tokens, value)
}

func writeTokens(node *any, tokens []string, value any) error {
	tok := tokens[0]
	last := len(tokens) == 1

	switch container := (*node).(type) {
	case map[string]any:
		if last {
			container[tok] = value
			return nil
		}
		child, ok := container[tok]
		if !ok || child == nil {
			child = map[string]any{}
		}
		if err := writeTokens(&child, tokens[1:], value); err != nil {
			return err
		}
		container[tok] = child
		return nil

	case []any:
		if tok == "-" {
			if !last {
				return fmt.Errorf("cannot descend through append token")
			}
			*node = append(container, value)
			return nil
		}
		idx, err := strconv.Atoi(tok)
		if err != nil || idx < 0 || idx >= len(container) {
			return fmt.Errorf("array index %q out of range", tok)
		}
		if last {
			container[idx] = value
			return nil
		}
		child := container[idx]
		if err := writeTokens(&child, tokens[1:], value); err != nil {
			return err
		}
		container[idx] = child
		return nil

	default:
		return fmt.Errorf("cannot write through non-container value")
	}
}

// copyValue deep-copies a decoded JSON tree so a failed batch cannot
// leak partial writes into the live context.
func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
