// Package secrets evaluates read/write requests against a secrets
// policy. The policy is default-closed: a path must match an allow
// pattern to pass, and deny always wins over allow.
package secrets

import (
	"strings"

	"github.com/ormasoftchile/qaform/pkg/spec"
)

// Action is the kind of access being requested.
type Action int

const (
	Read Action = iota
	Write
)

func (a Action) String() string {
	if a == Write {
		return "write"
	}
	return "read"
}

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool
	Reason  string
}

func denied(reason string) Decision { return Decision{Reason: reason} }

// Deny reasons, matched by the store engine to classify its errors.
const (
	ReasonDisabled        = "secrets disabled"
	ReasonReadDisabled    = "secret reads disabled"
	ReasonWriteDisabled   = "secret writes disabled"
	ReasonHostUnavailable = "secrets host unavailable"
	ReasonDeniedByPattern = "path matches deny pattern"
	ReasonNotAllowed      = "path not covered by allow patterns"
)

// Evaluate applies the policy rules in order: host availability (writes
// only), enabled, per-action enablement, deny patterns, allow patterns,
// default deny.
func Evaluate(action Action, path string, policy *spec.SecretsPolicy, hostAvailable bool) Decision {
	// A sandboxed host without a secret-capable backing store can never
	// accept writes, whatever the policy says.
	if action == Write && !hostAvailable {
		return denied(ReasonHostUnavailable)
	}
	if policy == nil || !policy.Enabled {
		return denied(ReasonDisabled)
	}
	if action == Read && !policy.ReadEnabled {
		return denied(ReasonReadDisabled)
	}
	if action == Write && !policy.WriteEnabled {
		return denied(ReasonWriteDisabled)
	}

	normalized := strings.TrimPrefix(path, "/")

	// Deny check first — deny takes precedence over allow.
	for _, pattern := range policy.Deny {
		if Match(pattern, normalized) {
			return denied(ReasonDeniedByPattern)
		}
	}
	for _, pattern := range policy.Allow {
		if Match(pattern, normalized) {
			return Decision{Allowed: true}
		}
	}
	return denied(ReasonNotAllowed)
}

// Match matches a /-separated path against a glob pattern.
// `*` matches exactly one segment, `**` matches zero or more segments.
func Match(pattern, path string) bool {
	patParts := strings.Split(strings.TrimPrefix(pattern, "/"), "/")
	pathParts := strings.Split(path, "/")
	return matchParts(patParts, pathParts)
}

func matchParts(pattern, path []string) bool {
	pi, pa := 0, 0
	for pi < len(pattern) && pa < len(path) {
		if pattern[pi] == "**" {
			if pi == len(pattern)-1 {
				return true // trailing ** matches everything
			}
			// Try matching the rest of pattern against every suffix of path
			for k := pa; k <= len(path); k++ {
				if matchParts(pattern[pi+1:], path[k:]) {
					return true
				}
			}
			return false
		}
		if pattern[pi] == "*" || pattern[pi] == path[pa] {
			pi++
			pa++
			continue
		}
		return false
	}

	// Remaining pattern segments must all be ** (which match zero)
	for pi < len(pattern) {
		if pattern[pi] != "**" {
			return false
		}
		pi++
	}

	return pa == len(path)
}
