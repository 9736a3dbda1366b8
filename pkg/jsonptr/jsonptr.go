// Package jsonptr implements RFC 6901 JSON pointer resolution over
// decoded JSON documents (map[string]any / []any trees).
package jsonptr

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse splits a JSON pointer into its unescaped reference tokens.
// The empty pointer yields no tokens. Pointers must start with "/".
func Parse(pointer string) ([]string, error) {
	if pointer == "" {
		return nil, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("json pointer %q must start with '/'", pointer)
	}
	raw := strings.Split(pointer[1:], "/")
	tokens := make([]string, len(raw))
	for i, tok := range raw {
		tok = strings.ReplaceAll(tok, "~1", "/")
		tok = strings.ReplaceAll(tok, "~0", "~")
		tokens[i] = tok
	}
	return tokens, nil
}

// Resolve walks a decoded JSON document and returns the value at the
// pointer. The second return is false when any token fails to resolve.
func Resolve(doc any, pointer string) (any, bool) {
	tokens, err := Parse(pointer)
	if err != nil {
		return nil, false
	}
	cur := doc
	for _, tok := range tokens {
		switch node := cur.(type) {
		case map[string]any:
			val, ok := node[tok]
			if !ok {
				return nil, false
			}
			cur = val
		case []any:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}
