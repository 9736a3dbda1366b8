package store

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// renderValue resolves templated op values. Strings containing {{ }}
// are rendered against the in-flight namespaces; everything else is
// written verbatim.
func renderValue(value any, data map[string]any) (any, error) {
	text, ok := value.(string)
	if !ok || !strings.Contains(text, "{{") {
		return value, nil // fast path for literals
	}

	t, err := template.New("").Funcs(builtinFuncs()).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("template parse: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("template eval: %w", err)
	}
	return buf.String(), nil
}

// builtinFuncs provides template functions for store op values.
func builtinFuncs() template.FuncMap {
	return template.FuncMap{
		"eq": func(a, b any) bool {
			return fmt.Sprint(a) == fmt.Sprint(b)
		},
		"ne": func(a, b any) bool {
			return fmt.Sprint(a) != fmt.Sprint(b)
		},
		"contains": func(s, substr any) bool {
			return strings.Contains(fmt.Sprint(s), fmt.Sprint(substr))
		},
		"default": func(def, val any) any {
			if val == nil || fmt.Sprint(val) == "" {
				return def
			}
			return val
		},
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
	}
}
