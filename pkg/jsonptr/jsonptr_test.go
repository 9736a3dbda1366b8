package jsonptr

import (
	"reflect"
	"testing"
)

func TestParse_Tokens(t *testing.T) {
	tokens, err := Parse("/answers/tenant_name")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(tokens, []string{"answers", "tenant_name"}) {
		t.Errorf("tokens = %v", tokens)
	}

	if tokens, _ := Parse(""); tokens != nil {
		t.Errorf("empty pointer should yield no tokens, got %v", tokens)
	}

	if _, err := Parse("answers/x"); err == nil {
		t.Error("pointer without leading slash should fail")
	}
}

func TestParse_Unescapes(t *testing.T) {
	tokens, err := Parse("/a~1b/c~0d")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(tokens, []string{"a/b", "c~d"}) {
		t.Errorf("tokens = %v", tokens)
	}
}

func TestResolve_Walks(t *testing.T) {
	doc := map[string]any{
		"answers": map[string]any{
			"admins": []any{
				map[string]any{"email": "a@example.com"},
				map[string]any{"email": "b@example.com"},
			},
		},
	}

	val, ok := Resolve(doc, "/answers/admins/1/email")
	if !ok || val != "b@example.com" {
		t.Errorf("Resolve = %v, %v", val, ok)
	}

	if _, ok := Resolve(doc, "/answers/missing"); ok {
		t.Error("missing key should not resolve")
	}
	if _, ok := Resolve(doc, "/answers/admins/2"); ok {
		t.Error("out-of-range index should not resolve")
	}
	if _, ok := Resolve(doc, "/answers/admins/x"); ok {
		t.Error("non-numeric index should not resolve")
	}

	// Empty pointer is the document itself.
	val, ok = Resolve(doc, "")
	if !ok {
		t.Fatal("empty pointer should resolve")
	}
	if _, isMap := val.(map[string]any); !isMap {
		t.Errorf("empty pointer = %T, want the root map", val)
	}
}
