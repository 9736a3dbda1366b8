package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseJSON decodes a form spec from JSON bytes. Unknown fields are a
// structural error, never silently dropped.
func ParseJSON(data []byte) (*FormSpec, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var s FormSpec
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("structural decode: %w", err)
	}
	return &s, nil
}

// Load reads a form spec from a YAML reader. Strict: unknown fields are
// rejected.
func Load(r io.Reader) (*FormSpec, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s FormSpec
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("structural decode: %w", err)
	}
	return &s, nil
}

// LoadFile reads a form spec from disk, picking the decoder by file
// extension (.json → strict JSON, everything else → strict YAML).
func LoadFile(path string) (*FormSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open form spec: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return Load(bytes.NewReader(data))
}
