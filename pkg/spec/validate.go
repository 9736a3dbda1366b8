package spec

import (
	"encoding/json"
	"fmt"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// Validate performs the full 3-phase validation pipeline on a decoded
// form spec.
// Phase 1 (structural) is the strict decode done by the loaders.
// Phase 2: Semantic (JSON Schema validation)
// Phase 3: Domain (custom Go rules)
func Validate(s *FormSpec) []*ValidationError {
	var allErrors []*ValidationError
	allErrors = append(allErrors, validateSemantic(s)...)
	allErrors = append(allErrors, ValidateDomain(s)...)
	return allErrors
}

// ValidateBytes runs all three phases against raw JSON. Returns the
// decoded spec when phase 1 passes, plus any errors from later phases.
func ValidateBytes(data []byte) (*FormSpec, []*ValidationError) {
	s, err := ParseJSON(data)
	if err != nil {
		return nil, []*ValidationError{{
			Phase:    "structural",
			Path:     "",
			Message:  err.Error(),
			Severity: "error",
		}}
	}
	if errs := Validate(s); len(errs) > 0 {
		return s, errs
	}
	return s, nil
}

// validateSemantic validates the spec against its generated JSON Schema.
func validateSemantic(s *FormSpec) []*ValidationError {
	semanticErr := func(format string, args ...any) []*ValidationError {
		return []*ValidationError{{
			Phase:    "semantic",
			Path:     "",
			Message:  fmt.Sprintf(format, args...),
			Severity: "error",
		}}
	}

	data, err := json.Marshal(s)
	if err != nil {
		return semanticErr("marshal for schema validation: %v", err)
	}

	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return semanticErr("generate schema: %v", err)
	}

	var schemaDoc any
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return semanticErr("unmarshal schema: %v", err)
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource("form-v0.json", schemaDoc); err != nil {
		return semanticErr("add schema resource: %v", err)
	}
	sch, err := c.Compile("form-v0.json")
	if err != nil {
		return semanticErr("compile schema: %v", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return semanticErr("unmarshal document: %v", err)
	}

	if err := sch.Validate(doc); err != nil {
		var errs []*ValidationError
		if ve, ok := err.(*sjsonschema.ValidationError); ok {
			for _, cause := range flattenValidationErrors(ve) {
				errs = append(errs, &ValidationError{
					Phase:    "semantic",
					Path:     strings.Join(cause.InstanceLocation, "/"),
					Message:  fmt.Sprintf("%v", cause.ErrorKind),
					Severity: "error",
				})
			}
		} else {
			errs = append(errs, &ValidationError{
				Phase:    "semantic",
				Message:  err.Error(),
				Severity: "error",
			})
		}
		return errs
	}
	return nil
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}
