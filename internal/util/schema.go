// Package util holds the JSON-schema-like argument validation shared by the
// tool registry and the specialist transfer declaration.
package util

import (
	"fmt"
	"math"
)

// ValidationError reports one argument that failed schema validation.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateParameters checks decoded tool arguments against a schema of the
// shape the tool registry builds: an object schema with "properties",
// optional "required" and per-property "type" and "enum". Properties not
// present in the schema pass through unchecked so specialists can send
// extra fields without failing the call.
func ValidateParameters(params map[string]any, schema map[string]any) error {
	for _, field := range requiredFields(schema) {
		if _, ok := params[field]; !ok {
			return &ValidationError{
				Field:   field,
				Message: "required field is missing",
			}
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	for field, value := range params {
		prop, ok := properties[field].(map[string]any)
		if !ok {
			continue
		}

		wantType, _ := prop["type"].(string)
		if !matchesType(value, wantType) {
			return &ValidationError{
				Field:   field,
				Value:   value,
				Message: fmt.Sprintf("expected type %s, got %T", wantType, value),
			}
		}

		if allowed := enumValues(prop); len(allowed) > 0 {
			if s, ok := value.(string); ok && !contains(allowed, s) {
				return &ValidationError{
					Field:   field,
					Value:   value,
					Message: fmt.Sprintf("must be one of %v", allowed),
				}
			}
		}
	}

	return nil
}

// requiredFields tolerates both natively built schemas ([]string) and
// schemas decoded from JSON ([]any).
func requiredFields(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		fields := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				fields = append(fields, s)
			}
		}
		return fields
	default:
		return nil
	}
}

func enumValues(prop map[string]any) []string {
	switch e := prop["enum"].(type) {
	case []string:
		return e
	case []any:
		values := make([]string, 0, len(e))
		for _, v := range e {
			if s, ok := v.(string); ok {
				values = append(values, s)
			}
		}
		return values
	default:
		return nil
	}
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// matchesType checks a decoded JSON value against a schema type name. nil
// passes for every type; unknown type names pass everything.
func matchesType(value any, wantType string) bool {
	if value == nil {
		return true
	}
	switch wantType {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer":
		switch v := value.(type) {
		case int, int64:
			return true
		case float64:
			// JSON decoding yields float64 for every number.
			return v == math.Trunc(v)
		}
		return false
	case "number":
		switch value.(type) {
		case int, int64, float64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}
