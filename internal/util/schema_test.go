package util

import "testing"

func objectSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{"type": "string"},
			"limit":   map[string]any{"type": "integer"},
			"log_level": map[string]any{
				"type": "string",
				"enum": []string{"all", "ERROR", "WARNING"},
			},
		},
		"required": []string{"message"},
	}
}

func TestValidateParameters(t *testing.T) {
	schema := objectSchema()

	if err := ValidateParameters(map[string]any{"message": "hi"}, schema); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}

	err := ValidateParameters(map[string]any{}, schema)
	if err == nil {
		t.Fatal("missing required field accepted")
	}
	if ve, ok := err.(*ValidationError); !ok || ve.Field != "message" {
		t.Fatalf("wrong error: %v", err)
	}

	if err := ValidateParameters(map[string]any{"message": 7}, schema); err == nil {
		t.Error("wrong type accepted")
	}

	// Decoded JSON numbers arrive as float64.
	if err := ValidateParameters(map[string]any{"message": "hi", "limit": float64(3)}, schema); err != nil {
		t.Errorf("integral float rejected: %v", err)
	}
	if err := ValidateParameters(map[string]any{"message": "hi", "limit": 3.5}, schema); err == nil {
		t.Error("fractional value accepted for integer field")
	}

	if err := ValidateParameters(map[string]any{"message": "hi", "log_level": "DEBUG"}, schema); err == nil {
		t.Error("out-of-enum value accepted")
	}
	if err := ValidateParameters(map[string]any{"message": "hi", "log_level": "ERROR"}, schema); err != nil {
		t.Errorf("enum member rejected: %v", err)
	}

	// Fields the schema does not describe pass through.
	if err := ValidateParameters(map[string]any{"message": "hi", "extra": true}, schema); err != nil {
		t.Errorf("extra field rejected: %v", err)
	}
}

func TestValidateParametersDecodedRequired(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"target": map[string]any{"type": "string"}},
		"required":   []any{"target"},
	}
	if err := ValidateParameters(map[string]any{}, schema); err == nil {
		t.Fatal("missing required field accepted for decoded schema")
	}
}
