package store

import (
	"strings"
	"testing"
)

func TestValueRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"bool", true, true},
		{"string", "Good", "Good"},
		{"number", 250000.5, 250000.5},
		{"int becomes float", 42, 42.0},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := encodeValue(tt.in)
			if err != nil {
				t.Fatalf("encodeValue: %v", err)
			}
			if got := decodeValue(raw); got != tt.want {
				t.Errorf("expected %v (%T), got %v (%T)", tt.want, tt.want, got, got)
			}
		})
	}
}

func TestDecodeValueInvalid(t *testing.T) {
	if got := decodeValue(nil); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
	if got := decodeValue([]byte("{broken")); got != nil {
		t.Errorf("expected nil for invalid json, got %v", got)
	}
}

func TestSchemaStatements(t *testing.T) {
	if len(schema) == 0 {
		t.Fatal("expected schema statements")
	}
	for i, stmt := range schema {
		if !strings.Contains(stmt, "IF NOT EXISTS") {
			t.Errorf("statement %d is not idempotent", i)
		}
	}
	if !strings.Contains(schema[2], "PRIMARY KEY (assessment_id, criterion_id)") {
		t.Error("answers must be keyed per assessment and criterion")
	}
}
