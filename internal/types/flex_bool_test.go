package types

import (
	"encoding/json"
	"testing"
)

func TestFlexBoolUnmarshal(t *testing.T) {
	cases := []struct {
		name     string
		payload  string
		expected bool
	}{
		{"json true", `true`, true},
		{"json false", `false`, false},
		{"yes string", `"yes"`, true},
		{"true string", `"true"`, true},
		{"mixed case yes", `"YES"`, true},
		{"padded true", `" true "`, true},
		{"no string", `"no"`, false},
		{"arbitrary string", `"definitely"`, false},
		{"empty string", `""`, false},
		{"null", `null`, false},
		{"number one", `1`, false},
		{"number zero", `0`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f FlexBool
			if err := json.Unmarshal([]byte(tc.payload), &f); err != nil {
				t.Fatalf("Unexpected unmarshal error for %s: %v", tc.payload, err)
			}
			if f.Bool() != tc.expected {
				t.Errorf("Payload %s: expected %v, got %v", tc.payload, tc.expected, f.Bool())
			}
		})
	}
}

func TestFlexBoolUnmarshalResetsPriorValue(t *testing.T) {
	f := FlexBool(true)
	if err := json.Unmarshal([]byte(`"no"`), &f); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if f.Bool() {
		t.Error("Expected reused FlexBool to reset to false")
	}
}

func TestFlexBoolMarshal(t *testing.T) {
	out, err := json.Marshal(struct {
		Answer FlexBool `json:"answer"`
	}{Answer: true})
	if err != nil {
		t.Fatalf("Unexpected marshal error: %v", err)
	}
	if string(out) != `{"answer":true}` {
		t.Errorf("Expected plain bool marshal, got %s", out)
	}
}
