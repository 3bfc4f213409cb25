package types

import (
	"encoding/json"
	"strings"
)

// FlexBool is a bool that can be unmarshaled from a JSON bool or the web
// form's string sentinels. Only true, "yes" and "true" normalize to true;
// everything else, including null and absent fields, is false.
type FlexBool bool

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexBool) UnmarshalJSON(data []byte) error {
	*f = false
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlexBool(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "true":
			*f = true
		}
		return nil
	}

	// Numbers and other shapes normalize to false rather than erroring.
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// Bool converts FlexBool back to bool.
func (f FlexBool) Bool() bool {
	return bool(f)
}
