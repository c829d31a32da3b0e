package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString tracks presence and value for JSON PATCH semantics
// (RFC 7396). A plain *string cannot tell "absent" from "null", and share
// settings need all three states: an absent password field leaves the
// password alone, null or "" clears it, any other value sets it.
//   - Present=false: field absent from JSON (don't change)
//   - Present=true, Value=nil: field is JSON null (clear)
//   - Present=true, Value=&"": field is empty string (also clears)
//   - Present=true, Value=&"text": field has value
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON implements json.Unmarshaler.
// When this method is called, the field was present in the JSON.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	// Check for JSON null
	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	// Parse as string
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
