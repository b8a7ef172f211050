package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Data is a response body: exactly one of a JSON document or raw text.
// The zero value is empty text.
type Data struct {
	raw    json.RawMessage
	text   string
	isJSON bool
}

// JSONData wraps a JSON document. raw must be valid JSON.
func JSONData(raw json.RawMessage) Data {
	return Data{raw: raw, isJSON: true}
}

// TextData wraps raw text.
func TextData(s string) Data {
	return Data{text: s}
}

// DecodeData interprets a body as JSON when it parses and as text otherwise.
// It never fails.
func DecodeData(b []byte) Data {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return JSONData(bytes.Clone(trimmed))
	}
	return TextData(string(b))
}

// IsJSON reports whether d holds a JSON document.
func (d Data) IsJSON() bool { return d.isJSON }

// JSON returns the JSON document, or nil for text.
func (d Data) JSON() json.RawMessage {
	if !d.isJSON {
		return nil
	}
	return d.raw
}

// Text returns the raw text, or "" for JSON.
func (d Data) Text() string {
	if d.isJSON {
		return ""
	}
	return d.text
}

// Decode unmarshals the JSON branch into v.
func (d Data) Decode(v any) error {
	if !d.isJSON {
		return fmt.Errorf("data is text, not JSON")
	}
	return json.Unmarshal(d.raw, v)
}

// Len returns the size of the body in bytes.
func (d Data) Len() int {
	if d.isJSON {
		return len(d.raw)
	}
	return len(d.text)
}

// MarshalJSON emits the JSON branch verbatim and text as a JSON string.
func (d Data) MarshalJSON() ([]byte, error) {
	if d.isJSON {
		return d.raw, nil
	}
	return json.Marshal(d.text)
}

// UnmarshalJSON reads a wire value. A JSON string decodes to text since the
// wire cannot tell a quoted scalar from text; anything else stays JSON.
func (d *Data) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*d = TextData(s)
		return nil
	}
	*d = JSONData(bytes.Clone(trimmed))
	return nil
}

// Headers is a header set that encodes single values as strings and
// repeated values as arrays.
type Headers http.Header

// MarshalJSON implements json.Marshaler.
func (h Headers) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(h))
	for k, vals := range h {
		switch len(vals) {
		case 0:
		case 1:
			out[k] = vals[0]
		default:
			out[k] = vals
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *Headers) UnmarshalJSON(b []byte) error {
	var in map[string]json.RawMessage
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	out := make(Headers, len(in))
	for k, raw := range in {
		var one string
		if err := json.Unmarshal(raw, &one); err == nil {
			out[k] = []string{one}
			continue
		}
		var many []string
		if err := json.Unmarshal(raw, &many); err != nil {
			return fmt.Errorf("header %q: %w", k, err)
		}
		out[k] = many
	}
	*h = out
	return nil
}
