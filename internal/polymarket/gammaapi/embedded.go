package gammaapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSONArray parses a JSON array carried inside a string field, e.g.
// outcomes = "[\"Yes\", \"No\"]". Absent input (nil, blank, "null") yields
// fallback. Elements may be JSON strings or numbers; numbers keep their
// literal text so prices are not re-rounded.
func DecodeJSONArray(raw *string, fallback []string) ([]string, error) {
	if raw == nil {
		return fallback, nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" || s == "null" {
		return fallback, nil
	}

	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedField, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after array", ErrMalformedField)
	}
	if items == nil {
		return fallback, nil
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case json.Number:
			out = append(out, v.String())
		default:
			return nil, fmt.Errorf("%w: element %d has type %T", ErrMalformedField, i, item)
		}
	}
	return out, nil
}

// EmbeddedList is a string-array field the Gamma API double-encodes as a
// JSON string. It is decoded once, when the record is unmarshalled.
type EmbeddedList struct {
	values  []string
	present bool
}

// NewEmbeddedList builds a present list, mostly for tests and fixtures.
func NewEmbeddedList(values ...string) EmbeddedList {
	if values == nil {
		values = []string{}
	}
	return EmbeddedList{values: values, present: true}
}

// Present reports whether the upstream sent the field at all
func (l EmbeddedList) Present() bool { return l.present }

// Or returns the decoded values, or fallback when the field was absent.
func (l EmbeddedList) Or(fallback []string) []string {
	if !l.present {
		return fallback
	}
	return l.values
}

// At returns element i, or fallback when the list is absent, short, or the
// element is empty.
func (l EmbeddedList) At(i int, fallback string) string {
	if !l.present || i < 0 || i >= len(l.values) || l.values[i] == "" {
		return fallback
	}
	return l.values[i]
}

// Len is the number of decoded elements
func (l EmbeddedList) Len() int { return len(l.values) }

func (l *EmbeddedList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*l = EmbeddedList{}

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		values, err := DecodeJSONArray(&s, nil)
		if err != nil {
			return err
		}
		if values != nil {
			*l = EmbeddedList{values: values, present: true}
		}
		return nil
	case data[0] == '[':
		// Some endpoints already send a real array.
		s := string(data)
		values, err := DecodeJSONArray(&s, nil)
		if err != nil {
			return err
		}
		*l = EmbeddedList{values: values, present: values != nil}
		return nil
	default:
		return fmt.Errorf("%w: unexpected token %q", ErrMalformedField, data[0])
	}
}

// MarshalJSON writes the upstream double-encoded form so cached records
// decode back to the same value.
func (l EmbeddedList) MarshalJSON() ([]byte, error) {
	if !l.present {
		return []byte("null"), nil
	}
	inner, err := json.Marshal(l.values)
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(inner))
}
