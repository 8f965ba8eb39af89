package topic

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
)

// topicFields has Topic's layout without its JSON methods.
type topicFields Topic

// recordKeys are the meta.json keys Topic decodes into typed fields.
var recordKeys = []string{
	"title", "type", "status", "session_id", "round", "max_rounds",
	"output_dir", "termination_reason", "created_at", "updated_at", "completed_at",
}

// UnmarshalJSON decodes a meta.json object. A known key holding the wrong
// JSON type leaves its field at the zero value instead of failing the whole
// record, and unknown keys are kept in Extra.
func (t *Topic) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("topic record is null")
	}

	var fields topicFields
	if err := json.Unmarshal(data, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return err
		}
	}

	for key, value := range raw {
		if slices.Contains(recordKeys, key) {
			continue
		}
		if fields.Extra == nil {
			fields.Extra = make(map[string]json.RawMessage)
		}
		fields.Extra[key] = value
	}

	id := t.ID
	*t = Topic(fields)
	t.ID = id
	return nil
}

// MarshalJSON writes the known fields in their fixed order, then any Extra
// keys sorted by name.
func (t Topic) MarshalJSON() ([]byte, error) {
	out, err := encodeJSON(topicFields(t))
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(t.Extra))
	for key := range t.Extra {
		if !slices.Contains(recordKeys, key) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return out, nil
	}
	slices.Sort(keys)

	out = out[:len(out)-1]
	for _, key := range keys {
		name, err := encodeJSON(key)
		if err != nil {
			return nil, err
		}
		out = append(out, ',')
		out = append(out, name...)
		out = append(out, ':')
		out = append(out, t.Extra[key]...)
	}
	return append(out, '}'), nil
}

// encodeJSON marshals v without HTML escaping, matching how records are
// written to disk.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
