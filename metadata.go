package gojinja2

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// parseMetadataJSON decodes a {% meta %} payload into a generic Go
// value via jsoniter, the JSON library adapter spec.md §4.3 treats as
// an external, out-of-scope concern for everything except this one
// explicitly JSON-flavored statement.
func parseMetadataJSON(raw string) (interface{}, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return map[string]interface{}{}, nil
	}
	var out interface{}
	if err := jsoniter.UnmarshalFromString(trimmed, &out); err != nil {
		return nil, wrapError(ErrInvalidMetadata, err, "", 0, 0, "meta")
	}
	return out, nil
}

// GetMetadata returns the combined {% meta %} payload of the template
// as a value-tree, per spec.md §6. A template declaring no {% meta %}
// block returns an empty map, not an error.
func (t *Template) GetMetadata() (map[string]interface{}, error) {
	if t.metadata == nil {
		return map[string]interface{}{}, nil
	}
	m, ok := t.metadata.(map[string]interface{})
	if !ok {
		return nil, newError(ErrInvalidMetadata, t.name, 0, 0, "meta", "payload is not a JSON object")
	}
	return m, nil
}
