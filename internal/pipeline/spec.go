package pipeline

import (
	"encoding/json"
	"strconv"

	"book-scout/internal/model"
)

// ParseSearchSpec decodes the model's JSON-mode output into a SearchSpec.
// The second return value reports whether the spec is usable: the text must
// parse as a JSON object and contain both query_type and query_value keys.
// A failed parse yields a zero spec; a parse with missing keys yields
// whatever fields were present, so the caller can still proceed with it
// after the retry budget is spent.
func ParseSearchSpec(raw string) (model.SearchSpec, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return model.SearchSpec{}, false
	}

	spec := model.SearchSpec{
		QueryType:  stringField(fields, "query_type"),
		QueryValue: stringField(fields, "query_value"),
		Limit:      stringField(fields, "limit"),
	}

	_, hasType := fields["query_type"]
	_, hasValue := fields["query_value"]
	return spec, hasType && hasValue
}

// stringField extracts a field as a string, coercing JSON numbers. Models in
// JSON mode frequently emit "limit": 3 instead of "limit": "3".
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}
