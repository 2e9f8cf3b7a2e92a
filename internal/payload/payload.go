// Package payload decodes loosely typed request fields.
//
// Multipart forms deliver every field as text, while JSON bodies deliver
// structured values. The parse functions accept either shape and report
// absence through their second return value, so callers can tell "leave the
// field alone" apart from "set it to an empty value".
package payload

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// decode returns the structured value behind raw. Strings are decoded as JSON
// and fall back to the literal text when they are not valid JSON.
func decode(raw any) (any, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case string:
		if v == "" {
			return nil, false
		}
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return v, true
		}
		return decoded, true
	case []byte:
		return decode(string(v))
	default:
		return v, true
	}
}

// ParseScalar returns the decoded value of raw. Text that is not JSON is
// returned unchanged. Absent, empty and JSON null input is reported as absent.
func ParseScalar(raw any) (any, bool) {
	decoded, ok := decode(raw)
	if !ok || decoded == nil {
		return nil, false
	}
	return decoded, true
}

// ParseArray returns raw as a list. JSON null yields an empty, non-nil list.
// Malformed or non-list input is reported as absent.
func ParseArray(raw any) ([]any, bool) {
	decoded, ok := decode(raw)
	if !ok {
		return nil, false
	}
	if decoded == nil {
		return []any{}, true
	}
	return asList(decoded)
}

// ParseObject returns raw as an object. Anything else is reported as absent.
func ParseObject(raw any) (map[string]any, bool) {
	decoded, ok := decode(raw)
	if !ok {
		return nil, false
	}
	obj, isObj := decoded.(map[string]any)
	return obj, isObj
}

// ToList is the lenient list reader used for id and edit lists: lists pass
// through, a single object becomes a one element list, and any other text is
// split on commas. Absent input yields an empty list.
func ToList(raw any) []any {
	if raw == nil {
		return []any{}
	}
	if text, ok := raw.(string); ok && text == "" {
		return []any{}
	}
	if list, ok := asList(raw); ok {
		return list
	}

	decoded, _ := decode(raw)
	if list, ok := asList(decoded); ok {
		return list
	}
	if obj, ok := decoded.(map[string]any); ok {
		return []any{obj}
	}

	text, ok := raw.(string)
	if !ok {
		return []any{}
	}
	out := []any{}
	for _, part := range strings.Split(text, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func asList(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

// StringValue returns v trimmed when it is a non-empty string.
func StringValue(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Text renders a decoded scalar as text. Strings are returned as sent.
// Objects and lists are not text.
func Text(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

// Strings converts a parsed list into text entries, skipping nested objects.
func Strings(list []any) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item == nil {
			continue
		}
		if s, ok := Text(item); ok {
			out = append(out, s)
		}
	}
	return out
}
