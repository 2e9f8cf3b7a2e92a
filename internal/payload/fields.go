package payload

// Fields holds the non-file fields of one request. A key that is present with
// an empty value is still present.
type Fields map[string]any

// FromForm builds Fields from multipart or urlencoded values. A single value
// stays text, repeated values become a list.
func FromForm(values map[string][]string) Fields {
	fields := make(Fields, len(values))
	for key, vals := range values {
		switch len(vals) {
		case 0:
			fields[key] = ""
		case 1:
			fields[key] = vals[0]
		default:
			list := make([]any, len(vals))
			for i, v := range vals {
				list[i] = v
			}
			fields[key] = list
		}
	}
	return fields
}

// Has reports whether key was sent.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Get returns the raw value of key, nil when absent.
func (f Fields) Get(key string) any {
	return f[key]
}

// First returns the value of the first key that is present and not empty.
func (f Fields) First(keys ...string) any {
	for _, key := range keys {
		v, ok := f[key]
		if !ok || v == nil {
			continue
		}
		if s, isText := v.(string); isText && s == "" {
			continue
		}
		return v
	}
	return nil
}

// Empty reports whether no field was sent.
func (f Fields) Empty() bool {
	return len(f) == 0
}
