package codec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAML stores values as YAML documents.
type YAML struct{}

var _ Codec = YAML{}

func (YAML) Encode(v any) (out string, err error) {
	// yaml.v3 panics on kinds it cannot marshal (channels, funcs).
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("%w: yaml: %v", ErrEncode, r)
		}
	}()

	b, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: yaml: %v", ErrEncode, err)
	}
	return string(b), nil
}

// Decode parses s. Mapping keys come back as strings, so a key like 1 or
// true decodes to "1" or "true" and the result stays JSON-encodable.
func (YAML) Decode(s string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(Sanitize(s, true)), &v); err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", ErrDecode, err)
	}
	return stringKeys(v), nil
}

func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = stringKeys(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = stringKeys(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = stringKeys(e)
		}
		return t
	default:
		return v
	}
}

func (YAML) MediaType() string { return "application/yaml" }
