package codec

import "fmt"

// Text stores plain strings. Load returns the sanitized content.
type Text struct{}

var _ Codec = Text{}

func (Text) Encode(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return "", fmt.Errorf("%w: text: expected string, got %T", ErrEncode, v)
	}
}

func (Text) Decode(s string) (any, error) {
	return Sanitize(s, true), nil
}

func (Text) MediaType() string { return "text/plain; charset=utf-8" }
