package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// JSON stores values as pretty-printed JSON documents.
type JSON struct {
	// Indent is the per-level indentation; four spaces when empty.
	Indent string
}

var _ Codec = JSON{}

func (c JSON) Encode(v any) (string, error) {
	indent := c.Indent
	if indent == "" {
		indent = "    "
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("%w: json: %v", ErrEncode, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Decode parses one JSON value. An empty payload decodes to nil so a freshly
// created document can be loaded before anything was saved into it.
func (c JSON) Decode(s string) (any, error) {
	s = Sanitize(s, false)
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(s))
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: json: %v", ErrDecode, err)
	}
	// Trailing values mean the payload was not a single document.
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: json: unexpected data after top-level value", ErrDecode)
	}
	return v, nil
}

func (JSON) MediaType() string { return "application/json" }
