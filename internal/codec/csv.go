package codec

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// CSV stores tables. Values are [][]string, one slice per row.
type CSV struct {
	// Comma is the field delimiter; ',' when zero.
	Comma rune
}

var _ Codec = CSV{}

func (c CSV) Encode(v any) (string, error) {
	rows, ok := v.([][]string)
	if !ok {
		return "", fmt.Errorf("%w: csv: expected [][]string, got %T", ErrEncode, v)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = c.comma()
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("%w: csv: %v", ErrEncode, err)
	}
	return buf.String(), nil
}

// Decode requires every row to have the same number of fields as the first.
func (c CSV) Decode(s string) (any, error) {
	r := csv.NewReader(strings.NewReader(Sanitize(s, true)))
	r.Comma = c.comma()
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %v", ErrDecode, err)
	}
	if rows == nil {
		rows = [][]string{}
	}
	return rows, nil
}

func (CSV) MediaType() string { return "text/csv" }

func (c CSV) comma() rune {
	if c.Comma == 0 {
		return ','
	}
	return c.Comma
}
