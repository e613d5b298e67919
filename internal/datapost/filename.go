package datapost

import (
	"fmt"
	"strings"
)

// Filename is a parsed "<name>.<type>" identifier.
// Name keeps its original case; Type is lower-cased.
type Filename struct {
	Name string
	Type string
}

// ParseFilename splits s on its first '.'. Everything after that dot is the
// type, so "report.2024.json" has name "report" and type "2024.json".
// Only a missing separator is rejected; names and types are otherwise taken
// as they come.
func ParseFilename(s string) (Filename, error) {
	name, typ, ok := strings.Cut(s, ".")
	if !ok {
		return Filename{}, fmt.Errorf("%w: %q", ErrMalformedIdentifier, s)
	}
	return Filename{Name: name, Type: strings.ToLower(typ)}, nil
}

// String reassembles the identifier with the normalized type.
func (f Filename) String() string {
	return f.Name + "." + f.Type
}
