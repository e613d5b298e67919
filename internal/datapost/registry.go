package datapost

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"datapost/internal/codec"
	"datapost/internal/model"
	"datapost/internal/repository"
)

// Factory binds a stored record to the Document variant of its type.
type Factory func(store repository.RecordRepository, rec *model.Record, c codec.Codec) Document

// Kind is one registry entry: the codec and Document variant for a type tag.
type Kind struct {
	Type  string
	Codec codec.Codec
	New   Factory
}

// Bind wraps rec in this kind's Document variant.
func (k Kind) Bind(store repository.RecordRepository, rec *model.Record) Document {
	return k.New(store, rec, k.Codec)
}

// Registry maps type tags to kinds. Build it once at startup and hand it to
// whatever resolves filenames; lookups are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Kind
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]Kind)}
}

// DefaultRegistry returns a registry with the built-in types:
// json, yaml, yml, csv and txt, all backed by FileDocument.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for typ, c := range map[string]codec.Codec{
		"json": codec.JSON{},
		"yaml": codec.YAML{},
		"yml":  codec.YAML{},
		"csv":  codec.CSV{},
		"txt":  codec.Text{},
	} {
		// Built-in types are distinct, registration cannot fail.
		_ = r.Register(typ, c, NewFileDocument)
	}
	return r
}

// Register binds typeTag (case-insensitive) to a codec and Document factory.
// A nil factory defaults to NewFileDocument.
func (r *Registry) Register(typeTag string, c codec.Codec, f Factory) error {
	typeTag = strings.ToLower(typeTag)
	if typeTag == "" {
		return fmt.Errorf("register: type tag is required")
	}
	if c == nil {
		return fmt.Errorf("register %q: codec is required", typeTag)
	}
	if f == nil {
		f = NewFileDocument
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.kinds[typeTag]; ok {
		return fmt.Errorf("%w: %q", ErrTypeRegistered, typeTag)
	}
	r.kinds[typeTag] = Kind{Type: typeTag, Codec: c, New: f}
	return nil
}

// Lookup returns the kind registered for typeTag, or ErrUnknownType.
func (r *Registry) Lookup(typeTag string) (Kind, error) {
	typeTag = strings.ToLower(typeTag)

	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[typeTag]
	if !ok {
		return Kind{}, fmt.Errorf("%w: %q", ErrUnknownType, typeTag)
	}
	return k, nil
}

// Types lists the registered type tags in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.kinds))
	for t := range r.kinds {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
