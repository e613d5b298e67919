package datapost

import (
	"context"

	"datapost/internal/codec"
	"datapost/internal/model"
	"datapost/internal/repository"
)

// Document is the in-memory handle on one stored file.
//
// Read and Load always go back to the store, so callers observe writes made
// elsewhere since the handle was created. Nothing is locked: two writers to
// the same file race and the last Write wins.
type Document interface {
	ID() string
	Name() string
	Type() string
	// Content returns the content cached by the last Read or Write.
	Content() string

	// Read fetches the current raw content.
	Read(ctx context.Context) (string, error)
	// Write replaces the raw content. Name and type are unchanged.
	Write(ctx context.Context, content string) error
	// Load decodes the current content with the type's codec.
	Load(ctx context.Context) (any, error)
	// Save encodes v with the type's codec and writes it.
	Save(ctx context.Context, v any) error
}

// FileDocument is the Document variant shared by all built-in types: content
// is kept verbatim in the record and the codec does all interpretation.
type FileDocument struct {
	store   repository.RecordRepository
	codec   codec.Codec
	id      string
	name    string
	typeTag string
	content string
}

var _ Document = (*FileDocument)(nil)

// NewFileDocument is the default Factory.
func NewFileDocument(store repository.RecordRepository, rec *model.Record, c codec.Codec) Document {
	return &FileDocument{
		store:   store,
		codec:   c,
		id:      rec.ID,
		name:    rec.Title,
		typeTag: rec.TypeTag,
		content: rec.Content,
	}
}

func (d *FileDocument) ID() string      { return d.id }
func (d *FileDocument) Name() string    { return d.name }
func (d *FileDocument) Type() string    { return d.typeTag }
func (d *FileDocument) Content() string { return d.content }

func (d *FileDocument) Read(ctx context.Context) (string, error) {
	rec, err := d.store.FindByID(ctx, d.id)
	if err != nil {
		return "", StoreError(err)
	}
	d.content = rec.Content
	return d.content, nil
}

func (d *FileDocument) Write(ctx context.Context, content string) error {
	d.content = content
	if err := d.store.Update(ctx, d.id, d.name, content); err != nil {
		return StoreError(err)
	}
	return nil
}

func (d *FileDocument) Load(ctx context.Context) (any, error) {
	raw, err := d.Read(ctx)
	if err != nil {
		return nil, err
	}
	return d.codec.Decode(raw)
}

func (d *FileDocument) Save(ctx context.Context, v any) error {
	encoded, err := d.codec.Encode(v)
	if err != nil {
		return err
	}
	return d.Write(ctx, encoded)
}
