package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"datapost/internal/datapost"
	"datapost/internal/logging"
	"datapost/internal/model"
	"datapost/internal/repository"
	"datapost/internal/storage"
)

var (
	ErrFilenameRequired = errors.New("filename is required")
	ErrStorageDisabled  = errors.New("media store is not configured")
	ErrMediaStore       = errors.New("media store failure")
)

const fallbackMediaType = "application/octet-stream"

// Options tune filename resolution. The zero value matches by substring,
// caps lookups at repository.DefaultQueryLimit and takes the first match.
type Options struct {
	MatchMode repository.MatchMode
	// FailOnAmbiguous makes lookups that return more than one record fail
	// with datapost.ErrAmbiguousMatch instead of taking the first.
	FailOnAmbiguous bool
	QueryLimit      int
	// DefaultStatus is given to created records; model.StatusPublished when empty.
	DefaultStatus string
	// ArchiveOnDelete snapshots content to the media store before deleting.
	ArchiveOnDelete bool
	Logger          *logging.Logger
}

// ExportResult describes a content snapshot uploaded to the media store.
type ExportResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
	// ExpiresIn is the URL lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

// DataPostService resolves "<name>.<type>" filenames to stored documents.
//
// Load is strict about absence; Create and Delete are not: creating an
// existing file and deleting a missing one are no-ops.
type DataPostService interface {
	// Exists reports whether a record matches the filename's name and type.
	Exists(ctx context.Context, filename string) (bool, error)

	// Create inserts an empty record for filename and returns its Document.
	// It returns (nil, nil) when the file already exists.
	Create(ctx context.Context, filename string) (datapost.Document, error)

	// Load returns the Document for an existing file, or datapost.ErrNotFound.
	Load(ctx context.Context, filename string) (datapost.Document, error)

	// Delete removes the file's record. A missing file is not an error.
	Delete(ctx context.Context, filename string) error

	// ReadFile loads the file and returns its current raw content.
	ReadFile(ctx context.Context, filename string) (string, error)

	// WriteFile creates the file if needed and replaces its raw content.
	WriteFile(ctx context.Context, filename, data string) error

	// Export snapshots the file's content to the media store and returns a
	// presigned download URL valid for expiry.
	Export(ctx context.Context, filename string, expiry time.Duration) (*ExportResult, error)

	// Types lists the registered type tags.
	Types() []string

	// MediaType returns the codec media type registered for the filename's
	// type, or application/octet-stream when it has none.
	MediaType(filename string) string
}

// dataPostService is a concrete implementation of DataPostService.
type dataPostService struct {
	registry *datapost.Registry
	repo     repository.RecordRepository
	store    storage.Storage
	opts     Options
	log      *logging.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewDataPostService constructs a new DataPostService. store may be nil when
// no media store is configured.
func NewDataPostService(registry *datapost.Registry, repo repository.RecordRepository, store storage.Storage, opts Options) DataPostService {
	if opts.MatchMode == "" {
		opts.MatchMode = repository.MatchSubstring
	}
	if opts.DefaultStatus == "" {
		opts.DefaultStatus = model.StatusPublished
	}
	log := opts.Logger
	if log == nil {
		log = logging.Default()
	}
	return &dataPostService{
		registry: registry,
		repo:     repo,
		store:    store,
		opts:     opts,
		log:      log,
		tracer:   otel.Tracer("datapost/internal/service"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *dataPostService) Exists(ctx context.Context, filename string) (ok bool, err error) {
	ctx, span := s.start(ctx, "Exists", filename)
	defer func() { s.finish(span, "exists", filename, err) }()

	fn, err := parse(filename)
	if err != nil {
		return false, err
	}
	recs, err := s.query(ctx, fn)
	if err != nil {
		return false, err
	}
	return len(recs) > 0, nil
}

func (s *dataPostService) Create(ctx context.Context, filename string) (doc datapost.Document, err error) {
	ctx, span := s.start(ctx, "Create", filename)
	defer func() { s.finish(span, "create", filename, err) }()

	fn, err := parse(filename)
	if err != nil {
		return nil, err
	}
	kind, err := s.registry.Lookup(fn.Type)
	if err != nil {
		return nil, err
	}

	recs, err := s.query(ctx, fn)
	if err != nil {
		return nil, err
	}
	if len(recs) > 0 {
		return nil, nil
	}

	now := s.now()
	stored, err := s.repo.Insert(ctx, &model.Record{
		ID:        uuid.New().String(),
		Title:     fn.Name,
		TypeTag:   fn.Type,
		Status:    s.opts.DefaultStatus,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		// Lost a race with a concurrent Create of the same file.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil
		}
		return nil, datapost.StoreError(err)
	}
	span.SetAttributes(attribute.String("datapost.record_id", stored.ID))
	return kind.Bind(s.repo, stored), nil
}

func (s *dataPostService) Load(ctx context.Context, filename string) (doc datapost.Document, err error) {
	ctx, span := s.start(ctx, "Load", filename)
	defer func() { s.finish(span, "load", filename, err) }()

	fn, err := parse(filename)
	if err != nil {
		return nil, err
	}
	kind, err := s.registry.Lookup(fn.Type)
	if err != nil {
		return nil, err
	}
	rec, err := s.resolve(ctx, fn)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", datapost.ErrNotFound, fn)
	}
	span.SetAttributes(attribute.String("datapost.record_id", rec.ID))
	return kind.Bind(s.repo, rec), nil
}

func (s *dataPostService) Delete(ctx context.Context, filename string) (err error) {
	ctx, span := s.start(ctx, "Delete", filename)
	defer func() { s.finish(span, "delete", filename, err) }()

	fn, err := parse(filename)
	if err != nil {
		return err
	}
	rec, err := s.resolve(ctx, fn)
	if err != nil || rec == nil {
		return err
	}

	// Archive first; if the upload fails the record is kept.
	if s.opts.ArchiveOnDelete && s.store != nil {
		key := path.Join("archive", rec.TypeTag, rec.Title, rec.ID+"."+rec.TypeTag)
		stored := datapost.Filename{Name: rec.Title, Type: rec.TypeTag}
		if err := s.upload(ctx, key, stored, rec.ID, rec.Content); err != nil {
			return fmt.Errorf("%w: archive before delete: %w", ErrMediaStore, err)
		}
	}

	if err := s.repo.Delete(ctx, rec.ID); err != nil {
		return datapost.StoreError(err)
	}
	return nil
}

func (s *dataPostService) ReadFile(ctx context.Context, filename string) (string, error) {
	doc, err := s.Load(ctx, filename)
	if err != nil {
		return "", err
	}
	return doc.Read(ctx)
}

func (s *dataPostService) WriteFile(ctx context.Context, filename, data string) error {
	doc, err := s.Create(ctx, filename)
	if err != nil {
		return err
	}
	if doc == nil {
		if doc, err = s.Load(ctx, filename); err != nil {
			return err
		}
	}
	return doc.Write(ctx, data)
}

func (s *dataPostService) Export(ctx context.Context, filename string, expiry time.Duration) (res *ExportResult, err error) {
	ctx, span := s.start(ctx, "Export", filename)
	defer func() { s.finish(span, "export", filename, err) }()

	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	doc, err := s.Load(ctx, filename)
	if err != nil {
		return nil, err
	}
	content, err := doc.Read(ctx)
	if err != nil {
		return nil, err
	}

	fn := datapost.Filename{Name: doc.Name(), Type: doc.Type()}
	key := path.Join("exports", fn.Type, doc.ID(), fn.String())
	if err := s.upload(ctx, key, fn, doc.ID(), content); err != nil {
		return nil, fmt.Errorf("%w: upload export: %w", ErrMediaStore, err)
	}

	u, err := s.store.PresignGet(ctx, key, expiry)
	if err != nil {
		return nil, fmt.Errorf("%w: presign export: %w", ErrMediaStore, err)
	}
	return &ExportResult{Key: key, URL: u, ExpiresIn: int64(expiry.Seconds())}, nil
}

func (s *dataPostService) Types() []string {
	return s.registry.Types()
}

func (s *dataPostService) MediaType(filename string) string {
	fn, err := datapost.ParseFilename(filename)
	if err != nil {
		return fallbackMediaType
	}
	return s.mediaType(fn.Type)
}

func (s *dataPostService) mediaType(typeTag string) string {
	kind, err := s.registry.Lookup(typeTag)
	if err != nil {
		return fallbackMediaType
	}
	return kind.Codec.MediaType()
}

func (s *dataPostService) upload(ctx context.Context, key string, fn datapost.Filename, id, content string) error {
	_, err := s.store.Put(ctx, key, strings.NewReader(content), storage.PutOptions{
		Size:        int64(len(content)),
		ContentType: s.mediaType(fn.Type),
		Metadata: map[string]string{
			"filename":  fn.String(),
			"record-id": id,
		},
	})
	return err
}

func (s *dataPostService) query(ctx context.Context, fn datapost.Filename) ([]model.Record, error) {
	recs, err := s.repo.Query(ctx, repository.RecordQuery{
		Title:   fn.Name,
		TypeTag: fn.Type,
		Match:   s.opts.MatchMode,
		Limit:   s.opts.QueryLimit,
	})
	if err != nil {
		return nil, datapost.StoreError(err)
	}
	return recs, nil
}

// resolve returns the record a filename refers to, or nil when none matches.
func (s *dataPostService) resolve(ctx context.Context, fn datapost.Filename) (*model.Record, error) {
	recs, err := s.query(ctx, fn)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	if len(recs) > 1 {
		titles := make([]string, len(recs))
		for i, r := range recs {
			titles[i] = r.Title
		}
		if s.opts.FailOnAmbiguous {
			return nil, fmt.Errorf("%w: %s matches %q", datapost.ErrAmbiguousMatch, fn, titles)
		}
		s.log.Warn("ambiguous filename, using first match", map[string]any{
			"component":  "datapost",
			"filename":   fn.String(),
			"candidates": titles,
			"chosen_id":  recs[0].ID,
		})
	}
	rec := recs[0]
	return &rec, nil
}

func parse(filename string) (datapost.Filename, error) {
	if filename == "" {
		return datapost.Filename{}, fmt.Errorf("%w: %w", ErrFilenameRequired, datapost.ErrMalformedIdentifier)
	}
	return datapost.ParseFilename(filename)
}

func (s *dataPostService) start(ctx context.Context, op, filename string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "DataPost."+op, trace.WithAttributes(
		attribute.String("datapost.filename", filename),
	))
}

// finish closes the span and logs failures of the backing stores; caller
// errors such as bad filenames are left to the dispatcher.
func (s *dataPostService) finish(span trace.Span, op, filename string, err error) {
	defer span.End()
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if errors.Is(err, datapost.ErrStore) || errors.Is(err, ErrMediaStore) {
		s.log.Error("datapost operation failed", err, map[string]any{
			"component": "datapost",
			"operation": op,
			"filename":  filename,
		})
	}
}
