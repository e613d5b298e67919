package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"datapost/internal/datapost"
	"datapost/internal/logging"
	"datapost/internal/model"
	"datapost/internal/repository"
	repoMocks "datapost/internal/repository/mocks"
	"datapost/internal/storage"
	storeMocks "datapost/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("connection reset")

func pricesQuery() repository.RecordQuery {
	return repository.RecordQuery{Title: "prices", TypeTag: "json", Match: repository.MatchSubstring}
}

func pricesRecord() model.Record {
	return model.Record{ID: "id-1", Title: "prices", TypeTag: "json", Content: `{"apple":1.2}`, Status: model.StatusPublished}
}

func TestDataPostService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(*repoMocks.MockRecordRepository)
		wantDoc    bool
		wantErr    error
	}{
		{
			name: "inserts when absent",
			setupMocks: func(r *repoMocks.MockRecordRepository) {
				r.On("Query", mock.Anything, pricesQuery()).Return([]model.Record{}, nil)
				r.On("Insert", mock.Anything, mock.MatchedBy(func(rec *model.Record) bool {
					return rec.ID != "" && rec.Title == "prices" && rec.TypeTag == "json" &&
						rec.Status == model.StatusPublished && rec.Content == ""
				})).Return(&model.Record{ID: "id-1", Title: "prices", TypeTag: "json"}, nil)
			},
			wantDoc: true,
		},
		{
			name: "existing file is a no-op",
			setupMocks: func(r *repoMocks.MockRecordRepository) {
				r.On("Query", mock.Anything, pricesQuery()).Return([]model.Record{pricesRecord()}, nil)
			},
		},
		{
			name: "losing an insert race is a no-op",
			setupMocks: func(r *repoMocks.MockRecordRepository) {
				r.On("Query", mock.Anything, pricesQuery()).Return([]model.Record{}, nil)
				r.On("Insert", mock.Anything, mock.Anything).Return(nil, repository.ErrDuplicate)
			},
		},
		{
			name: "query failure",
			setupMocks: func(r *repoMocks.MockRecordRepository) {
				r.On("Query", mock.Anything, pricesQuery()).Return(nil, errBoom)
			},
			wantErr: datapost.ErrStore,
		},
		{
			name: "insert failure",
			setupMocks: func(r *repoMocks.MockRecordRepository) {
				r.On("Query", mock.Anything, pricesQuery()).Return([]model.Record{}, nil)
				r.On("Insert", mock.Anything, mock.Anything).Return(nil, errBoom)
			},
			wantErr: datapost.ErrStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMocks.MockRecordRepository)
			tt.setupMocks(repo)
			svc := NewDataPostService(datapost.DefaultRegistry(), repo, nil, Options{Logger: logging.New(io.Discard, nil)})

			doc, err := svc.Create(ctx, "prices.json")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, errBoom)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantDoc, doc != nil)
			repo.AssertExpectations(t)
		})
	}
}

func TestDataPostService_QueryOptions(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockRecordRepository)
	repo.On("Query", mock.Anything, repository.RecordQuery{
		Title: "prices", TypeTag: "json", Match: repository.MatchExact, Limit: 5,
	}).Return([]model.Record{}, nil)

	svc := NewDataPostService(datapost.DefaultRegistry(), repo, nil, Options{
		MatchMode:  repository.MatchExact,
		QueryLimit: 5,
		Logger:     logging.New(io.Discard, nil),
	})

	ok, err := svc.Exists(ctx, "prices.json")

	require.NoError(t, err)
	assert.False(t, ok)
	repo.AssertExpectations(t)
}

func TestDataPostService_StoreFailuresAreLogged(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockRecordRepository)
	repo.On("Query", mock.Anything, pricesQuery()).Return(nil, errBoom)

	logs := &bytes.Buffer{}
	svc := NewDataPostService(datapost.DefaultRegistry(), repo, nil, Options{Logger: logging.New(logs, nil)})

	_, err := svc.Load(ctx, "prices.json")
	assert.ErrorIs(t, err, datapost.ErrStore)
	assert.Contains(t, logs.String(), `"operation":"load"`)
	assert.Contains(t, logs.String(), `"level":"error"`)

	logs.Reset()
	_, err = svc.Load(ctx, "noext")
	assert.ErrorIs(t, err, datapost.ErrMalformedIdentifier)
	assert.Empty(t, logs.String(), "caller errors are not logged")
}

func TestDataPostService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		archive    bool
		setupMocks func(*repoMocks.MockRecordRepository, *storeMocks.MockStorage)
		wantErr    error
	}{
		{
			name: "deletes the resolved record",
			setupMocks: func(r *repoMocks.MockRecordRepository, s *storeMocks.MockStorage) {
				r.On("Query", mock.Anything, pricesQuery()).Return([]model.Record{pricesRecord()}, nil)
				r.On("Delete", mock.Anything, "id-1").Return(nil)
			},
		},
		{
			name: "missing file is a no-op",
			setupMocks: func(r *repoMocks.MockRecordRepository, s *storeMocks.MockStorage) {
				r.On("Query", mock.Anything, pricesQuery()).Return([]model.Record{}, nil)
			},
		},
		{
			name:    "archives before deleting",
			archive: true,
			setupMocks: func(r *repoMocks.MockRecordRepository, s *storeMocks.MockStorage) {
				r.On("Query", mock.Anything, pricesQuery()).Return([]model.Record{pricesRecord()}, nil)
				s.On("Put", mock.Anything, "archive/json/prices/id-1.json", `{"apple":1.2}`, storage.PutOptions{
					Size:        int64(len(`{"apple":1.2}`)),
					ContentType: "application/json",
					Metadata:    map[string]string{"filename": "prices.json", "record-id": "id-1"},
				}).Return(storage.Object{Key: "archive/json/prices/id-1.json"}, nil)
				r.On("Delete", mock.Anything, "id-1").Return(nil)
			},
		},
		{
			name:    "failed archive keeps the record",
			archive: true,
			setupMocks: func(r *repoMocks.MockRecordRepository, s *storeMocks.MockStorage) {
				r.On("Query", mock.Anything, pricesQuery()).Return([]model.Record{pricesRecord()}, nil)
				s.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.Object{}, errBoom)
			},
			wantErr: ErrMediaStore,
		},
		{
			name: "delete failure",
			setupMocks: func(r *repoMocks.MockRecordRepository, s *storeMocks.MockStorage) {
				r.On("Query", mock.Anything, pricesQuery()).Return([]model.Record{pricesRecord()}, nil)
				r.On("Delete", mock.Anything, "id-1").Return(errBoom)
			},
			wantErr: datapost.ErrStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMocks.MockRecordRepository)
			store := new(storeMocks.MockStorage)
			tt.setupMocks(repo, store)
			svc := NewDataPostService(datapost.DefaultRegistry(), repo, store, Options{
				ArchiveOnDelete: tt.archive,
				Logger:          logging.New(io.Discard, nil),
			})

			err := svc.Delete(ctx, "prices.json")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			store.AssertExpectations(t)
		})
	}
}

func TestDataPostService_Export(t *testing.T) {
	ctx := context.Background()
	expiry := 15 * time.Minute
	key := "exports/json/id-1/prices.json"

	tests := []struct {
		name       string
		noStore    bool
		setupMocks func(*repoMocks.MockRecordRepository, *storeMocks.MockStorage)
		want       *ExportResult
		wantErr    error
	}{
		{
			name: "uploads and presigns",
			setupMocks: func(r *repoMocks.MockRecordRepository, s *storeMocks.MockStorage) {
				rec := pricesRecord()
				r.On("Query", mock.Anything, pricesQuery()).Return([]model.Record{rec}, nil)
				r.On("FindByID", mock.Anything, "id-1").Return(&rec, nil)
				s.On("Put", mock.Anything, key, rec.Content, mock.MatchedBy(func(o storage.PutOptions) bool {
					return o.ContentType == "application/json" && o.Size == int64(len(rec.Content))
				})).Return(storage.Object{Key: key}, nil)
				s.On("PresignGet", mock.Anything, key, expiry).Return("http://media.local/"+key, nil)
			},
			want: &ExportResult{Key: key, URL: "http://media.local/" + key, ExpiresIn: 900},
		},
		{
			name:       "no media store",
			noStore:    true,
			setupMocks: func(*repoMocks.MockRecordRepository, *storeMocks.MockStorage) {},
			wantErr:    ErrStorageDisabled,
		},
		{
			name: "missing file",
			setupMocks: func(r *repoMocks.MockRecordRepository, s *storeMocks.MockStorage) {
				r.On("Query", mock.Anything, pricesQuery()).Return([]model.Record{}, nil)
			},
			wantErr: datapost.ErrNotFound,
		},
		{
			name: "presign failure",
			setupMocks: func(r *repoMocks.MockRecordRepository, s *storeMocks.MockStorage) {
				rec := pricesRecord()
				r.On("Query", mock.Anything, pricesQuery()).Return([]model.Record{rec}, nil)
				r.On("FindByID", mock.Anything, "id-1").Return(&rec, nil)
				s.On("Put", mock.Anything, key, mock.Anything, mock.Anything).Return(storage.Object{Key: key}, nil)
				s.On("PresignGet", mock.Anything, key, expiry).Return("", errBoom)
			},
			wantErr: ErrMediaStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMocks.MockRecordRepository)
			store := new(storeMocks.MockStorage)
			tt.setupMocks(repo, store)

			var st storage.Storage = store
			if tt.noStore {
				st = nil
			}
			svc := NewDataPostService(datapost.DefaultRegistry(), repo, st, Options{Logger: logging.New(io.Discard, nil)})

			got, err := svc.Export(ctx, "prices.json", expiry)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			repo.AssertExpectations(t)
			store.AssertExpectations(t)
		})
	}
}
