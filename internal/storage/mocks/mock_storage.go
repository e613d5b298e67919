package mocks

import (
	"context"
	"io"
	"time"

	"datapost/internal/storage"

	"github.com/stretchr/testify/mock"
)

// MockStorage drains uploads and records them with the body as a string, so
// expectations can match on content.
type MockStorage struct {
	mock.Mock
}

var _ storage.Storage = (*MockStorage)(nil)

func (m *MockStorage) Put(ctx context.Context, key string, r io.Reader, opt storage.PutOptions) (storage.Object, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return storage.Object{}, err
	}
	args := m.Called(ctx, key, string(body), opt)
	return args.Get(0).(storage.Object), args.Error(1)
}

func (m *MockStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}
