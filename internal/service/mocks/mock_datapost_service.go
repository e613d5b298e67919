package mocks

import (
	"context"
	"time"

	"datapost/internal/datapost"
	"datapost/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDataPostService struct {
	mock.Mock
}

var _ service.DataPostService = (*MockDataPostService)(nil)

func (m *MockDataPostService) Exists(ctx context.Context, filename string) (bool, error) {
	args := m.Called(ctx, filename)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataPostService) Create(ctx context.Context, filename string) (datapost.Document, error) {
	args := m.Called(ctx, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(datapost.Document), args.Error(1)
}

func (m *MockDataPostService) Load(ctx context.Context, filename string) (datapost.Document, error) {
	args := m.Called(ctx, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(datapost.Document), args.Error(1)
}

func (m *MockDataPostService) Delete(ctx context.Context, filename string) error {
	args := m.Called(ctx, filename)
	return args.Error(0)
}

func (m *MockDataPostService) ReadFile(ctx context.Context, filename string) (string, error) {
	args := m.Called(ctx, filename)
	return args.String(0), args.Error(1)
}

func (m *MockDataPostService) WriteFile(ctx context.Context, filename, data string) error {
	args := m.Called(ctx, filename, data)
	return args.Error(0)
}

func (m *MockDataPostService) Export(ctx context.Context, filename string, expiry time.Duration) (*service.ExportResult, error) {
	args := m.Called(ctx, filename, expiry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}

func (m *MockDataPostService) Types() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockDataPostService) MediaType(filename string) string {
	args := m.Called(filename)
	return args.String(0)
}
