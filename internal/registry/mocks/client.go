package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/regsweep/regsweep/internal/registry"
)

// MockClient is a mock implementation of registry.Client
type MockClient struct {
	mock.Mock
}

func (m *MockClient) ListImages(ctx context.Context, repository string) ([]string, error) {
	args := m.Called(ctx, repository)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockClient) ListTags(ctx context.Context, repository, image string) ([]registry.Tag, error) {
	args := m.Called(ctx, repository, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]registry.Tag), args.Error(1)
}

func (m *MockClient) DeleteTag(ctx context.Context, repository, image, tag string) error {
	args := m.Called(ctx, repository, image, tag)
	return args.Error(0)
}
