package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	args := m.Called(ctx, jti, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, jti, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
