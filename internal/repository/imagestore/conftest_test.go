package imagestore

import (
	"context"
	"testing"
	"time"
)

type mockStore struct {
	pushFn func(ctx context.Context, queue string, payload []byte) error
	popFn  func(ctx context.Context, queue string, timeout time.Duration) ([]byte, error)
	getFn  func(ctx context.Context, key string) ([]byte, error)
	setFn  func(ctx context.Context, key string, value []byte) error
}

func (m *mockStore) Push(ctx context.Context, queue string, payload []byte) error {
	if m.pushFn != nil {
		return m.pushFn(ctx, queue, payload)
	}
	return nil
}

func (m *mockStore) Pop(ctx context.Context, queue string, timeout time.Duration) ([]byte, error) {
	if m.popFn != nil {
		return m.popFn(ctx, queue, timeout)
	}
	return nil, nil
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}
