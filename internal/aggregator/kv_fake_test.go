package aggregator_test

import (
	"context"
	"sync"
	"time"

	agg "github.com/sqall01/alertR/internal/aggregator"
)

// fakeKVStore 内存 KV, 支持 TTL 和注入错误
type fakeKVStore struct {
	mu     sync.Mutex
	data   map[string]fakeKVItem
	getErr error
	gets   int
}

type fakeKVItem struct {
	value   []byte
	expires time.Time
}

var _ agg.KVStore = (*fakeKVStore)(nil)

func newFakeKVStore() *fakeKVStore {
	return &fakeKVStore{data: make(map[string]fakeKVItem)}
}

func (f *fakeKVStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++

	if f.getErr != nil {
		return nil, f.getErr
	}
	item, ok := f.data[key]
	if !ok || (!item.expires.IsZero() && time.Now().After(item.expires)) {
		delete(f.data, key)
		return nil, agg.ErrCacheMiss
	}
	return append([]byte(nil), item.value...), nil
}

func (f *fakeKVStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	item := fakeKVItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expires = time.Now().Add(ttl)
	}
	f.data[key] = item
	return nil
}
