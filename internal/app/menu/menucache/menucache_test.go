package menucache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-arbor/arbor/internal/app/menu/model"
	"github.com/redis/go-redis/v9"
)

// mockCache is a map-backed ICache for exercising the coherence protocol
// without a redis server.
type mockCache struct {
	data map[string]string
	// when set, Get and Set fail with this error to simulate an unreachable
	// store
	failWith error

	gets, sets, dels int
	patternDels      []string
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]string)}
}

func (m *mockCache) Get(ctx context.Context, key string) *redis.StringCmd {
	m.gets++
	cmd := redis.NewStringCmd(ctx, "get", key)
	if m.failWith != nil {
		cmd.SetErr(m.failWith)
		return cmd
	}
	val, ok := m.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (m *mockCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.sets++
	cmd := redis.NewStatusCmd(ctx, "set", key)
	if m.failWith != nil {
		cmd.SetErr(m.failWith)
		return cmd
	}
	m.data[key] = value.(string)
	cmd.SetVal("OK")
	return cmd
}

func (m *mockCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.dels++
	cmd := redis.NewIntCmd(ctx, "del")
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func (m *mockCache) DelByPattern(ctx context.Context, pattern string) (int64, error) {
	m.patternDels = append(m.patternDels, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	var n int64
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func (m *mockCache) Ping(ctx context.Context) error { return m.failWith }

func (m *mockCache) Pipeline() redis.Pipeliner { return nil }

func (m *mockCache) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	return redis.NewBoolCmd(ctx, "expire", key)
}

func TestFetchMissThenHit(t *testing.T) {
	mock := newMockCache()
	mc := NewMenuCache(mock, TTLConf{})
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (*model.TreeResult, error) {
		loads++
		return &model.TreeResult{TotalNodes: 3, RootCount: 1}, nil
	}

	first, err := mc.Tree(ctx, "", "", false, loader)
	if err != nil {
		t.Fatal(err)
	}
	if first.TotalNodes != 3 || loads != 1 {
		t.Fatalf("miss must hit the loader once: loads=%d", loads)
	}

	second, err := mc.Tree(ctx, "", "", false, loader)
	if err != nil {
		t.Fatal(err)
	}
	if second.TotalNodes != 3 || loads != 1 {
		t.Fatalf("hit must not reload: loads=%d", loads)
	}
	if mock.sets != 1 {
		t.Fatalf("expected exactly one repopulation, got %d", mock.sets)
	}
}

func TestFetchDegradesOnCacheFailure(t *testing.T) {
	mock := newMockCache()
	mock.failWith = errors.New("connection refused")
	mc := NewMenuCache(mock, TTLConf{})

	loads := 0
	got, err := mc.Stats(context.Background(), func(context.Context) (*model.MenuStatistics, error) {
		loads++
		return &model.MenuStatistics{Total: 7}, nil
	})
	if err != nil {
		t.Fatalf("cache failure must not surface: %v", err)
	}
	if got.Total != 7 || loads != 1 {
		t.Fatalf("pass-through read broken: total=%d loads=%d", got.Total, loads)
	}
}

func TestFetchNilCacheIsPassThrough(t *testing.T) {
	mc := NewMenuCache(nil, TTLConf{})

	loads := 0
	for i := 0; i < 2; i++ {
		if _, err := mc.Item(context.Background(), 1, func(context.Context) (*model.MenuNode, error) {
			loads++
			return &model.MenuNode{ID: 1}, nil
		}); err != nil {
			t.Fatal(err)
		}
	}
	if loads != 2 {
		t.Fatalf("nil cache must always load: loads=%d", loads)
	}
}

func TestFetchLoaderErrorNotCached(t *testing.T) {
	mock := newMockCache()
	mc := NewMenuCache(mock, TTLConf{})

	boom := errors.New("db gone")
	_, err := mc.Item(context.Background(), 9, func(context.Context) (*model.MenuNode, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("loader error must surface, got %v", err)
	}
	if len(mock.data) != 0 {
		t.Fatal("a failed load must not be cached")
	}
}

func TestUserViewKeyIgnoresPermissionOrder(t *testing.T) {
	mock := newMockCache()
	mc := NewMenuCache(mock, TTLConf{})
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) ([]*model.MenuNode, error) {
		loads++
		return []*model.MenuNode{{ID: 1}}, nil
	}

	if _, err := mc.UserView(ctx, "u1", []string{"b", "a"}, loader); err != nil {
		t.Fatal(err)
	}
	if _, err := mc.UserView(ctx, "u1", []string{"a", "b"}, loader); err != nil {
		t.Fatal(err)
	}
	if loads != 1 {
		t.Fatalf("equal permission sets must share one entry: loads=%d", loads)
	}
}

func TestInvalidateAfterMutation(t *testing.T) {
	mock := newMockCache()
	mc := NewMenuCache(mock, TTLConf{})
	ctx := context.Background()

	// populate one entry per shape
	mock.data[itemKey(5)] = `{"id":5}`
	mock.data[buildKey(prefixTree, "t")] = "{}"
	mock.data[buildKey(prefixList, "n1", "z20")] = "{}"
	mock.data[buildKey(prefixUser, "u1", "p")] = "[]"
	mock.data[buildKey(prefixSearch, "q", "", "20")] = "{}"
	mock.data[buildKey(prefixStats)] = "{}"
	mock.data[buildKey(prefixPath, "5")] = "[]"

	mc.InvalidateAfterMutation(ctx, 5)

	if len(mock.data) != 0 {
		t.Fatalf("stale entries survived invalidation: %v", mock.data)
	}
	if len(mock.patternDels) != len(broadPrefixes) {
		t.Fatalf("expected %d pattern deletes, got %d", len(broadPrefixes), len(mock.patternDels))
	}
}

func TestInvalidateSparesOtherItems(t *testing.T) {
	mock := newMockCache()
	mc := NewMenuCache(mock, TTLConf{})

	mock.data[itemKey(5)] = `{"id":5}`
	mock.data[itemKey(6)] = `{"id":6}`

	mc.InvalidateAfterMutation(context.Background(), 5)

	if _, gone := mock.data[itemKey(5)]; gone {
		t.Fatal("mutated item key must be dropped")
	}
	if _, kept := mock.data[itemKey(6)]; !kept {
		t.Fatal("untouched item keys expire by TTL, not by invalidation")
	}
}

func TestTTLDefaults(t *testing.T) {
	ttl := (&TTLConf{List: 42 * time.Second}).withDefaults()
	if ttl.List != 42*time.Second {
		t.Fatal("explicit TTL overridden")
	}
	if ttl.Tree != 300*time.Second || ttl.Search != 120*time.Second || ttl.Stats != 3600*time.Second {
		t.Fatalf("defaults not applied: %+v", ttl)
	}
}
