// Package menucache is the coherence layer between the read views and the
// tree store. Each view shape is cached under its own prefix with its own
// TTL; mutations clear the affected item key plus every broad shape. The
// cache is strictly an optimization: any cache failure degrades to a
// pass-through read against the store.
package menucache

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arbor/arbor/internal/app/menu/model"
	"github.com/go-arbor/arbor/pkg/cache"
	"github.com/go-arbor/arbor/pkg/log"
)

// TTLConf carries the per-shape expirations. Zero fields fall back to the
// defaults.
type TTLConf struct {
	Tree   time.Duration
	List   time.Duration
	Item   time.Duration
	User   time.Duration
	Search time.Duration
	Stats  time.Duration
}

func (c *TTLConf) withDefaults() TTLConf {
	out := *c
	if out.Tree <= 0 {
		out.Tree = 300 * time.Second
	}
	if out.List <= 0 {
		out.List = 600 * time.Second
	}
	if out.Item <= 0 {
		out.Item = 1800 * time.Second
	}
	if out.User <= 0 {
		out.User = 300 * time.Second
	}
	if out.Search <= 0 {
		out.Search = 120 * time.Second
	}
	if out.Stats <= 0 {
		out.Stats = 3600 * time.Second
	}
	return out
}

// MenuCache fronts the tree store with the shared cache store.
type MenuCache struct {
	cache cache.ICache
	ttl   TTLConf
}

// NewMenuCache builds the coherence layer. A nil cache store is legal and
// turns every read into a pass-through.
func NewMenuCache(c cache.ICache, ttl TTLConf) *MenuCache {
	return &MenuCache{
		cache: c,
		ttl:   ttl.withDefaults(),
	}
}

// fetch is the shared cache-aside read: probe by key, fall back to loader,
// repopulate. Cache errors are logged and treated as misses so the store
// stays authoritative.
func fetch[T any](mc *MenuCache, ctx context.Context, shape, key string, ttl time.Duration, loader func(context.Context) (T, error)) (T, error) {
	var zero T

	if mc.cache != nil {
		data, err := mc.cache.Get(ctx, key).Result()
		switch {
		case err == nil && data != "":
			var result T
			if err := sonic.UnmarshalString(data, &result); err == nil {
				cacheOps.WithLabelValues(shape, "hit").Inc()
				return result, nil
			}
			log.Warnw("menu cache: failed to unmarshal cached data", "key", key, "error", err)
			cacheOps.WithLabelValues(shape, "error").Inc()
		case errors.Is(err, cache.ErrCacheMiss):
			cacheOps.WithLabelValues(shape, "miss").Inc()
		case err != nil:
			log.Warnw("menu cache: get failed, passing through", "key", key, "error", err)
			cacheOps.WithLabelValues(shape, "error").Inc()
		}
	}

	start := time.Now()
	result, err := loader(ctx)
	if err != nil {
		return zero, err
	}
	loaderSeconds.WithLabelValues(shape).Observe(time.Since(start).Seconds())

	if mc.cache != nil {
		if data, err := sonic.MarshalString(result); err == nil {
			if err := mc.cache.Set(ctx, key, data, ttl).Err(); err != nil {
				log.Warnw("menu cache: set failed", "key", key, "error", err)
			}
		} else {
			log.Warnw("menu cache: failed to marshal result", "key", key, "error", err)
		}
	}
	return result, nil
}

// Tree serves the full-tree view.
func (mc *MenuCache) Tree(ctx context.Context, contextType, contextID string, includeInactive bool, loader func(context.Context) (*model.TreeResult, error)) (*model.TreeResult, error) {
	key := buildKey(prefixTree, contextType, contextID, strconv.FormatBool(includeInactive))
	return fetch(mc, ctx, "tree", key, mc.ttl.Tree, loader)
}

// List serves the filtered, paginated list view.
func (mc *MenuCache) List(ctx context.Context, filter model.ListFilter, loader func(context.Context) (*model.ListResult, error)) (*model.ListResult, error) {
	key := buildKey(prefixList, listParams(filter)...)
	return fetch(mc, ctx, "list", key, mc.ttl.List, loader)
}

// Item serves the single-node view.
func (mc *MenuCache) Item(ctx context.Context, id int64, loader func(context.Context) (*model.MenuNode, error)) (*model.MenuNode, error) {
	key := itemKey(id)
	return fetch(mc, ctx, "item", key, mc.ttl.Item, loader)
}

// UserView serves the user-scoped accessible-menus view. The permission set
// is sorted before keying so equal sets share an entry.
func (mc *MenuCache) UserView(ctx context.Context, userID string, permissions []string, loader func(context.Context) ([]*model.MenuNode, error)) ([]*model.MenuNode, error) {
	perms := append([]string(nil), permissions...)
	sort.Strings(perms)
	key := buildKey(prefixUser, userID, strings.Join(perms, ","))
	return fetch(mc, ctx, "user", key, mc.ttl.User, loader)
}

// Search serves the free-text result view.
func (mc *MenuCache) Search(ctx context.Context, query, contextType string, limit int, loader func(context.Context) (*model.SearchResult, error)) (*model.SearchResult, error) {
	key := buildKey(prefixSearch, strings.ToLower(query), contextType, strconv.Itoa(limit))
	return fetch(mc, ctx, "search", key, mc.ttl.Search, loader)
}

// Stats serves the aggregate-counts view.
func (mc *MenuCache) Stats(ctx context.Context, loader func(context.Context) (*model.MenuStatistics, error)) (*model.MenuStatistics, error) {
	return fetch(mc, ctx, "stats", buildKey(prefixStats), mc.ttl.Stats, loader)
}

// Path serves the breadcrumb-chain view; it shares the tree TTL.
func (mc *MenuCache) Path(ctx context.Context, id int64, loader func(context.Context) ([]*model.MenuNode, error)) ([]*model.MenuNode, error) {
	key := buildKey(prefixPath, strconv.FormatInt(id, 10))
	return fetch(mc, ctx, "path", key, mc.ttl.Tree, loader)
}

// InvalidateAfterMutation runs the write-path protocol: drop the mutated
// node's item key, then clear every broad shape unconditionally. Errors are
// logged, never propagated; a failed delete only means a stale entry lives
// until its TTL.
func (mc *MenuCache) InvalidateAfterMutation(ctx context.Context, nodeIDs ...int64) {
	if mc.cache == nil {
		return
	}
	invalidations.Inc()

	for _, id := range nodeIDs {
		if id <= 0 {
			continue
		}
		if err := mc.cache.Del(ctx, itemKey(id)).Err(); err != nil {
			log.Warnw("menu cache: item invalidation failed", "id", id, "error", err)
		}
	}

	for _, prefix := range broadPrefixes {
		if _, err := mc.cache.DelByPattern(ctx, prefix+"*"); err != nil {
			log.Warnw("menu cache: broad invalidation failed", "prefix", prefix, "error", err)
		}
	}
}

// Healthy probes the cache store.
func (mc *MenuCache) Healthy(ctx context.Context) bool {
	if mc.cache == nil {
		return false
	}
	return mc.cache.Ping(ctx) == nil
}

func itemKey(id int64) string {
	return buildKey(prefixItem, strconv.FormatInt(id, 10))
}

func listParams(f model.ListFilter) []string {
	parts := make([]string, 0, 7)
	if f.ParentID != nil {
		parts = append(parts, "p"+strconv.FormatInt(*f.ParentID, 10))
	}
	if f.Status != nil {
		parts = append(parts, "s"+string(*f.Status))
	}
	if f.Kind != nil {
		parts = append(parts, "k"+string(*f.Kind))
	}
	if f.VisibleOnly {
		parts = append(parts, "v")
	}
	if f.TenantScoped != nil {
		parts = append(parts, "t"+strconv.FormatBool(*f.TenantScoped))
	}
	parts = append(parts,
		"n"+strconv.Itoa(f.PageNum),
		"z"+strconv.Itoa(f.PageSize),
	)
	return parts
}
