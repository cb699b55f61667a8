package logic

import (
	"context"
	"time"

	"github.com/go-arbor/arbor/internal/app/menu/hierarchy"
	"github.com/go-arbor/arbor/internal/app/menu/model"
)

// GetTree serves the full-tree view through the cache. contextType narrows
// to tenant- or sub-tenant-scoped nodes; contextID only distinguishes cache
// entries.
func (ml *MenuLogic) GetTree(ctx context.Context, contextType, contextID string, includeInactive bool) (*model.TreeResult, error) {
	return ml.cache.Tree(ctx, contextType, contextID, includeInactive, func(c context.Context) (*model.TreeResult, error) {
		start := time.Now()
		rows, err := ml.store.ListTree(c, contextType, includeInactive)
		if err != nil {
			return nil, err
		}
		forest := hierarchy.BuildForest(rows)
		return &model.TreeResult{
			Roots:        forest.Roots,
			TotalNodes:   forest.TotalNodes,
			RootCount:    forest.RootCount,
			MaxDepth:     forest.MaxDepth,
			ApproxLoadMs: time.Since(start).Milliseconds(),
		}, nil
	})
}

// GetList serves the filtered, paginated list view through the cache.
func (ml *MenuLogic) GetList(ctx context.Context, filter model.ListFilter) (*model.ListResult, error) {
	return ml.cache.List(ctx, filter, func(c context.Context) (*model.ListResult, error) {
		items, total, err := ml.store.List(c, filter)
		if err != nil {
			return nil, err
		}
		return &model.ListResult{Items: items, Total: total}, nil
	})
}

// GetByID serves the single-item view through the cache. Returns (nil, nil)
// when the node does not exist.
func (ml *MenuLogic) GetByID(ctx context.Context, id int64) (*model.MenuNode, error) {
	return ml.cache.Item(ctx, id, func(c context.Context) (*model.MenuNode, error) {
		return ml.store.GetByID(c, id)
	})
}

// GetUserMenus serves the user-scoped accessible view: active, visible,
// navigation-worthy nodes, minus permission-bearing nodes the caller's
// permission set does not contain. The engine checks presence only, not
// ownership semantics.
func (ml *MenuLogic) GetUserMenus(ctx context.Context, userID string, permissions []string) ([]*model.MenuNode, error) {
	return ml.cache.UserView(ctx, userID, permissions, func(c context.Context) ([]*model.MenuNode, error) {
		rows, err := ml.store.ListAccessible(c)
		if err != nil {
			return nil, err
		}

		allowed := make(map[string]bool, len(permissions))
		for _, p := range permissions {
			allowed[p] = true
		}

		accessible := rows[:0]
		for _, n := range rows {
			if n.PermissionName != "" && !allowed[n.PermissionName] {
				continue
			}
			accessible = append(accessible, n)
		}

		return hierarchy.BuildForest(accessible).Roots, nil
	})
}

// Search serves the ranked free-text view through the cache.
func (ml *MenuLogic) Search(ctx context.Context, query, contextType string, limit int) (*model.SearchResult, error) {
	return ml.cache.Search(ctx, query, contextType, limit, func(c context.Context) (*model.SearchResult, error) {
		start := time.Now()
		candidates, err := ml.store.SearchCandidates(c, query)
		if err != nil {
			return nil, err
		}

		if contextType == "tenant" || contextType == "sub_tenant" {
			filtered := candidates[:0]
			for _, n := range candidates {
				if (contextType == "tenant" && n.TenantScoped) ||
					(contextType == "sub_tenant" && n.SubTenantScoped) {
					filtered = append(filtered, n)
				}
			}
			candidates = filtered
		}

		return &model.SearchResult{
			Hits:        hierarchy.Rank(candidates, query, limit),
			ExecutionMs: time.Since(start).Milliseconds(),
		}, nil
	})
}

// Statistics serves the aggregate-counts view through the cache.
func (ml *MenuLogic) Statistics(ctx context.Context) (*model.MenuStatistics, error) {
	return ml.cache.Stats(ctx, func(c context.Context) (*model.MenuStatistics, error) {
		rows, err := ml.store.ListAll(c)
		if err != nil {
			return nil, err
		}
		return hierarchy.Aggregate(rows), nil
	})
}

// GetPath serves the breadcrumb chain (root..self) through the cache.
// Returns (nil, nil) when the node does not exist.
func (ml *MenuLogic) GetPath(ctx context.Context, id int64) ([]*model.MenuNode, error) {
	return ml.cache.Path(ctx, id, func(c context.Context) ([]*model.MenuNode, error) {
		return ml.store.GetPath(c, id)
	})
}
