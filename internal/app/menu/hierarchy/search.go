package hierarchy

import (
	"sort"
	"strings"

	"github.com/go-arbor/arbor/internal/app/menu/model"
)

// Relevance tiers, highest first. The scale is ordinal: only the relative
// order matters.
const (
	scoreNameExact     = 100
	scoreNamePrefix    = 90
	scoreNameSubstring = 80
	scoreSlugExact     = 75
	scoreSlugSubstring = 70
	scoreDescription   = 60
	scoreKeyword       = 50
	scoreBreadcrumb    = 40
	scoreOther         = 10
)

// Score rates how well node matches query. Matching is case-insensitive
// substring matching; the returned value is the highest applicable tier, or
// 0 when nothing matches.
func Score(node *model.MenuNode, query string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	name := strings.ToLower(node.Name)
	slug := strings.ToLower(node.Slug)

	switch {
	case name == q:
		return scoreNameExact
	case strings.HasPrefix(name, q):
		return scoreNamePrefix
	case strings.Contains(name, q):
		return scoreNameSubstring
	case slug == q:
		return scoreSlugExact
	case strings.Contains(slug, q):
		return scoreSlugSubstring
	case strings.Contains(strings.ToLower(node.Description), q):
		return scoreDescription
	}

	for _, kw := range node.Keywords {
		if strings.Contains(strings.ToLower(kw), q) {
			return scoreKeyword
		}
	}
	if strings.Contains(strings.ToLower(node.Breadcrumb), q) {
		return scoreBreadcrumb
	}
	if strings.Contains(strings.ToLower(node.Target), q) ||
		strings.Contains(strings.ToLower(node.HelpText), q) {
		return scoreOther
	}
	return 0
}

// Rank scores every candidate, drops non-matches, sorts by score descending
// with ties broken by level then sort order, and truncates to limit
// (limit <= 0 means unbounded).
func Rank(candidates []*model.MenuNode, query string, limit int) []model.SearchHit {
	hits := make([]model.SearchHit, 0, len(candidates))
	for _, n := range candidates {
		if s := Score(n, query); s > 0 {
			hits = append(hits, model.SearchHit{Node: n, Score: s})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Node.Level != hits[j].Node.Level {
			return hits[i].Node.Level < hits[j].Node.Level
		}
		return hits[i].Node.SortOrder < hits[j].Node.SortOrder
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// Aggregate computes the statistics view from one scan of non-deleted rows.
func Aggregate(nodes []*model.MenuNode) *model.MenuStatistics {
	stats := &model.MenuStatistics{
		ByStatus: make(map[string]int),
		ByLevel:  make(map[int]int),
		ByKind:   make(map[string]int),
	}

	for _, n := range nodes {
		stats.Total++
		stats.ByStatus[string(n.Status)]++
		stats.ByLevel[n.Level]++
		stats.ByKind[string(n.Kind)]++
		if n.PermissionName != "" {
			stats.WithPermission++
		}
		if n.TenantScoped {
			stats.TenantScoped++
		}
		if n.SubTenantScoped {
			stats.SubTenantScoped++
		}
		if n.IsRoot() {
			stats.RootCount++
		}
		if depth := n.Level + 1; depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
	}

	roots := stats.RootCount
	if roots < 1 {
		roots = 1
	}
	stats.AvgChildrenPerNode = float64(stats.Total-stats.RootCount) / float64(roots)
	return stats
}
