package hierarchy

import (
	"github.com/go-arbor/arbor/internal/app/menu/model"
)

// Forest is the assembled in-memory tree view plus its metadata.
type Forest struct {
	Roots      []*model.MenuNode
	TotalNodes int
	RootCount  int
	MaxDepth   int
}

// BuildForest links a flat, (level, sort_order, name)-ordered row stream into
// a forest in one linear pass over an id->node arena. No per-node queries, no
// recursion: a parent always precedes its children in the stream, so a single
// pass is enough.
//
// A node whose parent is missing from the stream (filtered out by status or
// visibility) is unreachable and dropped together with its subtree.
func BuildForest(nodes []*model.MenuNode) *Forest {
	f := &Forest{}
	arena := make(map[int64]*model.MenuNode, len(nodes))

	for _, n := range nodes {
		n.Children = nil
		if n.ParentID == nil {
			arena[n.ID] = n
			f.Roots = append(f.Roots, n)
			continue
		}
		parent, ok := arena[*n.ParentID]
		if !ok {
			// parent filtered out: the subtree is unreachable
			continue
		}
		parent.Children = append(parent.Children, n)
		arena[n.ID] = n
	}

	f.TotalNodes = len(arena)
	f.RootCount = len(f.Roots)
	for _, n := range arena {
		if depth := n.Level + 1; depth > f.MaxDepth {
			f.MaxDepth = depth
		}
	}
	return f
}

// PathOf returns the root..self chain for a node using the injected lookup,
// walking parent pointers. The walk is bounded by the depth limit.
func PathOf(node *model.MenuNode, lookup LookupFunc) []*model.MenuNode {
	path := []*model.MenuNode{node}
	current := node
	for hops := 0; current.ParentID != nil && hops <= model.MaxLevel; hops++ {
		parent := lookup(*current.ParentID)
		if parent == nil {
			break
		}
		path = append([]*model.MenuNode{parent}, path...)
		current = parent
	}
	return path
}
