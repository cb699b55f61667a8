package logic

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-arbor/arbor/internal/app/menu/menucache"
	"github.com/go-arbor/arbor/internal/app/menu/model"
	"github.com/go-arbor/arbor/pkg/datatype"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeStore is an in-memory Store honoring the same contract as the gorm
// implementation: level, sort order and the materialized path are derived at
// persist time.
type fakeStore struct {
	nodes  map[int64]*model.MenuNode
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{nodes: make(map[int64]*model.MenuNode), nextID: 1}
}

func (f *fakeStore) live(id int64) *model.MenuNode {
	n, ok := f.nodes[id]
	if !ok || n.IsDeleted() {
		return nil
	}
	return n
}

func (f *fakeStore) materialize(n *model.MenuNode) {
	if n.ParentID == nil {
		n.Level = 0
		n.Breadcrumb = n.Name
		n.AncestorIDs = datatype.Int64List{n.ID}
		return
	}
	parent := f.live(*n.ParentID)
	n.Level = parent.Level + 1
	n.Breadcrumb = parent.Breadcrumb + " > " + n.Name
	n.AncestorIDs = append(append(datatype.Int64List{}, parent.AncestorIDs...), n.ID)
}

func (f *fakeStore) Create(_ context.Context, node *model.MenuNode) error {
	node.ID = f.nextID
	f.nextID++

	maxOrder := 0
	for _, s := range f.nodes {
		if !s.IsDeleted() && sameParent(s.ParentID, node.ParentID) && s.SortOrder > maxOrder {
			maxOrder = s.SortOrder
		}
	}
	node.SortOrder = maxOrder + 1
	f.materialize(node)

	stored := *node
	f.nodes[node.ID] = &stored
	return nil
}

func (f *fakeStore) Update(_ context.Context, node *model.MenuNode, parentChanged bool) error {
	if f.live(node.ID) == nil {
		return gorm.ErrRecordNotFound
	}
	f.materialize(node)
	stored := *node
	f.nodes[node.ID] = &stored

	if parentChanged {
		// re-derive the subtree level by level, parents first
		var pending []*model.MenuNode
		for _, n := range f.nodes {
			if !n.IsDeleted() && n.ID != node.ID {
				pending = append(pending, n)
			}
		}
		sort.Slice(pending, func(i, j int) bool { return pending[i].Level < pending[j].Level })
		for _, n := range pending {
			if n.ParentID != nil && f.live(*n.ParentID) != nil {
				f.materialize(n)
			}
		}
	}
	return nil
}

func (f *fakeStore) SoftDelete(_ context.Context, id int64, deletedBy string) error {
	n := f.live(id)
	if n == nil {
		return gorm.ErrRecordNotFound
	}
	n.UpdatedBy = deletedBy
	n.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	return nil
}

func (f *fakeStore) ReorderSiblings(_ context.Context, parentID *int64, items []model.SortOrderItem) error {
	for _, it := range items {
		n := f.live(it.ID)
		if n == nil || !sameParent(n.ParentID, parentID) {
			return gorm.ErrRecordNotFound
		}
		n.SortOrder = it.SortOrder
	}
	return nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id int64, status model.MenuStatus, updatedBy string) error {
	n := f.live(id)
	if n == nil {
		return gorm.ErrRecordNotFound
	}
	n.Status = status
	n.UpdatedBy = updatedBy
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*model.MenuNode, error) {
	n := f.live(id)
	if n == nil {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (f *fakeStore) GetBySlug(_ context.Context, slug string, parentID *int64) (*model.MenuNode, error) {
	for _, n := range f.nodes {
		if !n.IsDeleted() && n.Slug == slug && sameParent(n.ParentID, parentID) {
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetChildren(_ context.Context, parentID *int64) ([]*model.MenuNode, error) {
	var out []*model.MenuNode
	for _, n := range f.nodes {
		if !n.IsDeleted() && n.ParentID != nil && parentID != nil && *n.ParentID == *parentID {
			cp := *n
			out = append(out, &cp)
		}
		if parentID == nil && !n.IsDeleted() && n.ParentID == nil {
			cp := *n
			out = append(out, &cp)
		}
	}
	sortStream(out)
	return out, nil
}

func (f *fakeStore) GetDescendants(_ context.Context, id int64) ([]*model.MenuNode, error) {
	var out []*model.MenuNode
	for _, n := range f.nodes {
		if n.IsDeleted() || n.ID == id {
			continue
		}
		for _, a := range n.AncestorIDs {
			if a == id {
				cp := *n
				out = append(out, &cp)
				break
			}
		}
	}
	sortStream(out)
	return out, nil
}

func (f *fakeStore) GetPath(_ context.Context, id int64) ([]*model.MenuNode, error) {
	n := f.live(id)
	if n == nil {
		return nil, nil
	}
	out := make([]*model.MenuNode, 0, len(n.AncestorIDs))
	for _, a := range n.AncestorIDs {
		if anc := f.live(a); anc != nil {
			cp := *anc
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) ListTree(_ context.Context, contextType string, includeInactive bool) ([]*model.MenuNode, error) {
	var out []*model.MenuNode
	for _, n := range f.nodes {
		if n.IsDeleted() || !n.IsVisible {
			continue
		}
		if !includeInactive && n.Status != model.StatusActive {
			continue
		}
		if contextType == "tenant" && !n.TenantScoped {
			continue
		}
		if contextType == "sub_tenant" && !n.SubTenantScoped {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sortStream(out)
	return out, nil
}

func (f *fakeStore) List(_ context.Context, filter model.ListFilter) ([]*model.MenuNode, int64, error) {
	var out []*model.MenuNode
	for _, n := range f.nodes {
		if n.IsDeleted() {
			continue
		}
		if filter.Status != nil && n.Status != *filter.Status {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sortStream(out)
	return out, int64(len(out)), nil
}

func (f *fakeStore) ListAccessible(_ context.Context) ([]*model.MenuNode, error) {
	var out []*model.MenuNode
	for _, n := range f.nodes {
		if !n.IsDeleted() && n.IsVisible && n.VisibleInNav && n.Status == model.StatusActive {
			cp := *n
			out = append(out, &cp)
		}
	}
	sortStream(out)
	return out, nil
}

func (f *fakeStore) SearchCandidates(_ context.Context, query string) ([]*model.MenuNode, error) {
	q := strings.ToLower(query)
	var out []*model.MenuNode
	for _, n := range f.nodes {
		if n.IsDeleted() {
			continue
		}
		if strings.Contains(strings.ToLower(n.Name), q) ||
			strings.Contains(strings.ToLower(n.Slug), q) ||
			strings.Contains(strings.ToLower(n.Description), q) ||
			strings.Contains(strings.ToLower(n.Breadcrumb), q) {
			cp := *n
			out = append(out, &cp)
		}
	}
	sortStream(out)
	return out, nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]*model.MenuNode, error) {
	var out []*model.MenuNode
	for _, n := range f.nodes {
		if !n.IsDeleted() {
			cp := *n
			out = append(out, &cp)
		}
	}
	sortStream(out)
	return out, nil
}

func sortStream(nodes []*model.MenuNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Level != nodes[j].Level {
			return nodes[i].Level < nodes[j].Level
		}
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].Name < nodes[j].Name
	})
}

// memCache is a map-backed redis stand-in for exercising the invalidation
// protocol end to end.
type memCache struct {
	data map[string]string
}

func newMemCache() *memCache { return &memCache{data: make(map[string]string)} }

func (m *memCache) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	if val, ok := m.data[key]; ok {
		cmd.SetVal(val)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (m *memCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = value.(string)
	cmd := redis.NewStatusCmd(ctx, "set", key)
	cmd.SetVal("OK")
	return cmd
}

func (m *memCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(m.data, k)
	}
	return redis.NewIntCmd(ctx, "del")
}

func (m *memCache) DelByPattern(ctx context.Context, pattern string) (int64, error) {
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

func (m *memCache) Ping(ctx context.Context) error { return nil }

func (m *memCache) Pipeline() redis.Pipeliner { return nil }

func (m *memCache) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	return redis.NewBoolCmd(ctx, "expire", key)
}

func newTestLogic() (*MenuLogic, *fakeStore, *memCache) {
	store := newFakeStore()
	mem := newMemCache()
	return NewMenuLogic(store, menucache.NewMenuCache(mem, menucache.TTLConf{})), store, mem
}

func mustCreate(t *testing.T, ml *MenuLogic, req *model.CreateMenuReq) *model.MenuNode {
	t.Helper()
	node, err := ml.CreateMenu(context.Background(), req, "tester")
	require.NoError(t, err)
	require.NotNil(t, node)
	return node
}

func createReq(parentID *int64, slug, name string, kind model.MenuKind) *model.CreateMenuReq {
	return &model.CreateMenuReq{ParentID: parentID, Slug: slug, Name: name, Kind: kind}
}

func TestCreateMaterializesPath(t *testing.T) {
	ml, _, _ := newTestLogic()

	reports := mustCreate(t, ml, createReq(nil, "reports", "Reports", model.KindContainer))
	assert.Equal(t, 0, reports.Level)
	assert.Equal(t, "Reports", reports.Breadcrumb)
	assert.Equal(t, datatype.Int64List{reports.ID}, reports.AncestorIDs)
	assert.Equal(t, 1, reports.SortOrder)

	charts := mustCreate(t, ml, createReq(&reports.ID, "charts", "Charts", model.KindPage))
	assert.Equal(t, 1, charts.Level)
	assert.Equal(t, "Reports > Charts", charts.Breadcrumb)
	assert.Equal(t, datatype.Int64List{reports.ID, charts.ID}, charts.AncestorIDs)
}

func TestCreateAssignsSiblingSortOrder(t *testing.T) {
	ml, _, _ := newTestLogic()

	root := mustCreate(t, ml, createReq(nil, "root", "Root", model.KindContainer))
	a := mustCreate(t, ml, createReq(&root.ID, "a", "A", model.KindPage))
	b := mustCreate(t, ml, createReq(&root.ID, "b", "B", model.KindPage))
	assert.Equal(t, 1, a.SortOrder)
	assert.Equal(t, 2, b.SortOrder)
}

func TestCreateRejectsSiblingSlugCollision(t *testing.T) {
	ml, _, _ := newTestLogic()

	root := mustCreate(t, ml, createReq(nil, "root", "Root", model.KindContainer))
	mustCreate(t, ml, createReq(&root.ID, "dup", "First", model.KindPage))

	_, err := ml.CreateMenu(context.Background(), createReq(&root.ID, "dup", "Second", model.KindPage), "tester")
	require.Error(t, err)
	errs, ok := model.AsValidationErrors(err)
	require.True(t, ok)
	assert.True(t, errs.HasCode(model.CodeSlugConflict))
}

// collidingStore simulates the store losing a slug race after the
// out-of-transaction validation already passed.
type collidingStore struct {
	*fakeStore
	createErr error
}

func (s *collidingStore) Create(ctx context.Context, node *model.MenuNode) error {
	return s.createErr
}

func TestCreateSurfacesStoreSlugConflict(t *testing.T) {
	for _, storeErr := range []error{
		gorm.ErrDuplicatedKey,
		model.ValidationErrors{{Code: model.CodeSlugConflict, Field: "slug", Message: "slug \"dup\" already exists under the same parent"}},
	} {
		store := &collidingStore{fakeStore: newFakeStore(), createErr: storeErr}
		ml := NewMenuLogic(store, menucache.NewMenuCache(newMemCache(), menucache.TTLConf{}))

		_, err := ml.CreateMenu(context.Background(), createReq(nil, "dup", "Dup", model.KindPage), "tester")
		require.Error(t, err)
		errs, ok := model.AsValidationErrors(err)
		require.True(t, ok)
		assert.True(t, errs.HasCode(model.CodeSlugConflict))
	}
}

func TestCreateRejectsSixthLevel(t *testing.T) {
	ml, _, _ := newTestLogic()

	parent := mustCreate(t, ml, createReq(nil, "l0", "A", model.KindContainer))
	for i := 1; i <= model.MaxLevel; i++ {
		parent = mustCreate(t, ml, createReq(&parent.ID, "l"+string(rune('0'+i)), "N", model.KindContainer))
	}
	require.Equal(t, model.MaxLevel, parent.Level)

	_, err := ml.CreateMenu(context.Background(), createReq(&parent.ID, "l5", "F", model.KindPage), "tester")
	require.Error(t, err)
	errs, ok := model.AsValidationErrors(err)
	require.True(t, ok)
	assert.True(t, errs.HasCode(model.CodeDepthExceeded))
}

func TestUpdateRejectsReparentCycle(t *testing.T) {
	ml, _, _ := newTestLogic()

	a := mustCreate(t, ml, createReq(nil, "a", "A", model.KindContainer))
	b := mustCreate(t, ml, createReq(&a.ID, "b", "B", model.KindContainer))
	c := mustCreate(t, ml, createReq(&b.ID, "c", "C", model.KindContainer))

	_, err := ml.UpdateMenu(context.Background(), a.ID, &model.UpdateMenuReq{ParentID: &c.ID}, "tester")
	require.Error(t, err)
	errs, ok := model.AsValidationErrors(err)
	require.True(t, ok)
	assert.True(t, errs.HasCode(model.CodeCycleDetected))
}

func TestUpdateReparentRecomputesSubtreePaths(t *testing.T) {
	ml, store, _ := newTestLogic()

	a := mustCreate(t, ml, createReq(nil, "a", "A", model.KindContainer))
	b := mustCreate(t, ml, createReq(nil, "b", "B", model.KindContainer))
	c := mustCreate(t, ml, createReq(&a.ID, "c", "C", model.KindContainer))
	d := mustCreate(t, ml, createReq(&c.ID, "d", "D", model.KindPage))

	moved, err := ml.UpdateMenu(context.Background(), c.ID, &model.UpdateMenuReq{ParentID: &b.ID}, "tester")
	require.NoError(t, err)
	require.NotNil(t, moved)
	assert.Equal(t, "B > C", moved.Breadcrumb)
	assert.Equal(t, 1, moved.Level)

	leaf, err := store.GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, "B > C > D", leaf.Breadcrumb)
	assert.Equal(t, 2, leaf.Level)
	assert.Equal(t, datatype.Int64List{b.ID, c.ID, d.ID}, leaf.AncestorIDs)
}

func TestUpdateReparentToRoot(t *testing.T) {
	ml, _, _ := newTestLogic()

	a := mustCreate(t, ml, createReq(nil, "a", "A", model.KindContainer))
	b := mustCreate(t, ml, createReq(&a.ID, "b", "B", model.KindPage))

	var toRoot int64 // parentId 0 moves to the root level
	moved, err := ml.UpdateMenu(context.Background(), b.ID, &model.UpdateMenuReq{ParentID: &toRoot}, "tester")
	require.NoError(t, err)
	require.NotNil(t, moved)
	assert.Nil(t, moved.ParentID)
	assert.Equal(t, 0, moved.Level)
	assert.Equal(t, "B", moved.Breadcrumb)
}

func TestUpdateRejectsKindChangeWithActiveChildren(t *testing.T) {
	ml, store, _ := newTestLogic()
	ctx := context.Background()

	parent := mustCreate(t, ml, createReq(nil, "p", "P", model.KindContainer))
	child := mustCreate(t, ml, createReq(&parent.ID, "c", "C", model.KindPage))

	sep := model.KindSeparator
	_, err := ml.UpdateMenu(ctx, parent.ID, &model.UpdateMenuReq{Kind: &sep}, "tester")
	require.Error(t, err)
	errs, ok := model.AsValidationErrors(err)
	require.True(t, ok)
	assert.True(t, errs.HasCode(model.CodeChildrenNotAllowed))

	kept, err := store.GetByID(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, model.KindContainer, kept.Kind)

	// once the child is inactive the same change goes through
	_, err = ml.BulkUpdateStatus(ctx, &model.BulkStatusReq{
		IDs: []int64{child.ID}, Status: model.StatusInactive,
	}, "tester")
	require.NoError(t, err)

	updated, err := ml.UpdateMenu(ctx, parent.ID, &model.UpdateMenuReq{Kind: &sep}, "tester")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.KindSeparator, updated.Kind)
}

func TestUpdateMissingNodeIsNotFound(t *testing.T) {
	ml, _, _ := newTestLogic()

	name := "Renamed"
	node, err := ml.UpdateMenu(context.Background(), 999, &model.UpdateMenuReq{Name: &name}, "tester")
	require.NoError(t, err)
	assert.Nil(t, node)
}

func TestDeleteGuardedByActiveChildren(t *testing.T) {
	ml, _, _ := newTestLogic()
	ctx := context.Background()

	parent := mustCreate(t, ml, createReq(nil, "p", "P", model.KindContainer))
	child := mustCreate(t, ml, createReq(&parent.ID, "c", "C", model.KindPage))

	_, err := ml.DeleteMenu(ctx, parent.ID, "tester")
	require.Error(t, err)
	errs, ok := model.AsValidationErrors(err)
	require.True(t, ok)
	assert.True(t, errs.HasCode(model.CodeActiveChildren))

	// deleting bottom-up succeeds
	ok2, err := ml.DeleteMenu(ctx, child.ID, "tester")
	require.NoError(t, err)
	assert.True(t, ok2)

	ok2, err = ml.DeleteMenu(ctx, parent.ID, "tester")
	require.NoError(t, err)
	assert.True(t, ok2)
}

func TestDeleteMissingNode(t *testing.T) {
	ml, _, _ := newTestLogic()
	ok, err := ml.DeleteMenu(context.Background(), 404, "tester")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNoStaleTreeAfterDelete(t *testing.T) {
	ml, _, mem := newTestLogic()
	ctx := context.Background()

	root := mustCreate(t, ml, createReq(nil, "root", "Root", model.KindContainer))
	leaf := mustCreate(t, ml, createReq(&root.ID, "leaf", "Leaf", model.KindPage))

	first, err := ml.GetTree(ctx, "", "", false)
	require.NoError(t, err)
	require.Equal(t, 2, first.TotalNodes)
	require.NotEmpty(t, mem.data, "tree view should be cached now")

	ok, err := ml.DeleteMenu(ctx, leaf.ID, "tester")
	require.NoError(t, err)
	require.True(t, ok)

	second, err := ml.GetTree(ctx, "", "", false)
	require.NoError(t, err)
	assert.Equal(t, 1, second.TotalNodes, "deleted node served from a stale cache entry")
}

func TestReorderIsIdempotent(t *testing.T) {
	ml, store, _ := newTestLogic()
	ctx := context.Background()

	root := mustCreate(t, ml, createReq(nil, "root", "Root", model.KindContainer))
	a := mustCreate(t, ml, createReq(&root.ID, "a", "A", model.KindPage))
	b := mustCreate(t, ml, createReq(&root.ID, "b", "B", model.KindPage))

	req := &model.ReorderReq{
		ParentID: &root.ID,
		Items: []model.SortOrderItem{
			{ID: a.ID, SortOrder: 2},
			{ID: b.ID, SortOrder: 1},
		},
	}
	require.NoError(t, ml.Reorder(ctx, req, "tester"))
	require.NoError(t, ml.Reorder(ctx, req, "tester"), "same ordering twice must succeed")

	got, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.SortOrder)
}

func TestReorderRejectsForeignNode(t *testing.T) {
	ml, _, _ := newTestLogic()

	root := mustCreate(t, ml, createReq(nil, "root", "Root", model.KindContainer))
	other := mustCreate(t, ml, createReq(nil, "other", "Other", model.KindContainer))
	a := mustCreate(t, ml, createReq(&root.ID, "a", "A", model.KindPage))

	err := ml.Reorder(context.Background(), &model.ReorderReq{
		ParentID: &root.ID,
		Items: []model.SortOrderItem{
			{ID: a.ID, SortOrder: 1},
			{ID: other.ID, SortOrder: 2},
		},
	}, "tester")
	require.Error(t, err)
	errs, ok := model.AsValidationErrors(err)
	require.True(t, ok)
	assert.True(t, errs.HasCode(model.CodeNotSibling))
}

func TestBulkUpdateStatusPerItemOutcome(t *testing.T) {
	ml, _, _ := newTestLogic()

	a := mustCreate(t, ml, createReq(nil, "a", "A", model.KindPage))
	b := mustCreate(t, ml, createReq(nil, "b", "B", model.KindPage))

	res, err := ml.BulkUpdateStatus(context.Background(), &model.BulkStatusReq{
		IDs:    []int64{a.ID, 999, b.ID},
		Status: model.StatusInactive,
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Success)
	require.Len(t, res.Items, 3)
	assert.True(t, res.Items[0].OK)
	assert.False(t, res.Items[1].OK)
	assert.Equal(t, "not found", res.Items[1].Error)
	assert.True(t, res.Items[2].OK)
}

func TestBulkUpdateStatusRejectsUnknownStatus(t *testing.T) {
	ml, _, _ := newTestLogic()
	_, err := ml.BulkUpdateStatus(context.Background(), &model.BulkStatusReq{
		IDs: []int64{1}, Status: "archived",
	}, "tester")
	require.Error(t, err)
	errs, ok := model.AsValidationErrors(err)
	require.True(t, ok)
	assert.True(t, errs.HasCode(model.CodeInvalidStatus))
}

func TestGetUserMenusFiltersByPermission(t *testing.T) {
	ml, _, _ := newTestLogic()
	ctx := context.Background()

	open := mustCreate(t, ml, createReq(nil, "open", "Open", model.KindContainer))
	gatedReq := createReq(nil, "gated", "Gated", model.KindPage)
	gatedReq.PermissionName = "menu.admin"
	mustCreate(t, ml, gatedReq)

	roots, err := ml.GetUserMenus(ctx, "u1", nil)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, open.ID, roots[0].ID)

	roots, err = ml.GetUserMenus(ctx, "u2", []string{"menu.admin"})
	require.NoError(t, err)
	assert.Len(t, roots, 2)
}

func TestSearchRanksAndScopes(t *testing.T) {
	ml, _, _ := newTestLogic()
	ctx := context.Background()

	exactReq := createReq(nil, "reports", "Reports", model.KindContainer)
	exactReq.TenantScoped = true
	exact := mustCreate(t, ml, exactReq)
	sub := mustCreate(t, ml, createReq(nil, "all-reports", "All Reports", model.KindPage))

	res, err := ml.Search(ctx, "reports", "", 10)
	require.NoError(t, err)
	require.Len(t, res.Hits, 2)
	assert.Equal(t, exact.ID, res.Hits[0].Node.ID)
	assert.Equal(t, sub.ID, res.Hits[1].Node.ID)
	assert.Greater(t, res.Hits[0].Score, res.Hits[1].Score)

	scoped, err := ml.Search(ctx, "reports", "tenant", 10)
	require.NoError(t, err)
	require.Len(t, scoped.Hits, 1)
	assert.Equal(t, exact.ID, scoped.Hits[0].Node.ID)
}

func TestGetPath(t *testing.T) {
	ml, _, _ := newTestLogic()
	ctx := context.Background()

	a := mustCreate(t, ml, createReq(nil, "a", "A", model.KindContainer))
	b := mustCreate(t, ml, createReq(&a.ID, "b", "B", model.KindContainer))
	c := mustCreate(t, ml, createReq(&b.ID, "c", "C", model.KindPage))

	path, err := ml.GetPath(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, []int64{path[0].ID, path[1].ID, path[2].ID})
}

func TestStatistics(t *testing.T) {
	ml, _, _ := newTestLogic()

	root := mustCreate(t, ml, createReq(nil, "root", "Root", model.KindContainer))
	mustCreate(t, ml, createReq(&root.ID, "a", "A", model.KindPage))

	stats, err := ml.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.RootCount)
	assert.Equal(t, 2, stats.MaxDepth)
}
