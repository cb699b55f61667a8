package hierarchy

import (
	"testing"

	"github.com/go-arbor/arbor/internal/app/menu/model"
	"gorm.io/gorm"
)

func ptr(v int64) *int64 { return &v }

func nodeAt(id int64, parentID *int64, level int, kind model.MenuKind) *model.MenuNode {
	return &model.MenuNode{
		ID:       id,
		ParentID: parentID,
		Level:    level,
		Kind:     kind,
		Status:   model.StatusActive,
	}
}

func lookupIn(nodes ...*model.MenuNode) LookupFunc {
	byID := make(map[int64]*model.MenuNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	return func(id int64) *model.MenuNode { return byID[id] }
}

func TestValidateCreateSlugCollision(t *testing.T) {
	parent := nodeAt(1, nil, 0, model.KindContainer)
	siblings := []*model.MenuNode{
		{ID: 2, ParentID: ptr(1), Slug: "x", Status: model.StatusActive},
	}
	req := &model.CreateMenuReq{ParentID: ptr(1), Slug: "x", Name: "X", Kind: model.KindPage}

	errs := ValidateCreate(req, parent, siblings)
	if !errs.HasCode(model.CodeSlugConflict) {
		t.Fatalf("expected slug conflict, got %v", errs)
	}
}

func TestValidateCreateSlugReusableAfterSoftDelete(t *testing.T) {
	parent := nodeAt(1, nil, 0, model.KindContainer)
	deleted := &model.MenuNode{ID: 2, ParentID: ptr(1), Slug: "x"}
	deleted.DeletedAt = gorm.DeletedAt{Valid: true}
	req := &model.CreateMenuReq{ParentID: ptr(1), Slug: "x", Name: "X", Kind: model.KindPage}

	if errs := ValidateCreate(req, parent, []*model.MenuNode{deleted}); len(errs) > 0 {
		t.Fatalf("soft-deleted sibling must not block slug reuse: %v", errs)
	}
}

func TestValidateCreateDepthBound(t *testing.T) {
	deepest := nodeAt(5, ptr(4), model.MaxLevel, model.KindContainer)
	req := &model.CreateMenuReq{ParentID: ptr(5), Slug: "f", Name: "F", Kind: model.KindPage}

	errs := ValidateCreate(req, deepest, nil)
	if !errs.HasCode(model.CodeDepthExceeded) {
		t.Fatalf("expected depth exceeded, got %v", errs)
	}
}

func TestValidateCreateLeafKindCannotHoldChildren(t *testing.T) {
	for _, kind := range []model.MenuKind{model.KindSeparator, model.KindExternal} {
		parent := nodeAt(1, nil, 0, kind)
		req := &model.CreateMenuReq{ParentID: ptr(1), Slug: "c", Name: "C", Kind: model.KindPage}

		errs := ValidateCreate(req, parent, nil)
		if !errs.HasCode(model.CodeChildrenNotAllowed) {
			t.Fatalf("kind %s: expected children_not_allowed, got %v", kind, errs)
		}
	}
}

func TestValidateCreateMissingParent(t *testing.T) {
	req := &model.CreateMenuReq{ParentID: ptr(99), Slug: "c", Name: "C", Kind: model.KindPage}
	errs := ValidateCreate(req, nil, nil)
	if !errs.HasCode(model.CodeParentNotFound) {
		t.Fatalf("expected parent_not_found, got %v", errs)
	}
}

func TestDetectsCycle(t *testing.T) {
	// reports(1) -> charts(2) -> weekly(3)
	reports := nodeAt(1, nil, 0, model.KindContainer)
	charts := nodeAt(2, ptr(1), 1, model.KindContainer)
	weekly := nodeAt(3, ptr(2), 2, model.KindContainer)
	lookup := lookupIn(reports, charts, weekly)

	if !DetectsCycle(1, weekly, lookup) {
		t.Fatal("moving the root under its grandchild must be a cycle")
	}
	if DetectsCycle(3, charts, lookup) {
		t.Fatal("moving a leaf under its current parent is not a cycle")
	}
	if DetectsCycle(3, reports, lookup) {
		t.Fatal("moving a leaf under the root is not a cycle")
	}
}

func TestValidateReparentSelfParent(t *testing.T) {
	n := nodeAt(7, nil, 0, model.KindContainer)
	errs := ValidateReparent(n, n, 0, lookupIn(n))
	if !errs.HasCode(model.CodeSelfParent) {
		t.Fatalf("expected self_parent, got %v", errs)
	}
}

func TestValidateReparentDepthCoversSubtree(t *testing.T) {
	// moving a node with height 2 under a level-2 parent lands its deepest
	// descendant on level 5
	parent := nodeAt(1, nil, 2, model.KindContainer)
	moved := nodeAt(2, nil, 0, model.KindContainer)

	errs := ValidateReparent(moved, parent, 2, lookupIn(parent, moved))
	if !errs.HasCode(model.CodeDepthExceeded) {
		t.Fatalf("expected depth exceeded, got %v", errs)
	}

	if errs := ValidateReparent(moved, parent, 1, lookupIn(parent, moved)); len(errs) > 0 {
		t.Fatalf("height 1 under level 2 fits the bound: %v", errs)
	}
}

func TestValidateDeleteGuard(t *testing.T) {
	node := nodeAt(1, nil, 0, model.KindContainer)
	active := nodeAt(2, ptr(1), 1, model.KindPage)
	inactive := nodeAt(3, ptr(1), 1, model.KindPage)
	inactive.Status = model.StatusInactive

	errs := ValidateDelete(node, []*model.MenuNode{active, inactive})
	if !errs.HasCode(model.CodeActiveChildren) {
		t.Fatalf("expected active_children, got %v", errs)
	}

	if errs := ValidateDelete(node, []*model.MenuNode{inactive}); len(errs) > 0 {
		t.Fatalf("inactive children must not block deletion: %v", errs)
	}
}

func TestValidateKindChange(t *testing.T) {
	node := nodeAt(1, nil, 0, model.KindSeparator)
	active := nodeAt(2, ptr(1), 1, model.KindPage)
	inactive := nodeAt(3, ptr(1), 1, model.KindPage)
	inactive.Status = model.StatusInactive

	errs := ValidateKindChange(node, []*model.MenuNode{active, inactive})
	if !errs.HasCode(model.CodeChildrenNotAllowed) {
		t.Fatalf("expected children_not_allowed, got %v", errs)
	}

	if errs := ValidateKindChange(node, []*model.MenuNode{inactive}); len(errs) > 0 {
		t.Fatalf("inactive children must not block the kind change: %v", errs)
	}

	container := nodeAt(1, nil, 0, model.KindContainer)
	if errs := ValidateKindChange(container, []*model.MenuNode{active}); len(errs) > 0 {
		t.Fatalf("children-holding kinds are never narrowed: %v", errs)
	}
}

func TestValidateReorder(t *testing.T) {
	siblings := []*model.MenuNode{
		nodeAt(1, nil, 0, model.KindPage),
		nodeAt(2, nil, 0, model.KindPage),
	}

	ok := []model.SortOrderItem{{ID: 1, SortOrder: 2}, {ID: 2, SortOrder: 1}}
	if errs := ValidateReorder(ok, siblings); len(errs) > 0 {
		t.Fatalf("valid reorder rejected: %v", errs)
	}

	dupOrder := []model.SortOrderItem{{ID: 1, SortOrder: 1}, {ID: 2, SortOrder: 1}}
	if errs := ValidateReorder(dupOrder, siblings); !errs.HasCode(model.CodeDuplicateSortOrder) {
		t.Fatalf("expected duplicate_sort_order, got %v", errs)
	}

	stranger := []model.SortOrderItem{{ID: 9, SortOrder: 1}}
	if errs := ValidateReorder(stranger, siblings); !errs.HasCode(model.CodeNotSibling) {
		t.Fatalf("expected not_sibling, got %v", errs)
	}

	dupID := []model.SortOrderItem{{ID: 1, SortOrder: 1}, {ID: 1, SortOrder: 2}}
	if errs := ValidateReorder(dupID, siblings); !errs.HasCode(model.CodeDuplicateID) {
		t.Fatalf("expected duplicate_id, got %v", errs)
	}
}

func TestSubtreeHeight(t *testing.T) {
	root := nodeAt(1, nil, 1, model.KindContainer)
	descendants := []*model.MenuNode{
		nodeAt(2, ptr(1), 2, model.KindPage),
		nodeAt(3, ptr(2), 3, model.KindPage),
	}
	if h := SubtreeHeight(root, descendants); h != 2 {
		t.Fatalf("expected height 2, got %d", h)
	}
	if h := SubtreeHeight(root, nil); h != 0 {
		t.Fatalf("leaf height must be 0, got %d", h)
	}
}
