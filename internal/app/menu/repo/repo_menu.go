package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arbor/arbor/internal/app/menu/hierarchy"
	"github.com/go-arbor/arbor/internal/app/menu/model"
	"github.com/go-arbor/arbor/pkg/ctx"
	"github.com/go-arbor/arbor/pkg/datatype"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const breadcrumbSep = " > "

// searchCandidateCap bounds how many rows one free-text query may pull into
// memory for scoring.
const searchCandidateCap = 500

// Store is the seam the orchestrators depend on; MenuRepo is the gorm
// implementation, tests substitute an in-memory fake.
type Store interface {
	Create(ctx context.Context, node *model.MenuNode) error
	Update(ctx context.Context, node *model.MenuNode, parentChanged bool) error
	SoftDelete(ctx context.Context, id int64, deletedBy string) error
	ReorderSiblings(ctx context.Context, parentID *int64, items []model.SortOrderItem) error
	UpdateStatus(ctx context.Context, id int64, status model.MenuStatus, updatedBy string) error

	GetByID(ctx context.Context, id int64) (*model.MenuNode, error)
	GetBySlug(ctx context.Context, slug string, parentID *int64) (*model.MenuNode, error)
	GetChildren(ctx context.Context, parentID *int64) ([]*model.MenuNode, error)
	GetDescendants(ctx context.Context, id int64) ([]*model.MenuNode, error)
	GetPath(ctx context.Context, id int64) ([]*model.MenuNode, error)

	ListTree(ctx context.Context, contextType string, includeInactive bool) ([]*model.MenuNode, error)
	List(ctx context.Context, filter model.ListFilter) ([]*model.MenuNode, int64, error)
	ListAccessible(ctx context.Context) ([]*model.MenuNode, error)
	SearchCandidates(ctx context.Context, query string) ([]*model.MenuNode, error)
	ListAll(ctx context.Context) ([]*model.MenuNode, error)
}

// MenuRepo is the transactional tree store over the menu_node table.
type MenuRepo struct {
	Ctx       *ctx.Context
	MenuModel model.MenuNode
}

func NewMenuRepo(c *ctx.Context) *MenuRepo {
	return &MenuRepo{
		Ctx:       c,
		MenuModel: model.MenuNode{},
	}
}

func (mr *MenuRepo) db(c context.Context) *gorm.DB {
	return mr.Ctx.GetDB().WithContext(c)
}

// scopeParent filters rows to the children of parentID (nil means roots).
func scopeParent(tx *gorm.DB, parentID *int64) *gorm.DB {
	if parentID == nil {
		return tx.Where("parent_id IS NULL")
	}
	return tx.Where("parent_id = ?", *parentID)
}

// checkSiblingSlug re-checks slug uniqueness inside the transaction with a
// locking read. MySQL exempts rows with a NULL unique-index column, so the
// composite index on (parent_id, slug, deleted_at) never fires for live
// rows; the gap lock taken here is what keeps a racing insert of the same
// sibling slug from committing unseen.
func checkSiblingSlug(tx *gorm.DB, parentID *int64, slug string, selfID int64) error {
	var dup int64
	q := scopeParent(tx.Model(&model.MenuNode{}), parentID).
		Where("slug = ?", slug)
	if selfID > 0 {
		q = q.Where("id <> ?", selfID)
	}
	if err := q.Clauses(clause.Locking{Strength: "UPDATE"}).Count(&dup).Error; err != nil {
		return fmt.Errorf("check sibling slug: %w", err)
	}
	if dup > 0 {
		return model.ValidationErrors{hierarchy.SlugConflictError(slug)}
	}
	return nil
}

// Create inserts a node inside one transaction: level derived from the
// locked parent, slug uniqueness re-checked under the lock,
// sort_order = max(siblings)+1, breadcrumb and ancestor path materialized
// after the id is assigned.
func (mr *MenuRepo) Create(c context.Context, node *model.MenuNode) error {
	return mr.db(c).Transaction(func(tx *gorm.DB) error {
		var parent *model.MenuNode
		if node.ParentID != nil {
			parent = &model.MenuNode{}
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(parent, *node.ParentID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ValidationErrors{{
					Code: model.CodeParentNotFound, Field: "parentId",
					Message: fmt.Sprintf("parent %d does not exist", *node.ParentID),
					NodeID:  *node.ParentID,
				}}
			}
			if err != nil {
				return fmt.Errorf("load parent: %w", err)
			}
			node.Level = parent.Level + 1
		} else {
			node.Level = 0
		}

		if err := checkSiblingSlug(tx, node.ParentID, node.Slug, 0); err != nil {
			return err
		}

		var maxOrder int
		row := scopeParent(tx.Model(&model.MenuNode{}), node.ParentID).
			Select("COALESCE(MAX(sort_order), 0)")
		if err := row.Scan(&maxOrder).Error; err != nil {
			return fmt.Errorf("next sort order: %w", err)
		}
		node.SortOrder = maxOrder + 1

		if err := tx.Create(node).Error; err != nil {
			return err
		}

		if parent != nil {
			node.Breadcrumb = parent.Breadcrumb + breadcrumbSep + node.Name
			node.AncestorIDs = append(append(datatype.Int64List{}, parent.AncestorIDs...), node.ID)
		} else {
			node.Breadcrumb = node.Name
			node.AncestorIDs = datatype.Int64List{node.ID}
		}
		return tx.Model(node).Updates(map[string]interface{}{
			"breadcrumb":   node.Breadcrumb,
			"ancestor_ids": node.AncestorIDs,
		}).Error
	})
}

// Update saves a node inside one transaction. When the parent changed the
// cycle check is re-run against row-locked ancestors (the pre-commit
// validation may have raced a concurrent reparent), the level and
// materialized path are recomputed, and the whole subtree's paths are
// recomputed eagerly.
func (mr *MenuRepo) Update(c context.Context, node *model.MenuNode, parentChanged bool) error {
	return mr.db(c).Transaction(func(tx *gorm.DB) error {
		current := &model.MenuNode{}
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(current, node.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gorm.ErrRecordNotFound
		}
		if err != nil {
			return fmt.Errorf("lock node: %w", err)
		}

		var parent *model.MenuNode
		if node.ParentID != nil {
			parent = &model.MenuNode{}
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(parent, *node.ParentID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ValidationErrors{{
					Code: model.CodeParentNotFound, Field: "parentId",
					Message: fmt.Sprintf("parent %d does not exist", *node.ParentID),
					NodeID:  *node.ParentID,
				}}
			}
			if err != nil {
				return fmt.Errorf("load parent: %w", err)
			}
		}

		if parentChanged {
			lookup := func(id int64) *model.MenuNode {
				anc := &model.MenuNode{}
				if err := tx.First(anc, id).Error; err != nil {
					return nil
				}
				return anc
			}
			if parent != nil && hierarchy.DetectsCycle(node.ID, parent, lookup) {
				return model.ValidationErrors{{
					Code: model.CodeCycleDetected, Field: "parentId",
					Message: fmt.Sprintf("moving node %d under %d would create a cycle", node.ID, *node.ParentID),
					NodeID:  node.ID,
				}}
			}
			if parent != nil {
				node.Level = parent.Level + 1
			} else {
				node.Level = 0
			}
		} else {
			node.Level = current.Level
		}

		if err := checkSiblingSlug(tx, node.ParentID, node.Slug, node.ID); err != nil {
			return err
		}

		if parent != nil {
			node.Breadcrumb = parent.Breadcrumb + breadcrumbSep + node.Name
			node.AncestorIDs = append(append(datatype.Int64List{}, parent.AncestorIDs...), node.ID)
		} else {
			node.Breadcrumb = node.Name
			node.AncestorIDs = datatype.Int64List{node.ID}
		}

		if err := tx.Model(&model.MenuNode{}).Where("id = ?", node.ID).
			Select("*").Omit("id", "created_at", "created_by", "deleted_at").
			Updates(node).Error; err != nil {
			return err
		}

		return mr.recomputeSubtreePaths(tx, node)
	})
}

// recomputeSubtreePaths rewrites level, breadcrumb and ancestor path of every
// descendant of root, walking level by level so a parent is always fresh
// before its children. Bounded by the depth limit.
func (mr *MenuRepo) recomputeSubtreePaths(tx *gorm.DB, root *model.MenuNode) error {
	fresh := map[int64]*model.MenuNode{root.ID: root}
	frontier := []int64{root.ID}

	for hops := 0; hops <= model.MaxLevel && len(frontier) > 0; hops++ {
		var children []*model.MenuNode
		if err := tx.Where("parent_id IN ?", frontier).Find(&children).Error; err != nil {
			return fmt.Errorf("load descendants: %w", err)
		}

		frontier = frontier[:0]
		for _, child := range children {
			parent := fresh[*child.ParentID]
			child.Level = parent.Level + 1
			child.Breadcrumb = parent.Breadcrumb + breadcrumbSep + child.Name
			child.AncestorIDs = append(append(datatype.Int64List{}, parent.AncestorIDs...), child.ID)

			if err := tx.Model(child).Updates(map[string]interface{}{
				"level":        child.Level,
				"breadcrumb":   child.Breadcrumb,
				"ancestor_ids": child.AncestorIDs,
			}).Error; err != nil {
				return fmt.Errorf("recompute path of %d: %w", child.ID, err)
			}
			fresh[child.ID] = child
			frontier = append(frontier, child.ID)
		}
	}
	return nil
}

// SoftDelete marks the node deleted. It does not cascade: the delete guard
// in the orchestrator already rejected nodes with active children.
func (mr *MenuRepo) SoftDelete(c context.Context, id int64, deletedBy string) error {
	return mr.db(c).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.MenuNode{}).Where("id = ?", id).
			Update("updated_by", deletedBy)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Delete(&model.MenuNode{}, id).Error
	})
}

// ReorderSiblings applies a batched sort_order update atomically.
func (mr *MenuRepo) ReorderSiblings(c context.Context, parentID *int64, items []model.SortOrderItem) error {
	return mr.db(c).Transaction(func(tx *gorm.DB) error {
		for _, it := range items {
			res := scopeParent(tx.Model(&model.MenuNode{}), parentID).
				Where("id = ?", it.ID).
				Update("sort_order", it.SortOrder)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return model.ValidationErrors{{
					Code:    model.CodeNotSibling,
					Message: fmt.Sprintf("node %d is not a child of the target parent", it.ID),
					NodeID:  it.ID,
				}}
			}
		}
		return nil
	})
}

// UpdateStatus flips one node's lifecycle status.
func (mr *MenuRepo) UpdateStatus(c context.Context, id int64, status model.MenuStatus, updatedBy string) error {
	res := mr.db(c).Model(&model.MenuNode{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByID returns (nil, nil) when the node does not exist.
func (mr *MenuRepo) GetByID(c context.Context, id int64) (*model.MenuNode, error) {
	node := &model.MenuNode{}
	err := mr.db(c).First(node, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (mr *MenuRepo) GetBySlug(c context.Context, slug string, parentID *int64) (*model.MenuNode, error) {
	node := &model.MenuNode{}
	err := scopeParent(mr.db(c), parentID).Where("slug = ?", slug).First(node).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (mr *MenuRepo) GetChildren(c context.Context, parentID *int64) ([]*model.MenuNode, error) {
	var children []*model.MenuNode
	err := scopeParent(mr.db(c), parentID).
		Order("sort_order, name").Find(&children).Error
	return children, err
}

// GetDescendants walks the subtree below id level by level, bounded by the
// depth limit.
func (mr *MenuRepo) GetDescendants(c context.Context, id int64) ([]*model.MenuNode, error) {
	var all []*model.MenuNode
	frontier := []int64{id}

	for hops := 0; hops <= model.MaxLevel && len(frontier) > 0; hops++ {
		var batch []*model.MenuNode
		if err := mr.db(c).Where("parent_id IN ?", frontier).
			Order("level, sort_order, name").Find(&batch).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, n := range batch {
			all = append(all, n)
			frontier = append(frontier, n.ID)
		}
	}
	return all, nil
}

// GetPath returns the root..self chain by iterating parent pointers.
// Returns (nil, nil) when the node does not exist.
func (mr *MenuRepo) GetPath(c context.Context, id int64) ([]*model.MenuNode, error) {
	node, err := mr.GetByID(c, id)
	if err != nil || node == nil {
		return nil, err
	}

	path := []*model.MenuNode{node}
	current := node
	for hops := 0; current.ParentID != nil && hops <= model.MaxLevel; hops++ {
		parent, err := mr.GetByID(c, *current.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		path = append([]*model.MenuNode{parent}, path...)
		current = parent
	}
	return path, nil
}

// ListTree streams the rows the forest builder needs, depth-ordered so a
// parent always precedes its children.
func (mr *MenuRepo) ListTree(c context.Context, contextType string, includeInactive bool) ([]*model.MenuNode, error) {
	tx := mr.db(c).Where("is_visible = ?", true)
	if !includeInactive {
		tx = tx.Where("status = ?", model.StatusActive)
	}
	switch contextType {
	case "tenant":
		tx = tx.Where("tenant_scoped = ?", true)
	case "sub_tenant":
		tx = tx.Where("sub_tenant_scoped = ?", true)
	}

	var nodes []*model.MenuNode
	err := tx.Order("level, sort_order, name").Find(&nodes).Error
	return nodes, err
}

func (mr *MenuRepo) List(c context.Context, filter model.ListFilter) ([]*model.MenuNode, int64, error) {
	tx := mr.db(c).Model(&model.MenuNode{})
	if filter.ParentID != nil {
		tx = tx.Where("parent_id = ?", *filter.ParentID)
	}
	if filter.Status != nil {
		tx = tx.Where("status = ?", *filter.Status)
	}
	if filter.Kind != nil {
		tx = tx.Where("kind = ?", *filter.Kind)
	}
	if filter.VisibleOnly {
		tx = tx.Where("is_visible = ?", true)
	}
	if filter.TenantScoped != nil {
		tx = tx.Where("tenant_scoped = ?", *filter.TenantScoped)
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	pageNum, pageSize := filter.PageNum, filter.PageSize
	if pageNum < 1 {
		pageNum = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var items []*model.MenuNode
	err := tx.Order("level, sort_order, name").
		Offset((pageNum - 1) * pageSize).Limit(pageSize).
		Find(&items).Error
	return items, count, err
}

// ListAccessible returns the rows of the user-scoped view: active, visible,
// shown in navigation.
func (mr *MenuRepo) ListAccessible(c context.Context) ([]*model.MenuNode, error) {
	var nodes []*model.MenuNode
	err := mr.db(c).
		Where("status = ?", model.StatusActive).
		Where("is_visible = ?", true).
		Where("visible_in_nav = ?", true).
		Order("level, sort_order, name").
		Find(&nodes).Error
	return nodes, err
}

// SearchCandidates narrows rows with LIKE before in-memory scoring.
func (mr *MenuRepo) SearchCandidates(c context.Context, query string) ([]*model.MenuNode, error) {
	like := "%" + query + "%"
	var nodes []*model.MenuNode
	err := mr.db(c).
		Where("name LIKE ? OR slug LIKE ? OR description LIKE ? OR breadcrumb LIKE ? OR keywords LIKE ? OR target LIKE ? OR help_text LIKE ?",
			like, like, like, like, like, like, like).
		Order("level, sort_order").
		Limit(searchCandidateCap).
		Find(&nodes).Error
	return nodes, err
}

// ListAll returns every non-deleted row, for the statistics aggregation.
func (mr *MenuRepo) ListAll(c context.Context) ([]*model.MenuNode, error) {
	var nodes []*model.MenuNode
	err := mr.db(c).Order("level, sort_order").Find(&nodes).Error
	return nodes, err
}
