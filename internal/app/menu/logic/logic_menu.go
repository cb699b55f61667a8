// Package logic holds the menu use-case orchestrators. Every mutation runs
// the same state sequence: validate, persist inside one store transaction,
// then invalidate caches. A validation failure rejects before any write; a
// persist failure rolls back and skips invalidation (nothing changed).
package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arbor/arbor/internal/app/menu/hierarchy"
	"github.com/go-arbor/arbor/internal/app/menu/menucache"
	"github.com/go-arbor/arbor/internal/app/menu/model"
	"github.com/go-arbor/arbor/internal/app/menu/repo"
	"github.com/go-arbor/arbor/pkg/datatype"
	"github.com/go-arbor/arbor/pkg/log"
	"gorm.io/gorm"
)

type MenuLogic struct {
	store repo.Store
	cache *menucache.MenuCache
}

func NewMenuLogic(store repo.Store, cache *menucache.MenuCache) *MenuLogic {
	return &MenuLogic{
		store: store,
		cache: cache,
	}
}

// CreateMenu validates and inserts a new node, then invalidates caches.
func (ml *MenuLogic) CreateMenu(ctx context.Context, req *model.CreateMenuReq, actingUserID string) (*model.MenuNode, error) {
	var parent *model.MenuNode
	if req.ParentID != nil {
		var err error
		parent, err = ml.store.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("load parent: %w", err)
		}
	}
	siblings, err := ml.store.GetChildren(ctx, req.ParentID)
	if err != nil {
		return nil, fmt.Errorf("load siblings: %w", err)
	}

	if errs := hierarchy.ValidateCreate(req, parent, siblings); len(errs) > 0 {
		return nil, errs
	}

	node := newNodeFromReq(req, actingUserID)
	if err := ml.store.Create(ctx, node); err != nil {
		return nil, translateStoreErr(err, node.Slug)
	}

	ml.cache.InvalidateAfterMutation(ctx, node.ID)
	log.Infow("menu node created", "id", node.ID, "slug", node.Slug, "level", node.Level, "by", actingUserID)
	return node, nil
}

// UpdateMenu applies a sparse patch, handling reparent (level and
// materialized-path recompute) when parentId changes. Returns (nil, nil)
// when the node does not exist.
func (ml *MenuLogic) UpdateMenu(ctx context.Context, id int64, patch *model.UpdateMenuReq, actingUserID string) (*model.MenuNode, error) {
	current, err := ml.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load node: %w", err)
	}
	if current == nil {
		return nil, nil
	}

	node, errs := applyPatch(current, patch)
	if len(errs) > 0 {
		return nil, errs
	}
	node.UpdatedBy = actingUserID

	if patch.Kind != nil && node.Kind != current.Kind {
		children, err := ml.store.GetChildren(ctx, &id)
		if err != nil {
			return nil, fmt.Errorf("load children: %w", err)
		}
		if errs := hierarchy.ValidateKindChange(node, children); len(errs) > 0 {
			return nil, errs
		}
	}

	parentChanged := patch.ParentID != nil && !sameParent(current.ParentID, node.ParentID)

	if parentChanged {
		var newParent *model.MenuNode
		if node.ParentID != nil {
			newParent, err = ml.store.GetByID(ctx, *node.ParentID)
			if err != nil {
				return nil, fmt.Errorf("load new parent: %w", err)
			}
			if newParent == nil {
				return nil, model.ValidationErrors{{
					Code: model.CodeParentNotFound, Field: "parentId",
					Message: fmt.Sprintf("parent %d does not exist", *node.ParentID),
					NodeID:  *node.ParentID,
				}}
			}
		}

		descendants, err := ml.store.GetDescendants(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load descendants: %w", err)
		}
		height := hierarchy.SubtreeHeight(current, descendants)

		lookup := func(lid int64) *model.MenuNode {
			n, err := ml.store.GetByID(ctx, lid)
			if err != nil {
				return nil
			}
			return n
		}
		if errs := hierarchy.ValidateReparent(current, newParent, height, lookup); len(errs) > 0 {
			return nil, errs
		}
	}

	if parentChanged || (patch.Slug != nil && *patch.Slug != current.Slug) {
		siblings, err := ml.store.GetChildren(ctx, node.ParentID)
		if err != nil {
			return nil, fmt.Errorf("load siblings: %w", err)
		}
		if errs := hierarchy.CheckSlugUniqueAmong(node.Slug, node.ID, siblings); len(errs) > 0 {
			return nil, errs
		}
	}

	if err := ml.store.Update(ctx, node, parentChanged); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateStoreErr(err, node.Slug)
	}

	ml.cache.InvalidateAfterMutation(ctx, node.ID)
	log.Infow("menu node updated", "id", node.ID, "reparented", parentChanged, "by", actingUserID)
	return node, nil
}

// DeleteMenu soft-deletes a node. Deletion is rejected while the node still
// has active children; it never cascades. Returns (false, nil) when the node
// does not exist.
func (ml *MenuLogic) DeleteMenu(ctx context.Context, id int64, actingUserID string) (bool, error) {
	current, err := ml.store.GetByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("load node: %w", err)
	}
	if current == nil {
		return false, nil
	}

	children, err := ml.store.GetChildren(ctx, &id)
	if err != nil {
		return false, fmt.Errorf("load children: %w", err)
	}
	if errs := hierarchy.ValidateDelete(current, children); len(errs) > 0 {
		return false, errs
	}

	if err := ml.store.SoftDelete(ctx, id, actingUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("soft delete: %w", err)
	}

	ml.cache.InvalidateAfterMutation(ctx, id)
	log.Infow("menu node deleted", "id", id, "by", actingUserID)
	return true, nil
}

// Reorder applies a batched sibling sort_order update. Reordering to the
// current order is a no-op that still succeeds.
func (ml *MenuLogic) Reorder(ctx context.Context, req *model.ReorderReq, actingUserID string) error {
	siblings, err := ml.store.GetChildren(ctx, req.ParentID)
	if err != nil {
		return fmt.Errorf("load siblings: %w", err)
	}
	if errs := hierarchy.ValidateReorder(req.Items, siblings); len(errs) > 0 {
		return errs
	}

	if err := ml.store.ReorderSiblings(ctx, req.ParentID, req.Items); err != nil {
		return translateStoreErr(err, "")
	}

	ml.cache.InvalidateAfterMutation(ctx, idsOf(req.Items)...)
	log.Infow("menu siblings reordered", "count", len(req.Items), "by", actingUserID)
	return nil
}

// BulkUpdateStatus flips the status of several nodes, reporting a per-item
// outcome instead of failing the batch on the first bad id.
func (ml *MenuLogic) BulkUpdateStatus(ctx context.Context, req *model.BulkStatusReq, actingUserID string) (*model.BulkStatusResult, error) {
	if !req.Status.Valid() {
		return nil, model.ValidationErrors{{
			Code: model.CodeInvalidStatus, Field: "status",
			Message: fmt.Sprintf("unknown status %q", req.Status),
		}}
	}

	result := &model.BulkStatusResult{
		Items: make([]model.BulkStatusItemResult, 0, len(req.IDs)),
	}
	var touched []int64
	for _, id := range req.IDs {
		item := model.BulkStatusItemResult{ID: id, OK: true}
		if err := ml.store.UpdateStatus(ctx, id, req.Status, actingUserID); err != nil {
			item.OK = false
			if errors.Is(err, gorm.ErrRecordNotFound) {
				item.Error = "not found"
			} else {
				item.Error = err.Error()
			}
		} else {
			result.Success++
			touched = append(touched, id)
		}
		result.Items = append(result.Items, item)
	}

	if len(touched) > 0 {
		ml.cache.InvalidateAfterMutation(ctx, touched...)
	}
	log.Infow("menu bulk status update", "requested", len(req.IDs), "succeeded", result.Success, "status", req.Status, "by", actingUserID)
	return result, nil
}

// newNodeFromReq maps a create request onto a fresh node. Level, sort order
// and the materialized path are filled in by the store.
func newNodeFromReq(req *model.CreateMenuReq, actingUserID string) *model.MenuNode {
	status := req.Status
	if status == "" {
		status = model.StatusActive
	}
	isVisible := true
	if req.IsVisible != nil {
		isVisible = *req.IsVisible
	}
	visibleInNav := true
	if req.VisibleInNav != nil {
		visibleInNav = *req.VisibleInNav
	}

	return &model.MenuNode{
		ParentID:        req.ParentID,
		Slug:            req.Slug,
		Name:            req.Name,
		Target:          req.Target,
		Kind:            req.Kind,
		Status:          status,
		IsVisible:       isVisible,
		VisibleInNav:    visibleInNav,
		TenantScoped:    req.TenantScoped,
		SubTenantScoped: req.SubTenantScoped,
		PermissionName:  req.PermissionName,
		Icon:            req.Icon,
		BadgeText:       req.BadgeText,
		BadgeColor:      req.BadgeColor,
		CssClass:        req.CssClass,
		Description:     req.Description,
		HelpText:        req.HelpText,
		Keywords:        datatype.StringList(req.Keywords),
		CreatedBy:       actingUserID,
		UpdatedBy:       actingUserID,
	}
}

// applyPatch copies current and overlays the patch. A parentId of 0 moves
// the node to the root level.
func applyPatch(current *model.MenuNode, patch *model.UpdateMenuReq) (*model.MenuNode, model.ValidationErrors) {
	var errs model.ValidationErrors

	node := *current
	node.Children = nil

	if patch.ParentID != nil {
		if *patch.ParentID == 0 {
			node.ParentID = nil
		} else {
			pid := *patch.ParentID
			node.ParentID = &pid
		}
	}
	if patch.Slug != nil {
		node.Slug = *patch.Slug
		if node.Slug == "" {
			errs = append(errs, model.ValidationError{
				Code: model.CodeEmptyField, Field: "slug", Message: "slug must not be empty",
			})
		}
	}
	if patch.Name != nil {
		node.Name = *patch.Name
		if node.Name == "" {
			errs = append(errs, model.ValidationError{
				Code: model.CodeEmptyField, Field: "name", Message: "name must not be empty",
			})
		}
	}
	if patch.Target != nil {
		node.Target = *patch.Target
	}
	if patch.Kind != nil {
		node.Kind = *patch.Kind
		if !node.Kind.Valid() {
			errs = append(errs, model.ValidationError{
				Code: model.CodeInvalidKind, Field: "kind",
				Message: fmt.Sprintf("unknown kind %q", node.Kind),
			})
		}
	}
	if patch.Status != nil {
		node.Status = *patch.Status
		if !node.Status.Valid() {
			errs = append(errs, model.ValidationError{
				Code: model.CodeInvalidStatus, Field: "status",
				Message: fmt.Sprintf("unknown status %q", node.Status),
			})
		}
	}
	if patch.IsVisible != nil {
		node.IsVisible = *patch.IsVisible
	}
	if patch.VisibleInNav != nil {
		node.VisibleInNav = *patch.VisibleInNav
	}
	if patch.TenantScoped != nil {
		node.TenantScoped = *patch.TenantScoped
	}
	if patch.SubTenantScoped != nil {
		node.SubTenantScoped = *patch.SubTenantScoped
	}
	if patch.PermissionName != nil {
		node.PermissionName = *patch.PermissionName
	}
	if patch.Icon != nil {
		node.Icon = *patch.Icon
	}
	if patch.BadgeText != nil {
		node.BadgeText = *patch.BadgeText
	}
	if patch.BadgeColor != nil {
		node.BadgeColor = *patch.BadgeColor
	}
	if patch.CssClass != nil {
		node.CssClass = *patch.CssClass
	}
	if patch.Description != nil {
		node.Description = *patch.Description
	}
	if patch.HelpText != nil {
		node.HelpText = *patch.HelpText
	}
	if patch.Keywords != nil {
		if len(*patch.Keywords) > model.MaxKeywords {
			errs = append(errs, model.ValidationError{
				Code: model.CodeTooManyKeywords, Field: "keywords",
				Message: fmt.Sprintf("at most %d keywords allowed", model.MaxKeywords),
			})
		}
		node.Keywords = datatype.StringList(*patch.Keywords)
	}

	return &node, errs
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func idsOf(items []model.SortOrderItem) []int64 {
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

// translateStoreErr maps low-level store failures into the domain taxonomy.
// The store's in-transaction slug re-check surfaces as ValidationErrors; a
// duplicate-key error maps to the same slug collision as a backstop.
func translateStoreErr(err error, slug string) error {
	if ve, ok := model.AsValidationErrors(err); ok {
		return ve
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.ValidationErrors{hierarchy.SlugConflictError(slug)}
	}
	return fmt.Errorf("menu store: %w", err)
}
