// Package hierarchy holds the pure tree logic: structural validation,
// forest assembly and search ranking. Nothing here touches the store or the
// cache; every function works on values the caller already loaded.
package hierarchy

import (
	"fmt"
	"strings"

	"github.com/go-arbor/arbor/internal/app/menu/model"
)

// LookupFunc resolves a node by id, nil when absent. Injected so the cycle
// walk stays pure and testable.
type LookupFunc func(id int64) *model.MenuNode

// ValidateCreate checks a create request against its target position.
// parent is nil for a root create; siblings are the non-deleted children of
// the target parent.
func ValidateCreate(req *model.CreateMenuReq, parent *model.MenuNode, siblings []*model.MenuNode) model.ValidationErrors {
	var errs model.ValidationErrors

	if strings.TrimSpace(req.Slug) == "" {
		errs = append(errs, model.ValidationError{
			Code: model.CodeEmptyField, Field: "slug", Message: "slug must not be empty",
		})
	}
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, model.ValidationError{
			Code: model.CodeEmptyField, Field: "name", Message: "name must not be empty",
		})
	}
	if !req.Kind.Valid() {
		errs = append(errs, model.ValidationError{
			Code: model.CodeInvalidKind, Field: "kind",
			Message: fmt.Sprintf("unknown kind %q", req.Kind),
		})
	}
	if req.Status != "" && !req.Status.Valid() {
		errs = append(errs, model.ValidationError{
			Code: model.CodeInvalidStatus, Field: "status",
			Message: fmt.Sprintf("unknown status %q", req.Status),
		})
	}
	if len(req.Keywords) > model.MaxKeywords {
		errs = append(errs, model.ValidationError{
			Code: model.CodeTooManyKeywords, Field: "keywords",
			Message: fmt.Sprintf("at most %d keywords allowed", model.MaxKeywords),
		})
	}

	if req.ParentID != nil {
		switch {
		case parent == nil || parent.IsDeleted():
			errs = append(errs, model.ValidationError{
				Code: model.CodeParentNotFound, Field: "parentId",
				Message: fmt.Sprintf("parent %d does not exist", *req.ParentID),
				NodeID:  *req.ParentID,
			})
		default:
			if !parent.Kind.AllowsChildren() {
				errs = append(errs, model.ValidationError{
					Code: model.CodeChildrenNotAllowed, Field: "parentId",
					Message: fmt.Sprintf("node of kind %q cannot hold children", parent.Kind),
					NodeID:  parent.ID,
				})
			}
			if parent.Level+1 > model.MaxLevel {
				errs = append(errs, model.ValidationError{
					Code: model.CodeDepthExceeded, Field: "parentId",
					Message: fmt.Sprintf("resulting level %d exceeds the maximum of %d", parent.Level+1, model.MaxLevel),
					NodeID:  parent.ID,
				})
			}
		}
	}

	if err := checkSlugUnique(req.Slug, 0, siblings); err != nil {
		errs = append(errs, *err)
	}

	return errs
}

// ValidateReparent checks moving node under newParent. subtreeHeight is the
// height of node's own subtree (0 for a leaf) so the depth bound covers its
// descendants too. newParent is nil for a move to the root level.
func ValidateReparent(node *model.MenuNode, newParent *model.MenuNode, subtreeHeight int, lookup LookupFunc) model.ValidationErrors {
	var errs model.ValidationErrors

	if newParent != nil && newParent.ID == node.ID {
		errs = append(errs, model.ValidationError{
			Code: model.CodeSelfParent, Field: "parentId",
			Message: "a node cannot be its own parent",
			NodeID:  node.ID,
		})
		return errs
	}

	newLevel := 0
	if newParent != nil {
		if newParent.IsDeleted() {
			errs = append(errs, model.ValidationError{
				Code: model.CodeParentNotFound, Field: "parentId",
				Message: fmt.Sprintf("parent %d does not exist", newParent.ID),
				NodeID:  newParent.ID,
			})
			return errs
		}
		if !newParent.Kind.AllowsChildren() {
			errs = append(errs, model.ValidationError{
				Code: model.CodeChildrenNotAllowed, Field: "parentId",
				Message: fmt.Sprintf("node of kind %q cannot hold children", newParent.Kind),
				NodeID:  newParent.ID,
			})
		}
		if DetectsCycle(node.ID, newParent, lookup) {
			errs = append(errs, model.ValidationError{
				Code: model.CodeCycleDetected, Field: "parentId",
				Message: fmt.Sprintf("moving node %d under %d would create a cycle", node.ID, newParent.ID),
				NodeID:  node.ID,
			})
		}
		newLevel = newParent.Level + 1
	}

	if newLevel+subtreeHeight > model.MaxLevel {
		errs = append(errs, model.ValidationError{
			Code: model.CodeDepthExceeded, Field: "parentId",
			Message: fmt.Sprintf("resulting level %d exceeds the maximum of %d", newLevel+subtreeHeight, model.MaxLevel),
			NodeID:  node.ID,
		})
	}

	return errs
}

// DetectsCycle walks the ancestor chain upward from newParent and reports
// whether nodeID appears before a root. The walk is bounded: a chain longer
// than the depth limit is itself treated as a cycle.
func DetectsCycle(nodeID int64, newParent *model.MenuNode, lookup LookupFunc) bool {
	current := newParent
	for hops := 0; current != nil; hops++ {
		if current.ID == nodeID {
			return true
		}
		if hops > model.MaxLevel {
			return true
		}
		if current.ParentID == nil {
			return false
		}
		current = lookup(*current.ParentID)
	}
	return false
}

// ValidateDelete rejects deleting a node that still has active children.
// Inactive, draft and soft-deleted children do not block deletion.
func ValidateDelete(node *model.MenuNode, children []*model.MenuNode) model.ValidationErrors {
	var active []int64
	for _, c := range children {
		if !c.IsDeleted() && c.Status == model.StatusActive {
			active = append(active, c.ID)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return model.ValidationErrors{{
		Code:    model.CodeActiveChildren,
		Message: fmt.Sprintf("node %d still has active children %v", node.ID, active),
		NodeID:  node.ID,
	}}
}

// ValidateKindChange rejects narrowing a node to a kind that cannot hold
// children while active children exist. node carries the new kind.
func ValidateKindChange(node *model.MenuNode, children []*model.MenuNode) model.ValidationErrors {
	if node.Kind.AllowsChildren() {
		return nil
	}
	var active []int64
	for _, c := range children {
		if !c.IsDeleted() && c.Status == model.StatusActive {
			active = append(active, c.ID)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return model.ValidationErrors{{
		Code: model.CodeChildrenNotAllowed, Field: "kind",
		Message: fmt.Sprintf("kind %q cannot hold children; node %d still has active children %v", node.Kind, node.ID, active),
		NodeID:  node.ID,
	}}
}

// ValidateReorder checks that every (id, sortOrder) pair targets a distinct
// existing sibling of the same parent and no two pairs collide.
func ValidateReorder(items []model.SortOrderItem, siblings []*model.MenuNode) model.ValidationErrors {
	var errs model.ValidationErrors

	byID := make(map[int64]*model.MenuNode, len(siblings))
	for _, s := range siblings {
		byID[s.ID] = s
	}

	seenID := make(map[int64]bool, len(items))
	seenOrder := make(map[int]bool, len(items))
	for _, it := range items {
		if seenID[it.ID] {
			errs = append(errs, model.ValidationError{
				Code:    model.CodeDuplicateID,
				Message: fmt.Sprintf("node %d appears more than once", it.ID),
				NodeID:  it.ID,
			})
		}
		seenID[it.ID] = true

		if seenOrder[it.SortOrder] {
			errs = append(errs, model.ValidationError{
				Code:    model.CodeDuplicateSortOrder,
				Message: fmt.Sprintf("sort order %d assigned more than once", it.SortOrder),
				NodeID:  it.ID,
			})
		}
		seenOrder[it.SortOrder] = true

		if _, ok := byID[it.ID]; !ok {
			errs = append(errs, model.ValidationError{
				Code:    model.CodeNotSibling,
				Message: fmt.Sprintf("node %d is not a child of the target parent", it.ID),
				NodeID:  it.ID,
			})
		}
	}

	return errs
}

// SlugConflictError is the shared slug-collision error, also used when the
// database unique index fires after validation passed.
func SlugConflictError(slug string) model.ValidationError {
	return model.ValidationError{
		Code: model.CodeSlugConflict, Field: "slug",
		Message: fmt.Sprintf("slug %q already exists under the same parent", slug),
	}
}

// checkSlugUnique rejects a slug already held by a non-deleted sibling other
// than selfID.
func checkSlugUnique(slug string, selfID int64, siblings []*model.MenuNode) *model.ValidationError {
	for _, s := range siblings {
		if s.ID == selfID || s.IsDeleted() {
			continue
		}
		if strings.EqualFold(s.Slug, slug) {
			err := SlugConflictError(slug)
			err.NodeID = s.ID
			return &err
		}
	}
	return nil
}

// CheckSlugUniqueAmong is the update-path variant of the create slug check.
func CheckSlugUniqueAmong(slug string, selfID int64, siblings []*model.MenuNode) model.ValidationErrors {
	if err := checkSlugUnique(slug, selfID, siblings); err != nil {
		return model.ValidationErrors{*err}
	}
	return nil
}

// SubtreeHeight returns the height of the subtree rooted at node, derived
// from the levels of its already-loaded descendants (0 for a leaf).
func SubtreeHeight(node *model.MenuNode, descendants []*model.MenuNode) int {
	maxLevel := node.Level
	for _, d := range descendants {
		if d.Level > maxLevel {
			maxLevel = d.Level
		}
	}
	return maxLevel - node.Level
}
