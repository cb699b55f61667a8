package model

// CreateMenuReq is the input of the create orchestrator.
type CreateMenuReq struct {
	ParentID        *int64     `json:"parentId"`
	Slug            string     `json:"slug" binding:"required"`
	Name            string     `json:"name" binding:"required"`
	Target          string     `json:"target"`
	Kind            MenuKind   `json:"kind" binding:"required"`
	Status          MenuStatus `json:"status"`
	IsVisible       *bool      `json:"isVisible"`
	VisibleInNav    *bool      `json:"visibleInNav"`
	TenantScoped    bool       `json:"tenantScoped"`
	SubTenantScoped bool       `json:"subTenantScoped"`
	PermissionName  string     `json:"permissionName"`
	Icon            string     `json:"icon"`
	BadgeText       string     `json:"badgeText"`
	BadgeColor      string     `json:"badgeColor"`
	CssClass        string     `json:"cssClass"`
	Description     string     `json:"description"`
	HelpText        string     `json:"helpText"`
	Keywords        []string   `json:"keywords"`
}

// UpdateMenuReq is a sparse patch; nil fields are left untouched.
// Setting ParentID moves the node (reparent); pointing it at 0 moves the
// node to the root level.
type UpdateMenuReq struct {
	ParentID        *int64      `json:"parentId"`
	Slug            *string     `json:"slug"`
	Name            *string     `json:"name"`
	Target          *string     `json:"target"`
	Kind            *MenuKind   `json:"kind"`
	Status          *MenuStatus `json:"status"`
	IsVisible       *bool       `json:"isVisible"`
	VisibleInNav    *bool       `json:"visibleInNav"`
	TenantScoped    *bool       `json:"tenantScoped"`
	SubTenantScoped *bool       `json:"subTenantScoped"`
	PermissionName  *string     `json:"permissionName"`
	Icon            *string     `json:"icon"`
	BadgeText       *string     `json:"badgeText"`
	BadgeColor      *string     `json:"badgeColor"`
	CssClass        *string     `json:"cssClass"`
	Description     *string     `json:"description"`
	HelpText        *string     `json:"helpText"`
	Keywords        *[]string   `json:"keywords"`
}

// SortOrderItem is one (id, sortOrder) pair of a reorder request.
type SortOrderItem struct {
	ID        int64 `json:"id" binding:"required"`
	SortOrder int   `json:"sortOrder"`
}

// ReorderReq reorders the children of one parent (nil parent = roots).
type ReorderReq struct {
	ParentID *int64          `json:"parentId"`
	Items    []SortOrderItem `json:"items" binding:"required"`
}

// BulkStatusReq flips the status of several nodes at once.
type BulkStatusReq struct {
	IDs    []int64    `json:"ids" binding:"required"`
	Status MenuStatus `json:"status" binding:"required"`
}

// BulkStatusItemResult is the per-item outcome of a bulk status update.
type BulkStatusItemResult struct {
	ID    int64  `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BulkStatusResult is the aggregate outcome of a bulk status update.
type BulkStatusResult struct {
	Success int                    `json:"success"`
	Items   []BulkStatusItemResult `json:"items"`
}

// ListFilter narrows the paginated list view.
type ListFilter struct {
	ParentID     *int64      `json:"parentId" form:"parentId"`
	Status       *MenuStatus `json:"status" form:"status"`
	Kind         *MenuKind   `json:"kind" form:"kind"`
	VisibleOnly  bool        `json:"visibleOnly" form:"visibleOnly"`
	TenantScoped *bool       `json:"tenantScoped" form:"tenantScoped"`
	PageNum      int         `json:"pageNum" form:"pageNum"`
	PageSize     int         `json:"pageSize" form:"pageSize"`
}

// TreeResult is the full-tree read view plus its metadata.
type TreeResult struct {
	Roots        []*MenuNode `json:"roots"`
	TotalNodes   int         `json:"totalNodes"`
	RootCount    int         `json:"rootCount"`
	MaxDepth     int         `json:"maxDepth"`
	ApproxLoadMs int64       `json:"approxLoadTimeMs"`
}

// ListResult is the paginated list view.
type ListResult struct {
	Items []*MenuNode `json:"items"`
	Total int64       `json:"total"`
}

// SearchHit is one scored search result.
type SearchHit struct {
	Node  *MenuNode `json:"node"`
	Score int       `json:"score"`
}

// SearchResult is the ranked search view.
type SearchResult struct {
	Hits        []SearchHit `json:"hits"`
	ExecutionMs int64       `json:"executionTimeMs"`
}

// MenuStatistics is the aggregate-counts view.
type MenuStatistics struct {
	Total              int            `json:"total"`
	ByStatus           map[string]int `json:"byStatus"`
	ByLevel            map[int]int    `json:"byLevel"`
	ByKind             map[string]int `json:"byKind"`
	WithPermission     int            `json:"withPermission"`
	TenantScoped       int            `json:"tenantScoped"`
	SubTenantScoped    int            `json:"subTenantScoped"`
	RootCount          int            `json:"rootCount"`
	MaxDepth           int            `json:"maxDepth"`
	AvgChildrenPerNode float64        `json:"avgChildrenPerNode"`
}
