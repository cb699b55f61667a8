package model

import (
	"time"

	"github.com/go-arbor/arbor/pkg/datatype"
	"gorm.io/gorm"
)

// MenuKind is the closed set of node kinds.
type MenuKind string

const (
	KindContainer MenuKind = "container"
	KindPage      MenuKind = "page"
	KindExternal  MenuKind = "external_link"
	KindSeparator MenuKind = "separator"
)

// AllowsChildren reports whether a node of this kind may hold children.
func (k MenuKind) AllowsChildren() bool {
	switch k {
	case KindContainer, KindPage:
		return true
	default:
		return false
	}
}

// Valid reports whether k is a known kind.
func (k MenuKind) Valid() bool {
	switch k {
	case KindContainer, KindPage, KindExternal, KindSeparator:
		return true
	default:
		return false
	}
}

// MenuStatus is the node lifecycle status.
type MenuStatus string

const (
	StatusActive   MenuStatus = "active"
	StatusInactive MenuStatus = "inactive"
	StatusDraft    MenuStatus = "draft"
)

func (s MenuStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDraft:
		return true
	default:
		return false
	}
}

// MaxLevel is the deepest allowed level (five levels, 0..4).
const MaxLevel = 4

// MaxKeywords bounds the free-text keyword list per node.
const MaxKeywords = 10

// MenuNode is the system of record for one menu entry.
//
// Breadcrumb and AncestorIDs are materialized from the live parent chain and
// recomputed on every structural mutation; they are never set by callers.
type MenuNode struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ParentID *int64 `gorm:"column:parent_id;index:idx_parent;index:uix_parent_slug,unique" json:"parentId"`

	Level     int `gorm:"column:level" json:"level"`
	SortOrder int `gorm:"column:sort_order" json:"sortOrder"`

	Slug   string `gorm:"column:slug;size:128;index:uix_parent_slug,unique" json:"slug"`
	Name   string `gorm:"column:name;size:255" json:"name"`
	Target string `gorm:"column:target;size:512" json:"target,omitempty"`

	Kind   MenuKind   `gorm:"column:kind;size:32" json:"kind"`
	Status MenuStatus `gorm:"column:status;size:16" json:"status"`

	IsVisible       bool   `gorm:"column:is_visible" json:"isVisible"`
	VisibleInNav    bool   `gorm:"column:visible_in_nav" json:"visibleInNav"`
	TenantScoped    bool   `gorm:"column:tenant_scoped" json:"tenantScoped"`
	SubTenantScoped bool   `gorm:"column:sub_tenant_scoped" json:"subTenantScoped"`
	PermissionName  string `gorm:"column:permission_name;size:128" json:"permissionName,omitempty"`

	Icon        string              `gorm:"column:icon;size:64" json:"icon,omitempty"`
	BadgeText   string              `gorm:"column:badge_text;size:32" json:"badgeText,omitempty"`
	BadgeColor  string              `gorm:"column:badge_color;size:16" json:"badgeColor,omitempty"`
	CssClass    string              `gorm:"column:css_class;size:64" json:"cssClass,omitempty"`
	Description string              `gorm:"column:description;size:512" json:"description,omitempty"`
	HelpText    string              `gorm:"column:help_text;size:512" json:"helpText,omitempty"`
	Keywords    datatype.StringList `gorm:"column:keywords;type:json" json:"keywords,omitempty"`

	Breadcrumb  string             `gorm:"column:breadcrumb;size:1024" json:"breadcrumb"`
	AncestorIDs datatype.Int64List `gorm:"column:ancestor_ids;type:json" json:"ancestorIds"`

	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;index" json:"updatedAt"`
	// deleted_at participates in the index so a slug can be reused after a
	// soft delete. NULLs exempt live rows from the unique constraint in
	// MySQL; sibling-slug uniqueness is enforced by a locked re-check in
	// the store transaction.
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index;index:uix_parent_slug,unique" json:"-"`
	CreatedBy string         `gorm:"column:created_by;size:64" json:"createdBy,omitempty"`
	UpdatedBy string         `gorm:"column:updated_by;size:64" json:"updatedBy,omitempty"`

	Children []*MenuNode `gorm:"-" json:"children,omitempty"`
}

func (m *MenuNode) TableName() string {
	return "menu_node"
}

// IsRoot reports whether the node has no parent.
func (m *MenuNode) IsRoot() bool {
	return m.ParentID == nil
}

// IsDeleted reports whether the node is soft-deleted.
func (m *MenuNode) IsDeleted() bool {
	return m.DeletedAt.Valid
}
