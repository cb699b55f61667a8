package model

import (
	"fmt"
	"strings"
)

// Validation error codes.
const (
	CodeSlugConflict       = "slug_conflict"
	CodeParentNotFound     = "parent_not_found"
	CodeDepthExceeded      = "depth_exceeded"
	CodeSelfParent         = "self_parent"
	CodeCycleDetected      = "cycle_detected"
	CodeChildrenNotAllowed = "children_not_allowed"
	CodeActiveChildren     = "active_children"
	CodeInvalidKind        = "invalid_kind"
	CodeInvalidStatus      = "invalid_status"
	CodeTooManyKeywords    = "too_many_keywords"
	CodeNotSibling         = "not_sibling"
	CodeDuplicateSortOrder = "duplicate_sort_order"
	CodeDuplicateID        = "duplicate_id"
	CodeEmptyField         = "empty_field"
)

// ValidationError is one structured, machine-readable validation failure.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	NodeID  int64  `json:"nodeId,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ValidationErrors aggregates every failed check of one request.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// HasCode reports whether any contained error carries the given code.
func (e ValidationErrors) HasCode(code string) bool {
	for _, v := range e {
		if v.Code == code {
			return true
		}
	}
	return false
}

// AsValidationErrors unwraps err into ValidationErrors when possible.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	switch v := err.(type) {
	case ValidationErrors:
		return v, true
	case ValidationError:
		return ValidationErrors{v}, true
	default:
		return nil, false
	}
}
