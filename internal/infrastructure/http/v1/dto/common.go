// Package dto defines request and response shapes for API v1.
package dto

// IDResponse is returned from create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic success acknowledgment.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ListQuery carries common list parameters.
type ListQuery struct {
	Search         string `form:"search"`
	IncludeDeleted bool   `form:"includeDeleted"`
	OrderBy        string `form:"orderBy"`
	Limit          int    `form:"limit"`
	Offset         int    `form:"offset"`
}

// ListResponse wraps paginated results.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}
