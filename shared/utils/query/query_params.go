package query

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ListParams represents the list query of a flattened directory
type ListParams struct {
	Skip   int    `json:"skip"`
	Limit  int    `json:"limit"`
	Search string `json:"search"`
	// Seq is an opaque client request number echoed back so callers can drop
	// responses that a newer request has superseded.
	Seq *uint64 `json:"seq,omitempty"`
}

// PaginationResponse represents pagination metadata
type PaginationResponse struct {
	Skip    int   `json:"skip"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// ParseListParams extracts skip, limit, search and seq from the Gin context
func ParseListParams(c *gin.Context, defaultLimit, maxLimit int) ListParams {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}

	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}

	params := ListParams{
		Skip:   skip,
		Limit:  limit,
		Search: strings.TrimSpace(c.Query("search")),
	}

	if raw := c.Query("seq"); raw != "" {
		if seq, err := strconv.ParseUint(raw, 10, 64); err == nil {
			params.Seq = &seq
		}
	}

	return params
}

// BuildPaginationResponse creates pagination metadata
func BuildPaginationResponse(skip, limit int, total int64) PaginationResponse {
	return PaginationResponse{
		Skip:    skip,
		Limit:   limit,
		Total:   total,
		HasNext: int64(skip+limit) < total,
		HasPrev: skip > 0,
	}
}
