package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

// PaginationParams holds parsed pagination values from query params.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginatedResponse wraps a conversation page with pagination metadata.
type PaginatedResponse struct {
	Data       []domain.ProcessedConversation `json:"data"`
	Pagination PaginationMeta                 `json:"pagination"`
}

// PaginationMeta contains pagination metadata for the response.
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// ParsePagination extracts page and limit from query params. Missing or
// non-positive values fall back to page 1 and defaultLimit; limit is capped
// at maxLimit.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) PaginationParams {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// NewPaginatedResponse builds a PaginatedResponse from one page, its params
// and the total count before paging.
func NewPaginatedResponse(page []domain.ProcessedConversation, params PaginationParams, total int64) PaginatedResponse {
	totalPages := int(math.Ceil(float64(total) / float64(params.Limit)))
	if totalPages < 1 {
		totalPages = 1
	}
	if page == nil {
		page = []domain.ProcessedConversation{}
	}

	return PaginatedResponse{
		Data: page,
		Pagination: PaginationMeta{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasMore:    params.Page < totalPages,
		},
	}
}

func paginate(items []domain.ProcessedConversation, p PaginationParams) []domain.ProcessedConversation {
	if p.Offset >= len(items) {
		return nil
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}
