package domain

import (
	"strings"

	"userapp/internal/core/apperror"
)

const (
	DefaultLimit      = 5
	DefaultPageNumber = 1
)

type SortMethod string

const (
	SortAsc  SortMethod = "ASC"
	SortDesc SortMethod = "DESC"
)

// ParseSortMethod accepts ASC or DESC in any letter case.
func ParseSortMethod(value string) (SortMethod, bool) {
	switch SortMethod(strings.ToUpper(strings.TrimSpace(value))) {
	case SortAsc:
		return SortAsc, true
	case SortDesc:
		return SortDesc, true
	default:
		return "", false
	}
}

// PageQuery is the validated, allow-listed form of the list parameters.
// OrderByKey is a snake_case column name or empty when no sort was accepted.
type PageQuery struct {
	Limit         int
	PageNumber    int
	OrderByKey    string
	OrderByMethod SortMethod
	Search        string
}

func DefaultPageQuery() PageQuery {
	return PageQuery{
		Limit:         DefaultLimit,
		PageNumber:    DefaultPageNumber,
		OrderByMethod: SortAsc,
	}
}

func (q PageQuery) Offset() int {
	if q.PageNumber <= 1 {
		return 0
	}

	return (q.PageNumber - 1) * q.Limit
}

type PageResult struct {
	PageNumber      int
	Limit           int
	Count           int
	TotalCount      int
	TotalPages      int
	HasPreviousPage bool
	HasNextPage     bool
	Results         []User
}

// TotalPages is ceil(totalCount/limit); zero rows means zero pages.
func TotalPages(limit, totalCount int) int {
	if limit <= 0 || totalCount <= 0 {
		return 0
	}

	pages := totalCount / limit
	if totalCount%limit != 0 {
		pages++
	}

	return pages
}

// PageBounds reports whether pageNumber lies in [1, totalPages]. Callers use
// it to skip fetching pages that cannot contain rows.
func PageBounds(limit, pageNumber, totalCount int) bool {
	return pageNumber >= 1 && pageNumber <= TotalPages(limit, totalCount)
}

// ComputePage builds the page metadata for items already fetched for the
// requested page. A non-positive page number is clamped to the first page.
func ComputePage(limit, pageNumber, totalCount int, items []User) (PageResult, error) {
	if limit <= 0 {
		return PageResult{}, apperror.InvalidArgument("limit must be greater than zero")
	}

	if pageNumber <= 0 {
		pageNumber = DefaultPageNumber
	}

	if totalCount < 0 {
		totalCount = 0
	}

	totalPages := TotalPages(limit, totalCount)

	result := PageResult{
		PageNumber:      pageNumber,
		Limit:           limit,
		TotalCount:      totalCount,
		TotalPages:      totalPages,
		HasPreviousPage: pageNumber > 1 && pageNumber <= totalPages,
		HasNextPage:     pageNumber < totalPages,
		Results:         []User{},
	}

	if pageNumber <= totalPages {
		if len(items) > limit {
			items = items[:limit]
		}

		result.Results = items
		result.Count = len(items)
	}

	return result, nil
}
