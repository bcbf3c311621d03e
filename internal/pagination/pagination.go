// Package pagination turns page/page_size query parameters into a bounded
// limit/offset pair.
package pagination

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/tkasparek/tkasparek/internal/apperr"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

type Pagination struct {
	Limit  int
	Offset int
}

type Meta struct {
	TotalItems int `json:"total_items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
}

// Parse reads page and page_size from q. Absent parameters take their
// defaults; present ones must be integers >= 1. A positive maxPageSize caps
// page_size.
func Parse(q url.Values, maxPageSize int) (Pagination, error) {
	pageSize := DefaultPageSize
	if q.Has("page_size") {
		n, err := parsePositive(q.Get("page_size"))
		if err != nil {
			return Pagination{}, apperr.InvalidParameter("page_size has to be number")
		}
		if maxPageSize > 0 && n > maxPageSize {
			return Pagination{}, apperr.InvalidParameter(fmt.Sprintf("page_size must be <= %d", maxPageSize))
		}
		pageSize = n
	}

	page := DefaultPage
	if q.Has("page") {
		n, err := parsePositive(q.Get("page"))
		if err != nil {
			return Pagination{}, apperr.InvalidParameter("page has to be a number")
		}
		if n-1 > math.MaxInt/pageSize {
			return Pagination{}, apperr.InvalidParameter("page is out of range")
		}
		page = n
	}

	return Pagination{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}, nil
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}

// Page reconstructs the caller's 1-based page number.
func (p Pagination) Page() int {
	if p.Limit <= 0 {
		return DefaultPage
	}
	return p.Offset/p.Limit + 1
}

func (p Pagination) Meta(totalItems int) Meta {
	return Meta{
		TotalItems: totalItems,
		Page:       p.Page(),
		PageSize:   p.Limit,
	}
}
