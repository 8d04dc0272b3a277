package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// Page describes a window over a listing.
type Page struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// ParsePagination parses the offset and limit query parameters.
// Offset defaults to 0, limit defaults to 50 and cannot exceed 100.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return 0, 0, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
	}

	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > maxLimit {
		return 0, 0, fmt.Errorf("invalid limit parameter: must be between 1 and %d", maxLimit)
	}

	return offset, limit, nil
}

// Paginate returns the items inside the window and the page description.
// An offset past the end yields an empty, non-nil slice.
func Paginate[T any](items []T, offset, limit int) ([]T, Page) {
	page := Page{Offset: offset, Limit: limit, Total: len(items)}
	if offset >= len(items) {
		return []T{}, page
	}
	end := min(offset+limit, len(items))
	return items[offset:end], page
}
