package httputil

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/assetvault/internal/errors"
)

// Listing bounds for owner asset pages.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

var (
	errInvalidOffset = apperrors.Wrap(apperrors.ErrBadRequest, "invalid offset parameter: must be a non-negative integer")
	errInvalidLimit  = apperrors.Wrap(apperrors.ErrBadRequest, "invalid limit parameter: must be between 1 and 100")
)

// ParsePagination reads ?offset and ?limit. Missing values default to 0 and
// DefaultLimit; a limit above MaxLimit is rejected rather than clamped.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	if offset, err = queryInt(c, "offset", 0); err != nil || offset < 0 {
		return 0, 0, errInvalidOffset
	}
	if limit, err = queryInt(c, "limit", DefaultLimit); err != nil || limit < 1 || limit > MaxLimit {
		return 0, 0, errInvalidLimit
	}
	return offset, limit, nil
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
