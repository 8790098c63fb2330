package pagination

import (
	"errors"
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ehr/patient-journal/internal/platform/errs"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Params holds zero-based page parameters extracted from a request.
type Params struct {
	PageIndex int
	PageSize  int
}

// Default returns the first page with the default size.
func Default() Params {
	return Params{PageIndex: 0, PageSize: DefaultPageSize}
}

// FromContext reads pageIndex and pageSize from the query string. Missing
// values take the defaults; pageSize above MaxPageSize is clamped.
func FromContext(c echo.Context) (Params, error) {
	p := Default()

	if raw := c.QueryParam("pageIndex"); raw != "" {
		idx, err := strconv.Atoi(raw)
		if errors.Is(err, strconv.ErrRange) && idx > 0 {
			// Past any real page; Offset saturates.
			err = nil
		}
		if err != nil || idx < 0 {
			return Params{}, errs.InvalidArgumentf("pageIndex must be a non-negative integer")
		}
		p.PageIndex = idx
	}

	if raw := c.QueryParam("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return Params{}, errs.InvalidArgumentf("pageSize must be a positive integer")
		}
		p.PageSize = size
	}

	return p.Normalize(), nil
}

// Normalize clamps the page size to MaxPageSize and fills in defaults.
func (p Params) Normalize() Params {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if p.PageIndex < 0 {
		p.PageIndex = 0
	}
	return p
}

// Validate reports an InvalidArgument error for out-of-range values.
func (p Params) Validate() error {
	if p.PageIndex < 0 {
		return errs.InvalidArgumentf("pageIndex must be a non-negative integer")
	}
	if p.PageSize <= 0 {
		return errs.InvalidArgumentf("pageSize must be a positive integer")
	}
	return nil
}

func (p Params) Limit() int {
	return p.PageSize
}

// Offset saturates at math.MaxInt so pages past the end stay empty rather
// than wrapping negative.
func (p Params) Offset() int {
	if p.PageSize > 0 && p.PageIndex > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return p.PageIndex * p.PageSize
}
