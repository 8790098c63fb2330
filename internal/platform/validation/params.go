package validation

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/patient-journal/internal/platform/errs"
)

// PathUUID parses the named path parameter as a UUID.
func PathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errs.InvalidArgumentf("invalid %s: must be a UUID", name)
	}
	return id, nil
}

// QueryBool parses an optional boolean query parameter, false when absent.
func QueryBool(c echo.Context, name string) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errs.InvalidArgumentf("invalid %s: must be true or false", name)
	}
	return v, nil
}
