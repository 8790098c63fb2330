package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/patient-journal/internal/domain/dto"
	"github.com/ehr/patient-journal/internal/platform/auth"
	"github.com/ehr/patient-journal/internal/platform/errs"
	"github.com/ehr/patient-journal/internal/platform/validation"
	"github.com/ehr/patient-journal/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts organization and location routes on api. tx wraps
// every mutating route in a transaction.
func (h *Handler) RegisterRoutes(api *echo.Group, tx echo.MiddlewareFunc) {
	read := []echo.MiddlewareFunc{auth.RequireRole(auth.AnyRole...)}
	api.GET("/organizations", h.ListOrganizations, read...)
	api.GET("/organizations/count", h.CountOrganizations, read...)
	api.GET("/organizations/type/:type", h.ListOrganizationsByType, read...)
	api.GET("/organizations/:id", h.GetOrganization, read...)
	api.GET("/locations", h.ListLocations, read...)
	api.GET("/locations/count", h.CountLocations, read...)
	api.GET("/locations/type/:type", h.ListLocationsByType, read...)
	api.GET("/locations/:id", h.GetLocation, read...)

	// Creates are Doctor only; updates and deletes also allow OtherStaff.
	create := []echo.MiddlewareFunc{auth.RequireRole(auth.Doctors...), tx}
	api.POST("/organizations", h.CreateOrganization, create...)
	api.POST("/locations", h.CreateLocation, create...)

	write := []echo.MiddlewareFunc{auth.RequireRole(auth.Staff...), tx}
	api.PUT("/organizations/:id", h.UpdateOrganization, write...)
	api.PUT("/locations/:id", h.UpdateLocation, write...)
	api.DELETE("/locations/:id", h.DeleteLocation, write...)
	api.DELETE("/:id", h.DeleteLocation, write...)

	// DELETE /:id matches every single-segment path. Other methods on those
	// paths are unknown routes, not 405s.
	api.RouteNotFound("/*", echo.NotFoundHandler)
}

// -- Organization Handlers --

func (h *Handler) ListOrganizations(c echo.Context) error {
	p, err := pagination.FromContext(c)
	if err != nil {
		return err
	}
	orgs, err := h.svc.ListOrganizations(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orgs)
}

func (h *Handler) GetOrganization(c echo.Context) error {
	id, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	eager, err := validation.QueryBool(c, "eager")
	if err != nil {
		return err
	}
	org, err := h.svc.GetOrganization(c.Request().Context(), id, eager)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, org)
}

func (h *Handler) ListOrganizationsByType(c echo.Context) error {
	orgs, err := h.svc.ListOrganizationsByType(c.Request().Context(), c.Param("type"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orgs)
}

func (h *Handler) CountOrganizations(c echo.Context) error {
	n, err := h.svc.CountOrganizations(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) CreateOrganization(c echo.Context) error {
	var in dto.OrganizationInput
	if err := validation.BindAndValidate(c, &in); err != nil {
		return err
	}
	org, err := h.svc.CreateOrganization(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, org)
}

func (h *Handler) UpdateOrganization(c echo.Context) error {
	id, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	var in dto.OrganizationInput
	if err := validation.BindAndValidate(c, &in); err != nil {
		return err
	}
	org, err := h.svc.UpdateOrganization(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, org)
}

// -- Location Handlers --

func (h *Handler) ListLocations(c echo.Context) error {
	p, err := pagination.FromContext(c)
	if err != nil {
		return err
	}
	locs, err := h.svc.ListLocations(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, locs)
}

func (h *Handler) GetLocation(c echo.Context) error {
	id, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	eager, err := validation.QueryBool(c, "eager")
	if err != nil {
		return err
	}
	loc, err := h.svc.GetLocation(c.Request().Context(), id, eager)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loc)
}

func (h *Handler) ListLocationsByType(c echo.Context) error {
	locs, err := h.svc.ListLocationsByType(c.Request().Context(), c.Param("type"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, locs)
}

func (h *Handler) CountLocations(c echo.Context) error {
	n, err := h.svc.CountLocations(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) CreateLocation(c echo.Context) error {
	var in dto.LocationInput
	if err := validation.BindAndValidate(c, &in); err != nil {
		return err
	}
	loc, err := h.svc.CreateLocation(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, loc)
}

func (h *Handler) UpdateLocation(c echo.Context) error {
	id, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	var in dto.LocationInput
	if err := validation.BindAndValidate(c, &in); err != nil {
		return err
	}
	loc, err := h.svc.UpdateLocation(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loc)
}

func (h *Handler) DeleteLocation(c echo.Context) error {
	id, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	found, err := h.svc.DeleteLocation(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !found {
		return c.JSON(http.StatusNotFound, errs.Response{Code: errs.NotFound.String(), Message: "Location not found"})
	}
	return c.NoContent(http.StatusNoContent)
}
