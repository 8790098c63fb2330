package encounter

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/patient-journal/internal/domain/dto"
	"github.com/ehr/patient-journal/internal/platform/auth"
	"github.com/ehr/patient-journal/internal/platform/errs"
	"github.com/ehr/patient-journal/internal/platform/validation"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts encounter routes on api. tx wraps every mutating
// route in a transaction.
func (h *Handler) RegisterRoutes(api *echo.Group, tx echo.MiddlewareFunc) {
	read := []echo.MiddlewareFunc{auth.RequireRole(auth.AnyRole...)}
	api.GET("/encounters/recent", h.ListRecent, read...)
	api.GET("/encounters/patient/:id", h.ListByPatient, read...)
	api.GET("/encounters/practitioner/:id", h.ListByPractitioner, read...)
	api.GET("/encounters/count/patient/:id", h.CountByPatient, read...)
	api.GET("/count/patient/:id", h.CountByPatient, read...)
	api.GET("/encounters/:id", h.GetEncounter, read...)

	write := []echo.MiddlewareFunc{auth.RequireRole(auth.Staff...), tx}
	api.POST("/encounters/patient/:id/practitioner/:practitionerId", h.CreateEncounter, write...)
	api.PUT("/encounters/:id", h.UpdateEncounter, write...)
	api.DELETE("/encounters/:id", h.DeleteEncounter, write...)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	eager, err := validation.QueryBool(c, "eager")
	if err != nil {
		return err
	}
	list, err := h.svc.ListByPatient(c.Request().Context(), patientID, eager)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) ListByPractitioner(c echo.Context) error {
	practitionerID, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	eager, err := validation.QueryBool(c, "eager")
	if err != nil {
		return err
	}
	list, err := h.svc.ListByPractitioner(c.Request().Context(), practitionerID, eager)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) ListRecent(c echo.Context) error {
	eager, err := validation.QueryBool(c, "eager")
	if err != nil {
		return err
	}
	list, err := h.svc.ListRecent(c.Request().Context(), eager)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetEncounter(c echo.Context) error {
	id, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	enc, err := h.svc.GetEncounter(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, enc)
}

func (h *Handler) CountByPatient(c echo.Context) error {
	patientID, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	n, err := h.svc.CountByPatient(c.Request().Context(), patientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) CreateEncounter(c echo.Context) error {
	patientID, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	practitionerID, err := validation.PathUUID(c, "practitionerId")
	if err != nil {
		return err
	}
	var in dto.EncounterInput
	if err := validation.BindAndValidate(c, &in); err != nil {
		return err
	}
	enc, err := h.svc.CreateEncounter(c.Request().Context(), patientID, practitionerID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, enc)
}

func (h *Handler) UpdateEncounter(c echo.Context) error {
	id, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	var in dto.EncounterInput
	if err := validation.BindAndValidate(c, &in); err != nil {
		return err
	}
	enc, err := h.svc.UpdateEncounter(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, enc)
}

func (h *Handler) DeleteEncounter(c echo.Context) error {
	id, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	found, err := h.svc.DeleteEncounter(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !found {
		return c.JSON(http.StatusNotFound, errs.Response{Code: errs.NotFound.String(), Message: "Encounter not found"})
	}
	return c.NoContent(http.StatusNoContent)
}
