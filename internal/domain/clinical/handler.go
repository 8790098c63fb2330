package clinical

import (
	"net/http"

	"github.com/google/uuid"
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

// RegisterRoutes mounts condition and observation routes on api. tx wraps
// every mutating route in a transaction.
func (h *Handler) RegisterRoutes(api *echo.Group, tx echo.MiddlewareFunc) {
	read := []echo.MiddlewareFunc{auth.RequireRole(auth.AnyRole...)}
	api.GET("/conditions/high-severity", h.ListHighSeverityConditions, read...)
	api.GET("/conditions/type/:type", h.ListConditionsByType, read...)
	api.GET("/conditions/patient/:id", h.ListConditionsByPatient, read...)
	api.GET("/conditions/patient/:id/count", h.CountConditionsByPatient, read...)
	api.GET("/conditions/practitioner/:id", h.ListConditionsByPractitioner, read...)
	api.GET("/conditions/:id", h.GetCondition, read...)
	api.GET("/observations/patient/:id", h.ListObservationsByPatient, read...)
	api.GET("/observations/recent/patient/:id", h.MostRecentObservation, read...)
	api.GET("/observations/count/patient/:id", h.CountObservationsByPatient, read...)
	api.GET("/observations/practitioner/:id", h.ListObservationsByPractitioner, read...)
	api.GET("/observations/:id", h.GetObservation, read...)

	write := []echo.MiddlewareFunc{auth.RequireRole(auth.Staff...), tx}
	api.POST("/conditions/patient/:id/practitioner/:practitionerId", h.CreateCondition, write...)
	api.PUT("/conditions/:id", h.UpdateCondition, write...)
	api.DELETE("/conditions/:id", h.DeleteCondition, write...)
	api.POST("/observations/patient/:id/practitioner/:practitionerId", h.CreateObservation, write...)
	api.PUT("/observations/:id", h.UpdateObservation, write...)
	api.DELETE("/observations/:id", h.DeleteObservation, write...)
}

// -- Condition Handlers --

func (h *Handler) ListConditionsByPatient(c echo.Context) error {
	patientID, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	eager, err := validation.QueryBool(c, "eager")
	if err != nil {
		return err
	}
	list, err := h.svc.ListConditionsByPatient(c.Request().Context(), patientID, eager)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) CountConditionsByPatient(c echo.Context) error {
	patientID, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	n, err := h.svc.CountConditionsByPatient(c.Request().Context(), patientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) ListConditionsByPractitioner(c echo.Context) error {
	practitionerID, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	eager, err := validation.QueryBool(c, "eager")
	if err != nil {
		return err
	}
	list, err := h.svc.ListConditionsByPractitioner(c.Request().Context(), practitionerID, eager)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) ListHighSeverityConditions(c echo.Context) error {
	list, err := h.svc.ListHighSeverityConditions(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) ListConditionsByType(c echo.Context) error {
	list, err := h.svc.ListConditionsByType(c.Request().Context(), c.Param("type"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetCondition(c echo.Context) error {
	id, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	cond, err := h.svc.GetCondition(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cond)
}

func (h *Handler) CreateCondition(c echo.Context) error {
	patientID, practitionerID, err := ownerParams(c)
	if err != nil {
		return err
	}
	var in dto.ConditionInput
	if err := validation.BindAndValidate(c, &in); err != nil {
		return err
	}
	cond, err := h.svc.CreateCondition(c.Request().Context(), patientID, practitionerID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cond)
}

func (h *Handler) UpdateCondition(c echo.Context) error {
	id, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	var in dto.ConditionInput
	if err := validation.BindAndValidate(c, &in); err != nil {
		return err
	}
	cond, err := h.svc.UpdateCondition(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cond)
}

func (h *Handler) DeleteCondition(c echo.Context) error {
	id, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	found, err := h.svc.DeleteCondition(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !found {
		return c.JSON(http.StatusNotFound, errs.Response{Code: errs.NotFound.String(), Message: "Condition not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Observation Handlers --

func (h *Handler) ListObservationsByPatient(c echo.Context) error {
	patientID, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	list, err := h.svc.ListObservationsByPatient(c.Request().Context(), patientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) MostRecentObservation(c echo.Context) error {
	patientID, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	obs, err := h.svc.MostRecentObservation(c.Request().Context(), patientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, obs)
}

func (h *Handler) CountObservationsByPatient(c echo.Context) error {
	patientID, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	n, err := h.svc.CountObservationsByPatient(c.Request().Context(), patientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) ListObservationsByPractitioner(c echo.Context) error {
	practitionerID, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	list, err := h.svc.ListObservationsByPractitioner(c.Request().Context(), practitionerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetObservation(c echo.Context) error {
	id, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	obs, err := h.svc.GetObservation(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, obs)
}

func (h *Handler) CreateObservation(c echo.Context) error {
	patientID, practitionerID, err := ownerParams(c)
	if err != nil {
		return err
	}
	var in dto.ObservationInput
	if err := validation.BindAndValidate(c, &in); err != nil {
		return err
	}
	obs, err := h.svc.CreateObservation(c.Request().Context(), patientID, practitionerID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, obs)
}

func (h *Handler) UpdateObservation(c echo.Context) error {
	id, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	var in dto.ObservationInput
	if err := validation.BindAndValidate(c, &in); err != nil {
		return err
	}
	obs, err := h.svc.UpdateObservation(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, obs)
}

func (h *Handler) DeleteObservation(c echo.Context) error {
	id, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	found, err := h.svc.DeleteObservation(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !found {
		return c.JSON(http.StatusNotFound, errs.Response{Code: errs.NotFound.String(), Message: "Observation not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

func ownerParams(c echo.Context) (patientID, practitionerID uuid.UUID, err error) {
	if patientID, err = validation.PathUUID(c, "id"); err != nil {
		return
	}
	practitionerID, err = validation.PathUUID(c, "practitionerId")
	return
}
