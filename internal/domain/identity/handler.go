package identity

import (
	"net/http"
	"net/url"

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

func (h *Handler) RegisterRoutes(api *echo.Group, tx echo.MiddlewareFunc) {
	read := []echo.MiddlewareFunc{auth.RequireRole(auth.AnyRole...)}
	api.GET("/patients", h.ListPatients, read...)
	api.GET("/patients/count", h.CountPatients, read...)
	api.GET("/patients/search", h.SearchPatients, read...)
	api.GET("/patients/email/:email", h.GetPatientByEmail, read...)
	api.GET("/patients/:id", h.GetPatient, read...)
	api.GET("/practitioners", h.ListPractitioners, read...)
	api.GET("/practitioners/count", h.CountPractitioners, read...)
	api.GET("/practitioners/:id", h.GetPractitioner, read...)

	write := []echo.MiddlewareFunc{auth.RequireRole(auth.Staff...), tx}
	api.POST("/patients", h.CreatePatient, write...)
	api.POST("/practitioners", h.CreatePractitioner, write...)
}

// -- Patient Handlers --

func (h *Handler) ListPatients(c echo.Context) error {
	p, err := pagination.FromContext(c)
	if err != nil {
		return err
	}
	eager, err := validation.QueryBool(c, "eager")
	if err != nil {
		return err
	}
	patients, err := h.svc.ListPatients(c.Request().Context(), p, eager)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	eager, err := validation.QueryBool(c, "eager")
	if err != nil {
		return err
	}
	patient, err := h.svc.GetPatient(c.Request().Context(), id, eager)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, patient)
}

// GetPatientByEmail answers 204 when no patient has the address.
func (h *Handler) GetPatientByEmail(c echo.Context) error {
	email, err := url.PathUnescape(c.Param("email"))
	if err != nil {
		return errs.InvalidArgumentf("invalid email")
	}
	eager, err := validation.QueryBool(c, "eager")
	if err != nil {
		return err
	}
	patient, err := h.svc.GetPatientByEmail(c.Request().Context(), email, eager)
	if err != nil {
		return err
	}
	if patient == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, patient)
}

func (h *Handler) SearchPatients(c echo.Context) error {
	p, err := pagination.FromContext(c)
	if err != nil {
		return err
	}
	eager, err := validation.QueryBool(c, "eager")
	if err != nil {
		return err
	}
	patients, err := h.svc.SearchPatients(c.Request().Context(), c.QueryParam("name"), p, eager)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) CountPatients(c echo.Context) error {
	n, err := h.svc.CountPatients(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var in dto.PatientInput
	if err := validation.BindAndValidate(c, &in); err != nil {
		return err
	}
	patient, err := h.svc.CreatePatient(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, patient)
}

// -- Practitioner Handlers --

func (h *Handler) ListPractitioners(c echo.Context) error {
	p, err := pagination.FromContext(c)
	if err != nil {
		return err
	}
	list, err := h.svc.ListPractitioners(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetPractitioner(c echo.Context) error {
	id, err := validation.PathUUID(c, "id")
	if err != nil {
		return err
	}
	pr, err := h.svc.GetPractitioner(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pr)
}

func (h *Handler) CountPractitioners(c echo.Context) error {
	n, err := h.svc.CountPractitioners(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) CreatePractitioner(c echo.Context) error {
	var in dto.PractitionerInput
	if err := validation.BindAndValidate(c, &in); err != nil {
		return err
	}
	pr, err := h.svc.CreatePractitioner(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, pr)
}
