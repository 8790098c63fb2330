package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/patient-journal/internal/domain/dto"
	"github.com/ehr/patient-journal/internal/platform/auth"
	"github.com/ehr/patient-journal/internal/platform/errs"
	"github.com/ehr/patient-journal/internal/platform/validation"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	e.Validator = validation.New()
	return h, e
}

// newRoutedServer mounts the handler's routes behind a stub identity with
// roles. txCount counts requests that went through the transaction scope.
func newRoutedServer(h *Handler, txCount *int, roles ...string) *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	e.HTTPErrorHandler = errs.HTTPErrorHandler(zerolog.Nop())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(roles) > 0 {
				ctx := auth.WithIdentity(c.Request().Context(), "user-1", roles)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	})
	tx := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			*txCount++
			return next(c)
		}
	}
	h.RegisterRoutes(e.Group(""), tx)
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestHandler_CreateOrganization(t *testing.T) {
	h, e := newTestHandler()

	body := `{"name":"Test Hospital","type":"HOSPITAL"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/organizations", body), rec)

	if err := h.CreateOrganization(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var org dto.Organization
	json.Unmarshal(rec.Body.Bytes(), &org)
	if org.Name != "Test Hospital" {
		t.Errorf("expected 'Test Hospital', got %s", org.Name)
	}
	if org.ID == uuid.Nil {
		t.Error("expected id in response")
	}
}

func TestHandler_CreateOrganization_BadRequest(t *testing.T) {
	h, e := newTestHandler()

	c := e.NewContext(jsonRequest(http.MethodPost, "/organizations", `{"type":"HOSPITAL"}`), httptest.NewRecorder())
	err := h.CreateOrganization(c)
	if !errs.Is(err, errs.InvalidArgument) {
		t.Fatalf("expected InvalidArgument for missing name, got %v", err)
	}
	var e2 *errs.Error
	if !errors.As(err, &e2) || len(e2.Fields) != 1 || e2.Fields[0].Field != "name" {
		t.Errorf("expected a single field error on name, got %+v", e2)
	}
}

func TestHandler_GetOrganization(t *testing.T) {
	h, e := newTestHandler()
	org, _ := h.svc.CreateOrganization(context.Background(), dto.OrganizationInput{Name: "Test", Type: "CLINIC"})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?eager=true", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(org.ID.String())

	if err := h.GetOrganization(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"locations":[]`) {
		t.Errorf("expected empty eager locations in body, got %s", rec.Body.String())
	}
}

func TestHandler_GetOrganization_NotFound(t *testing.T) {
	h, e := newTestHandler()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	if err := h.GetOrganization(c); !errs.Is(err, errs.NotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestHandler_GetOrganization_InvalidID(t *testing.T) {
	h, e := newTestHandler()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	if err := h.GetOrganization(c); !errs.Is(err, errs.InvalidArgument) {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestHandler_ListOrganizations_InvalidPage(t *testing.T) {
	h, e := newTestHandler()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/organizations?pageSize=0", nil), httptest.NewRecorder())
	if err := h.ListOrganizations(c); !errs.Is(err, errs.InvalidArgument) {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestHandler_CountLocations(t *testing.T) {
	h, e := newTestHandler()
	org, _ := h.svc.CreateOrganization(context.Background(), dto.OrganizationInput{Name: "Org", Type: "CLINIC"})
	h.svc.CreateLocation(context.Background(), dto.LocationInput{Name: "R1", Type: "ROOM", OrganizationID: org.ID})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/locations/count", nil), rec)
	if err := h.CountLocations(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(rec.Body.String()) != "1" {
		t.Errorf("expected body 1, got %q", rec.Body.String())
	}
}

func TestHandler_DeleteLocation(t *testing.T) {
	h, e := newTestHandler()
	org, _ := h.svc.CreateOrganization(context.Background(), dto.OrganizationInput{Name: "Org", Type: "CLINIC"})
	loc, _ := h.svc.CreateLocation(context.Background(), dto.LocationInput{Name: "R1", Type: "ROOM", OrganizationID: org.ID})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(loc.ID.String())

	if err := h.DeleteLocation(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

// -- Routing and access control --

func TestRoutes_DeleteMissingLocation(t *testing.T) {
	h, _ := newTestHandler()
	var txCount int
	e := newRoutedServer(h, &txCount, auth.RoleOtherStaff)

	for _, path := range []string{"/" + uuid.New().String(), "/locations/" + uuid.New().String()} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, path, nil))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, rec.Code)
		}
		var body errs.Response
		json.Unmarshal(rec.Body.Bytes(), &body)
		if body.Message != "Location not found" {
			t.Errorf("%s: expected 'Location not found', got %q", path, body.Message)
		}
	}
	if txCount != 2 {
		t.Errorf("expected both deletes to run in a transaction, got %d", txCount)
	}
}

func TestRoutes_CreateOrganizationRequiresDoctor(t *testing.T) {
	for _, role := range []string{auth.RolePatient, auth.RoleOtherStaff} {
		t.Run(role, func(t *testing.T) {
			h, _ := newTestHandler()
			orgs := h.svc.orgs.(*mockOrgRepo)
			var txCount int
			e := newRoutedServer(h, &txCount, role)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, jsonRequest(http.MethodPost, "/organizations", `{"name":"X","type":"CLINIC"}`))

			if rec.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", rec.Code)
			}
			if orgs.calls != 0 {
				t.Errorf("expected no repository calls, got %d", orgs.calls)
			}
			if txCount != 0 {
				t.Errorf("expected no transaction to start, got %d", txCount)
			}
		})
	}
}

func TestRoutes_UpdateOrganizationAllowsOtherStaff(t *testing.T) {
	h, _ := newTestHandler()
	org, _ := h.svc.CreateOrganization(context.Background(), dto.OrganizationInput{Name: "Before", Type: "CLINIC"})
	var txCount int
	e := newRoutedServer(h, &txCount, auth.RoleOtherStaff)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, jsonRequest(http.MethodPut, "/organizations/"+org.ID.String(), `{"name":"After","type":"CLINIC"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if txCount != 1 {
		t.Errorf("expected one transaction, got %d", txCount)
	}
}

func TestRoutes_ReadsAllowEveryRole(t *testing.T) {
	for _, role := range auth.AnyRole {
		t.Run(role, func(t *testing.T) {
			h, _ := newTestHandler()
			var txCount int
			e := newRoutedServer(h, &txCount, role)

			for _, path := range []string{"/organizations", "/organizations/count", "/locations", "/locations/type/WARD"} {
				rec := httptest.NewRecorder()
				e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
				if rec.Code != http.StatusOK {
					t.Errorf("%s: expected 200, got %d", path, rec.Code)
				}
			}
			if txCount != 0 {
				t.Errorf("expected reads to skip the transaction scope, got %d", txCount)
			}
		})
	}
}

func TestRoutes_Anonymous(t *testing.T) {
	h, _ := newTestHandler()
	var txCount int
	e := newRoutedServer(h, &txCount)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/organizations", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRoutes_UnknownPathIsNotFound(t *testing.T) {
	for _, role := range []string{auth.RolePatient, auth.RoleDoctor} {
		t.Run(role, func(t *testing.T) {
			h, _ := newTestHandler()
			var txCount int
			e := newRoutedServer(h, &txCount, role)

			for _, req := range []*http.Request{
				httptest.NewRequest(http.MethodGet, "/nope", nil),
				httptest.NewRequest(http.MethodGet, "/nope/deeper", nil),
				jsonRequest(http.MethodPost, "/nope", `{}`),
				jsonRequest(http.MethodPatch, "/organizations/"+uuid.New().String(), `{}`),
			} {
				rec := httptest.NewRecorder()
				e.ServeHTTP(rec, req)
				if rec.Code != http.StatusNotFound {
					t.Errorf("%s %s: expected 404, got %d", req.Method, req.URL.Path, rec.Code)
				}
			}
			if txCount != 0 {
				t.Errorf("expected unknown paths to skip the transaction scope, got %d", txCount)
			}
		})
	}
}
