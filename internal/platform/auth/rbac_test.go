package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newRoleContext(roles []string, authenticated bool) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authenticated {
		req = req.WithContext(WithIdentity(context.Background(), "user-1", roles))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireRole_Allowed(t *testing.T) {
	c, rec := newRoleContext([]string{RoleOtherStaff}, true)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	err := RequireRole(Staff...)(handler)(c)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	c, _ := newRoleContext([]string{RolePatient}, true)

	called := false
	err := RequireRole(Doctors...)(func(c echo.Context) error {
		called = true
		return nil
	})(c)

	expectStatus(t, err, http.StatusForbidden)
	if called {
		t.Error("handler must not run for a forbidden caller")
	}
	if msg := err.(*echo.HTTPError).Message; msg != "required role: Doctor" {
		t.Errorf("unexpected message %v", msg)
	}
}

func TestRequireRole_Anonymous(t *testing.T) {
	c, _ := newRoleContext(nil, false)

	err := RequireRole(AnyRole...)(func(c echo.Context) error { return nil })(c)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestRequireRole_NoAdminBypass(t *testing.T) {
	c, _ := newRoleContext([]string{"admin"}, true)

	err := RequireRole(Staff...)(func(c echo.Context) error { return nil })(c)
	expectStatus(t, err, http.StatusForbidden)
}

func TestRequireRole_EmptyRoles(t *testing.T) {
	c, _ := newRoleContext([]string{}, true)

	err := RequireRole(AnyRole...)(func(c echo.Context) error { return nil })(c)
	expectStatus(t, err, http.StatusForbidden)
}

func TestHasAnyRole(t *testing.T) {
	tests := []struct {
		granted  []string
		required []string
		want     bool
	}{
		{[]string{RoleDoctor}, Staff, true},
		{[]string{RolePatient}, Staff, false},
		{[]string{RolePatient, RoleOtherStaff}, Staff, true},
		{nil, AnyRole, false},
		{[]string{"doctor"}, Doctors, false},
	}

	for _, tt := range tests {
		if got := HasAnyRole(tt.granted, tt.required...); got != tt.want {
			t.Errorf("HasAnyRole(%v, %v) = %v, want %v", tt.granted, tt.required, got, tt.want)
		}
	}
}

func TestIsKnownRole(t *testing.T) {
	for _, r := range AnyRole {
		if !IsKnownRole(r) {
			t.Errorf("expected %s to be known", r)
		}
	}
	if IsKnownRole("admin") {
		t.Error("admin is not a recognised role")
	}
}

func TestIsPublicPath(t *testing.T) {
	if !IsPublicPath("/health") || !IsPublicPath("/metrics") {
		t.Error("expected infrastructure paths to be public")
	}
	if IsPublicPath("/patients") {
		t.Error("expected /patients to require auth")
	}
}
