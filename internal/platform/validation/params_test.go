package validation

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehr/patient-journal/internal/platform/errs"
)

func TestPathUUID(t *testing.T) {
	e := echo.New()
	want := uuid.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(want.String())

	got, err := PathUUID(c, "id")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	c.SetParamValues("not-a-uuid")
	_, err = PathUUID(c, "id")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.InvalidArgument))
}

func TestQueryBool(t *testing.T) {
	tests := []struct {
		target  string
		want    bool
		wantErr bool
	}{
		{"/", false, false},
		{"/?eager=true", true, false},
		{"/?eager=1", true, false},
		{"/?eager=false", false, false},
		{"/?eager=maybe", false, true},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, tt.target, nil), httptest.NewRecorder())
			got, err := QueryBool(c, "eager")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errs.Is(err, errs.InvalidArgument))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
