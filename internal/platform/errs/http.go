package errs

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Response is the JSON body written for every failed request.
type Response struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// Status maps a kind to its HTTP status code.
func Status(k Kind) int {
	switch k {
	case InvalidArgument:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorHandler renders service and echo errors as Response bodies.
// Internal errors are logged and reported to the client without detail.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := render(err)
		if status >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			logger.Error().Err(werr).Msg("write error response")
		}
	}
}

func render(err error) (int, Response) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if he.Code < http.StatusInternalServerError {
			if s, ok := he.Message.(string); ok {
				msg = s
			} else if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		return he.Code, Response{Code: codeFor(he.Code), Message: msg}
	}

	var e *Error
	if errors.As(err, &e) {
		status := Status(e.Kind)
		msg := e.Message
		if status >= http.StatusInternalServerError {
			msg = http.StatusText(status)
		}
		return status, Response{Code: e.Kind.String(), Message: msg, Errors: e.Fields}
	}

	return http.StatusInternalServerError, Response{
		Code:    Internal.String(),
		Message: http.StatusText(http.StatusInternalServerError),
	}
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return InvalidArgument.String()
	case http.StatusNotFound:
		return NotFound.String()
	case http.StatusUnauthorized:
		return Unauthorized.String()
	case http.StatusForbidden:
		return Forbidden.String()
	case http.StatusConflict:
		return Conflict.String()
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	}
	if status >= http.StatusInternalServerError {
		return Internal.String()
	}
	return "ERROR"
}
