package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"dealerdash/internal/engine"
	"dealerdash/internal/session"
)

// Error is the JSON error body returned by every endpoint.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

func newError(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

var (
	errNotLoaded = newError(http.StatusServiceUnavailable, "DATA_NOT_LOADED", "no data set loaded, upload a workbook first")
	errInternal  = newError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error")
)

func invalidParameter(format string, args ...any) *Error {
	return newError(http.StatusBadRequest, "INVALID_PARAMETER", fmt.Sprintf(format, args...))
}

// toAPIError maps domain and framework errors onto the wire format.
func toAPIError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return newError(http.StatusBadRequest, "VALIDATION_FAILED", strings.Join(fields, "; "))
	}

	switch {
	case errors.Is(err, session.ErrNotLoaded):
		return errNotLoaded
	case errors.Is(err, engine.ErrImport):
		return newError(http.StatusBadRequest, "IMPORT_FAILED", err.Error())
	case errors.Is(err, engine.ErrUnknownDimension):
		return invalidParameter("%s", err.Error())
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return newError(he.Code, strings.ToUpper(strings.ReplaceAll(http.StatusText(he.Code), " ", "_")), fmt.Sprint(he.Message))
	}
	return errInternal
}

// errorHandler replaces echo's default so every failure renders as Error.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		apiErr := toAPIError(err)
		if apiErr.Status >= http.StatusInternalServerError && apiErr != errNotLoaded {
			logger.Error("request failed",
				slog.String("path", c.Path()),
				slog.String("error", err.Error()))
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(apiErr.Status)
		} else {
			err = c.JSON(apiErr.Status, apiErr)
		}
		if err != nil {
			logger.Error("write error response", slog.String("error", err.Error()))
		}
	}
}
