package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"cleaning/internal/core/domain/model/payment"
	"cleaning/internal/core/domain/model/tracking"
	"cleaning/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func statusFor(err error) int {
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.Is(err, errs.ErrExternalService):
		return http.StatusBadGateway
	case errs.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrObjectNotFound), errors.Is(err, tracking.ErrNoActiveSession):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrStatusTransition),
		errors.Is(err, errs.ErrConflict),
		errors.Is(err, errs.ErrVersionIsInvalid),
		errors.Is(err, tracking.ErrOutsideWorkWindow),
		errors.Is(err, payment.ErrInvalidPaymentState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler renders errors as ErrorResponse. Server errors are logged and their
// details kept out of the body.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := statusFor(err)
		message := err.Error()
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			message = fmt.Sprint(httpErr.Message)
		}
		if code >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method, "route", c.Path(), "status", code, "error", err)
			if code == http.StatusInternalServerError {
				message = http.StatusText(code)
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, ErrorResponse{Code: code, Message: message})
		}
		if err != nil {
			logger.ErrorContext(c.Request().Context(), "write error response", "error", err)
		}
	}
}
