package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Error codes carried in the failure envelope
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeInternal      = "INTERNAL_ERROR"
	CodeRequestFailed = "REQUEST_FAILED"
)

func errorCode(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return CodeValidation
	case status == http.StatusUnauthorized:
		return CodeUnauthorized
	case status == http.StatusForbidden:
		return CodeForbidden
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusConflict:
		return CodeConflict
	case status >= http.StatusInternalServerError:
		return CodeInternal
	default:
		return CodeRequestFailed
	}
}

// ErrorHandler renders every handler error as {success:false, message, code}.
// Server-side failures are logged and their message is masked.
func ErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := http.StatusText(status)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else if he.Message != nil {
				message = fmt.Sprint(he.Message)
			}
		}

		if status >= http.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method":     c.Request().Method,
				"uri":        c.Request().RequestURI,
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}).Error("Request failed")
			message = "Internal server error"
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, echo.Map{
				"success": false,
				"message": message,
				"code":    errorCode(status),
			})
		}
		if err != nil {
			log.WithError(err).Warn("Failed to write error response")
		}
	}
}
