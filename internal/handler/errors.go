package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-booking/internal/attendance"
	"github.com/iliyamo/library-seat-booking/internal/ledger"
	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/repository"
	"github.com/iliyamo/library-seat-booking/internal/service"
	"github.com/iliyamo/library-seat-booking/internal/shift"
)

// statusOf maps domain errors to HTTP status codes.  Unknown errors are
// 500.
func statusOf(err error) int {
	switch {
	case errors.Is(err, shift.ErrInvalidShift),
		errors.Is(err, attendance.ErrOutsideShiftWindow),
		errors.Is(err, ledger.ErrInvalidSeat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrSeatTaken),
		errors.Is(err, ledger.ErrUserAlreadyBooked),
		errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrShiftAlreadyCompleted),
		errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, attendance.ErrCheckOutBeforeCheckIn),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, service.ErrPaymentNotPending):
		return http.StatusConflict
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, attendance.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotApproved),
		errors.Is(err, service.ErrShiftNotInAdmission),
		errors.Is(err, service.ErrNoActiveAdmission):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrInvalidPaymentTarget),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, model.ErrPaymentTarget):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail writes a known domain error as {"error": msg}.  Anything else is
// handed to the error handler as an opaque 500 so the cause is logged but
// never shown to the client.
func fail(c echo.Context, err error) error {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		return echo.NewHTTPError(status, "internal error").SetInternal(err)
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// ErrorHandler renders every error that reaches echo as {"error": msg}.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		msg := "internal error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if s, ok := he.Message.(string); ok {
				msg = s
			}
			if he.Internal != nil {
				err = he.Internal
			}
		}
		if status >= http.StatusInternalServerError {
			log.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, echo.Map{"error": msg})
		}
		if err != nil {
			log.Error("write error response", "error", err)
		}
	}
}
