package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-booking/internal/middleware"
	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/service"
)

// AttendanceAPI is satisfied by *service.AttendanceService.
type AttendanceAPI interface {
	Today(ctx context.Context, userID string) (service.TodayView, error)
	CheckIn(ctx context.Context, userID, rawShift string) (model.AttendanceRecord, error)
	CheckOut(ctx context.Context, userID, rawShift, recordID string) (model.AttendanceRecord, error)
	Recent(ctx context.Context, userID string) ([]service.RecentEntry, error)
}

type AttendanceHandler struct {
	Attendance AttendanceAPI
}

func NewAttendanceHandler(a AttendanceAPI) *AttendanceHandler {
	return &AttendanceHandler{Attendance: a}
}

type checkInReq struct {
	Shift string `json:"shift" validate:"required"`
}

type checkOutReq struct {
	Shift    string `json:"shift" validate:"required"`
	RecordID string `json:"record_id" validate:"omitempty,max=36"`
}

func (h *AttendanceHandler) Today(c echo.Context) error {
	view, err := h.Attendance.Today(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *AttendanceHandler) CheckIn(c echo.Context) error {
	var req checkInReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	rec, err := h.Attendance.CheckIn(c.Request().Context(), middleware.UserID(c), req.Shift)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *AttendanceHandler) CheckOut(c echo.Context) error {
	var req checkOutReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	rec, err := h.Attendance.CheckOut(c.Request().Context(), middleware.UserID(c), req.Shift, req.RecordID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *AttendanceHandler) Recent(c echo.Context) error {
	list, err := h.Attendance.Recent(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list, "days": service.RecentDays})
}
