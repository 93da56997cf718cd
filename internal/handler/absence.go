package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-booking/internal/absence"
	"github.com/iliyamo/library-seat-booking/internal/service"
)

// AbsenceRunner is satisfied by *service.AbsenceService.
type AbsenceRunner interface {
	Run(ctx context.Context, rawDate, trigger string) (absence.Result, error)
}

type AbsenceHandler struct {
	Sweeper AbsenceRunner
}

func NewAbsenceHandler(s AbsenceRunner) *AbsenceHandler { return &AbsenceHandler{Sweeper: s} }

type checkAbsentReq struct {
	Date string `json:"date" query:"date" validate:"omitempty,datetime=2006-01-02"`
}

type checkAbsentResp struct {
	Success bool `json:"success"`
	absence.Result
}

// CheckAbsentStudents handles POST /check-absent-students with an optional
// {"date"} body and GET /check-absent-students?date=.  The date defaults to
// today in the library's time zone.
func (h *AbsenceHandler) CheckAbsentStudents(c echo.Context) error {
	var req checkAbsentReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if req.Date == "" {
		req.Date = c.QueryParam("date")
	}
	res, err := h.Sweeper.Run(c.Request().Context(), req.Date, service.TriggerHTTP)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, checkAbsentResp{Success: true, Result: res})
}
