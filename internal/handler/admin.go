package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-booking/internal/middleware"
	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/service"
)

// AdminAPI is satisfied by *service.AdminService.
type AdminAPI interface {
	Students(ctx context.Context, status string) ([]model.User, error)
	DecideStudent(ctx context.Context, adminID, userID, status string) (model.User, error)
	Dashboard(ctx context.Context) (service.Dashboard, error)
	ExportAttendance(ctx context.Context, rawDate string) (string, []byte, error)
	Logs(ctx context.Context, limit int) ([]model.AdminLog, error)
}

type AdminHandler struct {
	Admin AdminAPI
}

func NewAdminHandler(a AdminAPI) *AdminHandler { return &AdminHandler{Admin: a} }

type decideStudentReq struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Students handles GET /v1/admin/students?status=.
func (h *AdminHandler) Students(c echo.Context) error {
	list, err := h.Admin.Students(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list})
}

// DecideStudent handles PATCH /v1/admin/students/:id.
func (h *AdminHandler) DecideStudent(c echo.Context) error {
	var req decideStudentReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	u, err := h.Admin.DecideStudent(c.Request().Context(), middleware.UserID(c), c.Param("id"), req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	d, err := h.Admin.Dashboard(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// ExportAttendance streams the day's attendance as an xlsx attachment.
func (h *AdminHandler) ExportAttendance(c echo.Context) error {
	name, data, err := h.Admin.ExportAttendance(c.Request().Context(), c.QueryParam("date"))
	if err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, xlsxMIME, data)
}

// Logs handles GET /v1/admin/logs?limit=.
func (h *AdminHandler) Logs(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	list, err := h.Admin.Logs(c.Request().Context(), limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list})
}
