package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-booking/internal/middleware"
	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/service"
)

// AdmissionAPI is satisfied by *service.AdmissionService.
type AdmissionAPI interface {
	QuoteShifts(raw string) (service.Quote, error)
	Submit(ctx context.Context, userID string, in service.AdmissionInput) (model.Admission, error)
	Mine(ctx context.Context, userID string) ([]model.Admission, error)
}

type AdmissionHandler struct {
	Admissions AdmissionAPI
}

func NewAdmissionHandler(a AdmissionAPI) *AdmissionHandler { return &AdmissionHandler{Admissions: a} }

type admissionReq struct {
	Name           string   `json:"name" validate:"required,max=120"`
	Age            int      `json:"age" validate:"required,min=10,max=100"`
	ContactNumber  string   `json:"contact_number" validate:"required,max=20"`
	FullAddress    string   `json:"full_address" validate:"required,max=500"`
	Email          string   `json:"email" validate:"omitempty,email"`
	CourseName     string   `json:"course_name" validate:"omitempty,max=120"`
	FatherName     string   `json:"father_name" validate:"omitempty,max=120"`
	FatherContact  string   `json:"father_contact" validate:"omitempty,max=20"`
	Duration       int      `json:"duration" validate:"required,oneof=1 3 6"`
	SelectedShifts []string `json:"selected_shifts" validate:"required,min=1,max=4"`
}

// Quote handles GET /v1/shifts/quote?shifts=a,b.
func (h *AdmissionHandler) Quote(c echo.Context) error {
	q, err := h.Admissions.QuoteShifts(c.QueryParam("shifts"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *AdmissionHandler) Submit(c echo.Context) error {
	var req admissionReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	a, err := h.Admissions.Submit(c.Request().Context(), middleware.UserID(c), service.AdmissionInput{
		Name:           req.Name,
		Age:            req.Age,
		ContactNumber:  req.ContactNumber,
		FullAddress:    req.FullAddress,
		Email:          req.Email,
		CourseName:     req.CourseName,
		FatherName:     req.FatherName,
		FatherContact:  req.FatherContact,
		Duration:       req.Duration,
		SelectedShifts: req.SelectedShifts,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *AdmissionHandler) Mine(c echo.Context) error {
	list, err := h.Admissions.Mine(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list})
}
