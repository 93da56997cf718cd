package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-booking/internal/middleware"
	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/repository"
	"github.com/iliyamo/library-seat-booking/internal/service"
)

// PaymentAPI is satisfied by *service.PaymentService.
type PaymentAPI interface {
	Submit(ctx context.Context, userID string, in service.PaymentInput) (model.Payment, error)
	List(ctx context.Context, status string) ([]model.Payment, error)
	Mine(ctx context.Context, userID string) ([]model.Payment, error)
	Approve(ctx context.Context, adminID, paymentID string) (repository.DecisionResult, error)
	Reject(ctx context.Context, adminID, paymentID string) (repository.DecisionResult, error)
}

type PaymentHandler struct {
	Payments PaymentAPI
}

func NewPaymentHandler(p PaymentAPI) *PaymentHandler { return &PaymentHandler{Payments: p} }

type paymentReq struct {
	Amount         int    `json:"amount" validate:"gte=0"`
	Method         string `json:"method" validate:"required,oneof=upi cash qr UPI CASH QR"`
	DurationMonths int    `json:"duration_months" validate:"omitempty,oneof=1 3 6"`
	BookingID      string `json:"booking_id" validate:"required_without=AdmissionID,excluded_with=AdmissionID"`
	AdmissionID    string `json:"admission_id" validate:"required_without=BookingID"`
}

func (h *PaymentHandler) Submit(c echo.Context) error {
	var req paymentReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	p, err := h.Payments.Submit(c.Request().Context(), middleware.UserID(c), service.PaymentInput{
		Amount:         req.Amount,
		Method:         req.Method,
		DurationMonths: req.DurationMonths,
		BookingID:      req.BookingID,
		AdmissionID:    req.AdmissionID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *PaymentHandler) Mine(c echo.Context) error {
	list, err := h.Payments.Mine(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list})
}

// List handles GET /v1/admin/payments?status=.
func (h *PaymentHandler) List(c echo.Context) error {
	list, err := h.Payments.List(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list})
}

func (h *PaymentHandler) Approve(c echo.Context) error {
	res, err := h.Payments.Approve(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *PaymentHandler) Reject(c echo.Context) error {
	res, err := h.Payments.Reject(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
