package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-booking/internal/middleware"
	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/service"
	"github.com/iliyamo/library-seat-booking/internal/shift"
)

// BookingAPI is satisfied by *service.BookingService.
type BookingAPI interface {
	BookSeat(ctx context.Context, userID string, in service.BookSeatInput) (model.SeatBooking, error)
	SeatMap(ctx context.Context, userID, rawShift, rawDate string) (service.SeatMapView, error)
	MyBookings(ctx context.Context, userID string) ([]model.SeatBooking, error)
}

type BookingHandler struct {
	Bookings BookingAPI
}

func NewBookingHandler(b BookingAPI) *BookingHandler { return &BookingHandler{Bookings: b} }

type bookSeatReq struct {
	Shift      string `json:"shift" validate:"required"`
	SeatNumber string `json:"seat_number" validate:"required"`
	Date       string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type seatMapReq struct {
	Shift string `query:"shift" validate:"required"`
	Date  string `query:"date" validate:"omitempty,datetime=2006-01-02"`
}

// ListShifts returns the shift catalog with prices.
func ListShifts(c echo.Context) error {
	return c.JSON(http.StatusOK, shift.All())
}

// SeatMap handles GET /v1/seats?shift=&date=.
func (h *BookingHandler) SeatMap(c echo.Context) error {
	var req seatMapReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	view, err := h.Bookings.SeatMap(c.Request().Context(), middleware.UserID(c), req.Shift, req.Date)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// Book handles POST /v1/bookings.
func (h *BookingHandler) Book(c echo.Context) error {
	var req bookSeatReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	b, err := h.Bookings.BookSeat(c.Request().Context(), middleware.UserID(c), service.BookSeatInput{
		Shift:      req.Shift,
		SeatNumber: req.SeatNumber,
		Date:       req.Date,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) Mine(c echo.Context) error {
	list, err := h.Bookings.MyBookings(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list})
}
